// Package store holds the in-memory record set for one open document.
//
// The store is deliberately dumb: commands carry explicit before/after
// record copies and push them in or pull them out. All invariants about
// when a mutation may happen live in the history and timeline layers.
package store

import (
	"sort"

	"github.com/recall-project/recall/pkg/model"
)

// Store is an in-memory record set. Single-threaded by contract: all
// mutation happens on the interactive thread, so there is no locking.
type Store struct {
	records map[model.RecordID]*model.Record
}

// New creates an empty store.
func New() *Store {
	return &Store{records: make(map[model.RecordID]*model.Record)}
}

// Put inserts or replaces a record. The store keeps its own copy.
func (s *Store) Put(r *model.Record) {
	if r == nil {
		return
	}
	s.records[r.ID] = r.Clone()
}

// Remove deletes a record by ID. No-op when absent.
func (s *Store) Remove(id model.RecordID) {
	delete(s.records, id)
}

// Get returns a copy of the record with the given ID.
func (s *Store) Get(id model.RecordID) (*model.Record, bool) {
	r, ok := s.records[id]
	if !ok {
		return nil, false
	}
	return r.Clone(), true
}

// Has reports whether a record with the given ID exists.
func (s *Store) Has(id model.RecordID) bool {
	_, ok := s.records[id]
	return ok
}

// List returns copies of all records sorted by name, then ID.
func (s *Store) List() []*model.Record {
	out := make([]*model.Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ListKind returns records of one entity kind, sorted like List.
func (s *Store) ListKind(kind string) []*model.Record {
	var out []*model.Record
	for _, r := range s.List() {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.records)
}
