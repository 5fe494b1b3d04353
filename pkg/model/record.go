package model

import "time"

// Record is one business entity in the in-memory document store.
// Commands carry full before/after copies of records so that undo and
// redo are pure functions of explicit data.
type Record struct {
	ID        RecordID  `json:"id"`
	Kind      string    `json:"kind"` // entity-type label, e.g. "customer"
	Name      string    `json:"name"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}
