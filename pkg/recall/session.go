package recall

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/recall-project/recall/internal/action"
	"github.com/recall-project/recall/internal/history"
	"github.com/recall-project/recall/internal/rank"
	"github.com/recall-project/recall/internal/store"
	"github.com/recall-project/recall/internal/timeline"
	"github.com/recall-project/recall/pkg/config"
	"github.com/recall-project/recall/pkg/errclass"
	"github.com/recall-project/recall/pkg/logging"
	"github.com/recall-project/recall/pkg/metrics"
	"github.com/recall-project/recall/pkg/model"
	"github.com/recall-project/recall/pkg/nameutil"
)

// Session is the history engine for one open document.
type Session struct {
	cfg      *config.Config
	store    *store.Store
	history  *history.Stack
	timeline *timeline.Log
	log      *logging.Logger
	closed   bool
}

// Open creates a fresh session. A nil cfg uses defaults.
func Open(cfg *config.Config) *Session {
	if cfg == nil {
		cfg = config.Default()
	}
	h := history.New()
	return &Session{
		cfg:      cfg,
		store:    store.New(),
		history:  h,
		timeline: timeline.New(h),
		log:      logging.WithFields(map[string]any{"component": "session"}),
	}
}

// Close tears the session down. History and timeline state is in-memory
// only and dies with the session; nothing is persisted.
func (s *Session) Close() error {
	if s.closed {
		return errclass.ErrSessionClosed
	}
	s.closed = true
	s.log.Info("session closed", map[string]any{
		"records": s.store.Len(),
		"events":  s.timeline.EventCount(),
	})
	return nil
}

// Commit applies a command and records it in both the linear history and
// the audit timeline. This is the single sanctioned mutation path;
// bypassing it breaks the cross-structure invariant.
func (s *Session) Commit(cmd action.Command, entityType, entityName string, kind model.ActionKind) error {
	if s.closed {
		return errclass.ErrSessionClosed
	}
	cmd.Apply()
	s.history.Record(cmd)
	s.timeline.RecordEvent(cmd.Describe(), entityType, entityName, kind, cmd)
	metrics.Default().Inc("commit")
	s.log.Debug("commit", map[string]any{"description": cmd.Describe(), "kind": string(kind)})
	return nil
}

// CommitConfirmed gates a commit on a user-facing confirmation. When the
// confirmation is cancelled the session is left completely unmodified:
// no apply, no history entry, no timeline entry.
func (s *Session) CommitConfirmed(confirm func() bool, cmd action.Command, entityType, entityName string, kind model.ActionKind) (bool, error) {
	if s.closed {
		return false, errclass.ErrSessionClosed
	}
	if confirm != nil && !confirm() {
		return false, nil
	}
	return true, s.Commit(cmd, entityType, entityName, kind)
}

// AddRecord validates, creates and commits a new record.
func (s *Session) AddRecord(kind, name, notes string) (*model.Record, error) {
	if s.closed {
		return nil, errclass.ErrSessionClosed
	}
	if err := nameutil.ValidateKind(kind); err != nil {
		return nil, err
	}
	if err := nameutil.ValidateName(name); err != nil {
		return nil, err
	}

	now := time.Now()
	rec := &model.Record{
		ID:        model.RecordID(uuid.NewString()),
		Kind:      kind,
		Name:      nameutil.Normalize(name),
		Notes:     notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	cmd := action.NewAddRecord(s.store, rec)
	if err := s.Commit(cmd, kind, rec.Name, model.ActionAdded); err != nil {
		return nil, err
	}
	return rec.Clone(), nil
}

// EditRecord validates and commits a name/notes change to an existing record.
func (s *Session) EditRecord(id model.RecordID, name, notes string) (*model.Record, error) {
	if s.closed {
		return nil, errclass.ErrSessionClosed
	}
	before, ok := s.store.Get(id)
	if !ok {
		return nil, errclass.ErrRecordNotFound.WithMessagef("record %s", id)
	}
	if err := nameutil.ValidateName(name); err != nil {
		return nil, err
	}

	after := before.Clone()
	after.Name = nameutil.Normalize(name)
	after.Notes = notes
	after.UpdatedAt = time.Now()

	cmd := action.NewEditRecord(s.store, before, after)
	if err := s.Commit(cmd, after.Kind, after.Name, model.ActionModified); err != nil {
		return nil, err
	}
	return after.Clone(), nil
}

// DeleteRecord commits the removal of an existing record.
func (s *Session) DeleteRecord(id model.RecordID) error {
	if s.closed {
		return errclass.ErrSessionClosed
	}
	rec, ok := s.store.Get(id)
	if !ok {
		return errclass.ErrRecordNotFound.WithMessagef("record %s", id)
	}
	cmd := action.NewDeleteRecord(s.store, rec)
	return s.Commit(cmd, rec.Kind, rec.Name, model.ActionDeleted)
}

// DeleteRecordConfirmed gates a record deletion on a user-facing
// confirmation. A cancelled confirmation leaves the session untouched.
func (s *Session) DeleteRecordConfirmed(confirm func() bool, id model.RecordID) (bool, error) {
	if s.closed {
		return false, errclass.ErrSessionClosed
	}
	rec, ok := s.store.Get(id)
	if !ok {
		return false, errclass.ErrRecordNotFound.WithMessagef("record %s", id)
	}
	cmd := action.NewDeleteRecord(s.store, rec)
	return s.CommitConfirmed(confirm, cmd, rec.Kind, rec.Name, model.ActionDeleted)
}

// Undo undoes the most recent live command. False when there is nothing
// to undo; never an error.
func (s *Session) Undo() bool {
	if s.history.Undo() {
		metrics.Default().Inc("undo")
		return true
	}
	return false
}

// Redo reapplies the most recently undone command.
func (s *Session) Redo() bool {
	if s.history.Redo() {
		metrics.Default().Inc("redo")
		return true
	}
	return false
}

// CanUndo reports whether a global undo would do anything.
func (s *Session) CanUndo() bool { return s.history.CanUndo() }

// CanRedo reports whether a global redo would do anything.
func (s *Session) CanRedo() bool { return s.history.CanRedo() }

// UndoHistory lists undoable commands, most recent first.
func (s *Session) UndoHistory() []string { return s.history.UndoHistory() }

// RedoHistory lists redoable commands, most recent first.
func (s *Session) RedoHistory() []string { return s.history.RedoHistory() }

// UndoEvent selectively undoes one timeline event by ID. The bool result
// reports whether the toggle happened; an error is returned only for an
// unknown event or a closed session.
func (s *Session) UndoEvent(id model.EventID) (bool, error) {
	if s.closed {
		return false, errclass.ErrSessionClosed
	}
	e, ok := s.timeline.Find(id)
	if !ok {
		return false, errclass.ErrEventNotFound.WithMessagef("event %s", id)
	}
	if !s.timeline.UndoEvent(e) {
		return false, nil
	}
	metrics.Default().Inc("event_undo")
	return true, nil
}

// RedoEvent reverses a selective undo by event ID.
func (s *Session) RedoEvent(id model.EventID) (bool, error) {
	if s.closed {
		return false, errclass.ErrSessionClosed
	}
	e, ok := s.timeline.Find(id)
	if !ok {
		return false, errclass.ErrEventNotFound.WithMessagef("event %s", id)
	}
	if !s.timeline.RedoEvent(e) {
		return false, nil
	}
	metrics.Default().Inc("event_redo")
	return true, nil
}

// CanUndoEvent reports whether the event with the given ID is selectively
// undoable right now.
func (s *Session) CanUndoEvent(id model.EventID) bool {
	e, ok := s.timeline.Find(id)
	return ok && s.timeline.CanUndoEvent(e)
}

// CanRedoEvent reports whether the event with the given ID is selectively
// redoable right now.
func (s *Session) CanRedoEvent(id model.EventID) bool {
	e, ok := s.timeline.Find(id)
	return ok && s.timeline.CanRedoEvent(e)
}

// Events returns the audit timeline in insertion order.
func (s *Session) Events() []*model.AuditEvent { return s.timeline.Events() }

// FilteredEvents applies exact structural filters to the timeline.
func (s *Session) FilteredEvents(kind model.ActionKind, entityType string) []*model.AuditEvent {
	return s.timeline.FilteredEvents(kind, entityType)
}

// SearchEvents narrows by exact filters, then relevance-ranks the result
// against a free-text query over description and entity fields. An empty
// query keeps everything in timeline order ranked neutrally.
func (s *Session) SearchEvents(query string, kind model.ActionKind, entityType string) []*model.AuditEvent {
	candidates := s.timeline.FilteredEvents(kind, entityType)
	max := s.cfg.Search.MaxResults
	ranked := rank.Rank(query, candidates,
		func(e *model.AuditEvent) []string {
			return []string{e.Description, e.EntityName, e.EntityType}
		},
		func(e *model.AuditEvent) string {
			// Inverted nanosecond key so that ties come out newest first.
			return fmt.Sprintf("%020d", math.MaxInt64-e.Timestamp.UnixNano())
		},
	)
	if max > 0 && len(ranked) > max {
		ranked = ranked[:max]
	}
	return ranked
}

// GroupedTimeline returns the timeline grouped by local calendar date,
// newest date first, newest event first within a date.
func (s *Session) GroupedTimeline() []timeline.DayGroup {
	return timeline.GroupByDay(s.timeline.Events())
}

// EntityTypes lists distinct entity-type labels for filter menus.
func (s *Session) EntityTypes() []string { return s.timeline.EntityTypes() }

// EventCount returns the total timeline size.
func (s *Session) EventCount() int { return s.timeline.EventCount() }

// ClearTimeline discards the whole audit log.
func (s *Session) ClearTimeline() { s.timeline.Clear() }

// Records lists all records sorted by the default key (name).
func (s *Session) Records() []*model.Record { return s.store.List() }

// GetRecord returns one record by ID.
func (s *Session) GetRecord(id model.RecordID) (*model.Record, error) {
	rec, ok := s.store.Get(id)
	if !ok {
		return nil, errclass.ErrRecordNotFound.WithMessagef("record %s", id)
	}
	return rec, nil
}

// SearchRecords runs the standard list-view pipeline: exact kind filter
// first, then relevance ranking over name and notes for a non-empty
// query, else the default name ordering.
func (s *Session) SearchRecords(query, kindFilter string) []*model.Record {
	var candidates []*model.Record
	if kindFilter != "" {
		candidates = s.store.ListKind(kindFilter)
	} else {
		candidates = s.store.List()
	}

	ranked := rank.Rank(query, candidates,
		func(r *model.Record) []string { return []string{r.Name, r.Notes} },
		func(r *model.Record) string { return r.Name },
	)
	if max := s.cfg.Search.MaxResults; max > 0 && len(ranked) > max {
		ranked = ranked[:max]
	}
	return ranked
}

// ExportTimeline writes the audit log as hash-chained JSONL. An empty
// path uses the configured default.
func (s *Session) ExportTimeline(path string) error {
	if s.closed {
		return errclass.ErrSessionClosed
	}
	if path == "" {
		path = s.cfg.Export.Path
	}
	if err := s.timeline.Export(path); err != nil {
		return err
	}
	s.log.Info("timeline exported", map[string]any{"path": path, "events": s.timeline.EventCount()})
	return nil
}

// Subscribe registers an observer for both history and timeline mutations.
func (s *Session) Subscribe(fn func()) {
	s.history.Subscribe(fn)
	s.timeline.Subscribe(fn)
}

// Config returns the session's effective configuration.
func (s *Session) Config() *config.Config { return s.cfg }
