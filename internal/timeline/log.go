// Package timeline implements the addressable audit log: an append-only
// chronological record of business events, each optionally linked to a
// reversible command, supporting out-of-order undo and redo of any entry.
//
// The timeline holds a back-reference into the linear history stack and
// performs the stack pairing inside UndoEvent/RedoEvent itself, so the
// two views can never drift apart at a call site.
package timeline

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/recall-project/recall/internal/action"
	"github.com/recall-project/recall/internal/history"
	"github.com/recall-project/recall/pkg/logging"
	"github.com/recall-project/recall/pkg/model"
)

// for tests
var timeNow = time.Now

// Log is the audit timeline for one open document. Entries are
// append-only and only disappear through Clear. Single-threaded by
// contract, like the history stack it pairs with.
type Log struct {
	history   *history.Stack
	events    []*model.AuditEvent
	linked    map[model.EventID]action.Command
	observers []func()
}

// New creates an empty timeline paired with the given history stack.
func New(h *history.Stack) *Log {
	return &Log{
		history: h,
		linked:  make(map[model.EventID]action.Command),
	}
}

// RecordEvent appends a new Active event describing a committed business
// mutation. linked may be nil for events with no reversible command.
// There is no shared transaction with history.Record; the session layer
// sequences the two calls.
func (l *Log) RecordEvent(description, entityType, entityName string, kind model.ActionKind, linked action.Command) *model.AuditEvent {
	e := &model.AuditEvent{
		ID:          model.EventID(uuid.NewString()),
		Timestamp:   timeNow(),
		Description: description,
		EntityType:  entityType,
		EntityName:  entityName,
		Kind:        kind,
	}
	if linked != nil {
		e.LinkedDescription = linked.Describe()
		l.linked[e.ID] = linked
	}
	l.events = append(l.events, e)
	l.notify()
	return e
}

// CanUndoEvent reports whether the event can be selectively undone: it
// must be Active and its linked command must still be live on the undo
// stack (so a later global undo has not already consumed it).
func (l *Log) CanUndoEvent(e *model.AuditEvent) bool {
	if e == nil || e.IsUndone {
		return false
	}
	cmd, ok := l.linked[e.ID]
	return ok && l.history.Contains(cmd)
}

// CanRedoEvent reports whether the event can be selectively redone.
func (l *Log) CanRedoEvent(e *model.AuditEvent) bool {
	if e == nil || !e.IsUndone {
		return false
	}
	_, ok := l.linked[e.ID]
	return ok
}

// UndoEvent selectively undoes one event out of chronological order.
//
// The linked command's Unapply always runs when the event is Active; the
// timeline is authoritative for event state even when the command has
// already left the undo stack, in which case only the stack removal
// becomes a no-op. A second UndoEvent without an intervening redo is
// rejected. Returns false when rejected.
func (l *Log) UndoEvent(e *model.AuditEvent) bool {
	if e == nil || e.IsUndone {
		return false
	}
	cmd, ok := l.linked[e.ID]
	if !ok {
		return false
	}

	cmd.Unapply()
	e.IsUndone = true
	l.history.Remove(cmd)
	l.appendMeta(model.ActionUndone, e)
	logging.Info("event undone", map[string]any{
		"event":       string(e.ID),
		"description": e.Description,
	})
	l.notify()
	return true
}

// RedoEvent reverses a selective undo: the linked command's Apply runs,
// the event becomes Active again and the command is re-recorded on the
// undo stack so global undo can reach it once more.
func (l *Log) RedoEvent(e *model.AuditEvent) bool {
	if e == nil || !e.IsUndone {
		return false
	}
	cmd, ok := l.linked[e.ID]
	if !ok {
		return false
	}

	cmd.Apply()
	e.IsUndone = false
	l.history.Record(cmd)
	l.appendMeta(model.ActionRedone, e)
	logging.Info("event redone", map[string]any{
		"event":       string(e.ID),
		"description": e.Description,
	})
	l.notify()
	return true
}

// appendMeta appends a synthetic entry recording that an undo/redo of
// the subject event occurred. Meta-events carry no linked command.
func (l *Log) appendMeta(kind model.ActionKind, subject *model.AuditEvent) {
	l.events = append(l.events, &model.AuditEvent{
		ID:                model.EventID(uuid.NewString()),
		Timestamp:         timeNow(),
		Description:       string(kind) + ": " + subject.Description,
		EntityType:        subject.EntityType,
		EntityName:        subject.EntityName,
		Kind:              kind,
		LinkedDescription: subject.LinkedDescription,
	})
}

// Events returns the log in insertion order.
func (l *Log) Events() []*model.AuditEvent {
	out := make([]*model.AuditEvent, len(l.events))
	copy(out, l.events)
	return out
}

// Find returns the event with the given ID.
func (l *Log) Find(id model.EventID) (*model.AuditEvent, bool) {
	for _, e := range l.events {
		if e.ID == id {
			return e, true
		}
	}
	return nil, false
}

// FilteredEvents returns events matching the exact structural filters.
// An empty kind or entityType means no filter on that axis. Free-text
// relevance filtering is the rank package's job, composed on top of
// this narrowed candidate set.
func (l *Log) FilteredEvents(kind model.ActionKind, entityType string) []*model.AuditEvent {
	var out []*model.AuditEvent
	for _, e := range l.events {
		if kind != "" && e.Kind != kind {
			continue
		}
		if entityType != "" && e.EntityType != entityType {
			continue
		}
		out = append(out, e)
	}
	return out
}

// EntityTypes returns the distinct entity-type labels observed, in
// first-seen order, for building filter menus.
func (l *Log) EntityTypes() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range l.events {
		if e.EntityType == "" || seen[e.EntityType] {
			continue
		}
		seen[e.EntityType] = true
		out = append(out, e.EntityType)
	}
	return out
}

// EventCount returns the total log size, meta-events included.
func (l *Log) EventCount() int {
	return len(l.events)
}

// Clear discards the whole log. This is the only operation that removes
// entries.
func (l *Log) Clear() {
	l.events = nil
	l.linked = make(map[model.EventID]action.Command)
	l.notify()
}

// Subscribe registers an observer called after every timeline mutation.
func (l *Log) Subscribe(fn func()) {
	l.observers = append(l.observers, fn)
}

func (l *Log) notify() {
	for _, fn := range l.observers {
		fn()
	}
}

// DayGroup is one calendar day of timeline entries for display.
type DayGroup struct {
	Day    time.Time // midnight, local time
	Events []*model.AuditEvent
}

// GroupByDay groups events by local calendar date, newest date first and
// newest event first within each date.
func GroupByDay(events []*model.AuditEvent) []DayGroup {
	byDay := make(map[time.Time][]*model.AuditEvent)
	var days []time.Time
	for _, e := range events {
		ts := e.Timestamp.Local()
		day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())
		if _, ok := byDay[day]; !ok {
			days = append(days, day)
		}
		byDay[day] = append(byDay[day], e)
	}

	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	groups := make([]DayGroup, 0, len(days))
	for _, day := range days {
		evs := byDay[day]
		// Newest event first within the day; insertion order is already
		// chronological, so reversing suffices.
		rev := make([]*model.AuditEvent, 0, len(evs))
		for i := len(evs) - 1; i >= 0; i-- {
			rev = append(rev, evs[i])
		}
		groups = append(groups, DayGroup{Day: day, Events: rev})
	}
	return groups
}
