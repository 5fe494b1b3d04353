package model

import "time"

// ActionKind identifies the kind of business mutation an audit event records.
type ActionKind string

const (
	ActionAdded    ActionKind = "added"
	ActionModified ActionKind = "modified"
	ActionDeleted  ActionKind = "deleted"

	// Meta-kinds: synthetic entries recording that an undo/redo itself occurred.
	ActionUndone ActionKind = "undone"
	ActionRedone ActionKind = "redone"
)

// IsMeta reports whether the kind marks a synthetic undo/redo entry
// rather than a business mutation.
func (k ActionKind) IsMeta() bool {
	return k == ActionUndone || k == ActionRedone
}

// AuditEvent is one entry in the audit timeline. Entries are append-only;
// they are never removed except by a whole-log clear.
type AuditEvent struct {
	ID          EventID    `json:"id"`
	Timestamp   time.Time  `json:"timestamp"`
	Description string     `json:"description"`
	EntityType  string     `json:"entity_type"`
	EntityName  string     `json:"entity_name"`
	Kind        ActionKind `json:"kind"`

	// IsUndone toggles between Active (false) and Undone (true) any number
	// of times. There is no terminal state short of a log clear.
	IsUndone bool `json:"is_undone"`

	// LinkedDescription names the reversible command this event correlates
	// with, empty for meta-events. The command itself is held by the
	// timeline, not the event.
	LinkedDescription string `json:"linked_description,omitempty"`
}

// ExportRecord is a single line in an exported timeline file (JSONL format).
type ExportRecord struct {
	Event      AuditEvent `json:"event"`
	PrevHash   HashValue  `json:"prev_hash"`
	RecordHash HashValue  `json:"record_hash"`
}
