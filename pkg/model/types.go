package model

// EventID uniquely identifies an audit event within one open document.
type EventID string

// ShortID returns a truncated form suitable for terminal display.
func (id EventID) ShortID() string {
	if len(id) > 8 {
		return string(id[:8])
	}
	return string(id)
}

// HashValue is a SHA-256 hash stored as hex string.
type HashValue string

// RecordID uniquely identifies a record in the in-memory store.
type RecordID string
