package errclass

import "fmt"

// RecallError is a stable, machine-readable error class.
type RecallError struct {
	Code    string
	Message string
}

func (e *RecallError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *RecallError) Is(target error) bool {
	t, ok := target.(*RecallError)
	return ok && e.Code == t.Code
}

// WithMessage returns a new RecallError with the same Code but a specific message.
func (e *RecallError) WithMessage(msg string) *RecallError {
	return &RecallError{Code: e.Code, Message: msg}
}

// WithMessagef returns a new RecallError with a formatted message.
func (e *RecallError) WithMessagef(format string, args ...any) *RecallError {
	return &RecallError{Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

// All stable error classes. History operations themselves absorb failures
// and return bools; these classes cover the edges (session lifecycle,
// store lookups, export I/O, configuration).
var (
	ErrNameInvalid    = &RecallError{Code: "E_NAME_INVALID"}
	ErrRecordNotFound = &RecallError{Code: "E_RECORD_NOT_FOUND"}
	ErrRecordExists   = &RecallError{Code: "E_RECORD_EXISTS"}
	ErrEventNotFound  = &RecallError{Code: "E_EVENT_NOT_FOUND"}
	ErrSessionClosed  = &RecallError{Code: "E_SESSION_CLOSED"}
	ErrExportFailed   = &RecallError{Code: "E_EXPORT_FAILED"}
	ErrConfigInvalid  = &RecallError{Code: "E_CONFIG_INVALID"}
)
