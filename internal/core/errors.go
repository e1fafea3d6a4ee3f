package core

// Error provides constant error strings to the client calls.
type Error string

func (e Error) Error() string { return string(e) }

// Constant errors, matched by callers with errors.Is.
const (
	ErrNotFound = Error("environment not found")
	ErrTimeout  = Error("control core request timed out")
)
