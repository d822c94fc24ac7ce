package compile

import "fmt"

// Error represents a failed compile stage.
type Error struct {
	Stage     Stage
	Message   string
	LogOutput string
	Cause     error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s compile error: %s: %v", e.Stage, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s compile error: %s", e.Stage, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
