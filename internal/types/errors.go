package types

import "fmt"

// ValidationError reports a request field that failed a cross-field check the
// struct tags cannot express.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
