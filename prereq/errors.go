package prereq

import "fmt"

// MalformedError reports raw requisite data that does not match any accepted
// shape, or a tree nested past MaxDepth. It is non-fatal by design: batch
// callers catch it per course, substitute "no prerequisites known" and keep
// going.
type MalformedError struct {
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed prerequisite data: %s", e.Reason)
}

func malformedf(format string, args ...any) *MalformedError {
	return &MalformedError{Reason: fmt.Sprintf(format, args...)}
}
