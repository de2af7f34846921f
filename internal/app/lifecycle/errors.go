package lifecycle

import "errors"

// ErrSweepInProgress is returned when a trigger fires while a previous sweep
// is still running. The host scheduler should not overlap invocations, but a
// second run double-creating pending results would be worse than a 409.
var ErrSweepInProgress = errors.New("sweep already in progress")

// Error is an application-layer error that can be mapped to an HTTP response.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}
