package results

// Error is an application-layer error that can be mapped to an HTTP response.
type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
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

func notFound() *Error {
	return &Error{Status: 404, Code: "NOT_FOUND", Message: "result not found"}
}

func alreadySubmittedToACP() *Error {
	return &Error{
		Status:  409,
		Code:    "ALREADY_SUBMITTED_TO_ACP",
		Message: "this event's results have already been submitted to ACP; contact your chapter VP",
	}
}
