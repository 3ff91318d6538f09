package searchapi

import (
	"errors"
	"fmt"
)

// StatusError is returned when the search service answers with an HTTP
// status of 400 or above. Message is the raw response body, which may be
// empty.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return e.Message
}

func newStatusError(statusCode int, body []byte, bodyReadable bool) *StatusError {
	if !bodyReadable {
		return &StatusError{StatusCode: statusCode, Message: fmt.Sprintf("Server returned status code %d", statusCode)}
	}
	return &StatusError{StatusCode: statusCode, Message: string(body)}
}

// AsStatusError returns the StatusError in err's chain, if any
func AsStatusError(err error) (*StatusError, bool) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr, true
	}
	return nil, false
}
