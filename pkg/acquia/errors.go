package acquia

import (
	"errors"
	"fmt"
)

// ErrForeignURL is returned when an absolute URL points outside the API host.
// No token is requested for such URLs.
var ErrForeignURL = errors.New("URL is not on the Acquia Cloud API host")

// TransportError is returned when a request could not be completed: the token
// could not be fetched, the connection failed, or the response body could not
// be read or decoded.
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UnexpectedStatusError is returned when the API answered with a status code
// other than the one the endpoint documents for success.
type UnexpectedStatusError struct {
	Method     string
	URL        string
	StatusCode int
	Expected   int
	Body       string
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("%s %s: expected status %d, got %d: %s",
		e.Method, e.URL, e.Expected, e.StatusCode, e.Body)
}
