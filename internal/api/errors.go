package api

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError reports a non-2xx backend response. Network-level failures are
// returned as wrapped transport errors instead and never carry a status code.
type StatusError struct {
	StatusCode int
	Endpoint   string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api: %s: status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// IsUnauthorized reports whether err is a 401 response.
func IsUnauthorized(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}
