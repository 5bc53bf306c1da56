package vision

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrEmptyResponse is returned when the model answered but no usable
// suggestion text remained after trimming.
var ErrEmptyResponse = errors.New("No response from model")

// NetworkError reports a transport failure or a non-2xx response from the
// model endpoint. For non-2xx responses Err is nil and Status carries the
// HTTP status text.
type NetworkError struct {
	Op         string
	StatusCode int
	Status     string
	Err        error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Status)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// statusError builds a NetworkError for a non-2xx response.
func statusError(op string, resp *http.Response) *NetworkError {
	status := http.StatusText(resp.StatusCode)
	if status == "" {
		status = resp.Status
	}
	return &NetworkError{Op: op, StatusCode: resp.StatusCode, Status: status}
}

// APIError is a logical error reported by the server inside a successful
// HTTP response.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return "API error: " + e.Message
}
