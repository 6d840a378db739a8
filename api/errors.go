package api

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnexpectedHTML flags an HTML document arriving where JSON was expected,
// which in practice means the base URL points at a misconfigured endpoint.
var ErrUnexpectedHTML = errors.New("unexpected HTML payload where JSON was expected")

// APIError is an application-level failure: the envelope carried a code other
// than 200, regardless of the transport status.
type APIError struct {
	Code    int
	Message string
	Status  int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Code, e.Message)
}

// ValidationError is the HTTP 422 shape returned when a free-text enquiry is
// missing required information.
type ValidationError struct {
	Code          int      `json:"error_code"`
	Message       string   `json:"message"`
	MissingFields []string `json:"missing_fields"`
}

func (e *ValidationError) Error() string {
	if len(e.MissingFields) == 0 {
		return fmt.Sprintf("validation error %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("validation error %d: %s (missing: %s)",
		e.Code, e.Message, strings.Join(e.MissingFields, ", "))
}

// NetworkError means the request was sent but no response arrived: the
// server is unreachable, the connection dropped, or the 30s timeout fired.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: no response from %s, check connectivity: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// looksLikeHTML is the misconfiguration probe: a payload starting with a
// document preamble where JSON was expected.
func looksLikeHTML(body []byte) bool {
	trimmed := strings.TrimSpace(string(body))
	lower := strings.ToLower(trimmed)
	return strings.HasPrefix(lower, "<!doctype") || strings.HasPrefix(lower, "<html")
}
