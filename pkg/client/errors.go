package client

import (
	"errors"
	"fmt"
)

// APIError is a non-2xx answer decoded from the server's error envelope.
type APIError struct {
	Status      int
	Code        string
	Description string
	Reason      string
	Details     map[string]string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("authgate: %d %s", e.Status, e.Code)
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	if e.Description != "" {
		msg += ": " + e.Description
	}
	return msg
}

// ReasonOf returns the reason of the API error in err, or "".
func ReasonOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Reason
	}
	return ""
}

// StatusOf returns the HTTP status of the API error in err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// ErrNotLoggedIn is returned by calls that need an access token before the
// session has one.
var ErrNotLoggedIn = errors.New("authgate: session is not logged in")
