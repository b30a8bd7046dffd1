package jira

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrOffline wraps every transport failure (DNS, refused, timeout).
var ErrOffline = errors.New("offline or server unreachable")

// StatusError is a non-2xx response from the tracker.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	switch e.Code {
	case http.StatusBadRequest:
		return "bad request (400): check the JQL query"
	case http.StatusUnauthorized:
		return "unauthorized (401): check your username, password or token"
	case http.StatusForbidden:
		return "forbidden (403): your account cannot run this search"
	case http.StatusNotFound:
		return "not found (404): check the server URL"
	case http.StatusInternalServerError:
		return "server error (500): the tracker failed to handle the request"
	}
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, body)
}

// UserMessage turns any error from this package into text fit for the
// error display.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return cfgErr.Error()
	}
	if errors.Is(err, ErrOffline) {
		return "You appear to be offline or the server is unreachable."
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Error()
	}
	return err.Error()
}
