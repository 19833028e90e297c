package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrConflict marks an HTTP 400, which the backend uses for duplicate
	// or conflicting records.
	ErrConflict = errors.New("gateway: conflict")
	// ErrUnauthorized marks an HTTP 401 or 403.
	ErrUnauthorized = errors.New("gateway: unauthorized")
	// ErrNotFound marks an HTTP 404.
	ErrNotFound = errors.New("gateway: not found")
)

// APIError is a non-2xx response.
type APIError struct {
	Operation  string
	Method     string
	Path       string
	StatusCode int
	RequestID  string
	Message    string
	Body       []byte

	fields   map[string][]string
	sentinel error
}

func newAPIError(op, method, path, requestID string, status int, body []byte) *APIError {
	e := &APIError{
		Operation:  op,
		Method:     method,
		Path:       path,
		StatusCode: status,
		RequestID:  requestID,
		Body:       body,
	}
	switch status {
	case http.StatusBadRequest:
		e.sentinel = ErrConflict
	case http.StatusUnauthorized, http.StatusForbidden:
		e.sentinel = ErrUnauthorized
	case http.StatusNotFound:
		e.sentinel = ErrNotFound
	}
	e.Message, e.fields = decodeErrorBody(body)
	return e
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("gateway: %s: %s %s: %d %s", e.Operation, e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Unwrap exposes the status sentinel, if any.
func (e *APIError) Unwrap() error {
	return e.sentinel
}

// Conflict reports whether the backend rejected the record as a duplicate.
func (e *APIError) Conflict() bool {
	return e.StatusCode == http.StatusBadRequest
}

// FieldErrors returns the validation payload of the response, keyed by the
// paths the backend reported.
func (e *APIError) FieldErrors() map[string][]string {
	if len(e.fields) == 0 {
		return nil
	}
	out := make(map[string][]string, len(e.fields))
	for k, v := range e.fields {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// decodeErrorBody understands {"message": "..."}, {"error": "..."} and an
// "errors" member that is either a map of field to message(s) or a list of
// {"field": "...", "message": "..."} objects.
func decodeErrorBody(body []byte) (string, map[string][]string) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return "", nil
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		if len(trimmed) > 200 {
			trimmed = trimmed[:200]
		}
		return trimmed, nil
	}

	var message string
	for _, key := range []string{"message", "error", "detail"} {
		if raw, ok := payload[key]; ok {
			if err := json.Unmarshal(raw, &message); err == nil && message != "" {
				break
			}
		}
	}

	raw, ok := payload["errors"]
	if !ok {
		return message, nil
	}
	fields := map[string][]string{}

	var asMap map[string]json.RawMessage
	if err := json.Unmarshal(raw, &asMap); err == nil {
		for field, value := range asMap {
			var many []string
			if err := json.Unmarshal(value, &many); err == nil {
				fields[field] = append(fields[field], many...)
				continue
			}
			var one string
			if err := json.Unmarshal(value, &one); err == nil {
				fields[field] = append(fields[field], one)
			}
		}
		return message, fields
	}

	var asList []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &asList); err == nil {
		for _, item := range asList {
			fields[item.Field] = append(fields[item.Field], item.Message)
		}
	}
	return message, fields
}
