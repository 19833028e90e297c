package form

import (
	"errors"
	"sort"
	"strings"

	"github.com/goliatone/go-micomedor/pkg/validation"
)

var (
	// ErrSessionClosed is returned by any operation on a session that already
	// succeeded or was cancelled.
	ErrSessionClosed = errors.New("form: session closed")
	// ErrSubmitInProgress is returned when Submit is called while another
	// submission of the same session is in flight.
	ErrSubmitInProgress = errors.New("form: submit in progress")
	// ErrUnknownField is returned when setting a field the schema does not
	// declare.
	ErrUnknownField = errors.New("form: unknown field")
	// ErrInvalidDefinition is returned when a definition lacks a required
	// hook.
	ErrInvalidDefinition = errors.New("form: invalid definition")
)

// conflictError is implemented by remote errors that signal a duplicate or
// conflicting record.
type conflictError interface {
	Conflict() bool
}

// fieldErrorSource is implemented by remote errors carrying a validation
// payload keyed by field path.
type fieldErrorSource interface {
	FieldErrors() map[string][]string
}

// ErrorMapping splits a server validation payload into field-level and
// form-level messages.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MapErrorPayload assigns each payload key to a schema field. Keys may be
// bare names, dotted paths or JSON pointers ("/body/dniBenefeciary"); the
// last segment that names a field wins. Keys that match no field become
// form-level messages so nothing is lost.
func MapErrorPayload(schema validation.Schema, payload map[string][]string, aliases map[string]string) ErrorMapping {
	var mapping ErrorMapping
	if len(payload) == 0 {
		return mapping
	}

	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		messages := normalizeMessages(payload[key])
		if len(messages) == 0 {
			continue
		}
		field := resolveField(schema, key, aliases)
		if field == "" {
			mapping.Form = append(mapping.Form, messages...)
			continue
		}
		if mapping.Fields == nil {
			mapping.Fields = make(map[string][]string)
		}
		mapping.Fields[field] = append(mapping.Fields[field], messages...)
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func resolveField(schema validation.Schema, key string, aliases map[string]string) string {
	segments := pathSegments(key)
	for i := len(segments) - 1; i >= 0; i-- {
		segment := segments[i]
		if alias, ok := aliases[segment]; ok {
			segment = alias
		}
		if schema.Has(segment) {
			return segment
		}
	}
	return ""
}

func pathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	clean = strings.TrimLeft(clean, "#$/.")
	clean = strings.NewReplacer("[", ".", "]", "").Replace(clean)
	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		out = append(out, part)
	}
	return out
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
