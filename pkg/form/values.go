package form

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-micomedor/pkg/validation"
)

// Values maps field names to raw user-entered strings.
type Values map[string]string

// Get returns the raw value for name, or "" when unset.
func (v Values) Get(name string) string {
	if v == nil {
		return ""
	}
	return v[name]
}

// Clone returns an independent copy.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Text is the canonical comparable form of a free-text value.
func Text(raw string) string {
	return strings.TrimSpace(raw)
}

// Number is the canonical comparable form of a numeric value. Values that do
// not parse keep their trimmed text in Raw so an invalid edit still differs
// from a valid baseline.
type Number struct {
	Value float64
	Raw   string
	Valid bool
}

// NumberOf parses raw as a float. "10", "10.0" and " 10 " compare equal.
func NumberOf(raw string) Number {
	trimmed := strings.TrimSpace(raw)
	if n, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsNaN(n) {
		return Number{Value: n, Valid: true}
	}
	return Number{Raw: trimmed}
}

// Float returns the parsed value and whether raw was numeric.
func (n Number) Float() (float64, bool) {
	return n.Value, n.Valid
}

var dateLayouts = []string{
	validation.DateLayout,
	"02/01/2006",
	"2/1/2006",
}

// DateOf reduces a date or timestamp to YYYY-MM-DD, dropping any time and
// zone component as written. Unparseable input is returned trimmed.
func DateOf(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if len(trimmed) >= len(validation.DateLayout) {
		if _, err := time.Parse(validation.DateLayout, trimmed[:len(validation.DateLayout)]); err == nil {
			return trimmed[:len(validation.DateLayout)]
		}
	}
	for _, layout := range dateLayouts[1:] {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format(validation.DateLayout)
		}
	}
	return trimmed
}

// TimeOf reduces a clock time to HH:MM.
func TimeOf(raw string) string {
	trimmed := strings.TrimSpace(raw)
	for _, layout := range []string{"15:04:05", "15:04", "3:04 PM"} {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format("15:04")
		}
	}
	return trimmed
}

// Ref is the canonical comparable form of a nested object reduced to its
// identifying key.
type Ref struct {
	ID  int64
	Raw string
}

// RefOf parses raw as an identifier. Empty input yields the zero Ref.
func RefOf(raw string) Ref {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Ref{}
	}
	if id, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return Ref{ID: id}
	}
	return Ref{Raw: trimmed}
}

// FormatID renders an identifier as a field value. Zero becomes "".
func FormatID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

// FormatNumber renders a float without trailing zeros.
func FormatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// FormatInt renders an integer field value. Zero becomes "" so create
// templates start blank.
func FormatInt(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
