package validation

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Catalog is a Translator backed by message templates keyed by base
// language and message key. Templates use indexed verbs over the rule
// arguments, e.g. "%[1]d".
type Catalog map[string]map[string]string

// errNoTranslation is returned when a catalog has no template for a key.
var errNoTranslation = errors.New("validation: no translation")

// Translate implements Translator. Regional tags fall back to their base
// language, so "en-GB" reads the "en" templates.
func (c Catalog) Translate(locale, key string, args ...any) (string, error) {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return "", fmt.Errorf("validation: locale %q: %w", locale, err)
	}
	base, _ := tag.Base()
	tmpl, ok := c[base.String()][key]
	if !ok {
		return "", fmt.Errorf("%w for %s in %s", errNoTranslation, key, base)
	}
	if !strings.Contains(tmpl, "%") {
		return tmpl, nil
	}
	return fmt.Sprintf(tmpl, args...), nil
}

// DefaultCatalog returns the English rule messages. Spanish is built into
// the rules themselves and needs no entry.
func DefaultCatalog() Catalog {
	return Catalog{
		"en": {
			KeyRequired:      "Required field",
			KeyPattern:       "Invalid format",
			KeyLetters:       "Only letters are allowed",
			KeyDigits:        "Must have exactly %[1]d digits",
			KeyIntRange:      "Must be a number between %[1]d and %[2]d",
			KeyNoLeadingZero: "Cannot start with 0",
			KeyMinLength:     "Must have at least %[1]d characters",
			KeyMaxLength:     "Cannot exceed %[1]d characters",
			KeyPositive:      "Must be a positive number",
			KeyDecimal:       "At most %[1]d integer and %[2]d decimal digits",
			KeyDate:          "Invalid date",
			KeyTime:          "Invalid time",
			KeyEmail:         "Invalid email",
		},
	}
}
