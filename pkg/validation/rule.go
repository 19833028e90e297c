package validation

import (
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Message keys used to look up localized rule messages.
const (
	KeyRequired      = "validation.required"
	KeyPattern       = "validation.pattern"
	KeyLetters       = "validation.letters"
	KeyDigits        = "validation.digits"
	KeyIntRange      = "validation.int_range"
	KeyNoLeadingZero = "validation.no_leading_zero"
	KeyMinLength     = "validation.min_length"
	KeyMaxLength     = "validation.max_length"
	KeyPositive      = "validation.positive"
	KeyDecimal       = "validation.decimal"
	KeyDate          = "validation.date"
	KeyTime          = "validation.time"
	KeyEmail         = "validation.email"
)

// NameAlphabet lists the characters accepted by name fields besides ASCII
// letters.
const NameAlphabet = "ÁÉÍÓÚáéíóúÑñÜü"

// DateLayout is the canonical date representation used on the wire.
const DateLayout = "2006-01-02"

var (
	lettersPattern   = regexp.MustCompile(`^[A-Za-z` + NameAlphabet + ` ]+$`)
	leadingZeroRegex = regexp.MustCompile(`^0\d`)
	timePattern      = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d(:[0-5]\d)?$`)
)

// Rule is a single pure check applied to a raw field value.
type Rule struct {
	Key     string
	Message string
	Args    []any

	check    func(string) bool
	required bool
}

// Check reports whether value satisfies the rule. Empty values pass every
// rule except Required.
func (r Rule) Check(value string) bool {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" && !r.required {
		return true
	}
	if r.check == nil {
		return true
	}
	return r.check(trimmed)
}

// IsRequired reports whether the rule rejects empty values.
func (r Rule) IsRequired() bool {
	return r.required
}

// WithMessage returns a copy of the rule carrying a custom default message.
func (r Rule) WithMessage(message string) Rule {
	r.Message = message
	return r
}

// WithKey returns a copy of the rule looked up under a different message key.
func (r Rule) WithKey(key string) Rule {
	r.Key = key
	return r
}

// Required rejects empty or blank values.
func Required() Rule {
	return Rule{
		Key:      KeyRequired,
		Message:  "Campo obligatorio",
		required: true,
		check: func(v string) bool {
			return v != ""
		},
	}
}

// Pattern accepts values matching expr in full.
func Pattern(expr string, message string) Rule {
	re := regexp.MustCompile(expr)
	return Rule{
		Key:     KeyPattern,
		Message: message,
		Args:    []any{expr},
		check:   re.MatchString,
	}
}

// Letters accepts letters, accented letters and spaces.
func Letters() Rule {
	return Rule{
		Key:     KeyLetters,
		Message: "Solo se permiten letras",
		check:   lettersPattern.MatchString,
	}
}

// Digits accepts exactly n ASCII digits.
func Digits(n int) Rule {
	re := regexp.MustCompile(`^\d{` + strconv.Itoa(n) + `}$`)
	return Rule{
		Key:     KeyDigits,
		Message: "Debe tener exactamente " + strconv.Itoa(n) + " dígitos numéricos",
		Args:    []any{n},
		check:   re.MatchString,
	}
}

// IntRange accepts base-10 integers in [min, max].
func IntRange(min, max int) Rule {
	return Rule{
		Key:     KeyIntRange,
		Message: "Debe ser un número válido entre " + strconv.Itoa(min) + " y " + strconv.Itoa(max),
		Args:    []any{min, max},
		check: func(v string) bool {
			n, err := strconv.Atoi(v)
			if err != nil {
				return false
			}
			return n >= min && n <= max
		},
	}
}

// NoLeadingZero rejects numbers written with a leading zero ("05").
func NoLeadingZero() Rule {
	return Rule{
		Key:     KeyNoLeadingZero,
		Message: "No puede empezar con 0",
		check: func(v string) bool {
			return !leadingZeroRegex.MatchString(v)
		},
	}
}

// MinLength accepts values with at least n characters.
func MinLength(n int) Rule {
	return Rule{
		Key:     KeyMinLength,
		Message: "Debe tener al menos " + strconv.Itoa(n) + " caracteres",
		Args:    []any{n},
		check: func(v string) bool {
			return utf8.RuneCountInString(v) >= n
		},
	}
}

// MaxLength accepts values with at most n characters.
func MaxLength(n int) Rule {
	return Rule{
		Key:     KeyMaxLength,
		Message: "No puede superar " + strconv.Itoa(n) + " caracteres",
		Args:    []any{n},
		check: func(v string) bool {
			return utf8.RuneCountInString(v) <= n
		},
	}
}

// Positive accepts numbers strictly greater than zero.
func Positive() Rule {
	return Rule{
		Key:     KeyPositive,
		Message: "Debe ser un número positivo",
		check: func(v string) bool {
			n, err := strconv.ParseFloat(v, 64)
			return err == nil && n > 0
		},
	}
}

// Decimal accepts numbers with at most intDigits integer digits and
// fracDigits decimal digits. The integer part cannot carry a leading zero
// unless it is a single "0".
func Decimal(intDigits, fracDigits int) Rule {
	expr := `^(0|[1-9]\d{0,` + strconv.Itoa(intDigits-1) + `})(\.\d{1,` + strconv.Itoa(fracDigits) + `})?$`
	re := regexp.MustCompile(expr)
	return Rule{
		Key:     KeyDecimal,
		Message: "Máximo " + strconv.Itoa(intDigits) + " enteros y " + strconv.Itoa(fracDigits) + " decimales",
		Args:    []any{intDigits, fracDigits},
		check:   re.MatchString,
	}
}

// Date accepts YYYY-MM-DD, optionally followed by a time component.
func Date() Rule {
	return Rule{
		Key:     KeyDate,
		Message: "Fecha inválida",
		check: func(v string) bool {
			if len(v) < len(DateLayout) {
				return false
			}
			if len(v) > len(DateLayout) && v[len(DateLayout)] != 'T' && v[len(DateLayout)] != ' ' {
				return false
			}
			_, err := time.Parse(DateLayout, v[:len(DateLayout)])
			return err == nil
		},
	}
}

// Time accepts HH:MM with an optional :SS suffix.
func Time() Rule {
	return Rule{
		Key:     KeyTime,
		Message: "Hora inválida",
		check:   timePattern.MatchString,
	}
}

// Email accepts a single bare address.
func Email() Rule {
	return Rule{
		Key:     KeyEmail,
		Message: "Correo inválido",
		check: func(v string) bool {
			addr, err := mail.ParseAddress(v)
			return err == nil && addr.Address == v
		},
	}
}

// Predicate wraps an arbitrary pure check.
func Predicate(key, message string, fn func(string) bool) Rule {
	return Rule{
		Key:     key,
		Message: message,
		check:   fn,
	}
}
