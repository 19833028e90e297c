package report

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/goliatone/go-micomedor/pkg/form"
)

var (
	weekdaysES = [...]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"}
	monthsES   = [...]string{"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"}
)

// Formatter renders dates and amounts for a locale. Spanish is the console's
// language; other locales fall back to English layouts.
type Formatter struct {
	tag     language.Tag
	printer *message.Printer
	spanish bool
}

// NewFormatter parses locale as a BCP 47 tag, defaulting to Spanish.
func NewFormatter(locale string) Formatter {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil || tag == language.Und {
		tag = language.Spanish
	}
	base, _ := tag.Base()
	spanish, _ := language.Spanish.Base()
	return Formatter{
		tag:     tag,
		printer: message.NewPrinter(tag),
		spanish: base == spanish,
	}
}

// Tag returns the parsed locale.
func (f Formatter) Tag() language.Tag {
	return f.tag
}

// LongDate renders t like "lunes, 10 de junio de 2024".
func (f Formatter) LongDate(t time.Time) string {
	if !f.spanish {
		return t.Format("Monday, January 02, 2006")
	}
	return weekdaysES[t.Weekday()] + ", " + t.Format("02") + " de " + monthsES[t.Month()-1] + " de " + t.Format("2006")
}

// ShortDate renders a backend date (YYYY-MM-DD with an optional time part)
// as DD/MM/YYYY in Spanish. Unparseable input is returned trimmed.
func (f Formatter) ShortDate(raw string) string {
	day := form.DateOf(raw)
	t, err := time.Parse("2006-01-02", day)
	if err != nil {
		return strings.TrimSpace(raw)
	}
	if !f.spanish {
		return t.Format("01/02/2006")
	}
	return t.Format("02/01/2006")
}

// Amount renders v with two decimals and the locale's separators.
func (f Formatter) Amount(v float64) string {
	return f.printer.Sprintf("%.2f", v)
}

// Count renders n with the locale's grouping.
func (f Formatter) Count(n int) string {
	return f.printer.Sprintf("%d", n)
}
