package report

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/goliatone/go-micomedor/pkg/gateway"
	"github.com/goliatone/go-micomedor/pkg/render/template"
	"github.com/goliatone/go-micomedor/pkg/render/template/gotemplate"
)

//go:embed templates/*.tpl
var embedded embed.FS

// Template names.
const (
	TemplateDaily  = "daily"
	TemplateWeekly = "weekly"
)

// MsgSectionFailed is shown in place of a section that could not load.
const MsgSectionFailed = "No se pudieron cargar los datos"

// RendererOption configures a Renderer.
type RendererOption func(*rendererConfig)

type rendererConfig struct {
	locale      string
	templateDir string
	engine      template.Renderer
}

// WithLocale sets the locale for dates and amounts.
func WithLocale(locale string) RendererOption {
	return func(c *rendererConfig) {
		c.locale = locale
	}
}

// WithTemplateDir loads templates from dir before the embedded ones, so a
// single template can be overridden.
func WithTemplateDir(dir string) RendererOption {
	return func(c *rendererConfig) {
		c.templateDir = dir
	}
}

// WithEngine replaces the template engine.
func WithEngine(engine template.Renderer) RendererOption {
	return func(c *rendererConfig) {
		c.engine = engine
	}
}

// Renderer turns reports into plain text.
type Renderer struct {
	engine template.Renderer
	format Formatter
}

// NewRenderer builds a renderer over the embedded templates.
func NewRenderer(opts ...RendererOption) (*Renderer, error) {
	cfg := &rendererConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	engine := cfg.engine
	if engine == nil {
		files, err := fs.Sub(embedded, "templates")
		if err != nil {
			return nil, fmt.Errorf("report: templates: %w", err)
		}
		engineOpts := []gotemplate.Option{gotemplate.WithName("report"), gotemplate.WithFS(files)}
		if dir := strings.TrimSpace(cfg.templateDir); dir != "" {
			engineOpts = append(engineOpts, gotemplate.WithBaseDir(dir))
		}
		engine, err = gotemplate.New(engineOpts...)
		if err != nil {
			return nil, fmt.Errorf("report: %w", err)
		}
	}
	return &Renderer{engine: engine, format: NewFormatter(cfg.locale)}, nil
}

// Daily renders d.
func (r *Renderer) Daily(d Daily, out ...io.Writer) (string, error) {
	view := map[string]any{
		"date":    r.format.LongDate(d.Date),
		"rations": r.format.Count(d.Rations.Total),
		"errors":  sectionErrors(d.Errors),
	}
	if d.Budget != nil {
		view["budget"] = r.money(d.Budget.Income, d.Budget.Expense, d.Budget.Balance)
	}
	expiring := make([]any, 0, len(d.Expiring))
	for _, p := range d.Expiring {
		expiring = append(expiring, map[string]any{
			"description": strings.TrimSpace(p.Description),
			"date":        r.format.ShortDate(p.ExpirationDate),
		})
	}
	view["expiring"] = expiring
	served := make([]any, 0, len(d.Beneficiaries))
	for _, b := range d.Beneficiaries {
		served = append(served, r.format.Count(b.Total))
	}
	view["beneficiaries"] = served
	return r.render(TemplateDaily, view, out)
}

// Weekly renders w.
func (r *Renderer) Weekly(w Weekly, out ...io.Writer) (string, error) {
	view := map[string]any{
		"date":   r.format.LongDate(startOfWeek(w.Date)),
		"errors": sectionErrors(w.Errors),
	}
	if w.Budget != nil {
		view["budget"] = r.money(w.Budget.Income, w.Budget.Expense, w.Budget.Balance)
	}
	return r.render(TemplateWeekly, view, out)
}

func (r *Renderer) money(income, expense, balance float64) map[string]any {
	return map[string]any{
		"income":  r.format.Amount(income),
		"expense": r.format.Amount(expense),
		"balance": r.format.Amount(balance),
	}
}

func (r *Renderer) render(name string, view map[string]any, out []io.Writer) (string, error) {
	raw, err := r.engine.RenderTemplate(name, view)
	if err != nil {
		return "", fmt.Errorf("report: render %s: %w", name, err)
	}
	text := tidy(raw)
	for _, w := range out {
		if w == nil {
			continue
		}
		if _, err := io.WriteString(w, text); err != nil {
			return "", fmt.Errorf("report: write %s: %w", name, err)
		}
	}
	return text, nil
}

func sectionErrors(errs map[string]error) map[string]any {
	out := make(map[string]any, len(errs))
	for name, err := range errs {
		if err == nil {
			continue
		}
		msg := MsgSectionFailed + "."
		var apiErr *gateway.APIError
		if errors.As(err, &apiErr) {
			msg = fmt.Sprintf("%s (%d).", MsgSectionFailed, apiErr.StatusCode)
		}
		out[name] = msg
	}
	return out
}

// startOfWeek returns the Monday of t's week.
func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}

// tidy trims trailing spaces, collapses runs of blank lines and ends the text
// with a single newline.
func tidy(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			if blank || len(out) == 0 {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, line)
	}
	return strings.TrimRight(strings.Join(out, "\n"), "\n") + "\n"
}
