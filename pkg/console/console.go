// Package console is the interactive terminal front end of MiComedor. Every
// screen is a list view over one entity and every dialog is a form session
// submitted through the gateway. Prompts go through a prompt.Driver, so the
// whole console can be driven by a script in tests.
package console

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-micomedor/pkg/comedor"
	"github.com/goliatone/go-micomedor/pkg/console/prompt"
	"github.com/goliatone/go-micomedor/pkg/form"
	"github.com/goliatone/go-micomedor/pkg/gateway"
	"github.com/goliatone/go-micomedor/pkg/listview"
	"github.com/goliatone/go-micomedor/pkg/report"
	"github.com/goliatone/go-micomedor/pkg/session"
	"github.com/goliatone/go-micomedor/pkg/validation"
)

// Menu labels.
const (
	MenuBeneficiaries = "Beneficiarios"
	MenuProducts      = "Productos"
	MenuRations       = "Raciones"
	MenuBudget        = "Presupuesto"
	MenuTasks         = "Tareas"
	MenuNotes         = "Notas"
	MenuReports       = "Reportes"
	MenuLogout        = "Cerrar sesión"
	MenuQuit          = "Salir"

	MenuLogin    = "Iniciar sesión"
	MenuRegister = "Registrarse"
)

// MsgSessionExpired is shown when the backend rejects the stored token.
const MsgSessionExpired = "Tu sesión expiró. Inicia sesión nuevamente."

// Option configures a Console.
type Option func(*Console)

// WithLogger sets the logger. Dialog outcomes are logged at info.
func WithLogger(l *zap.Logger) Option {
	return func(c *Console) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithPageSizes sets the initial page size per entity.
func WithPageSizes(sizes map[string]int) Option {
	return func(c *Console) {
		for entity, size := range sizes {
			if size > 0 {
				c.pageSizes[entity] = size
			}
		}
	}
}

// WithClock overrides time.Now for reports.
func WithClock(now func() time.Time) Option {
	return func(c *Console) {
		if now != nil {
			c.now = now
		}
	}
}

// WithReportOptions configures the report renderer.
func WithReportOptions(opts ...report.RendererOption) Option {
	return func(c *Console) {
		c.reportOpts = append(c.reportOpts, opts...)
	}
}

// Console runs the menus.
type Console struct {
	client *gateway.Client
	store  session.Store
	driver prompt.Driver
	logger *zap.Logger

	pageSizes  map[string]int
	now        func() time.Time
	reportOpts []report.RendererOption
	reports    *report.Renderer
	translator validation.Translator
	locale     string
}

// WithTranslator localizes dialog validation messages for locale.
func WithTranslator(t validation.Translator, locale string) Option {
	return func(c *Console) {
		c.translator = t
		c.locale = locale
	}
}

// New builds a console. The store must be the provider client reads the
// session from.
func New(client *gateway.Client, store session.Store, driver prompt.Driver, opts ...Option) (*Console, error) {
	if client == nil || store == nil || driver == nil {
		return nil, errors.New("console: client, store and driver are required")
	}
	c := &Console{
		client:    client,
		store:     store,
		driver:    driver,
		logger:    zap.NewNop(),
		pageSizes: map[string]int{comedor.EntityBeneficiary: 3},
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	reports, err := report.NewRenderer(c.reportOpts...)
	if err != nil {
		return nil, fmt.Errorf("console: %w", err)
	}
	c.reports = reports
	return c, nil
}

// Run shows the login menu until a user is stored, then the main menu. It
// returns nil when the user quits or interrupts a menu.
func (c *Console) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if _, err := session.Require(c.store); err != nil {
			quit, err := c.welcome(ctx)
			if err != nil {
				return quietAbort(err)
			}
			if quit {
				return nil
			}
			continue
		}

		quit, err := c.mainMenu(ctx)
		switch {
		case err == nil && quit:
			return nil
		case err == nil:
			continue
		case IsAuthError(err):
			c.expire(ctx)
		default:
			return quietAbort(err)
		}
	}
}

// IsAuthError reports whether err means the user must log in again.
func IsAuthError(err error) bool {
	return errors.Is(err, session.ErrNotAuthenticated) || errors.Is(err, gateway.ErrUnauthorized)
}

func (c *Console) expire(ctx context.Context) {
	if err := session.Logout(c.store); err != nil {
		c.logger.Warn("clear session", zap.Error(err))
	}
	c.logger.Info("session expired")
	c.info(ctx, MsgSessionExpired)
}

func (c *Console) mainMenu(ctx context.Context) (bool, error) {
	user, err := session.Require(c.store)
	if err != nil {
		return false, err
	}
	options := []string{
		MenuBeneficiaries, MenuProducts, MenuRations, MenuBudget,
		MenuTasks, MenuNotes, MenuReports, MenuLogout, MenuQuit,
	}
	idx, err := c.driver.Select(ctx, prompt.SelectConfig{
		Message:  fmt.Sprintf("Hola, %s. ¿Qué deseas hacer?", user.Username),
		Options:  options,
		PageSize: len(options),
	})
	if err != nil {
		return false, err
	}

	switch options[idx] {
	case MenuBeneficiaries:
		return false, c.beneficiaries().run(ctx, c)
	case MenuProducts:
		return false, c.products().run(ctx, c)
	case MenuRations:
		return false, c.rations().run(ctx, c)
	case MenuBudget:
		return false, c.budgets().run(ctx, c)
	case MenuTasks:
		return false, c.tasks().run(ctx, c)
	case MenuNotes:
		return false, c.notes().run(ctx, c)
	case MenuReports:
		return false, c.reportsMenu(ctx)
	case MenuLogout:
		if err := session.Logout(c.store); err != nil {
			return false, fmt.Errorf("console: logout: %w", err)
		}
		c.logger.Info("logout", zap.String("username", user.Username))
		c.info(ctx, "Sesión cerrada.")
		return false, nil
	default:
		return true, nil
	}
}

// notifier prints session notifications with a severity marker.
func (c *Console) notifier(ctx context.Context) form.Notifier {
	return form.NotifierFunc(func(n form.Notification) {
		c.info(ctx, FormatNotification(n))
	})
}

// FormatNotification renders a notification as one terminal line.
func FormatNotification(n form.Notification) string {
	switch n.Severity {
	case form.SeveritySuccess:
		return "✔ " + n.Message
	case form.SeverityWarning:
		return "⚠ " + n.Message
	case form.SeverityError:
		return "✖ " + n.Message
	default:
		return "ℹ " + n.Message
	}
}

func (c *Console) info(ctx context.Context, msg string) {
	if err := c.driver.Info(ctx, msg); err != nil {
		c.logger.Debug("write info", zap.Error(err))
	}
}

func (c *Console) pageSize(entity string) int {
	if size, ok := c.pageSizes[entity]; ok && size > 0 {
		return size
	}
	return listview.DefaultPageSize
}

func quietAbort(err error) error {
	if errors.Is(err, prompt.ErrAborted) {
		return nil
	}
	return err
}
