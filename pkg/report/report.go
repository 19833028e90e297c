// Package report gathers the daily and weekly dining reports of the current
// user and renders them as text. Each section loads independently; a failing
// section is recorded and the rest of the report still renders.
package report

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-micomedor/pkg/comedor"
	"github.com/goliatone/go-micomedor/pkg/gateway"
	"github.com/goliatone/go-micomedor/pkg/session"
)

// Section names, also used as keys of Daily.Errors and Weekly.Errors.
const (
	SectionRations       = "rations"
	SectionBudget        = "budget"
	SectionExpiring      = "expiring"
	SectionBeneficiaries = "beneficiaries"
)

// Source reads the report endpoints. *gateway.Client implements it.
type Source interface {
	RationsDaily(ctx context.Context) (comedor.RationsDaily, error)
	BeneficiariesDaily(ctx context.Context) ([]comedor.BeneficiariesDaily, error)
	BudgetDaily(ctx context.Context) ([]comedor.BudgetDaily, error)
	BudgetWeekly(ctx context.Context) ([]comedor.BudgetWeekly, error)
	ProductsExpiring(ctx context.Context) ([]comedor.ExpiringProduct, error)
}

// Daily is today's report.
type Daily struct {
	Date          time.Time
	Rations       comedor.RationsDaily
	Budget        *comedor.BudgetDaily
	Expiring      []comedor.ExpiringProduct
	Beneficiaries []comedor.BeneficiariesDaily
	Errors        map[string]error
}

// Weekly is the current week's report.
type Weekly struct {
	Date   time.Time
	Budget *comedor.BudgetWeekly
	Errors map[string]error
}

// Option configures a Builder.
type Option func(*Builder)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// WithLogger sets the logger for section failures.
func WithLogger(l *zap.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// Builder loads reports from a Source.
type Builder struct {
	source Source
	now    func() time.Time
	logger *zap.Logger
}

// NewBuilder returns a Builder reading from source.
func NewBuilder(source Source, opts ...Option) *Builder {
	b := &Builder{source: source, now: time.Now, logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Daily loads the four daily sections concurrently. It fails only when there
// is no session; other failures are kept in Daily.Errors.
func (b *Builder) Daily(ctx context.Context) (Daily, error) {
	d := Daily{Date: b.now()}
	var (
		rations  comedor.RationsDaily
		budget   []comedor.BudgetDaily
		expiring []comedor.ExpiringProduct
		served   []comedor.BeneficiariesDaily
	)
	errs := b.load(ctx, map[string]func(context.Context) error{
		SectionRations: func(ctx context.Context) (err error) {
			rations, err = b.source.RationsDaily(ctx)
			return err
		},
		SectionBudget: func(ctx context.Context) (err error) {
			budget, err = b.source.BudgetDaily(ctx)
			return err
		},
		SectionExpiring: func(ctx context.Context) (err error) {
			expiring, err = b.source.ProductsExpiring(ctx)
			return err
		},
		SectionBeneficiaries: func(ctx context.Context) (err error) {
			served, err = b.source.BeneficiariesDaily(ctx)
			return err
		},
	})
	if err := authError(errs); err != nil {
		return Daily{}, err
	}

	d.Rations = rations
	if len(budget) > 0 {
		d.Budget = &budget[0]
	}
	d.Expiring = expiring
	d.Beneficiaries = served
	d.Errors = errs
	return d, nil
}

// Weekly loads the weekly budget summary.
func (b *Builder) Weekly(ctx context.Context) (Weekly, error) {
	w := Weekly{Date: b.now()}
	var budget []comedor.BudgetWeekly
	errs := b.load(ctx, map[string]func(context.Context) error{
		SectionBudget: func(ctx context.Context) (err error) {
			budget, err = b.source.BudgetWeekly(ctx)
			return err
		},
	})
	if err := authError(errs); err != nil {
		return Weekly{}, err
	}
	if len(budget) > 0 {
		w.Budget = &budget[0]
	}
	w.Errors = errs
	return w, nil
}

func (b *Builder) load(ctx context.Context, sections map[string]func(context.Context) error) map[string]error {
	var (
		mu   sync.Mutex
		errs = make(map[string]error)
	)
	// sections fail independently, so no goroutine returns an error
	var g errgroup.Group
	for name, fetch := range sections {
		name, fetch := name, fetch
		g.Go(func() error {
			if err := fetch(ctx); err != nil {
				b.logger.Warn("report section failed", zap.String("section", name), zap.Error(err))
				mu.Lock()
				errs[name] = err
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errs
}

// authError returns the first section error that means the user must log in
// again: no stored session or a token the backend rejected.
func authError(errs map[string]error) error {
	for _, err := range errs {
		if errors.Is(err, session.ErrNotAuthenticated) || errors.Is(err, gateway.ErrUnauthorized) {
			return err
		}
	}
	return nil
}
