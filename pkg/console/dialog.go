package console

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/goliatone/go-micomedor/pkg/comedor"
	"github.com/goliatone/go-micomedor/pkg/console/prompt"
	"github.com/goliatone/go-micomedor/pkg/form"
	"github.com/goliatone/go-micomedor/pkg/validation"
)

// Dialog prompts.
const (
	PromptSave  = "¿Guardar los cambios?"
	PromptRetry = "¿Reintentar?"

	MsgCanceled = "Operación cancelada."
)

// errNoOptions ends a dialog whose reference field has nothing to pick.
var errNoOptions = errors.New("console: no options to choose from")

// dialog drives one form session through the prompt driver.
type dialog[R any, C comparable] struct {
	def    form.Definition[R, C]
	submit form.Submitter[R]
	// choices lists the selectable values of reference fields.
	choices map[string][]comedor.Option
	// secret fields are read without echo.
	secret map[string]bool
	// public dialogs report authentication failures instead of returning
	// them, since they run without a session.
	public    bool
	confirm   bool
	onSuccess func()
}

// run opens a session on record and loops until it is saved, canceled, or a
// non-recoverable error occurs. It reports whether the record was saved.
func (d dialog[R, C]) run(ctx context.Context, c *Console, mode form.Mode, record R) (bool, error) {
	opts := []form.Option{form.WithNotifier(c.notifier(ctx))}
	if d.onSuccess != nil {
		opts = append(opts, form.OnSuccess(d.onSuccess))
	}
	if c.translator != nil {
		opts = append(opts, form.WithTranslator(c.translator, c.locale))
	}

	var (
		s   *form.Session[R, C]
		err error
	)
	if mode == form.ModeEdit {
		s, err = form.NewEdit(d.def, record, opts...)
	} else {
		s, err = form.NewCreate(d.def, opts...)
	}
	if err != nil {
		return false, fmt.Errorf("console: %w", err)
	}

	saved, err := d.loop(ctx, c, s)
	if errors.Is(err, prompt.ErrAborted) || errors.Is(err, errNoOptions) {
		_ = s.Cancel()
		c.info(ctx, MsgCanceled)
		return false, nil
	}
	return saved, err
}

func (d dialog[R, C]) loop(ctx context.Context, c *Console, s *form.Session[R, C]) (bool, error) {
	fields := d.def.Schema.Fields()
prompting:
	for {
		for _, field := range fields {
			if err := d.promptField(ctx, c, s, field); err != nil {
				return false, err
			}
		}

		if d.confirm {
			ok, err := c.driver.Confirm(ctx, prompt.ConfirmConfig{Message: PromptSave, Default: true})
			if err != nil {
				return false, err
			}
			if !ok {
				_ = s.Cancel()
				c.info(ctx, MsgCanceled)
				d.log(c, s, "canceled")
				return false, nil
			}
		}

		for {
			res, err := s.Submit(ctx, d.submit)
			if err != nil {
				return false, fmt.Errorf("console: %s: %w", d.def.Name, err)
			}

			switch {
			case res.Decision == form.DecisionNoChanges:
				_ = s.Cancel()
				d.log(c, s, res.Decision.String())
				return false, nil
			case res.Decision == form.DecisionInvalid:
				d.log(c, s, res.Decision.String())
				d.showErrors(ctx, c, res.Errors)
				continue prompting
			case res.Err == nil:
				d.log(c, s, "saved")
				return true, nil
			}

			d.log(c, s, "failed", zap.Error(res.Err))
			if !d.public && IsAuthError(res.Err) {
				return false, res.Err
			}
			for _, msg := range s.FormErrors() {
				c.info(ctx, "  "+msg)
			}
			if visible := s.VisibleErrors(); !visible.Empty() {
				d.showErrors(ctx, c, visible)
				continue prompting
			}
			retry, err := c.driver.Confirm(ctx, prompt.ConfirmConfig{Message: PromptRetry, Default: true})
			if err != nil {
				return false, err
			}
			if !retry {
				_ = s.Cancel()
				return false, nil
			}
		}
	}
}

// promptField asks for one field until the session accepts its value.
func (d dialog[R, C]) promptField(ctx context.Context, c *Console, s *form.Session[R, C], field validation.Field) error {
	if options, ok := d.choices[field.Name]; ok {
		return d.promptChoice(ctx, c, s, field, options)
	}

	for {
		cfg := prompt.InputConfig{Message: field.Label, Default: s.Value(field.Name)}
		var (
			raw string
			err error
		)
		if d.secret[field.Name] {
			cfg.Default = ""
			raw, err = c.driver.Password(ctx, cfg)
		} else {
			raw, err = c.driver.Input(ctx, cfg)
		}
		if err != nil {
			return err
		}
		if _, err := s.Set(field.Name, raw); err != nil {
			return fmt.Errorf("console: %w", err)
		}
		if msg := s.FieldError(field.Name); msg != "" {
			c.info(ctx, fmt.Sprintf("  %s: %s", field.Label, msg))
			continue
		}
		return nil
	}
}

func (d dialog[R, C]) promptChoice(ctx context.Context, c *Console, s *form.Session[R, C], field validation.Field, options []comedor.Option) error {
	current := s.Value(field.Name)
	options = withCurrent(options, current)
	if len(options) == 0 {
		c.info(ctx, fmt.Sprintf("  %s: no hay opciones disponibles", field.Label))
		return errNoOptions
	}

	labels := make([]string, len(options))
	def := -1
	for i, opt := range options {
		labels[i] = opt.Label
		if opt.Value() == current {
			def = i
		}
	}

	for {
		idx, err := c.driver.Select(ctx, prompt.SelectConfig{
			Message:      field.Label,
			Options:      labels,
			DefaultIndex: def,
		})
		if err != nil {
			return err
		}
		if _, err := s.Set(field.Name, options[idx].Value()); err != nil {
			return fmt.Errorf("console: %w", err)
		}
		if msg := s.FieldError(field.Name); msg != "" {
			c.info(ctx, fmt.Sprintf("  %s: %s", field.Label, msg))
			continue
		}
		return nil
	}
}

// withCurrent keeps a reference that is no longer selectable, such as a
// deleted beneficiary, as the first option so an edit can leave it alone.
func withCurrent(options []comedor.Option, current string) []comedor.Option {
	id, err := strconv.ParseInt(current, 10, 64)
	if err != nil || id <= 0 {
		return options
	}
	for _, opt := range options {
		if opt.ID == id {
			return options
		}
	}
	kept := comedor.Option{ID: id, Label: fmt.Sprintf("Sin cambios (#%d)", id)}
	return append([]comedor.Option{kept}, options...)
}

func (d dialog[R, C]) showErrors(ctx context.Context, c *Console, errs validation.Errors) {
	for _, name := range errs.Fields() {
		label := name
		if field, ok := d.def.Schema.Field(name); ok && field.Label != "" {
			label = field.Label
		}
		c.info(ctx, fmt.Sprintf("  %s: %s", label, errs[name]))
	}
}

func (d dialog[R, C]) log(c *Console, s *form.Session[R, C], outcome string, fields ...zap.Field) {
	c.logger.Info("dialog",
		append([]zap.Field{
			zap.String("form", d.def.Name),
			zap.String("mode", s.Mode().String()),
			zap.String("outcome", outcome),
		}, fields...)...,
	)
}
