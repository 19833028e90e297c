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
	"github.com/goliatone/go-micomedor/pkg/gateway"
	"github.com/goliatone/go-micomedor/pkg/listview"
)

// Screen actions.
const (
	ActionNew      = "Nuevo"
	ActionEdit     = "Editar"
	ActionDelete   = "Eliminar"
	ActionSearch   = "Buscar"
	ActionNext     = "Página siguiente"
	ActionPrev     = "Página anterior"
	ActionPageSize = "Registros por página"
	ActionBack     = "Volver"

	OptionCancel = "Cancelar"
)

// Screen messages.
const (
	MsgLoadFailed   = "No se pudieron cargar los datos."
	MsgEmpty        = "No hay registros."
	MsgDeleted      = "Registro eliminado."
	MsgDeleteFailed = "No se pudo eliminar el registro."
)

// PageSizeChoices are offered by ActionPageSize.
var PageSizeChoices = []int{5, 10, 25}

// screen is the list and CRUD menu of one entity.
type screen[R gateway.Keyed, C comparable] struct {
	title    string
	entity   string
	resource *gateway.Resource[R]
	def      form.Definition[R, C]
	fields   listview.FieldsFunc[R]
	row      func(R) string
	// load defaults to the resource's records of the current user.
	load func(ctx context.Context) ([]R, error)
	// prepare returns the reference options of the dialog and the warnings
	// to show before it opens.
	prepare     func(ctx context.Context, mode form.Mode, rec R) (map[string][]comedor.Option, []string, error)
	search      form.InputFilter
	newestFirst bool
}

func (sc screen[R, C]) run(ctx context.Context, c *Console) error {
	loader := sc.load
	if loader == nil {
		loader = sc.resource.ListByUser
	}
	opts := []listview.Option{listview.WithPageSize(c.pageSize(sc.entity))}
	if sc.newestFirst {
		opts = append(opts, listview.NewestFirst())
	}
	view := listview.New(sc.fields, listview.Loader[R](loader), opts...)
	if err := sc.reload(ctx, c, view); err != nil {
		return err
	}

	for {
		sc.show(ctx, c, view)
		actions := sc.actions(view)
		idx, err := c.driver.Select(ctx, prompt.SelectConfig{
			Message:  sc.title,
			Options:  actions,
			PageSize: len(actions),
		})
		if errors.Is(err, prompt.ErrAborted) {
			return nil
		}
		if err != nil {
			return err
		}

		switch actions[idx] {
		case ActionNew:
			var zero R
			err = sc.open(ctx, c, view, form.ModeCreate, zero)
		case ActionEdit:
			rec, ok, perr := sc.pick(ctx, c, view, "¿Qué registro deseas editar?")
			if perr != nil || !ok {
				err = perr
				break
			}
			err = sc.open(ctx, c, view, form.ModeEdit, rec)
		case ActionDelete:
			err = sc.remove(ctx, c, view)
		case ActionSearch:
			err = sc.filter(ctx, c, view)
		case ActionNext:
			view.NextPage()
		case ActionPrev:
			view.PrevPage()
		case ActionPageSize:
			err = sc.resize(ctx, c, view)
		default:
			return nil
		}
		if errors.Is(err, prompt.ErrAborted) {
			continue
		}
		if err != nil {
			return err
		}
	}
}

// reload refreshes the view. Only authentication failures are returned;
// anything else is shown and the previous items are kept.
func (sc screen[R, C]) reload(ctx context.Context, c *Console, view *listview.View[R]) error {
	err := view.Reload(ctx)
	if err == nil {
		return nil
	}
	if IsAuthError(err) {
		return err
	}
	c.logger.Warn("load list", zap.String("entity", sc.entity), zap.Error(err))
	c.info(ctx, FormatNotification(form.Notification{Severity: form.SeverityError, Message: MsgLoadFailed}))
	return nil
}

func (sc screen[R, C]) show(ctx context.Context, c *Console, view *listview.View[R]) {
	header := fmt.Sprintf("%s · página %d de %d · %d registros", sc.title, view.Page(), view.TotalPages(), len(view.Filtered()))
	if f := view.Filter(); f != "" {
		header += fmt.Sprintf(" · filtro %q", f)
	}
	c.info(ctx, header)

	visible := view.Visible()
	if len(visible) == 0 {
		c.info(ctx, "  "+MsgEmpty)
		return
	}
	for i, rec := range visible {
		c.info(ctx, fmt.Sprintf("  %d. %s", i+1, sc.row(rec)))
	}
}

func (sc screen[R, C]) actions(view *listview.View[R]) []string {
	actions := []string{ActionNew}
	if len(view.Visible()) > 0 {
		actions = append(actions, ActionEdit, ActionDelete)
	}
	actions = append(actions, ActionSearch)
	if view.Page() < view.TotalPages() {
		actions = append(actions, ActionNext)
	}
	if view.Page() > 1 {
		actions = append(actions, ActionPrev)
	}
	return append(actions, ActionPageSize, ActionBack)
}

// pick selects one record of the visible page.
func (sc screen[R, C]) pick(ctx context.Context, c *Console, view *listview.View[R], message string) (R, bool, error) {
	var zero R
	visible := view.Visible()
	options := make([]string, 0, len(visible)+1)
	for i, rec := range visible {
		options = append(options, fmt.Sprintf("%d. %s", i+1, sc.row(rec)))
	}
	options = append(options, OptionCancel)

	idx, err := c.driver.Select(ctx, prompt.SelectConfig{Message: message, Options: options})
	if err != nil {
		return zero, false, err
	}
	if idx >= len(visible) {
		return zero, false, nil
	}
	return visible[idx], true, nil
}

// open runs the create or edit dialog and reloads the list after a save.
func (sc screen[R, C]) open(ctx context.Context, c *Console, view *listview.View[R], mode form.Mode, rec R) error {
	var (
		choices  map[string][]comedor.Option
		warnings []string
	)
	if sc.prepare != nil {
		var err error
		choices, warnings, err = sc.prepare(ctx, mode, rec)
		if err != nil {
			if IsAuthError(err) {
				return err
			}
			c.logger.Warn("load options", zap.String("entity", sc.entity), zap.Error(err))
			c.info(ctx, FormatNotification(form.Notification{Severity: form.SeverityError, Message: MsgLoadFailed}))
			return nil
		}
	}
	notify := c.notifier(ctx)
	for _, w := range warnings {
		notify.Notify(form.Notification{Severity: form.SeverityWarning, Message: w})
	}

	var reloadErr error
	d := dialog[R, C]{
		def:     sc.def,
		submit:  gateway.Save(sc.resource),
		choices: choices,
		confirm: true,
		onSuccess: func() {
			reloadErr = sc.reload(ctx, c, view)
		},
	}
	if _, err := d.run(ctx, c, mode, rec); err != nil {
		return err
	}
	return reloadErr
}

func (sc screen[R, C]) remove(ctx context.Context, c *Console, view *listview.View[R]) error {
	rec, ok, err := sc.pick(ctx, c, view, "¿Qué registro deseas eliminar?")
	if err != nil || !ok {
		return err
	}
	sure, err := c.driver.Confirm(ctx, prompt.ConfirmConfig{
		Message: fmt.Sprintf("¿Eliminar %s?", sc.row(rec)),
	})
	if err != nil || !sure {
		return err
	}

	notify := c.notifier(ctx)
	if err := sc.resource.Delete(ctx, rec.Key()); err != nil {
		if IsAuthError(err) {
			return err
		}
		c.logger.Warn("delete", zap.String("entity", sc.entity), zap.Int64("id", rec.Key()), zap.Error(err))
		notify.Notify(form.Notification{Severity: form.SeverityError, Message: MsgDeleteFailed})
		return nil
	}
	c.logger.Info("delete", zap.String("entity", sc.entity), zap.Int64("id", rec.Key()))
	notify.Notify(form.Notification{Severity: form.SeveritySuccess, Message: MsgDeleted})
	return sc.reload(ctx, c, view)
}

func (sc screen[R, C]) filter(ctx context.Context, c *Console, view *listview.View[R]) error {
	text, err := c.driver.Input(ctx, prompt.InputConfig{
		Message: ActionSearch,
		Default: view.Filter(),
		Help:    "Deja vacío para ver todos los registros.",
	})
	if err != nil {
		return err
	}
	if sc.search != nil {
		text = sc.search(text)
	}
	view.SetFilter(text)
	return nil
}

func (sc screen[R, C]) resize(ctx context.Context, c *Console, view *listview.View[R]) error {
	options := make([]string, len(PageSizeChoices))
	def := -1
	for i, n := range PageSizeChoices {
		options[i] = strconv.Itoa(n)
		if n == view.PageSize() {
			def = i
		}
	}
	idx, err := c.driver.Select(ctx, prompt.SelectConfig{
		Message:      ActionPageSize,
		Options:      options,
		DefaultIndex: def,
	})
	if err != nil {
		return err
	}
	view.SetPageSize(PageSizeChoices[idx])
	c.pageSizes[sc.entity] = PageSizeChoices[idx]
	return nil
}
