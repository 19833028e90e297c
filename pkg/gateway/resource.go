package gateway

import (
	"context"
	"fmt"

	"github.com/goliatone/go-micomedor/pkg/form"
)

// Owned records accept the current user before being written.
type Owned[T any] interface {
	WithOwner(userID int64) T
}

// Keyed records expose their backend identifier.
type Keyed interface {
	Key() int64
}

// Resource is the typed CRUD handle of one entity. Operation IDs are
// "<entity>.list", "<entity>.listByUser", "<entity>.insert",
// "<entity>.update" and "<entity>.delete".
type Resource[T any] struct {
	client *Client
	entity string
}

// NewResource returns the handle for entity.
func NewResource[T any](c *Client, entity string) *Resource[T] {
	return &Resource[T]{client: c, entity: entity}
}

// Entity returns the entity name.
func (r *Resource[T]) Entity() string {
	return r.entity
}

// List returns every record. It still requires a session.
func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	var out []T
	if _, err := r.client.Call(ctx, r.entity+".list", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByUser returns the records owned by the current user.
func (r *Resource[T]) ListByUser(ctx context.Context) ([]T, error) {
	var out []T
	if err := r.client.ScopedGet(ctx, r.entity+".listByUser", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Insert creates rec, scoped to the current user when T is Owned. The
// stored record is returned when the backend echoes it, otherwise the sent
// record.
func (r *Resource[T]) Insert(ctx context.Context, rec T) (T, error) {
	rec, err := r.own(rec)
	if err != nil {
		return rec, err
	}
	var stored T
	decoded, err := r.client.Call(ctx, r.entity+".insert", nil, rec, &stored)
	if err != nil {
		return rec, err
	}
	if !decoded {
		return rec, nil
	}
	return stored, nil
}

// Update replaces the record id with rec.
func (r *Resource[T]) Update(ctx context.Context, id int64, rec T) (T, error) {
	if id <= 0 {
		return rec, fmt.Errorf("gateway: %s.update: invalid id %d", r.entity, id)
	}
	rec, err := r.own(rec)
	if err != nil {
		return rec, err
	}
	var stored T
	decoded, err := r.client.Call(ctx, r.entity+".update", idParams(id), rec, &stored)
	if err != nil {
		return rec, err
	}
	if !decoded {
		return rec, nil
	}
	return stored, nil
}

// Delete removes the record id. Beneficiaries are soft deleted by the
// backend.
func (r *Resource[T]) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("gateway: %s.delete: invalid id %d", r.entity, id)
	}
	_, err := r.client.Call(ctx, r.entity+".delete", idParams(id), nil, nil)
	return err
}

func (r *Resource[T]) own(rec T) (T, error) {
	user, err := r.client.User()
	if err != nil {
		return rec, err
	}
	if owned, ok := any(rec).(Owned[T]); ok {
		rec = owned.WithOwner(user.ID)
	}
	return rec, nil
}

// Save adapts r to a form submitter: create sessions insert, edit sessions
// update the record by its key.
func Save[T Keyed](r *Resource[T]) form.Submitter[T] {
	return func(ctx context.Context, mode form.Mode, rec T) (T, error) {
		if mode == form.ModeEdit {
			return r.Update(ctx, rec.Key(), rec)
		}
		return r.Insert(ctx, rec)
	}
}
