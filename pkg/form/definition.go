package form

import (
	"fmt"

	"github.com/goliatone/go-micomedor/pkg/validation"
)

// Messages holds the user-facing texts of one entity form.
type Messages struct {
	NoChanges    string
	Created      string
	Updated      string
	CreateFailed string
	UpdateFailed string
	Conflict     string
}

// DefaultMessages returns the generic texts used when a definition leaves a
// message empty.
func DefaultMessages() Messages {
	return Messages{
		NoChanges:    "No hay cambios para guardar.",
		Created:      "Registro guardado correctamente.",
		Updated:      "Registro actualizado correctamente.",
		CreateFailed: "Ocurrió un error al guardar.",
		UpdateFailed: "Ocurrió un error al actualizar.",
		Conflict:     "El registro ya existe.",
	}
}

func (m Messages) withDefaults() Messages {
	def := DefaultMessages()
	if m.NoChanges == "" {
		m.NoChanges = def.NoChanges
	}
	if m.Created == "" {
		m.Created = def.Created
	}
	if m.Updated == "" {
		m.Updated = def.Updated
	}
	if m.CreateFailed == "" {
		m.CreateFailed = def.CreateFailed
	}
	if m.UpdateFailed == "" {
		m.UpdateFailed = def.UpdateFailed
	}
	if m.Conflict == "" {
		m.Conflict = def.Conflict
	}
	return m
}

// Definition describes one entity form. R is the wire record and C its
// comparable shape.
type Definition[R any, C comparable] struct {
	// Name identifies the entity in logs and errors.
	Name   string
	Schema validation.Schema
	// Filters rewrite raw input per field before it is stored.
	Filters map[string]InputFilter
	// WireNames maps record JSON keys to schema field names so server
	// validation payloads land on the right field.
	WireNames map[string]string
	// Empty builds the create template. The zero R is used when nil.
	Empty func() R
	// Values projects a record into raw field values.
	Values func(R) Values
	// Shape reduces raw values to the comparable form used by the gate.
	Shape func(Values) C
	// Build applies validated values on top of a base record.
	Build    func(base R, values Values) (R, error)
	Messages Messages
}

// Validate reports missing hooks.
func (d Definition[R, C]) Validate() error {
	switch {
	case d.Values == nil:
		return fmt.Errorf("%w: %s: Values is required", ErrInvalidDefinition, d.Name)
	case d.Shape == nil:
		return fmt.Errorf("%w: %s: Shape is required", ErrInvalidDefinition, d.Name)
	case d.Build == nil:
		return fmt.Errorf("%w: %s: Build is required", ErrInvalidDefinition, d.Name)
	}
	return nil
}

func (d Definition[R, C]) empty() R {
	if d.Empty != nil {
		return d.Empty()
	}
	var zero R
	return zero
}

// Decision is the outcome of the dirty-check gate.
type Decision int

const (
	// DecisionProceed means the values differ from the baseline and are valid.
	DecisionProceed Decision = iota
	// DecisionNoChanges means the shapes are equal and no write is needed.
	DecisionNoChanges
	// DecisionInvalid means the values differ but at least one field fails.
	DecisionInvalid
)

func (d Decision) String() string {
	switch d {
	case DecisionProceed:
		return "proceed"
	case DecisionNoChanges:
		return "no_changes"
	case DecisionInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// GateResult carries the decision and, for DecisionInvalid, the field errors.
type GateResult struct {
	Decision Decision
	Errors   validation.Errors
}

// Gate compares the shapes of baseline and current and validates current
// when they differ. Equal shapes short-circuit before validation.
func Gate[R any, C comparable](def Definition[R, C], baseline, current Values, opts ...validation.Option) GateResult {
	if def.Shape(baseline) == def.Shape(current) {
		return GateResult{Decision: DecisionNoChanges}
	}
	if errs := def.Schema.Validate(current, opts...); !errs.Empty() {
		return GateResult{Decision: DecisionInvalid, Errors: errs}
	}
	return GateResult{Decision: DecisionProceed}
}
