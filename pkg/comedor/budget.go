package comedor

import (
	"fmt"
	"strconv"

	"github.com/goliatone/go-micomedor/pkg/form"
	"github.com/goliatone/go-micomedor/pkg/validation"
)

// Budget is an income or expense line.
type Budget struct {
	ID          int64           `json:"idBudget,omitempty"`
	Description string          `json:"descriptionProduct"`
	Amount      float64         `json:"amountBudget"`
	Date        string          `json:"dateBudget"`
	Users       *Owner          `json:"users,omitempty"`
	Category    *BudgetCategory `json:"budgetCategory,omitempty"`
}

// Key returns the record identifier.
func (b Budget) Key() int64 { return b.ID }

// WithOwner returns a copy scoped to user id.
func (b Budget) WithOwner(id int64) Budget {
	b.Users = &Owner{ID: id}
	return b
}

// CategoryID returns the referenced category, or 0.
func (b Budget) CategoryID() int64 {
	if b.Category == nil {
		return 0
	}
	return b.Category.ID
}

// CategoryName returns the category label shown in lists.
func (b Budget) CategoryName() string {
	if b.Category == nil || b.Category.Name == "" {
		return "Sin categoría"
	}
	return b.Category.Name
}

// BudgetFields are the display fields the list filter matches.
func BudgetFields(b Budget) []string {
	return []string{b.Description, b.CategoryName(), form.DateOf(b.Date)}
}

// BudgetShape is the comparable form of a budget dialog.
type BudgetShape struct {
	Description string
	Amount      form.Number
	Date        string
	Category    form.Ref
}

// BudgetSchema validates the budget dialog.
func BudgetSchema() validation.Schema {
	return validation.NewSchema(
		validation.Field{Name: "description", Label: "Descripción", Rules: []validation.Rule{
			validation.Required(),
			validation.MaxLength(150),
		}},
		validation.Field{Name: "amount", Label: "Monto", Rules: []validation.Rule{
			validation.Required(),
			validation.Positive().WithMessage("El monto debe ser positivo"),
			validation.Decimal(4, 2),
		}},
		validation.Field{Name: "date", Label: "Fecha", Rules: []validation.Rule{
			validation.Required(),
			validation.Date(),
		}},
		validation.Field{Name: "category", Label: "Categoría", Rules: []validation.Rule{
			validation.Required(),
		}},
	)
}

// BudgetForm is the create and edit dialog of budget entries.
func BudgetForm() form.Definition[Budget, BudgetShape] {
	return form.Definition[Budget, BudgetShape]{
		Name:   EntityBudget,
		Schema: BudgetSchema(),
		Filters: map[string]form.InputFilter{
			"amount": form.DecimalInput,
		},
		WireNames: map[string]string{
			"descriptionProduct": "description",
			"amountBudget":       "amount",
			"dateBudget":         "date",
			"idBudgetCategory":   "category",
		},
		Values: func(b Budget) form.Values {
			v := form.Values{
				"description": b.Description,
				"date":        b.Date,
				"category":    form.FormatID(b.CategoryID()),
			}
			if b.Amount != 0 {
				v["amount"] = form.FormatNumber(b.Amount)
			}
			return v
		},
		Shape: func(v form.Values) BudgetShape {
			return BudgetShape{
				Description: CleanText(v.Get("description")),
				Amount:      form.NumberOf(v.Get("amount")),
				Date:        form.DateOf(v.Get("date")),
				Category:    form.RefOf(v.Get("category")),
			}
		},
		Build: buildBudget,
		Messages: form.Messages{
			Created:      "Presupuesto registrado correctamente.",
			Updated:      "Presupuesto actualizado correctamente.",
			CreateFailed: "Error al registrar el presupuesto.",
			UpdateFailed: "Error al actualizar el presupuesto.",
		},
	}
}

func buildBudget(base Budget, v form.Values) (Budget, error) {
	amount, err := strconv.ParseFloat(form.Text(v.Get("amount")), 64)
	if err != nil {
		return Budget{}, fmt.Errorf("comedor: amount: %w", err)
	}
	base.Description = CleanText(v.Get("description"))
	base.Amount = amount
	base.Date = form.DateOf(v.Get("date"))
	if id := form.RefOf(v.Get("category")).ID; id != base.CategoryID() {
		base.Category = &BudgetCategory{ID: id}
	}
	return base, nil
}
