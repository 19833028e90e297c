package console

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-micomedor/pkg/comedor"
	"github.com/goliatone/go-micomedor/pkg/form"
)

func (c *Console) beneficiaries() screen[comedor.Beneficiary, comedor.BeneficiaryShape] {
	res := c.client.Beneficiaries()
	return screen[comedor.Beneficiary, comedor.BeneficiaryShape]{
		title:    MenuBeneficiaries,
		entity:   comedor.EntityBeneficiary,
		resource: res,
		def:      comedor.BeneficiaryForm(),
		fields:   comedor.BeneficiaryFields,
		row: func(b comedor.Beneficiary) string {
			return fmt.Sprintf("%s | DNI %s | %d años", b.FullName, b.DNIString(), b.Age)
		},
		// soft deleted beneficiaries are hidden
		load:   c.client.ActiveBeneficiaries,
		search: form.LettersOnly,
	}
}

func (c *Console) products() screen[comedor.Product, comedor.ProductShape] {
	return screen[comedor.Product, comedor.ProductShape]{
		title:    MenuProducts,
		entity:   comedor.EntityProduct,
		resource: c.client.Products(),
		def:      comedor.ProductForm(),
		fields:   comedor.ProductFields,
		row: func(p comedor.Product) string {
			parts := []string{p.Description, strings.TrimSpace(fmt.Sprintf("%d %s", p.Amount, p.UnitAbbreviation))}
			if p.TypeName != "" {
				parts = append(parts, p.TypeName)
			}
			if p.ExpirationDate != "" {
				parts = append(parts, "vence "+form.DateOf(p.ExpirationDate))
			}
			return strings.Join(parts, " | ")
		},
		prepare: func(ctx context.Context, _ form.Mode, _ comedor.Product) (map[string][]comedor.Option, []string, error) {
			units, err := c.client.Units(ctx)
			if err != nil {
				return nil, nil, err
			}
			types, err := c.client.ProductTypes(ctx)
			if err != nil {
				return nil, nil, err
			}
			return map[string][]comedor.Option{
				"unit": comedor.UnitOptions(units),
				"type": comedor.ProductTypeOptions(types),
			}, nil, nil
		},
	}
}

func (c *Console) rations() screen[comedor.Ration, comedor.RationShape] {
	return screen[comedor.Ration, comedor.RationShape]{
		title:    MenuRations,
		entity:   comedor.EntityRation,
		resource: c.client.Rations(),
		def:      comedor.RationForm(),
		fields:   comedor.RationFields,
		row: func(r comedor.Ration) string {
			return fmt.Sprintf("%s | %s | %s | $%s",
				form.DateOf(r.Date), r.BeneficiaryName, r.RationTypeName, form.FormatNumber(r.Price))
		},
		prepare: func(ctx context.Context, mode form.Mode, r comedor.Ration) (map[string][]comedor.Option, []string, error) {
			types, err := c.client.RationTypes(ctx)
			if err != nil {
				return nil, nil, err
			}
			beneficiaries, err := c.client.Beneficiaries().ListByUser(ctx)
			if err != nil {
				return nil, nil, err
			}
			var warnings []string
			if mode == form.ModeEdit {
				if w := comedor.InactiveBeneficiaryWarning(r, beneficiaries); w != "" {
					warnings = append(warnings, w)
				}
			}
			return map[string][]comedor.Option{
				"rationType":  comedor.RationTypeOptions(types),
				"beneficiary": comedor.BeneficiaryOptions(beneficiaries),
			}, warnings, nil
		},
	}
}

func (c *Console) budgets() screen[comedor.Budget, comedor.BudgetShape] {
	return screen[comedor.Budget, comedor.BudgetShape]{
		title:    MenuBudget,
		entity:   comedor.EntityBudget,
		resource: c.client.Budgets(),
		def:      comedor.BudgetForm(),
		fields:   comedor.BudgetFields,
		row: func(b comedor.Budget) string {
			return fmt.Sprintf("%s | %s | $%s | %s",
				form.DateOf(b.Date), b.Description, form.FormatNumber(b.Amount), b.CategoryName())
		},
		prepare: func(ctx context.Context, _ form.Mode, _ comedor.Budget) (map[string][]comedor.Option, []string, error) {
			categories, err := c.client.BudgetCategories(ctx)
			if err != nil {
				return nil, nil, err
			}
			return map[string][]comedor.Option{"category": comedor.BudgetCategoryOptions(categories)}, nil, nil
		},
		newestFirst: true,
	}
}

func (c *Console) tasks() screen[comedor.Task, comedor.TaskShape] {
	return screen[comedor.Task, comedor.TaskShape]{
		title:    MenuTasks,
		entity:   comedor.EntityTask,
		resource: c.client.Tasks(),
		def:      comedor.TaskForm(),
		fields:   comedor.TaskFields,
		row: func(t comedor.Task) string {
			return fmt.Sprintf("%s %s | %s | %s", form.DateOf(t.Date), form.TimeOf(t.Time), t.FullName, t.TypeName())
		},
		prepare: func(ctx context.Context, _ form.Mode, _ comedor.Task) (map[string][]comedor.Option, []string, error) {
			types, err := c.client.TaskTypes(ctx)
			if err != nil {
				return nil, nil, err
			}
			return map[string][]comedor.Option{"type": comedor.TypeOfTaskOptions(types)}, nil, nil
		},
		newestFirst: true,
	}
}

func (c *Console) notes() screen[comedor.Note, comedor.NoteShape] {
	return screen[comedor.Note, comedor.NoteShape]{
		title:    MenuNotes,
		entity:   comedor.EntityNote,
		resource: c.client.Notes(),
		def:      comedor.NoteForm(),
		fields:   comedor.NoteFields,
		row:      func(n comedor.Note) string { return n.Description },
	}
}
