package gateway

import (
	"context"

	"github.com/goliatone/go-micomedor/pkg/comedor"
)

// Beneficiaries returns the beneficiary resource.
func (c *Client) Beneficiaries() *Resource[comedor.Beneficiary] {
	return NewResource[comedor.Beneficiary](c, comedor.EntityBeneficiary)
}

// ActiveBeneficiaries lists the user's beneficiaries without the soft
// deleted ones.
func (c *Client) ActiveBeneficiaries(ctx context.Context) ([]comedor.Beneficiary, error) {
	all, err := c.Beneficiaries().ListByUser(ctx)
	if err != nil {
		return nil, err
	}
	active := all[:0]
	for _, b := range all {
		if b.IsActive() {
			active = append(active, b)
		}
	}
	return active, nil
}

// Products returns the product resource.
func (c *Client) Products() *Resource[comedor.Product] {
	return NewResource[comedor.Product](c, comedor.EntityProduct)
}

// Rations returns the ration resource.
func (c *Client) Rations() *Resource[comedor.Ration] {
	return NewResource[comedor.Ration](c, comedor.EntityRation)
}

// Budgets returns the budget resource.
func (c *Client) Budgets() *Resource[comedor.Budget] {
	return NewResource[comedor.Budget](c, comedor.EntityBudget)
}

// Tasks returns the task resource.
func (c *Client) Tasks() *Resource[comedor.Task] {
	return NewResource[comedor.Task](c, comedor.EntityTask)
}

// Notes returns the note resource.
func (c *Client) Notes() *Resource[comedor.Note] {
	return NewResource[comedor.Note](c, comedor.EntityNote)
}

// RationTypes lists ration types.
func (c *Client) RationTypes(ctx context.Context) ([]comedor.RationType, error) {
	return NewResource[comedor.RationType](c, comedor.LookupRationType).List(ctx)
}

// TaskTypes lists task types.
func (c *Client) TaskTypes(ctx context.Context) ([]comedor.TypeOfTask, error) {
	return NewResource[comedor.TypeOfTask](c, comedor.LookupTypeOfTask).List(ctx)
}

// BudgetCategories lists budget categories.
func (c *Client) BudgetCategories(ctx context.Context) ([]comedor.BudgetCategory, error) {
	return NewResource[comedor.BudgetCategory](c, comedor.LookupBudgetCategory).List(ctx)
}

// Units lists units of measurement.
func (c *Client) Units(ctx context.Context) ([]comedor.UnitOfMeasurement, error) {
	return NewResource[comedor.UnitOfMeasurement](c, comedor.LookupUnitOfMeasurement).List(ctx)
}

// ProductTypes lists product types.
func (c *Client) ProductTypes(ctx context.Context) ([]comedor.ProductType, error) {
	return NewResource[comedor.ProductType](c, comedor.LookupProductType).List(ctx)
}

// RationsDaily returns today's ration total of the current user.
func (c *Client) RationsDaily(ctx context.Context) (comedor.RationsDaily, error) {
	var out comedor.RationsDaily
	err := c.ScopedGet(ctx, "report.rationsDaily", &out)
	return out, err
}

// BeneficiariesDaily returns today's served beneficiaries of the current user.
func (c *Client) BeneficiariesDaily(ctx context.Context) ([]comedor.BeneficiariesDaily, error) {
	var out []comedor.BeneficiariesDaily
	err := c.ScopedGet(ctx, "report.beneficiariesDaily", &out)
	return out, err
}

// BudgetDaily returns today's budget summary of the current user.
func (c *Client) BudgetDaily(ctx context.Context) ([]comedor.BudgetDaily, error) {
	var out []comedor.BudgetDaily
	err := c.ScopedGet(ctx, "report.budgetDaily", &out)
	return out, err
}

// BudgetWeekly returns this week's budget summary of the current user.
func (c *Client) BudgetWeekly(ctx context.Context) ([]comedor.BudgetWeekly, error) {
	var out []comedor.BudgetWeekly
	err := c.ScopedGet(ctx, "report.budgetWeekly", &out)
	return out, err
}

// ProductsExpiring returns the current user's products expiring today.
func (c *Client) ProductsExpiring(ctx context.Context) ([]comedor.ExpiringProduct, error) {
	var out []comedor.ExpiringProduct
	err := c.ScopedGet(ctx, "report.productsExpiring", &out)
	return out, err
}
