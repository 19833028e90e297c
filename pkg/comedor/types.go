package comedor

import (
	"strconv"
	"strings"
)

// Entity names double as REST path roots and operation ID prefixes.
const (
	EntityBeneficiary = "beneficiary"
	EntityProduct     = "product"
	EntityRation      = "ration"
	EntityBudget      = "budget"
	EntityTask        = "task"
	EntityNote        = "note"

	LookupRationType        = "rationType"
	LookupTypeOfTask        = "typeOfTask"
	LookupBudgetCategory    = "budgetCategory"
	LookupUnitOfMeasurement = "unitOfMeasurement"
	LookupProductType       = "productType"
)

// Entities lists the editable entities in menu order.
var Entities = []string{
	EntityBeneficiary,
	EntityProduct,
	EntityRation,
	EntityBudget,
	EntityTask,
	EntityNote,
}

// Owner is the nested user reference the backend expects on owned records.
type Owner struct {
	ID int64 `json:"idUser"`
}

// RationType is a lookup and the nested reference of a ration.
type RationType struct {
	ID   int64  `json:"idRationType"`
	Name string `json:"nameRationType,omitempty"`
}

// TypeOfTask is a lookup and the nested reference of a task.
type TypeOfTask struct {
	ID   int64  `json:"idTypeOfTask"`
	Name string `json:"nameTypeTask,omitempty"`
}

// BudgetCategory is a lookup and the nested reference of a budget entry.
type BudgetCategory struct {
	ID   int64  `json:"idBudgetCategory"`
	Name string `json:"name,omitempty"`
}

// UnitOfMeasurement is a product lookup.
type UnitOfMeasurement struct {
	ID           int64  `json:"idUnitOfMeasurement"`
	Name         string `json:"name,omitempty"`
	Abbreviation string `json:"abbreviation,omitempty"`
}

// ProductType is a product lookup.
type ProductType struct {
	ID   int64  `json:"idProductType"`
	Name string `json:"name,omitempty"`
}

// Option is a selectable lookup entry.
type Option struct {
	ID    int64
	Label string
}

// Value returns the option as a form field value.
func (o Option) Value() string {
	return strconv.FormatInt(o.ID, 10)
}

// RationTypeOptions converts lookups into options.
func RationTypeOptions(items []RationType) []Option {
	out := make([]Option, 0, len(items))
	for _, item := range items {
		out = append(out, Option{ID: item.ID, Label: item.Name})
	}
	return out
}

// TypeOfTaskOptions converts lookups into options.
func TypeOfTaskOptions(items []TypeOfTask) []Option {
	out := make([]Option, 0, len(items))
	for _, item := range items {
		out = append(out, Option{ID: item.ID, Label: item.Name})
	}
	return out
}

// BudgetCategoryOptions converts lookups into options.
func BudgetCategoryOptions(items []BudgetCategory) []Option {
	out := make([]Option, 0, len(items))
	for _, item := range items {
		out = append(out, Option{ID: item.ID, Label: item.Name})
	}
	return out
}

// UnitOptions converts lookups into options labelled by abbreviation.
func UnitOptions(items []UnitOfMeasurement) []Option {
	out := make([]Option, 0, len(items))
	for _, item := range items {
		label := item.Abbreviation
		if label == "" {
			label = item.Name
		}
		out = append(out, Option{ID: item.ID, Label: label})
	}
	return out
}

// ProductTypeOptions converts lookups into options.
func ProductTypeOptions(items []ProductType) []Option {
	out := make([]Option, 0, len(items))
	for _, item := range items {
		out = append(out, Option{ID: item.ID, Label: item.Name})
	}
	return out
}

// BeneficiaryOptions lists active beneficiaries for ration dialogs.
func BeneficiaryOptions(items []Beneficiary) []Option {
	out := make([]Option, 0, len(items))
	for _, item := range items {
		if !item.IsActive() {
			continue
		}
		out = append(out, Option{ID: item.ID, Label: item.FullName})
	}
	return out
}

// Credentials is the login payload.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration is the sign-up payload.
type Registration struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Mail     string `json:"mail"`
	Password string `json:"password"`
	Enabled  bool   `json:"enabled"`
}

// TokenResponse is returned by the authenticate endpoint.
type TokenResponse struct {
	Token string `json:"jwttoken"`
}

// RationsDaily is the daily ration total.
type RationsDaily struct {
	Total int `json:"totalRacionPorDia"`
}

// BeneficiariesDaily counts beneficiaries served today.
type BeneficiariesDaily struct {
	Total int `json:"beneficiariosPorDia"`
}

// BudgetDaily summarizes today's budget movements.
type BudgetDaily struct {
	Income  float64 `json:"ingresosHoy"`
	Expense float64 `json:"egresosHoy"`
	Balance float64 `json:"saldoFinal"`
}

// BudgetWeekly summarizes the current week's budget movements.
type BudgetWeekly struct {
	Income  float64 `json:"ingresosSemana"`
	Expense float64 `json:"egresosSemana"`
	Balance float64 `json:"saldoFinal"`
}

// ExpiringProduct is a product that expires today.
type ExpiringProduct struct {
	Description    string `json:"descripcionProducto"`
	ExpirationDate string `json:"expirationDate"`
}

func ownerOf(o *Owner) int64 {
	if o == nil {
		return 0
	}
	return o.ID
}

func formatDNI(dni int64) string {
	if dni <= 0 {
		return ""
	}
	s := strconv.FormatInt(dni, 10)
	if len(s) < 8 {
		s = strings.Repeat("0", 8-len(s)) + s
	}
	return s
}
