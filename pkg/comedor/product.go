package comedor

import (
	"fmt"
	"strconv"

	"github.com/goliatone/go-micomedor/pkg/form"
	"github.com/goliatone/go-micomedor/pkg/validation"
)

// Product is a stock item. Unit and type names are only present in list
// responses.
type Product struct {
	ID               int64  `json:"idProduct,omitempty"`
	Description      string `json:"descriptionProduct"`
	Amount           int    `json:"amountProduct"`
	UnitID           int64  `json:"unitOfMeasurement_id"`
	TypeID           int64  `json:"productType_id"`
	UserID           int64  `json:"user_id"`
	ExpirationDate   string `json:"expirationDate,omitempty"`
	UnitAbbreviation string `json:"unitOfMeasurementAbbreviation,omitempty"`
	TypeName         string `json:"productTypeName,omitempty"`
}

// Key returns the record identifier.
func (p Product) Key() int64 { return p.ID }

// WithOwner returns a copy scoped to user id.
func (p Product) WithOwner(id int64) Product {
	p.UserID = id
	return p
}

// ProductFields are the display fields the list filter matches.
func ProductFields(p Product) []string {
	return []string{p.Description, p.TypeName}
}

// ProductShape is the comparable form of a product dialog.
type ProductShape struct {
	Description    string
	Amount         form.Number
	Unit           form.Ref
	Type           form.Ref
	ExpirationDate string
}

// ProductSchema validates the product dialog.
func ProductSchema() validation.Schema {
	return validation.NewSchema(
		validation.Field{Name: "description", Label: "Descripción", Rules: []validation.Rule{
			validation.Required(),
			validation.Letters(),
			validation.MaxLength(100),
		}},
		validation.Field{Name: "amount", Label: "Cantidad", Rules: []validation.Rule{
			validation.Required(),
			validation.Pattern(`^\d+$`, "Debe ser un número entero"),
			validation.NoLeadingZero(),
			validation.Positive().WithMessage("La cantidad debe ser mayor a 0"),
		}},
		validation.Field{Name: "unit", Label: "Unidad de medida", Rules: []validation.Rule{
			validation.Required(),
		}},
		validation.Field{Name: "type", Label: "Tipo de producto", Rules: []validation.Rule{
			validation.Required(),
		}},
		validation.Field{Name: "expirationDate", Label: "Fecha de vencimiento", Rules: []validation.Rule{
			validation.Date(),
		}},
	)
}

// ProductForm is the create and edit dialog of products.
func ProductForm() form.Definition[Product, ProductShape] {
	return form.Definition[Product, ProductShape]{
		Name:   EntityProduct,
		Schema: ProductSchema(),
		Filters: map[string]form.InputFilter{
			"amount": form.Chain(form.DigitsOnly(0), form.StripLeadingZeros),
		},
		WireNames: map[string]string{
			"descriptionProduct":   "description",
			"amountProduct":        "amount",
			"unitOfMeasurement_id": "unit",
			"productType_id":       "type",
		},
		Values: func(p Product) form.Values {
			return form.Values{
				"description":    p.Description,
				"amount":         form.FormatInt(p.Amount),
				"unit":           form.FormatID(p.UnitID),
				"type":           form.FormatID(p.TypeID),
				"expirationDate": p.ExpirationDate,
			}
		},
		Shape: func(v form.Values) ProductShape {
			return ProductShape{
				Description:    form.Text(v.Get("description")),
				Amount:         form.NumberOf(v.Get("amount")),
				Unit:           form.RefOf(v.Get("unit")),
				Type:           form.RefOf(v.Get("type")),
				ExpirationDate: form.DateOf(v.Get("expirationDate")),
			}
		},
		Build: buildProduct,
		Messages: form.Messages{
			Created:      "Producto registrado correctamente.",
			Updated:      "Producto actualizado correctamente.",
			CreateFailed: "Ocurrió un error al registrar el producto.",
			UpdateFailed: "Ocurrió un error al actualizar el producto.",
		},
	}
}

func buildProduct(base Product, v form.Values) (Product, error) {
	amount, err := strconv.Atoi(form.Text(v.Get("amount")))
	if err != nil {
		return Product{}, fmt.Errorf("comedor: amount: %w", err)
	}
	base.Description = form.Text(v.Get("description"))
	base.Amount = amount
	base.UnitID = form.RefOf(v.Get("unit")).ID
	base.TypeID = form.RefOf(v.Get("type")).ID
	if expiration := form.DateOf(v.Get("expirationDate")); expiration != form.DateOf(base.ExpirationDate) {
		base.ExpirationDate = expiration
	}
	return base, nil
}
