package comedor

import (
	"fmt"
	"strconv"

	"github.com/goliatone/go-micomedor/pkg/form"
	"github.com/goliatone/go-micomedor/pkg/validation"
)

// BeneficiaryRef is the nested beneficiary reference of a ration.
type BeneficiaryRef struct {
	ID int64 `json:"idBeneficiary"`
}

// Ration is a meal served to a beneficiary.
type Ration struct {
	ID          int64           `json:"idRation,omitempty"`
	Date        string          `json:"date"`
	Price       float64         `json:"price"`
	Users       *Owner          `json:"users,omitempty"`
	RationType  *RationType     `json:"rationType,omitempty"`
	Beneficiary *BeneficiaryRef `json:"beneficiary,omitempty"`

	BeneficiaryName string `json:"nameBenefeciary,omitempty"`
	RationTypeName  string `json:"nameRationType,omitempty"`
}

// Key returns the record identifier.
func (r Ration) Key() int64 { return r.ID }

// WithOwner returns a copy scoped to user id.
func (r Ration) WithOwner(id int64) Ration {
	r.Users = &Owner{ID: id}
	return r
}

// BeneficiaryID returns the referenced beneficiary, or 0.
func (r Ration) BeneficiaryID() int64 {
	if r.Beneficiary == nil {
		return 0
	}
	return r.Beneficiary.ID
}

// RationTypeID returns the referenced ration type, or 0.
func (r Ration) RationTypeID() int64 {
	if r.RationType == nil {
		return 0
	}
	return r.RationType.ID
}

// RationFields are the display fields the list filter matches.
func RationFields(r Ration) []string {
	return []string{r.BeneficiaryName, r.RationTypeName, form.DateOf(r.Date)}
}

// InactiveBeneficiaryWarning returns the warning shown when a ration being
// edited references a beneficiary that was soft deleted.
func InactiveBeneficiaryWarning(r Ration, beneficiaries []Beneficiary) string {
	id := r.BeneficiaryID()
	if id == 0 {
		return ""
	}
	for _, b := range beneficiaries {
		if b.ID == id {
			if b.IsActive() {
				return ""
			}
			return MsgBeneficiaryInactive
		}
	}
	return MsgBeneficiaryInactive
}

// RationShape is the comparable form of a ration dialog.
type RationShape struct {
	Date        string
	Price       form.Number
	RationType  form.Ref
	Beneficiary form.Ref
}

// RationSchema validates the ration dialog.
func RationSchema() validation.Schema {
	return validation.NewSchema(
		validation.Field{Name: "date", Label: "Fecha", Rules: []validation.Rule{
			validation.Required(),
			validation.Date(),
		}},
		validation.Field{Name: "price", Label: "Precio", Rules: []validation.Rule{
			validation.Required(),
			validation.Positive().WithMessage("El precio debe ser mayor a 0"),
			validation.Decimal(4, 2),
		}},
		validation.Field{Name: "rationType", Label: "Tipo de ración", Rules: []validation.Rule{
			validation.Required(),
		}},
		validation.Field{Name: "beneficiary", Label: "Beneficiario", Rules: []validation.Rule{
			validation.Required(),
		}},
	)
}

// RationForm is the create and edit dialog of rations.
func RationForm() form.Definition[Ration, RationShape] {
	return form.Definition[Ration, RationShape]{
		Name:   EntityRation,
		Schema: RationSchema(),
		Filters: map[string]form.InputFilter{
			"price": form.DecimalInput,
		},
		WireNames: map[string]string{
			"idRationType":  "rationType",
			"idBeneficiary": "beneficiary",
		},
		Values: func(r Ration) form.Values {
			v := form.Values{
				"date":        r.Date,
				"rationType":  form.FormatID(r.RationTypeID()),
				"beneficiary": form.FormatID(r.BeneficiaryID()),
			}
			if r.Price != 0 {
				v["price"] = form.FormatNumber(r.Price)
			}
			return v
		},
		Shape: func(v form.Values) RationShape {
			return RationShape{
				Date:        form.DateOf(v.Get("date")),
				Price:       form.NumberOf(v.Get("price")),
				RationType:  form.RefOf(v.Get("rationType")),
				Beneficiary: form.RefOf(v.Get("beneficiary")),
			}
		},
		Build: buildRation,
		Messages: form.Messages{
			Created:      "¡Ración registrada correctamente!",
			Updated:      "¡Ración actualizada correctamente!",
			CreateFailed: "Ocurrió un error al registrar la ración.",
			UpdateFailed: "Ocurrió un error al actualizar.",
		},
	}
}

func buildRation(base Ration, v form.Values) (Ration, error) {
	price, err := strconv.ParseFloat(form.Text(v.Get("price")), 64)
	if err != nil {
		return Ration{}, fmt.Errorf("comedor: price: %w", err)
	}
	base.Date = form.DateOf(v.Get("date"))
	base.Price = price
	if id := form.RefOf(v.Get("rationType")).ID; id != base.RationTypeID() {
		base.RationType = &RationType{ID: id}
		base.RationTypeName = ""
	}
	if id := form.RefOf(v.Get("beneficiary")).ID; id != base.BeneficiaryID() {
		base.Beneficiary = &BeneficiaryRef{ID: id}
		base.BeneficiaryName = ""
	}
	return base, nil
}
