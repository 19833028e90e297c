package comedor

import (
	"fmt"
	"strconv"

	"github.com/goliatone/go-micomedor/pkg/form"
	"github.com/goliatone/go-micomedor/pkg/validation"
)

// Beneficiary is a person registered to receive rations. Deletion is soft:
// the backend clears Active instead of removing the row.
type Beneficiary struct {
	ID           int64  `json:"idBeneficiary,omitempty"`
	DNI          int64  `json:"dniBenefeciary"`
	FullName     string `json:"fullnameBenefeciary"`
	Age          int    `json:"ageBeneficiary"`
	Active       *bool  `json:"active,omitempty"`
	Observations string `json:"observationsBeneficiary"`
	Users        *Owner `json:"users,omitempty"`
}

// IsActive treats a missing flag as active.
func (b Beneficiary) IsActive() bool {
	return b.Active == nil || *b.Active
}

// Key returns the record identifier.
func (b Beneficiary) Key() int64 { return b.ID }

// WithOwner returns a copy scoped to user id.
func (b Beneficiary) WithOwner(id int64) Beneficiary {
	b.Users = &Owner{ID: id}
	return b
}

// DNIString renders the DNI with its 8 digits.
func (b Beneficiary) DNIString() string {
	return formatDNI(b.DNI)
}

// BeneficiaryFields are the display fields the list filter matches.
func BeneficiaryFields(b Beneficiary) []string {
	return []string{b.FullName, b.DNIString()}
}

// BeneficiaryShape is the comparable form of a beneficiary dialog.
type BeneficiaryShape struct {
	FullName     string
	DNI          form.Number
	Age          form.Number
	Observations string
}

// Beneficiary messages.
const (
	MsgBeneficiaryDuplicate = "El beneficiario ya está registrado y activo."
	MsgBeneficiaryInactive  = "Este beneficiario se encuentra eliminado de la lista de beneficiarios."
)

// BeneficiarySchema validates the beneficiary dialog.
func BeneficiarySchema() validation.Schema {
	return validation.NewSchema(
		validation.Field{Name: "fullname", Label: "Nombre completo", Rules: []validation.Rule{
			validation.Required(),
			validation.Letters(),
			validation.MaxLength(100),
		}},
		validation.Field{Name: "dni", Label: "DNI", Rules: []validation.Rule{
			validation.Required(),
			validation.Digits(8),
		}},
		validation.Field{Name: "age", Label: "Edad", Rules: []validation.Rule{
			validation.Required(),
			validation.NoLeadingZero().WithMessage("La edad no puede empezar con 0"),
			validation.Pattern(`^[1-9][0-9]?$`, "Debe ser un número válido entre 1 y 99"),
			validation.IntRange(1, 99),
		}},
		validation.Field{Name: "observations", Label: "Observaciones", Rules: []validation.Rule{
			validation.MaxLength(255),
		}},
	)
}

// BeneficiaryForm is the create and edit dialog of beneficiaries.
func BeneficiaryForm() form.Definition[Beneficiary, BeneficiaryShape] {
	return form.Definition[Beneficiary, BeneficiaryShape]{
		Name:   EntityBeneficiary,
		Schema: BeneficiarySchema(),
		Filters: map[string]form.InputFilter{
			"fullname": form.LettersOnly,
			"dni":      form.DigitsOnly(8),
			"age":      form.Chain(form.DigitsOnly(2), form.StripLeadingZeros),
		},
		WireNames: map[string]string{
			"fullnameBenefeciary":     "fullname",
			"dniBenefeciary":          "dni",
			"ageBeneficiary":          "age",
			"observationsBeneficiary": "observations",
		},
		Values: func(b Beneficiary) form.Values {
			return form.Values{
				"fullname":     b.FullName,
				"dni":          b.DNIString(),
				"age":          form.FormatInt(b.Age),
				"observations": b.Observations,
			}
		},
		Shape: func(v form.Values) BeneficiaryShape {
			return BeneficiaryShape{
				FullName:     form.Text(v.Get("fullname")),
				DNI:          form.NumberOf(v.Get("dni")),
				Age:          form.NumberOf(v.Get("age")),
				Observations: CleanText(v.Get("observations")),
			}
		},
		Build: buildBeneficiary,
		Messages: form.Messages{
			Created:      "Beneficiario registrado correctamente.",
			Updated:      "Beneficiario actualizado correctamente.",
			CreateFailed: "Ocurrió un error al registrar el beneficiario.",
			UpdateFailed: "Ocurrió un error al actualizar.",
			Conflict:     MsgBeneficiaryDuplicate,
		},
	}
}

func buildBeneficiary(base Beneficiary, v form.Values) (Beneficiary, error) {
	dni, err := strconv.ParseInt(form.Text(v.Get("dni")), 10, 64)
	if err != nil {
		return Beneficiary{}, fmt.Errorf("comedor: dni: %w", err)
	}
	age, err := strconv.Atoi(form.Text(v.Get("age")))
	if err != nil {
		return Beneficiary{}, fmt.Errorf("comedor: age: %w", err)
	}
	base.FullName = form.Text(v.Get("fullname"))
	base.DNI = dni
	base.Age = age
	base.Observations = CleanText(v.Get("observations"))
	return base, nil
}
