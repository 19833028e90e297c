package comedor

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-micomedor/pkg/form"
)

type capture[R any] struct {
	calls []R
}

func (c *capture[R]) submit(_ context.Context, _ form.Mode, rec R) (R, error) {
	c.calls = append(c.calls, rec)
	return rec, nil
}

func TestBeneficiaryCreateBuildsNormalizedRecord(t *testing.T) {
	session, err := form.NewCreate(BeneficiaryForm())
	if err != nil {
		t.Fatalf("new create: %v", err)
	}
	set(t, session, "fullname", "Maria Lopez ")
	set(t, session, "dni", "12345678")
	set(t, session, "age", "34")

	sink := &capture[Beneficiary]{}
	result, err := session.Submit(context.Background(), sink.submit)
	if err != nil || !result.Succeeded() {
		t.Fatalf("submit: %v %+v", err, result)
	}
	want := []Beneficiary{{FullName: "Maria Lopez", DNI: 12345678, Age: 34, Observations: ""}}
	if diff := cmp.Diff(want, sink.calls); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestBeneficiaryFieldRules(t *testing.T) {
	schema := BeneficiarySchema()
	cases := []struct {
		field string
		value string
		want  string
	}{
		{"fullname", "Maria 2", "Solo se permiten letras"},
		{"fullname", "Ñusta Güemes", ""},
		{"dni", "1234567", "Debe tener exactamente 8 dígitos numéricos"},
		{"dni", "123456789", "Debe tener exactamente 8 dígitos numéricos"},
		{"dni", "12345678", ""},
		{"age", "0", "Debe ser un número válido entre 1 y 99"},
		{"age", "100", "Debe ser un número válido entre 1 y 99"},
		{"age", "05", "La edad no puede empezar con 0"},
		{"age", "99", ""},
	}
	for _, tc := range cases {
		msg, _ := schema.ValidateField(tc.field, tc.value)
		if msg != tc.want {
			t.Errorf("%s=%q: got %q, want %q", tc.field, tc.value, msg, tc.want)
		}
	}
}

func TestBeneficiaryAgeKeystrokes(t *testing.T) {
	session, err := form.NewCreate(BeneficiaryForm())
	if err != nil {
		t.Fatalf("new create: %v", err)
	}
	got := set(t, session, "age", "0")
	if got != "" {
		t.Fatalf("typing 0 stored %q", got)
	}
	got = set(t, session, "age", got+"5")
	if got != "5" {
		t.Fatalf("typing 0 then 5 stored %q, want 5", got)
	}
	if session.Errors().Has("age") {
		t.Fatalf("age 5 should be valid: %v", session.Errors())
	}
}

func TestBeneficiaryDNIKeepsLeadingZeros(t *testing.T) {
	b := Beneficiary{DNI: 1234567}
	if got := BeneficiaryForm().Values(b).Get("dni"); got != "01234567" {
		t.Fatalf("dni value = %q", got)
	}
}

func TestProductNoOpAndDirtyEdit(t *testing.T) {
	arroz := Product{ID: 4, Description: "Arroz", Amount: 10, UnitID: 1, TypeID: 2, UserID: 9, ExpirationDate: "2025-01-31", UnitAbbreviation: "kg", TypeName: "Cereal"}

	session, err := form.NewEdit(ProductForm(), arroz)
	if err != nil {
		t.Fatalf("new edit: %v", err)
	}
	sink := &capture[Product]{}
	result, err := session.Submit(context.Background(), sink.submit)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Decision != form.DecisionNoChanges || len(sink.calls) != 0 {
		t.Fatalf("unchanged product submitted: %v %d", result.Decision, len(sink.calls))
	}

	set(t, session, "amount", "8")
	result, err = session.Submit(context.Background(), sink.submit)
	if err != nil || !result.Succeeded() {
		t.Fatalf("submit: %v %+v", err, result)
	}
	want := arroz
	want.Amount = 8
	if diff := cmp.Diff([]Product{want}, sink.calls); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestProductAmountRules(t *testing.T) {
	schema := ProductSchema()
	for value, wantOK := range map[string]bool{"8": true, "08": false, "0": false, "1.5": false, "-2": false} {
		if _, ok := schema.ValidateField("amount", value); ok != wantOK {
			t.Errorf("amount %q valid=%v, want %v", value, ok, wantOK)
		}
	}
}

func TestRationPriceRules(t *testing.T) {
	schema := RationSchema()
	for value, wantOK := range map[string]bool{"10.5": true, "1.50": true, "010.50": false, "1.505": false, "0": false} {
		if _, ok := schema.ValidateField("price", value); ok != wantOK {
			t.Errorf("price %q valid=%v, want %v", value, ok, wantOK)
		}
	}
}

func TestRationEditKeepsReferencesAndNormalizesDate(t *testing.T) {
	ration := Ration{
		ID:              3,
		Date:            "2024-06-10T05:00:00.000+00:00",
		Price:           4.5,
		Users:           &Owner{ID: 9},
		RationType:      &RationType{ID: 1, Name: "Almuerzo"},
		Beneficiary:     &BeneficiaryRef{ID: 7},
		BeneficiaryName: "Rosa",
		RationTypeName:  "Almuerzo",
	}
	session, err := form.NewEdit(RationForm(), ration)
	if err != nil {
		t.Fatalf("new edit: %v", err)
	}
	set(t, session, "date", "2024-06-10")
	if session.Dirty() {
		t.Fatalf("same day with a different time component should not be dirty")
	}
	set(t, session, "price", "5")
	set(t, session, "rationType", "2")

	sink := &capture[Ration]{}
	if _, err := session.Submit(context.Background(), sink.submit); err != nil {
		t.Fatalf("submit: %v", err)
	}
	want := ration
	want.Date = "2024-06-10"
	want.Price = 5
	want.RationType = &RationType{ID: 2}
	want.RationTypeName = ""
	if diff := cmp.Diff([]Ration{want}, sink.calls); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestInactiveBeneficiaryWarning(t *testing.T) {
	inactive := false
	beneficiaries := []Beneficiary{
		{ID: 1, FullName: "Ana"},
		{ID: 2, FullName: "Luis", Active: &inactive},
	}
	if got := InactiveBeneficiaryWarning(Ration{Beneficiary: &BeneficiaryRef{ID: 1}}, beneficiaries); got != "" {
		t.Fatalf("active beneficiary warned: %q", got)
	}
	if got := InactiveBeneficiaryWarning(Ration{Beneficiary: &BeneficiaryRef{ID: 2}}, beneficiaries); got != MsgBeneficiaryInactive {
		t.Fatalf("inactive beneficiary warning = %q", got)
	}
	if got := InactiveBeneficiaryWarning(Ration{Beneficiary: &BeneficiaryRef{ID: 3}}, beneficiaries); got != MsgBeneficiaryInactive {
		t.Fatalf("missing beneficiary warning = %q", got)
	}
	if got := BeneficiaryOptions(beneficiaries); len(got) != 1 || got[0].Label != "Ana" {
		t.Fatalf("options should hide inactive beneficiaries: %v", got)
	}
}

func TestTaskRules(t *testing.T) {
	errs := TaskSchema().Validate(map[string]string{
		"fullname": "A",
		"type":     "",
		"date":     "2024-02-30",
		"time":     "25:00",
	})
	want := map[string]string{
		"fullname": "Debe tener al menos 2 caracteres",
		"type":     "Campo obligatorio",
		"date":     "Fecha inválida",
		"time":     "Hora inválida",
	}
	if diff := cmp.Diff(want, map[string]string(errs)); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestNoteStripsMarkup(t *testing.T) {
	session, err := form.NewCreate(NoteForm())
	if err != nil {
		t.Fatalf("new create: %v", err)
	}
	set(t, session, "description", "Comprar <b>arroz</b> & aceite<script>alert(1)</script>")
	sink := &capture[Note]{}
	if _, err := session.Submit(context.Background(), sink.submit); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(sink.calls) != 1 || sink.calls[0].Description != "Comprar arroz & aceite" {
		t.Fatalf("unexpected note %+v", sink.calls)
	}
}

func TestMarkupOnlyEditIsNoChange(t *testing.T) {
	ctx := context.Background()

	maria := Beneficiary{ID: 3, FullName: "Maria Lopez", DNI: 12345678, Age: 34, Observations: "Celiaca", Users: &Owner{ID: 9}}
	beneficiary, err := form.NewEdit(BeneficiaryForm(), maria)
	if err != nil {
		t.Fatalf("new edit: %v", err)
	}
	set(t, beneficiary, "observations", "Celiaca<b></b>")
	people := &capture[Beneficiary]{}
	result, err := beneficiary.Submit(ctx, people.submit)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Decision != form.DecisionNoChanges || len(people.calls) != 0 {
		t.Fatalf("markup-only beneficiary edit submitted: %v %d", result.Decision, len(people.calls))
	}

	note, err := form.NewEdit(NoteForm(), Note{ID: 5, Description: "Comprar arroz", Users: &Owner{ID: 9}})
	if err != nil {
		t.Fatalf("new edit: %v", err)
	}
	set(t, note, "description", "<i>Comprar arroz</i>")
	notes := &capture[Note]{}
	noteResult, err := note.Submit(ctx, notes.submit)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if noteResult.Decision != form.DecisionNoChanges || len(notes.calls) != 0 {
		t.Fatalf("markup-only note edit submitted: %v %d", noteResult.Decision, len(notes.calls))
	}

	set(t, note, "description", "Comprar <b>aceite</b>")
	noteResult, err = note.Submit(ctx, notes.submit)
	if err != nil || !noteResult.Succeeded() {
		t.Fatalf("submit: %v %+v", err, noteResult)
	}
	if len(notes.calls) != 1 || notes.calls[0].Description != "Comprar aceite" {
		t.Fatalf("unexpected note %+v", notes.calls)
	}
}

func TestRegisterForm(t *testing.T) {
	session, err := form.NewCreate(RegisterForm())
	if err != nil {
		t.Fatalf("new create: %v", err)
	}
	set(t, session, "username", "rosa")
	set(t, session, "name", "Rosa Quispe")
	set(t, session, "mail", "rosa@")
	set(t, session, "password", "123")
	want := map[string]string{"mail": "Correo inválido", "password": "Debe tener al menos 6 caracteres"}
	if diff := cmp.Diff(want, map[string]string(session.Errors())); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}

	set(t, session, "mail", "rosa@example.com")
	set(t, session, "password", "secreto")
	sink := &capture[Registration]{}
	if _, err := session.Submit(context.Background(), sink.submit); err != nil {
		t.Fatalf("submit: %v", err)
	}
	wantReg := []Registration{{Username: "rosa", Name: "Rosa Quispe", Mail: "rosa@example.com", Password: "secreto", Enabled: true}}
	if diff := cmp.Diff(wantReg, sink.calls); diff != "" {
		t.Fatalf("registration mismatch (-want +got):\n%s", diff)
	}
}

func set[R any, C comparable](t *testing.T, s *form.Session[R, C], name, value string) string {
	t.Helper()
	stored, err := s.Set(name, value)
	if err != nil {
		t.Fatalf("set %s: %v", name, err)
	}
	return stored
}
