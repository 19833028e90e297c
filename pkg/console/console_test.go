package console_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-micomedor/pkg/comedor"
	"github.com/goliatone/go-micomedor/pkg/console"
	"github.com/goliatone/go-micomedor/pkg/console/prompt"
	"github.com/goliatone/go-micomedor/pkg/form"
	"github.com/goliatone/go-micomedor/pkg/testsupport"
	"github.com/goliatone/go-micomedor/pkg/validation"
)

var monday = time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)

func run(t *testing.T, fx *testsupport.Fixture, answers ...any) *prompt.Script {
	t.Helper()
	script := prompt.NewScript(answers...)
	c, err := console.New(fx.Client, fx.Store, script, console.WithClock(func() time.Time { return monday }))
	if err != nil {
		t.Fatalf("new console: %v", err)
	}
	if err := c.Run(testsupport.Context()); err != nil {
		t.Fatalf("run: %v\noutput:\n%s", err, script.Output())
	}
	if n := script.Remaining(); n != 0 {
		t.Fatalf("%d answers left unused\noutput:\n%s", n, script.Output())
	}
	return script
}

func requireLine(t *testing.T, script *prompt.Script, want string) {
	t.Helper()
	for _, line := range script.Infos() {
		if line == want {
			return
		}
	}
	t.Fatalf("missing line %q in output:\n%s", want, script.Output())
}

func TestCreateBeneficiary(t *testing.T) {
	fx := testsupport.Backend(t)

	script := run(t, fx,
		console.MenuBeneficiaries,
		console.ActionNew,
		"Maria Lopez", "123", "12345678", "34", prompt.Keep,
		true,
		console.ActionBack,
		console.MenuQuit,
	)

	requireLine(t, script, "  DNI: Debe tener exactamente 8 dígitos numéricos")
	requireLine(t, script, "✔ Beneficiario registrado correctamente.")
	requireLine(t, script, "  1. Maria Lopez | DNI 12345678 | 34 años")

	writes := fx.Server.Writes()
	if len(writes) != 1 || writes[0].Method != http.MethodPost || writes[0].Path != "/beneficiary" {
		t.Fatalf("writes = %+v", writes)
	}
	var got comedor.Beneficiary
	if err := writes[0].Decode(&got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	want := comedor.Beneficiary{FullName: "Maria Lopez", DNI: 12345678, Age: 34, Users: &comedor.Owner{ID: 9}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestEnglishValidationMessages(t *testing.T) {
	fx := testsupport.Backend(t)
	script := prompt.NewScript(
		console.MenuBeneficiaries,
		console.ActionNew,
		"", "Maria Lopez", "123", "12345678", "34", prompt.Keep,
		true,
		console.ActionBack,
		console.MenuQuit,
	)
	c, err := console.New(fx.Client, fx.Store, script,
		console.WithClock(func() time.Time { return monday }),
		console.WithTranslator(validation.DefaultCatalog(), "en"),
	)
	if err != nil {
		t.Fatalf("new console: %v", err)
	}
	if err := c.Run(testsupport.Context()); err != nil {
		t.Fatalf("run: %v\noutput:\n%s", err, script.Output())
	}

	requireLine(t, script, "  Nombre completo: Required field")
	requireLine(t, script, "  DNI: Must have exactly 8 digits")
	requireLine(t, script, "✔ Beneficiario registrado correctamente.")
	if n := len(fx.Server.Writes()); n != 1 {
		t.Fatalf("writes = %d, want 1", n)
	}
}

func TestDuplicateBeneficiary(t *testing.T) {
	fx := testsupport.Backend(t)
	fx.Server.Seed(comedor.EntityBeneficiary, comedor.Beneficiary{
		ID: 1, FullName: "Maria Lopez", DNI: 12345678, Age: 34, Users: &comedor.Owner{ID: 9},
	})

	script := run(t, fx,
		console.MenuBeneficiaries,
		console.ActionNew,
		"Maria Lopez", "12345678", "35", prompt.Keep,
		true,
		false,
		console.ActionBack,
		console.MenuQuit,
	)

	requireLine(t, script, "✖ "+comedor.MsgBeneficiaryDuplicate)
	requireLine(t, script, "  "+comedor.MsgBeneficiaryDuplicate)
	if got := len(fx.Server.Writes()); got != 1 {
		t.Fatalf("writes = %d, want 1", got)
	}
}

func seedProduct(fx *testsupport.Fixture) {
	fx.Server.Seed(comedor.LookupUnitOfMeasurement, comedor.UnitOfMeasurement{ID: 1, Name: "Kilogramo", Abbreviation: "kg"})
	fx.Server.Seed(comedor.LookupProductType, comedor.ProductType{ID: 2, Name: "Alimento"})
	fx.Server.Seed(comedor.EntityProduct, comedor.Product{
		ID: 4, Description: "Arroz", Amount: 10, UnitID: 1, TypeID: 2, UserID: 9,
		UnitAbbreviation: "kg", TypeName: "Alimento",
	})
}

func TestProductEditWithoutChanges(t *testing.T) {
	fx := testsupport.Backend(t)
	seedProduct(fx)

	script := run(t, fx,
		console.MenuProducts,
		console.ActionEdit, 0,
		prompt.Keep, prompt.Keep, prompt.Keep, prompt.Keep, prompt.Keep,
		true,
		console.ActionBack,
		console.MenuQuit,
	)

	requireLine(t, script, "  1. Arroz | 10 kg | Alimento")
	requireLine(t, script, "ℹ No hay cambios para guardar.")
	if writes := fx.Server.Writes(); len(writes) != 0 {
		t.Fatalf("expected no writes, got %+v", writes)
	}
}

func TestProductEditAmount(t *testing.T) {
	fx := testsupport.Backend(t)
	seedProduct(fx)

	script := run(t, fx,
		console.MenuProducts,
		console.ActionEdit, 0,
		prompt.Keep, "8", prompt.Keep, prompt.Keep, prompt.Keep,
		true,
		console.ActionBack,
		console.MenuQuit,
	)

	requireLine(t, script, "  1. Arroz | 8 kg | Alimento")
	writes := fx.Server.Writes()
	if len(writes) != 1 || writes[0].Method != http.MethodPut || writes[0].Path != "/product/4" {
		t.Fatalf("writes = %+v", writes)
	}
	var got comedor.Product
	if err := writes[0].Decode(&got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got.Amount != 8 || got.Description != "Arroz" || got.UnitID != 1 || got.TypeID != 2 || got.UserID != 9 {
		t.Fatalf("unexpected body %+v", got)
	}
}

func TestRationEditWarnsAboutDeletedBeneficiary(t *testing.T) {
	fx := testsupport.Backend(t)
	inactive := false
	fx.Server.Seed(comedor.EntityBeneficiary, comedor.Beneficiary{
		ID: 1, FullName: "Juan Perez", DNI: 11111111, Age: 40, Active: &inactive, Users: &comedor.Owner{ID: 9},
	})
	fx.Server.Seed(comedor.LookupRationType, comedor.RationType{ID: 1, Name: "Almuerzo"})
	fx.Server.Seed(comedor.EntityRation, comedor.Ration{
		ID: 3, Date: "2024-06-10", Price: 150, Users: &comedor.Owner{ID: 9},
		RationType: &comedor.RationType{ID: 1}, Beneficiary: &comedor.BeneficiaryRef{ID: 1},
		BeneficiaryName: "Juan Perez", RationTypeName: "Almuerzo",
	})

	script := run(t, fx,
		console.MenuRations,
		console.ActionEdit, 0,
		prompt.Keep, prompt.Keep, prompt.Keep, prompt.Keep,
		true,
		console.ActionBack,
		console.MenuQuit,
	)

	requireLine(t, script, "⚠ "+comedor.MsgBeneficiaryInactive)
	requireLine(t, script, "ℹ No hay cambios para guardar.")
	if writes := fx.Server.Writes(); len(writes) != 0 {
		t.Fatalf("expected no writes, got %+v", writes)
	}
}

func TestDeleteNote(t *testing.T) {
	fx := testsupport.Backend(t)
	fx.Server.Seed(comedor.EntityNote, comedor.Note{ID: 1, Description: "Comprar pan", Users: &comedor.Owner{ID: 9}})

	script := run(t, fx,
		console.MenuNotes,
		console.ActionDelete, 0, true,
		console.ActionBack,
		console.MenuQuit,
	)

	requireLine(t, script, "✔ "+console.MsgDeleted)
	requireLine(t, script, "  "+console.MsgEmpty)
	writes := fx.Server.Writes()
	if len(writes) != 1 || writes[0].Method != http.MethodDelete || writes[0].Path != "/note/1" {
		t.Fatalf("writes = %+v", writes)
	}
}

func TestSearchResetsToFirstPage(t *testing.T) {
	fx := testsupport.Backend(t)
	names := []string{"Maria Lopez", "Mario Diaz", "Marta Gomez", "Omar Ruiz", "Juan Perez", "Pedro Sosa", "Luis Vega"}
	for i, name := range names {
		fx.Server.Seed(comedor.EntityBeneficiary, comedor.Beneficiary{
			FullName: name, DNI: int64(20000000 + i), Age: 30, Users: &comedor.Owner{ID: 9},
		})
	}

	script := run(t, fx,
		console.MenuBeneficiaries,
		console.ActionNext,
		console.ActionSearch, "mar",
		console.ActionNext,
		console.ActionBack,
		console.MenuQuit,
	)

	requireLine(t, script, "Beneficiarios · página 1 de 3 · 7 registros")
	requireLine(t, script, "Beneficiarios · página 2 de 3 · 7 registros")
	requireLine(t, script, `Beneficiarios · página 1 de 2 · 4 registros · filtro "mar"`)
	requireLine(t, script, `Beneficiarios · página 2 de 2 · 4 registros · filtro "mar"`)
}

func TestExpiredSessionReturnsToLogin(t *testing.T) {
	fx := testsupport.Backend(t)
	fx.Server.FailNext(http.MethodGet, "/note/byUser/9", http.StatusUnauthorized, map[string]string{"message": "expired"})

	script := run(t, fx,
		console.MenuNotes,
		console.MenuQuit,
	)

	requireLine(t, script, console.MsgSessionExpired)
	if _, ok := fx.Store.CurrentUser(); ok {
		t.Fatalf("session should be cleared")
	}
	prompts := script.Prompts()
	if got := prompts[len(prompts)-1]; got != "Bienvenido a MiComedor" {
		t.Fatalf("last prompt = %q", got)
	}
}

func TestRejectedTokenInReportReturnsToLogin(t *testing.T) {
	fx := testsupport.Backend(t)
	fx.Server.SetReport("ration", "beneficiariesDaily", []map[string]int{{"beneficiariosPorDia": 18}})
	fx.Server.SetReport("budget", "reportePresupuestoPorDia", []map[string]float64{})
	fx.Server.SetReport("product", "expiringDaily", []map[string]string{})
	fx.Server.FailNext(http.MethodGet, "/ration/reportDaily/9", http.StatusUnauthorized, map[string]string{"message": "expired"})

	script := run(t, fx,
		console.MenuReports,
		console.ReportDaily,
		console.MenuQuit,
	)

	requireLine(t, script, console.MsgSessionExpired)
	if strings.Contains(script.Output(), "No se pudieron cargar los datos") {
		t.Fatalf("report rendered after a rejected token:\n%s", script.Output())
	}
	if _, ok := fx.Store.CurrentUser(); ok {
		t.Fatalf("session should be cleared")
	}
}

func TestLogin(t *testing.T) {
	fx := testsupport.Backend(t)
	if err := fx.Store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	token := testsupport.SignToken(t, map[string]any{"sub": "ana", "idUser": 9})
	fx.Server.IssueToken("ana", "secreto", token)

	script := run(t, fx,
		console.MenuLogin, "ana", "equivocada", false,
		console.MenuLogin, "ana", "secreto",
		console.MenuQuit,
	)

	requireLine(t, script, "✖ Usuario o contraseña incorrectos.")
	requireLine(t, script, "✔ Sesión iniciada.")
	user, ok := fx.Store.CurrentUser()
	if !ok || user.ID != 9 || user.Username != "ana" || user.AccessToken != token {
		t.Fatalf("stored user = %+v, %v", user, ok)
	}
}

func TestRegister(t *testing.T) {
	fx := testsupport.Backend(t)
	if err := fx.Store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}

	script := run(t, fx,
		console.MenuRegister, "ana", "Ana Gomez", "ana@example.com", "secreto", true,
		console.MenuQuit,
	)

	requireLine(t, script, "✔ Usuario registrado. Ya puedes iniciar sesión.")
	regs := fx.Server.Registrations()
	if len(regs) != 1 || regs[0]["mail"] != "ana@example.com" || regs[0]["enabled"] != true {
		t.Fatalf("registrations = %+v", regs)
	}
	if _, ok := fx.Store.CurrentUser(); ok {
		t.Fatalf("registration must not log in")
	}
}

func TestDailyReport(t *testing.T) {
	fx := testsupport.Backend(t)
	fx.Server.SetReport("ration", "reportDaily", map[string]int{"totalRacionPorDia": 31})
	fx.Server.SetReport("ration", "beneficiariesDaily", []map[string]int{{"beneficiariosPorDia": 18}})
	fx.Server.SetReport("budget", "reportePresupuestoPorDia", []map[string]float64{{"ingresosHoy": 80, "egresosHoy": 30, "saldoFinal": 50}})
	fx.Server.SetReport("product", "expiringDaily", []map[string]string{})

	script := run(t, fx,
		console.MenuReports,
		console.ReportDaily,
		console.ActionBack,
		console.MenuQuit,
	)

	out := script.Output()
	for _, want := range []string{"Reporte diario", "  Total: 31", "  Total atendidos: 18"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestFormatNotification(t *testing.T) {
	got := []string{
		console.FormatNotification(form.Notification{Severity: form.SeverityInfo, Message: "a"}),
		console.FormatNotification(form.Notification{Severity: form.SeveritySuccess, Message: "b"}),
		console.FormatNotification(form.Notification{Severity: form.SeverityWarning, Message: "c"}),
		console.FormatNotification(form.Notification{Severity: form.SeverityError, Message: "d"}),
	}
	want := []string{"ℹ a", "✔ b", "⚠ c", "✖ d"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}
