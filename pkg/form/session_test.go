package form

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-micomedor/pkg/validation"
)

type recordingSubmitter struct {
	mu    sync.Mutex
	calls []item
	modes []Mode
	err   error
}

func (r *recordingSubmitter) submit(_ context.Context, mode Mode, rec item) (item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, rec)
	r.modes = append(r.modes, mode)
	if r.err != nil {
		return item{}, r.err
	}
	if rec.ID == 0 {
		rec.ID = 99
	}
	return rec, nil
}

type remoteError struct {
	conflict bool
	fields   map[string][]string
}

func (e *remoteError) Error() string                    { return "remote failure" }
func (e *remoteError) Conflict() bool                   { return e.conflict }
func (e *remoteError) FieldErrors() map[string][]string { return e.fields }

func TestSessionNoOpEditMakesNoCall(t *testing.T) {
	log := &Log{}
	session, err := NewEdit(itemDefinition(), existingItem(), WithNotifier(log))
	if err != nil {
		t.Fatalf("new edit: %v", err)
	}
	// Whitespace and equivalent numbers normalize to the baseline shape.
	mustSet(t, session, "description", " Arroz ")
	mustSet(t, session, "amount", "10.0")
	mustSet(t, session, "date", "2024-05-01")

	sub := &recordingSubmitter{}
	result, err := session.Submit(context.Background(), sub.submit)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Decision != DecisionNoChanges {
		t.Fatalf("decision = %v, want no_changes", result.Decision)
	}
	if len(sub.calls) != 0 {
		t.Fatalf("expected no submitter calls, got %d", len(sub.calls))
	}
	want := []Notification{{Severity: SeverityInfo, Message: "No hay cambios para guardar."}}
	if diff := cmp.Diff(want, log.All()); diff != "" {
		t.Fatalf("notifications mismatch (-want +got):\n%s", diff)
	}
	if session.Closed() {
		t.Fatalf("no-op submit must keep the session open")
	}
	if session.CanSubmit() {
		t.Fatalf("CanSubmit should be false for an unchanged form")
	}
}

func TestSessionDirtyEditSubmitsOnce(t *testing.T) {
	log := &Log{}
	reloaded := 0
	session, err := NewEdit(itemDefinition(), existingItem(), WithNotifier(log), OnSuccess(func() { reloaded++ }))
	if err != nil {
		t.Fatalf("new edit: %v", err)
	}
	mustSet(t, session, "amount", "8")
	if !session.CanSubmit() {
		t.Fatalf("expected CanSubmit after a valid change")
	}

	sub := &recordingSubmitter{}
	result, err := session.Submit(context.Background(), sub.submit)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !result.Succeeded() {
		t.Fatalf("expected success, got %+v", result)
	}

	want := existingItem()
	want.Amount = 8
	want.Date = "2024-05-01"
	if diff := cmp.Diff([]item{want}, sub.calls); diff != "" {
		t.Fatalf("submitted records mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Mode{ModeEdit}, sub.modes); diff != "" {
		t.Fatalf("modes mismatch (-want +got):\n%s", diff)
	}
	if reloaded != 1 {
		t.Fatalf("OnSuccess fired %d times, want 1", reloaded)
	}
	if session.State() != StateSuccess || !session.Closed() {
		t.Fatalf("expected closed success session, got %v closed=%v", session.State(), session.Closed())
	}
	if diff := cmp.Diff([]Notification{{Severity: SeveritySuccess, Message: "Registro actualizado correctamente."}}, log.All()); diff != "" {
		t.Fatalf("notifications mismatch (-want +got):\n%s", diff)
	}

	if _, err := session.Set("amount", "9"); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("Set after success = %v, want ErrSessionClosed", err)
	}
	if _, err := session.Submit(context.Background(), sub.submit); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("Submit after success = %v, want ErrSessionClosed", err)
	}
}

func TestSessionInvalidChangeSurfacesErrors(t *testing.T) {
	session, err := NewEdit(itemDefinition(), existingItem())
	if err != nil {
		t.Fatalf("new edit: %v", err)
	}
	mustSet(t, session, "description", "Arroz 2")

	if !session.Dirty() {
		t.Fatalf("expected dirty session")
	}
	if session.CanSubmit() {
		t.Fatalf("invalid change must not enable submit")
	}

	sub := &recordingSubmitter{}
	result, err := session.Submit(context.Background(), sub.submit)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Decision != DecisionInvalid {
		t.Fatalf("decision = %v, want invalid", result.Decision)
	}
	if len(sub.calls) != 0 {
		t.Fatalf("invalid submit reached the submitter")
	}
	want := validation.Errors{"description": "Solo se permiten letras"}
	if diff := cmp.Diff(want, result.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestSessionVisibleErrorsDeferUntilTouched(t *testing.T) {
	session, err := NewCreate(itemDefinition())
	if err != nil {
		t.Fatalf("new create: %v", err)
	}
	if got := session.VisibleErrors(); len(got) != 0 {
		t.Fatalf("untouched create form shows errors: %v", got)
	}
	if got := session.Errors(); !got.Has("description") || !got.Has("amount") || !got.Has("category") {
		t.Fatalf("expected required errors, got %v", got)
	}

	mustSet(t, session, "description", "Fideos")
	mustSet(t, session, "amount", "abc")
	want := validation.Errors{"amount": "Campo obligatorio"}
	if diff := cmp.Diff(want, session.VisibleErrors()); diff != "" {
		t.Fatalf("visible errors mismatch (-want +got):\n%s", diff)
	}

	// Submitting invalid values reveals every failing field.
	if _, err := session.Submit(context.Background(), (&recordingSubmitter{}).submit); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got := session.FieldError("category"); got != "Campo obligatorio" {
		t.Fatalf("category error = %q", got)
	}
}

func TestSessionEmptyCreateIsNoChange(t *testing.T) {
	log := &Log{}
	session, err := NewCreate(itemDefinition(), WithNotifier(log))
	if err != nil {
		t.Fatalf("new create: %v", err)
	}
	sub := &recordingSubmitter{}
	result, err := session.Submit(context.Background(), sub.submit)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Decision != DecisionNoChanges || len(sub.calls) != 0 {
		t.Fatalf("empty create should be a no-op, got %v with %d calls", result.Decision, len(sub.calls))
	}
}

func TestSessionFailureKeepsValuesAndAllowsRetry(t *testing.T) {
	log := &Log{}
	session, err := NewCreate(itemDefinition(), WithNotifier(log))
	if err != nil {
		t.Fatalf("new create: %v", err)
	}
	mustSet(t, session, "description", "Fideos")
	mustSet(t, session, "amount", "3")
	mustSet(t, session, "category", "1")

	sub := &recordingSubmitter{err: errors.New("connection refused")}
	result, err := session.Submit(context.Background(), sub.submit)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Err == nil || result.Succeeded() {
		t.Fatalf("expected remote failure, got %+v", result)
	}
	if session.State() != StateIdle || session.Closed() {
		t.Fatalf("failure must return to idle and keep the session open")
	}
	if got := session.Value("description"); got != "Fideos" {
		t.Fatalf("values not preserved, description=%q", got)
	}
	if diff := cmp.Diff([]Notification{{Severity: SeverityError, Message: "Ocurrió un error al guardar."}}, log.Drain()); diff != "" {
		t.Fatalf("notifications mismatch (-want +got):\n%s", diff)
	}

	sub.err = nil
	result, err = session.Submit(context.Background(), sub.submit)
	if err != nil || !result.Succeeded() {
		t.Fatalf("retry failed: %v %+v", err, result)
	}
	if result.Record.ID != 99 {
		t.Fatalf("stored record ID = %d, want 99", result.Record.ID)
	}
	if len(sub.calls) != 2 {
		t.Fatalf("expected 2 submitter calls, got %d", len(sub.calls))
	}
	if diff := cmp.Diff([]Mode{ModeCreate, ModeCreate}, sub.modes); diff != "" {
		t.Fatalf("modes mismatch (-want +got):\n%s", diff)
	}
}

func TestSessionConflictBecomesFormError(t *testing.T) {
	log := &Log{}
	session, err := NewCreate(itemDefinition(), WithNotifier(log))
	if err != nil {
		t.Fatalf("new create: %v", err)
	}
	mustSet(t, session, "description", "Fideos")
	mustSet(t, session, "amount", "3")
	mustSet(t, session, "category", "1")

	sub := &recordingSubmitter{err: &remoteError{conflict: true}}
	if _, err := session.Submit(context.Background(), sub.submit); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if diff := cmp.Diff([]string{"El artículo ya existe."}, session.FormErrors()); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Notification{{Severity: SeverityError, Message: "El artículo ya existe."}}, log.All()); diff != "" {
		t.Fatalf("notifications mismatch (-want +got):\n%s", diff)
	}

	mustSet(t, session, "description", "Fideos Largos")
	if got := session.FormErrors(); len(got) != 0 {
		t.Fatalf("editing should clear form errors, got %v", got)
	}
}

func TestSessionServerFieldErrors(t *testing.T) {
	session, err := NewCreate(itemDefinition())
	if err != nil {
		t.Fatalf("new create: %v", err)
	}
	mustSet(t, session, "description", "Fideos")
	mustSet(t, session, "amount", "3")
	mustSet(t, session, "category", "1")

	sub := &recordingSubmitter{err: &remoteError{fields: map[string][]string{
		"/body/descriptionItem": {"ya usado"},
		"quota":                 {"cuota excedida"},
	}}}
	if _, err := session.Submit(context.Background(), sub.submit); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got := session.FieldError("description"); got != "ya usado" {
		t.Fatalf("description server error = %q", got)
	}
	if diff := cmp.Diff([]string{"cuota excedida"}, session.FormErrors()); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
	mustSet(t, session, "description", "Tallarines")
	if session.Errors().Has("description") {
		t.Fatalf("server error should clear after editing the field")
	}
}

func TestSessionConcurrentSubmitRejected(t *testing.T) {
	session, err := NewCreate(itemDefinition())
	if err != nil {
		t.Fatalf("new create: %v", err)
	}
	mustSet(t, session, "description", "Fideos")
	mustSet(t, session, "amount", "3")
	mustSet(t, session, "category", "1")

	entered := make(chan struct{})
	release := make(chan struct{})
	calls := 0
	slow := func(_ context.Context, _ Mode, rec item) (item, error) {
		calls++
		close(entered)
		<-release
		return rec, nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := session.Submit(context.Background(), slow)
		done <- err
	}()
	<-entered

	if session.State() != StateSubmitting {
		t.Fatalf("state = %v, want submitting", session.State())
	}
	if session.CanSubmit() {
		t.Fatalf("CanSubmit must be false while submitting")
	}
	if _, err := session.Submit(context.Background(), slow); !errors.Is(err, ErrSubmitInProgress) {
		t.Fatalf("second submit = %v, want ErrSubmitInProgress", err)
	}
	if err := session.Cancel(); !errors.Is(err, ErrSubmitInProgress) {
		t.Fatalf("cancel while submitting = %v, want ErrSubmitInProgress", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if calls != 1 {
		t.Fatalf("submitter called %d times, want 1", calls)
	}
}

func TestSessionCancel(t *testing.T) {
	session, err := NewEdit(itemDefinition(), existingItem())
	if err != nil {
		t.Fatalf("new edit: %v", err)
	}
	if err := session.Cancel(); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := session.Cancel(); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("second cancel = %v, want ErrSessionClosed", err)
	}
	if err := session.Touch("amount"); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("touch after cancel = %v", err)
	}
}

func TestSessionBaselineIsImmutable(t *testing.T) {
	session, err := NewEdit(itemDefinition(), existingItem())
	if err != nil {
		t.Fatalf("new edit: %v", err)
	}
	values := session.Values()
	values["amount"] = "1"
	mustSet(t, session, "description", "Avena")

	if diff := cmp.Diff(existingItem(), session.Baseline()); diff != "" {
		t.Fatalf("baseline changed (-want +got):\n%s", diff)
	}
	if got := session.BaselineValues().Get("description"); got != "Arroz" {
		t.Fatalf("baseline description = %q", got)
	}
	if got := session.Value("amount"); got != "10" {
		t.Fatalf("Values() leaked a mutable map, amount=%q", got)
	}
}

func TestSessionUnknownField(t *testing.T) {
	session, err := NewCreate(itemDefinition())
	if err != nil {
		t.Fatalf("new create: %v", err)
	}
	if _, err := session.Set("nope", "x"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("Set unknown = %v, want ErrUnknownField", err)
	}
}

func TestSessionFilterApplied(t *testing.T) {
	session, err := NewCreate(itemDefinition())
	if err != nil {
		t.Fatalf("new create: %v", err)
	}
	got, err := session.Set("amount", "0a1.5.0")
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if got != "1.50" {
		t.Fatalf("filtered amount = %q, want 1.50", got)
	}
}

func TestNewSessionRejectsIncompleteDefinition(t *testing.T) {
	def := itemDefinition()
	def.Shape = nil
	if _, err := NewCreate(def); !errors.Is(err, ErrInvalidDefinition) {
		t.Fatalf("NewCreate = %v, want ErrInvalidDefinition", err)
	}
}

func TestGate(t *testing.T) {
	def := itemDefinition()
	base := def.Values(existingItem())

	cases := []struct {
		name    string
		current Values
		want    Decision
	}{
		{"same", base.Clone(), DecisionNoChanges},
		{"trimmed", Values{"description": "Arroz  ", "amount": "10", "category": "2", "date": "2024-05-01"}, DecisionNoChanges},
		{"changed", Values{"description": "Arroz", "amount": "11", "category": "2", "date": "2024-05-01"}, DecisionProceed},
		{"invalid", Values{"description": "", "amount": "11", "category": "2"}, DecisionInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Gate(def, base, tc.current).Decision; got != tc.want {
				t.Fatalf("Gate = %v, want %v", got, tc.want)
			}
		})
	}
}

func mustSet(t *testing.T, s *Session[item, itemShape], name, value string) {
	t.Helper()
	if _, err := s.Set(name, value); err != nil {
		t.Fatalf("set %s: %v", name, err)
	}
}
