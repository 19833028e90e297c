package form

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goliatone/go-micomedor/pkg/validation"
)

// Mode tells whether a session creates a new record or edits an existing one.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// State is the submission state of a session.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateSuccess
	StateFailure
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateFailure:
		return "failure"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Submitter performs the remote write for a session and returns the stored
// record.
type Submitter[R any] func(ctx context.Context, mode Mode, record R) (R, error)

// Result describes what Submit did.
type Result[R any] struct {
	Decision Decision
	// Record is the stored record on success.
	Record R
	// Errors holds the field errors when Decision is DecisionInvalid.
	Errors validation.Errors
	// Err is the remote failure, if any. The session is idle again and may
	// be retried.
	Err error
}

// Succeeded reports whether the remote write happened and succeeded.
func (r Result[R]) Succeeded() bool {
	return r.Decision == DecisionProceed && r.Err == nil
}

// Option configures a session.
type Option func(*options)

type options struct {
	notifier  Notifier
	onSuccess []func()
	validate  []validation.Option
}

// WithNotifier routes session notifications to n.
func WithNotifier(n Notifier) Option {
	return func(o *options) {
		if n != nil {
			o.notifier = n
		}
	}
}

// OnSuccess registers a hook fired after a successful submit, outside the
// session lock. List views use it to reload.
func OnSuccess(fn func()) Option {
	return func(o *options) {
		if fn != nil {
			o.onSuccess = append(o.onSuccess, fn)
		}
	}
}

// WithTranslator localizes validation messages.
func WithTranslator(t validation.Translator, locale string) Option {
	return func(o *options) {
		o.validate = append(o.validate, validation.WithTranslator(t, locale))
	}
}

// Session is the state of one open dialog. The baseline is captured at
// construction and never mutated.
type Session[R any, C comparable] struct {
	def  Definition[R, C]
	mode Mode
	opts options

	baseline       R
	baselineValues Values

	mu           sync.Mutex
	current      Values
	touched      map[string]struct{}
	errors       validation.Errors
	serverErrors validation.Errors
	formErrors   []string
	state        State
	closed       bool
}

// NewCreate opens a session on the definition's empty template.
func NewCreate[R any, C comparable](def Definition[R, C], opts ...Option) (*Session[R, C], error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return newSession(def, ModeCreate, def.empty(), opts), nil
}

// NewEdit opens a session on an existing record.
func NewEdit[R any, C comparable](def Definition[R, C], record R, opts ...Option) (*Session[R, C], error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return newSession(def, ModeEdit, record, opts), nil
}

func newSession[R any, C comparable](def Definition[R, C], mode Mode, record R, opts []Option) *Session[R, C] {
	o := options{notifier: discardNotifier{}}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	def.Messages = def.Messages.withDefaults()

	baselineValues := def.Values(record).Clone()
	s := &Session[R, C]{
		def:            def,
		mode:           mode,
		opts:           o,
		baseline:       record,
		baselineValues: baselineValues,
		current:        baselineValues.Clone(),
		touched:        make(map[string]struct{}),
	}
	s.errors = def.Schema.Validate(s.current, o.validate...)
	return s
}

// Mode returns the session mode.
func (s *Session[R, C]) Mode() Mode {
	return s.mode
}

// Baseline returns the record captured at session start.
func (s *Session[R, C]) Baseline() R {
	return s.baseline
}

// BaselineValues returns a copy of the baseline field values.
func (s *Session[R, C]) BaselineValues() Values {
	return s.baselineValues.Clone()
}

// Definition returns the definition the session was built from.
func (s *Session[R, C]) Definition() Definition[R, C] {
	return s.def
}

// State returns the submission state.
func (s *Session[R, C]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Closed reports whether the session ended through success or cancel.
func (s *Session[R, C]) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Values returns a copy of the current field values.
func (s *Session[R, C]) Values() Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// Value returns the current raw value of one field.
func (s *Session[R, C]) Value(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Get(name)
}

// Set filters raw, stores it, marks the field touched and recomputes the
// errors. It returns the stored value.
func (s *Session[R, C]) Set(name, raw string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", ErrSessionClosed
	}
	if !s.def.Schema.Has(name) {
		return "", fmt.Errorf("%w: %s.%s", ErrUnknownField, s.def.Name, name)
	}
	value := raw
	if filter := s.def.Filters[name]; filter != nil {
		value = filter(raw)
	}
	s.current[name] = value
	s.touched[name] = struct{}{}
	delete(s.serverErrors, name)
	s.formErrors = nil
	s.errors = s.def.Schema.Validate(s.current, s.opts.validate...)
	return value, nil
}

// Touch marks a field as interacted with without changing it.
func (s *Session[R, C]) Touch(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if !s.def.Schema.Has(name) {
		return fmt.Errorf("%w: %s.%s", ErrUnknownField, s.def.Name, name)
	}
	s.touched[name] = struct{}{}
	return nil
}

// Touched reports whether the user interacted with name.
func (s *Session[R, C]) Touched(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.touched[name]
	return ok
}

// Errors returns every current field error, local rules first and server
// messages for fields the rules accept.
func (s *Session[R, C]) Errors() validation.Errors {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mergedErrors()
}

// VisibleErrors returns the errors of touched fields only.
func (s *Session[R, C]) VisibleErrors() validation.Errors {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out validation.Errors
	for name, msg := range s.mergedErrors() {
		if _, ok := s.touched[name]; !ok {
			continue
		}
		if out == nil {
			out = make(validation.Errors)
		}
		out[name] = msg
	}
	return out
}

// FieldError returns the visible error of one field.
func (s *Session[R, C]) FieldError(name string) string {
	return s.VisibleErrors()[name]
}

// FormErrors returns messages that belong to no single field.
func (s *Session[R, C]) FormErrors() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.formErrors))
	copy(out, s.formErrors)
	return out
}

func (s *Session[R, C]) mergedErrors() validation.Errors {
	out := s.errors.Clone()
	for name, msg := range s.serverErrors {
		if out.Has(name) {
			continue
		}
		if out == nil {
			out = make(validation.Errors)
		}
		out[name] = msg
	}
	return out
}

// Dirty reports whether the current shape differs from the baseline shape.
func (s *Session[R, C]) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.def.Shape(s.baselineValues) != s.def.Shape(s.current)
}

// Valid reports whether every field passes its rules.
func (s *Session[R, C]) Valid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errors.Empty()
}

// CanSubmit reports whether the submit action is enabled: the session is
// idle, open, dirty and valid.
func (s *Session[R, C]) CanSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.state != StateIdle {
		return false
	}
	return Gate(s.def, s.baselineValues, s.current, s.opts.validate...).Decision == DecisionProceed
}

// Check runs the dirty-check gate without submitting.
func (s *Session[R, C]) Check() GateResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Gate(s.def, s.baselineValues, s.current, s.opts.validate...)
}

// Submit runs the gate and, when it proceeds, calls submit once. A no-op
// edit emits an informational notification and never calls submit. Invalid
// values mark every field touched so their errors become visible. Remote
// failures are reported in Result.Err with the session back to idle.
func (s *Session[R, C]) Submit(ctx context.Context, submit Submitter[R]) (Result[R], error) {
	if submit == nil {
		return Result[R]{}, fmt.Errorf("form: %s: nil submitter", s.def.Name)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Result[R]{}, ErrSessionClosed
	}
	if s.state == StateSubmitting {
		s.mu.Unlock()
		return Result[R]{}, ErrSubmitInProgress
	}

	gate := Gate(s.def, s.baselineValues, s.current, s.opts.validate...)
	switch gate.Decision {
	case DecisionNoChanges:
		msg := s.def.Messages.NoChanges
		s.mu.Unlock()
		s.opts.notifier.Notify(Notification{Severity: SeverityInfo, Message: msg})
		return Result[R]{Decision: DecisionNoChanges}, nil
	case DecisionInvalid:
		for _, name := range s.def.Schema.Names() {
			s.touched[name] = struct{}{}
		}
		s.errors = gate.Errors
		s.mu.Unlock()
		return Result[R]{Decision: DecisionInvalid, Errors: gate.Errors.Clone()}, nil
	}

	record, err := s.def.Build(s.baseline, s.current.Clone())
	if err != nil {
		s.mu.Unlock()
		return Result[R]{}, fmt.Errorf("form: %s: build record: %w", s.def.Name, err)
	}
	s.state = StateSubmitting
	s.mu.Unlock()

	stored, err := submit(ctx, s.mode, record)

	s.mu.Lock()
	if err != nil {
		s.state = StateFailure
		note := s.recordFailure(err)
		s.state = StateIdle
		s.mu.Unlock()
		s.opts.notifier.Notify(note)
		return Result[R]{Decision: DecisionProceed, Record: record, Err: err}, nil
	}
	s.state = StateSuccess
	s.closed = true
	msg := s.def.Messages.Created
	if s.mode == ModeEdit {
		msg = s.def.Messages.Updated
	}
	s.mu.Unlock()

	s.opts.notifier.Notify(Notification{Severity: SeveritySuccess, Message: msg})
	for _, fn := range s.opts.onSuccess {
		fn()
	}
	return Result[R]{Decision: DecisionProceed, Record: stored}, nil
}

// recordFailure maps a remote error onto the session and returns the
// notification to emit. Callers hold s.mu.
func (s *Session[R, C]) recordFailure(err error) Notification {
	msg := s.def.Messages.CreateFailed
	if s.mode == ModeEdit {
		msg = s.def.Messages.UpdateFailed
	}

	var conflict conflictError
	if errors.As(err, &conflict) && conflict.Conflict() {
		s.formErrors = []string{s.def.Messages.Conflict}
		if source, ok := conflict.(fieldErrorSource); ok {
			s.applyServerErrors(source.FieldErrors())
		}
		return Notification{Severity: SeverityError, Message: s.def.Messages.Conflict}
	}

	var source fieldErrorSource
	if errors.As(err, &source) {
		s.applyServerErrors(source.FieldErrors())
	}
	return Notification{Severity: SeverityError, Message: msg}
}

func (s *Session[R, C]) applyServerErrors(payload map[string][]string) {
	mapping := MapErrorPayload(s.def.Schema, payload, s.def.WireNames)
	for name, messages := range mapping.Fields {
		if s.serverErrors == nil {
			s.serverErrors = make(validation.Errors)
		}
		s.serverErrors[name] = messages[0]
		s.touched[name] = struct{}{}
	}
	s.formErrors = append(s.formErrors, mapping.Form...)
	s.formErrors = normalizeMessages(s.formErrors)
}

// Cancel closes the session without any remote call.
func (s *Session[R, C]) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.state == StateSubmitting {
		return ErrSubmitInProgress
	}
	s.closed = true
	return nil
}
