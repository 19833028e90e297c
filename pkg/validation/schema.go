package validation

import (
	"sort"
	"strings"
)

// Field binds a form field name to its ordered rules.
type Field struct {
	Name  string
	Label string
	Rules []Rule
}

// Required reports whether any rule of the field rejects empty values.
func (f Field) Required() bool {
	for _, rule := range f.Rules {
		if rule.IsRequired() {
			return true
		}
	}
	return false
}

// Schema is an ordered, immutable list of fields.
type Schema struct {
	fields []Field
	index  map[string]int
}

// NewSchema builds a schema. Later fields with a duplicate name replace
// earlier ones in place.
func NewSchema(fields ...Field) Schema {
	s := Schema{index: make(map[string]int, len(fields))}
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			continue
		}
		field.Name = name
		if pos, ok := s.index[name]; ok {
			s.fields[pos] = field
			continue
		}
		s.index[name] = len(s.fields)
		s.fields = append(s.fields, field)
	}
	return s
}

// Fields returns the fields in declaration order.
func (s Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Names returns the field names in declaration order.
func (s Schema) Names() []string {
	out := make([]string, 0, len(s.fields))
	for _, field := range s.fields {
		out = append(out, field.Name)
	}
	return out
}

// Field looks up a field by name.
func (s Schema) Field(name string) (Field, bool) {
	pos, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[pos], true
}

// Has reports whether the schema declares name.
func (s Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// ValidateField evaluates the rules of one field and returns the first
// failing message. Unknown fields are always valid.
func (s Schema) ValidateField(name, value string, opts ...Option) (string, bool) {
	field, ok := s.Field(name)
	if !ok {
		return "", true
	}
	cfg := newConfig(opts)
	for _, rule := range field.Rules {
		if rule.Check(value) {
			continue
		}
		return cfg.message(rule), false
	}
	return "", true
}

// Validate evaluates every field against values. Missing entries are
// validated as empty strings.
func (s Schema) Validate(values map[string]string, opts ...Option) Errors {
	var errs Errors
	for _, field := range s.fields {
		msg, ok := s.ValidateField(field.Name, values[field.Name], opts...)
		if ok {
			continue
		}
		if errs == nil {
			errs = make(Errors)
		}
		errs[field.Name] = msg
	}
	return errs
}

// Errors maps field names to their first failing message.
type Errors map[string]string

// Error implements error with a stable, field-sorted rendering.
func (e Errors) Error() string {
	if len(e) == 0 {
		return "validation: no errors"
	}
	parts := make([]string, 0, len(e))
	for _, name := range e.Fields() {
		parts = append(parts, name+": "+e[name])
	}
	return "validation: " + strings.Join(parts, "; ")
}

// Fields returns the failing field names sorted.
func (e Errors) Fields() []string {
	out := make([]string, 0, len(e))
	for name := range e {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Has reports whether name has an error.
func (e Errors) Has(name string) bool {
	_, ok := e[name]
	return ok
}

// Empty reports whether there are no errors.
func (e Errors) Empty() bool {
	return len(e) == 0
}

// Clone returns an independent copy.
func (e Errors) Clone() Errors {
	if e == nil {
		return nil
	}
	out := make(Errors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}
