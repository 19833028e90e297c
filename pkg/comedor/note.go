package comedor

import (
	"github.com/goliatone/go-micomedor/pkg/form"
	"github.com/goliatone/go-micomedor/pkg/validation"
)

// NoteMaxLength bounds the note text.
const NoteMaxLength = 255

// Note is a free-text reminder.
type Note struct {
	ID          int64  `json:"idNote,omitempty"`
	Description string `json:"descriptionNote"`
	Users       *Owner `json:"users,omitempty"`
}

// Key returns the record identifier.
func (n Note) Key() int64 { return n.ID }

// WithOwner returns a copy scoped to user id.
func (n Note) WithOwner(id int64) Note {
	n.Users = &Owner{ID: id}
	return n
}

// NoteFields are the display fields the list filter matches.
func NoteFields(n Note) []string {
	return []string{n.Description}
}

// NoteShape is the comparable form of a note dialog.
type NoteShape struct {
	Description string
}

// NoteForm is the create and edit dialog of notes.
func NoteForm() form.Definition[Note, NoteShape] {
	return form.Definition[Note, NoteShape]{
		Name: EntityNote,
		Schema: validation.NewSchema(
			validation.Field{Name: "description", Label: "Escribe tu nota", Rules: []validation.Rule{
				validation.Required(),
				validation.MaxLength(NoteMaxLength),
			}},
		),
		Filters: map[string]form.InputFilter{
			"description": form.MaxRunes(NoteMaxLength),
		},
		WireNames: map[string]string{"descriptionNote": "description"},
		Values: func(n Note) form.Values {
			return form.Values{"description": n.Description}
		},
		Shape: func(v form.Values) NoteShape {
			return NoteShape{Description: CleanText(v.Get("description"))}
		},
		Build: func(base Note, v form.Values) (Note, error) {
			base.Description = CleanText(v.Get("description"))
			return base, nil
		},
		Messages: form.Messages{
			Created: "Nota guardada.",
			Updated: "Nota actualizada.",
		},
	}
}
