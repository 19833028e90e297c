package comedor

import (
	"github.com/goliatone/go-micomedor/pkg/form"
	"github.com/goliatone/go-micomedor/pkg/validation"
)

// Task is a scheduled coordination task.
type Task struct {
	ID       int64       `json:"idTaskCoordination,omitempty"`
	FullName string      `json:"fullname"`
	Date     string      `json:"dateTask"`
	Time     string      `json:"timeTask"`
	Users    *Owner      `json:"users,omitempty"`
	Type     *TypeOfTask `json:"typeOfTask,omitempty"`
}

// Key returns the record identifier.
func (t Task) Key() int64 { return t.ID }

// WithOwner returns a copy scoped to user id.
func (t Task) WithOwner(id int64) Task {
	t.Users = &Owner{ID: id}
	return t
}

// TypeID returns the referenced task type, or 0.
func (t Task) TypeID() int64 {
	if t.Type == nil {
		return 0
	}
	return t.Type.ID
}

// TypeName returns the task type label shown in lists.
func (t Task) TypeName() string {
	if t.Type == nil {
		return ""
	}
	return t.Type.Name
}

// TaskFields are the display fields the list filter matches.
func TaskFields(t Task) []string {
	return []string{t.FullName, t.TypeName(), form.DateOf(t.Date)}
}

// TaskShape is the comparable form of a task dialog.
type TaskShape struct {
	FullName string
	Type     form.Ref
	Date     string
	Time     string
}

// TaskSchema validates the task dialog.
func TaskSchema() validation.Schema {
	return validation.NewSchema(
		validation.Field{Name: "fullname", Label: "Nombre de la tarea", Rules: []validation.Rule{
			validation.Required(),
			validation.Letters(),
			validation.MinLength(2),
			validation.MaxLength(60),
		}},
		validation.Field{Name: "type", Label: "Tipo de tarea", Rules: []validation.Rule{
			validation.Required(),
		}},
		validation.Field{Name: "date", Label: "Fecha", Rules: []validation.Rule{
			validation.Required(),
			validation.Date(),
		}},
		validation.Field{Name: "time", Label: "Hora", Rules: []validation.Rule{
			validation.Required(),
			validation.Time(),
		}},
	)
}

// TaskForm is the create and edit dialog of tasks.
func TaskForm() form.Definition[Task, TaskShape] {
	return form.Definition[Task, TaskShape]{
		Name:   EntityTask,
		Schema: TaskSchema(),
		Filters: map[string]form.InputFilter{
			"fullname": form.Chain(form.LettersOnly, form.MaxRunes(60)),
		},
		WireNames: map[string]string{
			"dateTask":     "date",
			"timeTask":     "time",
			"idTypeOfTask": "type",
		},
		Values: func(t Task) form.Values {
			return form.Values{
				"fullname": t.FullName,
				"type":     form.FormatID(t.TypeID()),
				"date":     t.Date,
				"time":     t.Time,
			}
		},
		Shape: func(v form.Values) TaskShape {
			return TaskShape{
				FullName: form.Text(v.Get("fullname")),
				Type:     form.RefOf(v.Get("type")),
				Date:     form.DateOf(v.Get("date")),
				Time:     form.TimeOf(v.Get("time")),
			}
		},
		Build: func(base Task, v form.Values) (Task, error) {
			base.FullName = form.Text(v.Get("fullname"))
			base.Date = form.DateOf(v.Get("date"))
			base.Time = form.TimeOf(v.Get("time"))
			if id := form.RefOf(v.Get("type")).ID; id != base.TypeID() {
				base.Type = &TypeOfTask{ID: id}
			}
			return base, nil
		},
		Messages: form.Messages{
			Created:      "Tarea guardada exitosamente",
			Updated:      "Tarea actualizada exitosamente.",
			CreateFailed: "Error al guardar la tarea",
			UpdateFailed: "Error al actualizar la tarea.",
		},
	}
}
