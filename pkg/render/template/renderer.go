package template

import (
	"io"
)

// FilterFunc transforms a value inside a template expression.
type FilterFunc func(input any, param any) (any, error)

// Renderer renders named templates or inline template strings. Output is
// returned and, when writers are given, copied to each of them.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn FilterFunc) error
	GlobalContext(data any) error
}
