package openapi

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// ErrUnknownOperation is returned when a route lookup misses.
var ErrUnknownOperation = errors.New("openapi: unknown operation")

// Route is one operation of the contract.
type Route struct {
	OperationID string
	Method      string
	Path        string
	// Public operations do not require a bearer token.
	Public bool
}

// Expand substitutes {name} path parameters. Every placeholder must be
// supplied.
func (r Route) Expand(params map[string]string) (string, error) {
	var b strings.Builder
	rest := r.Path
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return "", fmt.Errorf("openapi: %s: unterminated parameter in %q", r.OperationID, r.Path)
		}
		end += open
		name := rest[open+1 : end]
		value, ok := params[name]
		if !ok || value == "" {
			return "", fmt.Errorf("openapi: %s: missing path parameter %q", r.OperationID, name)
		}
		b.WriteString(rest[:open])
		b.WriteString(url.PathEscape(value))
		rest = rest[end+1:]
	}
	return b.String(), nil
}

// Routes indexes routes by operation ID.
type Routes map[string]Route

// Lookup returns the route of an operation.
func (r Routes) Lookup(operationID string) (Route, error) {
	route, ok := r[operationID]
	if !ok {
		return Route{}, fmt.Errorf("%w: %s", ErrUnknownOperation, operationID)
	}
	return route, nil
}

// IDs returns the operation IDs sorted.
func (r Routes) IDs() []string {
	out := make([]string, 0, len(r))
	for id := range r {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Parse loads an OpenAPI document with kin-openapi and collects every
// operation that declares an operationId.
func Parse(ctx context.Context, raw []byte) (Routes, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if doc.Paths == nil || doc.Paths.Len() == 0 {
		return nil, errors.New("openapi: document does not contain any paths")
	}

	globalPublic := doc.Security != nil && len(doc.Security) == 0
	routes := make(Routes)
	for path, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil || strings.TrimSpace(op.OperationID) == "" {
				continue
			}
			id := strings.TrimSpace(op.OperationID)
			if existing, dup := routes[id]; dup {
				return nil, fmt.Errorf("openapi: duplicate operationId %q (%s %s and %s %s)", id, existing.Method, existing.Path, method, path)
			}
			public := globalPublic
			if op.Security != nil {
				public = len(*op.Security) == 0
			}
			routes[id] = Route{
				OperationID: id,
				Method:      strings.ToUpper(method),
				Path:        path,
				Public:      public,
			}
		}
	}
	if len(routes) == 0 {
		return nil, errors.New("openapi: no operations extracted")
	}
	return routes, nil
}
