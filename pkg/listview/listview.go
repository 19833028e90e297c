// Package listview presents a fully loaded list through a local text filter
// and fixed-size pages. It never filters or paginates on the server.
package listview

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/cases"
)

// DefaultPageSize is used when no page size is configured.
const DefaultPageSize = 5

// Loader fetches the complete list for the current user.
type Loader[T any] func(ctx context.Context) ([]T, error)

// FieldsFunc returns the display fields of an item that the filter matches.
type FieldsFunc[T any] func(T) []string

// Option configures a View.
type Option func(*settings)

type settings struct {
	pageSize int
	reverse  bool
}

// WithPageSize sets the page size. Values below 1 are ignored.
func WithPageSize(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// NewestFirst reverses the loaded order, for lists the backend returns
// oldest first.
func NewestFirst() Option {
	return func(s *settings) {
		s.reverse = true
	}
}

// View is a filtered, paginated projection over an in-memory list.
type View[T any] struct {
	fields FieldsFunc[T]
	loader Loader[T]
	cfg    settings

	mu       sync.RWMutex
	items    []T
	folded   [][]string
	filter   string
	needle   string
	page     int
	pageSize int
}

// New creates a view. loader may be nil when items are supplied with
// SetItems.
func New[T any](fields FieldsFunc[T], loader Loader[T], opts ...Option) *View[T] {
	cfg := settings{pageSize: DefaultPageSize}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &View[T]{
		fields:   fields,
		loader:   loader,
		cfg:      cfg,
		page:     1,
		pageSize: cfg.pageSize,
	}
}

// Reload fetches the list through the loader and replaces the items.
// Overlapping reloads are not sequenced: whichever response arrives last
// replaces the list. On error the previous items are kept.
func (v *View[T]) Reload(ctx context.Context) error {
	if v.loader == nil {
		return fmt.Errorf("listview: no loader configured")
	}
	items, err := v.loader(ctx)
	if err != nil {
		return err
	}
	v.SetItems(items)
	return nil
}

// SetItems replaces the full list. The filter is kept and the page is
// clamped to the new page count.
func (v *View[T]) SetItems(items []T) {
	copied := make([]T, len(items))
	copy(copied, items)
	if v.cfg.reverse {
		for i, j := 0, len(copied)-1; i < j; i, j = i+1, j-1 {
			copied[i], copied[j] = copied[j], copied[i]
		}
	}
	folded := make([][]string, len(copied))
	for i, item := range copied {
		folded[i] = foldAll(v.display(item))
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.items = copied
	v.folded = folded
	v.page = clamp(v.page, v.totalPagesLocked())
}

// SetFilter changes the filter text and resets to page 1.
func (v *View[T]) SetFilter(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter = text
	v.needle = fold(strings.TrimSpace(text))
	v.page = 1
}

// Filter returns the current filter text.
func (v *View[T]) Filter() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.filter
}

// SetPageSize changes the page size and resets to page 1.
func (v *View[T]) SetPageSize(n int) {
	if n < 1 {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pageSize = n
	v.page = 1
}

// PageSize returns the current page size.
func (v *View[T]) PageSize() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.pageSize
}

// SetPage moves to page n, clamped to [1, TotalPages]. It returns the page
// actually selected.
func (v *View[T]) SetPage(n int) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.page = clamp(n, v.totalPagesLocked())
	return v.page
}

// NextPage advances one page when possible.
func (v *View[T]) NextPage() int {
	return v.SetPage(v.Page() + 1)
}

// PrevPage goes back one page when possible.
func (v *View[T]) PrevPage() int {
	return v.SetPage(v.Page() - 1)
}

// Page returns the current 1-based page.
func (v *View[T]) Page() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.page
}

// TotalPages is ceil(filtered / pageSize). An empty result has zero pages.
func (v *View[T]) TotalPages() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.totalPagesLocked()
}

// Len returns the number of loaded items.
func (v *View[T]) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.items)
}

// All returns every loaded item, ignoring the filter.
func (v *View[T]) All() []T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]T, len(v.items))
	copy(out, v.items)
	return out
}

// Filtered returns every item matching the filter.
func (v *View[T]) Filtered() []T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.filteredLocked()
}

// Visible returns the items on the current page.
func (v *View[T]) Visible() []T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	filtered := v.filteredLocked()
	start := (v.page - 1) * v.pageSize
	if start >= len(filtered) {
		return nil
	}
	end := start + v.pageSize
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end]
}

func (v *View[T]) filteredLocked() []T {
	if v.needle == "" {
		out := make([]T, len(v.items))
		copy(out, v.items)
		return out
	}
	out := make([]T, 0, len(v.items))
	for i, item := range v.items {
		if matches(v.folded[i], v.needle) {
			out = append(out, item)
		}
	}
	return out
}

func (v *View[T]) totalPagesLocked() int {
	n := len(v.filteredLocked())
	if n == 0 {
		return 0
	}
	return (n + v.pageSize - 1) / v.pageSize
}

func (v *View[T]) display(item T) []string {
	if v.fields == nil {
		return nil
	}
	return v.fields(item)
}

func matches(fields []string, needle string) bool {
	for _, field := range fields {
		if strings.Contains(field, needle) {
			return true
		}
	}
	return false
}

func foldAll(values []string) []string {
	out := make([]string, len(values))
	for i, value := range values {
		out[i] = fold(value)
	}
	return out
}

// fold builds a fresh Caser per call; Casers carry state and are not safe
// for concurrent use.
func fold(s string) string {
	return cases.Fold().String(s)
}

func clamp(page, total int) int {
	if total < 1 || page < 1 {
		return 1
	}
	if page > total {
		return total
	}
	return page
}
