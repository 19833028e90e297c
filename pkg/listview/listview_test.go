package listview

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type person struct {
	Name string
	DNI  string
}

func personFields(p person) []string {
	return []string{p.Name, p.DNI}
}

func sevenPeople() []person {
	return []person{
		{"Maria Lopez", "11111111"},
		{"Mario Peña", "22222222"},
		{"Ana Torres", "33333333"},
		{"Marina Díaz", "44444444"},
		{"Luis Quispe", "55555555"},
		{"Rosa Mariátegui", "66666666"},
		{"Pedro Salas", "77777777"},
	}
}

func TestFilterResetsPageAndRecomputesPages(t *testing.T) {
	view := New(personFields, nil, WithPageSize(3))
	view.SetItems(sevenPeople())

	if got := view.TotalPages(); got != 3 {
		t.Fatalf("TotalPages = %d, want 3", got)
	}
	view.SetPage(3)

	view.SetFilter("MAR")
	if got := view.Page(); got != 1 {
		t.Fatalf("page after filter = %d, want 1", got)
	}
	if got := len(view.Filtered()); got != 4 {
		t.Fatalf("filtered = %d, want 4", got)
	}
	if got := view.TotalPages(); got != 2 {
		t.Fatalf("TotalPages = %d, want 2", got)
	}

	names := func(ps []person) []string {
		out := make([]string, 0, len(ps))
		for _, p := range ps {
			out = append(out, p.Name)
		}
		return out
	}
	if diff := cmp.Diff([]string{"Maria Lopez", "Mario Peña", "Marina Díaz"}, names(view.Visible())); diff != "" {
		t.Fatalf("page 1 mismatch (-want +got):\n%s", diff)
	}
	view.NextPage()
	if diff := cmp.Diff([]string{"Rosa Mariátegui"}, names(view.Visible())); diff != "" {
		t.Fatalf("page 2 mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterFoldsUnicode(t *testing.T) {
	view := New(personFields, nil)
	view.SetItems(sevenPeople())

	view.SetFilter("PEÑA")
	if got := view.Filtered(); len(got) != 1 || got[0].Name != "Mario Peña" {
		t.Fatalf("unexpected match %v", got)
	}
	view.SetFilter("5555")
	if got := view.Filtered(); len(got) != 1 || got[0].Name != "Luis Quispe" {
		t.Fatalf("filter on second display field failed: %v", got)
	}
	view.SetFilter("zzz")
	if view.TotalPages() != 0 || view.Page() != 1 || len(view.Visible()) != 0 {
		t.Fatalf("empty filter result should have no pages and stay on page 1")
	}
}

func TestSetPageClamps(t *testing.T) {
	view := New(personFields, nil, WithPageSize(3))
	view.SetItems(sevenPeople())

	if got := view.SetPage(10); got != 3 {
		t.Fatalf("SetPage(10) = %d, want 3", got)
	}
	if got := view.SetPage(-1); got != 1 {
		t.Fatalf("SetPage(-1) = %d, want 1", got)
	}
	if got := view.PrevPage(); got != 1 {
		t.Fatalf("PrevPage on first page = %d", got)
	}

	view.SetPage(3)
	view.SetItems(sevenPeople()[:2])
	if got := view.Page(); got != 1 {
		t.Fatalf("page after shrinking list = %d, want 1", got)
	}
}

func TestSetPageSizeResetsPage(t *testing.T) {
	view := New(personFields, nil, WithPageSize(3))
	view.SetItems(sevenPeople())
	view.SetPage(2)
	view.SetPageSize(5)
	if view.Page() != 1 || view.TotalPages() != 2 {
		t.Fatalf("page=%d total=%d", view.Page(), view.TotalPages())
	}
}

func TestNewestFirst(t *testing.T) {
	view := New(personFields, nil, NewestFirst())
	view.SetItems(sevenPeople()[:3])
	if got := view.All()[0].Name; got != "Ana Torres" {
		t.Fatalf("first item = %q, want Ana Torres", got)
	}
}

func TestReloadKeepsItemsOnError(t *testing.T) {
	fail := false
	view := New(personFields, func(context.Context) ([]person, error) {
		if fail {
			return nil, errors.New("boom")
		}
		return sevenPeople(), nil
	})
	if err := view.Reload(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	fail = true
	if err := view.Reload(context.Background()); err == nil {
		t.Fatalf("expected reload error")
	}
	if view.Len() != 7 {
		t.Fatalf("items lost after failed reload: %d", view.Len())
	}
}

func TestOverlappingReloadsLastResponseWins(t *testing.T) {
	releaseFirst := make(chan struct{})
	var mu sync.Mutex
	call := 0
	view := New(personFields, func(context.Context) ([]person, error) {
		mu.Lock()
		call++
		n := call
		mu.Unlock()
		if n == 1 {
			<-releaseFirst
			return []person{{Name: "Lento"}}, nil
		}
		return []person{{Name: "Rápido"}}, nil
	})

	done := make(chan error, 1)
	go func() { done <- view.Reload(context.Background()) }()

	// Wait until the first loader call is in flight.
	for {
		mu.Lock()
		started := call == 1
		mu.Unlock()
		if started {
			break
		}
	}
	if err := view.Reload(context.Background()); err != nil {
		t.Fatalf("second reload: %v", err)
	}
	if got := view.All()[0].Name; got != "Rápido" {
		t.Fatalf("after second reload got %q", got)
	}

	close(releaseFirst)
	if err := <-done; err != nil {
		t.Fatalf("first reload: %v", err)
	}
	if got := view.All()[0].Name; got != "Lento" {
		t.Fatalf("last response should win, got %q", got)
	}
}

func TestReloadWithoutLoader(t *testing.T) {
	view := New[person](personFields, nil)
	if err := view.Reload(context.Background()); err == nil {
		t.Fatalf("expected error without loader")
	}
}
