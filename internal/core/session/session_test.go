package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sitekit/sitekit/internal/table"
	"github.com/sitekit/sitekit/internal/types"
	"go.uber.org/zap"
)

type fakeLoader struct {
	statements map[types.StatementID]types.Statement
	items      map[types.StatementID][]types.Item
}

func (f *fakeLoader) GetStatement(_ context.Context, id types.StatementID) (types.Statement, error) {
	st, ok := f.statements[id]
	if !ok {
		return types.Statement{}, fmt.Errorf("%w: %s", types.ErrStatementNotFound, id)
	}
	return st, nil
}

func (f *fakeLoader) ListItems(_ context.Context, id types.StatementID) ([]types.Item, error) {
	return f.items[id], nil
}

func newLoader(n int) (*fakeLoader, types.StatementID) {
	id := types.NewStatementID()
	items := make([]types.Item, n)
	for i := range items {
		cat := "電気設備"
		if i%2 == 1 {
			cat = "空調設備"
		}
		items[i] = types.Item{
			ID:             types.ItemID(fmt.Sprintf("item-%03d", i)),
			CustomCategory: types.StringPtr(cat),
			Name:           fmt.Sprintf("明細%03d", i),
			Unit:           "式",
			Quantity:       float64(i),
		}
	}
	return &fakeLoader{
		statements: map[types.StatementID]types.Statement{
			id: {ID: id, ProjectName: "現場A", Title: "内訳書", UpdatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		},
		items: map[types.StatementID][]types.Item{id: items},
	}, id
}

func TestManagerLifecycle(t *testing.T) {
	loader, id := newLoader(120)
	m, err := NewManager(loader, zap.NewNop())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	s, err := m.Open(context.Background(), id)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	v := s.View()
	if v.TotalFilteredCount != 120 || v.CurrentPage != 1 || v.TotalPages != 3 || len(v.Rows) != 50 {
		t.Errorf("initial view = count %d page %d/%d rows %d", v.TotalFilteredCount, v.CurrentPage, v.TotalPages, len(v.Rows))
	}

	got, err := m.Get(s.ID())
	if err != nil || got != s {
		t.Fatalf("Get(%s) = %v, %v", s.ID(), got, err)
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}

	if err := m.Close(s.ID()); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := m.Get(s.ID()); !errors.Is(err, types.ErrSessionNotFound) {
		t.Errorf("Get after Close error = %v, want ErrSessionNotFound", err)
	}
	if err := m.Close(s.ID()); !errors.Is(err, types.ErrSessionNotFound) {
		t.Errorf("second Close error = %v, want ErrSessionNotFound", err)
	}
}

func TestManagerOpenUnknownStatement(t *testing.T) {
	loader, _ := newLoader(1)
	m, _ := NewManager(loader, nil)

	_, err := m.Open(context.Background(), types.NewStatementID())
	if !errors.Is(err, types.ErrStatementNotFound) {
		t.Errorf("Open error = %v, want ErrStatementNotFound", err)
	}
	if m.Len() != 0 {
		t.Errorf("failed Open left %d sessions", m.Len())
	}
}

func TestNewManagerNilLoader(t *testing.T) {
	if _, err := NewManager(nil, nil); err == nil {
		t.Error("expected error for nil loader")
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	loader, id := newLoader(10)
	m, _ := NewManager(loader, nil, table.WithPageSize(4))

	a, _ := m.Open(context.Background(), id)
	b, _ := m.Open(context.Background(), id)
	if a.ID() == b.ID() {
		t.Fatal("sessions share an ID")
	}

	a.SetFilterValue(types.FieldCustomCategory, "空調")
	a.SetSort(types.FieldQuantity)
	a.SetSort(types.FieldQuantity)

	if got := a.View().TotalFilteredCount; got != 5 {
		t.Errorf("a filtered = %d, want 5", got)
	}
	if got := a.View().Rows[0].ID; got != "item-009" {
		t.Errorf("a first row = %s, want item-009", got)
	}
	if got := b.View().TotalFilteredCount; got != 10 {
		t.Errorf("b filtered = %d, want 10", got)
	}
	if len(b.Filters()) != 0 {
		t.Errorf("b filters = %v, want none", b.Filters())
	}
	if got := len(a.Rows()); got != 5 {
		t.Errorf("a Rows() = %d, want 5", got)
	}
}

func TestSessionUpdatedAtToken(t *testing.T) {
	loader, id := newLoader(1)
	m, _ := NewManager(loader, nil)
	s, _ := m.Open(context.Background(), id)

	want := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if !s.UpdatedAt().Equal(want) {
		t.Errorf("UpdatedAt() = %v, want %v", s.UpdatedAt(), want)
	}

	next := want.Add(time.Minute)
	s.MarkSaved(next)
	if !s.UpdatedAt().Equal(next) || !s.Statement().UpdatedAt.Equal(next) {
		t.Errorf("MarkSaved did not advance the token")
	}
}

func TestSessionConcurrentMutators(t *testing.T) {
	loader, id := newLoader(200)
	m, _ := NewManager(loader, nil)
	s, _ := m.Open(context.Background(), id)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				switch (g + i) % 4 {
				case 0:
					s.SetFilterValue(types.FieldName, fmt.Sprintf("%d", i%10))
				case 1:
					s.SetSort(types.FieldName)
				case 2:
					s.SetPage(i % 5)
				case 3:
					s.ClearFilters()
				}
				v := s.View()
				if v.CurrentPage < 1 || v.CurrentPage > max(v.TotalPages, 1) {
					t.Errorf("page %d outside [1, %d]", v.CurrentPage, max(v.TotalPages, 1))
				}
			}
		}(g)
	}
	wg.Wait()
}
