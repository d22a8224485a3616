package store

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/sitekit/sitekit/internal/core/db"
	"github.com/sitekit/sitekit/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	conn, err := db.Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "sitekit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	_, err = db.MigrateUp(ctx, conn)
	require.NoError(t, err)

	q, err := db.LoadQueries(conn)
	require.NoError(t, err)

	s, err := New(q, zap.NewNop())
	require.NoError(t, err)
	return s
}

func sampleItems() []types.Item {
	return []types.Item{
		{CustomCategory: types.StringPtr("電気設備"), WorkType: types.StringPtr("配線工事"), Name: "ケーブル配線", Specification: types.StringPtr("VVF 2.0mm"), Unit: "m", Quantity: 120},
		{CustomCategory: nil, Name: "照明器具取付", Unit: "台", Quantity: 8},
		{CustomCategory: types.StringPtr("空調設備"), Name: "エアコン設置", Unit: "台", Quantity: 2.5},
	}
}

func TestStatementLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	st, err := s.CreateStatement(ctx, types.Statement{ProjectName: "現場A", Title: "第1回内訳書"})
	require.NoError(t, err)
	require.NotEmpty(t, st.ID)
	assert.Equal(t, st.CreatedAt, st.UpdatedAt)

	got, err := s.GetStatement(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, st, got)

	list, err := s.ListStatements(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, st.ID, list[0].ID)

	items, err := s.ListItems(ctx, st.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	require.NoError(t, s.DeleteStatement(ctx, st.ID))
	_, err = s.GetStatement(ctx, st.ID)
	assert.ErrorIs(t, err, types.ErrStatementNotFound)
	assert.ErrorIs(t, s.DeleteStatement(ctx, st.ID), types.ErrStatementNotFound)
}

func TestReplaceItems(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	st, err := s.CreateStatement(ctx, types.Statement{ProjectName: "現場A", Title: "内訳書"})
	require.NoError(t, err)

	updatedAt, err := s.ReplaceItems(ctx, st.ID, sampleItems(), st.UpdatedAt)
	require.NoError(t, err)
	assert.True(t, updatedAt.After(st.UpdatedAt))

	items, err := s.ListItems(ctx, st.ID)
	require.NoError(t, err)
	require.Len(t, items, 3)
	for i, it := range items {
		assert.Equal(t, i, it.Position)
		assert.Equal(t, st.ID, it.StatementID)
		assert.NotEmpty(t, it.ID)
	}
	assert.Equal(t, "ケーブル配線", items[0].Name)
	assert.Nil(t, items[1].CustomCategory)
	assert.Nil(t, items[1].Specification)
	assert.Equal(t, "空調設備", *items[2].CustomCategory)
	assert.Equal(t, 2.5, items[2].Quantity)

	stored, err := s.GetStatement(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, updatedAt, stored.UpdatedAt)
}

func TestReplaceItemsStale(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	st, err := s.CreateStatement(ctx, types.Statement{ProjectName: "現場A", Title: "内訳書"})
	require.NoError(t, err)

	_, err = s.ReplaceItems(ctx, st.ID, sampleItems(), st.UpdatedAt)
	require.NoError(t, err)

	// Second writer still holds the original token
	_, err = s.ReplaceItems(ctx, st.ID, sampleItems()[:1], st.UpdatedAt)
	require.ErrorIs(t, err, types.ErrStaleUpdate)

	items, err := s.ListItems(ctx, st.ID)
	require.NoError(t, err)
	assert.Len(t, items, 3, "rejected write must not change items")
}

func TestReplaceItemsFrozenClock(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	frozen := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return frozen }

	st, err := s.CreateStatement(ctx, types.Statement{ProjectName: "現場A", Title: "内訳書"})
	require.NoError(t, err)
	require.Equal(t, frozen, st.UpdatedAt)

	first, err := s.ReplaceItems(ctx, st.ID, sampleItems(), st.UpdatedAt)
	require.NoError(t, err)
	second, err := s.ReplaceItems(ctx, st.ID, nil, first)
	require.NoError(t, err)

	assert.True(t, first.After(frozen))
	assert.True(t, second.After(first))
}

func TestReplaceItemsErrors(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.ReplaceItems(ctx, types.NewStatementID(), nil, time.Now())
	assert.ErrorIs(t, err, types.ErrStatementNotFound)

	st, err := s.CreateStatement(ctx, types.Statement{ProjectName: "現場A", Title: "内訳書"})
	require.NoError(t, err)

	bad := sampleItems()
	bad[1].Quantity = -1
	_, err = s.ReplaceItems(ctx, st.ID, bad, st.UpdatedAt)
	assert.ErrorIs(t, err, types.ErrInvalidQuantity)

	_, err = s.ListItems(ctx, types.NewStatementID())
	assert.ErrorIs(t, err, types.ErrStatementNotFound)
}

func TestValidateItems(t *testing.T) {
	tests := []struct {
		name    string
		items   []types.Item
		wantErr error
	}{
		{"empty", nil, nil},
		{"valid", sampleItems(), nil},
		{"negative", []types.Item{{Name: "x", Quantity: -0.5}}, types.ErrInvalidQuantity},
		{"nan", []types.Item{{Name: "x", Quantity: math.NaN()}}, types.ErrInvalidQuantity},
		{"inf", []types.Item{{Name: "x", Quantity: math.Inf(1)}}, types.ErrInvalidQuantity},
		{"too many", make([]types.Item, types.MaxItemsPerStatement+1), types.ErrTooManyItems},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateItems(tt.items)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
		})
	}
}

func TestContentETag(t *testing.T) {
	a := sampleItems()
	b := sampleItems()
	for i := range b {
		b[i].ID = types.NewItemID()
	}
	assert.Equal(t, ContentETag(a), ContentETag(b), "IDs do not affect the tag")

	// Null and empty string differ
	c := sampleItems()
	c[1].CustomCategory = types.StringPtr("")
	assert.NotEqual(t, ContentETag(a), ContentETag(c))

	// Order matters
	d := []types.Item{a[1], a[0], a[2]}
	assert.NotEqual(t, ContentETag(a), ContentETag(d))
}
