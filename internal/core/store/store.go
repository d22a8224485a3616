// Package store persists itemized statements in the local snapshot cache.
//
// Timestamps are stored as RFC3339Nano UTC text on every driver so the
// updated_at optimistic-concurrency check is an exact string comparison.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/sitekit/sitekit/internal/core/db"
	"github.com/sitekit/sitekit/internal/types"
	"go.uber.org/zap"
)

// Store reads and writes statements through named queries.
type Store struct {
	q      *db.Queries
	logger *zap.Logger
	now    func() time.Time
}

// New creates a Store. A nil logger is replaced with a no-op logger.
func New(q *db.Queries, logger *zap.Logger) (*Store, error) {
	if q == nil {
		return nil, fmt.Errorf("queries cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{q: q, logger: logger, now: time.Now}, nil
}

type statementRow struct {
	ID          string `db:"statement_id"`
	ProjectName string `db:"project_name"`
	Title       string `db:"title"`
	CreatedAt   string `db:"created_at"`
	UpdatedAt   string `db:"updated_at"`
}

func (r statementRow) toStatement() (types.Statement, error) {
	createdAt, err := parseTime(r.CreatedAt)
	if err != nil {
		return types.Statement{}, fmt.Errorf("statement %s created_at: %w", r.ID, err)
	}
	updatedAt, err := parseTime(r.UpdatedAt)
	if err != nil {
		return types.Statement{}, fmt.Errorf("statement %s updated_at: %w", r.ID, err)
	}
	return types.Statement{
		ID:          types.StatementID(r.ID),
		ProjectName: r.ProjectName,
		Title:       r.Title,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

type itemRow struct {
	ID             string  `db:"item_id"`
	StatementID    string  `db:"statement_id"`
	Position       int     `db:"position"`
	CustomCategory *string `db:"custom_category"`
	WorkType       *string `db:"work_type"`
	Name           string  `db:"name"`
	Specification  *string `db:"specification"`
	Unit           string  `db:"unit"`
	Quantity       float64 `db:"quantity"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// CreateStatement stores a new statement header.
// Missing ID and timestamps are filled in; the stored statement is returned.
func (s *Store) CreateStatement(ctx context.Context, st types.Statement) (types.Statement, error) {
	if st.ID == "" {
		st.ID = types.NewStatementID()
	}
	now := s.now().UTC()
	if st.CreatedAt.IsZero() {
		st.CreatedAt = now
	}
	if st.UpdatedAt.IsZero() {
		st.UpdatedAt = st.CreatedAt
	}
	// Round-trip through the stored text form
	st.CreatedAt, _ = parseTime(formatTime(st.CreatedAt))
	st.UpdatedAt, _ = parseTime(formatTime(st.UpdatedAt))

	_, err := s.q.Exec(ctx, "insert-statement",
		string(st.ID), st.ProjectName, st.Title, formatTime(st.CreatedAt), formatTime(st.UpdatedAt))
	if err != nil {
		return types.Statement{}, fmt.Errorf("failed to insert statement: %w", err)
	}

	s.logger.Info("statement created",
		zap.String("statement_id", string(st.ID)),
		zap.String("project", st.ProjectName))
	return st, nil
}

// GetStatement returns the statement header for id.
func (s *Store) GetStatement(ctx context.Context, id types.StatementID) (types.Statement, error) {
	return getStatement(ctx, s.q, id)
}

func getStatement(ctx context.Context, q *db.Queries, id types.StatementID) (types.Statement, error) {
	var row statementRow
	if err := q.Get(ctx, "get-statement", &row, string(id)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Statement{}, fmt.Errorf("%w: %s", types.ErrStatementNotFound, id)
		}
		return types.Statement{}, fmt.Errorf("failed to query statement: %w", err)
	}
	return row.toStatement()
}

// ListStatements returns all cached statements, newest first.
func (s *Store) ListStatements(ctx context.Context) ([]types.Statement, error) {
	var rows []statementRow
	if err := s.q.Select(ctx, "list-statements", &rows); err != nil {
		return nil, fmt.Errorf("failed to query statements: %w", err)
	}

	out := make([]types.Statement, 0, len(rows))
	for _, r := range rows {
		st, err := r.toStatement()
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

// ListItems returns a statement's items in position order.
// This order is the insertion order the table engine treats as unsorted.
func (s *Store) ListItems(ctx context.Context, id types.StatementID) ([]types.Item, error) {
	if _, err := s.GetStatement(ctx, id); err != nil {
		return nil, err
	}

	var rows []itemRow
	if err := s.q.Select(ctx, "list-items", &rows, string(id)); err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}

	items := make([]types.Item, len(rows))
	for i, r := range rows {
		items[i] = types.Item{
			ID:             types.ItemID(r.ID),
			StatementID:    types.StatementID(r.StatementID),
			Position:       r.Position,
			CustomCategory: r.CustomCategory,
			WorkType:       r.WorkType,
			Name:           r.Name,
			Specification:  r.Specification,
			Unit:           r.Unit,
			Quantity:       r.Quantity,
		}
	}
	return items, nil
}

// ReplaceItems swaps a statement's items for a new list.
// The write only applies when the stored updated_at equals expectedUpdatedAt;
// otherwise ErrStaleUpdate is returned and nothing changes.
// Returns the statement's new updated_at.
func (s *Store) ReplaceItems(ctx context.Context, id types.StatementID, items []types.Item, expectedUpdatedAt time.Time) (time.Time, error) {
	if err := ValidateItems(items); err != nil {
		return time.Time{}, err
	}

	var updatedAt time.Time
	err := s.q.InTx(ctx, func(tq *db.Queries) error {
		current, err := getStatement(ctx, tq, id)
		if err != nil {
			return err
		}

		// Strictly after the previous token even if the clock stalls
		updatedAt = s.now().UTC()
		if !updatedAt.After(current.UpdatedAt) {
			updatedAt = current.UpdatedAt.Add(time.Nanosecond)
		}

		res, err := tq.Exec(ctx, "touch-statement",
			formatTime(updatedAt), string(id), formatTime(expectedUpdatedAt))
		if err != nil {
			return fmt.Errorf("failed to update statement: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("%w: expected %s, stored %s",
				types.ErrStaleUpdate, formatTime(expectedUpdatedAt), formatTime(current.UpdatedAt))
		}

		if _, err := tq.Exec(ctx, "delete-items", string(id)); err != nil {
			return fmt.Errorf("failed to delete items: %w", err)
		}
		for i, it := range items {
			itemID := it.ID
			if itemID == "" {
				itemID = types.NewItemID()
			}
			_, err := tq.Exec(ctx, "insert-item",
				string(itemID), string(id), i,
				it.CustomCategory, it.WorkType, it.Name, it.Specification, it.Unit, it.Quantity)
			if err != nil {
				return fmt.Errorf("failed to insert item %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("replace items rejected",
			zap.String("statement_id", string(id)),
			zap.Error(err))
		return time.Time{}, err
	}

	updatedAt, _ = parseTime(formatTime(updatedAt))
	s.logger.Info("statement items replaced",
		zap.String("statement_id", string(id)),
		zap.Int("items", len(items)),
		zap.Time("updated_at", updatedAt))
	return updatedAt, nil
}

// DeleteStatement removes a statement and its items.
func (s *Store) DeleteStatement(ctx context.Context, id types.StatementID) error {
	res, err := s.q.Exec(ctx, "delete-statement", string(id))
	if err != nil {
		return fmt.Errorf("failed to delete statement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", types.ErrStatementNotFound, id)
	}
	s.logger.Info("statement deleted", zap.String("statement_id", string(id)))
	return nil
}

// ValidateItems checks item count and quantities before a write.
func ValidateItems(items []types.Item) error {
	if len(items) > types.MaxItemsPerStatement {
		return fmt.Errorf("%w: %d exceeds %d", types.ErrTooManyItems, len(items), types.MaxItemsPerStatement)
	}
	for i, it := range items {
		if it.Quantity < 0 || math.IsNaN(it.Quantity) || math.IsInf(it.Quantity, 0) {
			return fmt.Errorf("%w: item %d has quantity %v", types.ErrInvalidQuantity, i, it.Quantity)
		}
	}
	return nil
}

// ContentETag hashes item content in list order, ignoring IDs.
// Equal tags mean a re-import would not change the statement.
func ContentETag(items []types.Item) string {
	h := sha256.New()
	field := func(s *string) {
		if s == nil {
			h.Write([]byte{0})
			return
		}
		h.Write([]byte{1})
		h.Write([]byte(*s))
		h.Write([]byte{0})
	}
	for _, it := range items {
		field(it.CustomCategory)
		field(it.WorkType)
		field(&it.Name)
		field(it.Specification)
		field(&it.Unit)
		h.Write([]byte(strconv.FormatFloat(it.Quantity, 'g', -1, 64)))
		h.Write([]byte{'\n'})
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
