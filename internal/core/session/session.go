// Package session keeps open detail views, one table engine per view.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sitekit/sitekit/internal/statement"
	"github.com/sitekit/sitekit/internal/table"
	"github.com/sitekit/sitekit/internal/types"
	"go.uber.org/zap"
)

// Loader fetches a statement and its items. store.Store satisfies it.
type Loader interface {
	GetStatement(ctx context.Context, id types.StatementID) (types.Statement, error)
	ListItems(ctx context.Context, id types.StatementID) ([]types.Item, error)
}

// Manager opens, looks up, and closes view sessions.
// Safe for concurrent use.
type Manager struct {
	loader   Loader
	logger   *zap.Logger
	opts     []table.Option
	sessions map[string]*Session
	mu       sync.Mutex
}

// NewManager creates a Manager. opts apply to every engine it builds.
func NewManager(loader Loader, logger *zap.Logger, opts ...table.Option) (*Manager, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		loader:   loader,
		logger:   logger,
		opts:     opts,
		sessions: make(map[string]*Session),
	}, nil
}

// Open loads a statement and starts a session over its items
// with filters empty, no sort, and page 1.
func (m *Manager) Open(ctx context.Context, id types.StatementID) (*Session, error) {
	st, err := m.loader.GetStatement(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := m.loader.ListItems(ctx, id)
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:        types.NewSessionID(),
		statement: st,
		engine:    statement.NewEngine(items, m.opts...),
	}

	m.mu.Lock()
	m.sessions[s.id] = s
	open := len(m.sessions)
	m.mu.Unlock()

	m.logger.Debug("view session opened",
		zap.String("session_id", s.id),
		zap.String("statement_id", string(id)),
		zap.Int("items", len(items)),
		zap.Int("open_sessions", open))
	return s, nil
}

// Get returns an open session.
func (m *Manager) Get(sessionID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrSessionNotFound, sessionID)
	}
	return s, nil
}

// Close discards a session. Its view state is not kept.
func (m *Manager) Close(sessionID string) error {
	m.mu.Lock()
	_, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", types.ErrSessionNotFound, sessionID)
	}
	m.logger.Debug("view session closed", zap.String("session_id", sessionID))
	return nil
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Session is one open detail view. Methods serialize access to its engine.
type Session struct {
	id        string
	statement types.Statement
	engine    *table.Engine[types.Item]
	mu        sync.Mutex
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Statement returns the statement header the session was opened with,
// with UpdatedAt advanced by MarkSaved.
func (s *Session) Statement() types.Statement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statement
}

// UpdatedAt is the expectedUpdatedAt token for the next write.
func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statement.UpdatedAt
}

// MarkSaved records the updated_at returned by a successful write.
func (s *Session) MarkSaved(updatedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statement.UpdatedAt = updatedAt
}

// SetFilterValue sets the needle for one column.
func (s *Session) SetFilterValue(field, needle string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.SetFilterValue(field, needle)
}

// ClearFilters empties every needle and returns to page 1.
func (s *Session) ClearFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.ClearFilters()
}

// SetSort advances the sort toggle for field.
func (s *Session) SetSort(field string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.SetSort(field)
}

// SetPage moves to page, clamped to the valid range.
func (s *Session) SetPage(page int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.SetPage(page)
}

// View returns the current derived view.
func (s *Session) View() table.View[types.Item] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.View()
}

// Filters returns a copy of the non-empty needles.
func (s *Session) Filters() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Filters()
}

// Rows returns every filtered row in sorted order, ignoring pagination.
func (s *Session) Rows() []types.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Rows()
}
