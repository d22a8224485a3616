// internal/table/engine.go
package table

import (
	"sort"

	"github.com/sitekit/sitekit/internal/types"
)

/*
 * Tabular data engine: filter, sort and paginate an immutable record set.
 *
 * Derivation flow (fixed order, recomputed by every state-changing mutator):
 *   1. Filter: AND of all non-empty column needles, source order preserved
 *   2. Sort: stable sort of the filtered indexes by one field, nulls last
 *   3. Paginate: slice of pageSize rows for the current page
 *
 * Stages are memoized separately. A sort change re-sorts the cached filter
 * result; a page change only re-slices. Folded text and sort keys are cached
 * per column for the engine's lifetime.
 *
 * Page invariant: 1 <= page <= max(totalPages, 1). A filter change that
 * leaves the current page past the end resets it to 1; SetPage clamps.
 *
 * The engine is single-threaded. Callers that share it across goroutines
 * must serialize access (see session.Session).
 */

// Record is a row the engine can read named fields from.
// The second return is false when the record has no such field.
type Record interface {
	Value(field string) (any, bool)
}

// Row is a generic map-backed Record.
type Row struct {
	ID     string
	Fields map[string]any
}

// Value implements Record.
func (r Row) Value(field string) (any, bool) {
	v, ok := r.Fields[field]
	return v, ok
}

// Direction is the sort direction.
type Direction int

const (
	Asc Direction = iota
	Desc
)

// String returns "asc" or "desc".
func (d Direction) String() string {
	if d == Desc {
		return "desc"
	}
	return "asc"
}

// SortState is the active ordering. Field "" preserves source order.
type SortState struct {
	Field     string
	Direction Direction
}

// View is the render-ready result of one derivation.
type View[R Record] struct {
	Rows               []R
	TotalFilteredCount int
	TotalPages         int
	CurrentPage        int
	PageSize           int
	Sort               SortState
}

// Empty reports whether there is nothing to render on the current page.
func (v View[R]) Empty() bool {
	return len(v.Rows) == 0
}

// Option configures an Engine.
type Option func(*options)

type options struct {
	pageSize        int
	kanaInsensitive bool
}

// WithPageSize sets the fixed page size. Non-positive sizes keep the default.
func WithPageSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.pageSize = n
		}
	}
}

// WithKanaInsensitive makes filters treat hiragana and katakana as equal.
func WithKanaInsensitive() Option {
	return func(o *options) {
		o.kanaInsensitive = true
	}
}

// Engine derives a paginated view from immutable records and caller state.
type Engine[R Record] struct {
	schema   Schema
	source   []R
	pageSize int
	folder   *folder

	filters map[string]string // field -> verbatim needle, empty needles absent
	sort    SortState
	page    int

	filtered []int // indexes into source, source order
	ordered  []int // filtered, in sort order

	text map[string][]textCell
	keys map[string][]sortKey

	recomputations int
}

// New creates an engine over records and performs the initial derivation.
// The records slice is copied; the records themselves must not be mutated.
func New[R Record](schema Schema, records []R, opts ...Option) *Engine[R] {
	o := options{pageSize: types.DefaultPageSize}
	for _, opt := range opts {
		opt(&o)
	}

	source := make([]R, len(records))
	copy(source, records)

	e := &Engine[R]{
		schema:   schema,
		source:   source,
		pageSize: o.pageSize,
		folder:   newFolder(o.kanaInsensitive),
		filters:  make(map[string]string),
		page:     1,
		text:     make(map[string][]textCell),
		keys:     make(map[string][]sortKey),
	}
	e.refilter()
	return e
}

// SetFilterValue sets the needle for a field; "" removes the constraint.
// Unknown and non-filterable fields are ignored.
func (e *Engine[R]) SetFilterValue(field, needle string) {
	f, ok := e.schema.Field(field)
	if !ok || !f.CanFilter() {
		return
	}
	if e.filters[field] == needle {
		return
	}
	if needle == "" {
		delete(e.filters, field)
	} else {
		e.filters[field] = needle
	}

	e.refilter()
	if e.page > max(e.TotalPages(), 1) {
		e.page = 1
	}
}

// ClearFilters removes every needle in one update and returns to page 1.
func (e *Engine[R]) ClearFilters() {
	e.filters = make(map[string]string)
	e.page = 1
	e.refilter()
}

// SetSort applies click-to-sort semantics: the sorted field flips direction,
// another field sorts ascending, "" restores source order. Unknown and
// non-sortable fields are ignored. The current page is kept.
func (e *Engine[R]) SetSort(field string) {
	switch {
	case field == "":
		if e.sort.Field == "" {
			return
		}
		e.sort = SortState{}
	case field == e.sort.Field:
		if e.sort.Direction == Asc {
			e.sort.Direction = Desc
		} else {
			e.sort.Direction = Asc
		}
	default:
		f, ok := e.schema.Field(field)
		if !ok || !f.Sortable {
			return
		}
		e.sort = SortState{Field: field, Direction: Asc}
	}

	e.resort()
	e.recomputations++
}

// SetPage moves to page, clamped to [1, max(totalPages, 1)].
func (e *Engine[R]) SetPage(page int) {
	page = min(max(page, 1), max(e.TotalPages(), 1))
	if page == e.page {
		return
	}
	e.page = page
	e.recomputations++
}

// View returns the current page. It never mutates engine state.
func (e *Engine[R]) View() View[R] {
	start := (e.page - 1) * e.pageSize
	end := min(start+e.pageSize, len(e.ordered))

	var rows []R
	if start < end {
		rows = make([]R, 0, end-start)
		for _, idx := range e.ordered[start:end] {
			rows = append(rows, e.source[idx])
		}
	}

	return View[R]{
		Rows:               rows,
		TotalFilteredCount: len(e.ordered),
		TotalPages:         e.TotalPages(),
		CurrentPage:        e.page,
		PageSize:           e.pageSize,
		Sort:               e.sort,
	}
}

// Rows returns every filtered record in sort order, ignoring pagination.
func (e *Engine[R]) Rows() []R {
	rows := make([]R, len(e.ordered))
	for i, idx := range e.ordered {
		rows[i] = e.source[idx]
	}
	return rows
}

// TotalPages is ceil(filtered / pageSize); 0 when nothing matches.
func (e *Engine[R]) TotalPages() int {
	return (len(e.filtered) + e.pageSize - 1) / e.pageSize
}

// FilterValue returns the needle for a field, "" when unconstrained.
func (e *Engine[R]) FilterValue(field string) string {
	return e.filters[field]
}

// Filters returns a copy of the active needles.
func (e *Engine[R]) Filters() map[string]string {
	out := make(map[string]string, len(e.filters))
	for k, v := range e.filters {
		out[k] = v
	}
	return out
}

// Sort returns the active ordering.
func (e *Engine[R]) Sort() SortState {
	return e.sort
}

// Page returns the current 1-based page.
func (e *Engine[R]) Page() int {
	return e.page
}

// Schema returns the engine's schema.
func (e *Engine[R]) Schema() Schema {
	return e.schema
}

// Len returns the number of source records.
func (e *Engine[R]) Len() int {
	return len(e.source)
}

// Recomputations counts derivations performed, including the initial one.
// No-op mutator calls do not increment it.
func (e *Engine[R]) Recomputations() int {
	return e.recomputations
}

// refilter recomputes the filter stage and everything downstream of it.
func (e *Engine[R]) refilter() {
	conds := e.conditions()

	filtered := make([]int, 0, len(e.source))
	for i := range e.source {
		if e.matchAll(conds, i) {
			filtered = append(filtered, i)
		}
	}
	e.filtered = filtered

	e.resort()
	e.recomputations++
}

// matchAll evaluates AND-combined conditions, short-circuiting on first miss.
func (e *Engine[R]) matchAll(conds []condition, idx int) bool {
	for _, c := range conds {
		if !c.matches(e.textColumn(c.field)[idx]) {
			return false
		}
	}
	return true
}

// conditions compiles active needles in schema field order.
func (e *Engine[R]) conditions() []condition {
	conds := make([]condition, 0, len(e.filters))
	for field, needle := range e.filters {
		conds = append(conds, condition{field: field, folded: e.folder.fold(needle)})
	}
	// Deterministic evaluation order regardless of map iteration
	sort.Slice(conds, func(i, j int) bool {
		return e.schema.position(conds[i].field) < e.schema.position(conds[j].field)
	})
	return conds
}

// resort recomputes the sort stage from the cached filter result.
func (e *Engine[R]) resort() {
	ordered := make([]int, len(e.filtered))
	copy(ordered, e.filtered)

	if e.sort.Field != "" {
		f, _ := e.schema.Field(e.sort.Field)
		keys := e.keyColumn(f)
		dir := e.sort.Direction
		// Stable sort: equal keys keep source order, so rows with equal keys
		// stay in the same relative order across filter changes
		sort.SliceStable(ordered, func(i, j int) bool {
			return keyLess(keys[ordered[i]], keys[ordered[j]], f.Kind, dir)
		})
	}
	e.ordered = ordered
}

func (e *Engine[R]) textColumn(field string) []textCell {
	cells, ok := e.text[field]
	if !ok {
		cells = foldColumn(e.source, field, e.folder)
		e.text[field] = cells
	}
	return cells
}

func (e *Engine[R]) keyColumn(f Field) []sortKey {
	keys, ok := e.keys[f.Name]
	if !ok {
		keys = keyColumn(e.source, f)
		e.keys[f.Name] = keys
	}
	return keys
}
