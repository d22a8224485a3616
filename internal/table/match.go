// internal/table/match.go
package table

import (
	"strings"

	"github.com/sitekit/sitekit/internal/kana"
	"golang.org/x/text/cases"
)

/*
 * Substring matching for column filters.
 *
 * A filter condition matches when the field's text contains the needle under
 * Unicode case folding (cases.Fold, not byte-level ToLower), so "vvf" finds
 * "VVF2.0-3C" and "éclairage" finds "ÉCLAIRAGE". Null values never match a non-empty needle.
 *
 * Folded column text is cached per field for the lifetime of the engine:
 * source records are immutable, so each cell is folded at most once no matter
 * how many keystrokes re-run the filter.
 *
 * Optional kana folding maps katakana to hiragana on both sides after case
 * folding, so "けーぶる" finds "ケーブル配線".
 */

// folder normalizes text for containment checks.
// cases.Caser is stateful and not goroutine-safe; one folder per engine.
type folder struct {
	caser cases.Caser
	kana  bool
}

func newFolder(kanaInsensitive bool) *folder {
	return &folder{caser: cases.Fold(), kana: kanaInsensitive}
}

func (f *folder) fold(s string) string {
	out := f.caser.String(s)
	if f.kana {
		out = kana.ToHiragana(out)
	}
	return out
}

// textCell is a folded cell value; null cells never match.
type textCell struct {
	folded string
	null   bool
}

// condition is one active column filter.
type condition struct {
	field  string
	folded string // folded needle
}

// matches reports whether a cell satisfies the condition.
func (c condition) matches(cell textCell) bool {
	if cell.null {
		return false
	}
	return strings.Contains(cell.folded, c.folded)
}

// foldColumn folds every record's value for a string field.
// Missing fields and coercion failures become null cells.
func foldColumn[R Record](records []R, field string, f *folder) []textCell {
	cells := make([]textCell, len(records))
	for i, r := range records {
		v, ok := r.Value(field)
		if !ok {
			cells[i] = textCell{null: true}
			continue
		}
		res, err := Coerce(v, KindString)
		if err != nil || res.IsNull {
			cells[i] = textCell{null: true}
			continue
		}
		cells[i] = textCell{folded: f.fold(res.Value.(string))}
	}
	return cells
}
