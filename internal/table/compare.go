// internal/table/compare.go
package table

import "strings"

/*
 * Sort key extraction and comparison.
 *
 * Numbers compare numerically; strings compare by raw code point order (Go's
 * byte-wise UTF-8 comparison is code point order), so sorting is case
 * sensitive even though filtering is not.
 *
 * Null ordering: null, missing and uncoercible values sort after every
 * non-null value in both directions. Direction only flips the order among
 * non-null keys.
 */

// sortKey is a pre-coerced value for one record and one field.
type sortKey struct {
	num  float64
	str  string
	null bool
}

// keyColumn coerces every record's value for a field to its sort key.
func keyColumn[R Record](records []R, field Field) []sortKey {
	keys := make([]sortKey, len(records))
	for i, r := range records {
		v, ok := r.Value(field.Name)
		if !ok {
			keys[i] = sortKey{null: true}
			continue
		}
		res, err := Coerce(v, field.Kind)
		if err != nil || res.IsNull {
			keys[i] = sortKey{null: true}
			continue
		}
		switch field.Kind {
		case KindNumber:
			keys[i] = sortKey{num: res.Value.(float64)}
		default:
			keys[i] = sortKey{str: res.Value.(string)}
		}
	}
	return keys
}

// compareKeys performs three-way comparison of two non-null keys (-1/0/1).
func compareKeys(a, b sortKey, kind Kind) int {
	if kind == KindNumber {
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a.str, b.str)
}

// keyLess orders two keys for the given direction with nulls last.
func keyLess(a, b sortKey, kind Kind, dir Direction) bool {
	switch {
	case a.null:
		return false
	case b.null:
		return true
	}
	c := compareKeys(a, b, kind)
	if dir == Desc {
		return c > 0
	}
	return c < 0
}
