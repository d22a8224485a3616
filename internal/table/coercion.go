// internal/table/coercion.go
package table

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sitekit/sitekit/internal/types"
)

/*
 * Value coercion for filtering and sorting.
 *
 * Record values arrive as whatever the source produced: strings and float64
 * from JSON, ints from spreadsheets, json.Number from decoders with UseNumber.
 * Coerce normalizes them to the field's kind before comparison.
 *
 * Null and coercion failure are distinct: nil reports IsNull, an impossible
 * conversion returns ErrCoercionFailed. The engine treats both as "no value"
 * (never matches a needle, sorts last), but callers importing data need to
 * tell them apart.
 *
 * Type modes:
 *   - KindNumber: strict. Numeric strings parse, booleans and NaN/Inf fail.
 *   - KindString: lenient. Every non-nil value has a string form.
 */

// CoercionResult holds the coerced value or indicates null.
type CoercionResult struct {
	Value  any  // float64 for KindNumber, string for KindString (valid only if !IsNull)
	IsNull bool // true if input was nil
}

// Coerce converts value to the representation used for kind.
func Coerce(value any, kind Kind) (CoercionResult, error) {
	if value == nil {
		return CoercionResult{IsNull: true}, nil
	}
	// Nullable columns scanned from SQL or decoded from JSON arrive as *string.
	if p, ok := value.(*string); ok {
		if p == nil {
			return CoercionResult{IsNull: true}, nil
		}
		value = *p
	}

	switch kind {
	case KindNumber:
		return coerceNumber(value)
	case KindString:
		return coerceText(value)
	default:
		return CoercionResult{}, types.ErrCoercionFailed
	}
}

// coerceNumber converts value to float64.
// Whitespace-only strings and non-finite results fail.
func coerceNumber(value any) (CoercionResult, error) {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case int32:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return CoercionResult{}, types.ErrCoercionFailed
		}
		f = parsed
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return CoercionResult{}, types.ErrCoercionFailed
		}
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return CoercionResult{}, types.ErrCoercionFailed
		}
		f = parsed
	default:
		return CoercionResult{}, types.ErrCoercionFailed
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return CoercionResult{}, types.ErrCoercionFailed
	}
	return CoercionResult{Value: f}, nil
}

// coerceText converts all types to their string representation.
func coerceText(value any) (CoercionResult, error) {
	switch v := value.(type) {
	case string:
		return CoercionResult{Value: v}, nil
	case float64:
		return CoercionResult{Value: strconv.FormatFloat(v, 'f', -1, 64)}, nil
	case int:
		return CoercionResult{Value: strconv.Itoa(v)}, nil
	case int64:
		return CoercionResult{Value: strconv.FormatInt(v, 10)}, nil
	case json.Number:
		return CoercionResult{Value: v.String()}, nil
	case bool:
		return CoercionResult{Value: strconv.FormatBool(v)}, nil
	case fmt.Stringer:
		return CoercionResult{Value: v.String()}, nil
	default:
		return CoercionResult{Value: fmt.Sprintf("%v", v)}, nil
	}
}
