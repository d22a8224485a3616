// Package types provides domain models shared across sitekit components.
//
// Zero-dependency design: types.go and errors.go use only the standard library
// so the table engine and the UI can import them without pulling in storage.
// ID utilities in ids.go import uuid but are isolated from the rest.
package types

import "time"

// StatementID represents a UUIDv7 itemized-statement identifier.
// String alias enables type safety while maintaining JSON string serialization.
type StatementID string

// ItemID represents a UUIDv7 itemized-statement item identifier.
type ItemID string

// Item field names as exposed to the table engine and the REST payload.
const (
	FieldCustomCategory = "customCategory"
	FieldWorkType       = "workType"
	FieldName           = "name"
	FieldSpecification  = "specification"
	FieldUnit           = "unit"
	FieldQuantity       = "quantity"
)

// Statement is one itemized statement (内訳書) belonging to a project.
// UpdatedAt doubles as the optimistic-concurrency token (expectedUpdatedAt).
type Statement struct {
	ID          StatementID `json:"id"`
	ProjectName string      `json:"projectName"`
	Title       string      `json:"name"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Item is a single row of an itemized statement.
// Pointer fields are nullable on the wire; nil means "not set", not "".
type Item struct {
	ID             ItemID      `json:"id"`
	StatementID    StatementID `json:"statementId,omitempty"`
	Position       int         `json:"position"`
	CustomCategory *string     `json:"customCategory"`
	WorkType       *string     `json:"workType"`
	Name           string      `json:"name"`
	Specification  *string     `json:"specification"`
	Unit           string      `json:"unit"`
	Quantity       float64     `json:"quantity"`
}

// Value returns the item's value for a field name, nil for null fields.
// Second return is false for unknown field names.
func (i Item) Value(field string) (any, bool) {
	switch field {
	case FieldCustomCategory:
		return derefString(i.CustomCategory), true
	case FieldWorkType:
		return derefString(i.WorkType), true
	case FieldName:
		return i.Name, true
	case FieldSpecification:
		return derefString(i.Specification), true
	case FieldUnit:
		return i.Unit, true
	case FieldQuantity:
		return i.Quantity, true
	default:
		return nil, false
	}
}

// derefString turns a nullable string into an untyped nil or its value,
// so a nil *string never leaks into an interface as a typed nil.
func derefString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// StringPtr returns a pointer to s. Convenience for building nullable fields.
func StringPtr(s string) *string {
	return &s
}

// Resource limits for imported statements.
const (
	// MaxItemsPerStatement bounds a single import to keep the in-memory view cheap.
	MaxItemsPerStatement = 10000

	// DefaultPageSize matches the detail view's fixed page size.
	DefaultPageSize = 50
)
