package types

import "errors"

// Sentinel errors for sitekit operations.
var (
	// ErrStatementNotFound indicates no statement exists with the given ID.
	ErrStatementNotFound = errors.New("statement not found")

	// ErrStaleUpdate indicates expectedUpdatedAt no longer matches the stored statement.
	ErrStaleUpdate = errors.New("statement was modified by another writer")

	// ErrSessionNotFound indicates a view session was closed or never opened.
	ErrSessionNotFound = errors.New("view session not found")

	// ErrUnsupportedSource indicates an import file with an unknown format.
	ErrUnsupportedSource = errors.New("unsupported source format")

	// ErrMissingColumn indicates a spreadsheet header lacks a required column.
	ErrMissingColumn = errors.New("required column missing")

	// ErrCoercionFailed indicates a cell could not be converted to its field type.
	ErrCoercionFailed = errors.New("type coercion failed")

	// ErrInvalidQuantity indicates a negative, NaN or infinite quantity.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrTooManyItems indicates an import exceeds MaxItemsPerStatement.
	ErrTooManyItems = errors.New("too many items in statement")
)
