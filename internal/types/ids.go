package types

import (
	"time"

	"github.com/google/uuid"
)

// NewStatementID generates a UUIDv7 statement identifier.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewStatementID() StatementID {
	return StatementID(uuid.Must(uuid.NewV7()).String())
}

// NewItemID generates a UUIDv7 item identifier.
// Time-ordered IDs keep imported items clustered in the items index.
func NewItemID() ItemID {
	return ItemID(uuid.Must(uuid.NewV7()).String())
}

// NewSessionID generates a random identifier for a view session.
func NewSessionID() string {
	return uuid.NewString()
}

// ParseStatementID validates and converts a string to StatementID.
func ParseStatementID(s string) (StatementID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", err
	}
	return StatementID(s), nil
}

// ParseItemID validates and converts a string to ItemID.
func ParseItemID(s string) (ItemID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", err
	}
	return ItemID(s), nil
}

// StatementIDTime extracts the creation time embedded in a UUIDv7 ID.
// Returns zero time for invalid UUIDs; caller should check IsZero().
func StatementIDTime(id StatementID) time.Time {
	u, err := uuid.Parse(string(id))
	if err != nil {
		return time.Time{}
	}
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec)
}
