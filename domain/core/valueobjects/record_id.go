package valueobjects

import (
	"errors"

	"github.com/google/uuid"
)

// RecordID is a value object representing a unique record identifier
// Value objects are immutable and have no identity beyond their value
type RecordID struct {
	value string
}

// NewRecordID creates a new random RecordID
func NewRecordID() RecordID {
	return RecordID{value: uuid.New().String()}
}

// NewRecordIDFromString creates a RecordID from an existing string
func NewRecordIDFromString(id string) (RecordID, error) {
	if id == "" {
		return RecordID{}, errors.New("record ID cannot be empty")
	}
	if !isValidUUID(id) {
		return RecordID{}, errors.New("record ID must be a valid UUID")
	}
	return RecordID{value: id}, nil
}

// String returns the string representation of the RecordID
func (id RecordID) String() string {
	return id.value
}

// Equals checks if two RecordIDs are equal
func (id RecordID) Equals(other RecordID) bool {
	return id.value == other.value
}

// IsZero checks if the RecordID is the zero value
func (id RecordID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id RecordID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *RecordID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("RecordID must be a string")
	}
	id.value = string(data[1 : len(data)-1])
	return nil
}

// isValidUUID validates if a string is a valid UUID
func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
