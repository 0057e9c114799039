package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// BatchID identifies one batch of simulated walks
type BatchID ID

// NewBatchID creates a time-ordered batch identifier
func NewBatchID() BatchID { return BatchID(NewID()) }

func (id BatchID) String() string { return ID(id).String() }

// IsEmpty checks if the batch ID is empty
func (id BatchID) IsEmpty() bool { return ID(id).IsEmpty() }

// ParseBatchID parses a string into BatchID
func ParseBatchID(s string) (BatchID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("batch ID cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("batch ID %q is not a UUID: %w", s, err)
	}
	return BatchID(s), nil
}
