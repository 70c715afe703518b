package service

import (
	"fmt"

	"museobot/internal/models"
)

// ValidationError reports a missing or malformed draft field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing or invalid field: %s", e.Field)
}

// CapacityError carries what the caller needs to offer alternatives.
type CapacityError struct {
	RemainingCapacity int64
	SuggestedSlots    []models.SlotSuggestion
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("capacity exceeded: %d ticket(s) remaining", e.RemainingCapacity)
}
