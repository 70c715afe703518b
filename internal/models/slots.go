package models

import (
	"fmt"
	"strings"
)

// TimeSlot is one of the three fixed visiting windows. The label including
// the time range is the wire value, matching what visitors see in the picker.
type TimeSlot string

const (
	SlotMorning   TimeSlot = "Morning (9AM - 12PM)"
	SlotAfternoon TimeSlot = "Afternoon (12PM - 4PM)"
	SlotEvening   TimeSlot = "Evening (4PM - 8PM)"
)

// AllSlots returns the slots in visiting order.
func AllSlots() []TimeSlot {
	return []TimeSlot{SlotMorning, SlotAfternoon, SlotEvening}
}

func (s TimeSlot) String() string {
	return string(s)
}

// Short returns the slot name without the time range, e.g. "Morning".
func (s TimeSlot) Short() string {
	label := string(s)
	if i := strings.Index(label, " ("); i > 0 {
		return label[:i]
	}
	return label
}

// ParseSlot accepts either the full label or the short name, case-insensitively.
func ParseSlot(raw string) (TimeSlot, error) {
	needle := strings.ToLower(strings.TrimSpace(raw))
	for _, slot := range AllSlots() {
		if needle == strings.ToLower(string(slot)) || needle == strings.ToLower(slot.Short()) {
			return slot, nil
		}
	}
	return "", fmt.Errorf("unknown time slot: %q", raw)
}
