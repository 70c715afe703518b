package google

import (
	"testing"
	"time"

	"museobot/internal/models"
)

func TestBookingRowValues(t *testing.T) {
	date := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	createdAt := time.Date(2026, 5, 20, 10, 30, 0, 0, time.UTC)

	booking := &models.Booking{
		ID:          123,
		Name:        "Jane Visitor",
		Address:     "12 Museum Lane",
		Date:        date,
		TimeSlot:    models.SlotMorning,
		TicketCount: 3,
		CreatedAt:   createdAt,
	}

	values := bookingRowValues(booking)

	expected := []interface{}{
		int64(123),
		"Jane Visitor",
		"12 Museum Lane",
		"2026-06-01",
		"Morning (9AM - 12PM)",
		int64(3),
		"2026-05-20 10:30:00",
	}

	if len(values) != len(expected) {
		t.Fatalf("Expected %d values, got %d", len(expected), len(values))
	}

	for i, v := range values {
		if v != expected[i] {
			t.Errorf("At index %d: expected %v, got %v", i, expected[i], v)
		}
	}
}

func TestCacheOperations(t *testing.T) {
	s := &SheetsService{
		rowCache: make(map[int64]int),
	}

	if _, ok := s.getCachedRow(1); ok {
		t.Error("Expected cache miss for unknown id")
	}

	s.setCachedRow(1, 5)
	row, ok := s.getCachedRow(1)
	if !ok || row != 5 {
		t.Errorf("Expected cached row 5, got %d (ok=%v)", row, ok)
	}

	s.deleteCacheRow(1)
	if _, ok := s.getCachedRow(1); ok {
		t.Error("Expected cache miss after delete")
	}
}
