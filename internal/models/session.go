package models

import "time"

// Session is the ephemeral state of one booking conversation. It is held in
// the session repository, never in the bookings store.
type Session struct {
	ID             string                 `json:"id"`
	Step           string                 `json:"step"`
	Draft          map[string]interface{} `json:"draft"`
	ShowDatePicker bool                   `json:"show_date_picker"`
	ShowSlotPicker bool                   `json:"show_slot_picker"`
}

const (
	DraftName        = "name"
	DraftAddress     = "address"
	DraftDate        = "date"
	DraftTimeSlot    = "time_slot"
	DraftTicketCount = "ticket_count"
)

func (s *Session) Set(key string, value interface{}) {
	if s.Draft == nil {
		s.Draft = make(map[string]interface{})
	}
	s.Draft[key] = value
}

func (s *Session) GetString(key string) string {
	if s.Draft == nil {
		return ""
	}
	val, ok := s.Draft[key]
	if !ok {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}

// GetTime handles both in-memory time.Time values and the RFC3339 strings
// they become after a JSON round-trip through Redis.
func (s *Session) GetTime(key string) time.Time {
	if s.Draft == nil {
		return time.Time{}
	}
	val, ok := s.Draft[key]
	if !ok {
		return time.Time{}
	}
	switch v := val.(type) {
	case time.Time:
		return v
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			t, err = time.Parse(DateLayout, v)
			if err != nil {
				return time.Time{}
			}
		}
		return t
	default:
		return time.Time{}
	}
}
