package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSlot(t *testing.T) {
	cases := []struct {
		in   string
		want TimeSlot
	}{
		{"Morning (9AM - 12PM)", SlotMorning},
		{"Morning", SlotMorning},
		{"morning", SlotMorning},
		{"  AFTERNOON  ", SlotAfternoon},
		{"Afternoon (12PM - 4PM)", SlotAfternoon},
		{"evening (4pm - 8pm)", SlotEvening},
	}
	for _, tc := range cases {
		got, err := ParseSlot(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	_, err := ParseSlot("midnight")
	assert.Error(t, err)
	_, err = ParseSlot("")
	assert.Error(t, err)
}

func TestSlotShort(t *testing.T) {
	assert.Equal(t, "Morning", SlotMorning.Short())
	assert.Equal(t, "Afternoon", SlotAfternoon.Short())
	assert.Equal(t, "Evening", SlotEvening.Short())
}

func TestTotalPrice(t *testing.T) {
	b := &Booking{TicketCount: 4}
	assert.Equal(t, int64(4*TicketPrice), b.TotalPrice())
}
