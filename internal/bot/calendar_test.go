package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalendarKeyboard(t *testing.T) {
	kb := calendarKeyboard(2026, 6) // June 2026 starts on a Monday

	require.GreaterOrEqual(t, len(kb.InlineKeyboard), 3)

	nav := kb.InlineKeyboard[0]
	require.Len(t, nav, 3)
	assert.Equal(t, "cal:2026-05", *nav[0].CallbackData)
	assert.Equal(t, "June 2026", nav[1].Text)
	assert.Equal(t, "cal:2026-07", *nav[2].CallbackData)

	// Weekday header is Monday-first.
	assert.Equal(t, "Mo", kb.InlineKeyboard[1][0].Text)
	assert.Equal(t, "Su", kb.InlineKeyboard[1][6].Text)

	// June 1 2026 is a Monday, so the first day cell is in the first column.
	firstWeek := kb.InlineKeyboard[2]
	assert.Equal(t, "1", firstWeek[0].Text)
	assert.Equal(t, "date:2026-06-01", *firstWeek[0].CallbackData)

	// Every day of the month appears exactly once.
	seen := map[string]bool{}
	for _, row := range kb.InlineKeyboard[2:] {
		for _, btn := range row {
			if btn.CallbackData != nil && *btn.CallbackData != "noop" {
				assert.False(t, seen[*btn.CallbackData])
				seen[*btn.CallbackData] = true
			}
		}
	}
	assert.Len(t, seen, 30)
}

func TestCalendarKeyboardYearBoundaries(t *testing.T) {
	kb := calendarKeyboard(2026, 1)
	nav := kb.InlineKeyboard[0]
	assert.Equal(t, "cal:2025-12", *nav[0].CallbackData)
	assert.Equal(t, "cal:2026-02", *nav[2].CallbackData)

	kb = calendarKeyboard(2026, 12)
	nav = kb.InlineKeyboard[0]
	assert.Equal(t, "cal:2026-11", *nav[0].CallbackData)
	assert.Equal(t, "cal:2027-01", *nav[2].CallbackData)
}

func TestParseMonthRef(t *testing.T) {
	year, month, ok := parseMonthRef("2026-09")
	require.True(t, ok)
	assert.Equal(t, 2026, year)
	assert.Equal(t, 9, month)

	_, _, ok = parseMonthRef("September")
	assert.False(t, ok)
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 31, daysIn(time.January, 2026))
	assert.Equal(t, 28, daysIn(time.February, 2026))
	assert.Equal(t, 29, daysIn(time.February, 2028))
	assert.Equal(t, 28, daysIn(time.February, 2100))
	assert.Equal(t, 30, daysIn(time.April, 2026))
}
