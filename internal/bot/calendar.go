package bot

import (
	"context"
	"fmt"
	"time"

	"museobot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// calendarKeyboard builds an inline month grid. Every day is selectable;
// capacity is checked at submission, not here.
func calendarKeyboard(year, month int) tgbotapi.InlineKeyboardMarkup {
	firstDay := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	weekdayOffset := int(firstDay.Weekday())
	if weekdayOffset == 0 {
		weekdayOffset = 7 // make Monday-first grid
	}
	daysInMonth := daysIn(time.Month(month), year)

	rows := make([][]tgbotapi.InlineKeyboardButton, 0)

	// Month header with navigation
	prevYear, prevMonth := year, month-1
	if prevMonth < 1 {
		prevMonth = 12
		prevYear--
	}
	nextYear, nextMonth := year, month+1
	if nextMonth > 12 {
		nextMonth = 1
		nextYear++
	}
	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("«", fmt.Sprintf("cal:%04d-%02d", prevYear, prevMonth)),
		tgbotapi.NewInlineKeyboardButtonData(firstDay.Format("January 2006"), "noop"),
		tgbotapi.NewInlineKeyboardButtonData("»", fmt.Sprintf("cal:%04d-%02d", nextYear, nextMonth)),
	})

	// Weekday header
	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("Mo", "noop"),
		tgbotapi.NewInlineKeyboardButtonData("Tu", "noop"),
		tgbotapi.NewInlineKeyboardButtonData("We", "noop"),
		tgbotapi.NewInlineKeyboardButtonData("Th", "noop"),
		tgbotapi.NewInlineKeyboardButtonData("Fr", "noop"),
		tgbotapi.NewInlineKeyboardButtonData("Sa", "noop"),
		tgbotapi.NewInlineKeyboardButtonData("Su", "noop"),
	})

	day := 1
	for day <= daysInMonth {
		row := make([]tgbotapi.InlineKeyboardButton, 0, 7)
		for col := 1; col <= 7; col++ {
			if len(rows) == 2 && col < weekdayOffset {
				row = append(row, tgbotapi.NewInlineKeyboardButtonData(" ", "noop"))
				continue
			}
			if day > daysInMonth {
				row = append(row, tgbotapi.NewInlineKeyboardButtonData(" ", "noop"))
				continue
			}
			dateStr := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
			label := fmt.Sprintf("%d", day)
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("date:%s", dateStr)))
			day++
		}
		rows = append(rows, row)
	}

	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// slotKeyboard offers the three visiting windows, marking full slots.
func (b *Bot) slotKeyboard(ctx context.Context, session *models.Session) tgbotapi.InlineKeyboardMarkup {
	date := session.GetTime(models.DraftDate)

	remaining := make(map[models.TimeSlot]int64)
	if availability, err := b.bookings.GetSlotAvailability(ctx, date); err == nil {
		for _, a := range availability {
			remaining[a.Slot] = a.Remaining
		}
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(models.AllSlots()))
	for _, slot := range models.AllSlots() {
		text := slot.String()
		if left, ok := remaining[slot]; ok {
			if left <= 0 {
				text = "⛔ " + text
			} else {
				text = fmt.Sprintf("%s (%d left)", text, left)
			}
		}
		rows = append(rows, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(text, fmt.Sprintf("slot:%s", slot.Short())),
		})
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func parseMonthRef(raw string) (int, int, bool) {
	t, err := time.Parse("2006-01", raw)
	if err != nil {
		return 0, 0, false
	}
	return t.Year(), int(t.Month()), true
}

func daysIn(m time.Month, year int) int {
	switch m {
	case time.February:
		if (year%4 == 0 && year%100 != 0) || year%400 == 0 {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}
