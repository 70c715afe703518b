package models

import "time"

type Booking struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	Date        time.Time `json:"preferredDate"`
	TimeSlot    TimeSlot  `json:"preferredTimeSlot"`
	TicketCount int64     `json:"ticketCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TotalPrice is the amount charged for the booking.
func (b *Booking) TotalPrice() int64 {
	return b.TicketCount * TicketPrice
}

// SlotSuggestion is an alternative slot offered when the requested one is full.
type SlotSuggestion struct {
	Slot              TimeSlot `json:"slot"`
	RemainingCapacity int64    `json:"remainingCapacity"`
}

// SlotAvailability reports how many tickets a slot still has on a date.
type SlotAvailability struct {
	Date      time.Time `json:"date"`
	Slot      TimeSlot  `json:"slot"`
	Booked    int64     `json:"booked"`
	Remaining int64     `json:"remaining"`
}
