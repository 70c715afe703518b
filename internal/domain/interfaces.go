package domain

import (
	"context"
	"time"

	"museobot/internal/models"
)

// BookingStore is the persistence boundary the orchestrator talks to.
type BookingStore interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	CreateBookingChecked(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	GetAllBookings(ctx context.Context) ([]*models.Booking, error)
	GetBookedTickets(ctx context.Context, date time.Time, slot models.TimeSlot) (int64, error)
	GetSlotAvailability(ctx context.Context, date time.Time) ([]*models.SlotAvailability, error)
	DeleteBooking(ctx context.Context, id int64) error
}

// SessionRepository stores conversation sessions keyed by opaque session ids.
type SessionRepository interface {
	GetSession(ctx context.Context, id string) (*models.Session, error)
	SetSession(ctx context.Context, session *models.Session) error
	ClearSession(ctx context.Context, id string) error
	CheckRateLimit(ctx context.Context, id string, limit int, window time.Duration) (bool, error)
}

// EventPublisher fans out domain events to in-process subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// SheetsWriter mirrors bookings into a spreadsheet.
type SheetsWriter interface {
	AppendBooking(ctx context.Context, booking *models.Booking) error
	ReplaceBookingsSheet(ctx context.Context, bookings []*models.Booking) error
	DeleteBookingRow(ctx context.Context, bookingID int64) error
}

// SyncWorker queues spreadsheet sync tasks without blocking callers.
type SyncWorker interface {
	EnqueueAppend(ctx context.Context, booking *models.Booking) error
	EnqueueReplaceAll(ctx context.Context) error
	EnqueueDelete(ctx context.Context, bookingID int64) error
}
