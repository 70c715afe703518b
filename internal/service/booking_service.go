package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"museobot/internal/database"
	"museobot/internal/domain"
	"museobot/internal/events"
	"museobot/internal/models"

	"github.com/rs/zerolog"
)

// BookingService orchestrates a submission: validate the draft, evaluate
// capacity, persist, and publish the outcome.
type BookingService struct {
	store        domain.BookingStore
	eventBus     domain.EventPublisher
	sheetsWorker domain.SyncWorker
	logger       *zerolog.Logger
}

func NewBookingService(store domain.BookingStore, eventBus domain.EventPublisher, sheetsWorker domain.SyncWorker, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		store:        store,
		eventBus:     eventBus,
		sheetsWorker: sheetsWorker,
		logger:       logger,
	}
}

// Draft is a fully collected set of booking fields, not yet persisted.
type Draft struct {
	Name        string
	Address     string
	Date        time.Time
	TimeSlot    models.TimeSlot
	TicketCount int64
}

// ValidateDraft checks all five fields are present. Ticket count must have
// parsed to a positive integer by the time it reaches this boundary.
func (s *BookingService) ValidateDraft(d Draft) error {
	if strings.TrimSpace(d.Name) == "" {
		return &ValidationError{Field: "name"}
	}
	if strings.TrimSpace(d.Address) == "" {
		return &ValidationError{Field: "address"}
	}
	if d.Date.IsZero() {
		return &ValidationError{Field: "preferredDate"}
	}
	if _, err := models.ParseSlot(string(d.TimeSlot)); err != nil {
		return &ValidationError{Field: "preferredTimeSlot"}
	}
	if d.TicketCount <= 0 {
		return &ValidationError{Field: "ticketCount"}
	}
	return nil
}

// DraftFromSession builds a Draft from the values a conversation collected.
// Free-text fields are stored verbatim in the session; the ticket count is
// parsed here, at the store boundary.
func DraftFromSession(session *models.Session) (Draft, error) {
	slot, _ := models.ParseSlot(session.GetString(models.DraftTimeSlot))

	d := Draft{
		Name:     session.GetString(models.DraftName),
		Address:  session.GetString(models.DraftAddress),
		Date:     session.GetTime(models.DraftDate),
		TimeSlot: slot,
	}

	rawCount := strings.TrimSpace(session.GetString(models.DraftTicketCount))
	count, err := strconv.ParseInt(rawCount, 10, 64)
	if err != nil || count <= 0 {
		return d, &ValidationError{Field: "ticketCount"}
	}
	d.TicketCount = count
	return d, nil
}

// Remaining computes how many tickets a (date, slot) pair can still take.
func (s *BookingService) Remaining(ctx context.Context, date time.Time, slot models.TimeSlot) (int64, error) {
	booked, err := s.store.GetBookedTickets(ctx, date, slot)
	if err != nil {
		return 0, err
	}
	return int64(models.SlotCapacity) - booked, nil
}

// SuggestSlots returns the same-date slots that still have seats, each with
// its remaining capacity.
func (s *BookingService) SuggestSlots(ctx context.Context, date time.Time) ([]models.SlotSuggestion, error) {
	availability, err := s.store.GetSlotAvailability(ctx, date)
	if err != nil {
		return nil, err
	}

	suggestions := make([]models.SlotSuggestion, 0, len(availability))
	for _, a := range availability {
		if a.Remaining > 0 {
			suggestions = append(suggestions, models.SlotSuggestion{
				Slot:              a.Slot,
				RemainingCapacity: a.Remaining,
			})
		}
	}
	return suggestions, nil
}

// Submit runs the checked creation path. On a full slot it returns a
// *CapacityError with the remaining count and alternatives; exactly one
// insert attempt is made, with the capacity guard re-run inside the store
// transaction so concurrent submissions cannot overbook.
func (s *BookingService) Submit(ctx context.Context, draft Draft) (*models.Booking, error) {
	if err := s.ValidateDraft(draft); err != nil {
		return nil, err
	}

	remaining, err := s.Remaining(ctx, draft.Date, draft.TimeSlot)
	if err != nil {
		return nil, err
	}
	if remaining < draft.TicketCount {
		return nil, s.capacityError(ctx, draft.Date, remaining)
	}

	booking := &models.Booking{
		Name:        draft.Name,
		Address:     draft.Address,
		Date:        draft.Date,
		TimeSlot:    draft.TimeSlot,
		TicketCount: draft.TicketCount,
	}

	err = s.store.CreateBookingChecked(ctx, booking)
	if errors.Is(err, database.ErrCapacityExceeded) {
		// Lost the race between pre-check and insert; recompute for the caller.
		remaining, rerr := s.Remaining(ctx, draft.Date, draft.TimeSlot)
		if rerr != nil {
			return nil, rerr
		}
		return nil, s.capacityError(ctx, draft.Date, remaining)
	}
	if err != nil {
		return nil, err
	}

	s.publishEvent(events.EventBookingCreated, booking)
	s.enqueueAppend(ctx, booking)

	return booking, nil
}

// CreateUnchecked inserts a booking without the capacity guard. Admin
// override path; capacity can go over the limit here on purpose.
func (s *BookingService) CreateUnchecked(ctx context.Context, draft Draft) (*models.Booking, error) {
	if err := s.ValidateDraft(draft); err != nil {
		return nil, err
	}

	booking := &models.Booking{
		Name:        draft.Name,
		Address:     draft.Address,
		Date:        draft.Date,
		TimeSlot:    draft.TimeSlot,
		TicketCount: draft.TicketCount,
	}

	if err := s.store.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	s.logger.Warn().Int64("booking_id", booking.ID).Msg("booking created via unchecked path")
	s.publishEvent(events.EventBookingCreated, booking)
	s.enqueueAppend(ctx, booking)

	return booking, nil
}

func (s *BookingService) GetAllBookings(ctx context.Context) ([]*models.Booking, error) {
	return s.store.GetAllBookings(ctx)
}

func (s *BookingService) GetSlotAvailability(ctx context.Context, date time.Time) ([]*models.SlotAvailability, error) {
	return s.store.GetSlotAvailability(ctx, date)
}

func (s *BookingService) DeleteBooking(ctx context.Context, id int64) error {
	booking, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.DeleteBooking(ctx, id); err != nil {
		return err
	}

	s.publishEvent(events.EventBookingDeleted, booking)
	if s.sheetsWorker != nil {
		if err := s.sheetsWorker.EnqueueDelete(ctx, id); err != nil {
			s.logger.Error().Err(err).Int64("booking_id", id).Msg("sheets enqueue error")
		}
	}
	return nil
}

func (s *BookingService) capacityError(ctx context.Context, date time.Time, remaining int64) error {
	if remaining < 0 {
		remaining = 0
	}
	suggestions, err := s.SuggestSlots(ctx, date)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to compute suggested slots")
		suggestions = nil
	}
	return &CapacityError{RemainingCapacity: remaining, SuggestedSlots: suggestions}
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:   booking.ID,
		Name:        booking.Name,
		Date:        booking.Date,
		TimeSlot:    string(booking.TimeSlot),
		TicketCount: booking.TicketCount,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}

func (s *BookingService) enqueueAppend(ctx context.Context, booking *models.Booking) {
	if s.sheetsWorker == nil {
		return
	}
	if err := s.sheetsWorker.EnqueueAppend(ctx, booking); err != nil {
		s.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("sheets enqueue error")
	}
}
