package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"museobot/internal/database"
	"museobot/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) CreateBooking(ctx context.Context, b *models.Booking) error {
	return m.Called(ctx, b).Error(0)
}
func (m *mockStore) CreateBookingChecked(ctx context.Context, b *models.Booking) error {
	return m.Called(ctx, b).Error(0)
}
func (m *mockStore) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockStore) GetAllBookings(ctx context.Context) ([]*models.Booking, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockStore) GetBookedTickets(ctx context.Context, date time.Time, slot models.TimeSlot) (int64, error) {
	args := m.Called(ctx, date, slot)
	return args.Get(0).(int64), args.Error(1)
}
func (m *mockStore) GetSlotAvailability(ctx context.Context, date time.Time) ([]*models.SlotAvailability, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SlotAvailability), args.Error(1)
}
func (m *mockStore) DeleteBooking(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func newTestService(store *mockStore) *BookingService {
	logger := zerolog.New(io.Discard)
	return NewBookingService(store, nil, nil, &logger)
}

func validDraft() Draft {
	return Draft{
		Name:        "Jane Visitor",
		Address:     "12 Museum Lane",
		Date:        time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		TimeSlot:    models.SlotMorning,
		TicketCount: 3,
	}
}

func TestValidateDraft(t *testing.T) {
	svc := newTestService(&mockStore{})

	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, svc.ValidateDraft(validDraft()))
	})

	cases := []struct {
		name   string
		mutate func(*Draft)
		field  string
	}{
		{"MissingName", func(d *Draft) { d.Name = "  " }, "name"},
		{"MissingAddress", func(d *Draft) { d.Address = "" }, "address"},
		{"MissingDate", func(d *Draft) { d.Date = time.Time{} }, "preferredDate"},
		{"BadSlot", func(d *Draft) { d.TimeSlot = "Midnight" }, "preferredTimeSlot"},
		{"ZeroTickets", func(d *Draft) { d.TicketCount = 0 }, "ticketCount"},
		{"NegativeTickets", func(d *Draft) { d.TicketCount = -1 }, "ticketCount"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := validDraft()
			tc.mutate(&d)
			err := svc.ValidateDraft(d)
			var valErr *ValidationError
			require.ErrorAs(t, err, &valErr)
			assert.Equal(t, tc.field, valErr.Field)
		})
	}
}

func TestDraftFromSession(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		session := &models.Session{Draft: map[string]interface{}{
			models.DraftName:        "Jane Visitor",
			models.DraftAddress:     "12 Museum Lane",
			models.DraftDate:        "2026-06-01T00:00:00Z",
			models.DraftTimeSlot:    string(models.SlotAfternoon),
			models.DraftTicketCount: "4",
		}}

		draft, err := DraftFromSession(session)
		require.NoError(t, err)
		assert.Equal(t, "Jane Visitor", draft.Name)
		assert.Equal(t, models.SlotAfternoon, draft.TimeSlot)
		assert.Equal(t, int64(4), draft.TicketCount)
		assert.Equal(t, "2026-06-01", draft.Date.Format(models.DateLayout))
	})

	t.Run("NonNumericTicketCount", func(t *testing.T) {
		session := &models.Session{Draft: map[string]interface{}{
			models.DraftTicketCount: "a few",
		}}

		_, err := DraftFromSession(session)
		var valErr *ValidationError
		require.ErrorAs(t, err, &valErr)
		assert.Equal(t, "ticketCount", valErr.Field)
	})
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		store := &mockStore{}
		svc := newTestService(store)

		store.On("GetBookedTickets", ctx, date, models.SlotMorning).Return(int64(5), nil)
		store.On("CreateBookingChecked", ctx, mock.AnythingOfType("*models.Booking")).
			Run(func(args mock.Arguments) {
				b := args.Get(1).(*models.Booking)
				b.ID = 42
				b.CreatedAt = time.Now()
			}).Return(nil)

		booking, err := svc.Submit(ctx, validDraft())
		require.NoError(t, err)
		assert.Equal(t, int64(42), booking.ID)
		assert.Equal(t, int64(150), booking.TotalPrice())
		store.AssertExpectations(t)
	})

	t.Run("ValidationFailureSkipsStore", func(t *testing.T) {
		store := &mockStore{}
		svc := newTestService(store)

		d := validDraft()
		d.Name = ""
		_, err := svc.Submit(ctx, d)
		var valErr *ValidationError
		require.ErrorAs(t, err, &valErr)
		store.AssertNotCalled(t, "CreateBookingChecked", mock.Anything, mock.Anything)
	})

	t.Run("CapacityExceededSuggestsOpenSlots", func(t *testing.T) {
		store := &mockStore{}
		svc := newTestService(store)

		// Morning full, afternoon partly booked, evening empty.
		store.On("GetBookedTickets", ctx, date, models.SlotMorning).Return(int64(15), nil)
		store.On("GetSlotAvailability", ctx, date).Return([]*models.SlotAvailability{
			{Date: date, Slot: models.SlotMorning, Booked: 15, Remaining: 0},
			{Date: date, Slot: models.SlotAfternoon, Booked: 5, Remaining: 10},
			{Date: date, Slot: models.SlotEvening, Booked: 0, Remaining: 15},
		}, nil)

		d := validDraft()
		d.TicketCount = 10
		_, err := svc.Submit(ctx, d)

		var capErr *CapacityError
		require.ErrorAs(t, err, &capErr)
		assert.Equal(t, int64(0), capErr.RemainingCapacity)
		// The full slot is not suggested.
		require.Len(t, capErr.SuggestedSlots, 2)
		assert.Equal(t, models.SlotAfternoon, capErr.SuggestedSlots[0].Slot)
		assert.Equal(t, int64(10), capErr.SuggestedSlots[0].RemainingCapacity)
		assert.Equal(t, models.SlotEvening, capErr.SuggestedSlots[1].Slot)
		assert.Equal(t, int64(15), capErr.SuggestedSlots[1].RemainingCapacity)
		store.AssertNotCalled(t, "CreateBookingChecked", mock.Anything, mock.Anything)
	})

	t.Run("LostRaceMapsToCapacityError", func(t *testing.T) {
		store := &mockStore{}
		svc := newTestService(store)

		// Pre-check passes but the transactional guard trips.
		store.On("GetBookedTickets", ctx, date, models.SlotMorning).Return(int64(12), nil).Once()
		store.On("CreateBookingChecked", ctx, mock.AnythingOfType("*models.Booking")).
			Return(database.ErrCapacityExceeded)
		store.On("GetBookedTickets", ctx, date, models.SlotMorning).Return(int64(14), nil)
		store.On("GetSlotAvailability", ctx, date).Return([]*models.SlotAvailability{
			{Date: date, Slot: models.SlotMorning, Booked: 14, Remaining: 1},
			{Date: date, Slot: models.SlotAfternoon, Booked: 0, Remaining: 15},
			{Date: date, Slot: models.SlotEvening, Booked: 0, Remaining: 15},
		}, nil)

		_, err := svc.Submit(ctx, validDraft())
		var capErr *CapacityError
		require.ErrorAs(t, err, &capErr)
		assert.Equal(t, int64(1), capErr.RemainingCapacity)
	})

	t.Run("StoreError", func(t *testing.T) {
		store := &mockStore{}
		svc := newTestService(store)

		store.On("GetBookedTickets", ctx, date, models.SlotMorning).Return(int64(0), nil)
		store.On("CreateBookingChecked", ctx, mock.AnythingOfType("*models.Booking")).
			Return(errors.New("disk full"))

		_, err := svc.Submit(ctx, validDraft())
		require.Error(t, err)
		var capErr *CapacityError
		assert.False(t, errors.As(err, &capErr))
	})
}

func TestCreateUnchecked(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{}
	svc := newTestService(store)

	// No capacity lookup on the unchecked path.
	store.On("CreateBooking", ctx, mock.AnythingOfType("*models.Booking")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.Booking).ID = 7
		}).Return(nil)

	booking, err := svc.CreateUnchecked(ctx, validDraft())
	require.NoError(t, err)
	assert.Equal(t, int64(7), booking.ID)
	store.AssertNotCalled(t, "GetBookedTickets", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		store := &mockStore{}
		svc := newTestService(store)

		store.On("GetBooking", ctx, int64(7)).Return(&models.Booking{ID: 7}, nil)
		store.On("DeleteBooking", ctx, int64(7)).Return(nil)

		require.NoError(t, svc.DeleteBooking(ctx, 7))
		store.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		store := &mockStore{}
		svc := newTestService(store)

		store.On("GetBooking", ctx, int64(8)).Return(nil, database.ErrNotFound)

		assert.ErrorIs(t, svc.DeleteBooking(ctx, 8), database.ErrNotFound)
		store.AssertNotCalled(t, "DeleteBooking", mock.Anything, mock.Anything)
	})
}
