package worker

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"museobot/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryPolicyNextDelay(t *testing.T) {
	policy := RetryPolicy{
		InitialDelay:  time.Second,
		MaxDelay:      10 * time.Second,
		BackoffFactor: 2,
	}

	assert.Equal(t, time.Second, policy.NextDelay(1))
	assert.Equal(t, 2*time.Second, policy.NextDelay(2))
	assert.Equal(t, 4*time.Second, policy.NextDelay(3))
	// Clamped to MaxDelay.
	assert.Equal(t, 10*time.Second, policy.NextDelay(10))
	// Attempt below 1 is treated as the first.
	assert.Equal(t, time.Second, policy.NextDelay(0))
}

func TestRetryPolicyZeroValues(t *testing.T) {
	var policy RetryPolicy
	assert.Equal(t, time.Second, policy.NextDelay(1))
	assert.Equal(t, 2*time.Second, policy.NextDelay(2))
}

type fakeSheets struct {
	mu       sync.Mutex
	appended []int64
	deleted  []int64
	replaced int
	failUpTo int
	calls    int
}

func (f *fakeSheets) AppendBooking(ctx context.Context, b *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failUpTo {
		return errors.New("transient sheets error")
	}
	f.appended = append(f.appended, b.ID)
	return nil
}

func (f *fakeSheets) ReplaceBookingsSheet(ctx context.Context, bookings []*models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replaced++
	return nil
}

func (f *fakeSheets) DeleteBookingRow(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeSheets) appendedIDs() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.appended...)
}

func (f *fakeSheets) deletedIDs() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.deleted...)
}

type fakeStore struct {
	bookings []*models.Booking
}

func (f *fakeStore) CreateBooking(ctx context.Context, b *models.Booking) error        { return nil }
func (f *fakeStore) CreateBookingChecked(ctx context.Context, b *models.Booking) error { return nil }
func (f *fakeStore) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeStore) GetAllBookings(ctx context.Context) ([]*models.Booking, error) {
	return f.bookings, nil
}
func (f *fakeStore) GetBookedTickets(ctx context.Context, date time.Time, slot models.TimeSlot) (int64, error) {
	return 0, nil
}
func (f *fakeStore) GetSlotAvailability(ctx context.Context, date time.Time) ([]*models.SlotAvailability, error) {
	return nil, nil
}
func (f *fakeStore) DeleteBooking(ctx context.Context, id int64) error { return nil }

func newTestWorker(sheets *fakeSheets, store *fakeStore) *SheetsWorker {
	logger := zerolog.New(io.Discard)
	retry := RetryPolicy{MaxRetries: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, BackoffFactor: 2}
	return NewSheetsWorker(sheets, store, retry, &logger)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestSheetsWorkerProcessesTasks(t *testing.T) {
	sheets := &fakeSheets{}
	store := &fakeStore{bookings: []*models.Booking{{ID: 1}, {ID: 2}}}
	w := newTestWorker(sheets, store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	require.NoError(t, w.EnqueueAppend(ctx, &models.Booking{ID: 1}))
	require.NoError(t, w.EnqueueDelete(ctx, 2))
	require.NoError(t, w.EnqueueReplaceAll(ctx))

	waitFor(t, func() bool {
		sheets.mu.Lock()
		defer sheets.mu.Unlock()
		return len(sheets.appended) == 1 && len(sheets.deleted) == 1 && sheets.replaced == 1
	})

	assert.Equal(t, []int64{1}, sheets.appendedIDs())
	assert.Equal(t, []int64{2}, sheets.deletedIDs())
}

func TestSheetsWorkerRetriesTransientFailure(t *testing.T) {
	sheets := &fakeSheets{failUpTo: 2}
	w := newTestWorker(sheets, &fakeStore{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	require.NoError(t, w.EnqueueAppend(ctx, &models.Booking{ID: 9}))

	// Two failures, then success on the third attempt.
	waitFor(t, func() bool {
		sheets.mu.Lock()
		defer sheets.mu.Unlock()
		return len(sheets.appended) == 1
	})
	assert.Equal(t, []int64{9}, sheets.appendedIDs())
}

func TestEnqueueValidation(t *testing.T) {
	w := newTestWorker(&fakeSheets{}, &fakeStore{})
	ctx := context.Background()

	assert.Error(t, w.EnqueueAppend(ctx, nil))
	assert.Error(t, w.EnqueueAppend(ctx, &models.Booking{}))
	assert.Error(t, w.EnqueueDelete(ctx, 0))
}
