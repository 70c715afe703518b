package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"museobot/internal/domain"
	"museobot/internal/models"

	"github.com/rs/zerolog"
)

const (
	TaskAppend     = "append"
	TaskDelete     = "delete"
	TaskReplaceAll = "replace_all"
)

// SheetTask describes one spreadsheet mutation.
type SheetTask struct {
	Type      string
	BookingID int64
	Booking   *models.Booking
	CreatedAt time.Time
}

// SheetsWorker applies booking changes to the spreadsheet mirror in the
// background so API and bot handlers never block on Google. Tasks are
// retried with backoff; a task that exhausts its retries is dropped with
// an error log, the sheet is a mirror rather than the source of truth.
type SheetsWorker struct {
	sheets      domain.SheetsWriter
	store       domain.BookingStore
	retryPolicy RetryPolicy
	queue       chan SheetTask
	logger      *zerolog.Logger
}

// NewSheetsWorker builds a worker with sane defaults.
func NewSheetsWorker(sheets domain.SheetsWriter, store domain.BookingStore, retry RetryPolicy, logger *zerolog.Logger) *SheetsWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = 1 * time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}

	return &SheetsWorker{
		sheets:      sheets,
		store:       store,
		retryPolicy: retry,
		queue:       make(chan SheetTask, models.WorkerQueueSize),
		logger:      logger,
	}
}

func (w *SheetsWorker) EnqueueAppend(ctx context.Context, booking *models.Booking) error {
	if booking == nil || booking.ID == 0 {
		return errors.New("booking id is required")
	}
	return w.enqueue(ctx, SheetTask{Type: TaskAppend, BookingID: booking.ID, Booking: booking, CreatedAt: time.Now()})
}

func (w *SheetsWorker) EnqueueDelete(ctx context.Context, bookingID int64) error {
	if bookingID == 0 {
		return errors.New("booking id is required")
	}
	return w.enqueue(ctx, SheetTask{Type: TaskDelete, BookingID: bookingID, CreatedAt: time.Now()})
}

func (w *SheetsWorker) EnqueueReplaceAll(ctx context.Context) error {
	return w.enqueue(ctx, SheetTask{Type: TaskReplaceAll, CreatedAt: time.Now()})
}

func (w *SheetsWorker) enqueue(ctx context.Context, task SheetTask) error {
	select {
	case w.queue <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return errors.New("sheets queue is full")
	}
}

// Start launches main loop; stops when ctx is done.
func (w *SheetsWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("sheets worker started")
	defer w.logger.Info().Msg("sheets worker stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case task := <-w.queue:
			w.processTask(ctx, task)
		}
	}
}

func (w *SheetsWorker) processTask(ctx context.Context, task SheetTask) {
	var err error
	for attempt := 1; attempt <= w.retryPolicy.MaxRetries; attempt++ {
		err = w.handleSheetTask(ctx, task)
		if err == nil {
			return
		}
		if ctx.Err() != nil {
			return
		}

		delay := w.retryPolicy.NextDelay(attempt)
		w.logger.Warn().
			Err(err).
			Str("task_type", task.Type).
			Int64("booking_id", task.BookingID).
			Int("attempt", attempt).
			Dur("retry_in", delay).
			Msg("sheets task failed, will retry")

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}

	w.logger.Error().
		Err(err).
		Str("task_type", task.Type).
		Int64("booking_id", task.BookingID).
		Msg("sheets task dropped after max retries")
}

func (w *SheetsWorker) handleSheetTask(ctx context.Context, task SheetTask) error {
	switch task.Type {
	case TaskAppend:
		if task.Booking == nil {
			return errors.New("booking payload missing")
		}
		return w.sheets.AppendBooking(ctx, task.Booking)
	case TaskDelete:
		if task.BookingID == 0 {
			return errors.New("booking id missing")
		}
		return w.sheets.DeleteBookingRow(ctx, task.BookingID)
	case TaskReplaceAll:
		bookings, err := w.store.GetAllBookings(ctx)
		if err != nil {
			return fmt.Errorf("load bookings: %w", err)
		}
		return w.sheets.ReplaceBookingsSheet(ctx, bookings)
	default:
		return fmt.Errorf("unknown task type: %s", task.Type)
	}
}
