package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"museobot/internal/models"
)

// CreateBooking inserts a booking without any capacity check. Used by the
// admin override path; the chatbot path goes through CreateBookingChecked.
func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	query := `INSERT INTO bookings (name, address, date, time_slot, ticket_count, created_at)
              VALUES (?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		booking.Name,
		booking.Address,
		booking.Date.Format(models.DateLayout),
		string(booking.TimeSlot),
		booking.TicketCount,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	booking.CreatedAt = now

	return nil
}

// CreateBookingChecked re-checks remaining capacity and inserts inside a
// single transaction, so two submissions for the same slot cannot both pass
// the check and overbook it.
func (db *DB) CreateBookingChecked(ctx context.Context, booking *models.Booking) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var booked int64
	queryCount := `SELECT COALESCE(SUM(ticket_count), 0) FROM bookings WHERE date = ? AND time_slot = ?`
	err = tx.QueryRowContext(ctx, queryCount,
		booking.Date.Format(models.DateLayout), string(booking.TimeSlot)).Scan(&booked)
	if err != nil {
		return fmt.Errorf("failed to check capacity in tx: %w", err)
	}

	if booked+booking.TicketCount > models.SlotCapacity {
		return ErrCapacityExceeded
	}

	queryInsert := `INSERT INTO bookings (name, address, date, time_slot, ticket_count, created_at)
                    VALUES (?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := tx.ExecContext(ctx, queryInsert,
		booking.Name,
		booking.Address,
		booking.Date.Format(models.DateLayout),
		string(booking.TimeSlot),
		booking.TicketCount,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking in tx: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id in tx: %w", err)
	}
	booking.ID = id
	booking.CreatedAt = now

	return tx.Commit()
}

// GetBookedTickets returns the ticket total committed for a (date, slot) pair.
func (db *DB) GetBookedTickets(ctx context.Context, date time.Time, slot models.TimeSlot) (int64, error) {
	query := `SELECT COALESCE(SUM(ticket_count), 0) FROM bookings WHERE date = ? AND time_slot = ?`
	var booked int64
	err := db.QueryRowContext(ctx, query, date.Format(models.DateLayout), string(slot)).Scan(&booked)
	if err != nil {
		return 0, fmt.Errorf("failed to get booked tickets: %w", err)
	}
	return booked, nil
}

// GetSlotAvailability returns booked and remaining totals for every slot on a date.
func (db *DB) GetSlotAvailability(ctx context.Context, date time.Time) ([]*models.SlotAvailability, error) {
	query := `SELECT time_slot, COALESCE(SUM(ticket_count), 0)
              FROM bookings WHERE date = ? GROUP BY time_slot`
	rows, err := db.QueryContext(ctx, query, date.Format(models.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to get slot availability: %w", err)
	}
	defer rows.Close()

	bookedBySlot := make(map[models.TimeSlot]int64)
	for rows.Next() {
		var slot string
		var booked int64
		if err := rows.Scan(&slot, &booked); err != nil {
			return nil, fmt.Errorf("failed to scan slot availability: %w", err)
		}
		bookedBySlot[models.TimeSlot(slot)] = booked
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	var availability []*models.SlotAvailability
	for _, slot := range models.AllSlots() {
		booked := bookedBySlot[slot]
		remaining := int64(models.SlotCapacity) - booked
		if remaining < 0 {
			remaining = 0
		}
		availability = append(availability, &models.SlotAvailability{
			Date:      date,
			Slot:      slot,
			Booked:    booked,
			Remaining: remaining,
		})
	}
	return availability, nil
}

// GetBooking returns a booking by ID.
func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	var booking models.Booking
	var dateStr, slotStr string
	query := `SELECT id, name, address, date, time_slot, ticket_count, created_at
              FROM bookings WHERE id = ?`
	err := db.QueryRowContext(ctx, query, id).Scan(
		&booking.ID, &booking.Name, &booking.Address, &dateStr, &slotStr,
		&booking.TicketCount, &booking.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	booking.TimeSlot = models.TimeSlot(slotStr)
	booking.Date, err = time.Parse(models.DateLayout, dateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse booking date %s: %w", dateStr, err)
	}
	return &booking, nil
}

// GetAllBookings returns every booking, newest first.
func (db *DB) GetAllBookings(ctx context.Context) ([]*models.Booking, error) {
	query := `SELECT id, name, address, date, time_slot, ticket_count, created_at
              FROM bookings ORDER BY created_at DESC, id DESC`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b := &models.Booking{}
		var dateStr, slotStr string
		err := rows.Scan(&b.ID, &b.Name, &b.Address, &dateStr, &slotStr, &b.TicketCount, &b.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		b.TimeSlot = models.TimeSlot(slotStr)
		b.Date, err = time.Parse(models.DateLayout, dateStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse booking date %s: %w", dateStr, err)
		}
		bookings = append(bookings, b)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}

// DeleteBooking removes a booking by ID. Capacity frees up implicitly since
// availability is always recomputed from live rows.
func (db *DB) DeleteBooking(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
