package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"museobot/internal/database"
	"museobot/internal/metrics"
	"museobot/internal/models"
	"museobot/internal/service"
)

// bookingRequest mirrors the wire contract of the original booking form.
type bookingRequest struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	Date        string `json:"preferredDate"`
	TimeSlot    string `json:"preferredTimeSlot"`
	TicketCount int64  `json:"ticketCount"`
}

func (req *bookingRequest) toDraft() (service.Draft, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return service.Draft{}, &service.ValidationError{Field: "preferredDate"}
	}

	slot, err := models.ParseSlot(req.TimeSlot)
	if err != nil {
		return service.Draft{}, &service.ValidationError{Field: "preferredTimeSlot"}
	}

	return service.Draft{
		Name:        req.Name,
		Address:     req.Address,
		Date:        date,
		TimeSlot:    slot,
		TicketCount: req.TicketCount,
	}, nil
}

// parseDate accepts day-granularity dates, tolerating full timestamps by
// truncating them to the day.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("empty date")
	}
	if t, err := time.Parse(models.DateLayout, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listBookings(w, r)
	case http.MethodPost:
		s.createBooking(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) listBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := s.bookings.GetAllBookings(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("list bookings")
		writeError(w, http.StatusInternalServerError, "error fetching booking data")
		return
	}
	if bookings == nil {
		bookings = []*models.Booking{}
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (s *HTTPServer) createBooking(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	draft, err := req.toDraft()
	if err == nil {
		var booking *models.Booking
		booking, err = s.bookings.Submit(r.Context(), draft)
		if err == nil {
			metrics.IncSubmission("created")
			writeJSON(w, http.StatusCreated, map[string]any{
				"message": "Booking data stored successfully",
				"id":      booking.ID,
			})
			return
		}
	}

	s.writeSubmitError(w, err)
}

// handleCreateSimple is the unchecked admin override: it inserts without
// the capacity guard, exactly like the legacy createBooking path.
func (s *HTTPServer) handleCreateSimple(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	draft, err := req.toDraft()
	if err == nil {
		var booking *models.Booking
		booking, err = s.bookings.CreateUnchecked(r.Context(), draft)
		if err == nil {
			writeJSON(w, http.StatusCreated, map[string]any{
				"message": "Booking created successfully",
				"id":      booking.ID,
			})
			return
		}
	}

	s.writeSubmitError(w, err)
}

func (s *HTTPServer) writeSubmitError(w http.ResponseWriter, err error) {
	var valErr *service.ValidationError
	if errors.As(err, &valErr) {
		metrics.IncSubmission("rejected")
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	var capErr *service.CapacityError
	if errors.As(err, &capErr) {
		metrics.IncSubmission("capacity")
		suggestions := capErr.SuggestedSlots
		if suggestions == nil {
			suggestions = []models.SlotSuggestion{}
		}
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":             "Capacity exceeded",
			"remainingCapacity": capErr.RemainingCapacity,
			"suggestedSlots":    suggestions,
		})
		return
	}

	metrics.IncSubmission("failed")
	s.log.Error().Err(err).Msg("create booking")
	writeError(w, http.StatusInternalServerError, "Error storing booking data")
}

func (s *HTTPServer) handleBookingByID(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/v1/bookings/"
	idStr := strings.TrimPrefix(r.URL.Path, prefix)
	if idStr == "" || strings.Contains(idStr, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	err = s.bookings.DeleteBooking(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Booking not found")
		return
	}
	if err != nil {
		s.log.Error().Err(err).Int64("booking_id", id).Msg("delete booking")
		writeError(w, http.StatusInternalServerError, "Error deleting booking")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Booking deleted successfully"})
}

func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	date, err := parseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}

	availability, err := s.bookings.GetSlotAvailability(r.Context(), date)
	if err != nil {
		s.log.Error().Err(err).Msg("get availability")
		writeError(w, http.StatusInternalServerError, "error fetching availability")
		return
	}

	if slotParam := strings.TrimSpace(r.URL.Query().Get("slot")); slotParam != "" {
		slot, err := models.ParseSlot(slotParam)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unknown time slot")
			return
		}
		for _, a := range availability {
			if a.Slot == slot {
				writeJSON(w, http.StatusOK, a)
				return
			}
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"slots": availability})
}
