package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"museobot/internal/conversation"
	"museobot/internal/metrics"
	"museobot/internal/models"

	"github.com/google/uuid"
)

// chatResponse is one conversation turn as seen by the widget. Echo is the
// synthetic user message for picker selections; the picker flags tell the
// widget which input control to show next.
type chatResponse struct {
	SessionID      string   `json:"sessionId"`
	Echo           string   `json:"echo,omitempty"`
	Replies        []string `json:"replies"`
	ShowDatePicker bool     `json:"showDatePicker"`
	ShowSlotPicker bool     `json:"showSlotPicker"`
}

func (s *HTTPServer) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	session := s.engine.NewSession(uuid.New().String())
	if err := s.sessions.SaveSession(r.Context(), session); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	writeJSON(w, http.StatusCreated, chatResponse{
		SessionID: session.ID,
		Replies:   []string{conversation.MsgGreeting},
	})
}

func (s *HTTPServer) handleSessionAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	const prefix = "/api/v1/chat/sessions/"
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	sessionID, action := parts[0], parts[1]

	allowed, err := s.sessions.CheckRateLimit(r.Context(), sessionID, s.chatCfg.RateLimitMessages, s.chatCfg.RateLimitWindow)
	if err == nil && !allowed {
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	session, err := s.sessions.GetSession(r.Context(), sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	if session == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	var echo string
	var replies []string

	switch action {
	case "messages":
		var req struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		replies = s.engine.HandleMessage(r.Context(), session, req.Text)

	case "date":
		var req struct {
			Date string `json:"date"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		date, perr := parseDate(req.Date)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
			return
		}
		echo, replies, err = s.engine.SelectDate(session, date)

	case "slot":
		var req struct {
			Slot string `json:"slot"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		slot, perr := models.ParseSlot(req.Slot)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "unknown time slot")
			return
		}
		echo, replies, err = s.engine.SelectSlot(session, slot)

	default:
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if errors.Is(err, conversation.ErrWrongStep) {
		writeError(w, http.StatusConflict, "selection not expected at this step")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to process turn")
		return
	}

	if err := s.sessions.SaveSession(r.Context(), session); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save session")
		return
	}

	metrics.IncChatTurn(session.Step)
	if replies == nil {
		replies = []string{}
	}

	writeJSON(w, http.StatusOK, chatResponse{
		SessionID:      session.ID,
		Echo:           echo,
		Replies:        replies,
		ShowDatePicker: session.ShowDatePicker,
		ShowSlotPicker: session.ShowSlotPicker,
	})
}
