// Package conversation implements the guided booking dialogue: a fixed
// sequence of prompts that collects one field per step, hands the finished
// draft to the submitter, and walks the visitor through payment
// confirmation. The engine is transport-agnostic; the HTTP chat API and the
// Telegram bot both drive it.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"museobot/internal/models"
	"museobot/internal/service"
)

const (
	MsgGreeting       = "Welcome to our museum! Would you like to book a ticket? (Yes/No)"
	MsgAskName        = "Great! May I know your name?"
	MsgAskAddress     = "Thank you! Could you please provide your address?"
	MsgAskDate        = "Please select your preferred visit date."
	MsgAskSlot        = "Please select your preferred time slot."
	MsgAskTicketCount = "How many tickets would you like to book?"
	MsgAnythingElse   = "I understand. Is there anything else I can help you with regarding our museum?"
	MsgPaymentGateway = "Great! I'll now guide you through our secure payment gateway."
	MsgPaymentDone    = "Payment successful! Your tickets have been booked. We look forward to welcoming you to our museum! Is there anything else I can help you with?"
	MsgOnHold         = "I understand. Your booking is on hold. Is there anything else I can help you with regarding our museum?"
	MsgBookingIssue   = "I apologize, but there was an issue booking your ticket. Can you please try again?"
	MsgServerTrouble  = "I apologize, but there was an error on our end. Can you please try again?"
)

// ErrWrongStep is returned when a picker selection arrives at a step that
// does not expect one.
var ErrWrongStep = errors.New("selection not expected at this step")

// Submitter persists a finished draft. Implemented by the booking service.
type Submitter interface {
	Submit(ctx context.Context, draft service.Draft) (*models.Booking, error)
}

type Engine struct {
	submitter    Submitter
	paymentDelay time.Duration
	sleep        func(time.Duration)
}

func New(submitter Submitter, paymentDelay time.Duration) *Engine {
	return &Engine{
		submitter:    submitter,
		paymentDelay: paymentDelay,
		sleep:        time.Sleep,
	}
}

// NewSession starts a conversation at the greeting step.
func (e *Engine) NewSession(id string) *models.Session {
	return &models.Session{
		ID:    id,
		Step:  models.StepGreeting,
		Draft: make(map[string]interface{}),
	}
}

// draftSubmitted marks whether the submission attempt at the payment
// confirmation step persisted a booking.
const draftSubmitted = "submitted"

// HandleMessage advances the conversation on a free-text turn. It mutates
// the session and returns the bot replies, in order. An empty reply slice
// means the turn had no effect (the done sink, or a picker step that only
// accepts structured selections).
func (e *Engine) HandleMessage(ctx context.Context, session *models.Session, text string) []string {
	input := strings.TrimSpace(text)
	if input == "" {
		return nil
	}

	switch session.Step {
	case models.StepGreeting:
		if strings.EqualFold(input, "yes") {
			session.Step = models.StepName
			return []string{MsgAskName}
		}
		// Stay open-ended; a later "yes" still starts the flow.
		return []string{MsgAnythingElse}

	case models.StepName:
		session.Set(models.DraftName, input)
		session.Step = models.StepAddress
		return []string{MsgAskAddress}

	case models.StepAddress:
		session.Set(models.DraftAddress, input)
		session.Step = models.StepDate
		session.ShowDatePicker = true
		return []string{MsgAskDate}

	case models.StepDate, models.StepTimeSlot:
		// Picker steps never accept typed text.
		return nil

	case models.StepTicketCount:
		session.Set(models.DraftTicketCount, input)
		session.Step = models.StepPaymentConfirm
		return []string{e.submit(ctx, session)}

	case models.StepPaymentConfirm:
		if submitted, _ := session.Draft[draftSubmitted].(bool); !submitted {
			// Last attempt did not persist a booking; any input retries it.
			return []string{e.submit(ctx, session)}
		}
		session.Step = models.StepDone
		if strings.EqualFold(input, "yes") {
			e.sleep(e.paymentDelay)
			return []string{MsgPaymentGateway, MsgPaymentDone}
		}
		return []string{MsgOnHold}

	default:
		// Done is a sink: turns are accepted but change nothing.
		return nil
	}
}

// SelectDate records a date-picker choice. Returns the synthetic user
// message echoing the choice plus the next prompt.
func (e *Engine) SelectDate(session *models.Session, date time.Time) (string, []string, error) {
	if session.Step != models.StepDate {
		return "", nil, ErrWrongStep
	}

	session.Set(models.DraftDate, date.Format(time.RFC3339))
	session.ShowDatePicker = false
	session.ShowSlotPicker = true
	session.Step = models.StepTimeSlot

	return date.Format(models.DisplayDateLayout), []string{MsgAskSlot}, nil
}

// SelectSlot records a slot-picker choice.
func (e *Engine) SelectSlot(session *models.Session, slot models.TimeSlot) (string, []string, error) {
	if session.Step != models.StepTimeSlot {
		return "", nil, ErrWrongStep
	}

	session.Set(models.DraftTimeSlot, string(slot))
	session.ShowSlotPicker = false
	session.Step = models.StepTicketCount

	return slot.String(), []string{MsgAskTicketCount}, nil
}

func (e *Engine) submit(ctx context.Context, session *models.Session) string {
	session.Set(draftSubmitted, false)

	draft, err := service.DraftFromSession(session)
	if err == nil {
		var booking *models.Booking
		booking, err = e.submitter.Submit(ctx, draft)
		if err == nil {
			session.Set(draftSubmitted, true)
			return fmt.Sprintf(
				"Great! I've booked %d ticket(s) for you on %s during the %s slot. Your total is $%d. Would you like to proceed to payment? (Yes/No)",
				booking.TicketCount,
				booking.Date.Format(models.DisplayDateLayout),
				booking.TimeSlot,
				booking.TotalPrice(),
			)
		}
	}

	var capErr *service.CapacityError
	if errors.As(err, &capErr) {
		return capacityMessage(capErr)
	}

	var valErr *service.ValidationError
	if errors.As(err, &valErr) {
		return MsgBookingIssue
	}

	return MsgServerTrouble
}

func capacityMessage(capErr *service.CapacityError) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I'm sorry, that time slot only has %d ticket(s) left.", capErr.RemainingCapacity)
	if len(capErr.SuggestedSlots) == 0 {
		b.WriteString(" Unfortunately the other slots for that date are full too. Can you please try another date?")
		return b.String()
	}

	b.WriteString(" These slots still have room on that date:")
	for _, s := range capErr.SuggestedSlots {
		fmt.Fprintf(&b, "\n• %s — %d ticket(s) left", s.Slot, s.RemainingCapacity)
	}
	b.WriteString("\nCan you please try again with another slot?")
	return b.String()
}
