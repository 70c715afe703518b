package models

const (
	// SlotCapacity is the maximum total tickets sellable per (date, slot) pair.
	SlotCapacity = 15

	// TicketPrice is the price of a single ticket in dollars.
	TicketPrice = 50
)

const (
	StepGreeting       = "greeting"
	StepName           = "name"
	StepAddress        = "address"
	StepDate           = "date"
	StepTimeSlot       = "time_slot"
	StepTicketCount    = "ticket_count"
	StepPaymentConfirm = "payment_confirm"
	StepDone           = "done"
)

const (
	// DefaultSessionTTL время жизни сессии диалога в Redis
	DefaultSessionTTL = 24 * 60 * 60 // 24 часа в секундах

	// RateLimitMessages количество сообщений в окне
	RateLimitMessages = 20

	// RateLimitWindow окно ограничения частоты сообщений
	RateLimitWindow = 60 // 1 минута в секундах

	// WorkerQueueSize размер очереди воркера
	WorkerQueueSize = 1000
)

// DateLayout is the day-granularity format bookings are stored and compared at.
const DateLayout = "2006-01-02"

// DisplayDateLayout is how dates are echoed back to visitors.
const DisplayDateLayout = "January 2, 2006"
