package bot

import (
	"context"
	"errors"
	"strings"
	"time"

	"museobot/internal/conversation"
	"museobot/internal/metrics"
	"museobot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func (b *Bot) handleUpdate(ctx context.Context, logger *zerolog.Logger, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, logger, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, logger, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, logger *zerolog.Logger, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	key := sessionKey(chatID)

	allowed, err := b.sessions.CheckRateLimit(ctx, key, b.config.Chat.RateLimitMessages, b.config.Chat.RateLimitWindow)
	if err == nil && !allowed {
		b.send(chatID, "You're sending messages too quickly. Please wait a moment.")
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, logger, msg)
		return
	}

	session, err := b.sessions.GetSession(ctx, key)
	if err != nil {
		logger.Error().Err(err).Msg("load session")
		b.send(chatID, conversation.MsgServerTrouble)
		return
	}
	if session == nil {
		session = b.engine.NewSession(key)
	}

	replies := b.engine.HandleMessage(ctx, session, msg.Text)
	metrics.IncChatTurn(session.Step)

	if err := b.sessions.SaveSession(ctx, session); err != nil {
		logger.Error().Err(err).Msg("save session")
		b.send(chatID, conversation.MsgServerTrouble)
		return
	}

	b.deliver(ctx, chatID, session, replies)
}

func (b *Bot) handleCommand(ctx context.Context, logger *zerolog.Logger, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		session := b.engine.NewSession(sessionKey(chatID))
		if err := b.sessions.SaveSession(ctx, session); err != nil {
			logger.Error().Err(err).Msg("save session")
			b.send(chatID, conversation.MsgServerTrouble)
			return
		}
		b.send(chatID, conversation.MsgGreeting)

	case "export":
		if msg.From == nil || !b.isManager(msg.From.ID) {
			b.send(chatID, "This command is only available to museum staff.")
			return
		}
		b.handleExport(ctx, logger, chatID)

	default:
		b.send(chatID, "I don't know that command. Send /start to book a museum ticket.")
	}
}

func (b *Bot) handleCallback(ctx context.Context, logger *zerolog.Logger, cb *tgbotapi.CallbackQuery) {
	callback := tgbotapi.NewCallback(cb.ID, "")
	if _, err := b.api.Request(callback); err != nil {
		logger.Error().Err(err).Msg("answer callback")
	}

	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID
	key := sessionKey(chatID)

	session, err := b.sessions.GetSession(ctx, key)
	if err != nil || session == nil {
		b.send(chatID, "Your session has expired. Send /start to begin again.")
		return
	}

	var echo string
	var replies []string

	switch {
	case strings.HasPrefix(cb.Data, "cal:"):
		// Month navigation: redraw the calendar in place.
		year, month, ok := parseMonthRef(strings.TrimPrefix(cb.Data, "cal:"))
		if !ok {
			return
		}
		edit := tgbotapi.NewEditMessageReplyMarkup(chatID, cb.Message.MessageID, calendarKeyboard(year, month))
		if _, err := b.api.Request(edit); err != nil {
			logger.Error().Err(err).Msg("edit calendar")
		}
		return

	case strings.HasPrefix(cb.Data, "date:"):
		date, perr := time.Parse(models.DateLayout, strings.TrimPrefix(cb.Data, "date:"))
		if perr != nil {
			return
		}
		echo, replies, err = b.engine.SelectDate(session, date)

	case strings.HasPrefix(cb.Data, "slot:"):
		slot, perr := models.ParseSlot(strings.TrimPrefix(cb.Data, "slot:"))
		if perr != nil {
			return
		}
		echo, replies, err = b.engine.SelectSlot(session, slot)

	default:
		return
	}

	if errors.Is(err, conversation.ErrWrongStep) {
		// Stale keyboard from an earlier step; just ignore the tap.
		return
	}

	metrics.IncChatTurn(session.Step)
	if err := b.sessions.SaveSession(ctx, session); err != nil {
		logger.Error().Err(err).Msg("save session")
		b.send(chatID, conversation.MsgServerTrouble)
		return
	}

	if echo != "" {
		b.send(chatID, "You selected: "+echo)
	}
	b.deliver(ctx, chatID, session, replies)
}

// deliver sends the engine replies and, when the session asks for one,
// follows up with the matching picker keyboard.
func (b *Bot) deliver(ctx context.Context, chatID int64, session *models.Session, replies []string) {
	for _, reply := range replies {
		b.send(chatID, reply)
	}

	switch {
	case session.ShowDatePicker:
		now := time.Now()
		b.sendWithKeyboard(chatID, "Pick a date:", calendarKeyboard(now.Year(), int(now.Month())))
	case session.ShowSlotPicker:
		b.sendWithKeyboard(chatID, "Pick a time slot:", b.slotKeyboard(ctx, session))
	}
}
