package bot

import (
	"context"
	"fmt"
	"time"

	"museobot/internal/config"
	"museobot/internal/conversation"
	"museobot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Bot drives the booking conversation over Telegram. Free-text steps go
// through the engine as-is; the date and slot steps use inline keyboards.
type Bot struct {
	api      *tgbotapi.BotAPI
	config   *config.Config
	engine   *conversation.Engine
	sessions *service.SessionService
	bookings *service.BookingService
	logger   *zerolog.Logger
}

func NewBot(token string, cfg *config.Config, engine *conversation.Engine, sessions *service.SessionService, bookings *service.BookingService, logger *zerolog.Logger) (*Bot, error) {
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	botAPI.Debug = cfg.Telegram.Debug

	return &Bot{
		api:      botAPI,
		config:   cfg,
		engine:   engine,
		sessions: sessions,
		bookings: bookings,
		logger:   logger,
	}, nil
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	b.logger.Info().Str("username", b.api.Self.UserName).Msg("Authorized on account")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info().Msg("Bot stopping...")
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			updateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)

			requestID := uuid.New().String()
			l := b.logger.With().Str("request_id", requestID).Logger()

			b.handleUpdate(updateCtx, &l, update)
			cancel()
		}
	}
}

// sessionKey maps a Telegram chat to a conversation session id.
func sessionKey(chatID int64) string {
	return fmt.Sprintf("tg:%d", chatID)
}

func (b *Bot) isManager(userID int64) bool {
	for _, id := range b.config.Managers {
		if id == userID {
			return true
		}
	}
	return false
}

func (b *Bot) send(chatID int64, text string) {
	if text == "" {
		return
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("send message")
	}
}

func (b *Bot) sendWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("send keyboard message")
	}
}
