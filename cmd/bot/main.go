package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"museobot/internal/api"
	"museobot/internal/bot"
	"museobot/internal/config"
	"museobot/internal/conversation"
	"museobot/internal/database"
	"museobot/internal/domain"
	"museobot/internal/events"
	"museobot/internal/google"
	"museobot/internal/logging"
	"museobot/internal/repository"
	"museobot/internal/service"
	"museobot/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	loadStaff(cfg, &logger)

	if err := prepareDirectories(cfg, &logger); err != nil {
		return err
	}

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка инициализации базы данных")
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, sessionService := initSessions(ctx, cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	sheetsService := initGoogleSheets(cfg, &logger)

	// Запускаем воркер синхронизации Google Sheets
	var syncWorker domain.SyncWorker
	if sheetsService != nil {
		retryPolicy := worker.RetryPolicy{MaxRetries: 5, InitialDelay: 2 * time.Second, MaxDelay: time.Minute, BackoffFactor: 2}
		sheetsWorker := worker.NewSheetsWorker(sheetsService, db, retryPolicy, &logger)
		go sheetsWorker.Start(ctx)
		syncWorker = sheetsWorker
	}

	eventBus := events.NewEventBus()
	bookingService := service.NewBookingService(db, eventBus, syncWorker, &logger)
	engine := conversation.New(bookingService, cfg.Chat.PaymentDelay)

	if cfg.API.Enabled {
		apiServer := api.NewHTTPServer(cfg.API, cfg.Chat, bookingService, sessionService, engine, &logger)
		go func() {
			if err := apiServer.Start(); err != nil {
				logger.Error().Err(err).Msg("API server error")
			}
		}()
		defer func() {
			_ = apiServer.Shutdown(context.Background())
		}()
	}

	return startBot(ctx, cfg, engine, sessionService, bookingService, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}
	logger := baseLogger.With().Str("component", "bot-main").Logger()

	return cfg, logger, closer, nil
}

// loadStaff merges extra manager ids from an optional staff file so the
// list can be edited without touching the main config.
func loadStaff(cfg *config.Config, logger *zerolog.Logger) {
	staffPath := os.Getenv("STAFF_PATH")
	if staffPath == "" {
		staffPath = "configs/staff.yaml"
	}

	staffData, err := os.ReadFile(staffPath)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn().Err(err).Str("staff_path", staffPath).Msg("read staff file")
		}
		return
	}

	var staffConfig struct {
		Managers []int64 `yaml:"managers"`
	}
	if err := yaml.Unmarshal(staffData, &staffConfig); err != nil {
		logger.Error().Err(err).Str("staff_path", staffPath).Msg("parse staff file")
		return
	}

	for _, id := range staffConfig.Managers {
		if !containsID(cfg.Managers, id) {
			cfg.Managers = append(cfg.Managers, id)
		}
	}
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func prepareDirectories(cfg *config.Config, logger *zerolog.Logger) error {
	if cfg == nil {
		return os.ErrInvalid
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		logger.Error().Err(err).Msg("Ошибка создания директории для базы данных")
		return err
	}
	if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
		logger.Error().Err(err).Msg("Ошибка создания директории для экспорта")
		return err
	}
	return nil
}

func initSessions(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, *service.SessionService) {
	var redisClient *redis.Client
	if cfg.Redis.Address != "" {
		redisClient = repository.NewRedisClient(cfg.Redis)
		if errPing := repository.Ping(ctx, redisClient); errPing != nil {
			logger.Warn().Err(errPing).Msg("Redis unavailable")
		}
	}

	fallbackRepo := repository.NewMemorySessionRepository(cfg.Chat.SessionTTL)
	if redisClient == nil {
		return nil, service.NewSessionService(fallbackRepo, logger)
	}

	primaryRepo := repository.NewRedisSessionRepository(redisClient, cfg.Chat.SessionTTL)
	sessionRepo := repository.NewFailoverSessionRepository(primaryRepo, fallbackRepo, logger)
	return redisClient, service.NewSessionService(sessionRepo, logger)
}

func initGoogleSheets(cfg *config.Config, logger *zerolog.Logger) *google.SheetsService {
	if cfg.Google.CredentialsFile == "" || cfg.Google.BookingsSpreadSheetID == "" {
		return nil
	}

	sheetsService, err := google.NewSheetsService(cfg.Google.CredentialsFile, cfg.Google.BookingsSpreadSheetID)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize Google Sheets service")
		return nil
	}

	logger.Info().Msg("Google Sheets service initialized successfully")
	return sheetsService
}

func startBot(
	ctx context.Context,
	cfg *config.Config,
	engine *conversation.Engine,
	sessionService *service.SessionService,
	bookingService *service.BookingService,
	logger *zerolog.Logger,
) error {
	if cfg.Telegram.BotToken == "" || cfg.Telegram.BotToken == "YOUR_BOT_TOKEN_HERE" {
		logger.Error().Msg("Задайте токен бота в config.yaml")
		return os.ErrInvalid
	}

	telegramBot, err := bot.NewBot(cfg.Telegram.BotToken, cfg, engine, sessionService, bookingService, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка создания бота")
		return err
	}

	logger.Info().Msg("Бот запущен...")
	telegramBot.Start(ctx)

	logger.Info().Msg("Shutdown complete.")
	return nil
}
