package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/certprep-bot/internal/config"
	"github.com/aliskhannn/certprep-bot/internal/delivery/telegram"
	"github.com/aliskhannn/certprep-bot/internal/domain/entities"
	"github.com/aliskhannn/certprep-bot/internal/infra/postgres"
	pgrepo "github.com/aliskhannn/certprep-bot/internal/infra/postgres/repository"
	"github.com/aliskhannn/certprep-bot/internal/logger"
	"github.com/aliskhannn/certprep-bot/internal/repository"
	"github.com/aliskhannn/certprep-bot/internal/service"
	"github.com/aliskhannn/certprep-bot/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	lg, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Sync() }()

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramAPIToken)
	if err != nil {
		lg.Fatal("failed to create bot", zap.Error(err))
	}

	// Set commands.
	commands := []tgbotapi.BotCommand{
		{
			Command:     "start",
			Description: "Start the bot",
		},
		{
			Command:     "practice",
			Description: "Untimed practice session",
		},
		{
			Command:     "exam",
			Description: "Timed exam simulation",
		},
		{
			Command:     "lang",
			Description: "Switch question language (EN/PT)",
		},
		{
			Command:     "finish",
			Description: "Finish the current session",
		},
		{
			Command:     "progress",
			Description: "Show your scores",
		},
		{
			Command:     "settings",
			Description: "Settings",
		},
	}

	_, err = bot.Request(tgbotapi.NewSetMyCommands(commands...))
	if err != nil {
		lg.Warn("failed to set bot commands", zap.Error(err))
	}

	bot.Debug = cfg.Env == "local"
	lg.Info("authorized on account", zap.String("username", bot.Self.UserName))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dsn, err := cfg.DB.DSN()
	if err != nil {
		lg.Fatal("database is not configured", zap.Error(err))
	}

	pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{
		MaxConns:        int32(cfg.DB.MaxConnections),
		MaxConnLifetime: cfg.DB.MaxConnLifetime,
	})
	if err != nil {
		lg.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	// Initialize repositories.
	var questionRepo service.QuestionRepository
	switch cfg.QuestionSource {
	case config.QuestionSourcePostgres:
		questionRepo = pgrepo.NewQuestionRepository(pool)
	default:
		fileRepo, err := repository.NewQuestionRepository(cfg.QuestionsJSONPath)
		if err != nil {
			lg.Fatal("failed to load question bank",
				zap.String("path", cfg.QuestionsJSONPath),
				zap.Error(err),
			)
		}
		lg.Info("question bank loaded", zap.Strings("certifications", fileRepo.Certifications()))
		questionRepo = fileRepo
	}

	userRepo := pgrepo.NewUserRepository(pool)
	settingsRepo := pgrepo.NewSettingsRepository(pool)
	attemptRepo := pgrepo.NewAttemptRepository(pool, postgres.NewTransactor(pool))

	// Initialize services.
	scheduler := service.NewCronScheduler(lg)
	recorder := service.NewAsyncRecorder(attemptRepo, cfg.PersistTimeout, lg)
	defer recorder.Wait()

	setCache := storage.NewBilingualStorage()
	stopPurge := scheduler.Every(cfg.CacheTTL, setCache.Clear)
	defer stopPurge()

	bilingualService := service.NewBilingualService(
		questionRepo,
		service.NewNormalizer(lg),
		setCache,
		entities.Language(cfg.AnchorLanguage),
		lg,
	)
	quizService := service.NewQuizService(
		bilingualService,
		cfg,
		service.NewFinalizationGuard(service.Score, lg),
		recorder,
		scheduler,
		lg,
	)
	userService := service.NewUserService(userRepo)
	settingsService := service.NewSettingsService(settingsRepo)
	progressService := service.NewProgressService(attemptRepo)

	handler := telegram.NewHandler(
		bot,
		lg,
		userService,
		settingsService,
		progressService,
		quizService,
		storage.NewQuizStorage(),
		cfg,
		cfg.DefaultCert,
		cfg.DefaultTier,
	)
	if err := handler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		lg.Error("handler stopped with error", zap.Error(err))
	}

	lg.Info("shutdown signal received, waiting for pending writes")
}
