package telegram

import (
	"context"
	"errors"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/certprep-bot/internal/domain/entities"
)

type Handler struct {
	bot             *tgbotapi.BotAPI
	logger          *zap.Logger
	userService     UserService
	settingsService SettingsService
	progressService ProgressService
	quizService     QuizService
	quizStorage     QuizStorage
	catalog         CertificationCatalog
	defaultCert     string
	defaultTier     string
}

func NewHandler(
	bot *tgbotapi.BotAPI,
	logger *zap.Logger,
	userService UserService,
	settingsService SettingsService,
	progressService ProgressService,
	quizService QuizService,
	quizStorage QuizStorage,
	catalog CertificationCatalog,
	defaultCert string,
	defaultTier string,
) *Handler {
	return &Handler{
		bot:             bot,
		logger:          logger,
		userService:     userService,
		settingsService: settingsService,
		progressService: progressService,
		quizService:     quizService,
		quizStorage:     quizStorage,
		catalog:         catalog,
		defaultCert:     defaultCert,
		defaultTier:     defaultTier,
	}
}

func (h *Handler) Run(ctx context.Context) error {
	h.logger.Info("telegram handler started")
	defer h.logger.Info("telegram handler stopped")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)
	defer h.bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update := <-updates:
			h.handleUpdate(ctx, update)
		}
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		h.logger.Debug("callback received",
			zap.Int64("user_id", update.CallbackQuery.From.ID),
			zap.String("data", update.CallbackQuery.Data),
		)
		h.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil || update.Message.From == nil {
		h.logger.Debug("update without message and callback")
		return
	}

	h.logger.Debug("update received",
		zap.Int64("chat_id", update.Message.Chat.ID),
		zap.String("text", update.Message.Text),
	)

	from := update.Message.From
	chatID := update.Message.Chat.ID

	isNew, err := h.userService.EnsureUser(ctx, from.ID, chatID)
	if err != nil {
		h.logger.Error("failed to ensure user",
			zap.Int64("user_id", from.ID),
			zap.Error(err),
		)
	} else if isNew {
		h.logger.Info("new user registered", zap.Int64("user_id", from.ID))
	}

	if !update.Message.IsCommand() {
		_ = h.send(newPlainMessage(chatID, msgUnknownCommand))
		return
	}

	switch update.Message.Command() {
	case "start":
		_ = h.withErrorHandling(h.handleStart(from.ID))(ctx, chatID)

	case "quiz":
		_ = h.withErrorHandling(h.handleQuiz(from.ID, ""))(ctx, chatID)

	case "practice":
		_ = h.withErrorHandling(h.handleQuiz(from.ID, entities.ModePractice))(ctx, chatID)

	case "exam":
		_ = h.withErrorHandling(h.handleQuiz(from.ID, entities.ModeExam))(ctx, chatID)

	case "lang":
		_ = h.withErrorHandling(h.handleLang(from.ID))(ctx, chatID)

	case "finish":
		_ = h.withErrorHandling(h.handleFinish())(ctx, chatID)

	case "progress":
		_ = h.withErrorHandling(h.handleProgress(from.ID))(ctx, chatID)

	case "settings":
		_ = h.withErrorHandling(h.handleSettings(from.ID))(ctx, chatID)

	default:
		_ = h.send(newPlainMessage(chatID, msgUnknownCommand))
	}
}

func (h *Handler) send(c tgbotapi.Chattable) error {
	if _, err := h.bot.Send(c); err != nil {
		h.logger.Error("failed to send telegram message",
			zap.Error(err),
		)
		return err
	}
	return nil
}

// isBlocked reports whether Telegram refused delivery because the user blocked the bot.
func isBlocked(err error) bool {
	var tgErr *tgbotapi.Error
	return errors.As(err, &tgErr) && tgErr.Code == http.StatusForbidden
}

// deactivate marks the owner of a private chat inactive. Private chat ids equal user ids.
func (h *Handler) deactivate(chatID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.userService.Deactivate(ctx, chatID); err != nil {
		h.logger.Warn("failed to deactivate user",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
		return
	}
	h.logger.Info("user deactivated", zap.Int64("chat_id", chatID))
}
