package telegram

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/aliskhannn/certprep-bot/internal/domain/entities"
	"github.com/aliskhannn/certprep-bot/internal/service"
)

// handleStart greets the user and offers to start a session.
func (h *Handler) handleStart(userID int64) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		settings, err := h.settingsService.GetOrCreate(ctx, userID)
		if err != nil {
			return err
		}

		cert, ok := h.certificationFor(settings)
		if !ok {
			return h.send(newPlainMessage(chatID, msgNoAvailableQuestions))
		}

		msg := newMessage(chatID, welcomeMessage(cert))
		msg.ReplyMarkup = buildResultKeyboard()
		return h.send(msg)
	}
}

// handleQuiz starts a new session in mode, or in the user's default mode when mode is empty.
// A session already running in the chat is abandoned.
func (h *Handler) handleQuiz(userID int64, mode string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		settings, err := h.settingsService.GetOrCreate(ctx, userID)
		if err != nil {
			h.logger.Error("failed to get settings",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
			return h.send(newPlainMessage(chatID, msgSettingsUnavailable))
		}

		if mode == "" {
			mode = settings.QuizMode
		}

		tier := settings.Tier
		if tier == "" {
			tier = h.defaultTier
		}

		quiz, err := h.quizService.StartQuiz(ctx, service.QuizRequest{
			UserID:          userID,
			CertificationID: h.certificationID(settings),
			Mode:            mode,
			Tier:            tier,
			Language:        settings.Language(),
			OnExpire:        h.onExpire(chatID),
		})
		if err != nil {
			if errors.Is(err, service.ErrNoQuestionsAvailable) || errors.Is(err, service.ErrNoQuestions) {
				return h.send(newPlainMessage(chatID, msgNoAvailableQuestions))
			}
			h.logger.Error("failed to start quiz",
				zap.Int64("user_id", userID),
				zap.String("mode", mode),
				zap.Error(err),
			)
			return h.send(newPlainMessage(chatID, msgQuizUnavailable))
		}

		if prev := h.quizStorage.Store(chatID, quiz); prev != nil {
			prev.Session.Close()
		}

		return h.send(h.questionMessage(chatID, quiz))
	}
}

// handleLang switches the question language of the active session and stores it as the user's preference.
func (h *Handler) handleLang(userID int64) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		quiz, ok := h.quizStorage.Get(chatID)
		if !ok {
			settings, err := h.settingsService.GetOrCreate(ctx, userID)
			if err != nil {
				return err
			}
			lang := settings.Language().Other()
			if err := h.settingsService.UpdateLanguage(ctx, userID, lang); err != nil {
				return err
			}
			return h.send(newPlainMessage(chatID, "🌐 "+formatLanguage(lang)))
		}

		lang := quiz.ToggleLanguage()
		h.saveLanguage(ctx, userID, lang)

		return h.send(h.questionMessage(chatID, quiz))
	}
}

// handleFinish finalizes the active session and shows the result.
func (h *Handler) handleFinish() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		quiz, ok := h.quizStorage.Get(chatID)
		if !ok {
			return h.send(newPlainMessage(chatID, msgNoActiveQuiz))
		}

		res := quiz.Session.Finalize()
		h.quizStorage.Delete(chatID, quiz)

		return h.send(resultMessage(chatID, res, quiz.Certification))
	}
}

// handleProgress displays attempt statistics for the user's certification.
func (h *Handler) handleProgress(userID int64) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		settings, err := h.settingsService.GetOrCreate(ctx, userID)
		if err != nil {
			return err
		}

		cert, ok := h.certificationFor(settings)
		if !ok {
			return h.send(newPlainMessage(chatID, msgNoAvailableQuestions))
		}

		stats, err := h.progressService.GetProgress(ctx, userID, cert.ID)
		if err != nil {
			h.logger.Error("failed to get progress",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
			return h.send(newPlainMessage(chatID, msgProgressUnavailable))
		}

		msg := newMessage(chatID, formatProgress(stats, cert))
		msg.ReplyMarkup = buildResultKeyboard()
		return h.send(msg)
	}
}

// handleSettings displays user settings.
func (h *Handler) handleSettings(userID int64) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		text, kb, err := h.renderSettings(ctx, userID)
		if err != nil {
			h.logger.Error("failed to render settings",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
			return h.send(newPlainMessage(chatID, msgSettingsUnavailable))
		}

		msg := newMessage(chatID, text)
		msg.ReplyMarkup = kb
		return h.send(msg)
	}
}

// onExpire returns the callback that reports a session finished by its countdown.
func (h *Handler) onExpire(chatID int64) func(entities.ResultSummary) {
	return func(res entities.ResultSummary) {
		cert, _ := h.catalog.Certification(h.defaultCert)

		if quiz, ok := h.quizStorage.Get(chatID); ok && quiz.Session.ID() == res.SessionID {
			cert = quiz.Certification
			h.quizStorage.Delete(chatID, quiz)
		}

		h.logger.Info("session expired",
			zap.Int64("chat_id", chatID),
			zap.String("session_id", res.SessionID),
		)

		if err := h.send(resultMessage(chatID, res, cert)); isBlocked(err) {
			h.deactivate(chatID)
		}
	}
}

func (h *Handler) certificationID(settings *entities.UserSettings) string {
	if settings.CertificationID != "" {
		if _, ok := h.catalog.Certification(settings.CertificationID); ok {
			return settings.CertificationID
		}
	}
	return h.defaultCert
}

func (h *Handler) certificationFor(settings *entities.UserSettings) (entities.Certification, bool) {
	return h.catalog.Certification(h.certificationID(settings))
}

func (h *Handler) saveLanguage(ctx context.Context, userID int64, lang entities.Language) {
	if err := h.settingsService.UpdateLanguage(ctx, userID, lang); err != nil {
		h.logger.Warn("failed to save language",
			zap.Int64("user_id", userID),
			zap.String("language", string(lang)),
			zap.Error(err),
		)
	}
}
