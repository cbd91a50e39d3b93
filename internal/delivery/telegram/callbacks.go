package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/certprep-bot/internal/domain/entities"
	"github.com/aliskhannn/certprep-bot/internal/service"
)

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	var notice string

	if cb.Message != nil {
		cd := decodeCallback(cb.Data)
		chatID := cb.Message.Chat.ID

		switch cd.Action {
		case actionQuiz:
			notice = h.handleQuizCallback(ctx, cb, cd)
		case actionSettings:
			notice = h.handleSettingsCallback(ctx, cb, cd)
		case actionStart:
			mode := ""
			if len(cd.Params) > 0 {
				mode = cd.Params[0]
			}
			_ = h.withErrorHandling(h.handleQuiz(cb.From.ID, mode))(ctx, chatID)
		default:
			h.logger.Debug("unknown callback", zap.String("data", cb.Data))
		}
	}

	// Remove the user's "clock".
	answer := tgbotapi.NewCallback(cb.ID, notice)
	if _, err := h.bot.Request(answer); err != nil {
		h.logger.Debug("callback answer error", zap.Error(err))
	}
}

// handleQuizCallback applies a quiz action and returns the notice to show.
func (h *Handler) handleQuizCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, cd callbackData) string {
	qc, ok := parseQuizCallback(cd)
	if !ok {
		h.logger.Debug("invalid quiz callback", zap.String("data", cd.Raw))
		return ""
	}

	chatID := cb.Message.Chat.ID
	msgID := cb.Message.MessageID

	quiz, ok := h.quizStorage.Get(chatID)
	if !ok || sessionToken(quiz.Session.ID()) != qc.Token || quiz.Session.Index() != qc.Index {
		return msgStaleKeyboard
	}

	s := quiz.Session
	q, ok := s.Current()
	if !ok {
		return msgStaleKeyboard
	}

	var notice string

	switch qc.Sub {
	case quizPick:
		if q.IsMultiSelect() {
			h.quizStorage.ToggleDraft(chatID, qc.Label)
			break
		}
		if !s.Answer(q.ContentID, []string{qc.Label}) {
			return msgAnswerRejected
		}
		notice = msgAnswerSaved

	case quizSubmit:
		draft := h.quizStorage.Draft(chatID)
		if len(draft) != q.RequiredSelectionCount {
			return fmt.Sprintf(msgPickMore, q.RequiredSelectionCount)
		}
		if !s.Answer(q.ContentID, draft) {
			return msgAnswerRejected
		}
		h.quizStorage.ClearDraft(chatID)
		notice = msgAnswerSaved

	case quizNext:
		h.quizStorage.ClearDraft(chatID)
		s.Next()

	case quizPrev:
		h.quizStorage.ClearDraft(chatID)
		s.Prev()

	case quizMark:
		marked := !s.IsMarked(q.ContentID)
		s.Mark(q.ContentID, marked)
		notice = msgUnmarked
		if marked {
			notice = msgMarked
		}

	case quizLang:
		lang := quiz.ToggleLanguage()
		h.saveLanguage(ctx, cb.From.ID, lang)

	case quizFinish:
		res := s.Finalize()
		h.quizStorage.Delete(chatID, quiz)

		edit := newEdit(chatID, msgID, formatResult(res, quiz.Certification))
		kb := buildResultKeyboard()
		edit.ReplyMarkup = &kb
		_ = h.send(edit)
		return ""
	}

	_ = h.send(h.questionEdit(chatID, msgID, quiz))
	return notice
}

// handleSettingsCallback updates a setting and re-renders the settings screen.
func (h *Handler) handleSettingsCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, cd callbackData) string {
	if len(cd.Params) == 0 {
		return ""
	}

	userID := cb.From.ID
	chatID := cb.Message.Chat.ID

	var err error
	switch sub := cd.Params[0]; {
	case sub == settingsMenu:
	case sub == settingsLanguage && len(cd.Params) == 2:
		lang, ok := entities.ParseLanguage(cd.Params[1])
		if !ok {
			return ""
		}
		err = h.settingsService.UpdateLanguage(ctx, userID, lang)
		if quiz, ok := h.quizStorage.Get(chatID); ok && err == nil {
			quiz.SwitchLanguage(lang)
		}
	case sub == settingsCert && len(cd.Params) == 2:
		if _, ok := h.catalog.Certification(cd.Params[1]); !ok {
			return ""
		}
		err = h.settingsService.UpdateCertification(ctx, userID, cd.Params[1])
	case sub == settingsQuizMode && len(cd.Params) == 2:
		err = h.settingsService.UpdateQuizMode(ctx, userID, cd.Params[1])
	default:
		return ""
	}
	if err != nil {
		h.logger.Error("failed to update settings",
			zap.Int64("user_id", userID),
			zap.String("data", cd.Raw),
			zap.Error(err),
		)
		return msgInternalError
	}

	text, kb, err := h.renderSettings(ctx, userID)
	if err != nil {
		h.logger.Error("failed to render settings",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return msgSettingsUnavailable
	}

	edit := newEdit(chatID, cb.Message.MessageID, text)
	edit.ReplyMarkup = &kb
	_ = h.send(edit)

	if cd.Params[0] == settingsMenu {
		return ""
	}
	return msgSaved
}

func (h *Handler) renderSettings(ctx context.Context, userID int64) (string, tgbotapi.InlineKeyboardMarkup, error) {
	settings, err := h.settingsService.GetOrCreate(ctx, userID)
	if err != nil {
		return "", tgbotapi.InlineKeyboardMarkup{}, err
	}

	cert, _ := h.certificationFor(settings)
	return formatSettings(settings, cert), buildSettingsKeyboard(h.catalog.CertificationIDs()), nil
}

// viewFor captures the current question of a quiz.
func (h *Handler) viewFor(chatID int64, quiz *service.ActiveQuiz) questionView {
	s := quiz.Session
	q, _ := s.Current()
	remaining, timed := s.Remaining()

	v := questionView{
		SessionID: s.ID(),
		Question:  q,
		Index:     s.Index(),
		Total:     s.Len(),
		Draft:     h.quizStorage.Draft(chatID),
		Marked:    s.IsMarked(q.ContentID),
		Remaining: remaining,
		Timed:     timed,
		Feedback:  quiz.Mode != entities.ModeExam,
		Language:  quiz.Language(),
	}
	if ans, ok := s.AnswerFor(q.ContentID); ok {
		v.Answered = ans
	}
	return v
}

func (h *Handler) questionMessage(chatID int64, quiz *service.ActiveQuiz) tgbotapi.MessageConfig {
	v := h.viewFor(chatID, quiz)
	msg := newMessage(chatID, formatQuestion(v))
	msg.ReplyMarkup = buildQuestionKeyboard(v)
	return msg
}

func (h *Handler) questionEdit(chatID int64, msgID int, quiz *service.ActiveQuiz) tgbotapi.EditMessageTextConfig {
	v := h.viewFor(chatID, quiz)
	edit := newEdit(chatID, msgID, formatQuestion(v))
	kb := buildQuestionKeyboard(v)
	edit.ReplyMarkup = &kb
	return edit
}

func resultMessage(chatID int64, res entities.ResultSummary, cert entities.Certification) tgbotapi.MessageConfig {
	msg := newMessage(chatID, formatResult(res, cert))
	msg.ReplyMarkup = buildResultKeyboard()
	return msg
}
