package telegram

import (
	"slices"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/certprep-bot/internal/domain/entities"
)

// buildQuestionKeyboard builds keyboard for a quiz question.
func buildQuestionKeyboard(v questionView) tgbotapi.InlineKeyboardMarkup {
	q := v.Question
	selected := v.selection()

	var options []tgbotapi.InlineKeyboardButton
	for _, o := range q.Options {
		text := o.Label
		if slices.Contains(selected, o.Label) {
			text = "✅ " + o.Label
		}
		options = append(options, tgbotapi.NewInlineKeyboardButtonData(
			text, buildQuizCallback(quizPick, v.SessionID, v.Index, o.Label),
		))
	}

	rows := [][]tgbotapi.InlineKeyboardButton{options}

	if q.IsMultiSelect() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📨 Submit", buildQuizCallback(quizSubmit, v.SessionID, v.Index)),
		))
	}

	var nav []tgbotapi.InlineKeyboardButton
	if v.Index > 0 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("◀️ Prev", buildQuizCallback(quizPrev, v.SessionID, v.Index)))
	}
	if v.Index < v.Total-1 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("Next ▶️", buildQuizCallback(quizNext, v.SessionID, v.Index)))
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}

	markText := "🔖 Mark"
	if v.Marked {
		markText = "🔖 Unmark"
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(markText, buildQuizCallback(quizMark, v.SessionID, v.Index)),
		tgbotapi.NewInlineKeyboardButtonData(
			"🌐 "+strings.ToUpper(string(v.Language.Other())),
			buildQuizCallback(quizLang, v.SessionID, v.Index),
		),
		tgbotapi.NewInlineKeyboardButtonData("🏁 Finish", buildQuizCallback(quizFinish, v.SessionID, v.Index)),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// buildResultKeyboard builds keyboard for the result screen.
func buildResultKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📝 Practice", buildStartCallback(entities.ModePractice)),
			tgbotapi.NewInlineKeyboardButtonData("⏱ Exam", buildStartCallback(entities.ModeExam)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⚙️ Settings", buildSettingsCallback(settingsMenu)),
		),
	)
}

// buildSettingsKeyboard builds main settings keyboard.
func buildSettingsKeyboard(certIDs []string) tgbotapi.InlineKeyboardMarkup {
	var langs []tgbotapi.InlineKeyboardButton
	for _, l := range entities.SupportedLanguages {
		langs = append(langs, tgbotapi.NewInlineKeyboardButtonData(
			"🌐 "+formatLanguage(l), buildSettingsCallback(settingsLanguage, string(l)),
		))
	}

	rows := [][]tgbotapi.InlineKeyboardButton{
		langs,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(formatQuizMode(entities.ModePractice), buildSettingsCallback(settingsQuizMode, entities.ModePractice)),
			tgbotapi.NewInlineKeyboardButtonData(formatQuizMode(entities.ModeExam), buildSettingsCallback(settingsQuizMode, entities.ModeExam)),
		),
	}

	if len(certIDs) > 1 {
		for _, id := range certIDs {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("📚 "+strings.ToUpper(id), buildSettingsCallback(settingsCert, id)),
			))
		}
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
