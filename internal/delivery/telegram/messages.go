// messages.go contains message templates and formatting functions for Telegram.

package telegram

import (
	"fmt"
	"slices"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/certprep-bot/internal/domain/entities"
	"github.com/aliskhannn/certprep-bot/internal/infra/postgres/repository"
)

// Error and status messages.
const (
	msgInternalError        = "Something went wrong. Please try again later."
	msgUnknownCommand       = "Unknown command. Available commands:\n\n/practice - untimed practice\n/exam - timed exam simulation\n/lang - switch question language\n/finish - finish the current session\n/progress - your scores\n/settings - preferences"
	msgNoActiveQuiz         = "No active session. Start one with /practice or /exam."
	msgNoAvailableQuestions = "No questions are available for this certification yet."
	msgProgressUnavailable  = "Could not load your progress. Please try again later."
	msgSettingsUnavailable  = "Could not load your settings. Please try again later."
	msgQuizUnavailable      = "Could not start a session. Please try again later."
	msgStaleKeyboard        = "This question is no longer active."
	msgAnswerRejected       = "Answer not accepted."
	msgAnswerSaved          = "Answer saved."
	msgPickMore             = "Select %d options, then submit."
	msgMarked               = "Marked for review."
	msgUnmarked             = "Mark removed."
	msgSaved                = "Saved."
)

// md escapes plain text for MarkdownV2.
func md(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, s)
}

func bold(s string) string {
	return "*" + md(s) + "*"
}

func italic(s string) string {
	return "_" + md(s) + "_"
}

// newMessage creates a message with MarkdownV2 parse mode.
func newMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	return msg
}

// newPlainMessage creates a plain message without MarkdownV2 parse mode.
func newPlainMessage(chatID int64, text string) tgbotapi.MessageConfig {
	return tgbotapi.NewMessage(chatID, text)
}

// newEdit creates an edit with MarkdownV2 parse mode.
func newEdit(chatID int64, msgID int, text string) tgbotapi.EditMessageTextConfig {
	edit := tgbotapi.NewEditMessageText(chatID, msgID, text)
	edit.ParseMode = tgbotapi.ModeMarkdownV2
	return edit
}

// welcomeMessage builds the /start message (MarkdownV2 safe).
func welcomeMessage(cert entities.Certification) string {
	var sb strings.Builder

	sb.WriteString(bold("CertPrep Bot"))
	sb.WriteString(md(" helps you practise for "))
	sb.WriteString(bold(cert.Name))
	sb.WriteString(md("."))
	sb.WriteString("\n\n")

	sb.WriteString(md("📝 /practice - answer questions at your own pace, with explanations."))
	sb.WriteString("\n")
	sb.WriteString(md(fmt.Sprintf("⏱ /exam - %d questions in %s, scored from 100 to 1000.", cert.Limit, formatDuration(cert.Duration))))
	sb.WriteString("\n")
	sb.WriteString(md("🌐 /lang - switch between English and Portuguese, even in the middle of a session."))
	sb.WriteString("\n")
	sb.WriteString(md("⚙️ /settings - language, certification and default mode."))

	return sb.String()
}

// questionView holds everything needed to render one question.
type questionView struct {
	SessionID string
	Question  entities.Question
	Index     int
	Total     int
	Answered  []string // stored answer, nil when unanswered
	Draft     []string // toggled but not yet submitted options of a multi-select question
	Marked    bool
	Remaining time.Duration
	Timed     bool
	Feedback  bool // reveal correctness and explanation of an answered question
	Language  entities.Language
}

// selection returns the options to highlight.
func (v questionView) selection() []string {
	if len(v.Draft) > 0 {
		return v.Draft
	}
	return v.Answered
}

// formatQuestion formats a question with its options (MarkdownV2 safe).
func formatQuestion(v questionView) string {
	q := v.Question

	var sb strings.Builder

	header := fmt.Sprintf("Question %d/%d · %s", v.Index+1, v.Total, q.Domain)
	if v.Timed {
		header += " · ⏱ " + formatDuration(v.Remaining)
	}
	sb.WriteString(md(header))
	if v.Marked {
		sb.WriteString(md(" 🔖"))
	}
	sb.WriteString("\n\n")

	sb.WriteString(bold(q.Stem))
	sb.WriteString("\n\n")

	selected := v.selection()
	for _, o := range q.Options {
		mark := "▫️"
		if slices.Contains(selected, o.Label) {
			mark = "🔘"
		}
		sb.WriteString(md(fmt.Sprintf("%s %s) %s", mark, o.Label, o.Text)))
		sb.WriteString("\n")
	}

	if q.IsMultiSelect() {
		sb.WriteString("\n")
		sb.WriteString(italic(fmt.Sprintf("Select %d options.", q.RequiredSelectionCount)))
	}

	if v.Feedback && v.Answered != nil {
		sb.WriteString("\n\n")
		sb.WriteString(formatFeedback(q, v.Answered))
	}

	return sb.String()
}

// formatFeedback formats correctness and explanation of an answer (MarkdownV2 safe).
func formatFeedback(q entities.Question, answer []string) string {
	var sb strings.Builder

	if slices.Equal(answer, q.AnswerKey) && len(q.AnswerKey) > 0 {
		sb.WriteString(md("✅ Correct!"))
	} else {
		sb.WriteString(md("❌ Incorrect. Correct answer: "))
		sb.WriteString(bold(strings.Join(q.AnswerKey, ", ")))
	}

	if q.Explanation != "" {
		sb.WriteString("\n\n")
		sb.WriteString(italic(q.Explanation))
	}

	return sb.String()
}

// formatResult formats a session result (MarkdownV2 safe).
func formatResult(res entities.ResultSummary, cert entities.Certification) string {
	var sb strings.Builder

	switch {
	case res.Expired:
		sb.WriteString(bold("⏰ Time is up!"))
	default:
		sb.WriteString(bold("🏁 Session finished"))
	}
	sb.WriteString("\n\n")

	verdict := "❌ Not passed"
	if res.Passed(cert.PassingScore) {
		verdict = "✅ Passed"
	}

	sb.WriteString(md("Score: "))
	sb.WriteString(bold(fmt.Sprintf("%d / 1000", res.Score)))
	sb.WriteString(md(fmt.Sprintf(" (passing %d) %s", cert.PassingScore, verdict)))
	sb.WriteString("\n")
	sb.WriteString(md(fmt.Sprintf("Correct: %d/%d (%.0f%%)", res.Correct, res.Total, res.Percent())))
	sb.WriteString("\n")
	sb.WriteString(md(buildProgressBar(res.Correct, res.Total, 10)))

	if res.Degraded {
		sb.WriteString("\n\n")
		sb.WriteString(italic("The result could not be calculated and a neutral score was recorded."))
		return sb.String()
	}

	if len(res.ByDomainTotal) > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(bold("By domain"))
		for _, d := range sortedDomains(res.ByDomainTotal) {
			sb.WriteString("\n")
			sb.WriteString(md(fmt.Sprintf("• %s: %d/%d", d, res.ByDomainCorrect[d], res.ByDomainTotal[d])))
		}
	}

	var wrong, marked []string
	for i, r := range res.Reviews {
		if !r.IsCorrect {
			wrong = append(wrong, fmt.Sprint(i+1))
		}
		if r.Marked {
			marked = append(marked, fmt.Sprint(i+1))
		}
	}
	if len(wrong) > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(md("Review: " + strings.Join(wrong, ", ")))
	}
	if len(marked) > 0 {
		sb.WriteString("\n")
		sb.WriteString(md("Marked: " + strings.Join(marked, ", ")))
	}

	return sb.String()
}

// formatProgress formats attempt statistics (MarkdownV2 safe).
func formatProgress(stats *repository.AttemptStats, cert entities.Certification) string {
	if stats.Attempts == 0 {
		return fmt.Sprintf("%s\n\n%s",
			bold("📊 "+cert.Name),
			md("No finished sessions yet. Start one with /practice or /exam."),
		)
	}

	return fmt.Sprintf(
		"%s\n\n%s\n%s\n%s\n%s",
		bold("📊 "+cert.Name),
		md(fmt.Sprintf("🧾 Sessions: %d", stats.Attempts)),
		md(fmt.Sprintf("🏆 Best score: %d", stats.BestScore)),
		md(fmt.Sprintf("🕘 Last score: %d", stats.LastScore)),
		md(fmt.Sprintf("🎯 Passing score: %d %s", cert.PassingScore, buildProgressBar(stats.BestScore, cert.PassingScore, 10))),
	)
}

// formatSettings formats the settings screen (MarkdownV2 safe).
func formatSettings(settings *entities.UserSettings, cert entities.Certification) string {
	return fmt.Sprintf(
		"%s\n\n%s\n%s\n%s",
		bold("⚙️ Settings"),
		md("🌐 Language: "+formatLanguage(settings.Language())),
		md("📚 Certification: "+cert.Name),
		md("🎲 Mode: "+formatQuizMode(settings.QuizMode)),
	)
}

// formatQuizMode formats quiz mode for display.
func formatQuizMode(mode string) string {
	switch mode {
	case entities.ModePractice:
		return "📝 Practice"
	case entities.ModeExam:
		return "⏱ Exam"
	default:
		return mode
	}
}

func formatLanguage(lang entities.Language) string {
	switch lang {
	case entities.LanguageEN:
		return "English"
	case entities.LanguagePT:
		return "Português"
	default:
		return string(lang)
	}
}

// formatDuration formats d as m:ss or h:mm:ss.
func formatDuration(d time.Duration) string {
	d = max(0, d).Round(time.Second)

	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// buildProgressBar renders a text bar of current out of total.
func buildProgressBar(current, total, length int) string {
	if total <= 0 {
		return "[" + strings.Repeat("░", length) + "]"
	}

	filled := current * length / total
	if filled > length {
		filled = length
	}

	empty := length - filled
	bar := strings.Repeat("█", filled) + strings.Repeat("░", empty)
	return fmt.Sprintf("[%s]", bar)
}

func sortedDomains(m map[entities.Domain]int) []entities.Domain {
	out := make([]entities.Domain, 0, len(m))
	for d := range m {
		out = append(out, d)
	}
	slices.Sort(out)
	return out
}
