package entities

import (
	"time"
)

// Quiz modes a user can pick.
const (
	ModePractice = "practice" // untimed, all questions of the selection
	ModeExam     = "exam"     // timed, limited to the exam length
)

// UserSettings stores user preferences for practice sessions.
type UserSettings struct {
	UserID          int64
	LanguageCode    string // display language ("en", "pt")
	CertificationID string // last selected certification, empty when none
	Tier            string // access tier ("free", "premium")
	QuizMode        string // "practice" or "exam"
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewUserSettings creates a new UserSettings instance with default values.
func NewUserSettings(userID int64) *UserSettings {
	now := time.Now()
	return &UserSettings{
		UserID:       userID,
		LanguageCode: string(LanguageEN),
		Tier:         TierFree,
		QuizMode:     ModePractice,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Language returns the display language, defaulting to English.
func (us *UserSettings) Language() Language {
	if l, ok := ParseLanguage(us.LanguageCode); ok {
		return l
	}
	return LanguageEN
}
