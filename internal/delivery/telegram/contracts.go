package telegram

import (
	"context"

	"github.com/aliskhannn/certprep-bot/internal/domain/entities"
	"github.com/aliskhannn/certprep-bot/internal/infra/postgres/repository"
	"github.com/aliskhannn/certprep-bot/internal/service"
)

type UserService interface {
	EnsureUser(ctx context.Context, userID, chatID int64) (bool, error)
	Deactivate(ctx context.Context, userID int64) error
}

type SettingsService interface {
	GetOrCreate(ctx context.Context, userID int64) (*entities.UserSettings, error)
	UpdateLanguage(ctx context.Context, userID int64, lang entities.Language) error
	UpdateCertification(ctx context.Context, userID int64, certificationID string) error
	UpdateQuizMode(ctx context.Context, userID int64, quizMode string) error
}

type ProgressService interface {
	GetProgress(ctx context.Context, userID int64, certificationID string) (*repository.AttemptStats, error)
}

type QuizService interface {
	StartQuiz(ctx context.Context, req service.QuizRequest) (*service.ActiveQuiz, error)
}

type QuizStorage interface {
	Store(chatID int64, quiz *service.ActiveQuiz) *service.ActiveQuiz
	Get(chatID int64) (*service.ActiveQuiz, bool)
	Delete(chatID int64, quiz *service.ActiveQuiz)
	ToggleDraft(chatID int64, label string) []string
	Draft(chatID int64) []string
	ClearDraft(chatID int64)
}

type CertificationCatalog interface {
	Certification(id string) (entities.Certification, bool)
	CertificationIDs() []string
}
