package service

import (
	"context"
	"errors"

	"github.com/aliskhannn/certprep-bot/internal/domain/entities"
	"github.com/aliskhannn/certprep-bot/internal/infra/postgres/repository"
)

type SettingsRepository interface {
	Create(ctx context.Context, userID int64) error
	GetByUserID(ctx context.Context, userID int64) (*entities.UserSettings, error)
	UpdateLanguage(ctx context.Context, userID int64, languageCode string) error
	UpdateCertification(ctx context.Context, userID int64, certificationID string) error
	UpdateQuizMode(ctx context.Context, userID int64, quizMode string) error
}

type SettingsService struct {
	repository SettingsRepository
}

func NewSettingsService(repository SettingsRepository) *SettingsService {
	return &SettingsService{repository: repository}
}

func (s *SettingsService) GetOrCreate(ctx context.Context, userID int64) (*entities.UserSettings, error) {
	settings, err := s.repository.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrSettingsNotFound) {
			// Create default settings.
			if err := s.repository.Create(ctx, userID); err != nil {
				return nil, err
			}
			// Retrieve newly created settings.
			return s.repository.GetByUserID(ctx, userID)
		}
		return nil, err
	}

	return settings, nil
}

func (s *SettingsService) UpdateLanguage(ctx context.Context, userID int64, lang entities.Language) error {
	return s.repository.UpdateLanguage(ctx, userID, string(lang))
}

func (s *SettingsService) UpdateCertification(ctx context.Context, userID int64, certificationID string) error {
	return s.repository.UpdateCertification(ctx, userID, certificationID)
}

func (s *SettingsService) UpdateQuizMode(ctx context.Context, userID int64, quizMode string) error {
	switch quizMode {
	case entities.ModePractice, entities.ModeExam:
	default:
		return ErrUnknownQuizMode
	}
	return s.repository.UpdateQuizMode(ctx, userID, quizMode)
}
