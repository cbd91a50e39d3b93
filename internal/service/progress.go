package service

import (
	"context"

	"github.com/aliskhannn/certprep-bot/internal/infra/postgres/repository"
)

type ProgressRepository interface {
	GetStats(ctx context.Context, userID int64, certificationID string) (*repository.AttemptStats, error)
}

type ProgressService struct {
	repository ProgressRepository
}

func NewProgressService(repository ProgressRepository) *ProgressService {
	return &ProgressService{repository: repository}
}

// GetProgress returns the finished attempts summary of a user for a certification.
func (s *ProgressService) GetProgress(ctx context.Context, userID int64, certificationID string) (*repository.AttemptStats, error) {
	return s.repository.GetStats(ctx, userID, certificationID)
}
