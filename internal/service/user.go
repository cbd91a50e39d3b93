package service

import (
	"context"

	"github.com/aliskhannn/certprep-bot/internal/domain/entities"
)

type UserRepository interface {
	Save(ctx context.Context, user *entities.User) (bool, error)
	Deactivate(ctx context.Context, userID int64) error
}

type UserService struct {
	repository UserRepository
}

func NewUserService(repository UserRepository) *UserService {
	return &UserService{repository: repository}
}

// EnsureUser registers the user and reports whether it is new.
func (s *UserService) EnsureUser(ctx context.Context, userID, chatID int64) (bool, error) {
	return s.repository.Save(ctx, entities.NewUser(userID, chatID))
}

// Deactivate marks the user inactive after Telegram refused delivery.
func (s *UserService) Deactivate(ctx context.Context, userID int64) error {
	return s.repository.Deactivate(ctx, userID)
}
