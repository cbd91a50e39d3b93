package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/certprep-bot/internal/domain/entities"
	"github.com/aliskhannn/certprep-bot/internal/infra/postgres"
)

var ErrSettingsNotFound = errors.New("settings not found")

// SettingsRepository provides access to user settings data in the database.
type SettingsRepository struct {
	db postgres.DBTX
}

// NewSettingsRepository creates a new SettingsRepository with the provided database pool.
func NewSettingsRepository(db postgres.DBTX) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Create creates default settings for a user.
func (r *SettingsRepository) Create(ctx context.Context, userID int64) error {
	query := `
		INSERT INTO user_settings (
			user_id, language_code, certification_id, tier, quiz_mode, created_at, updated_at
		) VALUES ($1, 'en', '', 'free', 'practice', NOW(), NOW())
		ON CONFLICT (user_id) DO NOTHING
	`

	_, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("create settings: %w", err)
	}

	return nil
}

// GetByUserID retrieves settings for a user.
func (r *SettingsRepository) GetByUserID(ctx context.Context, userID int64) (*entities.UserSettings, error) {
	query := `
		SELECT user_id, language_code, certification_id, tier, quiz_mode, created_at, updated_at
		FROM user_settings
		WHERE user_id = $1
	`

	var settings entities.UserSettings
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&settings.UserID,
		&settings.LanguageCode,
		&settings.CertificationID,
		&settings.Tier,
		&settings.QuizMode,
		&settings.CreatedAt,
		&settings.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSettingsNotFound
		}
		return nil, fmt.Errorf("get settings: %w", err)
	}

	return &settings, nil
}

// UpdateLanguage updates the display language.
func (r *SettingsRepository) UpdateLanguage(ctx context.Context, userID int64, languageCode string) error {
	return r.updateColumn(ctx, "language_code", userID, languageCode)
}

// UpdateCertification updates the selected certification.
func (r *SettingsRepository) UpdateCertification(ctx context.Context, userID int64, certificationID string) error {
	return r.updateColumn(ctx, "certification_id", userID, certificationID)
}

// UpdateQuizMode updates the quiz mode setting.
func (r *SettingsRepository) UpdateQuizMode(ctx context.Context, userID int64, quizMode string) error {
	return r.updateColumn(ctx, "quiz_mode", userID, quizMode)
}

// updateColumn sets a single text column. column is never user input.
func (r *SettingsRepository) updateColumn(ctx context.Context, column string, userID int64, value string) error {
	query := fmt.Sprintf(`
		UPDATE user_settings
		SET %s = $1, updated_at = $2
		WHERE user_id = $3
	`, column)

	result, err := r.db.Exec(ctx, query, value, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("update %s: %w", column, err)
	}

	if result.RowsAffected() == 0 {
		return ErrSettingsNotFound
	}

	return nil
}
