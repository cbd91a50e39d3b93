package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/certprep-bot/internal/domain/entities"
	"github.com/aliskhannn/certprep-bot/internal/infra/postgres"
)

// TxRunner runs a function inside a transaction.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error
}

// AttemptRepository stores answers and finished attempts.
type AttemptRepository struct {
	db postgres.DBTX
	tx TxRunner
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(db postgres.DBTX, tx TxRunner) *AttemptRepository {
	return &AttemptRepository{db: db, tx: tx}
}

// RecordAnswer saves one answer. A repeated answer to the same question replaces the earlier one.
func (r *AttemptRepository) RecordAnswer(ctx context.Context, rec entities.AnswerRecord) error {
	query := `
		INSERT INTO attempt_answers (
			session_id, user_id, content_id, selection, is_correct, elapsed_ms, answered_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (session_id, content_id) DO UPDATE SET
			selection = EXCLUDED.selection,
			is_correct = EXCLUDED.is_correct,
			elapsed_ms = EXCLUDED.elapsed_ms,
			answered_at = EXCLUDED.answered_at
	`

	_, err := r.db.Exec(
		ctx,
		query,
		rec.SessionID,
		rec.UserID,
		rec.ContentID,
		rec.Selection,
		rec.IsCorrect,
		rec.Elapsed.Milliseconds(),
		rec.AnswerAt,
	)
	if err != nil {
		return fmt.Errorf("record answer: %w", err)
	}

	return nil
}

// CompleteAttempt saves the attempt and its domain breakdown in one transaction.
func (r *AttemptRepository) CompleteAttempt(ctx context.Context, rec entities.AttemptRecord) error {
	return r.tx.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		query := `
			INSERT INTO attempts (
				session_id, user_id, certification_id, correct, total,
				score, degraded, started_at, completed_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`

		_, err := tx.Exec(
			ctx,
			query,
			rec.SessionID,
			rec.UserID,
			rec.CertificationID,
			rec.Correct,
			rec.Total,
			rec.Score,
			rec.Degraded,
			rec.StartedAt,
			rec.CompletedAt,
		)
		if err != nil {
			return fmt.Errorf("insert attempt: %w", err)
		}

		batch := &pgx.Batch{}
		for _, d := range rec.Breakdown {
			batch.Queue(`
				INSERT INTO attempt_domains (session_id, domain, correct, total)
				VALUES ($1, $2, $3, $4)
			`, rec.SessionID, string(d.Domain), d.Correct, d.Total)
		}
		if batch.Len() == 0 {
			return nil
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert attempt domains: %w", err)
		}

		return nil
	})
}

// AttemptStats summarizes a user's finished attempts for one certification.
type AttemptStats struct {
	Attempts  int
	BestScore int
	LastScore int
}

// GetStats returns attempt statistics of a user for a certification.
func (r *AttemptRepository) GetStats(ctx context.Context, userID int64, certificationID string) (*AttemptStats, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(MAX(score), 0),
			COALESCE((
				SELECT score FROM attempts
				WHERE user_id = $1 AND certification_id = $2
				ORDER BY completed_at DESC
				LIMIT 1
			), 0)
		FROM attempts
		WHERE user_id = $1 AND certification_id = $2
	`

	var stats AttemptStats
	if err := r.db.QueryRow(ctx, query, userID, certificationID).Scan(
		&stats.Attempts,
		&stats.BestScore,
		&stats.LastScore,
	); err != nil {
		return nil, fmt.Errorf("get attempt stats: %w", err)
	}

	return &stats, nil
}
