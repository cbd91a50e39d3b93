package service

import (
	"context"
	"time"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"

	"github.com/aliskhannn/certprep-bot/internal/domain/entities"
)

const defaultPersistTimeout = 5 * time.Second

// AsyncRecorder sends session events to an AttemptRepository in the background.
// Each event is delivered at most once: failures are logged and never retried.
type AsyncRecorder struct {
	repo    AttemptRepository
	timeout time.Duration
	logger  *zap.Logger
	wg      conc.WaitGroup
}

// NewAsyncRecorder creates a new AsyncRecorder.
func NewAsyncRecorder(repo AttemptRepository, timeout time.Duration, logger *zap.Logger) *AsyncRecorder {
	if timeout <= 0 {
		timeout = defaultPersistTimeout
	}
	return &AsyncRecorder{
		repo:    repo,
		timeout: timeout,
		logger:  logger,
	}
}

// RecordAnswer stores an answer without blocking the caller.
func (r *AsyncRecorder) RecordAnswer(rec entities.AnswerRecord) {
	r.wg.Go(func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		if err := r.repo.RecordAnswer(ctx, rec); err != nil {
			r.logger.Warn("failed to record answer",
				zap.String("session_id", rec.SessionID),
				zap.String("content_id", rec.ContentID),
				zap.Error(err),
			)
		}
	})
}

// CompleteAttempt stores a finished attempt without blocking the caller.
func (r *AsyncRecorder) CompleteAttempt(rec entities.AttemptRecord) {
	r.wg.Go(func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		if err := r.repo.CompleteAttempt(ctx, rec); err != nil {
			r.logger.Warn("failed to complete attempt",
				zap.String("session_id", rec.SessionID),
				zap.Int("score", rec.Score),
				zap.Error(err),
			)
			return
		}

		r.logger.Info("attempt completed",
			zap.String("session_id", rec.SessionID),
			zap.Int("correct", rec.Correct),
			zap.Int("total", rec.Total),
			zap.Int("score", rec.Score),
		)
	})
}

// Wait blocks until every in-flight call has returned. Used on shutdown.
func (r *AsyncRecorder) Wait() {
	r.wg.Wait()
}

type discardSink struct{}

func (discardSink) RecordAnswer(entities.AnswerRecord)     {}
func (discardSink) CompleteAttempt(entities.AttemptRecord) {}
