package service

import (
	"context"
	"time"

	"github.com/aliskhannn/certprep-bot/internal/domain/entities"
)

// QuestionRepository fetches raw question records for a filter.
type QuestionRepository interface {
	Fetch(ctx context.Context, filter entities.QuestionFilter) ([]entities.RawQuestion, error)
}

// AttemptRepository persists answers and finished attempts.
type AttemptRepository interface {
	RecordAnswer(ctx context.Context, rec entities.AnswerRecord) error
	CompleteAttempt(ctx context.Context, rec entities.AttemptRecord) error
}

// AnswerSink receives session events after local state has been updated.
// Implementations must not block the caller.
type AnswerSink interface {
	RecordAnswer(rec entities.AnswerRecord)
	CompleteAttempt(rec entities.AttemptRecord)
}

// Scheduler runs fn every interval until the returned stop function is called.
type Scheduler interface {
	Every(interval time.Duration, fn func()) (stop func())
}

// ScoreFunc turns a session's questions and answers into a result.
type ScoreFunc func(
	questions []entities.Question,
	answers map[string][]string,
	weights entities.DomainWeights,
) (entities.ResultSummary, error)
