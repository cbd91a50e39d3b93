package service

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/aliskhannn/certprep-bot/internal/domain/entities"
)

var errTotalMismatch = errors.New("result total does not match session length")

// FinalizationGuard runs a ScoreFunc and always returns a well-formed summary.
// Panics and errors from the scorer are logged and replaced by a neutral result.
type FinalizationGuard struct {
	score  ScoreFunc
	logger *zap.Logger
}

// NewFinalizationGuard creates a guard around score. A nil score uses Score.
func NewFinalizationGuard(score ScoreFunc, logger *zap.Logger) *FinalizationGuard {
	if score == nil {
		score = Score
	}
	return &FinalizationGuard{
		score:  score,
		logger: logger,
	}
}

// Finalize scores the session. It never panics and never returns an error.
func (g *FinalizationGuard) Finalize(
	sessionID string,
	questions []entities.Question,
	answers map[string][]string,
	weights entities.DomainWeights,
) (res entities.ResultSummary) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("scoring panicked",
				zap.String("session_id", sessionID),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			res = DegradedSummary(sessionID, len(questions))
		}
	}()

	res, err := g.score(questions, answers, weights)
	if err == nil && res.Total != len(questions) {
		err = fmt.Errorf("%w: got %d, want %d", errTotalMismatch, res.Total, len(questions))
	}
	if err != nil {
		g.logger.Error("scoring failed",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return DegradedSummary(sessionID, len(questions))
	}

	res.SessionID = sessionID
	res.Score = min(MaxScore, max(MinScore, res.Score))

	return res
}

// DegradedSummary is the neutral result used when scoring fails.
func DegradedSummary(sessionID string, total int) entities.ResultSummary {
	return entities.ResultSummary{
		SessionID:       sessionID,
		Correct:         0,
		Total:           total,
		Score:           MinScore,
		ByDomainCorrect: map[entities.Domain]int{},
		ByDomainTotal:   map[entities.Domain]int{},
		Reviews:         []entities.QuestionReview{},
		Degraded:        true,
	}
}
