package service

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/aliskhannn/certprep-bot/internal/domain/entities"
)

const (
	MinScore = 100
	MaxScore = 1000
)

var ErrInvalidWeight = errors.New("invalid domain weight")

// Score computes per-domain correctness and the weighted score of a session.
// A question is correct only when the selection equals the answer key as a set.
// Domains without questions are left out of the weighted accuracy entirely.
// An empty weight map gives every domain the same weight.
func Score(
	questions []entities.Question,
	answers map[string][]string,
	weights entities.DomainWeights,
) (entities.ResultSummary, error) {
	for d, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return entities.ResultSummary{}, fmt.Errorf("%w: %s=%v", ErrInvalidWeight, d, w)
		}
	}

	res := entities.ResultSummary{
		Total:           len(questions),
		ByDomainCorrect: make(map[entities.Domain]int),
		ByDomainTotal:   make(map[entities.Domain]int),
		Reviews:         make([]entities.QuestionReview, 0, len(questions)),
	}

	for _, q := range questions {
		selection, answered := answers[q.ContentID]
		correct := answered && IsCorrect(selection, q.AnswerKey)

		res.ByDomainTotal[q.Domain]++
		if correct {
			res.ByDomainCorrect[q.Domain]++
			res.Correct++
		}

		review := entities.QuestionReview{
			ContentID:     q.ContentID,
			Domain:        q.Domain,
			CorrectAnswer: normalizeKey(q.AnswerKey),
			IsCorrect:     correct,
		}
		if answered {
			review.UserAnswer = normalizeKey(selection)
		}
		res.Reviews = append(res.Reviews, review)
	}

	res.WeightedAccuracy = WeightedAccuracy(res.ByDomainCorrect, res.ByDomainTotal, weights)
	res.Score = ScaledScore(res.WeightedAccuracy)

	return res, nil
}

// WeightedAccuracy returns the weight-normalized mean of per-domain accuracy
// over domains that have at least one question.
func WeightedAccuracy(correct, total map[entities.Domain]int, weights entities.DomainWeights) float64 {
	var num, den float64
	for _, d := range slices.Sorted(maps.Keys(total)) {
		t := total[d]
		if t <= 0 {
			continue
		}
		w := 1.0
		if len(weights) > 0 {
			w = weights[d]
		}
		num += w * float64(correct[d]) / float64(t)
		den += w
	}

	if den == 0 {
		return 0
	}
	return num / den
}

// ScaledScore maps an accuracy in [0,1] to a score in [100,1000].
func ScaledScore(accuracy float64) int {
	if math.IsNaN(accuracy) {
		return MinScore
	}
	score := MinScore + int(math.Round(float64(MaxScore-MinScore)*accuracy))
	return min(MaxScore, max(MinScore, score))
}

// IsCorrect reports whether a selection matches an answer key exactly.
// An empty answer key never matches.
func IsCorrect(selection, answerKey []string) bool {
	key := normalizeKey(answerKey)
	if len(key) == 0 {
		return false
	}
	return strings.Join(normalizeKey(selection), ",") == strings.Join(key, ",")
}

func normalizeKey(labels []string) []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.ToUpper(strings.TrimSpace(l))
		if l == "" {
			continue
		}
		out = append(out, l)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
