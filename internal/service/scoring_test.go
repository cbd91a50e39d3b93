package service

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/aliskhannn/certprep-bot/internal/domain/entities"
)

func scoredQuestion(id string, domain entities.Domain, key ...string) entities.Question {
	return entities.Question{
		ContentID: id,
		Domain:    domain,
		Options: []entities.Option{
			{Label: "A", Text: "a"},
			{Label: "B", Text: "b"},
			{Label: "C", Text: "c"},
			{Label: "D", Text: "d"},
		},
		AnswerKey:              key,
		RequiredSelectionCount: max(1, len(key)),
	}
}

// domainSet returns n questions of one domain, the first correct of which are answered correctly.
func domainSet(domain entities.Domain, n, correct int, answers map[string][]string) []entities.Question {
	qs := make([]entities.Question, 0, n)
	for i := range n {
		q := scoredQuestion(fmt.Sprintf("%s-%d", domain, i), domain, "A")
		if i < correct {
			answers[q.ContentID] = []string{"A"}
		} else {
			answers[q.ContentID] = []string{"B"}
		}
		qs = append(qs, q)
	}
	return qs
}

var saaWeights = entities.DomainWeights{
	"SECURE":      0.30,
	"RESILIENT":   0.26,
	"PERFORMANCE": 0.24,
	"COST":        0.20,
}

func TestScore_WeightedScenario(t *testing.T) {
	answers := make(map[string][]string)

	var questions []entities.Question
	questions = append(questions, domainSet("SECURE", 4, 3, answers)...)
	questions = append(questions, domainSet("RESILIENT", 3, 2, answers)...)
	questions = append(questions, domainSet("COST", 1, 1, answers)...)

	res, err := Score(questions, answers, saaWeights)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}

	// (.30*3/4 + .26*2/3 + .20*1) / (.30 + .26 + .20)
	wantAcc := (0.30*0.75 + 0.26*2.0/3.0 + 0.20) / 0.76
	if math.Abs(res.WeightedAccuracy-wantAcc) > 1e-9 {
		t.Fatalf("WeightedAccuracy = %v, want %v", res.WeightedAccuracy, wantAcc)
	}
	if res.Score != 809 {
		t.Fatalf("Score = %d, want 809", res.Score)
	}
	if res.Correct != 6 || res.Total != 8 {
		t.Fatalf("Correct/Total = %d/%d, want 6/8", res.Correct, res.Total)
	}
	if _, ok := res.ByDomainTotal["PERFORMANCE"]; ok {
		t.Fatal("domain without questions must not appear in totals")
	}
	if res.ByDomainCorrect["SECURE"] != 3 || res.ByDomainTotal["SECURE"] != 4 {
		t.Fatalf("SECURE = %d/%d, want 3/4", res.ByDomainCorrect["SECURE"], res.ByDomainTotal["SECURE"])
	}
	if len(res.Reviews) != len(questions) {
		t.Fatalf("len(Reviews) = %d, want %d", len(res.Reviews), len(questions))
	}
}

func TestScore_Bounds(t *testing.T) {
	tests := []struct {
		name    string
		correct int
		want    int
	}{
		{name: "nothing correct", correct: 0, want: MinScore},
		{name: "everything correct", correct: 5, want: MaxScore},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			answers := make(map[string][]string)
			questions := domainSet("SECURE", 5, tc.correct, answers)

			res, err := Score(questions, answers, saaWeights)
			if err != nil {
				t.Fatalf("Score() error = %v", err)
			}
			if res.Score != tc.want {
				t.Fatalf("Score = %d, want %d", res.Score, tc.want)
			}
		})
	}
}

func TestScore_UnansweredAndEmptyKey(t *testing.T) {
	questions := []entities.Question{
		scoredQuestion("q1", "SECURE", "A"),
		scoredQuestion("q2", "SECURE"),
		scoredQuestion("q3", "COST", "B", "D"),
	}
	answers := map[string][]string{
		"q2": {"A"},
		"q3": {"d", "b"},
	}

	res, err := Score(questions, answers, nil)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}

	if res.Correct != 1 {
		t.Fatalf("Correct = %d, want 1", res.Correct)
	}
	if res.ByDomainTotal["SECURE"] != 2 {
		t.Fatalf("SECURE total = %d, want 2", res.ByDomainTotal["SECURE"])
	}
	if res.Reviews[0].UserAnswer != nil {
		t.Fatalf("unanswered review UserAnswer = %v, want nil", res.Reviews[0].UserAnswer)
	}
	if res.Reviews[1].IsCorrect {
		t.Fatal("question with empty answer key must never be correct")
	}
	if !res.Reviews[2].IsCorrect {
		t.Fatal("multi-select answer in another order must be correct")
	}

	// Equal weights: SECURE 0/2, COST 1/1.
	if res.Score != 550 {
		t.Fatalf("Score = %d, want 550", res.Score)
	}
}

func TestScore_InvalidWeight(t *testing.T) {
	tests := []struct {
		name   string
		weight float64
	}{
		{name: "negative", weight: -0.1},
		{name: "nan", weight: math.NaN()},
		{name: "inf", weight: math.Inf(1)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			answers := make(map[string][]string)
			questions := domainSet("SECURE", 2, 1, answers)

			_, err := Score(questions, answers, entities.DomainWeights{"SECURE": tc.weight})
			if !errors.Is(err, ErrInvalidWeight) {
				t.Fatalf("Score() error = %v, want ErrInvalidWeight", err)
			}
		})
	}
}

func TestWeightedAccuracy_ZeroDenominator(t *testing.T) {
	got := WeightedAccuracy(
		map[entities.Domain]int{"SECURE": 1},
		map[entities.Domain]int{"SECURE": 1},
		entities.DomainWeights{"COST": 1},
	)
	if got != 0 {
		t.Fatalf("WeightedAccuracy = %v, want 0", got)
	}

	if got := WeightedAccuracy(nil, nil, nil); got != 0 {
		t.Fatalf("WeightedAccuracy(empty) = %v, want 0", got)
	}
}

func TestScaledScore(t *testing.T) {
	tests := []struct {
		name     string
		accuracy float64
		want     int
	}{
		{name: "zero", accuracy: 0, want: 100},
		{name: "one", accuracy: 1, want: 1000},
		{name: "half", accuracy: 0.5, want: 550},
		{name: "above one", accuracy: 1.5, want: 1000},
		{name: "below zero", accuracy: -0.2, want: 100},
		{name: "nan", accuracy: math.NaN(), want: 100},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ScaledScore(tc.accuracy); got != tc.want {
				t.Fatalf("ScaledScore(%v) = %d, want %d", tc.accuracy, got, tc.want)
			}
		})
	}
}

func TestIsCorrect(t *testing.T) {
	tests := []struct {
		name      string
		selection []string
		key       []string
		want      bool
	}{
		{name: "exact", selection: []string{"A"}, key: []string{"A"}, want: true},
		{name: "case and spaces", selection: []string{" a "}, key: []string{"A"}, want: true},
		{name: "order insensitive", selection: []string{"C", "A"}, key: []string{"A", "C"}, want: true},
		{name: "missing one", selection: []string{"A"}, key: []string{"A", "C"}, want: false},
		{name: "extra one", selection: []string{"A", "B", "C"}, key: []string{"A", "C"}, want: false},
		{name: "empty key", selection: []string{"A"}, key: nil, want: false},
		{name: "both empty", selection: nil, key: nil, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsCorrect(tc.selection, tc.key); got != tc.want {
				t.Fatalf("IsCorrect(%v, %v) = %v, want %v", tc.selection, tc.key, got, tc.want)
			}
		})
	}
}
