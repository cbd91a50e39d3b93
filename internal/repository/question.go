package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"slices"
	"strings"

	"github.com/aliskhannn/certprep-bot/internal/domain/entities"
)

var (
	ErrEmptyQuestionBank = errors.New("question bank is empty")
	ErrMissingFilter     = errors.New("certification id is required")
)

// QuestionRepository provides access to a question bank loaded from a JSON file.
// Records are kept raw; answer fields are decoded by the normalizer.
type QuestionRepository struct {
	questions []entities.RawQuestion
}

// NewQuestionRepository loads the question bank from path.
func NewQuestionRepository(path string) (*QuestionRepository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	questions, err := parseQuestionBank(data)
	if err != nil {
		return nil, err
	}

	return &QuestionRepository{
		questions: questions,
	}, nil
}

// NewQuestionRepositoryFromRecords creates a repository over records already in memory.
func NewQuestionRepositoryFromRecords(questions []entities.RawQuestion) *QuestionRepository {
	return &QuestionRepository{questions: slices.Clone(questions)}
}

// Fetch returns the records matching the filter. With Shuffle set, the order is a
// permutation of id order driven by Seed, so equal seeds give equal orders in every language.
func (r *QuestionRepository) Fetch(ctx context.Context, filter entities.QuestionFilter) ([]entities.RawQuestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(filter.CertificationID) == "" {
		return nil, ErrMissingFilter
	}

	out := make([]entities.RawQuestion, 0, len(r.questions))
	for _, q := range r.questions {
		if matches(q, filter) {
			out = append(out, q)
		}
	}

	if filter.Shuffle {
		slices.SortStableFunc(out, func(a, b entities.RawQuestion) int {
			return strings.Compare(a.ID, b.ID)
		})
		rng := rand.New(rand.NewSource(filter.Seed))
		rng.Shuffle(len(out), func(i, j int) {
			out[i], out[j] = out[j], out[i]
		})
	}

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}

	return out, nil
}

// Certifications returns the certification ids present in the bank.
func (r *QuestionRepository) Certifications() []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, q := range r.questions {
		id := strings.ToLower(strings.TrimSpace(q.CertificationID))
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

func matches(q entities.RawQuestion, f entities.QuestionFilter) bool {
	if !strings.EqualFold(strings.TrimSpace(q.CertificationID), strings.TrimSpace(f.CertificationID)) {
		return false
	}

	if f.Language != "" {
		lang, ok := entities.ParseLanguage(q.Language)
		if !ok || lang != f.Language {
			return false
		}
	}

	if !entities.TierAllows(f.Tier, q.Tier) {
		return false
	}

	if len(f.Domains) > 0 {
		domain := entities.ParseDomain(q.Domain)
		if !slices.ContainsFunc(f.Domains, func(d entities.Domain) bool {
			return entities.ParseDomain(string(d)) == domain
		}) {
			return false
		}
	}

	return true
}

func parseQuestionBank(data []byte) ([]entities.RawQuestion, error) {
	var wrapper struct {
		Questions []entities.RawQuestion `json:"questions"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("failed to unmarshal questions JSON: %w", err)
	}

	if len(wrapper.Questions) == 0 {
		return nil, ErrEmptyQuestionBank
	}

	return wrapper.Questions, nil
}
