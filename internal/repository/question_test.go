package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/aliskhannn/certprep-bot/internal/domain/entities"
)

const bankJSON = `{
  "questions": [
    {"id": "q1-en", "certification_id": "saa-c03", "domain": "secure", "tier": "free", "language": "en", "question": "one", "option_a": "a", "option_b": "b", "correct_answer": "A"},
    {"id": "q1-pt", "certification_id": "saa-c03", "domain": "secure", "tier": "free", "language": "pt", "question": "um", "option_a": "a", "option_b": "b", "correct_answer": "A"},
    {"id": "q2-en", "certification_id": "SAA-C03", "domain": "Cost", "tier": "premium", "language": "en", "question": "two", "option_a": "a", "option_b": "b", "correct_answer": ["B"]},
    {"id": "q3-en", "certification_id": "saa-c03", "domain": "resilient", "tier": "", "language": "en", "question": "three", "option_a": "a", "option_b": "b", "correct_answer": "A|B", "required_selection_count": "2"},
    {"id": "c1-en", "certification_id": "clf-c02", "domain": "cloud", "tier": "free", "language": "en", "question": "four", "option_a": "a", "option_b": "b", "correct_answer": "A"}
  ]
}`

func writeBank(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "questions.json")
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write bank: %v", err)
	}
	return path
}

func ids(qs []entities.RawQuestion) []string {
	out := make([]string, 0, len(qs))
	for _, q := range qs {
		out = append(out, q.ID)
	}
	return out
}

func TestNewQuestionRepository(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{name: "valid", data: bankJSON},
		{name: "empty", data: `{"questions": []}`, wantErr: ErrEmptyQuestionBank},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewQuestionRepository(writeBank(t, tc.data))
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("NewQuestionRepository() error = %v, want %v", err, tc.wantErr)
			}
		})
	}

	t.Run("malformed", func(t *testing.T) {
		if _, err := NewQuestionRepository(writeBank(t, `{"questions": [`)); err == nil {
			t.Fatal("NewQuestionRepository() error = nil, want error")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewQuestionRepository(filepath.Join(t.TempDir(), "nope.json"))
		if !errors.Is(err, os.ErrNotExist) {
			t.Fatalf("NewQuestionRepository() error = %v, want os.ErrNotExist", err)
		}
	})
}

func TestQuestionRepository_Fetch(t *testing.T) {
	repo, err := NewQuestionRepository(writeBank(t, bankJSON))
	if err != nil {
		t.Fatalf("NewQuestionRepository() error = %v", err)
	}

	tests := []struct {
		name   string
		filter entities.QuestionFilter
		want   []string
	}{
		{
			name:   "certification is case insensitive",
			filter: entities.QuestionFilter{CertificationID: "saa-c03"},
			want:   []string{"q1-en", "q1-pt", "q2-en", "q3-en"},
		},
		{
			name:   "language",
			filter: entities.QuestionFilter{CertificationID: "saa-c03", Language: entities.LanguagePT},
			want:   []string{"q1-pt"},
		},
		{
			name:   "free tier",
			filter: entities.QuestionFilter{CertificationID: "saa-c03", Language: entities.LanguageEN, Tier: "free"},
			want:   []string{"q1-en", "q3-en"},
		},
		{
			name:   "premium tier",
			filter: entities.QuestionFilter{CertificationID: "saa-c03", Language: entities.LanguageEN, Tier: "premium"},
			want:   []string{"q1-en", "q2-en", "q3-en"},
		},
		{
			name:   "domains",
			filter: entities.QuestionFilter{CertificationID: "saa-c03", Domains: []entities.Domain{"COST", "resilient"}},
			want:   []string{"q2-en", "q3-en"},
		},
		{
			name:   "limit",
			filter: entities.QuestionFilter{CertificationID: "saa-c03", Language: entities.LanguageEN, Limit: 2},
			want:   []string{"q1-en", "q2-en"},
		},
		{
			name:   "unknown certification",
			filter: entities.QuestionFilter{CertificationID: "dva-c02"},
			want:   []string{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := repo.Fetch(context.Background(), tc.filter)
			if err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}
			if !slices.Equal(ids(got), tc.want) {
				t.Fatalf("Fetch() = %v, want %v", ids(got), tc.want)
			}
		})
	}
}

func TestQuestionRepository_FetchErrors(t *testing.T) {
	repo := NewQuestionRepositoryFromRecords([]entities.RawQuestion{{ID: "q1", CertificationID: "saa-c03"}})

	if _, err := repo.Fetch(context.Background(), entities.QuestionFilter{}); !errors.Is(err, ErrMissingFilter) {
		t.Fatalf("Fetch() error = %v, want ErrMissingFilter", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := repo.Fetch(ctx, entities.QuestionFilter{CertificationID: "saa-c03"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("Fetch() error = %v, want context.Canceled", err)
	}
}

func TestQuestionRepository_SeededShuffle(t *testing.T) {
	var records []entities.RawQuestion
	for _, id := range []string{"q1", "q2", "q3", "q4", "q5", "q6", "q7", "q8"} {
		for _, lang := range entities.SupportedLanguages {
			records = append(records, entities.RawQuestion{
				ID:              id + "-" + string(lang),
				CertificationID: "saa-c03",
				Language:        string(lang),
			})
		}
	}
	// Input order must not matter.
	slices.Reverse(records)
	repo := NewQuestionRepositoryFromRecords(records)

	fetch := func(lang entities.Language, seed int64) []string {
		got, err := repo.Fetch(context.Background(), entities.QuestionFilter{
			CertificationID: "saa-c03",
			Language:        lang,
			Shuffle:         true,
			Seed:            seed,
		})
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		out := make([]string, 0, len(got))
		for _, q := range got {
			out = append(out, q.ID[:2])
		}
		return out
	}

	en := fetch(entities.LanguageEN, 99)
	pt := fetch(entities.LanguagePT, 99)
	if !slices.Equal(en, pt) {
		t.Fatalf("orders differ between languages: %v vs %v", en, pt)
	}
	if again := fetch(entities.LanguageEN, 99); !slices.Equal(en, again) {
		t.Fatalf("same seed gave different orders: %v vs %v", en, again)
	}
	if len(en) != 8 {
		t.Fatalf("len = %d, want 8", len(en))
	}
}

func TestQuestionRepository_Certifications(t *testing.T) {
	repo, err := NewQuestionRepository(writeBank(t, bankJSON))
	if err != nil {
		t.Fatalf("NewQuestionRepository() error = %v", err)
	}

	if got, want := repo.Certifications(), []string{"clf-c02", "saa-c03"}; !slices.Equal(got, want) {
		t.Fatalf("Certifications() = %v, want %v", got, want)
	}
}
