package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aliskhannn/certprep-bot/internal/domain/entities"
	"github.com/aliskhannn/certprep-bot/internal/infra/postgres"
)

// QuestionRepository reads raw question records from the questions table.
// correct_answer and required_selection_count are JSONB columns and are passed
// through undecoded.
type QuestionRepository struct {
	db postgres.DBTX
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(db postgres.DBTX) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// Fetch returns the records matching the filter. Shuffling orders rows by a hash
// of content id and seed, so both languages of a seed share one order.
func (r *QuestionRepository) Fetch(ctx context.Context, filter entities.QuestionFilter) ([]entities.RawQuestion, error) {
	query, args := buildFetchQuery(filter)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var out []entities.RawQuestion
	for rows.Next() {
		var (
			q        entities.RawQuestion
			required []byte
			answer   []byte
		)
		if err := rows.Scan(
			&q.ID,
			&q.CertificationID,
			&q.Domain,
			&q.Tier,
			&q.Language,
			&q.Question,
			&q.OptionA,
			&q.OptionB,
			&q.OptionC,
			&q.OptionD,
			&q.OptionE,
			&answer,
			&required,
			&q.Explanation,
		); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.CorrectAnswer = answer
		q.RequiredSelectionCount = required
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}

	return out, nil
}

func buildFetchQuery(f entities.QuestionFilter) (string, []any) {
	var (
		where = []string{"LOWER(certification_id) = LOWER($1)"}
		args  = []any{f.CertificationID}
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.Language != "" {
		where = append(where, "language = "+arg(string(f.Language)))
	}

	switch strings.ToLower(strings.TrimSpace(f.Tier)) {
	case "":
	case entities.TierPremium:
		where = append(where, "tier IN ('free', 'premium', '')")
	case entities.TierFree:
		where = append(where, "tier IN ('free', '')")
	default:
		where = append(where, "tier = "+arg(strings.ToLower(f.Tier)))
	}

	if len(f.Domains) > 0 {
		domains := make([]string, 0, len(f.Domains))
		for _, d := range f.Domains {
			domains = append(domains, string(entities.ParseDomain(string(d))))
		}
		where = append(where, "UPPER(domain) = ANY("+arg(domains)+")")
	}

	order := "id"
	if f.Shuffle {
		order = "md5(content_id || ':' || " + arg(strconv.FormatInt(f.Seed, 10)) + ")"
	}

	query := `
		SELECT id, certification_id, domain, tier, language, question,
		       option_a, option_b, option_c, option_d, COALESCE(option_e, ''),
		       correct_answer, required_selection_count, COALESCE(explanation, '')
		FROM questions
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY ` + order

	if f.Limit > 0 {
		query += " LIMIT " + arg(f.Limit)
	}

	return query, args
}
