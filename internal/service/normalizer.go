package service

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/aliskhannn/certprep-bot/internal/domain/entities"
)

var (
	answerSeparators = regexp.MustCompile(`[,|;]+`)
	languageSuffix   = regexp.MustCompile(`(?i)[-_.](en|pt)(-[a-z]{2})?$`)
)

// Normalizer converts raw question records into canonical questions.
// Malformed fields never fail normalization; they degrade to empty answer sets
// and a single required selection.
type Normalizer struct {
	logger *zap.Logger
}

// NewNormalizer creates a new Normalizer.
func NewNormalizer(logger *zap.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// NormalizeAll normalizes a list of raw records, keeping their order.
func (n *Normalizer) NormalizeAll(raw []entities.RawQuestion) []entities.Question {
	out := make([]entities.Question, 0, len(raw))
	for _, r := range raw {
		q := Normalize(r)
		if len(q.AnswerKey) == 0 {
			n.logger.Debug("question has an empty answer key",
				zap.String("raw_id", r.ID),
				zap.ByteString("correct_answer", r.CorrectAnswer),
			)
		}
		out = append(out, q)
	}
	return out
}

// Normalize converts one raw record into a canonical question.
func Normalize(r entities.RawQuestion) entities.Question {
	options := buildOptions(r)

	key := filterKnownLabels(parseAnswerField(r.CorrectAnswer), options)

	required := len(key)
	if override, ok := parseSelectionCount(r.RequiredSelectionCount, len(options)); ok {
		required = override
	}
	required = max(1, required)

	lang, _ := entities.ParseLanguage(r.Language)

	return entities.Question{
		ContentID:              ContentID(r.ID),
		RawID:                  strings.TrimSpace(r.ID),
		Language:               lang,
		CertificationID:        strings.TrimSpace(r.CertificationID),
		Domain:                 entities.ParseDomain(r.Domain),
		Tier:                   strings.TrimSpace(r.Tier),
		Stem:                   strings.TrimSpace(r.Question),
		Options:                options,
		AnswerKey:              key,
		RequiredSelectionCount: required,
		Explanation:            strings.TrimSpace(r.Explanation),
	}
}

// ContentID strips a language suffix ("-en", "_pt", ".pt-br") from a raw question id.
func ContentID(rawID string) string {
	id := strings.TrimSpace(rawID)
	stripped := languageSuffix.ReplaceAllString(id, "")
	if stripped == "" {
		return id
	}
	return stripped
}

func buildOptions(r entities.RawQuestion) []entities.Option {
	texts := []string{r.OptionA, r.OptionB, r.OptionC, r.OptionD, r.OptionE}

	options := make([]entities.Option, 0, len(texts))
	for i, text := range texts {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		options = append(options, entities.Option{
			Label: string(rune('A' + i)),
			Text:  text,
		})
	}
	return options
}

// parseAnswerField decodes the answer field, which may be a JSON string with
// delimited labels, a JSON array of labels, or anything else (treated as empty).
func parseAnswerField(raw json.RawMessage) []string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}

	switch raw[0] {
	case '[':
		var items []any
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil
		}
		labels := make([]string, 0, len(items))
		for _, it := range items {
			s, ok := it.(string)
			if !ok {
				continue
			}
			labels = append(labels, s)
		}
		return normalizeLabels(labels)

	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		return normalizeLabels(answerSeparators.Split(s, -1))

	default:
		return nil
	}
}

// parseSelectionCount reads an explicit selection count given as a JSON number or numeric string.
// Only whole numbers between 1 and limit are accepted.
func parseSelectionCount(raw json.RawMessage, limit int) (int, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, false
		}
		f = float64(n)
	}

	if f < 1 || f > float64(limit) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// normalizeLabels trims, upper-cases, drops empties, deduplicates and sorts labels.
func normalizeLabels(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func filterKnownLabels(labels []string, options []entities.Option) []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if slices.ContainsFunc(options, func(o entities.Option) bool { return o.Label == l }) {
			out = append(out, l)
		}
	}
	return out
}
