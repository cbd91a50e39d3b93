package entities

import (
	"slices"
	"strconv"
	"strings"
)

// QuestionFilter selects questions from a question repository.
type QuestionFilter struct {
	CertificationID string   // certification to fetch questions for
	Domains         []Domain // optional domain filter, empty means all domains
	Tier            string   // access tier
	Limit           int      // optional maximum number of questions, 0 means no limit
	Shuffle         bool     // shuffle the result
	Seed            int64    // shuffle seed, equal seeds give equal order
	Language        Language // content language
}

// WithLanguage returns a copy of the filter for another language.
func (f QuestionFilter) WithLanguage(lang Language) QuestionFilter {
	f.Domains = slices.Clone(f.Domains)
	f.Language = lang
	return f
}

// CacheKey returns a key built from every filter parameter except the language,
// so both language variants of the same selection share one key.
func (f QuestionFilter) CacheKey() string {
	domains := make([]string, 0, len(f.Domains))
	for _, d := range f.Domains {
		domains = append(domains, strings.ToUpper(string(d)))
	}
	slices.Sort(domains)
	domains = slices.Compact(domains)

	return strings.Join([]string{
		f.CertificationID,
		strings.Join(domains, ","),
		f.Tier,
		strconv.Itoa(f.Limit),
		strconv.FormatBool(f.Shuffle),
		strconv.FormatInt(f.Seed, 10),
	}, "|")
}

const (
	TierFree    = "free"
	TierPremium = "premium"
)

// TierAllows reports whether a question of questionTier is visible under filterTier.
// Premium access includes free questions; an empty filter tier allows everything.
func TierAllows(filterTier, questionTier string) bool {
	filterTier = strings.ToLower(strings.TrimSpace(filterTier))
	questionTier = strings.ToLower(strings.TrimSpace(questionTier))

	switch filterTier {
	case "":
		return true
	case TierPremium:
		return questionTier == TierPremium || questionTier == TierFree || questionTier == ""
	default:
		return questionTier == filterTier || (filterTier == TierFree && questionTier == "")
	}
}
