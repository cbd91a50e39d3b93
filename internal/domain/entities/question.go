// Package entities contains domain entities used across the application.
package entities

import "encoding/json"

// Domain is a knowledge area of a certification exam, used for classification and weighted scoring.
type Domain string

// Option is a single labelled answer choice.
type Option struct {
	Label string `json:"label"` // option label: "A".."E"
	Text  string `json:"text"`  // option text shown to the user
}

// Question is the canonical multiple-choice question.
// AnswerKey is always a subset of the option labels.
type Question struct {
	ContentID              string   // language-invariant identity, raw id without its language suffix
	RawID                  string   // id as stored in the question bank
	Language               Language // language the stem and options are written in
	CertificationID        string   // certification the question belongs to
	Domain                 Domain   // knowledge domain
	Tier                   string   // access tier: "free", "premium" etc
	Stem                   string   // question text
	Options                []Option // ordered options, 4 or 5 entries
	AnswerKey              []string // sorted upper-case labels of the correct options
	RequiredSelectionCount int      // number of options the user must pick
	Explanation            string   // optional explanation shown on review
}

// OptionText returns the text of the option with the given label.
func (q *Question) OptionText(label string) (string, bool) {
	for _, o := range q.Options {
		if o.Label == label {
			return o.Text, true
		}
	}
	return "", false
}

// IsMultiSelect reports whether the question expects more than one option.
func (q *Question) IsMultiSelect() bool {
	return q.RequiredSelectionCount > 1
}

// RawQuestion is a question record as returned by a question repository.
// Its answer fields come in several shapes and are decoded by the normalizer.
type RawQuestion struct {
	ID                     string          `json:"id"`
	CertificationID        string          `json:"certification_id"`
	Domain                 string          `json:"domain"`
	Tier                   string          `json:"tier"`
	Language               string          `json:"language"`
	Question               string          `json:"question"`
	OptionA                string          `json:"option_a"`
	OptionB                string          `json:"option_b"`
	OptionC                string          `json:"option_c"`
	OptionD                string          `json:"option_d"`
	OptionE                string          `json:"option_e"`
	CorrectAnswer          json.RawMessage `json:"correct_answer"`           // "B", "A,C", "A|C", ["A","C"]
	RequiredSelectionCount json.RawMessage `json:"required_selection_count"` // number, numeric string or absent
	Explanation            string          `json:"explanation"`
}
