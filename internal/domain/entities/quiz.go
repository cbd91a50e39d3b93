package entities

import "time"

// SessionState is a state of the quiz session state machine.
type SessionState string

const (
	SessionIdle       SessionState = "idle"       // created, not started
	SessionActive     SessionState = "active"     // accepting answers and navigation
	SessionFinalizing SessionState = "finalizing" // scoring in progress
	SessionTerminal   SessionState = "terminal"   // finished or abandoned
)

// QuestionReview is the per-question part of a result.
type QuestionReview struct {
	ContentID     string   // question identity
	Domain        Domain   // question domain
	UserAnswer    []string // normalized selection, nil when unanswered
	CorrectAnswer []string // normalized answer key
	IsCorrect     bool     // whether the selection equals the answer key
	Marked        bool     // whether the question was marked for review
}

// ResultSummary is the immutable outcome of a finished session.
type ResultSummary struct {
	SessionID        string
	Correct          int              // number of correctly answered questions
	Total            int              // number of questions in the session
	Score            int              // scaled score, 100..1000
	WeightedAccuracy float64          // domain-weighted accuracy, 0..1
	ByDomainCorrect  map[Domain]int   // correct answers per domain
	ByDomainTotal    map[Domain]int   // questions per domain
	Reviews          []QuestionReview // one entry per question in session order
	Degraded         bool             // true when scoring faulted and a neutral result was substituted
	Expired          bool             // true when the countdown finished the session
	FinishedAt       time.Time
}

// Passed reports whether the score reaches the passing score.
func (r ResultSummary) Passed(passingScore int) bool {
	return r.Score >= passingScore
}

// Percent returns the share of correct answers in percent.
func (r ResultSummary) Percent() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Correct) * 100 / float64(r.Total)
}

// AnswerRecord is sent to the persistence collaborator for each accepted answer.
type AnswerRecord struct {
	SessionID string
	UserID    int64
	ContentID string
	Selection []string
	IsCorrect bool
	Elapsed   time.Duration // time spent on the question before answering
	AnswerAt  time.Time
}

// DomainBreakdown is the per-domain part of a completed attempt.
type DomainBreakdown struct {
	Domain  Domain
	Correct int
	Total   int
}

// AttemptRecord is sent to the persistence collaborator when a session finishes.
type AttemptRecord struct {
	SessionID       string
	UserID          int64
	CertificationID string
	Correct         int
	Total           int
	Score           int
	Degraded        bool
	Breakdown       []DomainBreakdown
	StartedAt       time.Time
	CompletedAt     time.Time
}
