package service

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/aliskhannn/certprep-bot/internal/domain/entities"
)

var (
	ErrNoQuestions        = errors.New("session needs at least one question")
	ErrSessionStarted     = errors.New("session already started")
	ErrDuplicateContentID = errors.New("duplicate question content id")
)

const tickInterval = time.Second

// SessionOptions configures a single practice attempt.
type SessionOptions struct {
	UserID          int64                        // user taking the attempt
	CertificationID string                       // certification the attempt is for
	Weights         entities.DomainWeights       // domain weights used for scoring
	DurationLimit   time.Duration                // countdown length, 0 for untimed practice
	OnExpire        func(entities.ResultSummary) // called once when the countdown finishes the session
}

// Session is the state machine of one practice attempt.
// Answers and marks are keyed by question content id, so replacing the
// question list with another language variant keeps all progress.
type Session struct {
	guard     *FinalizationGuard
	sink      AnswerSink
	scheduler Scheduler
	logger    *zap.Logger
	now       func() time.Time

	mu        sync.Mutex
	id        string
	state     entities.SessionState
	opts      SessionOptions
	questions []entities.Question
	positions map[string]int
	index     int
	answers   map[string][]string
	marked    map[string]bool
	startedAt time.Time
	shownAt   time.Time
	deadline  time.Time
	remaining time.Duration
	stopTimer func()
	summary   *entities.ResultSummary
}

// NewSession creates an idle session. A nil guard scores with Score, a nil
// sink discards events and a nil scheduler uses a CronScheduler.
func NewSession(guard *FinalizationGuard, sink AnswerSink, scheduler Scheduler, logger *zap.Logger) *Session {
	if guard == nil {
		guard = NewFinalizationGuard(nil, logger)
	}
	if sink == nil {
		sink = discardSink{}
	}
	if scheduler == nil {
		scheduler = NewCronScheduler(logger)
	}
	return &Session{
		guard:     guard,
		sink:      sink,
		scheduler: scheduler,
		logger:    logger,
		now:       time.Now,
		id:        uuid.NewString(),
		state:     entities.SessionIdle,
	}
}

// Start activates the session with an ordered question list.
func (s *Session) Start(questions []entities.Question, opts SessionOptions) error {
	if len(questions) == 0 {
		return ErrNoQuestions
	}

	positions := make(map[string]int, len(questions))
	for i, q := range questions {
		if _, dup := positions[q.ContentID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateContentID, q.ContentID)
		}
		positions[q.ContentID] = i
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != entities.SessionIdle {
		return ErrSessionStarted
	}

	now := s.now()
	s.questions = slices.Clone(questions)
	s.positions = positions
	s.index = 0
	s.answers = make(map[string][]string, len(questions))
	s.marked = make(map[string]bool)
	s.opts = opts
	s.startedAt = now
	s.shownAt = now
	s.state = entities.SessionActive

	if opts.DurationLimit > 0 {
		s.deadline = now.Add(opts.DurationLimit)
		s.remaining = opts.DurationLimit
		s.stopTimer = s.scheduler.Every(tickInterval, s.tick)
	}

	s.logger.Info("session started",
		zap.String("session_id", s.id),
		zap.Int64("user_id", opts.UserID),
		zap.String("certification_id", opts.CertificationID),
		zap.Int("questions", len(questions)),
		zap.Duration("duration_limit", opts.DurationLimit),
	)

	return nil
}

// Answer stores the selection for a question. The selection is accepted only
// while the session is active and only if it names exactly the required number
// of existing options. It reports whether the answer was stored.
func (s *Session) Answer(contentID string, selection []string) bool {
	s.mu.Lock()

	if s.state != entities.SessionActive {
		s.mu.Unlock()
		return false
	}
	pos, ok := s.positions[contentID]
	if !ok {
		s.mu.Unlock()
		return false
	}

	q := s.questions[pos]
	sel := NormalizeSelection(selection)
	if len(sel) != q.RequiredSelectionCount || !hasOptions(q, sel) {
		s.mu.Unlock()
		return false
	}

	s.answers[contentID] = sel

	now := s.now()
	rec := entities.AnswerRecord{
		SessionID: s.id,
		UserID:    s.opts.UserID,
		ContentID: contentID,
		Selection: slices.Clone(sel),
		IsCorrect: IsCorrect(sel, q.AnswerKey),
		Elapsed:   now.Sub(s.shownAt),
		AnswerAt:  now,
	}
	s.mu.Unlock()

	s.sink.RecordAnswer(rec)
	return true
}

// Mark sets or clears the review mark of a question.
func (s *Session) Mark(contentID string, marked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != entities.SessionActive {
		return
	}
	if _, ok := s.positions[contentID]; !ok {
		return
	}

	if marked {
		s.marked[contentID] = true
	} else {
		delete(s.marked, contentID)
	}
}

// Next moves to the next question, staying on the last one.
func (s *Session) Next() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.moveTo(s.index + 1)
}

// Prev moves to the previous question, staying on the first one.
func (s *Session) Prev() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.moveTo(s.index - 1)
}

// JumpTo moves to question i, clamped to the valid range.
func (s *Session) JumpTo(i int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.moveTo(i)
}

func (s *Session) moveTo(i int) int {
	if s.state != entities.SessionActive {
		return s.index
	}

	i = min(len(s.questions)-1, max(0, i))
	if i != s.index {
		s.index = i
		s.shownAt = s.now()
	}
	return s.index
}

// SwitchQuestions replaces the question list with another language variant of
// the same questions. It is accepted only if the content ids match position by position.
func (s *Session) SwitchQuestions(questions []entities.Question) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != entities.SessionActive || len(questions) != len(s.questions) {
		return false
	}
	for i, q := range questions {
		if q.ContentID != s.questions[i].ContentID {
			return false
		}
	}

	s.questions = slices.Clone(questions)
	return true
}

// Finalize scores the session and moves it to the terminal state.
// It never panics. Calling it again returns the same summary.
func (s *Session) Finalize() entities.ResultSummary {
	res, _ := s.finalize(false)
	return res
}

// finalize reports whether this call produced the summary.
func (s *Session) finalize(expired bool) (entities.ResultSummary, bool) {
	s.mu.Lock()

	switch s.state {
	case entities.SessionActive:
	case entities.SessionTerminal:
		if s.summary != nil {
			res := *s.summary
			s.mu.Unlock()
			return res, false
		}
		fallthrough
	default:
		res := DegradedSummary(s.id, len(s.questions))
		s.mu.Unlock()
		return res, false
	}

	s.state = entities.SessionFinalizing
	s.disarm()

	res := s.guard.Finalize(s.id, s.questions, s.answers, s.opts.Weights)
	for i := range res.Reviews {
		res.Reviews[i].Marked = s.marked[res.Reviews[i].ContentID]
	}
	res.Expired = expired
	res.FinishedAt = s.now()

	s.summary = &res
	s.state = entities.SessionTerminal

	rec := attemptRecord(s.opts, s.startedAt, res)
	s.mu.Unlock()

	s.logger.Info("session finalized",
		zap.String("session_id", s.id),
		zap.Int("correct", res.Correct),
		zap.Int("total", res.Total),
		zap.Int("score", res.Score),
		zap.Bool("expired", expired),
		zap.Bool("degraded", res.Degraded),
	)

	s.sink.CompleteAttempt(rec)

	return res, true
}

// Close abandons the session and stops its countdown. A finished session is left as is.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.disarm()
	if s.state != entities.SessionTerminal {
		s.state = entities.SessionTerminal
		s.logger.Info("session abandoned", zap.String("session_id", s.id))
	}
}

func (s *Session) disarm() {
	if s.stopTimer != nil {
		s.stopTimer()
		s.stopTimer = nil
	}
}

// tick runs once per second while a countdown is armed. Remaining time is
// measured against the deadline, so a tick that fires early or late does not
// shift expiry.
func (s *Session) tick() {
	s.mu.Lock()
	if s.state != entities.SessionActive {
		s.mu.Unlock()
		return
	}
	s.remaining = max(0, s.deadline.Sub(s.now()))
	if s.remaining > 0 {
		s.mu.Unlock()
		return
	}
	s.remaining = 0
	onExpire := s.opts.OnExpire
	s.mu.Unlock()

	res, fresh := s.finalize(true)
	if fresh && onExpire != nil {
		onExpire(res)
	}
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// State returns the current state.
func (s *Session) State() entities.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Len returns the number of questions.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.questions)
}

// Index returns the current position.
func (s *Session) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Current returns the question at the current position.
func (s *Session) Current() (entities.Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.questions) == 0 {
		return entities.Question{}, false
	}
	return s.questions[s.index], true
}

// CurrentAnswer returns the stored selection for the current question.
func (s *Session) CurrentAnswer() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.questions) == 0 {
		return nil
	}
	return slices.Clone(s.answers[s.questions[s.index].ContentID])
}

// AnswerFor returns the stored selection for a question.
func (s *Session) AnswerFor(contentID string) ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel, ok := s.answers[contentID]
	return slices.Clone(sel), ok
}

// IsMarked reports whether a question is marked for review.
func (s *Session) IsMarked(contentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.marked[contentID]
}

// MarkedIDs returns the marked content ids in session order.
func (s *Session) MarkedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.marked))
	for _, q := range s.questions {
		if s.marked[q.ContentID] {
			out = append(out, q.ContentID)
		}
	}
	return out
}

// AnsweredCount returns the number of answered questions.
func (s *Session) AnsweredCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.answers)
}

// Remaining returns the countdown time left and whether the session is timed.
func (s *Session) Remaining() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	timed := s.opts.DurationLimit > 0
	if timed && s.state == entities.SessionActive {
		return max(0, s.deadline.Sub(s.now())), true
	}
	return s.remaining, timed
}

// Summary returns the result of a finished session.
func (s *Session) Summary() (entities.ResultSummary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.summary == nil {
		return entities.ResultSummary{}, false
	}
	return *s.summary, true
}

// NormalizeSelection trims, case-folds, upper-cases, deduplicates and sorts option labels.
func NormalizeSelection(selection []string) []string {
	fold := cases.Fold()

	out := make([]string, 0, len(selection))
	for _, l := range selection {
		l = strings.ToUpper(fold.String(strings.TrimSpace(l)))
		if l == "" {
			continue
		}
		out = append(out, l)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func hasOptions(q entities.Question, labels []string) bool {
	for _, l := range labels {
		if _, ok := q.OptionText(l); !ok {
			return false
		}
	}
	return true
}

func attemptRecord(opts SessionOptions, startedAt time.Time, res entities.ResultSummary) entities.AttemptRecord {
	breakdown := make([]entities.DomainBreakdown, 0, len(res.ByDomainTotal))
	for d, total := range res.ByDomainTotal {
		breakdown = append(breakdown, entities.DomainBreakdown{
			Domain:  d,
			Correct: res.ByDomainCorrect[d],
			Total:   total,
		})
	}
	slices.SortFunc(breakdown, func(a, b entities.DomainBreakdown) int {
		return strings.Compare(string(a.Domain), string(b.Domain))
	})

	return entities.AttemptRecord{
		SessionID:       res.SessionID,
		UserID:          opts.UserID,
		CertificationID: opts.CertificationID,
		Correct:         res.Correct,
		Total:           res.Total,
		Score:           res.Score,
		Degraded:        res.Degraded,
		Breakdown:       breakdown,
		StartedAt:       startedAt,
		CompletedAt:     res.FinishedAt,
	}
}
