package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/certprep-bot/internal/domain/entities"
)

var (
	ErrUnknownQuizMode      = errors.New("unknown quiz mode")
	ErrUnknownCertification = errors.New("unknown certification")
)

// CertificationCatalog looks up exam settings by certification id.
type CertificationCatalog interface {
	Certification(id string) (entities.Certification, bool)
}

// QuizRequest describes the session a user asked for.
type QuizRequest struct {
	UserID          int64
	CertificationID string
	Mode            string            // entities.ModePractice or entities.ModeExam
	Tier            string            // access tier of the user
	Language        entities.Language // initial display language
	Domains         []entities.Domain // optional domain filter
	Seed            int64             // shuffle seed, 0 picks one from the clock
	OnExpire        func(entities.ResultSummary)
}

// ActiveQuiz is a started session together with both language variants of its questions.
type ActiveQuiz struct {
	Session       *Session
	Certification entities.Certification
	Mode          string

	set  *BilingualSet
	mu   sync.Mutex
	lang entities.Language
}

// Language returns the current display language.
func (a *ActiveQuiz) Language() entities.Language {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lang
}

// SwitchLanguage swaps the session's question list to another language.
// Position, answers and marks are kept.
func (a *ActiveQuiz) SwitchLanguage(lang entities.Language) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if lang == a.lang {
		return true
	}
	if !a.Session.SwitchQuestions(a.set.Questions(lang)) {
		return false
	}
	a.lang = lang
	return true
}

// ToggleLanguage switches to the other language of the pair.
func (a *ActiveQuiz) ToggleLanguage() entities.Language {
	next := a.Language().Other()
	a.SwitchLanguage(next)
	return a.Language()
}

// QuizService builds practice sessions from a certification's question bank.
type QuizService struct {
	bilingual *BilingualService
	catalog   CertificationCatalog
	guard     *FinalizationGuard
	sink      AnswerSink
	scheduler Scheduler
	logger    *zap.Logger
	now       func() time.Time
}

// NewQuizService creates a new QuizService.
func NewQuizService(
	bilingual *BilingualService,
	catalog CertificationCatalog,
	guard *FinalizationGuard,
	sink AnswerSink,
	scheduler Scheduler,
	logger *zap.Logger,
) *QuizService {
	return &QuizService{
		bilingual: bilingual,
		catalog:   catalog,
		guard:     guard,
		sink:      sink,
		scheduler: scheduler,
		logger:    logger,
		now:       time.Now,
	}
}

// StartQuiz loads the questions for the request and starts a session.
// Exam mode uses the certification's question limit and duration; practice mode is untimed.
func (s *QuizService) StartQuiz(ctx context.Context, req QuizRequest) (*ActiveQuiz, error) {
	cert, ok := s.catalog.Certification(req.CertificationID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCertification, req.CertificationID)
	}

	seed := req.Seed
	if seed == 0 {
		seed = s.now().UnixNano()
	}

	filter := entities.QuestionFilter{
		CertificationID: cert.ID,
		Domains:         req.Domains,
		Tier:            req.Tier,
		Shuffle:         true,
		Seed:            seed,
	}

	opts := SessionOptions{
		UserID:          req.UserID,
		CertificationID: cert.ID,
		Weights:         cert.Weights,
		OnExpire:        req.OnExpire,
	}

	switch req.Mode {
	case entities.ModePractice, "":
	case entities.ModeExam:
		filter.Limit = cert.Limit
		opts.DurationLimit = cert.Duration
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownQuizMode, req.Mode)
	}

	set, err := s.bilingual.Load(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}

	lang := req.Language
	if lang == "" {
		lang = set.AnchorLanguage()
	}

	session := NewSession(s.guard, s.sink, s.scheduler, s.logger)
	if err := session.Start(set.Questions(lang), opts); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	return &ActiveQuiz{
		Session:       session,
		Certification: cert,
		Mode:          req.Mode,
		set:           set,
		lang:          lang,
	}, nil
}
