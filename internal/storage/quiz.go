package storage

import (
	"slices"
	"sync"

	"github.com/aliskhannn/certprep-bot/internal/service"
)

// QuizStorage provides in-memory storage for active quizzes by chat ID.
// It also keeps the options a user has toggled on a multi-select question
// before submitting them.
type QuizStorage struct {
	mu      sync.RWMutex
	quizzes map[int64]*service.ActiveQuiz
	drafts  map[int64][]string
}

// NewQuizStorage creates a new QuizStorage.
func NewQuizStorage() *QuizStorage {
	return &QuizStorage{
		quizzes: make(map[int64]*service.ActiveQuiz),
		drafts:  make(map[int64][]string),
	}
}

// Store saves the active quiz of a chat and returns the one it replaced, if any.
func (s *QuizStorage) Store(chatID int64, quiz *service.ActiveQuiz) *service.ActiveQuiz {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.quizzes[chatID]
	s.quizzes[chatID] = quiz
	delete(s.drafts, chatID)
	return prev
}

// Get retrieves the active quiz of a chat.
func (s *QuizStorage) Get(chatID int64) (*service.ActiveQuiz, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[chatID]
	return quiz, ok
}

// Delete removes the quiz of a chat if it is still the stored one.
func (s *QuizStorage) Delete(chatID int64, quiz *service.ActiveQuiz) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, ok := s.quizzes[chatID]; ok && cur == quiz {
		delete(s.quizzes, chatID)
		delete(s.drafts, chatID)
	}
}

// ToggleDraft adds label to the draft selection or removes it if already present.
func (s *QuizStorage) ToggleDraft(chatID int64, label string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft := s.drafts[chatID]
	if i := slices.Index(draft, label); i >= 0 {
		draft = slices.Delete(draft, i, i+1)
	} else {
		draft = append(draft, label)
		slices.Sort(draft)
	}
	s.drafts[chatID] = draft
	return slices.Clone(draft)
}

// Draft returns the draft selection of a chat.
func (s *QuizStorage) Draft(chatID int64) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.drafts[chatID])
}

// ClearDraft drops the draft selection of a chat.
func (s *QuizStorage) ClearDraft(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, chatID)
}
