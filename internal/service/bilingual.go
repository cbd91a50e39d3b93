package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"

	"github.com/aliskhannn/certprep-bot/internal/domain/entities"
)

var ErrNoQuestionsAvailable = errors.New("no questions available")

// BilingualCache stores built bilingual sets by a language-free filter key.
type BilingualCache interface {
	Get(key string) (*BilingualSet, bool)
	Store(key string, set *BilingualSet)
}

type bilingualSlot struct {
	anchor *entities.Question
	alt    *entities.Question
}

// BilingualSet holds two language variants of one question selection in a single order.
// The index of a content id is the same in both languages.
type BilingualSet struct {
	anchorLang entities.Language
	order      []string
	byLang     map[entities.Language][]entities.Question
}

// MergeBilingual merges an anchor-language list and an alternate-language list.
// Order is the anchor order followed by ids that exist only in the alternate list.
// A missing variant falls back to the other language.
func MergeBilingual(anchorLang entities.Language, anchor, alt []entities.Question) *BilingualSet {
	slots := make(map[string]*bilingualSlot, len(anchor)+len(alt))
	order := make([]string, 0, len(anchor)+len(alt))

	for i := range anchor {
		q := anchor[i]
		slot, ok := slots[q.ContentID]
		if !ok {
			slot = &bilingualSlot{}
			slots[q.ContentID] = slot
			order = append(order, q.ContentID)
		}
		if slot.anchor == nil {
			slot.anchor = &q
		}
	}

	for i := range alt {
		q := alt[i]
		slot, ok := slots[q.ContentID]
		if !ok {
			slot = &bilingualSlot{}
			slots[q.ContentID] = slot
			order = append(order, q.ContentID)
		}
		if slot.alt == nil {
			slot.alt = &q
		}
	}

	set := &BilingualSet{
		anchorLang: anchorLang,
		order:      order,
		byLang:     make(map[entities.Language][]entities.Question, 2),
	}
	set.byLang[anchorLang] = resolve(order, slots, true)
	set.byLang[anchorLang.Other()] = resolve(order, slots, false)

	return set
}

func resolve(order []string, slots map[string]*bilingualSlot, preferAnchor bool) []entities.Question {
	out := make([]entities.Question, 0, len(order))
	for _, id := range order {
		slot := slots[id]
		first, second := slot.alt, slot.anchor
		if preferAnchor {
			first, second = slot.anchor, slot.alt
		}

		switch {
		case first != nil:
			out = append(out, *first)
		case second != nil:
			out = append(out, *second)
		}
	}
	return out
}

// Questions returns the question list for a display language.
// Unknown languages get the anchor list.
func (s *BilingualSet) Questions(lang entities.Language) []entities.Question {
	qs, ok := s.byLang[lang]
	if !ok {
		qs = s.byLang[s.anchorLang]
	}
	return slices.Clone(qs)
}

// Order returns the content ids in canonical order.
func (s *BilingualSet) Order() []string {
	return slices.Clone(s.order)
}

// AnchorLanguage returns the language that determined the order.
func (s *BilingualSet) AnchorLanguage() entities.Language {
	return s.anchorLang
}

// truncate keeps the first n questions. n <= 0 keeps everything.
func (s *BilingualSet) truncate(n int) {
	if n <= 0 || n >= len(s.order) {
		return
	}
	s.order = s.order[:n]
	for lang, qs := range s.byLang {
		s.byLang[lang] = qs[:n]
	}
}

// Len returns the number of questions in the set.
func (s *BilingualSet) Len() int {
	return len(s.order)
}

// BilingualService loads both language variants of a question selection.
type BilingualService struct {
	repo       QuestionRepository
	normalizer *Normalizer
	cache      BilingualCache
	anchorLang entities.Language
	logger     *zap.Logger
}

// NewBilingualService creates a new BilingualService.
func NewBilingualService(
	repo QuestionRepository,
	normalizer *Normalizer,
	cache BilingualCache,
	anchorLang entities.Language,
	logger *zap.Logger,
) *BilingualService {
	return &BilingualService{
		repo:       repo,
		normalizer: normalizer,
		cache:      cache,
		anchorLang: anchorLang,
		logger:     logger,
	}
}

// Load returns the bilingual set for the filter. The filter language is ignored.
// Both languages are fetched concurrently; a failed fetch leaves that language
// empty and every entry falls back to the other language. Sets built from a
// failed fetch are not cached.
func (s *BilingualService) Load(ctx context.Context, filter entities.QuestionFilter) (*BilingualSet, error) {
	key := filter.CacheKey()
	if set, ok := s.cache.Get(key); ok {
		return set, nil
	}

	altLang := s.anchorLang.Other()

	// The limit is applied after merging so both languages keep the same selection.
	fetch := filter
	fetch.Limit = 0

	var (
		anchorRaw, altRaw []entities.RawQuestion
		anchorErr, altErr error
		wg                conc.WaitGroup
	)
	wg.Go(func() {
		anchorRaw, anchorErr = s.repo.Fetch(ctx, fetch.WithLanguage(s.anchorLang))
	})
	wg.Go(func() {
		altRaw, altErr = s.repo.Fetch(ctx, fetch.WithLanguage(altLang))
	})
	wg.Wait()

	if anchorErr != nil {
		s.logger.Warn("failed to fetch questions",
			zap.String("language", string(s.anchorLang)),
			zap.String("filter", key),
			zap.Error(anchorErr),
		)
		anchorRaw = nil
	}
	if altErr != nil {
		s.logger.Warn("failed to fetch questions",
			zap.String("language", string(altLang)),
			zap.String("filter", key),
			zap.Error(altErr),
		)
		altRaw = nil
	}

	if len(anchorRaw) == 0 && len(altRaw) == 0 {
		if err := errors.Join(anchorErr, altErr); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoQuestionsAvailable, err)
		}
		return nil, ErrNoQuestionsAvailable
	}

	set := MergeBilingual(
		s.anchorLang,
		s.normalizer.NormalizeAll(anchorRaw),
		s.normalizer.NormalizeAll(altRaw),
	)
	set.truncate(filter.Limit)

	if anchorErr == nil && altErr == nil {
		s.cache.Store(key, set)
	}

	s.logger.Debug("bilingual set built",
		zap.String("filter", key),
		zap.Int("anchor", len(anchorRaw)),
		zap.Int("alt", len(altRaw)),
		zap.Int("merged", set.Len()),
	)

	return set, nil
}
