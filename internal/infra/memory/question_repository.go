package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"funquiz/internal/domain"
	"funquiz/internal/selection"
)

// QuestionRepository is an in-memory question store (useful for tests
// and for running without Postgres).
type QuestionRepository struct {
	mu        sync.RWMutex
	questions []domain.Question
	rnd       *rand.Rand
}

func NewQuestionRepository(questions []domain.Question) *QuestionRepository {
	repo := &QuestionRepository{
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	repo.Add(questions...)
	return repo
}

// NewQuestionRepositoryWithRand pins the sampling order for tests.
func NewQuestionRepositoryWithRand(questions []domain.Question, rnd *rand.Rand) *QuestionRepository {
	repo := &QuestionRepository{rnd: rnd}
	repo.Add(questions...)
	return repo
}

// Add appends questions to the store. Used by the in-process generator
// and by seeding.
func (r *QuestionRepository) Add(questions ...domain.Question) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.questions = append(r.questions, questions...)
}

// Sample returns up to count random questions matching the filter, in
// random order. Fewer than count is not an error.
func (r *QuestionRepository) Sample(_ context.Context, filter selection.Filter, count int) ([]domain.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	eligible := make([]domain.Question, 0, len(r.questions))
	for _, q := range r.questions {
		if matches(q, filter) {
			eligible = append(eligible, q)
		}
	}

	r.rnd.Shuffle(len(eligible), func(i, j int) {
		eligible[i], eligible[j] = eligible[j], eligible[i]
	})
	if count < len(eligible) {
		eligible = eligible[:count]
	}
	return eligible, nil
}

// Count returns how many stored questions match the filter.
func (r *QuestionRepository) Count(_ context.Context, filter selection.Filter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, q := range r.questions {
		if matches(q, filter) {
			n++
		}
	}
	return n, nil
}

func matches(q domain.Question, filter selection.Filter) bool {
	if len(filter.Difficulties) > 0 {
		found := false
		for _, d := range filter.Difficulties {
			if q.Difficulty == d {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.Topic != "" && q.Topic != filter.Topic {
		return false
	}
	if filter.ExcludeTopic != "" && q.Topic == filter.ExcludeTopic {
		return false
	}
	for _, id := range filter.ExcludeIDs {
		if q.ID == id {
			return false
		}
	}
	return true
}
