// Package selection decides which questions make up one quiz run.
package selection

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"funquiz/internal/domain"
	"funquiz/internal/topics"
)

const (
	// DefaultCount is used when the caller does not request a size.
	DefaultCount = 10
	// MaxCount caps a single run; larger requests are clamped silently.
	MaxCount = 20
)

// Filter narrows a repository sample. Zero values mean "no constraint".
type Filter struct {
	Difficulties []domain.Difficulty
	Topic        string
	ExcludeTopic string
	ExcludeIDs   []string
}

// QuestionRepository is the slice of the question store the policy
// needs: random sampling and counting under a filter.
type QuestionRepository interface {
	Sample(ctx context.Context, filter Filter, count int) ([]domain.Question, error)
	Count(ctx context.Context, filter Filter) (int, error)
}

// Request carries the inputs for one run's selection.
type Request struct {
	Age         int
	Count       int
	Mixed       bool
	Topic       string
	AnsweredIDs []string
}

// Result is the ordered question list for a run plus the resolved
// parameters the caller reports back to the client.
type Result struct {
	Questions  []domain.Question
	Difficulty domain.Difficulty
	Topic      string
	Mixed      bool
}

// Policy computes the question list for a quiz run: difficulty bucket
// from age, exclusion of already-answered IDs, and other-topic backfill
// when a single topic runs short.
type Policy struct {
	repo QuestionRepository
	rnd  *rand.Rand
}

func NewPolicy(repo QuestionRepository) *Policy {
	return &Policy{
		repo: repo,
		rnd:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewPolicyWithRand allows deterministic topic picks in tests.
func NewPolicyWithRand(repo QuestionRepository, rnd *rand.Rand) *Policy {
	return &Policy{repo: repo, rnd: rnd}
}

// Select produces the ordered question list for one run. An empty
// result is not an error: it means the store is exhausted and the
// caller should trigger generation.
func (p *Policy) Select(ctx context.Context, req Request) (Result, error) {
	count := clampCount(req.Count)
	allowed := domain.AllowedDifficulties(req.Age)
	excluded := sanitizeIDs(req.AnsweredIDs)

	base := Filter{
		Difficulties: allowed,
		ExcludeIDs:   excluded,
	}

	result := Result{
		Difficulty: domain.ResolveDifficulty(req.Age),
		Mixed:      req.Mixed,
	}

	if req.Mixed {
		questions, err := p.repo.Sample(ctx, base, count)
		if err != nil {
			return Result{}, err
		}
		result.Questions = dedupe(questions)
		result.Topic = "mixed"
		return result, nil
	}

	topic := topics.Normalize(req.Topic)
	if !topics.Known(topic) {
		topic = topics.Random(p.rnd)
	}
	result.Topic = topic

	inTopic := base
	inTopic.Topic = topic
	questions, err := p.repo.Sample(ctx, inTopic, count)
	if err != nil {
		return Result{}, err
	}
	questions = dedupe(questions)

	if shortfall := count - len(questions); shortfall > 0 {
		backfill := Filter{
			Difficulties: allowed,
			ExcludeTopic: topic,
			ExcludeIDs:   append(idsOf(questions), excluded...),
		}
		more, err := p.repo.Sample(ctx, backfill, shortfall)
		if err != nil {
			return Result{}, err
		}
		questions = dedupe(append(questions, more...))
	}

	result.Questions = questions
	return result, nil
}

// TotalAvailable reports how many questions exist in the store overall,
// for the stats block in the questions response.
func (p *Policy) TotalAvailable(ctx context.Context) (int, error) {
	return p.repo.Count(ctx, Filter{})
}

func clampCount(count int) int {
	if count <= 0 {
		return DefaultCount
	}
	if count > MaxCount {
		return MaxCount
	}
	return count
}

// sanitizeIDs drops malformed IDs from client-supplied history instead
// of letting one bad value poison the exclusion filter.
func sanitizeIDs(ids []string) []string {
	clean := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || len(id) > 128 || strings.ContainsAny(id, " \t\n") {
			continue
		}
		clean = append(clean, id)
	}
	return clean
}

func idsOf(questions []domain.Question) []string {
	ids := make([]string, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.ID)
	}
	return ids
}

// dedupe keeps the first occurrence of each ID, preserving sample order.
func dedupe(questions []domain.Question) []domain.Question {
	seen := make(map[string]struct{}, len(questions))
	out := questions[:0]
	for _, q := range questions {
		if _, ok := seen[q.ID]; ok {
			continue
		}
		seen[q.ID] = struct{}{}
		out = append(out, q)
	}
	return out
}
