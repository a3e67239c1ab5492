package selection_test

import (
	"context"
	"math/rand"
	"strconv"
	"testing"

	"funquiz/internal/domain"
	"funquiz/internal/infra/memory"
	"funquiz/internal/selection"
)

func repoWith(t *testing.T, questions []domain.Question) *memory.QuestionRepository {
	t.Helper()
	return memory.NewQuestionRepositoryWithRand(questions, rand.New(rand.NewSource(42)))
}

func easySet(topic string, n int) []domain.Question {
	questions := make([]domain.Question, 0, n)
	for i := 0; i < n; i++ {
		questions = append(questions, domain.Question{
			ID:         topic + "-" + strconv.Itoa(i),
			Topic:      topic,
			Difficulty: domain.DifficultyEasy,
			Options:    []string{"a", "b"},
		})
	}
	return questions
}

func TestResolveDifficultyBuckets(t *testing.T) {
	previous := 0
	for age := domain.MinAge; age <= domain.MaxAge; age++ {
		d := domain.ResolveDifficulty(age)
		if !d.Valid() {
			t.Fatalf("age %d resolved to invalid difficulty %q", age, d)
		}
		if d.Rank() < previous {
			t.Fatalf("difficulty decreased at age %d", age)
		}
		previous = d.Rank()
	}
	if domain.ResolveDifficulty(8) != domain.DifficultyEasy ||
		domain.ResolveDifficulty(11) != domain.DifficultyEasy ||
		domain.ResolveDifficulty(12) != domain.DifficultyMedium ||
		domain.ResolveDifficulty(14) != domain.DifficultyMedium ||
		domain.ResolveDifficulty(15) != domain.DifficultyHard ||
		domain.ResolveDifficulty(16) != domain.DifficultyHard {
		t.Fatal("bucket boundaries do not match the age table")
	}
}

func TestMixedModeRespectsDifficultyCeiling(t *testing.T) {
	questions := append(easySet("sports", 5),
		domain.Question{ID: "hard-1", Topic: "sports", Difficulty: domain.DifficultyHard},
		domain.Question{ID: "med-1", Topic: "sports", Difficulty: domain.DifficultyMedium},
	)
	policy := selection.NewPolicyWithRand(repoWith(t, questions), rand.New(rand.NewSource(1)))

	result, err := policy.Select(context.Background(), selection.Request{
		Age: 10, Count: 10, Mixed: true,
	})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(result.Questions) != 5 {
		t.Fatalf("expected 5 easy questions, got %d", len(result.Questions))
	}
	for _, q := range result.Questions {
		if q.Difficulty != domain.DifficultyEasy {
			t.Fatalf("age 10 received %s question %s", q.Difficulty, q.ID)
		}
	}
	if result.Difficulty != domain.DifficultyEasy || result.Topic != "mixed" {
		t.Fatalf("unexpected result metadata %+v", result)
	}
}

func TestAnsweredIDsNeverRepeat(t *testing.T) {
	questions := easySet("sports", 6)
	policy := selection.NewPolicyWithRand(repoWith(t, questions), rand.New(rand.NewSource(1)))

	answered := []string{"sports-0", "sports-1", "sports-2"}
	result, err := policy.Select(context.Background(), selection.Request{
		Age: 9, Count: 10, Mixed: true, AnsweredIDs: answered,
	})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(result.Questions) != 3 {
		t.Fatalf("expected 3 unseen questions, got %d", len(result.Questions))
	}
	seen := map[string]bool{}
	for _, id := range answered {
		seen[id] = true
	}
	for _, q := range result.Questions {
		if seen[q.ID] {
			t.Fatalf("already-answered question %s returned", q.ID)
		}
	}
}

func TestMalformedAnsweredIDsAreFiltered(t *testing.T) {
	questions := easySet("sports", 3)
	policy := selection.NewPolicyWithRand(repoWith(t, questions), rand.New(rand.NewSource(1)))

	result, err := policy.Select(context.Background(), selection.Request{
		Age:   9,
		Count: 10,
		Mixed: true,
		AnsweredIDs: []string{
			"", "   ", "bad id with spaces", "sports-0",
		},
	})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	// The one well-formed ID is excluded; the junk does not abort the
	// whole filter.
	if len(result.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(result.Questions))
	}
}

func TestSingleTopicBackfillHasNoDuplicates(t *testing.T) {
	questions := append(easySet("sports", 2), easySet("geography", 8)...)
	policy := selection.NewPolicyWithRand(repoWith(t, questions), rand.New(rand.NewSource(1)))

	result, err := policy.Select(context.Background(), selection.Request{
		Age: 10, Count: 6, Topic: "sports",
	})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if result.Topic != "sports" {
		t.Fatalf("expected sports topic, got %s", result.Topic)
	}
	if len(result.Questions) != 6 {
		t.Fatalf("expected backfill to reach 6 questions, got %d", len(result.Questions))
	}

	ids := map[string]bool{}
	inTopic := 0
	for _, q := range result.Questions {
		if ids[q.ID] {
			t.Fatalf("duplicate ID %s in merged list", q.ID)
		}
		ids[q.ID] = true
		if q.Topic == "sports" {
			inTopic++
		}
	}
	if inTopic != 2 {
		t.Fatalf("expected both sports questions first, got %d", inTopic)
	}
}

func TestUnknownTopicFallsBackToCatalog(t *testing.T) {
	questions := easySet("geography", 4)
	policy := selection.NewPolicyWithRand(repoWith(t, questions), rand.New(rand.NewSource(3)))

	result, err := policy.Select(context.Background(), selection.Request{
		Age: 10, Count: 4, Topic: "not-a-real-topic",
	})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if result.Topic == "not_a_real_topic" {
		t.Fatal("unknown topic was not replaced with a catalog topic")
	}
}

func TestAliasedTopicIsNormalized(t *testing.T) {
	questions := easySet("sports", 4)
	policy := selection.NewPolicyWithRand(repoWith(t, questions), rand.New(rand.NewSource(3)))

	result, err := policy.Select(context.Background(), selection.Request{
		Age: 10, Count: 4, Topic: "cricket",
	})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if result.Topic != "sports" {
		t.Fatalf("expected cricket to normalize to sports, got %s", result.Topic)
	}
	if len(result.Questions) != 4 {
		t.Fatalf("expected 4 questions, got %d", len(result.Questions))
	}
}

func TestExhaustedStoreReturnsEmptyNotError(t *testing.T) {
	policy := selection.NewPolicyWithRand(repoWith(t, nil), rand.New(rand.NewSource(1)))

	result, err := policy.Select(context.Background(), selection.Request{
		Age: 10, Count: 10, Mixed: true,
	})
	if err != nil {
		t.Fatalf("empty store must not error: %v", err)
	}
	if len(result.Questions) != 0 {
		t.Fatalf("expected empty result, got %d", len(result.Questions))
	}
}

func TestCountClamped(t *testing.T) {
	questions := easySet("sports", 40)
	policy := selection.NewPolicyWithRand(repoWith(t, questions), rand.New(rand.NewSource(1)))

	result, err := policy.Select(context.Background(), selection.Request{
		Age: 10, Count: 99, Mixed: true,
	})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(result.Questions) != selection.MaxCount {
		t.Fatalf("expected clamp to %d, got %d", selection.MaxCount, len(result.Questions))
	}
}
