package memory

import (
	"context"
	"math/rand"
	"testing"

	"funquiz/internal/domain"
	"funquiz/internal/selection"
)

func testQuestions() []domain.Question {
	return []domain.Question{
		{ID: "q1", Topic: "sports", Difficulty: domain.DifficultyEasy},
		{ID: "q2", Topic: "sports", Difficulty: domain.DifficultyMedium},
		{ID: "q3", Topic: "geography", Difficulty: domain.DifficultyEasy},
		{ID: "q4", Topic: "geography", Difficulty: domain.DifficultyHard},
		{ID: "q5", Topic: "mathematics", Difficulty: domain.DifficultyEasy},
	}
}

func TestSampleHonorsFilter(t *testing.T) {
	repo := NewQuestionRepositoryWithRand(testQuestions(), rand.New(rand.NewSource(7)))

	got, err := repo.Sample(context.Background(), selection.Filter{
		Difficulties: []domain.Difficulty{domain.DifficultyEasy},
		Topic:        "sports",
	}, 10)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if len(got) != 1 || got[0].ID != "q1" {
		t.Fatalf("expected only q1, got %+v", got)
	}
}

func TestSampleExcludesIDsAndTopic(t *testing.T) {
	repo := NewQuestionRepositoryWithRand(testQuestions(), rand.New(rand.NewSource(7)))

	got, err := repo.Sample(context.Background(), selection.Filter{
		Difficulties: []domain.Difficulty{domain.DifficultyEasy},
		ExcludeTopic: "sports",
		ExcludeIDs:   []string{"q3"},
	}, 10)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if len(got) != 1 || got[0].ID != "q5" {
		t.Fatalf("expected only q5, got %+v", got)
	}
}

func TestSampleTruncatesToCount(t *testing.T) {
	repo := NewQuestionRepositoryWithRand(testQuestions(), rand.New(rand.NewSource(7)))

	got, err := repo.Sample(context.Background(), selection.Filter{}, 2)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(got))
	}
}

func TestCount(t *testing.T) {
	repo := NewQuestionRepository(testQuestions())

	n, err := repo.Count(context.Background(), selection.Filter{})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 5 {
		t.Fatalf("expected 5, got %d", n)
	}

	n, _ = repo.Count(context.Background(), selection.Filter{Topic: "geography"})
	if n != 2 {
		t.Fatalf("expected 2 geography questions, got %d", n)
	}
}
