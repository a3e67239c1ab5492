package generate

import (
	"context"
	"fmt"
	"sync/atomic"

	"funquiz/internal/app"
	"funquiz/internal/domain"
)

// QuestionWriter is the write side of a question store.
type QuestionWriter interface {
	Add(questions ...domain.Question)
}

// Static synthesizes placeholder questions straight into an in-memory
// store. It stands in for the external script when the service runs
// without Postgres and without a generator CLI (demos and tests).
type Static struct {
	writer QuestionWriter
	seq    atomic.Int64
}

func NewStatic(writer QuestionWriter) *Static {
	return &Static{writer: writer}
}

func (s *Static) Generate(_ context.Context, topic string, difficulty domain.Difficulty, count int) (app.GenerationReport, error) {
	questions := make([]domain.Question, 0, count)
	for i := 0; i < count; i++ {
		n := s.seq.Add(1)
		questions = append(questions, domain.Question{
			ID:         fmt.Sprintf("gen-%s-%d", topic, n),
			Topic:      topic,
			Difficulty: difficulty,
			Prompt:     fmt.Sprintf("Practice question %d about %s", n, topic),
			Options:    []string{"Option A", "Option B", "Option C", "Option D"},
			Correct:    int(n) % 4,
		})
	}
	s.writer.Add(questions...)
	return app.GenerationReport{
		Topic:      topic,
		Difficulty: difficulty,
		Generated:  count,
		Saved:      count,
	}, nil
}
