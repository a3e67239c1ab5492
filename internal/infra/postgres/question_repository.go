package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"funquiz/internal/domain"
	"funquiz/internal/selection"
	"github.com/jackc/pgx/v4/pgxpool"
)

// QuestionRepository samples question documents from Postgres. Rows
// hold the full question as jsonb, with topic and difficulty extracted
// into columns for filtering.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// Sample returns up to count random matching questions. ORDER BY
// random() is fine at this collection size; the store is a few thousand
// generated questions at most.
func (r *QuestionRepository) Sample(ctx context.Context, filter selection.Filter, count int) ([]domain.Question, error) {
	where, args := buildWhere(filter)
	query := `SELECT id, data FROM questions` + where +
		` ORDER BY random() LIMIT $` + strconv.Itoa(len(args)+1)
	args = append(args, count)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sample questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		var q domain.Question
		if err := json.Unmarshal(raw, &q); err != nil {
			return nil, fmt.Errorf("decode question %s: %w", id, err)
		}
		q.ID = id
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sample questions: %w", err)
	}
	return questions, nil
}

// Count returns the number of questions matching the filter.
func (r *QuestionRepository) Count(ctx context.Context, filter selection.Filter) (int, error) {
	where, args := buildWhere(filter)
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM questions`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return n, nil
}

// Insert stores questions, used by the seed command. Existing IDs are
// overwritten.
func (r *QuestionRepository) Insert(ctx context.Context, questions ...domain.Question) error {
	for _, q := range questions {
		data, err := json.Marshal(q)
		if err != nil {
			return fmt.Errorf("encode question %s: %w", q.ID, err)
		}
		_, err = r.pool.Exec(ctx,
			`INSERT INTO questions (id, topic, difficulty, data) VALUES ($1, $2, $3, $4)
			 ON CONFLICT (id) DO UPDATE SET topic=EXCLUDED.topic, difficulty=EXCLUDED.difficulty, data=EXCLUDED.data`,
			q.ID, q.Topic, string(q.Difficulty), data)
		if err != nil {
			return fmt.Errorf("insert question %s: %w", q.ID, err)
		}
	}
	return nil
}

func buildWhere(filter selection.Filter) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if len(filter.Difficulties) > 0 {
		tiers := make([]string, 0, len(filter.Difficulties))
		for _, d := range filter.Difficulties {
			tiers = append(tiers, string(d))
		}
		clauses = append(clauses, "difficulty = ANY("+arg(tiers)+")")
	}
	if filter.Topic != "" {
		clauses = append(clauses, "topic = "+arg(filter.Topic))
	}
	if filter.ExcludeTopic != "" {
		clauses = append(clauses, "topic <> "+arg(filter.ExcludeTopic))
	}
	if len(filter.ExcludeIDs) > 0 {
		clauses = append(clauses, "NOT (id = ANY("+arg(filter.ExcludeIDs)+"))")
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
