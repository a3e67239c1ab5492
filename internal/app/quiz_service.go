package app

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"strings"
	"time"

	"funquiz/internal/domain"
	"funquiz/internal/engine"
	"funquiz/internal/selection"
	"funquiz/internal/topics"
)

// SessionStore abstracts durable per-player state (in-memory, Redis, etc).
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*domain.SessionState, error)
	Put(ctx context.Context, sessionID string, state *domain.SessionState) error
	Destroy(ctx context.Context, sessionID string) error
}

// LeaderboardStore is the shared scoreboard. UpsertByName must be a
// single atomic update, not a read-modify-write across calls.
type LeaderboardStore interface {
	UpsertByName(ctx context.Context, entry domain.LeaderboardEntry) error
	TopN(ctx context.Context, n int) ([]domain.LeaderboardEntry, error)
}

// Generator is the external question-generation collaborator.
type Generator interface {
	Generate(ctx context.Context, topic string, difficulty domain.Difficulty, count int) (GenerationReport, error)
}

// GenerationReport summarizes one generator invocation.
type GenerationReport struct {
	Topic      string            `json:"topic"`
	Difficulty domain.Difficulty `json:"difficulty"`
	Generated  int               `json:"generated"`
	Saved      int               `json:"saved"`
}

const (
	generateCountForeground = 3
	generateCountBackground = 5
)

// QuizService contains the quiz use cases. Session state is loaded and
// stored explicitly per call; there is no ambient per-user state.
type QuizService struct {
	sessions    SessionStore
	policy      *selection.Policy
	leaderboard LeaderboardStore
	generator   Generator
	now         func() time.Time
	rnd         *rand.Rand
}

func NewQuizService(sessions SessionStore, policy *selection.Policy, leaderboard LeaderboardStore, generator Generator) *QuizService {
	return &QuizService{
		sessions:    sessions,
		policy:      policy,
		leaderboard: leaderboard,
		generator:   generator,
		now:         time.Now,
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithClock is test-only for deterministic timestamps.
func (s *QuizService) WithClock(now func() time.Time) *QuizService {
	s.now = now
	return s
}

// Register validates the profile and initializes session state. Nothing
// is mutated when validation fails.
func (s *QuizService) Register(ctx context.Context, sessionID, name string, age int) (domain.UserProfile, error) {
	name = strings.TrimSpace(name)
	if len(name) < domain.MinNameLen || len(name) > domain.MaxNameLen {
		return domain.UserProfile{}, domain.ErrInvalidName
	}
	if age < domain.MinAge || age > domain.MaxAge {
		return domain.UserProfile{}, domain.ErrInvalidAge
	}

	profile := domain.UserProfile{Name: name, Age: age}
	state := domain.NewSessionState(profile, s.now())
	if err := s.sessions.Put(ctx, sessionID, state); err != nil {
		return domain.UserProfile{}, err
	}
	return profile, nil
}

// Logout destroys the session state.
func (s *QuizService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Destroy(ctx, sessionID)
}

// State returns the registered session state, or ErrNotRegistered.
func (s *QuizService) State(ctx context.Context, sessionID string) (*domain.SessionState, error) {
	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrNotRegistered
		}
		return nil, err
	}
	if !state.Registered() {
		return nil, domain.ErrNotRegistered
	}
	return state, nil
}

// QuestionsRequest carries the client's selection parameters.
type QuestionsRequest struct {
	Count int
	Mixed bool
	Topic string
}

// QuestionsPage is the selection result plus the stats the API reports.
type QuestionsPage struct {
	Questions      []domain.Question
	Difficulty     domain.Difficulty
	Topic          string
	Mixed          bool
	TotalAvailable int
}

// Questions runs the selection policy for the session. A short or empty
// page is not an error; when supply runs low a background generation is
// kicked off without blocking the response.
func (s *QuizService) Questions(ctx context.Context, sessionID string, req QuestionsRequest) (QuestionsPage, error) {
	state, err := s.State(ctx, sessionID)
	if err != nil {
		return QuestionsPage{}, err
	}

	result, err := s.policy.Select(ctx, selection.Request{
		Age:         state.Profile.Age,
		Count:       req.Count,
		Mixed:       req.Mixed,
		Topic:       req.Topic,
		AnsweredIDs: state.AnsweredIDs,
	})
	if err != nil {
		return QuestionsPage{}, err
	}

	total, err := s.policy.TotalAvailable(ctx)
	if err != nil {
		// Stats only; the quiz stays playable without them.
		log.Printf("question count unavailable: %v", err)
		total = 0
	}

	requested := req.Count
	if requested <= 0 {
		requested = selection.DefaultCount
	}
	if len(result.Questions) < requested {
		s.generateDetached(result.Topic, result.Difficulty)
	}

	return QuestionsPage{
		Questions:      result.Questions,
		Difficulty:     result.Difficulty,
		Topic:          result.Topic,
		Mixed:          result.Mixed,
		TotalAvailable: total,
	}, nil
}

// QuestionsForRun drives the loading phase of a run: select, and when
// the store is exhausted, await a generation pass and retry. Only this
// path awaits the generator synchronously.
func (s *QuizService) QuestionsForRun(ctx context.Context, sessionID string, req QuestionsRequest) (QuestionsPage, error) {
	const generationAttempts = 2

	for attempt := 0; ; attempt++ {
		page, err := s.Questions(ctx, sessionID, req)
		if err != nil {
			return QuestionsPage{}, err
		}
		if len(page.Questions) > 0 {
			return page, nil
		}
		if attempt >= generationAttempts {
			return QuestionsPage{}, domain.ErrNoQuestions
		}
		if _, err := s.Generate(ctx, sessionID, req.Topic, false); err != nil {
			return QuestionsPage{}, err
		}
	}
}

// Generate invokes the external generator for the session's difficulty
// bucket. Background calls return immediately; their outcome is logged,
// never surfaced.
func (s *QuizService) Generate(ctx context.Context, sessionID, topic string, background bool) (GenerationReport, error) {
	state, err := s.State(ctx, sessionID)
	if err != nil {
		return GenerationReport{}, err
	}

	difficulty := domain.ResolveDifficulty(state.Profile.Age)
	topic = topics.Normalize(topic)
	if !topics.Known(topic) {
		topic = topics.Random(s.rnd)
	}

	if background {
		s.generateDetached(topic, difficulty)
		return GenerationReport{Topic: topic, Difficulty: difficulty}, nil
	}

	report, err := s.generator.Generate(ctx, topic, difficulty, generateCountForeground)
	if err != nil {
		return GenerationReport{}, err
	}
	return report, nil
}

// generateDetached fires a generation pass without blocking the caller.
func (s *QuizService) generateDetached(topic string, difficulty domain.Difficulty) {
	if s.generator == nil {
		return
	}
	if topic == "" || topic == "mixed" {
		topic = topics.Random(s.rnd)
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := s.generator.Generate(ctx, topic, difficulty, generateCountBackground); err != nil {
			log.Printf("background generation failed for %s/%s: %v", topic, difficulty, err)
		}
	}()
}

// Leaderboard returns the top n entries, score descending.
func (s *QuizService) Leaderboard(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	return s.leaderboard.TopN(ctx, n)
}

// Topics returns the canonical topic catalog.
func (s *QuizService) Topics() []topics.Info {
	return topics.All()
}

// Loader adapts the service into an engine loading function for the
// websocket play channel.
func (s *QuizService) Loader(sessionID string, req QuestionsRequest) engine.Loader {
	return func(ctx context.Context) ([]domain.Question, error) {
		page, err := s.QuestionsForRun(ctx, sessionID, req)
		if err != nil {
			return nil, err
		}
		return page.Questions, nil
	}
}
