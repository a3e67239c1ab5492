package domain

import "time"

// Difficulty is one of the three question tiers. Tiers are totally
// ordered: easy < medium < hard.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

var difficultyRank = map[Difficulty]int{
	DifficultyEasy:   1,
	DifficultyMedium: 2,
	DifficultyHard:   3,
}

// Valid reports whether d is a known difficulty tier.
func (d Difficulty) Valid() bool {
	_, ok := difficultyRank[d]
	return ok
}

// Rank returns the position of d in the difficulty order, or 0 for
// unknown values.
func (d Difficulty) Rank() int {
	return difficultyRank[d]
}

// ResolveDifficulty maps a registered age to its difficulty bucket.
// Ages are validated at registration, so out-of-range values only occur
// for corrupted sessions; they fall back to easy.
func ResolveDifficulty(age int) Difficulty {
	switch {
	case age >= 15:
		return DifficultyHard
	case age >= 12:
		return DifficultyMedium
	default:
		return DifficultyEasy
	}
}

// AllowedDifficulties returns every tier at or below the bucket resolved
// from age. A player never receives questions harder than their bucket.
func AllowedDifficulties(age int) []Difficulty {
	max := ResolveDifficulty(age).Rank()
	allowed := make([]Difficulty, 0, max)
	for _, d := range []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard} {
		if d.Rank() <= max {
			allowed = append(allowed, d)
		}
	}
	return allowed
}

// Question is an MCQ record from the question store. Questions are
// created by the generator and read-only afterwards.
type Question struct {
	ID          string     `json:"id"`
	Topic       string     `json:"topic"`
	Difficulty  Difficulty `json:"difficulty"`
	Prompt      string     `json:"question"`
	Options     []string   `json:"options"`
	Correct     int        `json:"correct"`
	Explanation string     `json:"explanation,omitempty"`
}

// UserProfile is resolved once at registration and immutable for the
// lifetime of the session.
type UserProfile struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

const (
	MinNameLen = 2
	MaxNameLen = 50
	MinAge     = 8
	MaxAge     = 16
)

// LastResult captures the outcome of the most recent completed run.
type LastResult struct {
	Score int    `json:"score"`
	Total int    `json:"total"`
	Topic string `json:"topic"`
}

// SessionState is the durable per-player state. It has a single logical
// owner (one browser session) and is mutated only by registration,
// submission, and logout.
type SessionState struct {
	Profile      UserProfile `json:"profile"`
	TotalScore   int         `json:"total_score"`
	GamesPlayed  int         `json:"games_played"`
	AnsweredIDs  []string    `json:"answered_ids"`
	LastResult   *LastResult `json:"last_result,omitempty"`
	RegisteredAt time.Time   `json:"registered_at"`
}

// NewSessionState initializes state for a freshly registered profile.
func NewSessionState(profile UserProfile, now time.Time) *SessionState {
	return &SessionState{
		Profile:      profile,
		AnsweredIDs:  []string{},
		RegisteredAt: now,
	}
}

// Registered reports whether the state carries a valid profile.
func (s *SessionState) Registered() bool {
	return s != nil && s.Profile.Name != ""
}

// MergeAnsweredIDs unions ids into the answered set. The set only ever
// grows within a session lifetime.
func (s *SessionState) MergeAnsweredIDs(ids []string) {
	seen := make(map[string]struct{}, len(s.AnsweredIDs)+len(ids))
	for _, id := range s.AnsweredIDs {
		seen[id] = struct{}{}
	}
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		s.AnsweredIDs = append(s.AnsweredIDs, id)
	}
}

// LeaderboardEntry is one row of the shared scoreboard, keyed by player
// name. Last writer wins on age/games/score.
type LeaderboardEntry struct {
	Name  string `json:"name"`
	Age   int    `json:"age"`
	Score int    `json:"score"`
	Games int    `json:"games"`
}

// SubmitResult summarizes a completed run after it has been folded into
// the session.
type SubmitResult struct {
	Score         int `json:"score"`
	Total         int `json:"total"`
	PointsEarned  int `json:"points_earned"`
	TotalScore    int `json:"total_score"`
	GamesPlayed   int `json:"games_played"`
	TotalAnswered int `json:"total_answered"`
}
