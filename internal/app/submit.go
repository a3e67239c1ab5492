package app

import (
	"context"
	"log"

	"funquiz/internal/domain"
)

const (
	pointsPerCorrect   = 10
	perfectScoreBonus  = 50
	highScoreBonus     = 20
	highScoreThreshold = 0.8
)

// ComputePoints converts a run outcome into leaderboard points: 10 per
// correct answer, +50 for a perfect run, else +20 at 80% or better.
func ComputePoints(correct, total int) int {
	points := correct * pointsPerCorrect
	switch {
	case total > 0 && correct == total:
		points += perfectScoreBonus
	case total > 0 && float64(correct) >= highScoreThreshold*float64(total):
		points += highScoreBonus
	}
	return points
}

// Submission is a completed run as reported by the client or the play
// channel.
type Submission struct {
	Topic       string
	Score       int
	Total       int
	AnsweredIDs []string
}

// Submit folds a completed run into the session and the leaderboard.
// Session state is authoritative: a failed leaderboard write is logged
// and swallowed, never rolled back, so the player always sees their
// result.
func (s *QuizService) Submit(ctx context.Context, sessionID string, sub Submission) (domain.SubmitResult, error) {
	state, err := s.State(ctx, sessionID)
	if err != nil {
		return domain.SubmitResult{}, err
	}

	points := ComputePoints(sub.Score, sub.Total)

	state.MergeAnsweredIDs(sub.AnsweredIDs)
	state.GamesPlayed++
	state.TotalScore += points
	state.LastResult = &domain.LastResult{
		Score: sub.Score,
		Total: sub.Total,
		Topic: sub.Topic,
	}

	if err := s.sessions.Put(ctx, sessionID, state); err != nil {
		return domain.SubmitResult{}, err
	}

	entry := domain.LeaderboardEntry{
		Name:  state.Profile.Name,
		Age:   state.Profile.Age,
		Score: state.TotalScore,
		Games: state.GamesPlayed,
	}
	if err := s.leaderboard.UpsertByName(ctx, entry); err != nil {
		log.Printf("leaderboard upsert failed for %s: %v", entry.Name, err)
	}

	return domain.SubmitResult{
		Score:         sub.Score,
		Total:         sub.Total,
		PointsEarned:  points,
		TotalScore:    state.TotalScore,
		GamesPlayed:   state.GamesPlayed,
		TotalAnswered: len(state.AnsweredIDs),
	}, nil
}
