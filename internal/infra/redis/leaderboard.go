package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"funquiz/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	scoresKey  = "leaderboard:scores"
	playersKey = "leaderboard:players"
)

// Leaderboard stores scores in a sorted set (member = player name) and
// per-player metadata in a hash. Both writes for an upsert go through
// one MULTI/EXEC, so concurrent submissions under the same name cannot
// interleave into a lost update.
type Leaderboard struct {
	client *redis.Client
}

func NewLeaderboard(client *redis.Client) *Leaderboard {
	return &Leaderboard{client: client}
}

type playerMeta struct {
	Age   int `json:"age"`
	Games int `json:"games"`
}

// UpsertByName inserts or overwrites the entry keyed by entry.Name.
func (l *Leaderboard) UpsertByName(ctx context.Context, entry domain.LeaderboardEntry) error {
	meta, err := json.Marshal(playerMeta{Age: entry.Age, Games: entry.Games})
	if err != nil {
		return fmt.Errorf("encode player meta: %w", err)
	}
	_, err = l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, scoresKey, redis.Z{Score: float64(entry.Score), Member: entry.Name})
		pipe.HSet(ctx, playersKey, entry.Name, meta)
		return nil
	})
	if err != nil {
		return fmt.Errorf("leaderboard upsert: %w", err)
	}
	return nil
}

// TopN returns up to n entries by score descending. n <= 0 returns the
// whole board.
func (l *Leaderboard) TopN(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	stop := int64(n) - 1
	if n <= 0 {
		stop = -1
	}
	ranked, err := l.client.ZRevRangeWithScores(ctx, scoresKey, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("leaderboard range: %w", err)
	}
	if len(ranked) == 0 {
		return []domain.LeaderboardEntry{}, nil
	}

	names := make([]string, 0, len(ranked))
	for _, z := range ranked {
		names = append(names, z.Member.(string))
	}
	metas, err := l.client.HMGet(ctx, playersKey, names...).Result()
	if err != nil {
		return nil, fmt.Errorf("leaderboard meta: %w", err)
	}

	entries := make([]domain.LeaderboardEntry, 0, len(ranked))
	for i, z := range ranked {
		entry := domain.LeaderboardEntry{
			Name:  names[i],
			Score: int(z.Score),
		}
		if raw, ok := metas[i].(string); ok {
			var meta playerMeta
			if err := json.Unmarshal([]byte(raw), &meta); err == nil {
				entry.Age = meta.Age
				entry.Games = meta.Games
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
