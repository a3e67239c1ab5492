package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"funquiz/internal/domain"
)

// Leaderboard is an in-memory scoreboard keyed by player name, with an
// optional JSON snapshot file. The upsert and the snapshot write happen
// under one lock, so no caller ever observes a partial update and two
// submissions for the same name cannot lose each other's writes.
type Leaderboard struct {
	mu      sync.Mutex
	entries map[string]domain.LeaderboardEntry
	path    string // empty disables persistence
}

func NewLeaderboard() *Leaderboard {
	return &Leaderboard{entries: make(map[string]domain.LeaderboardEntry)}
}

// NewLeaderboardWithFile loads an existing snapshot from path (if any)
// and persists every upsert back to it.
func NewLeaderboardWithFile(path string) (*Leaderboard, error) {
	lb := &Leaderboard{
		entries: make(map[string]domain.LeaderboardEntry),
		path:    path,
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return lb, nil
		}
		return nil, fmt.Errorf("read leaderboard snapshot: %w", err)
	}
	var entries []domain.LeaderboardEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode leaderboard snapshot: %w", err)
	}
	for _, entry := range entries {
		lb.entries[entry.Name] = entry
	}
	return lb, nil
}

// UpsertByName inserts or overwrites the entry for entry.Name.
func (l *Leaderboard) UpsertByName(_ context.Context, entry domain.LeaderboardEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[entry.Name] = entry
	return l.snapshotLocked()
}

// TopN returns up to n entries sorted by score descending, name
// ascending on ties. n <= 0 returns everything.
func (l *Leaderboard) TopN(_ context.Context, n int) ([]domain.LeaderboardEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]domain.LeaderboardEntry, 0, len(l.entries))
	for _, entry := range l.entries {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Name < out[j].Name
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// snapshotLocked writes the full board via temp-file rename so a crash
// mid-write never leaves a truncated snapshot.
func (l *Leaderboard) snapshotLocked() error {
	if l.path == "" {
		return nil
	}
	entries := make([]domain.LeaderboardEntry, 0, len(l.entries))
	for _, entry := range l.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Name < entries[j].Name
	})

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(l.path), ".leaderboard-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), l.path)
}
