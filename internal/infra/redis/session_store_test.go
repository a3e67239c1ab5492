package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"funquiz/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestClient(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestSessionStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(newTestClient(t), time.Minute)

	state := domain.NewSessionState(domain.UserProfile{Name: "Asha", Age: 10}, time.Now())
	state.TotalScore = 80
	state.MergeAnsweredIDs([]string{"q1", "q2"})

	if err := store.Put(ctx, "s1", state); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Profile.Name != "Asha" || got.TotalScore != 80 || len(got.AnsweredIDs) != 2 {
		t.Fatalf("unexpected state %+v", got)
	}
}

func TestSessionStoreDestroy(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(newTestClient(t), time.Minute)

	state := domain.NewSessionState(domain.UserProfile{Name: "Asha", Age: 10}, time.Now())
	_ = store.Put(ctx, "s1", state)

	if err := store.Destroy(ctx, "s1"); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSessionStoreMissing(t *testing.T) {
	store := NewSessionStore(newTestClient(t), time.Minute)
	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
