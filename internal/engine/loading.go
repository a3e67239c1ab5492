package engine

import (
	"context"
	"errors"
	"log"
	"time"

	"funquiz/internal/domain"
)

// DefaultRetryBackoff is the pause between loading attempts after a
// transient failure.
const DefaultRetryBackoff = 2 * time.Second

// Loader produces the candidate question list for a run.
type Loader func(ctx context.Context) ([]domain.Question, error)

// Load drives the loading phase of a run. Transient loader failures are
// retried after a fixed backoff until the context is canceled; this is
// user-facing background retry, not a fatal error. A successful but
// empty result returns domain.ErrNoQuestions so the caller can trigger
// generation and call Load again.
func Load(ctx context.Context, loader Loader, backoff time.Duration) ([]domain.Question, error) {
	if backoff <= 0 {
		backoff = DefaultRetryBackoff
	}
	for {
		questions, err := loader(ctx)
		if err == nil {
			if len(questions) == 0 {
				return nil, domain.ErrNoQuestions
			}
			return questions, nil
		}
		// Exhaustion is a signal, not a transient failure: the caller
		// must run generation before trying again.
		if errors.Is(err, domain.ErrNoQuestions) {
			return nil, err
		}

		log.Printf("question load failed, retrying in %s: %v", backoff, err)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
