// Package engine implements the quiz run state machine: a fixed ordered
// list of questions, a per-question countdown, scoring, and answered-ID
// accumulation. One run has one logical owner; the only concurrent
// caller is the timeout timer, and resolution is first-event-wins.
package engine

import (
	"sync"
	"time"

	"funquiz/internal/domain"
)

// State of a run. A run never re-enters InProgress after Completed.
type State string

const (
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
	StateAbandoned  State = "abandoned"
)

// Outcome records how a question ended. Skips and timeouts both forgo
// the correctness check but still mark the question as seen.
type Outcome string

const (
	OutcomeAnswered Outcome = "answered"
	OutcomeSkipped  Outcome = "skipped"
	OutcomeTimedOut Outcome = "timed_out"
)

// DefaultQuestionDuration is the per-question countdown.
const DefaultQuestionDuration = 30 * time.Second

// TimerFactory schedules fn after d and returns a stop function. The
// production factory wraps time.AfterFunc; tests substitute manual
// triggers.
type TimerFactory func(d time.Duration, fn func()) (stop func())

func afterFuncTimer(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// QuestionResult describes the resolution of a single question.
type QuestionResult struct {
	Index    int
	Question domain.Question
	Selected int // -1 for skip and timeout
	Correct  bool
	Outcome  Outcome
}

// Summary is emitted exactly once when a run completes.
type Summary struct {
	Score       int
	Total       int
	AnsweredIDs []string
}

// Hooks are the run's outbound events. They are invoked without the
// run lock held; a nil hook is skipped.
type Hooks struct {
	// OnQuestion fires when a question becomes current, including the
	// first question on Start.
	OnQuestion func(index int, q domain.Question)
	// OnResult fires when a question is resolved by answer, skip, or
	// timeout.
	OnResult func(QuestionResult)
	// OnComplete fires once after the final question resolves.
	OnComplete func(Summary)
}

// Run tracks progress through one quiz play-through.
type Run struct {
	mu          sync.Mutex
	questions   []domain.Question
	index       int
	score       int
	answeredIDs []string
	resolved    bool // current question already ended
	state       State
	started     bool

	duration  time.Duration
	newTimer  TimerFactory
	stopTimer func()
	timerGen  int

	hooks Hooks
}

// Option configures a Run.
type Option func(*Run)

// WithQuestionDuration overrides the per-question countdown.
func WithQuestionDuration(d time.Duration) Option {
	return func(r *Run) { r.duration = d }
}

// WithTimerFactory substitutes the timeout scheduler, for tests.
func WithTimerFactory(f TimerFactory) Option {
	return func(r *Run) { r.newTimer = f }
}

// NewRun builds a run over a non-empty ordered question list. The
// caller is responsible for the loading phase (selection plus the
// generation fallback) before constructing a run.
func NewRun(questions []domain.Question, hooks Hooks, opts ...Option) *Run {
	r := &Run{
		questions:   questions,
		answeredIDs: make([]string, 0, len(questions)),
		state:       StateInProgress,
		duration:    DefaultQuestionDuration,
		newTimer:    afterFuncTimer,
		hooks:       hooks,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start presents the first question and begins its countdown.
func (r *Run) Start() {
	r.mu.Lock()
	if r.started || r.state != StateInProgress || len(r.questions) == 0 {
		r.mu.Unlock()
		return
	}
	r.started = true
	q := r.questions[r.index]
	index := r.index
	r.armTimerLocked()
	r.mu.Unlock()

	if r.hooks.OnQuestion != nil {
		r.hooks.OnQuestion(index, q)
	}
}

// Answer resolves question index with the player's selection. An index
// that is not the current question is a stale duplicate (the question
// already resolved and the run advanced) and is a no-op: a selection,
// once set, is immutable.
func (r *Run) Answer(index, selected int) error {
	return r.resolve(OutcomeAnswered, index, selected)
}

// Skip resolves question index without a correctness check.
func (r *Run) Skip(index int) error {
	return r.resolve(OutcomeSkipped, index, -1)
}

// Abort discards an unfinished run: the timer is cancelled and no
// completion fires. Aborting a completed run is a no-op.
func (r *Run) Abort() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateInProgress {
		return
	}
	r.state = StateAbandoned
	r.disarmTimerLocked()
}

// State returns the run's current state.
func (r *Run) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Progress returns (current index, total, score).
func (r *Run) Progress() (int, int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index, len(r.questions), r.score
}

func (r *Run) resolve(outcome Outcome, index, selected int) error {
	r.mu.Lock()
	if r.state != StateInProgress {
		r.mu.Unlock()
		return domain.ErrRunFinished
	}
	if r.resolved || index != r.index {
		r.mu.Unlock()
		return nil
	}
	events := r.resolveLocked(outcome, selected)
	r.mu.Unlock()

	events.fire(r.hooks)
	return nil
}

// timeout fires from the timer goroutine. The generation check makes a
// stale timer for an already-resolved question a no-op.
func (r *Run) timeout(gen int) {
	r.mu.Lock()
	if r.state != StateInProgress || r.resolved || gen != r.timerGen {
		r.mu.Unlock()
		return
	}
	events := r.resolveLocked(OutcomeTimedOut, -1)
	r.mu.Unlock()

	events.fire(r.hooks)
}

// resolveLocked ends the current question, records the result, and
// either advances to the next question or completes the run. The timer
// for question i is always stopped before the timer for i+1 starts.
func (r *Run) resolveLocked(outcome Outcome, selected int) pendingEvents {
	r.resolved = true
	r.disarmTimerLocked()

	q := r.questions[r.index]
	correct := outcome == OutcomeAnswered && selected == q.Correct
	if correct {
		r.score++
	}
	r.answeredIDs = append(r.answeredIDs, q.ID)

	var events pendingEvents
	events.result = &QuestionResult{
		Index:    r.index,
		Question: q,
		Selected: selected,
		Correct:  correct,
		Outcome:  outcome,
	}

	r.index++
	if r.index >= len(r.questions) {
		r.state = StateCompleted
		ids := make([]string, len(r.answeredIDs))
		copy(ids, r.answeredIDs)
		events.summary = &Summary{
			Score:       r.score,
			Total:       len(r.questions),
			AnsweredIDs: ids,
		}
		return events
	}

	r.resolved = false
	next := r.questions[r.index]
	events.question = &questionEvent{index: r.index, question: next}
	r.armTimerLocked()
	return events
}

func (r *Run) armTimerLocked() {
	if r.duration <= 0 {
		return
	}
	r.timerGen++
	gen := r.timerGen
	r.stopTimer = r.newTimer(r.duration, func() { r.timeout(gen) })
}

func (r *Run) disarmTimerLocked() {
	if r.stopTimer != nil {
		r.stopTimer()
		r.stopTimer = nil
	}
}

type questionEvent struct {
	index    int
	question domain.Question
}

// pendingEvents batches hook invocations so they run outside the lock.
type pendingEvents struct {
	result   *QuestionResult
	question *questionEvent
	summary  *Summary
}

func (e pendingEvents) fire(hooks Hooks) {
	if e.result != nil && hooks.OnResult != nil {
		hooks.OnResult(*e.result)
	}
	if e.question != nil && hooks.OnQuestion != nil {
		hooks.OnQuestion(e.question.index, e.question.question)
	}
	if e.summary != nil && hooks.OnComplete != nil {
		hooks.OnComplete(*e.summary)
	}
}
