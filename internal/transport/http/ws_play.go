package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"funquiz/internal/app"
	"funquiz/internal/domain"
	"funquiz/internal/engine"
	"github.com/gorilla/websocket"
)

// PlayHandler runs quizzes over a websocket. The server owns the run:
// it presents questions one at a time, enforces the countdown, scores
// answers, and submits the finished run, so a client cannot award
// itself points by editing frames.
type PlayHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader

	questionDuration time.Duration
	loadBackoff      time.Duration
}

// PlayOption configures a PlayHandler.
type PlayOption func(*PlayHandler)

// WithPlayQuestionDuration overrides the per-question countdown.
func WithPlayQuestionDuration(d time.Duration) PlayOption {
	return func(h *PlayHandler) { h.questionDuration = d }
}

// WithPlayLoadBackoff overrides the loading retry backoff.
func WithPlayLoadBackoff(d time.Duration) PlayOption {
	return func(h *PlayHandler) { h.loadBackoff = d }
}

func NewPlayHandler(service *app.QuizService, opts ...PlayOption) *PlayHandler {
	h := &PlayHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		questionDuration: engine.DefaultQuestionDuration,
		loadBackoff:      engine.DefaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type playInbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type playAnswerPayload struct {
	Index    int `json:"index"`
	Selected int `json:"selected"`
}

type playSkipPayload struct {
	Index int `json:"index"`
}

type playOutbound struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// playQuestionView deliberately omits the correct option; the answer is
// revealed in the result frame only.
type playQuestionView struct {
	Index    int      `json:"index"`
	Total    int      `json:"total"`
	Seconds  int      `json:"seconds"`
	ID       string   `json:"id"`
	Topic    string   `json:"topic"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type playResultView struct {
	Index       int            `json:"index"`
	Outcome     engine.Outcome `json:"outcome"`
	Selected    int            `json:"selected"`
	Correct     bool           `json:"correct"`
	Answer      int            `json:"answer"`
	Explanation string         `json:"explanation,omitempty"`
	Score       int            `json:"score"`
}

type playCompletedView struct {
	Score     int  `json:"score"`
	Total     int  `json:"total"`
	Submitted bool `json:"submitted"`
	domain.SubmitResult
}

type playErrorPayload struct {
	Message string `json:"message"`
}

// playSender serializes frame delivery to the writer goroutine. Hooks
// fire from timer goroutines, so a send can race the handler shutting
// the channel; the mutex makes send-after-close a silent drop instead
// of a panic.
type playSender struct {
	mu     sync.Mutex
	closed bool
	ch     chan playOutbound
}

func newPlaySender() *playSender {
	return &playSender{ch: make(chan playOutbound, 16)}
}

func (s *playSender) send(msg playOutbound) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.ch <- msg
}

func (s *playSender) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// ServePlay upgrades the connection and plays one full run: loading,
// question loop, submission.
func (h *PlayHandler) ServePlay(w http.ResponseWriter, r *http.Request) {
	sessionID, err := r.Cookie(sessionCookie)
	if err != nil || sessionID.Value == "" {
		http.Error(w, "register before playing", http.StatusUnauthorized)
		return
	}

	req := questionsRequestFromQuery(r)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	send := newPlaySender()
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		var failed bool
		for msg := range send.ch {
			if failed {
				continue
			}
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				failed = true
			}
		}
	}()

	questions, err := engine.Load(r.Context(), h.service.Loader(sessionID.Value, req), h.loadBackoff)
	if err != nil {
		send.send(playOutbound{Type: "error", Payload: playErrorPayload{Message: playErrorMessage(err)}})
		send.close()
		<-writerDone
		return
	}

	topic := req.Topic
	if req.Mixed || topic == "" {
		topic = "mixed"
	}

	// The run completes from either goroutine (answer or timeout); a
	// read deadline unblocks ReadJSON so the loop can exit.
	completed := make(chan struct{})
	go func() {
		<-completed
		_ = conn.SetReadDeadline(time.Now().Add(50 * time.Millisecond))
	}()

	run := h.newRun(questions, sessionID.Value, topic, send, completed)
	run.Start()

	h.readLoop(conn, run, send)

	// Disconnect before the final question abandons the run; nothing is
	// scored or submitted.
	run.Abort()

	send.close()
	<-writerDone
}

// newRun wires the engine hooks to outbound frames. Submission failure
// does not cost the player their run: the completed frame still carries
// the local score. Hooks only fire after Start, so capturing the run
// pointer before assignment is safe.
func (h *PlayHandler) newRun(questions []domain.Question, sessionID, topic string, send *playSender, completed chan struct{}) *engine.Run {
	total := len(questions)
	var run *engine.Run
	hooks := engine.Hooks{
		OnQuestion: func(index int, q domain.Question) {
			send.send(playOutbound{Type: "question", Payload: playQuestionView{
				Index:    index,
				Total:    total,
				Seconds:  int(h.questionDuration / time.Second),
				ID:       q.ID,
				Topic:    q.Topic,
				Question: q.Prompt,
				Options:  q.Options,
			}})
		},
		OnResult: func(res engine.QuestionResult) {
			_, _, score := run.Progress()
			send.send(playOutbound{Type: "result", Payload: playResultView{
				Index:       res.Index,
				Outcome:     res.Outcome,
				Selected:    res.Selected,
				Correct:     res.Correct,
				Answer:      res.Question.Correct,
				Explanation: res.Question.Explanation,
				Score:       score,
			}})
		},
		OnComplete: func(summary engine.Summary) {
			defer close(completed)

			view := playCompletedView{Score: summary.Score, Total: summary.Total}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			result, err := h.service.Submit(ctx, sessionID, app.Submission{
				Topic:       topic,
				Score:       summary.Score,
				Total:       summary.Total,
				AnsweredIDs: summary.AnsweredIDs,
			})
			if err != nil {
				log.Printf("run submission failed: %v", err)
			} else {
				view.Submitted = true
				view.SubmitResult = result
			}
			send.send(playOutbound{Type: "completed", Payload: view})
		},
	}
	run = engine.NewRun(questions, hooks, engine.WithQuestionDuration(h.questionDuration))
	return run
}

func (h *PlayHandler) readLoop(conn *websocket.Conn, run *engine.Run, send *playSender) {
	for {
		var inbound playInbound
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		switch inbound.Type {
		case "answer":
			var payload playAnswerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send.send(playOutbound{Type: "error", Payload: playErrorPayload{Message: "invalid answer payload"}})
				continue
			}
			if err := run.Answer(payload.Index, payload.Selected); err != nil {
				send.send(playOutbound{Type: "error", Payload: playErrorPayload{Message: "run already finished"}})
			}
		case "skip":
			var payload playSkipPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send.send(playOutbound{Type: "error", Payload: playErrorPayload{Message: "invalid skip payload"}})
				continue
			}
			if err := run.Skip(payload.Index); err != nil {
				send.send(playOutbound{Type: "error", Payload: playErrorPayload{Message: "run already finished"}})
			}
		default:
			send.send(playOutbound{Type: "error", Payload: playErrorPayload{Message: "unsupported message type"}})
		}
	}
}

func playErrorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotRegistered):
		return "Please register first"
	case errors.Is(err, domain.ErrNoQuestions):
		return "No questions available right now"
	default:
		return "could not start quiz"
	}
}
