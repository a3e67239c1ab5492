package http

import (
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"funquiz/internal/app"
	"funquiz/internal/domain"
	"funquiz/internal/generate"
	"funquiz/internal/infra/memory"
	"funquiz/internal/selection"
	"github.com/gorilla/websocket"
)

func newPlayServer(t *testing.T, questions []domain.Question, opts ...PlayOption) (*httptest.Server, *http.Client) {
	t.Helper()
	repo := memory.NewQuestionRepository(questions)
	service := app.NewQuizService(
		memory.NewSessionStore(),
		selection.NewPolicy(repo),
		memory.NewLeaderboard(),
		generate.NewStatic(repo),
	)
	server := httptest.NewServer(NewMux(NewAPI(service), NewPlayHandler(service, opts...)))
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return server, &http.Client{Jar: jar}
}

func dialPlay(t *testing.T, server *httptest.Server, client *http.Client, query string) *websocket.Conn {
	t.Helper()
	base, _ := url.Parse(server.URL)
	header := http.Header{}
	for _, c := range client.Jar.Cookies(base) {
		header.Add("Cookie", c.Name+"="+c.Value)
	}

	u := "ws" + server.URL[len("http"):] + "/ws/play" + query
	conn, _, err := websocket.DefaultDialer.Dial(u, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn, expect string) map[string]any {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected %s frame, got %s (%v)", expect, msg.Type, msg.Payload)
	}
	return msg.Payload
}

func sendFrame(t *testing.T, conn *websocket.Conn, frameType string, payload map[string]any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": frameType, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", frameType, err)
	}
}

func TestPlayFullRun(t *testing.T) {
	server, client := newPlayServer(t, sampleQuestions("sports", 3),
		WithPlayQuestionDuration(time.Minute))
	register(t, client, server.URL, "Asha", 10)

	conn := dialPlay(t, server, client, "?count=3&topic=sports")

	for i := 0; i < 3; i++ {
		question := readFrame(t, conn, "question")
		if question["index"] != float64(i) {
			t.Fatalf("expected question index %d, got %v", i, question["index"])
		}
		if question["total"] != float64(3) {
			t.Fatalf("expected total 3, got %v", question["total"])
		}
		if _, leaked := question["correct"]; leaked {
			t.Fatal("question frame must not reveal the answer")
		}

		// Option 0 is always correct in the fixture set.
		sendFrame(t, conn, "answer", map[string]any{"index": i, "selected": 0})

		result := readFrame(t, conn, "result")
		if result["correct"] != true {
			t.Fatalf("expected a correct result, got %v", result)
		}
		if result["score"] != float64(i+1) {
			t.Fatalf("expected running score %d, got %v", i+1, result["score"])
		}
	}

	completed := readFrame(t, conn, "completed")
	if completed["score"] != float64(3) || completed["total"] != float64(3) {
		t.Fatalf("unexpected completion %v", completed)
	}
	if completed["submitted"] != true {
		t.Fatalf("run was not submitted: %v", completed)
	}
	// 3 correct of 3: 30 base plus the perfect bonus.
	if completed["points_earned"] != float64(80) {
		t.Fatalf("expected 80 points, got %v", completed["points_earned"])
	}
}

func TestPlaySkipAndWrongAnswerScoreNothing(t *testing.T) {
	server, client := newPlayServer(t, sampleQuestions("sports", 2),
		WithPlayQuestionDuration(time.Minute))
	register(t, client, server.URL, "Asha", 10)

	conn := dialPlay(t, server, client, "?count=2&topic=sports")

	readFrame(t, conn, "question")
	sendFrame(t, conn, "skip", map[string]any{"index": 0})
	result := readFrame(t, conn, "result")
	if result["outcome"] != "skipped" || result["correct"] != false {
		t.Fatalf("unexpected skip result %v", result)
	}

	readFrame(t, conn, "question")
	sendFrame(t, conn, "answer", map[string]any{"index": 1, "selected": 2})
	result = readFrame(t, conn, "result")
	if result["outcome"] != "answered" || result["correct"] != false {
		t.Fatalf("unexpected wrong-answer result %v", result)
	}

	completed := readFrame(t, conn, "completed")
	if completed["score"] != float64(0) {
		t.Fatalf("expected score 0, got %v", completed["score"])
	}
}

func TestPlayTimeoutAdvancesRun(t *testing.T) {
	server, client := newPlayServer(t, sampleQuestions("sports", 1),
		WithPlayQuestionDuration(100*time.Millisecond))
	register(t, client, server.URL, "Asha", 10)

	conn := dialPlay(t, server, client, "?count=1&topic=sports")

	readFrame(t, conn, "question")
	result := readFrame(t, conn, "result")
	if result["outcome"] != "timed_out" {
		t.Fatalf("expected timeout, got %v", result)
	}
	completed := readFrame(t, conn, "completed")
	if completed["score"] != float64(0) {
		t.Fatalf("expected score 0 after timeout, got %v", completed)
	}
}

func TestPlayDuplicateAnswerIsIgnored(t *testing.T) {
	server, client := newPlayServer(t, sampleQuestions("sports", 2),
		WithPlayQuestionDuration(time.Minute))
	register(t, client, server.URL, "Asha", 10)

	conn := dialPlay(t, server, client, "?count=2&topic=sports")

	readFrame(t, conn, "question")
	sendFrame(t, conn, "answer", map[string]any{"index": 0, "selected": 0})
	readFrame(t, conn, "result")

	// A stale re-answer for question 0 must not resolve question 1.
	sendFrame(t, conn, "answer", map[string]any{"index": 0, "selected": 2})

	question := readFrame(t, conn, "question")
	if question["index"] != float64(1) {
		t.Fatalf("expected question 1, got %v", question)
	}
	sendFrame(t, conn, "answer", map[string]any{"index": 1, "selected": 0})
	result := readFrame(t, conn, "result")
	if result["score"] != float64(2) {
		t.Fatalf("stale answer changed scoring: %v", result)
	}
}

func TestPlayRequiresSession(t *testing.T) {
	server, _ := newPlayServer(t, nil)

	u := "ws" + server.URL[len("http"):] + "/ws/play"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatal("expected dial to fail without a session cookie")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", resp)
	}
}

// The loading phase falls back to synchronous generation when the store
// is empty, so a fresh deployment can still start a run.
func TestPlayGeneratesWhenStoreEmpty(t *testing.T) {
	server, client := newPlayServer(t, nil, WithPlayQuestionDuration(time.Minute))
	register(t, client, server.URL, "Asha", 10)

	conn := dialPlay(t, server, client, "?count=3&topic=sports")

	question := readFrame(t, conn, "question")
	if question["question"] == "" {
		t.Fatalf("expected a generated question, got %v", question)
	}
}
