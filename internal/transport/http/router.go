package http

import "net/http"

// NewMux assembles the route table shared by the server command and the
// transport tests.
func NewMux(api *API, play *PlayHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/api/user/register", api.HandleRegister)
	mux.HandleFunc("/api/user/logout", api.HandleLogout)
	mux.HandleFunc("/api/quiz/questions", api.HandleQuestions)
	mux.HandleFunc("/api/quiz/generate", api.HandleGenerate)
	mux.HandleFunc("/api/quiz/submit", api.HandleSubmit)
	mux.HandleFunc("/api/quiz/leaderboard", api.HandleLeaderboard)
	mux.HandleFunc("/api/quiz/topics", api.HandleTopics)

	mux.HandleFunc("/ws/play", play.ServePlay)
	return mux
}
