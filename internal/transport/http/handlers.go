package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"funquiz/internal/app"
	"funquiz/internal/domain"
	"github.com/google/uuid"
)

const (
	sessionCookie       = "quiz_session"
	defaultLeaderboardN = 10
)

// API exposes the quiz use cases over the JSON envelope the web client
// expects. Domain failures stay inside the envelope (success:false);
// raw HTTP errors are reserved for malformed transport input.
type API struct {
	service *app.QuizService
}

func NewAPI(service *app.QuizService) *API {
	return &API{service: service}
}

func (a *API) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}
	defer r.Body.Close()

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid JSON body"})
		return
	}

	sessionID := a.sessionID(r)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	profile, err := a.service.Register(r.Context(), sessionID, req.Name, req.Age)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, registerResponse{
		Success: true,
		Message: "Registration successful",
		User:    profile,
	})
}

func (a *API) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}

	if sessionID := a.sessionID(r); sessionID != "" {
		if err := a.service.Logout(r.Context(), sessionID); err != nil {
			log.Printf("logout failed: %v", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:   sessionCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	writeJSON(w, http.StatusOK, simpleResponse{Success: true, Message: "Logged out successfully"})
}

func (a *API) HandleQuestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	page, err := a.service.Questions(r.Context(), a.sessionID(r), questionsRequestFromQuery(r))
	if err != nil {
		a.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, questionsResponse{
		Success:        true,
		Mixed:          page.Mixed,
		Difficulty:     page.Difficulty,
		Topic:          page.Topic,
		Count:          len(page.Questions),
		TotalAvailable: page.TotalAvailable,
		Questions:      toQuestionViews(page.Questions),
	})
}

func (a *API) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}

	background := parseBoolParam(r, "background")
	topic := r.URL.Query().Get("topic")

	report, err := a.service.Generate(r.Context(), a.sessionID(r), topic, background)
	if err != nil {
		if errors.Is(err, domain.ErrNotRegistered) {
			a.writeServiceError(w, err)
			return
		}
		// Generation problems are never shown raw; the client keeps its
		// "preparing more questions" state and retries.
		log.Printf("generation failed: %v", err)
		writeJSON(w, http.StatusOK, simpleResponse{Message: "Generation did not complete"})
		return
	}

	message := "Questions generated successfully"
	if background {
		message = "Generation started in background"
	}
	writeJSON(w, http.StatusOK, generateResponse{
		Success:    true,
		Message:    message,
		Topic:      report.Topic,
		Difficulty: report.Difficulty,
		Generated:  report.Generated,
		Saved:      report.Saved,
	})
}

func (a *API) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}
	defer r.Body.Close()

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid JSON body"})
		return
	}

	result, err := a.service.Submit(r.Context(), a.sessionID(r), app.Submission{
		Topic:       req.Topic,
		Score:       req.Score,
		Total:       req.Total,
		AnsweredIDs: req.AnsweredIDs,
	})
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, submitResponse{Success: true, SubmitResult: result})
}

func (a *API) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	limit := defaultLeaderboardN
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	entries, err := a.service.Leaderboard(r.Context(), limit)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, leaderboardResponse{Success: true, Leaderboard: entries})
}

func (a *API) HandleTopics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, topicsResponse{Success: true, Topics: a.service.Topics()})
}

func (a *API) sessionID(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (a *API) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotRegistered):
		writeJSON(w, http.StatusOK, errorResponse{
			Message:  "Please register first",
			Redirect: "/",
		})
	case errors.Is(err, domain.ErrInvalidName), errors.Is(err, domain.ErrInvalidAge):
		writeJSON(w, http.StatusOK, errorResponse{Message: err.Error()})
	default:
		log.Printf("request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "request failed"})
	}
}

func questionsRequestFromQuery(r *http.Request) app.QuestionsRequest {
	count := 0
	if raw := r.URL.Query().Get("count"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			count = parsed
		}
	}
	return app.QuestionsRequest{
		Count: count,
		Mixed: parseBoolParam(r, "mixed"),
		Topic: r.URL.Query().Get("topic"),
	}
}

// parseBoolParam mirrors the web client, which sends flags as ?mixed=1.
func parseBoolParam(r *http.Request, key string) bool {
	if !r.URL.Query().Has(key) {
		return false
	}
	value := strings.ToLower(r.URL.Query().Get(key))
	return value != "0" && value != "false" && value != "no"
}

func writeMethodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Message: "method not allowed"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
