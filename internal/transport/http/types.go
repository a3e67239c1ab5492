package http

import (
	"funquiz/internal/domain"
	"funquiz/internal/topics"
)

// Every API response is a success envelope; success:false carries a
// message and, for unregistered callers, a redirect path.

type registerRequest struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

type registerResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	User    domain.UserProfile `json:"user"`
}

type questionView struct {
	ID          string            `json:"id"`
	Topic       string            `json:"topic"`
	Question    string            `json:"question"`
	Options     []string          `json:"options"`
	Correct     int               `json:"correct"`
	Explanation string            `json:"explanation,omitempty"`
	Difficulty  domain.Difficulty `json:"difficulty"`
}

type questionsResponse struct {
	Success        bool              `json:"success"`
	Mixed          bool              `json:"mixed"`
	Difficulty     domain.Difficulty `json:"difficulty"`
	Topic          string            `json:"topic"`
	Count          int               `json:"count"`
	TotalAvailable int               `json:"total_available"`
	Questions      []questionView    `json:"questions"`
}

type submitRequest struct {
	Topic       string   `json:"topic"`
	Score       int      `json:"score"`
	Total       int      `json:"total"`
	AnsweredIDs []string `json:"answered_ids"`
}

type submitResponse struct {
	Success bool `json:"success"`
	domain.SubmitResult
}

type generateResponse struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	Topic      string            `json:"topic"`
	Difficulty domain.Difficulty `json:"difficulty"`
	Generated  int               `json:"generated,omitempty"`
	Saved      int               `json:"saved,omitempty"`
}

type leaderboardResponse struct {
	Success     bool                      `json:"success"`
	Leaderboard []domain.LeaderboardEntry `json:"leaderboard"`
}

type topicsResponse struct {
	Success bool         `json:"success"`
	Topics  []topics.Info `json:"topics"`
}

type simpleResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type errorResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

func toQuestionViews(questions []domain.Question) []questionView {
	views := make([]questionView, 0, len(questions))
	for _, q := range questions {
		views = append(views, questionView{
			ID:          q.ID,
			Topic:       q.Topic,
			Question:    q.Prompt,
			Options:     q.Options,
			Correct:     q.Correct,
			Explanation: q.Explanation,
			Difficulty:  q.Difficulty,
		})
	}
	return views
}
