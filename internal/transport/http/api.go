package http

import (
	"net/http"
	"time"

	"labor-quiz-service/internal/app"
	"labor-quiz-service/internal/reaction"
)

// SessionCookie configures the session cookie.
type SessionCookie struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

// API bundles the quiz use cases behind the JSON routes.
type API struct {
	service *app.QuizService
	auth    *app.AdminAuth
	cookie  SessionCookie
}

func NewAPI(service *app.QuizService, auth *app.AdminAuth, cookie SessionCookie) *API {
	if cookie.Name == "" {
		cookie.Name = "quiz_session"
	}
	return &API{service: service, auth: auth, cookie: cookie}
}

// NewRouter wires every route of the service.
func NewRouter(api *API, challenge reaction.Config) http.Handler {
	ws := NewWSHandler(api, challenge)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("POST /api/session", api.HandleStartSession)
	mux.HandleFunc("GET /api/session", api.HandleGetSession)
	mux.HandleFunc("GET /api/questions", api.HandleQuestions)
	mux.HandleFunc("POST /api/quiz/submit", api.HandleSubmitAnswers)
	mux.HandleFunc("POST /api/score", api.HandleSubmitScore)
	mux.HandleFunc("GET /api/scores", api.HandleScores)
	mux.HandleFunc("GET /api/result", api.HandleResult)

	mux.HandleFunc("POST /api/admin/login", api.HandleAdminLogin)
	mux.HandleFunc("POST /api/admin/logout", api.HandleAdminLogout)
	mux.HandleFunc("GET /api/admin/check", api.HandleAdminCheck)
	mux.Handle("GET /api/admin/questions", api.requireAdmin(api.HandleAdminQuestions))
	mux.Handle("POST /api/admin/questions", api.requireAdmin(api.HandleAddQuestion))
	mux.Handle("PUT /api/admin/questions/{id}", api.requireAdmin(api.HandleUpdateQuestion))
	mux.Handle("DELETE /api/admin/questions/{id}", api.requireAdmin(api.HandleDeleteQuestion))
	mux.Handle("DELETE /api/admin/scores/{id}", api.requireAdmin(api.HandleDeleteScore))
	mux.Handle("DELETE /api/admin/scores", api.requireAdmin(api.HandleClearScores))

	mux.HandleFunc("GET /ws/challenge", ws.ServeChallenge)
	mux.HandleFunc("GET /ws/scores", ws.ServeScores)

	return logRequests(mux)
}
