package http

import (
	"net/http"

	"labor-quiz-service/internal/domain"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type adminStatus struct {
	IsAdmin bool `json:"isAdmin"`
}

func (a *API) HandleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	session, err := a.auth.Login(r.Context(), a.sessionID(r), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	a.setSessionCookie(w, session)
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "login successful"})
}

func (a *API) HandleAdminLogout(w http.ResponseWriter, r *http.Request) {
	if err := a.auth.Logout(r.Context(), a.sessionID(r)); err != nil {
		writeServiceError(w, err)
		return
	}
	a.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "logged out"})
}

func (a *API) HandleAdminCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, adminStatus{IsAdmin: a.auth.IsAdmin(r.Context(), a.sessionID(r))})
}

func (a *API) HandleAdminQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := a.service.AdminQuestions(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

func (a *API) HandleAddQuestion(w http.ResponseWriter, r *http.Request) {
	var in domain.QuestionInput
	if !decodeJSON(w, r, &in) {
		return
	}
	q, err := a.service.AddQuestion(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

func (a *API) HandleUpdateQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in domain.QuestionInput
	if !decodeJSON(w, r, &in) {
		return
	}
	q, err := a.service.UpdateQuestion(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (a *API) HandleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := a.service.DeleteQuestion(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "question deleted"})
}

func (a *API) HandleDeleteScore(w http.ResponseWriter, r *http.Request) {
	if err := a.service.DeleteScore(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "score deleted"})
}

func (a *API) HandleClearScores(w http.ResponseWriter, r *http.Request) {
	if err := a.service.ClearScores(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "all scores deleted"})
}
