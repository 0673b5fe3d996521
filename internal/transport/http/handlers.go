package http

import (
	"net/http"
	"strconv"

	"labor-quiz-service/internal/domain"
)

type startSessionRequest struct {
	StudentName string `json:"studentName"`
}

type sessionView struct {
	StudentName    string              `json:"studentName,omitempty"`
	Admin          bool                `json:"admin"`
	BestReactionMs *int64              `json:"bestReactionMs,omitempty"`
	LastResult     *domain.ScoreRecord `json:"lastResult,omitempty"`
}

func newSessionView(s domain.Session) sessionView {
	v := sessionView{StudentName: s.StudentName, Admin: s.Admin, LastResult: s.LastResult}
	if s.BestReaction != nil {
		ms := s.BestReaction.Milliseconds()
		v.BestReactionMs = &ms
	}
	return v
}

type submitAnswersRequest struct {
	// Keys are question IDs; JSON object keys are always strings.
	Answers map[string]int `json:"answers"`
}

func (a *API) HandleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	session, err := a.service.StartSession(r.Context(), req.StudentName)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	a.setSessionCookie(w, session)
	writeJSON(w, http.StatusCreated, newSessionView(session))
}

func (a *API) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := a.service.Session(r.Context(), a.sessionID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(session))
}

func (a *API) HandleQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := a.service.Questions(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

func (a *API) HandleSubmitAnswers(w http.ResponseWriter, r *http.Request) {
	var req submitAnswersRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	answers := make(domain.AnswerSet, len(req.Answers))
	for key, choice := range req.Answers {
		id, err := strconv.Atoi(key)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "answer keys must be question ids"})
			return
		}
		answers[id] = choice
	}
	record, err := a.service.SubmitAnswers(r.Context(), a.sessionID(r), answers)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (a *API) HandleSubmitScore(w http.ResponseWriter, r *http.Request) {
	var in domain.ScoreInput
	if !decodeJSON(w, r, &in) {
		return
	}
	record, err := a.service.SubmitScore(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (a *API) HandleScores(w http.ResponseWriter, r *http.Request) {
	scores, err := a.service.Scores(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scores)
}

func (a *API) HandleResult(w http.ResponseWriter, r *http.Request) {
	result, err := a.service.Result(r.Context(), a.sessionID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
