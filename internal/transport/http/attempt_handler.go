package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/soldier14/quizdrill/internal/app"
)

// AttemptHandler exposes the attempt progression engine over REST.
type AttemptHandler struct {
	attempts *app.AttemptService
}

func NewAttemptHandler(attempts *app.AttemptService) *AttemptHandler {
	return &AttemptHandler{attempts: attempts}
}

type startAttemptRequest struct {
	QuizID string `json:"quizId"`
}

type submitAnswerRequest struct {
	OptionID string `json:"optionId"`
}

// Start handles POST /attempts.
func (h *AttemptHandler) Start(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "missing credentials")
		return
	}

	var req startAttemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.QuizID == "" {
		writeDetail(w, http.StatusBadRequest, "quizId is required")
		return
	}

	start, err := h.attempts.StartAttempt(r.Context(), identity.UserID, req.QuizID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, start)
}

// Answer handles PUT /attempts/{attemptID}/answers/{questionID}.
func (h *AttemptHandler) Answer(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "missing credentials")
		return
	}
	vars := mux.Vars(r)

	var req submitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OptionID == "" {
		writeDetail(w, http.StatusBadRequest, "optionId is required")
		return
	}

	progress, err := h.attempts.SubmitAnswer(r.Context(), identity.UserID, vars["attemptID"], vars["questionID"], req.OptionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

// Finish handles POST /attempts/{attemptID}/finish.
func (h *AttemptHandler) Finish(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "missing credentials")
		return
	}

	result, err := h.attempts.FinishAttempt(r.Context(), identity.UserID, mux.Vars(r)["attemptID"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
