package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/soldier14/quizdrill/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// writeError maps domain sentinels onto HTTP statuses. Anything
// unrecognized is an infrastructure fault and stays opaque to the caller.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeDetail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrQuizNotFound),
		errors.Is(err, domain.ErrAttemptNotFound),
		errors.Is(err, domain.ErrQuestionNotFound),
		errors.Is(err, domain.ErrOptionNotFound):
		writeDetail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrAttemptSubmitted):
		writeDetail(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrNameTaken):
		writeDetail(w, http.StatusConflict, err.Error())
	default:
		log.Printf("internal error: %v", err)
		writeDetail(w, http.StatusInternalServerError, "internal error")
	}
}
