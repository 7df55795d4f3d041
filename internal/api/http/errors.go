package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/quizmith/mathquiz/internal/oracle"
	"github.com/quizmith/mathquiz/internal/quiz"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps engine/oracle failures to the {error: message} envelope
// the client expects.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, errStatus(err), map[string]string{"error": errMessage(err)})
}

func errStatus(err error) int {
	switch {
	case errors.Is(err, quiz.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, quiz.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, quiz.ErrSessionTerminal):
		return http.StatusGone
	case oracle.IsUnavailable(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func errMessage(err error) string {
	switch {
	case errors.Is(err, quiz.ErrSessionNotFound):
		return "Session expired or invalid. Please restart the quiz."
	case errors.Is(err, quiz.ErrSessionTerminal):
		return "This quiz session has ended. Please restart the quiz."
	case oracle.IsUnavailable(err):
		return "The AI service is temporarily unavailable. Please try again."
	case errors.Is(err, quiz.ErrInvalidRequest):
		return err.Error()
	default:
		return "An unexpected server error occurred. Please try again."
	}
}
