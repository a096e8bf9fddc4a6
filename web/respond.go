package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/amonks/cadence/internal/dates"
	"github.com/amonks/cadence/review"
	"github.com/amonks/cadence/task"
)

// errBadRequest marks request decoding failures.
var errBadRequest = errors.New("bad request")

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if decoder.More() {
		return fmt.Errorf("%w: unexpected extra JSON data", errBadRequest)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// statusFor maps store error kinds to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, dates.ErrInvalidDate),
		errors.Is(err, task.ErrValidation),
		errors.Is(err, review.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, task.ErrNotFound), errors.Is(err, review.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, task.ErrConflict), errors.Is(err, task.ErrInvalidState):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
