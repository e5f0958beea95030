package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/taskcore/taskcore"
)

// handlerFunc is an http.HandlerFunc that reports failure instead of
// writing it. The [Server.handle] adapter owns status mapping and the
// error body.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

type errorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *Server) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}

		status := statusFor(err)
		message := err.Error()
		if status >= 500 {
			s.logger.Error("request failed",
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"error", err,
			)
			if !s.development {
				message = "internal server error"
			}
		}

		writeJSON(w, status, errorBody{Message: message})
	}
}

// statusFor maps engine sentinel errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, taskcore.ErrInvalidInput),
		errors.Is(err, taskcore.ErrEmailExists):
		return http.StatusBadRequest
	case errors.Is(err, taskcore.ErrUnauthenticated),
		errors.Is(err, taskcore.ErrInvalidCredentials),
		errors.Is(err, taskcore.ErrSessionRevoked):
		return http.StatusUnauthorized
	case errors.Is(err, taskcore.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, taskcore.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func decodeJSON(r *http.Request, dest any) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return taskcore.ErrInvalidInput
	}
	return nil
}
