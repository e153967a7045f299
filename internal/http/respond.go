package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

type errorResponse struct {
	Message string `json:"message"`
}

// decodeJSON decodes a request body, rejecting payloads over 1MB and
// trailing garbage after the JSON value.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected trailing data")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

// respondError maps the error taxonomy onto HTTP statuses: validation
// failures are 400, owner/id misses 404, identity failures 401, duplicate
// registrations 409, and anything else is a store failure surfaced as 503.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrMissingField),
		errors.Is(err, core.ErrInvalidKind),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "Transaction not found")
	case errors.Is(err, auth.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, storage.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, "Email already registered")
	default:
		s.logger.ErrorContext(r.Context(), "Request failed", "error", err,
			"method", r.Method, "path", r.URL.Path)
		writeError(w, http.StatusServiceUnavailable, "Service temporarily unavailable")
	}
}
