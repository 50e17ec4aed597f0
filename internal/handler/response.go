// Package handler implements the HTTP layer: request parsing, response
// encoding, and the mapping from domain errors to status codes and the JSON
// error shapes clients rely on.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/tahmid/habit-tracker/internal/apperror"
)

// detailResponse is the {"detail": "..."} error body used for permission,
// not-found, state, and fallback errors.
type detailResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; logging is all that's left.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to its HTTP status and JSON shape:
//
//	field-scoped validation / token errors → 400 {"<field>": ["msg"]}
//	state violations (no field)            → 400 {"detail": "msg"}
//	credential failures                    → 400 {"non_field_errors": ["msg"]}
//	unauthorized / forbidden               → 401/403 {"detail": "msg"}
//	not found / conflict                   → 404/409 {"detail": "msg"}
//	anything else                          → 500, message withheld
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		writeJSON(w, http.StatusInternalServerError, detailResponse{Detail: "An internal error occurred"})
		return
	}

	switch {
	case errors.Is(err, apperror.ErrValidation), errors.Is(err, apperror.ErrTokenInvalid):
		if appErr.Field != "" {
			writeJSON(w, http.StatusBadRequest, map[string][]string{appErr.Field: {appErr.Message}})
			return
		}
		writeJSON(w, http.StatusBadRequest, detailResponse{Detail: appErr.Message})
	case errors.Is(err, apperror.ErrAuthentication):
		writeJSON(w, http.StatusBadRequest, map[string][]string{"non_field_errors": {appErr.Message}})
	case errors.Is(err, apperror.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, detailResponse{Detail: appErr.Message})
	case errors.Is(err, apperror.ErrForbidden):
		writeJSON(w, http.StatusForbidden, detailResponse{Detail: appErr.Message})
	case errors.Is(err, apperror.ErrNotFound):
		writeJSON(w, http.StatusNotFound, detailResponse{Detail: appErr.Message})
	case errors.Is(err, apperror.ErrConflict):
		writeJSON(w, http.StatusConflict, detailResponse{Detail: appErr.Message})
	default:
		writeJSON(w, http.StatusInternalServerError, detailResponse{Detail: "An internal error occurred"})
	}
}

// decodeJSON parses the request body into dst. On failure it writes the 400
// response itself and returns false. An empty body leaves dst zero-valued so
// the validation layer reports the missing fields by name.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return true
		}
		writeJSON(w, http.StatusBadRequest, detailResponse{Detail: "Malformed request body"})
		return false
	}
	return true
}
