package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/AdamBeresnev/tennis-fun/internal/backend"
)

func InternalServerError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func BadRequest(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("bad request", "message", msg, "error", err)
	} else {
		slog.Warn("bad request", "message", msg)
	}
	http.Error(w, msg, http.StatusBadRequest)
}

func NotFound(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("not found", "message", msg, "error", err)
	} else {
		slog.Warn("not found", "message", msg)
	}
	http.Error(w, msg, http.StatusNotFound)
}

// BackendError reports a failed backend call with the backend's own message
// when it gave one.
func BackendError(w http.ResponseWriter, fallback string, err error) {
	msg := backend.Message(err, fallback)
	slog.Error("backend call failed", "message", msg, "error", err)
	http.Error(w, msg, http.StatusBadGateway)
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write json", "error", err)
	}
}
