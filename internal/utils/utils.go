package utils

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
)

// WriteJSON encodes v before touching the response, so an unencodable value
// becomes a 500 instead of a 200 with an empty body.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		slog.Error("failed to encode JSON", "error", err)
		WriteError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("failed to write JSON", "error", err)
	}
}

// WriteError writes {"error": <status text>, "message": msg}.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{
		"error":   http.StatusText(status),
		"message": msg,
	})
}
