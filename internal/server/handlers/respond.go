// Package handlers implements the HTTP layer: request parsing, parameter
// validation and response shaping on top of the application services.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// messageResponse is the body of operations that confirm with a message
type messageResponse struct {
	Message string `json:"message"`
}

// sendJSON отправляет JSON ответ
func sendJSON(logger *slog.Logger, w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}
