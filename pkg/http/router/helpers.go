package router

import (
	"encoding/json"
	"net/http"
)

// writeError writes a JSON envelope matching controllers' own error
// shape, for middleware failures that never reach a controller.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    http.StatusText(status),
			"message": message,
		},
	})
}
