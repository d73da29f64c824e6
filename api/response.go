package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError answers with {"error": message}.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

type failureResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Duration string `json:"duration,omitempty"`
}

func writeFailure(w http.ResponseWriter, message string, elapsed time.Duration) {
	resp := failureResponse{Status: "error", Message: message}
	if elapsed > 0 {
		resp.Duration = formatDuration(elapsed)
	}
	writeJSON(w, http.StatusInternalServerError, resp)
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%dms", d.Milliseconds())
}
