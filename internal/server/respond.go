package server

import (
	"encoding/json"
	"net/http"
)

// errorResponse is the uniform error envelope returned on non-2xx statuses.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// respondJSON writes data as a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError writes the error envelope with the given status code.
func respondError(w http.ResponseWriter, status int, errCode, message string) {
	respondJSON(w, status, errorResponse{
		Success: false,
		Error:   errCode,
		Message: message,
	})
}
