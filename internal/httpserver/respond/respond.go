// Package respond writes JSON responses in the API's wire format.
package respond

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the envelope for every error response:
//
//	{"error": {"message": "Bookmark does not exist"}}
type ErrorBody struct {
	Error ErrorMessage `json:"error"`
}

type ErrorMessage struct {
	Message string `json:"message"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// Error writes an error envelope with the given status and message.
func Error(w http.ResponseWriter, status int, message string) error {
	return JSON(w, status, ErrorBody{Error: ErrorMessage{Message: message}})
}

// NoContent writes an empty 204.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
