package httpx

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the wire error envelope shared by every endpoint:
// {"error": <code>, "message": <text>, "errors": {field: [messages]}}.
type ErrorBody struct {
	Error   string              `json:"error"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
// It automatically sets the Content-Type and Cache-Control headers.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes the standard error envelope.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, ErrorBody{Error: code, Message: message})
}

// WriteValidationError writes a 422 envelope carrying per-field messages.
func WriteValidationError(w http.ResponseWriter, fields map[string][]string) {
	WriteJSON(w, http.StatusUnprocessableEntity, ErrorBody{
		Error:   "validation_failed",
		Message: "request validation failed",
		Errors:  fields,
	})
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// Required for sensitive responses like tokens.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}
