package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// WriteJSON writes a JSON response with the given status code.
// It automatically sets the Content-Type header and Cache-Control headers.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// This is commonly required for sensitive responses like tokens.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// APIError is an OAuth2-style JSON error body. It implements error so
// services can return it and handlers can write it unchanged.
type APIError struct {
	StatusCode  int    `json:"-"`
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes the error to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	WriteJSON(w, e.StatusCode, map[string]string{
		"error":             e.Code,
		"error_description": e.Description,
	})
}

// NewAPIError builds an APIError with the given status, code and
// description.
func NewAPIError(statusCode int, code, description string) *APIError {
	return &APIError{StatusCode: statusCode, Code: code, Description: description}
}

// Predefined errors shared across handlers.
var (
	ErrInvalidRequest = NewAPIError(
		http.StatusBadRequest,
		"invalid_request",
		"the request is malformed or missing required parameters",
	)
	ErrInvalidFormBody = NewAPIError(
		http.StatusBadRequest,
		"invalid_request",
		"invalid form body",
	)
	ErrUnauthorized = NewAPIError(
		http.StatusUnauthorized,
		"unauthorized",
		"a valid session is required",
	)
	ErrServerError = NewAPIError(
		http.StatusInternalServerError,
		"server_error",
		"internal server error",
	)
)
