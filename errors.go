package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"yuuki.chat/providers"
)

// ValidationError reports malformed or missing request input. Always
// client-fixable.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// AuthError reports a missing credential for a source that requires one
type AuthError struct {
	Msg string
}

func (e *AuthError) Error() string { return e.Msg }

// ConfigError reports server misconfiguration. Not user-fixable.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return e.Msg }

// statusForError maps the error taxonomy to HTTP status codes. Anything
// unanticipated, including upstream failures, surfaces as 500.
func statusForError(err error) int {
	var validationErr *ValidationError
	var authErr *AuthError
	var configErr *ConfigError
	var upstreamErr *providers.UpstreamError

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &authErr):
		return http.StatusUnauthorized
	case errors.As(err, &configErr):
		return http.StatusInternalServerError
	case errors.As(err, &upstreamErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes the flat {error} body every handler converts failures to
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
