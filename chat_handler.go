package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"yuuki.chat/models"
	"yuuki.chat/providers"
)

type chatRequest struct {
	Messages    []providers.Message `json:"messages"`
	Model       string              `json:"model"`
	Token       string              `json:"token"`
	TokenSource string              `json:"tokenSource"`
}

// handleChat runs one stateless chat completion. An empty model selector
// falls back to the default before validation, so the fallback can never
// itself be rejected.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// An absent messages field is rejected; an empty array is a legal
	// (if pointless) history and goes through.
	if req.Messages == nil {
		writeError(w, http.StatusBadRequest, "Messages are required")
		return
	}

	model := req.Model
	if model == "" {
		model = models.DefaultModelID
	}
	if !s.models.Valid(model) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid model: %s", model))
		return
	}

	source := models.SourceTag(req.TokenSource)
	if req.TokenSource == "" {
		source = models.SourceYuukiSpace
	}

	// Content never travels in telemetry, only its signature
	var lastContent string
	if n := len(req.Messages); n > 0 {
		lastContent = req.Messages[n-1].Content
	}
	beacon("chat", map[string]interface{}{
		"model":     model,
		"source":    string(source),
		"query_sig": generateSignature(lastContent),
		"turns":     len(req.Messages),
	})

	result, err := s.gateway.Generate(r.Context(), req.Messages, model, req.Token, source)

	LogChatInteraction(generateRequestID(), model, string(source), req.Messages, resultContent(result), err)

	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func resultContent(result *providers.Result) string {
	if result == nil {
		return ""
	}
	return result.Content
}
