package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"yuuki.chat/models"
	"yuuki.chat/providers"
	"yuuki.chat/store"
)

// Server is the HTTP front door: chat completions, the two search proxies,
// and the conversation surface.
type Server struct {
	gateway  *ChatGateway
	models   *models.ModelRegistry
	research *ResearchClient
	youtube  *YouTubeClient
	store    *store.Store

	httpServer *http.Server
}

// NewServer wires the handlers onto a ServeMux
func NewServer(gateway *ChatGateway, modelReg *models.ModelRegistry, research *ResearchClient, youtube *YouTubeClient, convStore *store.Store, port string) *Server {
	s := &Server{
		gateway:  gateway,
		models:   modelReg,
		research: research,
		youtube:  youtube,
		store:    convStore,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", s.withCommon(s.handleChat))
	mux.HandleFunc("POST /api/research", s.withCommon(s.handleResearch))
	mux.HandleFunc("POST /api/youtube", s.withCommon(s.handleYouTube))
	mux.HandleFunc("GET /api/models", s.withCommon(s.handleModels))
	mux.HandleFunc("GET /api/conversations", s.withCommon(s.handleListConversations))
	mux.HandleFunc("POST /api/conversations", s.withCommon(s.handleCreateConversation))
	mux.HandleFunc("DELETE /api/conversations/{id}", s.withCommon(s.handleDeleteConversation))
	mux.HandleFunc("POST /api/conversations/{id}/turn", s.withCommon(s.handleTurn))
	mux.HandleFunc("GET /api/audit/{id}", s.withCommon(s.handleAudit))
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("OPTIONS /", s.handlePreflight)

	s.httpServer = &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// Start runs the HTTP server until Shutdown
func (s *Server) Start() error {
	log.Printf("[HTTP] Listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// withCommon applies CORS headers, rate limiting, and request telemetry
func (s *Server) withCommon(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setCORS(w)

		if !rateLimitAllow(r.RemoteAddr) {
			beacon("rate_limited", map[string]interface{}{
				"path":   r.URL.Path,
				"remote": r.RemoteAddr,
			})
			writeError(w, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}

		requestID := generateRequestID()
		start := time.Now()
		next(w, r)
		beacon("request", map[string]interface{}{
			"id":       requestID,
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start).Milliseconds(),
		})
	}
}

func setCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
}

func (s *Server) handlePreflight(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAudit returns the audited interactions recorded for a conversation
func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	entries, err := GetConversationAudit(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

// handleModels lists the selectable models
func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"models":  s.models.List(),
		"default": models.DefaultModelID,
	})
}

type researchRequest struct {
	Query string `json:"query"`
}

// handleResearch proxies one web-search query. Upstream status codes pass
// through with the upstream body attached as details.
func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	var req researchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.research.Search(r.Context(), req.Query)
	if err != nil {
		writeSearchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleYouTube proxies one video-search query
func (s *Server) handleYouTube(w http.ResponseWriter, r *http.Request) {
	var req researchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.youtube.Search(r.Context(), req.Query)
	if err != nil {
		writeSearchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// writeSearchError maps search-proxy failures. An upstream failure keeps the
// upstream status and attaches the raw body as details.
func writeSearchError(w http.ResponseWriter, err error) {
	var upstream *searchUpstreamError
	if errors.As(err, &upstream) {
		writeJSON(w, upstream.status, map[string]string{
			"error":   upstream.Error(),
			"details": upstream.details,
		})
		return
	}
	writeError(w, statusForError(err), err.Error())
}

type conversationListResponse struct {
	Conversations []*store.Conversation `json:"conversations"`
}

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, conversationListResponse{Conversations: s.store.List()})
}

func (s *Server) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	conv := s.store.Create()
	beacon("conversation_created", map[string]interface{}{"id": conv.ID})
	writeJSON(w, http.StatusCreated, conv)
}

// handleDeleteConversation removes a conversation and returns the one the
// client should switch to. Deleting the last conversation yields a fresh one.
func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	next, err := s.store.Delete(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Conversation not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	beacon("conversation_deleted", map[string]interface{}{"id": id})
	writeJSON(w, http.StatusOK, map[string]interface{}{"active": next})
}

type turnRequest struct {
	Content     string `json:"content"`
	Model       string `json:"model"`
	Token       string `json:"token"`
	TokenSource string `json:"tokenSource"`
	Research    *bool  `json:"research"`
	YouTube     *bool  `json:"youtube"`
}

// handleTurn runs one user turn inside a conversation. The optional research
// and youtube flags flip the store's mode toggles before the turn runs.
func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "Content is required")
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

	if req.Research != nil {
		s.store.SetResearch(*req.Research)
	}
	if req.YouTube != nil {
		s.store.SetYouTube(*req.YouTube)
	}

	source := models.SourceTag(req.TokenSource)
	if req.TokenSource == "" {
		source = models.SourceYuukiSpace
	}

	router := s.turnRouter(req.Token, source)
	msg, err := s.store.Turn(r.Context(), id, req.Content, model, router)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Conversation not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	conv, convErr := s.store.Get(id)
	if convErr != nil {
		// Deleted mid-turn; the assistant message still carries the result
		writeJSON(w, http.StatusOK, map[string]interface{}{"message": msg})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":      msg,
		"conversation": conv,
	})
}

// turnRouter binds the request's credential into the three outbound calls a
// turn can make.
func (s *Server) turnRouter(token string, source models.SourceTag) store.TurnRouter {
	return store.TurnRouter{
		Chat: func(ctx context.Context, history []store.Message, model string) (string, error) {
			messages := make([]providers.Message, 0, len(history))
			for _, m := range history {
				messages = append(messages, providers.Message{Role: m.Role, Content: m.Content})
			}
			result, err := s.gateway.Generate(ctx, messages, model, token, source)
			if err != nil {
				return "", err
			}
			return result.Content, nil
		},
		Research: func(ctx context.Context, query string) (string, error) {
			result, err := s.research.Search(ctx, query)
			if err != nil {
				return "", err
			}
			if result.Answer != "" {
				return result.Answer, nil
			}
			return "Research completed", nil
		},
		Video: func(ctx context.Context, query string) (string, error) {
			result, err := s.youtube.Search(ctx, query)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Found %d videos for %q", len(result.Videos), query), nil
		},
	}
}
