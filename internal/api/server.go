// Package api is the HTTP surface of askdeskd.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/nmoreau/askdesk/internal/agent"
	"github.com/nmoreau/askdesk/internal/session"
)

// Runner answers one question within a conversation.
type Runner interface {
	Run(ctx context.Context, s *agent.Session, userMessage string) (*agent.Answer, error)
	CurrentModelName() string
}

// Server handles HTTP API requests for askdeskd.
type Server struct {
	agent    Runner
	sessions *session.Manager
	logger   *slog.Logger
}

// New creates an API server.
func New(runner Runner, sessions *session.Manager, logger *slog.Logger) *Server {
	return &Server{
		agent:    runner,
		sessions: sessions,
		logger:   logger,
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("POST /api/v1/ask", s.handleAsk)
	mux.HandleFunc("DELETE /api/v1/sessions/{id}", s.handleDeleteSession)
}

// AskRequest is the body of POST /api/v1/ask.
type AskRequest struct {
	Query   string `json:"query"`
	Session string `json:"session,omitempty"`
}

// AskResponse carries the answer and, when the answer was grounded in the
// knowledge base, the matched entry.
type AskResponse struct {
	Answer  string   `json:"answer"`
	Session string   `json:"session"`
	Match   *KBMatch `json:"match,omitempty"`
}

// KBMatch describes the knowledge-base entry an answer was grounded in.
type KBMatch struct {
	Index    int    `json:"index"`
	Question string `json:"question"`
	Score    int    `json:"score"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if req.Query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	sessionID := req.Session
	if sessionID == "" {
		sessionID = "default"
	}
	entry := s.sessions.GetOrCreate(sessionID)

	// Serialize per session: concurrent asks on the same ID would otherwise
	// mutate one conversation from two goroutines.
	var answer *agent.Answer
	err := entry.Do(func(conv *agent.Session) error {
		var runErr error
		answer, runErr = s.agent.Run(r.Context(), conv, req.Query)
		return runErr
	})
	if err != nil {
		s.logger.Error("query failed", "session", sessionID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	resp := AskResponse{
		Answer:  answer.Text,
		Session: sessionID,
	}
	if answer.Match != nil {
		resp.Match = &KBMatch{
			Index:    answer.Match.Index,
			Question: answer.Match.Question,
			Score:    answer.Match.Score,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.sessions.Delete(id)
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"version":  "0.1.0",
		"model":    s.agent.CurrentModelName(),
		"sessions": s.sessions.Count(),
		"time":     time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
