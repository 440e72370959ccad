// Package server exposes the toolkit over the single-endpoint HTTP API:
// every tool executes through POST /api.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"redditscout/internal/query"
	"redditscout/internal/tools"
)

const version = "0.1.0"

// ToolRequest is the envelope for tool execution.
type ToolRequest struct {
	Tool       string         `json:"tool"`
	Parameters map[string]any `json:"parameters"`
}

// ToolResponse is the uniform response envelope.
type ToolResponse struct {
	Success  bool           `json:"success"`
	Data     any            `json:"data,omitempty"`
	Error    *ToolError     `json:"error,omitempty"`
	Metadata map[string]any `json:"metadata"`
}

type ToolError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Server serves the toolkit over HTTP.
type Server struct {
	toolkit *tools.Toolkit
	router  chi.Router
}

func New(toolkit *tools.Toolkit) *Server {
	s := &Server{toolkit: toolkit}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/health", s.handleHealth)
	r.Get("/", s.handleRoot)
	r.Post("/api", s.handleAPI)
	s.router = r
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe blocks serving on addr.
func (s *Server) ListenAndServe(addr string) error {
	slog.Info("tool server listening", "addr", addr)
	srv := &http.Server{Addr: addr, Handler: s.router, ReadHeaderTimeout: 5 * time.Second}
	return srv.ListenAndServe()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message":         "redditscout API",
		"version":         version,
		"available_tools": tools.Names(),
		"endpoints": map[string]string{
			"POST /api":   "Execute any tool",
			"GET /health": "Health check",
		},
	})
}

func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req ToolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse(start, "BadRequest", "invalid JSON body"))
		return
	}
	if tools.Describe(req.Tool) == "" {
		msg := fmt.Sprintf("Unknown tool: %s. Available tools: %v", req.Tool, tools.Names())
		writeJSON(w, http.StatusBadRequest, errorResponse(start, "UnknownTool", msg))
		return
	}
	result, err := s.toolkit.Execute(r.Context(), req.Tool, req.Parameters)
	if err != nil {
		// Tool failures ride in the envelope; only transport-level
		// problems produce non-200 statuses.
		typ := "FetchError"
		var ve *query.ValidationError
		if errors.As(err, &ve) {
			typ = "ValidationError"
		}
		writeJSON(w, http.StatusOK, errorResponse(start, typ, tools.ErrorText(err)))
		return
	}
	writeJSON(w, http.StatusOK, ToolResponse{
		Success:  true,
		Data:     result,
		Metadata: metadata(start),
	})
}

func errorResponse(start time.Time, typ, msg string) ToolResponse {
	return ToolResponse{
		Success:  false,
		Error:    &ToolError{Type: typ, Message: msg},
		Metadata: metadata(start),
	}
}

func metadata(start time.Time) map[string]any {
	return map[string]any{
		"execution_time": time.Since(start).Seconds(),
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}
