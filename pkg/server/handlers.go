/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

package server

import (
	"net/http"
	"time"

	"github.com/hostplan/hostplan/pkg/executor"
	"github.com/hostplan/hostplan/pkg/serializer"
)

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Reason    string    `json:"reason,omitempty"`
}

// InfoResponse describes the agent for the default endpoint.
type InfoResponse struct {
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	Endpoints []string `json:"endpoints"`
}

// StatusResponse reports the outcome of the most recent convergence pass.
type StatusResponse struct {
	Status     string            `json:"status"`
	Interval   string            `json:"interval"`
	LastPassAt *time.Time        `json:"last_pass_at,omitempty"`
	LastError  string            `json:"last_error,omitempty"`
	Summary    *executor.Summary `json:"summary,omitempty"`
	PassID     string            `json:"pass_id,omitempty"`
}

// handleDefault handles requests to unmapped paths and the root
func (s *Server) handleDefault(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.writeError(w, r, http.StatusNotFound, ErrCodeNotFound,
			"Resource not found", false, map[string]any{"path": r.URL.Path})
		return
	}

	resp := InfoResponse{
		Name:    s.config.Name,
		Version: s.config.Version,
		Endpoints: []string{
			"/health",
			"/ready",
			"/metrics",
			"/v1/status",
			"/v1/options",
		},
	}
	serializer.RespondJSON(w, http.StatusOK, resp)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	serializer.RespondJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
	})
}

// handleReady handles GET /ready
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.RLock()
	ready := s.ready
	s.mu.RUnlock()

	if !ready {
		serializer.RespondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:    "not_ready",
			Timestamp: time.Now(),
			Reason:    "first convergence pass has not completed",
		})
		return
	}

	serializer.RespondJSON(w, http.StatusOK, HealthResponse{
		Status:    "ready",
		Timestamp: time.Now(),
	})
}

// handleStatus handles GET /v1/status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed,
			"Method not allowed", false, nil)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	resp := StatusResponse{
		Status:    "converged",
		Interval:  s.config.Interval.String(),
		LastError: s.lastError,
	}
	if s.lastError != "" {
		resp.Status = "failed"
	}
	if !s.lastPassAt.IsZero() {
		at := s.lastPassAt
		resp.LastPassAt = &at
	} else {
		resp.Status = "pending"
	}
	if s.lastResult != nil {
		summary := s.lastResult.Summary
		resp.Summary = &summary
		resp.PassID = s.lastResult.PassID()
	}

	serializer.RespondJSON(w, http.StatusOK, resp)
}

// handleOptions handles GET /v1/options: the currently resolved
// configuration with provenance, freshly computed from the profiles.
func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed,
			"Method not allowed", false, nil)
		return
	}

	doc, err := s.engine.Describe(r.Context())
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, ErrCodeInternalError,
			"failed to resolve options", true, map[string]any{"error": err.Error()})
		return
	}

	serializer.RespondJSON(w, http.StatusOK, doc)
}
