package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"govbrief/internal/core"
	"govbrief/internal/logger"
)

// GenerateRequest is the body of POST /api/newsletters/generate. A zero
// config falls back to the defaults; stored preferences are used unless the
// request carries its own.
type GenerateRequest struct {
	UserID      string                 `json:"user_id"`
	Config      *core.NewsletterConfig `json:"config,omitempty"`
	Preferences *core.UserPreferences  `json:"preferences,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// handleHealth handles the /health endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"store": "ok"}
	status := http.StatusOK
	health := "ok"

	if _, err := s.store.GetPreferences("healthcheck"); err != nil {
		checks["store"] = "error"
		health = "unhealthy"
		status = http.StatusServiceUnavailable
	}

	s.respondJSON(w, status, HealthResponse{Status: health, Checks: checks})
}

// handleGenerate handles POST /api/newsletters/generate
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		s.respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	prefs, err := s.store.GetPreferences(req.UserID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to load preferences")
		return
	}
	if req.Preferences != nil {
		prefs = *req.Preferences
		prefs.UserID = req.UserID
	}

	cfg := core.DefaultConfig()
	if req.Config != nil {
		cfg = *req.Config
	}

	newsletter, err := s.generator.GenerateNewsletter(r.Context(), prefs, cfg)
	if err != nil {
		logger.Error("newsletter generation failed", "user_id", req.UserID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "newsletter generation failed")
		return
	}

	if err := s.store.SaveNewsletter(newsletter); err != nil {
		logger.Error("failed to persist newsletter", "newsletter_id", newsletter.ID, "error", err)
	}

	s.respondJSON(w, http.StatusOK, newsletter)
}

// handleListNewsletters handles GET /api/newsletters?user_id=...
func (s *Server) handleListNewsletters(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		s.respondError(w, http.StatusBadRequest, "user_id query parameter is required")
		return
	}

	newsletters, err := s.store.ListNewsletters(userID, 20)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to list newsletters")
		return
	}
	if newsletters == nil {
		newsletters = []core.Newsletter{}
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"data": newsletters})
}

// handleGetNewsletter handles GET /api/newsletters/{id}
func (s *Server) handleGetNewsletter(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	newsletter, err := s.store.GetNewsletter(id)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to load newsletter")
		return
	}
	if newsletter == nil {
		s.respondError(w, http.StatusNotFound, "newsletter not found")
		return
	}

	s.respondJSON(w, http.StatusOK, newsletter)
}

// handleGetPreferences handles GET /api/preferences/{userID}
func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	prefs, err := s.store.GetPreferences(userID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to load preferences")
		return
	}

	s.respondJSON(w, http.StatusOK, prefs)
}

// handleSavePreferences handles PUT /api/preferences/{userID}
func (s *Server) handleSavePreferences(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var prefs core.UserPreferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	prefs.UserID = userID

	if err := s.store.SavePreferences(prefs); err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to save preferences")
		return
	}

	s.respondJSON(w, http.StatusOK, prefs)
}

// handleListWorkflows handles GET /api/workflows
func (s *Server) handleListWorkflows(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{"data": s.generator.ListWorkflows()})
}

// handleGetWorkflow handles GET /api/workflows/{id}
func (s *Server) handleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	state, ok := s.generator.GetWorkflowStatus(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, "workflow not found")
		return
	}

	s.respondJSON(w, http.StatusOK, state)
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

// respondError writes a JSON error response
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
