// Package api exposes the scraping service over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/entrhq/scribe/pkg/browser"
	"github.com/entrhq/scribe/pkg/config"
	"github.com/entrhq/scribe/pkg/logging"
	"github.com/entrhq/scribe/pkg/scraper"
)

// ScrapingService is the orchestration surface the handlers call.
// Implemented by scraper.Service.
type ScrapingService interface {
	ExecuteScraping(req scraper.Request) (*scraper.Response, error)
	ValidateRequest(req scraper.Request) error
}

// SessionReporter exposes live-session visibility for the health endpoint.
// Implemented by browser.SessionManager.
type SessionReporter interface {
	ActiveSessions() int
	ListSessions() []browser.SessionInfo
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	scraper  ScrapingService
	sessions SessionReporter
	cfg      *config.Config
	log      *logging.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(scraperSvc ScrapingService, sessions SessionReporter, cfg *config.Config) *Handler {
	log, _ := logging.NewLogger("api")
	return &Handler{
		scraper:  scraperSvc,
		sessions: sessions,
		cfg:      cfg,
		log:      log,
	}
}

// ExecuteScraping handles POST /api/scraping/execute.
func (h *Handler) ExecuteScraping(w http.ResponseWriter, r *http.Request) {
	var req scraper.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	resp, err := h.scraper.ExecuteScraping(req)
	if err != nil {
		h.log.Errorf("scrape request failed: %v", err)
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// ValidateRequest handles POST /api/scraping/validate. It checks the request
// shape without launching a browser.
func (h *Handler) ValidateRequest(w http.ResponseWriter, r *http.Request) {
	var req scraper.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.scraper.ValidateRequest(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "valid"})
}

// Health handles GET /api/scraping/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":          "ok",
		"service":         "scribe",
		"active_sessions": h.sessions.ActiveSessions(),
		"sessions":        h.sessions.ListSessions(),
	})
}

// Config handles GET /api/scraping/config, the operational settings snapshot.
func (h *Handler) Config(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cfg.Snapshot())
}

// statusForError maps the error taxonomy onto HTTP statuses: request-shape
// problems are the client's fault, login rejection is an upstream failure,
// everything else is ours.
func statusForError(err error) int {
	switch {
	case errors.Is(err, scraper.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, browser.ErrAuthentication):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
