package http

import (
	"net/http"

	"github.com/Notifuse/emailbuilder/pkg/logger"
)

// SessionCounter reports the number of open editing sessions
type SessionCounter interface {
	OpenSessions() int
}

// RootHandler serves the public service information and health endpoints
type RootHandler struct {
	logger   logger.Logger
	version  string
	sessions SessionCounter
}

func NewRootHandler(logger logger.Logger, version string, sessions SessionCounter) *RootHandler {
	return &RootHandler{
		logger:   logger,
		version:  version,
		sessions: sessions,
	}
}

func (h *RootHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/health", h.handleHealth)
	mux.HandleFunc("/", h.Handle)
}

func (h *RootHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		WriteJSONError(w, "Not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service": "emailbuilder",
		"version": h.version,
	})
}

func (h *RootHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "ok",
		"version":       h.version,
		"open_sessions": h.sessions.OpenSessions(),
	})
}
