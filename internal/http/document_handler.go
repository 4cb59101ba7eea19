package http

import (
	"net/http"

	"github.com/Notifuse/emailbuilder/internal/domain"
	"github.com/Notifuse/emailbuilder/internal/http/middleware"
	"github.com/Notifuse/emailbuilder/pkg/logger"
)

type DocumentHandler struct {
	service      domain.DocumentService
	logger       logger.Logger
	getJWTSecret func() ([]byte, error)
}

func NewDocumentHandler(service domain.DocumentService, getJWTSecret func() ([]byte, error), logger logger.Logger) *DocumentHandler {
	return &DocumentHandler{
		service:      service,
		logger:       logger,
		getJWTSecret: getJWTSecret,
	}
}

func (h *DocumentHandler) RegisterRoutes(mux *http.ServeMux) {
	authMiddleware := middleware.NewAuthMiddleware(h.getJWTSecret)
	requireAuth := authMiddleware.RequireAuth()

	mux.Handle("/api/documents.list", requireAuth(http.HandlerFunc(h.handleList)))
	mux.Handle("/api/documents.get", requireAuth(http.HandlerFunc(h.handleGet)))
	mux.Handle("/api/documents.create", requireAuth(http.HandlerFunc(h.handleCreate)))
	mux.Handle("/api/documents.delete", requireAuth(http.HandlerFunc(h.handleDelete)))
	mux.Handle("/api/templates.list", requireAuth(http.HandlerFunc(h.handleListTemplates)))
}

func (h *DocumentHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.ListDocumentsRequest
	if err := req.FromURLParams(r.URL.Query()); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	documents, err := h.service.ListDocuments(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to list documents")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"documents": documents,
	})
}

func (h *DocumentHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.GetDocumentRequest
	if err := req.FromURLParams(r.URL.Query()); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	document, err := h.service.GetDocument(r.Context(), req.ID)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to get document")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"document": document,
	})
}

func (h *DocumentHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.CreateDocumentRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	document, err := h.service.CreateDocument(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to create document")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"document": document,
	})
}

func (h *DocumentHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.DeleteDocumentRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteDocument(r.Context(), req.ID); err != nil {
		writeServiceError(w, h.logger, err, "Failed to delete document")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
	})
}

func (h *DocumentHandler) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"templates": h.service.ListTemplates(r.Context()),
	})
}
