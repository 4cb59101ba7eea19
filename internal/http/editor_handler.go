package http

import (
	"context"
	"net/http"

	"github.com/Notifuse/emailbuilder/internal/domain"
	"github.com/Notifuse/emailbuilder/internal/http/middleware"
	"github.com/Notifuse/emailbuilder/pkg/logger"
)

type EditorHandler struct {
	service      domain.EditorService
	logger       logger.Logger
	getJWTSecret func() ([]byte, error)
}

func NewEditorHandler(service domain.EditorService, getJWTSecret func() ([]byte, error), logger logger.Logger) *EditorHandler {
	return &EditorHandler{
		service:      service,
		logger:       logger,
		getJWTSecret: getJWTSecret,
	}
}

func (h *EditorHandler) RegisterRoutes(mux *http.ServeMux) {
	authMiddleware := middleware.NewAuthMiddleware(h.getJWTSecret)
	requireAuth := authMiddleware.RequireAuth()

	mux.Handle("/api/editor.state", requireAuth(http.HandlerFunc(h.handleState)))
	mux.Handle("/api/editor.addBlock", requireAuth(http.HandlerFunc(h.handleAddBlock)))
	mux.Handle("/api/editor.updateBlock", requireAuth(http.HandlerFunc(h.handleUpdateBlock)))
	mux.Handle("/api/editor.deleteBlock", requireAuth(http.HandlerFunc(h.handleDeleteBlock)))
	mux.Handle("/api/editor.moveBlock", requireAuth(http.HandlerFunc(h.handleMoveBlock)))
	mux.Handle("/api/editor.duplicateBlock", requireAuth(http.HandlerFunc(h.handleDuplicateBlock)))
	mux.Handle("/api/editor.drop", requireAuth(http.HandlerFunc(h.handleDrop)))
	mux.Handle("/api/editor.updateBody", requireAuth(http.HandlerFunc(h.handleUpdateBody)))
	mux.Handle("/api/editor.updateSubject", requireAuth(http.HandlerFunc(h.handleUpdateSubject)))
	mux.Handle("/api/editor.clear", requireAuth(http.HandlerFunc(h.handleClear)))
	mux.Handle("/api/editor.undo", requireAuth(http.HandlerFunc(h.handleUndo)))
	mux.Handle("/api/editor.redo", requireAuth(http.HandlerFunc(h.handleRedo)))
	mux.Handle("/api/editor.select", requireAuth(http.HandlerFunc(h.handleSelect)))
}

type validatable interface {
	Validate() error
}

// handleEdit runs the shared flow of the POST editing endpoints: decode,
// validate, call the service and answer with the result
func (h *EditorHandler) handleEdit(w http.ResponseWriter, r *http.Request, req validatable, message string, run func(ctx context.Context) (*domain.EditorResult, error)) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !decodeJSON(w, r, h.logger, req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := run(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err, message)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *EditorHandler) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.DocumentRequest
	if err := req.FromURLParams(r.URL.Query()); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	state, err := h.service.State(r.Context(), req.DocumentID)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to load editor state")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"state": state,
	})
}

func (h *EditorHandler) handleAddBlock(w http.ResponseWriter, r *http.Request) {
	var req domain.AddBlockRequest
	h.handleEdit(w, r, &req, "Failed to add block", func(ctx context.Context) (*domain.EditorResult, error) {
		return h.service.AddBlock(ctx, &req)
	})
}

func (h *EditorHandler) handleUpdateBlock(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateBlockRequest
	h.handleEdit(w, r, &req, "Failed to update block", func(ctx context.Context) (*domain.EditorResult, error) {
		return h.service.UpdateBlock(ctx, &req)
	})
}

func (h *EditorHandler) handleDeleteBlock(w http.ResponseWriter, r *http.Request) {
	var req domain.BlockRequest
	h.handleEdit(w, r, &req, "Failed to delete block", func(ctx context.Context) (*domain.EditorResult, error) {
		return h.service.DeleteBlock(ctx, &req)
	})
}

func (h *EditorHandler) handleMoveBlock(w http.ResponseWriter, r *http.Request) {
	var req domain.MoveBlockRequest
	h.handleEdit(w, r, &req, "Failed to move block", func(ctx context.Context) (*domain.EditorResult, error) {
		return h.service.MoveBlock(ctx, &req)
	})
}

func (h *EditorHandler) handleDuplicateBlock(w http.ResponseWriter, r *http.Request) {
	var req domain.BlockRequest
	h.handleEdit(w, r, &req, "Failed to duplicate block", func(ctx context.Context) (*domain.EditorResult, error) {
		return h.service.DuplicateBlock(ctx, &req)
	})
}

// dropRequest adapts DropRequest, whose Validate also returns the parsed payload
type dropRequest struct {
	domain.DropRequest
}

func (r *dropRequest) Validate() error {
	_, err := r.DropRequest.Validate()
	return err
}

func (h *EditorHandler) handleDrop(w http.ResponseWriter, r *http.Request) {
	var req dropRequest
	h.handleEdit(w, r, &req, "Failed to drop block", func(ctx context.Context) (*domain.EditorResult, error) {
		return h.service.Drop(ctx, &req.DropRequest)
	})
}

func (h *EditorHandler) handleUpdateBody(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateBodyRequest
	h.handleEdit(w, r, &req, "Failed to update body", func(ctx context.Context) (*domain.EditorResult, error) {
		return h.service.UpdateBody(ctx, &req)
	})
}

func (h *EditorHandler) handleUpdateSubject(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateSubjectRequest
	h.handleEdit(w, r, &req, "Failed to update subject", func(ctx context.Context) (*domain.EditorResult, error) {
		return h.service.UpdateSubject(ctx, &req)
	})
}

func (h *EditorHandler) handleClear(w http.ResponseWriter, r *http.Request) {
	var req domain.DocumentRequest
	h.handleEdit(w, r, &req, "Failed to clear canvas", func(ctx context.Context) (*domain.EditorResult, error) {
		return h.service.Clear(ctx, req.DocumentID)
	})
}

func (h *EditorHandler) handleUndo(w http.ResponseWriter, r *http.Request) {
	var req domain.DocumentRequest
	h.handleEdit(w, r, &req, "Failed to undo", func(ctx context.Context) (*domain.EditorResult, error) {
		return h.service.Undo(ctx, req.DocumentID)
	})
}

func (h *EditorHandler) handleRedo(w http.ResponseWriter, r *http.Request) {
	var req domain.DocumentRequest
	h.handleEdit(w, r, &req, "Failed to redo", func(ctx context.Context) (*domain.EditorResult, error) {
		return h.service.Redo(ctx, req.DocumentID)
	})
}

func (h *EditorHandler) handleSelect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.SelectBlockRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	state, err := h.service.Select(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to select block")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"state": state,
	})
}
