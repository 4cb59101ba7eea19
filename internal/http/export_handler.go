package http

import (
	"net/http"

	"github.com/Notifuse/emailbuilder/internal/domain"
	"github.com/Notifuse/emailbuilder/internal/http/middleware"
	"github.com/Notifuse/emailbuilder/pkg/logger"
)

type ExportHandler struct {
	service      domain.ExportService
	logger       logger.Logger
	getJWTSecret func() ([]byte, error)
}

func NewExportHandler(service domain.ExportService, getJWTSecret func() ([]byte, error), logger logger.Logger) *ExportHandler {
	return &ExportHandler{
		service:      service,
		logger:       logger,
		getJWTSecret: getJWTSecret,
	}
}

func (h *ExportHandler) RegisterRoutes(mux *http.ServeMux) {
	authMiddleware := middleware.NewAuthMiddleware(h.getJWTSecret)
	requireAuth := authMiddleware.RequireAuth()

	mux.Handle("/api/export.mjml", requireAuth(h.exportHandler(domain.ExportFormatMJML)))
	mux.Handle("/api/export.html", requireAuth(h.exportHandler(domain.ExportFormatHTML)))
}

func (h *ExportHandler) exportHandler(format domain.ExportFormat) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req domain.ExportRequest
		if !decodeJSON(w, r, h.logger, &req) {
			return
		}
		if err := req.Validate(); err != nil {
			WriteJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}

		result, err := h.service.Export(r.Context(), format, &req)
		if err != nil {
			writeServiceError(w, h.logger, err, "Failed to export document")
			return
		}

		writeJSON(w, http.StatusOK, result)
	})
}
