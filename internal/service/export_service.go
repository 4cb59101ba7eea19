package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opencensus.io/trace"

	"github.com/Notifuse/emailbuilder/internal/domain"
	"github.com/Notifuse/emailbuilder/pkg/blocks"
	"github.com/Notifuse/emailbuilder/pkg/cache"
	"github.com/Notifuse/emailbuilder/pkg/export"
	"github.com/Notifuse/emailbuilder/pkg/logger"
	"github.com/Notifuse/emailbuilder/pkg/tracing"
)

// DocumentSource provides the current content of a document
type DocumentSource interface {
	Email(ctx context.Context, documentID string) (*blocks.Email, error)
}

// ExportService renders documents and caches the results by content hash
type ExportService struct {
	source   DocumentSource
	compiler export.Compiler
	cache    cache.Cache[*domain.ExportResult]
	ttl      time.Duration
	logger   logger.Logger
}

// NewExportService creates an export service. Renders are cached for ttl.
func NewExportService(source DocumentSource, compiler export.Compiler, renders cache.Cache[*domain.ExportResult], ttl time.Duration, logger logger.Logger) *ExportService {
	return &ExportService{
		source:   source,
		compiler: compiler,
		cache:    renders,
		ttl:      ttl,
		logger:   logger,
	}
}

func (s *ExportService) Export(ctx context.Context, format domain.ExportFormat, req *domain.ExportRequest) (*domain.ExportResult, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "ExportService", "Export")
	defer span.End()
	span.AddAttributes(
		trace.StringAttribute("document_id", req.DocumentID),
		trace.StringAttribute("format", string(format)),
	)

	started := time.Now()

	email, err := s.source.Email(ctx, req.DocumentID)
	if err != nil {
		tracing.MarkSpanError(ctx, err)
		return nil, err
	}

	key, err := cacheKey(req, format, email)
	if err != nil {
		tracing.MarkSpanError(ctx, err)
		return nil, err
	}

	rendered := false
	result, err := s.cache.GetOrSet(key, s.ttl, func() (*domain.ExportResult, error) {
		rendered = true
		return s.render(ctx, format, req, email)
	})
	tracing.RecordExport(ctx, string(format), started, err)
	if err != nil {
		s.logger.WithFields(map[string]interface{}{
			"document_id": req.DocumentID,
			"format":      string(format),
			"error":       err.Error(),
		}).Error("Failed to export document")
		tracing.MarkSpanError(ctx, err)
		return nil, err
	}

	span.AddAttributes(trace.BoolAttribute("cached", !rendered))

	out := *result
	out.Cached = !rendered
	return &out, nil
}

func (s *ExportService) render(ctx context.Context, format domain.ExportFormat, req *domain.ExportRequest, email *blocks.Email) (*domain.ExportResult, error) {
	result := &domain.ExportResult{
		DocumentID: req.DocumentID,
		Format:     format,
	}

	if format == domain.ExportFormatMJML {
		mjml, err := export.ToMJML(email, req.Options())
		if err != nil {
			return nil, domain.NewValidationError(err.Error())
		}
		result.MJML = mjml
		return result, nil
	}

	compiled, err := s.compiler.Compile(ctx, email, req.Options())
	if err != nil {
		var compileErr *export.CompileError
		if errors.As(err, &compileErr) {
			return nil, err
		}
		return nil, domain.NewValidationError(err.Error())
	}

	links, err := export.Links(compiled.HTML)
	if err != nil {
		return nil, fmt.Errorf("failed to extract links: %w", err)
	}

	result.MJML = compiled.MJML
	result.HTML = compiled.HTML
	result.Links = links
	return result, nil
}

// Invalidate drops every cached render of a document
func (s *ExportService) Invalidate(documentID string) {
	if n := s.cache.DeletePrefix(documentID + ":"); n > 0 {
		s.logger.WithField("document_id", documentID).WithField("entries", n).Debug("Invalidated cached renders")
	}
}

// cacheKey identifies a render by document, format, content and options
func cacheKey(req *domain.ExportRequest, format domain.ExportFormat, email *blocks.Email) (string, error) {
	payload, err := json.Marshal(struct {
		Email         *blocks.Email          `json:"email"`
		TemplateData  map[string]interface{} `json:"template_data"`
		UTM           export.UTMParams       `json:"utm"`
		IncludeXMLTag bool                   `json:"include_xml_tag"`
	}{email, req.TemplateData, req.UTM, req.IncludeXMLTag})
	if err != nil {
		return "", fmt.Errorf("failed to hash export request: %w", err)
	}

	sum := sha256.Sum256(payload)
	return req.DocumentID + ":" + string(format) + ":" + hex.EncodeToString(sum[:]), nil
}
