package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Notifuse/emailbuilder/internal/domain"
	"github.com/Notifuse/emailbuilder/pkg/blocks"
	"github.com/Notifuse/emailbuilder/pkg/logger"
	"github.com/Notifuse/emailbuilder/pkg/tracing"
)

// liveContent is implemented by editor services that can report unsaved session content
type liveContent interface {
	LiveEmail(documentID string) (*blocks.Email, bool)
}

type DocumentService struct {
	repo    domain.DocumentRepository
	editors domain.EditorService
	exports domain.ExportService
	logger  logger.Logger
	newID   func() string
}

func NewDocumentService(repo domain.DocumentRepository, editors domain.EditorService, exports domain.ExportService, logger logger.Logger) *DocumentService {
	return &DocumentService{
		repo:    repo,
		editors: editors,
		exports: exports,
		logger:  logger,
		newID:   uuid.NewString,
	}
}

func (s *DocumentService) ListDocuments(ctx context.Context, req *domain.ListDocumentsRequest) ([]*domain.DocumentSummary, error) {
	return tracing.Traced(ctx, "DocumentService", "ListDocuments", func(ctx context.Context) ([]*domain.DocumentSummary, error) {
		summaries, err := s.repo.ListDocuments(ctx, req.Limit, req.Offset)
		if err != nil {
			s.logger.Error(fmt.Sprintf("Failed to list documents: %v", err))
			return nil, fmt.Errorf("failed to list documents: %w", err)
		}
		return summaries, nil
	})
}

func (s *DocumentService) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "DocumentService", "GetDocument")
	defer span.End()

	doc, err := s.repo.GetDocument(ctx, id)
	if err != nil {
		var notFound *domain.ErrDocumentNotFound
		if errors.As(err, &notFound) {
			return nil, err
		}
		s.logger.WithField("document_id", id).Error(fmt.Sprintf("Failed to get document: %v", err))
		tracing.MarkSpanError(ctx, err)
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	// an open session holds the latest content
	if live, ok := s.editors.(liveContent); ok {
		if email, open := live.LiveEmail(id); open {
			doc.Email = email
		}
	}
	return doc, nil
}

// CreateDocument stores a new document built from a starter template, the
// given content or an empty page
func (s *DocumentService) CreateDocument(ctx context.Context, req *domain.CreateDocumentRequest) (*domain.Document, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "DocumentService", "CreateDocument")
	defer span.End()

	var email *blocks.Email
	switch {
	case req.Template != "":
		loaded, err := blocks.LoadTemplate(req.Template, nil)
		if err != nil {
			return nil, domain.NewValidationError(err.Error())
		}
		email = loaded
	case req.Content != nil:
		if err := blocks.ValidateIDs(req.Content); err != nil {
			return nil, domain.NewValidationError(err.Error())
		}
		email = &blocks.Email{Content: req.Content.Clone()}
		blocks.AssignIDs(email.Content, blocks.NewBlockID)
	default:
		email = blocks.NewEmail()
		blocks.AssignIDs(email.Content, blocks.NewBlockID)
	}
	if req.Subject != "" {
		email.Subject = req.Subject
	}

	doc := &domain.Document{
		ID:      req.ID,
		Name:    req.Name,
		Email:   email,
		Version: domain.DocumentFormatVersion,
	}
	if doc.ID == "" {
		doc.ID = s.newID()
	}

	if err := doc.Validate(); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	if err := s.repo.CreateDocument(ctx, doc); err != nil {
		var exists *domain.ErrDocumentExists
		if errors.As(err, &exists) {
			return nil, err
		}
		s.logger.WithField("document_id", doc.ID).Error(fmt.Sprintf("Failed to create document: %v", err))
		tracing.MarkSpanError(ctx, err)
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	s.logger.WithField("document_id", doc.ID).Info("Document created")
	return doc, nil
}

// DeleteDocument removes a document along with its editing session and cached renders
func (s *DocumentService) DeleteDocument(ctx context.Context, id string) error {
	ctx, span := tracing.StartServiceSpan(ctx, "DocumentService", "DeleteDocument")
	defer span.End()

	if err := s.editors.Close(ctx, id); err != nil {
		s.logger.WithField("document_id", id).Warn(fmt.Sprintf("Failed to flush session before delete: %v", err))
	}

	if err := s.repo.DeleteDocument(ctx, id); err != nil {
		var notFound *domain.ErrDocumentNotFound
		if errors.As(err, &notFound) {
			return err
		}
		s.logger.WithField("document_id", id).Error(fmt.Sprintf("Failed to delete document: %v", err))
		tracing.MarkSpanError(ctx, err)
		return fmt.Errorf("failed to delete document: %w", err)
	}

	s.exports.Invalidate(id)
	s.logger.WithField("document_id", id).Info("Document deleted")
	return nil
}

func (s *DocumentService) ListTemplates(ctx context.Context) []blocks.Template {
	return blocks.Templates()
}
