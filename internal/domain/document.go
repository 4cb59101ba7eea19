package domain

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"

	"github.com/Notifuse/emailbuilder/pkg/blocks"
)

//go:generate mockgen -destination mocks/mock_document_repository.go -package mocks github.com/Notifuse/emailbuilder/internal/domain DocumentRepository
//go:generate mockgen -destination mocks/mock_document_service.go -package mocks github.com/Notifuse/emailbuilder/internal/domain DocumentService

// DocumentFormatVersion is written with every stored document
const DocumentFormatVersion = 1

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

const identifierPattern = `^[A-Za-z0-9_-]{1,64}$`

// IsValidIdentifier reports whether s can be used as a document or block id
func IsValidIdentifier(s string) bool {
	return govalidator.Matches(s, identifierPattern)
}

// Document is a stored email being designed in the builder
type Document struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Email     *blocks.Email `json:"email"`
	Version   int           `json:"version"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Validate performs validation on the document fields
func (d *Document) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("invalid document: id is required")
	}
	if !IsValidIdentifier(d.ID) {
		return fmt.Errorf("invalid document: id must contain only letters, digits, '-' or '_' (max 64)")
	}
	if d.Name == "" {
		return fmt.Errorf("invalid document: name is required")
	}
	if len(d.Name) > 255 {
		return fmt.Errorf("invalid document: name length must be between 1 and 255")
	}
	if d.Email == nil || d.Email.Content == nil {
		return fmt.Errorf("invalid document: content is required")
	}
	if d.Email.Content.Type != blocks.TypePage {
		return fmt.Errorf("invalid document: root block must be of type %q", blocks.TypePage)
	}
	return nil
}

// DocumentSummary is the listing view of a document
type DocumentSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Subject   string    `json:"subject"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DocumentRepository stores documents
type DocumentRepository interface {
	// CreateDocument stores a new document
	CreateDocument(ctx context.Context, doc *Document) error

	// GetDocument retrieves a document by its ID
	GetDocument(ctx context.Context, id string) (*Document, error)

	// ListDocuments returns summaries ordered by most recent update first
	ListDocuments(ctx context.Context, limit, offset int) ([]*DocumentSummary, error)

	// UpdateDocument replaces the name and email of an existing document
	UpdateDocument(ctx context.Context, doc *Document) error

	// DeleteDocument removes a document
	DeleteDocument(ctx context.Context, id string) error
}

// DocumentService manages the document catalogue
type DocumentService interface {
	ListDocuments(ctx context.Context, req *ListDocumentsRequest) ([]*DocumentSummary, error)
	GetDocument(ctx context.Context, id string) (*Document, error)
	CreateDocument(ctx context.Context, req *CreateDocumentRequest) (*Document, error)
	DeleteDocument(ctx context.Context, id string) error
	ListTemplates(ctx context.Context) []blocks.Template
}

type ListDocumentsRequest struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func (r *ListDocumentsRequest) FromURLParams(queryParams url.Values) (err error) {
	r.Limit = DefaultListLimit
	if v := queryParams.Get("limit"); v != "" {
		if r.Limit, err = strconv.Atoi(v); err != nil {
			return fmt.Errorf("invalid list documents request: limit must be a number")
		}
	}
	if v := queryParams.Get("offset"); v != "" {
		if r.Offset, err = strconv.Atoi(v); err != nil {
			return fmt.Errorf("invalid list documents request: offset must be a number")
		}
	}

	if r.Limit < 1 || r.Limit > MaxListLimit {
		return fmt.Errorf("invalid list documents request: limit must be between 1 and %d", MaxListLimit)
	}
	if r.Offset < 0 {
		return fmt.Errorf("invalid list documents request: offset cannot be negative")
	}
	return nil
}

type GetDocumentRequest struct {
	ID string `json:"id"`
}

func (r *GetDocumentRequest) FromURLParams(queryParams url.Values) error {
	r.ID = queryParams.Get("id")
	if r.ID == "" {
		return fmt.Errorf("invalid get document request: id is required")
	}
	if !IsValidIdentifier(r.ID) {
		return fmt.Errorf("invalid get document request: id is invalid")
	}
	return nil
}

// CreateDocumentRequest creates a document from a template, explicit content or a blank page
type CreateDocumentRequest struct {
	ID       string        `json:"id,omitempty"`
	Name     string        `json:"name"`
	Subject  string        `json:"subject,omitempty"`
	Template string        `json:"template,omitempty"`
	Content  *blocks.Block `json:"content,omitempty"`
}

func (r *CreateDocumentRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return fmt.Errorf("invalid create document request: name is required")
	}
	if len(r.Name) > 255 {
		return fmt.Errorf("invalid create document request: name length must be between 1 and 255")
	}
	if r.ID != "" && !IsValidIdentifier(r.ID) {
		return fmt.Errorf("invalid create document request: id is invalid")
	}
	if r.Template != "" && r.Content != nil {
		return fmt.Errorf("invalid create document request: template and content are mutually exclusive")
	}
	if r.Content != nil {
		if err := blocks.ValidateHierarchy(r.Content); err != nil {
			return fmt.Errorf("invalid create document request: %w", err)
		}
	}
	return nil
}

type DeleteDocumentRequest struct {
	ID string `json:"id"`
}

func (r *DeleteDocumentRequest) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("invalid delete document request: id is required")
	}
	if !IsValidIdentifier(r.ID) {
		return fmt.Errorf("invalid delete document request: id is invalid")
	}
	return nil
}
