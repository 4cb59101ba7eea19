package domain

import (
	"context"
	"fmt"

	"github.com/Notifuse/emailbuilder/pkg/export"
)

//go:generate mockgen -destination mocks/mock_export_service.go -package mocks github.com/Notifuse/emailbuilder/internal/domain ExportService

// ExportFormat selects the output of an export
type ExportFormat string

const (
	ExportFormatMJML ExportFormat = "mjml"
	ExportFormatHTML ExportFormat = "html"
)

// ExportRequest renders the current state of a document
type ExportRequest struct {
	DocumentID    string                 `json:"document_id"`
	TemplateData  map[string]interface{} `json:"template_data,omitempty"`
	UTM           export.UTMParams       `json:"utm,omitempty"`
	IncludeXMLTag bool                   `json:"include_xml_tag,omitempty"`
}

func (r *ExportRequest) Validate() error {
	return validateDocumentID("export", r.DocumentID)
}

// Options converts the request to exporter options
func (r *ExportRequest) Options() export.Options {
	return export.Options{
		TemplateData:  r.TemplateData,
		IncludeXMLTag: r.IncludeXMLTag,
		UTM:           r.UTM,
	}
}

// ExportResult is the rendered document
type ExportResult struct {
	DocumentID string        `json:"document_id"`
	Format     ExportFormat  `json:"format"`
	MJML       string        `json:"mjml"`
	HTML       string        `json:"html,omitempty"`
	Links      []export.Link `json:"links,omitempty"`
	Cached     bool          `json:"cached"`
}

// ExportService renders documents to MJML and HTML
type ExportService interface {
	Export(ctx context.Context, format ExportFormat, req *ExportRequest) (*ExportResult, error)
	// Invalidate drops cached renders of a document
	Invalidate(documentID string)
}

// ParseExportFormat validates a format name
func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(s) {
	case ExportFormatMJML, ExportFormatHTML:
		return ExportFormat(s), nil
	default:
		return "", fmt.Errorf("unsupported export format: %s", s)
	}
}
