package http_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Notifuse/emailbuilder/internal/domain"
	"github.com/Notifuse/emailbuilder/internal/domain/mocks"
	http_handler "github.com/Notifuse/emailbuilder/internal/http"
	"github.com/Notifuse/emailbuilder/pkg/export"
)

func setupExportHandlerTest(t *testing.T) (*mocks.MockExportService, *http.ServeMux, string) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockExportService(ctrl)

	handler := http_handler.NewExportHandler(mockService, getTestSecret, newMockLogger(ctrl))
	return mockService, newTestMux(handler), createTestToken(t)
}

func TestExportHandler_MJML(t *testing.T) {
	mockService, mux, token := setupExportHandlerTest(t)
	mockService.EXPECT().
		Export(gomock.Any(), domain.ExportFormatMJML, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ domain.ExportFormat, req *domain.ExportRequest) (*domain.ExportResult, error) {
			assert.Equal(t, "doc1", req.DocumentID)
			assert.True(t, req.IncludeXMLTag)
			assert.Equal(t, "Ada", req.TemplateData["name"])
			return &domain.ExportResult{DocumentID: "doc1", Format: domain.ExportFormatMJML, MJML: "<mjml></mjml>"}, nil
		})

	rec := doRequest(t, mux, http.MethodPost, "/api/export.mjml", token, map[string]interface{}{
		"document_id":     "doc1",
		"include_xml_tag": true,
		"template_data":   map[string]interface{}{"name": "Ada"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "<mjml></mjml>", body["mjml"])
	assert.Equal(t, "mjml", body["format"])
	assert.Equal(t, false, body["cached"])
}

func TestExportHandler_HTML(t *testing.T) {
	testCases := []struct {
		name           string
		body           interface{}
		setupMock      func(m *mocks.MockExportService)
		expectedStatus int
	}{
		{
			name: "success with utm",
			body: map[string]interface{}{"document_id": "doc1", "utm": map[string]string{"utm_source": "newsletter"}},
			setupMock: func(m *mocks.MockExportService) {
				m.EXPECT().Export(gomock.Any(), domain.ExportFormatHTML, gomock.Any()).
					DoAndReturn(func(_ context.Context, _ domain.ExportFormat, req *domain.ExportRequest) (*domain.ExportResult, error) {
						assert.Equal(t, export.UTMParams{Source: "newsletter"}, req.UTM)
						return &domain.ExportResult{
							DocumentID: "doc1",
							Format:     domain.ExportFormatHTML,
							HTML:       "<html></html>",
							Links:      []export.Link{{Tag: "a", URL: "https://example.com?utm_source=newsletter"}},
						}, nil
					})
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "compile error",
			body: map[string]interface{}{"document_id": "doc1"},
			setupMock: func(m *mocks.MockExportService) {
				m.EXPECT().Export(gomock.Any(), domain.ExportFormatHTML, gomock.Any()).
					Return(nil, &export.CompileError{Message: "unexpected tag"})
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "liquid error",
			body: map[string]interface{}{"document_id": "doc1"},
			setupMock: func(m *mocks.MockExportService) {
				m.EXPECT().Export(gomock.Any(), domain.ExportFormatHTML, gomock.Any()).
					Return(nil, domain.NewValidationError("liquid rendering failed"))
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "document not found",
			body: map[string]interface{}{"document_id": "doc1"},
			setupMock: func(m *mocks.MockExportService) {
				m.EXPECT().Export(gomock.Any(), domain.ExportFormatHTML, gomock.Any()).
					Return(nil, &domain.ErrDocumentNotFound{ID: "doc1"})
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "unexpected error",
			body: map[string]interface{}{"document_id": "doc1"},
			setupMock: func(m *mocks.MockExportService) {
				m.EXPECT().Export(gomock.Any(), domain.ExportFormatHTML, gomock.Any()).Return(nil, errors.New("boom"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "missing document id",
			body:           map[string]interface{}{},
			setupMock:      func(m *mocks.MockExportService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid body",
			body:           "nope",
			setupMock:      func(m *mocks.MockExportService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockService, mux, token := setupExportHandlerTest(t)
			tc.setupMock(mockService)

			rec := doRequest(t, mux, http.MethodPost, "/api/export.html", token, tc.body)
			assert.Equal(t, tc.expectedStatus, rec.Code)
		})
	}
}

func TestExportHandler_MethodAndAuth(t *testing.T) {
	_, mux, token := setupExportHandlerTest(t)

	rec := doRequest(t, mux, http.MethodGet, "/api/export.html", token, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = doRequest(t, mux, http.MethodPost, "/api/export.mjml", "", map[string]string{"document_id": "doc1"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
