package http_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Notifuse/emailbuilder/internal/domain"
	"github.com/Notifuse/emailbuilder/internal/domain/mocks"
	http_handler "github.com/Notifuse/emailbuilder/internal/http"
	"github.com/Notifuse/emailbuilder/pkg/blocks"
)

func setupDocumentHandlerTest(t *testing.T) (*mocks.MockDocumentService, *http.ServeMux, string) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockDocumentService(ctrl)

	handler := http_handler.NewDocumentHandler(mockService, getTestSecret, newMockLogger(ctrl))
	return mockService, newTestMux(handler), createTestToken(t)
}

func createTestDocument() *domain.Document {
	email := blocks.NewEmail()
	email.Content.ID = "page"
	email.Subject = "Hello"
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Document{
		ID:        "doc1",
		Name:      "Newsletter",
		Email:     email,
		Version:   domain.DocumentFormatVersion,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestDocumentHandler_RequiresAuth(t *testing.T) {
	_, mux, _ := setupDocumentHandlerTest(t)

	for _, path := range []string{"/api/documents.list", "/api/documents.get?id=doc1", "/api/templates.list"} {
		rec := doRequest(t, mux, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := doRequest(t, mux, http.MethodGet, "/api/documents.list", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDocumentHandler_List(t *testing.T) {
	testCases := []struct {
		name           string
		method         string
		query          string
		setupMock      func(m *mocks.MockDocumentService)
		expectedStatus int
	}{
		{
			name:   "defaults",
			method: http.MethodGet,
			setupMock: func(m *mocks.MockDocumentService) {
				m.EXPECT().ListDocuments(gomock.Any(), &domain.ListDocumentsRequest{Limit: domain.DefaultListLimit}).
					Return([]*domain.DocumentSummary{{ID: "doc1", Name: "Newsletter"}}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "paging",
			method: http.MethodGet,
			query:  "?limit=10&offset=20",
			setupMock: func(m *mocks.MockDocumentService) {
				m.EXPECT().ListDocuments(gomock.Any(), &domain.ListDocumentsRequest{Limit: 10, Offset: 20}).
					Return([]*domain.DocumentSummary{}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid limit",
			method:         http.MethodGet,
			query:          "?limit=abc",
			setupMock:      func(m *mocks.MockDocumentService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "wrong method",
			method:         http.MethodPost,
			setupMock:      func(m *mocks.MockDocumentService) {},
			expectedStatus: http.StatusMethodNotAllowed,
		},
		{
			name:   "service error",
			method: http.MethodGet,
			setupMock: func(m *mocks.MockDocumentService) {
				m.EXPECT().ListDocuments(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockService, mux, token := setupDocumentHandlerTest(t)
			tc.setupMock(mockService)

			rec := doRequest(t, mux, tc.method, "/api/documents.list"+tc.query, token, nil)
			assert.Equal(t, tc.expectedStatus, rec.Code)
			if tc.expectedStatus == http.StatusOK {
				body := decodeBody(t, rec)
				assert.Contains(t, body, "documents")
			}
		})
	}
}

func TestDocumentHandler_Get(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockService, mux, token := setupDocumentHandlerTest(t)
		mockService.EXPECT().GetDocument(gomock.Any(), "doc1").Return(createTestDocument(), nil)

		rec := doRequest(t, mux, http.MethodGet, "/api/documents.get?id=doc1", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		document := body["document"].(map[string]interface{})
		assert.Equal(t, "doc1", document["id"])
		email := document["email"].(map[string]interface{})
		assert.Equal(t, "Hello", email["subject"])
	})

	t.Run("not found", func(t *testing.T) {
		mockService, mux, token := setupDocumentHandlerTest(t)
		mockService.EXPECT().GetDocument(gomock.Any(), "missing").Return(nil, &domain.ErrDocumentNotFound{ID: "missing"})

		rec := doRequest(t, mux, http.MethodGet, "/api/documents.get?id=missing", token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing id", func(t *testing.T) {
		_, mux, token := setupDocumentHandlerTest(t)

		rec := doRequest(t, mux, http.MethodGet, "/api/documents.get", token, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		_, mux, token := setupDocumentHandlerTest(t)

		rec := doRequest(t, mux, http.MethodGet, "/api/documents.get?id=a%2Fb", token, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDocumentHandler_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockService, mux, token := setupDocumentHandlerTest(t)
		mockService.EXPECT().
			CreateDocument(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req *domain.CreateDocumentRequest) (*domain.Document, error) {
				assert.Equal(t, "Newsletter", req.Name)
				assert.Equal(t, "welcome", req.Template)
				return createTestDocument(), nil
			})

		rec := doRequest(t, mux, http.MethodPost, "/api/documents.create", token, map[string]interface{}{
			"name":     "  Newsletter ",
			"template": "welcome",
		})
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, decodeBody(t, rec), "document")
	})

	t.Run("invalid json", func(t *testing.T) {
		_, mux, token := setupDocumentHandlerTest(t)

		rec := doRequest(t, mux, http.MethodPost, "/api/documents.create", token, "{bad json")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing name", func(t *testing.T) {
		_, mux, token := setupDocumentHandlerTest(t)

		rec := doRequest(t, mux, http.MethodPost, "/api/documents.create", token, map[string]interface{}{"name": " "})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeBody(t, rec)["error"], "name is required")
	})

	t.Run("invalid content hierarchy", func(t *testing.T) {
		_, mux, token := setupDocumentHandlerTest(t)

		rec := doRequest(t, mux, http.MethodPost, "/api/documents.create", token, map[string]interface{}{
			"name": "Doc",
			"content": map[string]interface{}{
				"type": "page",
				"children": []interface{}{
					map[string]interface{}{"type": "text", "children": []interface{}{
						map[string]interface{}{"type": "text"},
					}},
				},
			},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("repeated block id in content", func(t *testing.T) {
		_, mux, token := setupDocumentHandlerTest(t)

		rec := doRequest(t, mux, http.MethodPost, "/api/documents.create", token, map[string]interface{}{
			"name": "Doc",
			"content": map[string]interface{}{
				"type": "page",
				"children": []interface{}{
					map[string]interface{}{"id": "a", "type": "text"},
					map[string]interface{}{"id": "a", "type": "text"},
				},
			},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeBody(t, rec)["error"], "duplicate block id")
	})

	t.Run("conflict", func(t *testing.T) {
		mockService, mux, token := setupDocumentHandlerTest(t)
		mockService.EXPECT().CreateDocument(gomock.Any(), gomock.Any()).Return(nil, &domain.ErrDocumentExists{ID: "doc1"})

		rec := doRequest(t, mux, http.MethodPost, "/api/documents.create", token, map[string]interface{}{"id": "doc1", "name": "Doc"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("unknown template", func(t *testing.T) {
		mockService, mux, token := setupDocumentHandlerTest(t)
		mockService.EXPECT().CreateDocument(gomock.Any(), gomock.Any()).Return(nil, domain.NewValidationError(`template "x" not found`))

		rec := doRequest(t, mux, http.MethodPost, "/api/documents.create", token, map[string]interface{}{"name": "Doc", "template": "x"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("wrong method", func(t *testing.T) {
		_, mux, token := setupDocumentHandlerTest(t)

		rec := doRequest(t, mux, http.MethodGet, "/api/documents.create", token, nil)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestDocumentHandler_Delete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockService, mux, token := setupDocumentHandlerTest(t)
		mockService.EXPECT().DeleteDocument(gomock.Any(), "doc1").Return(nil)

		rec := doRequest(t, mux, http.MethodPost, "/api/documents.delete", token, map[string]string{"id": "doc1"})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, decodeBody(t, rec)["success"])
	})

	t.Run("not found", func(t *testing.T) {
		mockService, mux, token := setupDocumentHandlerTest(t)
		mockService.EXPECT().DeleteDocument(gomock.Any(), "doc1").Return(&domain.ErrDocumentNotFound{ID: "doc1"})

		rec := doRequest(t, mux, http.MethodPost, "/api/documents.delete", token, map[string]string{"id": "doc1"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing id", func(t *testing.T) {
		_, mux, token := setupDocumentHandlerTest(t)

		rec := doRequest(t, mux, http.MethodPost, "/api/documents.delete", token, map[string]string{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDocumentHandler_ListTemplates(t *testing.T) {
	mockService, mux, token := setupDocumentHandlerTest(t)
	mockService.EXPECT().ListTemplates(gomock.Any()).Return(blocks.Templates())

	rec := doRequest(t, mux, http.MethodGet, "/api/templates.list", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	templates := decodeBody(t, rec)["templates"].([]interface{})
	assert.Len(t, templates, len(blocks.Templates()))
}
