package mocks

import (
	context "context"
	reflect "reflect"

	domain "github.com/Notifuse/emailbuilder/internal/domain"
	blocks "github.com/Notifuse/emailbuilder/pkg/blocks"
	gomock "github.com/golang/mock/gomock"
)

// MockDocumentService is a mock of DocumentService interface
type MockDocumentService struct {
	ctrl     *gomock.Controller
	recorder *MockDocumentServiceMockRecorder
}

// MockDocumentServiceMockRecorder is the mock recorder for MockDocumentService
type MockDocumentServiceMockRecorder struct {
	mock *MockDocumentService
}

// NewMockDocumentService creates a new mock instance
func NewMockDocumentService(ctrl *gomock.Controller) *MockDocumentService {
	mock := &MockDocumentService{ctrl: ctrl}
	mock.recorder = &MockDocumentServiceMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use
func (m *MockDocumentService) EXPECT() *MockDocumentServiceMockRecorder {
	return m.recorder
}

// CreateDocument mocks base method
func (m *MockDocumentService) CreateDocument(ctx context.Context, req *domain.CreateDocumentRequest) (*domain.Document, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "CreateDocument", ctx, req)
	ret0, _ := ret[0].(*domain.Document)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// CreateDocument indicates an expected call of CreateDocument
func (mr *MockDocumentServiceMockRecorder) CreateDocument(ctx, req interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "CreateDocument", reflect.TypeOf((*MockDocumentService)(nil).CreateDocument), ctx, req)
}

// DeleteDocument mocks base method
func (m *MockDocumentService) DeleteDocument(ctx context.Context, id string) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "DeleteDocument", ctx, id)
	ret0, _ := ret[0].(error)
	return ret0
}

// DeleteDocument indicates an expected call of DeleteDocument
func (mr *MockDocumentServiceMockRecorder) DeleteDocument(ctx, id interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "DeleteDocument", reflect.TypeOf((*MockDocumentService)(nil).DeleteDocument), ctx, id)
}

// GetDocument mocks base method
func (m *MockDocumentService) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetDocument", ctx, id)
	ret0, _ := ret[0].(*domain.Document)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetDocument indicates an expected call of GetDocument
func (mr *MockDocumentServiceMockRecorder) GetDocument(ctx, id interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetDocument", reflect.TypeOf((*MockDocumentService)(nil).GetDocument), ctx, id)
}

// ListDocuments mocks base method
func (m *MockDocumentService) ListDocuments(ctx context.Context, req *domain.ListDocumentsRequest) ([]*domain.DocumentSummary, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListDocuments", ctx, req)
	ret0, _ := ret[0].([]*domain.DocumentSummary)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ListDocuments indicates an expected call of ListDocuments
func (mr *MockDocumentServiceMockRecorder) ListDocuments(ctx, req interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListDocuments", reflect.TypeOf((*MockDocumentService)(nil).ListDocuments), ctx, req)
}

// ListTemplates mocks base method
func (m *MockDocumentService) ListTemplates(ctx context.Context) []blocks.Template {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListTemplates", ctx)
	ret0, _ := ret[0].([]blocks.Template)
	return ret0
}

// ListTemplates indicates an expected call of ListTemplates
func (mr *MockDocumentServiceMockRecorder) ListTemplates(ctx interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListTemplates", reflect.TypeOf((*MockDocumentService)(nil).ListTemplates), ctx)
}
