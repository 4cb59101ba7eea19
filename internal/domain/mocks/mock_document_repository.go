package mocks

import (
	context "context"
	reflect "reflect"

	domain "github.com/Notifuse/emailbuilder/internal/domain"
	gomock "github.com/golang/mock/gomock"
)

// MockDocumentRepository is a mock of DocumentRepository interface
type MockDocumentRepository struct {
	ctrl     *gomock.Controller
	recorder *MockDocumentRepositoryMockRecorder
}

// MockDocumentRepositoryMockRecorder is the mock recorder for MockDocumentRepository
type MockDocumentRepositoryMockRecorder struct {
	mock *MockDocumentRepository
}

// NewMockDocumentRepository creates a new mock instance
func NewMockDocumentRepository(ctrl *gomock.Controller) *MockDocumentRepository {
	mock := &MockDocumentRepository{ctrl: ctrl}
	mock.recorder = &MockDocumentRepositoryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use
func (m *MockDocumentRepository) EXPECT() *MockDocumentRepositoryMockRecorder {
	return m.recorder
}

// CreateDocument mocks base method
func (m *MockDocumentRepository) CreateDocument(ctx context.Context, doc *domain.Document) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "CreateDocument", ctx, doc)
	ret0, _ := ret[0].(error)
	return ret0
}

// CreateDocument indicates an expected call of CreateDocument
func (mr *MockDocumentRepositoryMockRecorder) CreateDocument(ctx, doc interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "CreateDocument", reflect.TypeOf((*MockDocumentRepository)(nil).CreateDocument), ctx, doc)
}

// DeleteDocument mocks base method
func (m *MockDocumentRepository) DeleteDocument(ctx context.Context, id string) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "DeleteDocument", ctx, id)
	ret0, _ := ret[0].(error)
	return ret0
}

// DeleteDocument indicates an expected call of DeleteDocument
func (mr *MockDocumentRepositoryMockRecorder) DeleteDocument(ctx, id interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "DeleteDocument", reflect.TypeOf((*MockDocumentRepository)(nil).DeleteDocument), ctx, id)
}

// GetDocument mocks base method
func (m *MockDocumentRepository) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetDocument", ctx, id)
	ret0, _ := ret[0].(*domain.Document)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetDocument indicates an expected call of GetDocument
func (mr *MockDocumentRepositoryMockRecorder) GetDocument(ctx, id interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetDocument", reflect.TypeOf((*MockDocumentRepository)(nil).GetDocument), ctx, id)
}

// ListDocuments mocks base method
func (m *MockDocumentRepository) ListDocuments(ctx context.Context, limit int, offset int) ([]*domain.DocumentSummary, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListDocuments", ctx, limit, offset)
	ret0, _ := ret[0].([]*domain.DocumentSummary)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ListDocuments indicates an expected call of ListDocuments
func (mr *MockDocumentRepositoryMockRecorder) ListDocuments(ctx, limit, offset interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListDocuments", reflect.TypeOf((*MockDocumentRepository)(nil).ListDocuments), ctx, limit, offset)
}

// UpdateDocument mocks base method
func (m *MockDocumentRepository) UpdateDocument(ctx context.Context, doc *domain.Document) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "UpdateDocument", ctx, doc)
	ret0, _ := ret[0].(error)
	return ret0
}

// UpdateDocument indicates an expected call of UpdateDocument
func (mr *MockDocumentRepositoryMockRecorder) UpdateDocument(ctx, doc interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "UpdateDocument", reflect.TypeOf((*MockDocumentRepository)(nil).UpdateDocument), ctx, doc)
}
