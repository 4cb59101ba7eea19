package mocks

import (
	context "context"
	reflect "reflect"

	domain "github.com/Notifuse/emailbuilder/internal/domain"
	gomock "github.com/golang/mock/gomock"
)

// MockExportService is a mock of ExportService interface
type MockExportService struct {
	ctrl     *gomock.Controller
	recorder *MockExportServiceMockRecorder
}

// MockExportServiceMockRecorder is the mock recorder for MockExportService
type MockExportServiceMockRecorder struct {
	mock *MockExportService
}

// NewMockExportService creates a new mock instance
func NewMockExportService(ctrl *gomock.Controller) *MockExportService {
	mock := &MockExportService{ctrl: ctrl}
	mock.recorder = &MockExportServiceMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use
func (m *MockExportService) EXPECT() *MockExportServiceMockRecorder {
	return m.recorder
}

// Export mocks base method
func (m *MockExportService) Export(ctx context.Context, format domain.ExportFormat, req *domain.ExportRequest) (*domain.ExportResult, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Export", ctx, format, req)
	ret0, _ := ret[0].(*domain.ExportResult)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Export indicates an expected call of Export
func (mr *MockExportServiceMockRecorder) Export(ctx, format, req interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Export", reflect.TypeOf((*MockExportService)(nil).Export), ctx, format, req)
}

// Invalidate mocks base method
func (m *MockExportService) Invalidate(documentID string) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "Invalidate", documentID)
}

// Invalidate indicates an expected call of Invalidate
func (mr *MockExportServiceMockRecorder) Invalidate(documentID interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Invalidate", reflect.TypeOf((*MockExportService)(nil).Invalidate), documentID)
}
