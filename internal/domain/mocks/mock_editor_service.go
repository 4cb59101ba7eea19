package mocks

import (
	context "context"
	reflect "reflect"

	domain "github.com/Notifuse/emailbuilder/internal/domain"
	gomock "github.com/golang/mock/gomock"
)

// MockEditorService is a mock of EditorService interface
type MockEditorService struct {
	ctrl     *gomock.Controller
	recorder *MockEditorServiceMockRecorder
}

// MockEditorServiceMockRecorder is the mock recorder for MockEditorService
type MockEditorServiceMockRecorder struct {
	mock *MockEditorService
}

// NewMockEditorService creates a new mock instance
func NewMockEditorService(ctrl *gomock.Controller) *MockEditorService {
	mock := &MockEditorService{ctrl: ctrl}
	mock.recorder = &MockEditorServiceMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use
func (m *MockEditorService) EXPECT() *MockEditorServiceMockRecorder {
	return m.recorder
}

// AddBlock mocks base method
func (m *MockEditorService) AddBlock(ctx context.Context, req *domain.AddBlockRequest) (*domain.EditorResult, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "AddBlock", ctx, req)
	ret0, _ := ret[0].(*domain.EditorResult)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// AddBlock indicates an expected call of AddBlock
func (mr *MockEditorServiceMockRecorder) AddBlock(ctx, req interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "AddBlock", reflect.TypeOf((*MockEditorService)(nil).AddBlock), ctx, req)
}

// Clear mocks base method
func (m *MockEditorService) Clear(ctx context.Context, documentID string) (*domain.EditorResult, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Clear", ctx, documentID)
	ret0, _ := ret[0].(*domain.EditorResult)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Clear indicates an expected call of Clear
func (mr *MockEditorServiceMockRecorder) Clear(ctx, documentID interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Clear", reflect.TypeOf((*MockEditorService)(nil).Clear), ctx, documentID)
}

// Close mocks base method
func (m *MockEditorService) Close(ctx context.Context, documentID string) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Close", ctx, documentID)
	ret0, _ := ret[0].(error)
	return ret0
}

// Close indicates an expected call of Close
func (mr *MockEditorServiceMockRecorder) Close(ctx, documentID interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Close", reflect.TypeOf((*MockEditorService)(nil).Close), ctx, documentID)
}

// DeleteBlock mocks base method
func (m *MockEditorService) DeleteBlock(ctx context.Context, req *domain.BlockRequest) (*domain.EditorResult, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "DeleteBlock", ctx, req)
	ret0, _ := ret[0].(*domain.EditorResult)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// DeleteBlock indicates an expected call of DeleteBlock
func (mr *MockEditorServiceMockRecorder) DeleteBlock(ctx, req interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "DeleteBlock", reflect.TypeOf((*MockEditorService)(nil).DeleteBlock), ctx, req)
}

// Drop mocks base method
func (m *MockEditorService) Drop(ctx context.Context, req *domain.DropRequest) (*domain.EditorResult, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Drop", ctx, req)
	ret0, _ := ret[0].(*domain.EditorResult)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Drop indicates an expected call of Drop
func (mr *MockEditorServiceMockRecorder) Drop(ctx, req interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Drop", reflect.TypeOf((*MockEditorService)(nil).Drop), ctx, req)
}

// DuplicateBlock mocks base method
func (m *MockEditorService) DuplicateBlock(ctx context.Context, req *domain.BlockRequest) (*domain.EditorResult, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "DuplicateBlock", ctx, req)
	ret0, _ := ret[0].(*domain.EditorResult)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// DuplicateBlock indicates an expected call of DuplicateBlock
func (mr *MockEditorServiceMockRecorder) DuplicateBlock(ctx, req interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "DuplicateBlock", reflect.TypeOf((*MockEditorService)(nil).DuplicateBlock), ctx, req)
}

// MoveBlock mocks base method
func (m *MockEditorService) MoveBlock(ctx context.Context, req *domain.MoveBlockRequest) (*domain.EditorResult, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "MoveBlock", ctx, req)
	ret0, _ := ret[0].(*domain.EditorResult)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// MoveBlock indicates an expected call of MoveBlock
func (mr *MockEditorServiceMockRecorder) MoveBlock(ctx, req interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "MoveBlock", reflect.TypeOf((*MockEditorService)(nil).MoveBlock), ctx, req)
}

// Redo mocks base method
func (m *MockEditorService) Redo(ctx context.Context, documentID string) (*domain.EditorResult, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Redo", ctx, documentID)
	ret0, _ := ret[0].(*domain.EditorResult)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Redo indicates an expected call of Redo
func (mr *MockEditorServiceMockRecorder) Redo(ctx, documentID interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Redo", reflect.TypeOf((*MockEditorService)(nil).Redo), ctx, documentID)
}

// Select mocks base method
func (m *MockEditorService) Select(ctx context.Context, req *domain.SelectBlockRequest) (*domain.EditorState, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Select", ctx, req)
	ret0, _ := ret[0].(*domain.EditorState)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Select indicates an expected call of Select
func (mr *MockEditorServiceMockRecorder) Select(ctx, req interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Select", reflect.TypeOf((*MockEditorService)(nil).Select), ctx, req)
}

// State mocks base method
func (m *MockEditorService) State(ctx context.Context, documentID string) (*domain.EditorState, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "State", ctx, documentID)
	ret0, _ := ret[0].(*domain.EditorState)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// State indicates an expected call of State
func (mr *MockEditorServiceMockRecorder) State(ctx, documentID interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "State", reflect.TypeOf((*MockEditorService)(nil).State), ctx, documentID)
}

// Undo mocks base method
func (m *MockEditorService) Undo(ctx context.Context, documentID string) (*domain.EditorResult, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Undo", ctx, documentID)
	ret0, _ := ret[0].(*domain.EditorResult)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Undo indicates an expected call of Undo
func (mr *MockEditorServiceMockRecorder) Undo(ctx, documentID interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Undo", reflect.TypeOf((*MockEditorService)(nil).Undo), ctx, documentID)
}

// UpdateBlock mocks base method
func (m *MockEditorService) UpdateBlock(ctx context.Context, req *domain.UpdateBlockRequest) (*domain.EditorResult, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "UpdateBlock", ctx, req)
	ret0, _ := ret[0].(*domain.EditorResult)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// UpdateBlock indicates an expected call of UpdateBlock
func (mr *MockEditorServiceMockRecorder) UpdateBlock(ctx, req interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "UpdateBlock", reflect.TypeOf((*MockEditorService)(nil).UpdateBlock), ctx, req)
}

// UpdateBody mocks base method
func (m *MockEditorService) UpdateBody(ctx context.Context, req *domain.UpdateBodyRequest) (*domain.EditorResult, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "UpdateBody", ctx, req)
	ret0, _ := ret[0].(*domain.EditorResult)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// UpdateBody indicates an expected call of UpdateBody
func (mr *MockEditorServiceMockRecorder) UpdateBody(ctx, req interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "UpdateBody", reflect.TypeOf((*MockEditorService)(nil).UpdateBody), ctx, req)
}

// UpdateSubject mocks base method
func (m *MockEditorService) UpdateSubject(ctx context.Context, req *domain.UpdateSubjectRequest) (*domain.EditorResult, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "UpdateSubject", ctx, req)
	ret0, _ := ret[0].(*domain.EditorResult)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// UpdateSubject indicates an expected call of UpdateSubject
func (mr *MockEditorServiceMockRecorder) UpdateSubject(ctx, req interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "UpdateSubject", reflect.TypeOf((*MockEditorService)(nil).UpdateSubject), ctx, req)
}
