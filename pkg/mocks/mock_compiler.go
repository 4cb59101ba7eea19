package pkgmocks

import (
	context "context"
	reflect "reflect"

	blocks "github.com/Notifuse/emailbuilder/pkg/blocks"
	export "github.com/Notifuse/emailbuilder/pkg/export"
	gomock "github.com/golang/mock/gomock"
)

// MockCompiler is a mock of Compiler interface
type MockCompiler struct {
	ctrl     *gomock.Controller
	recorder *MockCompilerMockRecorder
}

// MockCompilerMockRecorder is the mock recorder for MockCompiler
type MockCompilerMockRecorder struct {
	mock *MockCompiler
}

// NewMockCompiler creates a new mock instance
func NewMockCompiler(ctrl *gomock.Controller) *MockCompiler {
	mock := &MockCompiler{ctrl: ctrl}
	mock.recorder = &MockCompilerMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use
func (m *MockCompiler) EXPECT() *MockCompilerMockRecorder {
	return m.recorder
}

// Compile mocks base method
func (m *MockCompiler) Compile(ctx context.Context, email *blocks.Email, opts export.Options) (*export.Result, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Compile", ctx, email, opts)
	ret0, _ := ret[0].(*export.Result)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Compile indicates an expected call of Compile
func (mr *MockCompilerMockRecorder) Compile(ctx, email, opts interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Compile", reflect.TypeOf((*MockCompiler)(nil).Compile), ctx, email, opts)
}
