package extension

// Hand-written in the shape go.uber.org/mock/mockgen generates (see
// vm/processor_mock.go in the teacher repo): a MockHostABI plus its
// recorder, used by abi_test.go to verify call sequences an extension
// author's code would drive against the real ABI without needing an
// actual cgo-loaded library.

import (
	reflect "reflect"

	gomock "go.uber.org/mock/gomock"
)

type MockHostABI struct {
	ctrl     *gomock.Controller
	recorder *MockHostABIMockRecorder
}

type MockHostABIMockRecorder struct {
	mock *MockHostABI
}

func NewMockHostABI(ctrl *gomock.Controller) *MockHostABI {
	mock := &MockHostABI{ctrl: ctrl}
	mock.recorder = &MockHostABIMockRecorder{mock}
	return mock
}

func (m *MockHostABI) EXPECT() *MockHostABIMockRecorder { return m.recorder }

func (m *MockHostABI) TypeOf(h Handle) (Kind, bool) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "TypeOf", h)
	ret0, _ := ret[0].(Kind)
	ret1, _ := ret[1].(bool)
	return ret0, ret1
}

func (mr *MockHostABIMockRecorder) TypeOf(h any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "TypeOf", reflect.TypeOf((*MockHostABI)(nil).TypeOf), h)
}

func (m *MockHostABI) GetBool(h Handle) (bool, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetBool", h)
	ret0, _ := ret[0].(bool)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockHostABIMockRecorder) GetBool(h any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetBool", reflect.TypeOf((*MockHostABI)(nil).GetBool), h)
}

func (m *MockHostABI) GetInt(h Handle) (int64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetInt", h)
	ret0, _ := ret[0].(int64)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockHostABIMockRecorder) GetInt(h any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetInt", reflect.TypeOf((*MockHostABI)(nil).GetInt), h)
}

func (m *MockHostABI) GetFloat(h Handle) (float64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetFloat", h)
	ret0, _ := ret[0].(float64)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockHostABIMockRecorder) GetFloat(h any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetFloat", reflect.TypeOf((*MockHostABI)(nil).GetFloat), h)
}

func (m *MockHostABI) GetString(h Handle) (string, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetString", h)
	ret0, _ := ret[0].(string)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockHostABIMockRecorder) GetString(h any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetString", reflect.TypeOf((*MockHostABI)(nil).GetString), h)
}

func (m *MockHostABI) ArrayLen(h Handle) (int, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ArrayLen", h)
	ret0, _ := ret[0].(int)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockHostABIMockRecorder) ArrayLen(h any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ArrayLen", reflect.TypeOf((*MockHostABI)(nil).ArrayLen), h)
}

func (m *MockHostABI) ArrayGet(h Handle, i int) (Handle, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ArrayGet", h, i)
	ret0, _ := ret[0].(Handle)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockHostABIMockRecorder) ArrayGet(h, i any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ArrayGet", reflect.TypeOf((*MockHostABI)(nil).ArrayGet), h, i)
}

func (m *MockHostABI) MapGet(h Handle, key string) (Handle, bool, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "MapGet", h, key)
	ret0, _ := ret[0].(Handle)
	ret1, _ := ret[1].(bool)
	ret2, _ := ret[2].(error)
	return ret0, ret1, ret2
}

func (mr *MockHostABIMockRecorder) MapGet(h, key any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "MapGet", reflect.TypeOf((*MockHostABI)(nil).MapGet), h, key)
}

func (m *MockHostABI) NewNil() Handle {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "NewNil")
	ret0, _ := ret[0].(Handle)
	return ret0
}

func (mr *MockHostABIMockRecorder) NewNil() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "NewNil", reflect.TypeOf((*MockHostABI)(nil).NewNil))
}

func (m *MockHostABI) NewBool(b bool) Handle {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "NewBool", b)
	ret0, _ := ret[0].(Handle)
	return ret0
}

func (mr *MockHostABIMockRecorder) NewBool(b any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "NewBool", reflect.TypeOf((*MockHostABI)(nil).NewBool), b)
}

func (m *MockHostABI) NewInt(i int64) Handle {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "NewInt", i)
	ret0, _ := ret[0].(Handle)
	return ret0
}

func (mr *MockHostABIMockRecorder) NewInt(i any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "NewInt", reflect.TypeOf((*MockHostABI)(nil).NewInt), i)
}

func (m *MockHostABI) NewFloat(f float64) Handle {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "NewFloat", f)
	ret0, _ := ret[0].(Handle)
	return ret0
}

func (mr *MockHostABIMockRecorder) NewFloat(f any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "NewFloat", reflect.TypeOf((*MockHostABI)(nil).NewFloat), f)
}

func (m *MockHostABI) NewString(s string) Handle {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "NewString", s)
	ret0, _ := ret[0].(Handle)
	return ret0
}

func (mr *MockHostABIMockRecorder) NewString(s any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "NewString", reflect.TypeOf((*MockHostABI)(nil).NewString), s)
}

func (m *MockHostABI) NewArray(children []Handle) Handle {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "NewArray", children)
	ret0, _ := ret[0].(Handle)
	return ret0
}

func (mr *MockHostABIMockRecorder) NewArray(children any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "NewArray", reflect.TypeOf((*MockHostABI)(nil).NewArray), children)
}

func (m *MockHostABI) NewMap() Handle {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "NewMap")
	ret0, _ := ret[0].(Handle)
	return ret0
}

func (mr *MockHostABIMockRecorder) NewMap() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "NewMap", reflect.TypeOf((*MockHostABI)(nil).NewMap))
}

func (m *MockHostABI) MapSet(h Handle, key string, child Handle) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "MapSet", h, key, child)
	ret0, _ := ret[0].(error)
	return ret0
}

func (mr *MockHostABIMockRecorder) MapSet(h, key, child any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "MapSet", reflect.TypeOf((*MockHostABI)(nil).MapSet), h, key, child)
}

func (m *MockHostABI) NewError(msg string) Handle {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "NewError", msg)
	ret0, _ := ret[0].(Handle)
	return ret0
}

func (mr *MockHostABIMockRecorder) NewError(msg any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "NewError", reflect.TypeOf((*MockHostABI)(nil).NewError), msg)
}

func (m *MockHostABI) Free(h Handle) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Free", h)
	ret0, _ := ret[0].(error)
	return ret0
}

func (mr *MockHostABIMockRecorder) Free(h any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Free", reflect.TypeOf((*MockHostABI)(nil).Free), h)
}

var _ HostABI = (*MockHostABI)(nil)
