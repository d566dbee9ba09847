package mocks

import (
	"context"

	"blackboxscan/internal/client"

	"github.com/stretchr/testify/mock"
)

// MockAnalysisServiceClient is a mock type for the AnalysisServiceClient type
type MockAnalysisServiceClient struct {
	mock.Mock
}

// Do provides a mock function with given fields: ctx, call
func (_m *MockAnalysisServiceClient) Do(ctx context.Context, call client.Call) (map[string]any, error) {
	ret := _m.Called(ctx, call)

	var r0 map[string]any
	if rf, ok := ret.Get(0).(func(context.Context, client.Call) map[string]any); ok {
		r0 = rf(ctx, call)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(map[string]any)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, client.Call) error); ok {
		r1 = rf(ctx, call)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// BaseURL provides a mock function with given fields:
func (_m *MockAnalysisServiceClient) BaseURL() string {
	ret := _m.Called()
	return ret.String(0)
}

// NewMockAnalysisServiceClient creates a new instance of MockAnalysisServiceClient. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockAnalysisServiceClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockAnalysisServiceClient {
	m := &MockAnalysisServiceClient{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ client.AnalysisServiceClient = (*MockAnalysisServiceClient)(nil)
