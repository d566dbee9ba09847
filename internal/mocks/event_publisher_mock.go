package mocks

import (
	"context"

	"blackboxscan/internal/messaging"
	"blackboxscan/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockEventPublisher is a mock type for the EventPublisher type
type MockEventPublisher struct {
	mock.Mock
}

// PublishContributionCreated provides a mock function with given fields: ctx, c
func (_m *MockEventPublisher) PublishContributionCreated(ctx context.Context, c *models.Contribution) error {
	ret := _m.Called(ctx, c)
	return ret.Error(0)
}

// PublishContactMessage provides a mock function with given fields: ctx, m
func (_m *MockEventPublisher) PublishContactMessage(ctx context.Context, m *models.ContactMessage) error {
	ret := _m.Called(ctx, m)
	return ret.Error(0)
}

// Close provides a mock function with given fields:
func (_m *MockEventPublisher) Close() error {
	ret := _m.Called()
	return ret.Error(0)
}

// NewMockEventPublisher creates a new instance of MockEventPublisher. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockEventPublisher(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockEventPublisher {
	m := &MockEventPublisher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ messaging.EventPublisher = (*MockEventPublisher)(nil)
