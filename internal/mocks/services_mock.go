package mocks

import (
	"context"

	"blackboxscan/internal/models"
	"blackboxscan/internal/service"

	"github.com/stretchr/testify/mock"
)

// MockAnalysisService is a mock type for the AnalysisService type
type MockAnalysisService struct {
	mock.Mock
}

// Run provides a mock function with given fields: ctx, formKey, req, requestID
func (_m *MockAnalysisService) Run(ctx context.Context, formKey string, req *models.AnalysisRequest, requestID string) *models.AnalysisResult {
	ret := _m.Called(ctx, formKey, req, requestID)

	if rf, ok := ret.Get(0).(func(context.Context, string, *models.AnalysisRequest, string) *models.AnalysisResult); ok {
		return rf(ctx, formKey, req, requestID)
	}
	if ret.Get(0) == nil {
		return nil
	}
	return ret.Get(0).(*models.AnalysisResult)
}

// Busy provides a mock function with given fields: formKey
func (_m *MockAnalysisService) Busy(formKey string) bool {
	ret := _m.Called(formKey)
	return ret.Bool(0)
}

// NewMockAnalysisService creates a new instance of MockAnalysisService.
func NewMockAnalysisService(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockAnalysisService {
	m := &MockAnalysisService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// MockContributionService is a mock type for the ContributionService type
type MockContributionService struct {
	mock.Mock
}

// Submit provides a mock function with given fields: ctx, in
func (_m *MockContributionService) Submit(ctx context.Context, in service.ContributionInput) (*models.Contribution, error) {
	ret := _m.Called(ctx, in)

	var r0 *models.Contribution
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Contribution)
	}
	return r0, ret.Error(1)
}

// List provides a mock function with given fields: ctx, filter
func (_m *MockContributionService) List(ctx context.Context, filter service.ContributionFilter) (*service.ContributionListing, error) {
	ret := _m.Called(ctx, filter)

	var r0 *service.ContributionListing
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*service.ContributionListing)
	}
	return r0, ret.Error(1)
}

// Search provides a mock function with given fields: ctx, filter
func (_m *MockContributionService) Search(ctx context.Context, filter service.ContributionFilter) ([]models.Contribution, error) {
	ret := _m.Called(ctx, filter)

	var r0 []models.Contribution
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.Contribution)
	}
	return r0, ret.Error(1)
}

// NewMockContributionService creates a new instance of MockContributionService.
func NewMockContributionService(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockContributionService {
	m := &MockContributionService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// MockContactService is a mock type for the ContactService type
type MockContactService struct {
	mock.Mock
}

// Send provides a mock function with given fields: ctx, in
func (_m *MockContactService) Send(ctx context.Context, in service.ContactInput) (*models.ContactMessage, error) {
	ret := _m.Called(ctx, in)

	var r0 *models.ContactMessage
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.ContactMessage)
	}
	return r0, ret.Error(1)
}

// NewMockContactService creates a new instance of MockContactService.
func NewMockContactService(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockContactService {
	m := &MockContactService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var (
	_ service.AnalysisService     = (*MockAnalysisService)(nil)
	_ service.ContributionService = (*MockContributionService)(nil)
	_ service.ContactService      = (*MockContactService)(nil)
)
