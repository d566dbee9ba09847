package mocks

import (
	"context"

	"blackboxscan/internal/models"
	"blackboxscan/internal/repository"

	"github.com/stretchr/testify/mock"
)

// MockContributionRepository is a mock type for the ContributionRepository type
type MockContributionRepository struct {
	mock.Mock
}

// Create provides a mock function with given fields: ctx, c
func (_m *MockContributionRepository) Create(ctx context.Context, c *models.Contribution) error {
	ret := _m.Called(ctx, c)

	if rf, ok := ret.Get(0).(func(context.Context, *models.Contribution) error); ok {
		return rf(ctx, c)
	}
	return ret.Error(0)
}

// ListAll provides a mock function with given fields: ctx
func (_m *MockContributionRepository) ListAll(ctx context.Context) ([]models.Contribution, error) {
	ret := _m.Called(ctx)

	var r0 []models.Contribution
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.Contribution)
	}
	return r0, ret.Error(1)
}

// ListFiltered provides a mock function with given fields: ctx, types, search
func (_m *MockContributionRepository) ListFiltered(ctx context.Context, types []models.ContributionType, search string) ([]models.Contribution, error) {
	ret := _m.Called(ctx, types, search)

	var r0 []models.Contribution
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.Contribution)
	}
	return r0, ret.Error(1)
}

// NewMockContributionRepository creates a new instance of MockContributionRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockContributionRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockContributionRepository {
	m := &MockContributionRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ repository.ContributionRepository = (*MockContributionRepository)(nil)
