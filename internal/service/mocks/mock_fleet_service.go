package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"camportal/internal/service"
)

type MockFleetService struct {
	mock.Mock
}

func (m *MockFleetService) Dashboard(ctx context.Context) (*service.Dashboard, error) {
	args := m.Called(ctx)
	if d, ok := args.Get(0).(*service.Dashboard); ok {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockFleetService) RefreshDashboard(ctx context.Context) (*service.Dashboard, error) {
	args := m.Called(ctx)
	if d, ok := args.Get(0).(*service.Dashboard); ok {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockFleetService) ListCameras(ctx context.Context, q service.CameraListQuery) (*service.CameraListResult, error) {
	args := m.Called(ctx, q)
	if r, ok := args.Get(0).(*service.CameraListResult); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockFleetService) CameraDetail(ctx context.Context, uid string) (*service.CameraDetail, error) {
	args := m.Called(ctx, uid)
	if d, ok := args.Get(0).(*service.CameraDetail); ok {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockFleetService) Close() {
	m.Called()
}
