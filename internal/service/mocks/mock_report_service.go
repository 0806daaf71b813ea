package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"camportal/internal/model"
	"camportal/internal/service"
)

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Create(ctx context.Context, periodDays int) (*model.Report, error) {
	args := m.Called(ctx, periodDays)
	if r, ok := args.Get(0).(*model.Report); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReportService) List(ctx context.Context, limit, offset int) (*service.ReportListResult, error) {
	args := m.Called(ctx, limit, offset)
	if r, ok := args.Get(0).(*service.ReportListResult); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReportService) Get(ctx context.Context, id string) (*model.Report, error) {
	args := m.Called(ctx, id)
	if r, ok := args.Get(0).(*model.Report); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReportService) DownloadURL(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockReportService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
