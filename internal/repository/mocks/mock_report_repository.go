package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"camportal/internal/model"
	"camportal/internal/repository"
)

type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) Create(ctx context.Context, report *model.Report) (*model.Report, error) {
	args := m.Called(ctx, report)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Report), args.Error(1)
}

func (m *MockReportRepository) FindByID(ctx context.Context, id string) (*model.Report, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Report), args.Error(1)
}

func (m *MockReportRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Report], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Report]), args.Error(1)
}

func (m *MockReportRepository) MarkDone(ctx context.Context, id, storagePath string, size int64, cameraCount, problemCount int, completedAt time.Time) error {
	args := m.Called(ctx, id, storagePath, size, cameraCount, problemCount, completedAt)
	return args.Error(0)
}

func (m *MockReportRepository) MarkFailed(ctx context.Context, id, errorMessage string, completedAt time.Time) error {
	args := m.Called(ctx, id, errorMessage, completedAt)
	return args.Error(0)
}

func (m *MockReportRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
