package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"camportal/internal/service"
)

type MockArchiveService struct {
	mock.Mock
}

func (m *MockArchiveService) List(ctx context.Context, page int, statusLabel string) (*service.ArchiveListResult, error) {
	args := m.Called(ctx, page, statusLabel)
	if r, ok := args.Get(0).(*service.ArchiveListResult); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockArchiveService) Close() {
	m.Called()
}
