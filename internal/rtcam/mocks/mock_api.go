package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"camportal/internal/model"
	"camportal/internal/rtcam"
)

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) Health(ctx context.Context) (*rtcam.Health, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rtcam.Health), args.Error(1)
}

func (m *MockAPI) AllCameras(ctx context.Context) ([]model.Camera, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Camera), args.Error(1)
}

func (m *MockAPI) CameraFragments(ctx context.Context, uid string, since, till int64) ([]model.Fragment, error) {
	args := m.Called(ctx, uid, since, till)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Fragment), args.Error(1)
}

func (m *MockAPI) BakedArchives(ctx context.Context, q rtcam.ArchiveQuery) ([]model.BakedArchive, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.BakedArchive), args.Error(1)
}
