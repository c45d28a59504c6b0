package mocks

import (
	"context"
	"io"

	"dxfhatch/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockHatchService struct {
	mock.Mock
}

func (m *MockHatchService) Generate(ctx context.Context, p model.GenerateParams) (*model.DrawingFile, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DrawingFile), args.Error(1)
}

func (m *MockHatchService) HatchUpload(ctx context.Context, filename string, r io.Reader, p model.UploadParams) (*model.DrawingFile, error) {
	args := m.Called(ctx, filename, r, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DrawingFile), args.Error(1)
}
