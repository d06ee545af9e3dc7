package mocks

import (
	"context"

	"github.com/ClearVault/MediaGuard/pkg/moderation"
	"github.com/stretchr/testify/mock"
)

type MockImageClassifier struct {
	mock.Mock
}

func (m *MockImageClassifier) ClassifyImage(ctx context.Context, image []byte) ([]moderation.CategoryScore, error) {
	args := m.Called(ctx, image)
	var scores []moderation.CategoryScore
	if args.Get(0) != nil {
		scores = args.Get(0).([]moderation.CategoryScore)
	}
	return scores, args.Error(1)
}

func (m *MockImageClassifier) ClassifyFrame(ctx context.Context, frame []byte) ([]moderation.CategoryScore, error) {
	args := m.Called(ctx, frame)
	var scores []moderation.CategoryScore
	if args.Get(0) != nil {
		scores = args.Get(0).([]moderation.CategoryScore)
	}
	return scores, args.Error(1)
}
