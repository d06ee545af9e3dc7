package moderation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ClearVault/MediaGuard/mocks"
	"github.com/ClearVault/MediaGuard/pkg/infra/httpx"
	httpxmocks "github.com/ClearVault/MediaGuard/pkg/infra/httpx/mocks"
	"github.com/ClearVault/MediaGuard/pkg/moderation"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestClassifierGateway_PassesCategoriesThrough(t *testing.T) {
	classifier := new(mocks.MockClassifier)
	classifier.On("Analyze", mock.Anything, []byte("image")).Return([]moderation.CategoryScore{
		{Category: moderation.CategorySexual, Severity: 2},
	}, nil)

	gateway := moderation.NewClassifierGateway(
		classifier, httpxmocks.PassthroughBreaker{}, moderation.GatewayTimeouts{}, quietLogger(),
	)

	categories, err := gateway.ClassifyImage(context.Background(), []byte("image"))

	assert.NoError(t, err)
	assert.Equal(t, []moderation.CategoryScore{
		{Category: moderation.CategorySexual, Severity: 2},
	}, categories)
}

func TestClassifierGateway_ClassifierErrorIsUnavailable(t *testing.T) {
	classifier := new(mocks.MockClassifier)
	classifier.On("Analyze", mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused"))

	gateway := moderation.NewClassifierGateway(
		classifier, httpxmocks.PassthroughBreaker{}, moderation.GatewayTimeouts{}, quietLogger(),
	)

	categories, err := gateway.ClassifyImage(context.Background(), []byte("image"))

	assert.Nil(t, categories)
	assert.ErrorIs(t, err, moderation.ErrClassifierUnavailable)
	// The transport error must not leak to the caller.
	assert.NotContains(t, err.Error(), "connection refused")
}

func TestClassifierGateway_OpenBreakerIsUnavailable(t *testing.T) {
	classifier := new(mocks.MockClassifier)

	breaker := new(httpxmocks.MockCircuitBreaker)
	breaker.On("Execute", mock.Anything, mock.Anything).Return(httpx.ErrCircuitOpen)
	breaker.On("State").Return("open")

	gateway := moderation.NewClassifierGateway(
		classifier, breaker, moderation.GatewayTimeouts{}, quietLogger(),
	)

	categories, err := gateway.ClassifyImage(context.Background(), []byte("image"))

	assert.Nil(t, categories)
	assert.ErrorIs(t, err, moderation.ErrClassifierUnavailable)
	classifier.AssertNotCalled(t, "Analyze")
}

func TestClassifierGateway_TimeoutIsUnavailable(t *testing.T) {
	classifier := new(mocks.MockClassifier)
	classifier.On("Analyze", mock.Anything, mock.Anything).Return(nil, context.DeadlineExceeded).
		Run(func(args mock.Arguments) {
			ctx, ok := args.Get(0).(context.Context)
			if assert.True(t, ok) {
				<-ctx.Done()
			}
		})

	gateway := moderation.NewClassifierGateway(
		classifier,
		httpxmocks.PassthroughBreaker{},
		moderation.GatewayTimeouts{Image: 10 * time.Millisecond},
		quietLogger(),
	)

	start := time.Now()
	categories, err := gateway.ClassifyImage(context.Background(), []byte("image"))

	assert.Nil(t, categories)
	assert.ErrorIs(t, err, moderation.ErrClassifierUnavailable)
	assert.Less(t, time.Since(start), time.Second)
}

func TestClassifierGateway_FrameUsesFrameTimeout(t *testing.T) {
	classifier := new(mocks.MockClassifier)
	classifier.On("Analyze", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			ctx, ok := args.Get(0).(context.Context)
			if assert.True(t, ok) {
				_, hasDeadline := ctx.Deadline()
				assert.True(t, hasDeadline)
			}
		}).
		Return([]moderation.CategoryScore{}, nil)

	gateway := moderation.NewClassifierGateway(
		classifier,
		httpxmocks.PassthroughBreaker{},
		moderation.GatewayTimeouts{Frame: time.Minute},
		quietLogger(),
	)

	_, err := gateway.ClassifyFrame(context.Background(), []byte("frame"))
	assert.NoError(t, err)
}
