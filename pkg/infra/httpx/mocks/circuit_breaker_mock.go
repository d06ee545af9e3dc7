package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockCircuitBreaker struct {
	mock.Mock
}

func (m *MockCircuitBreaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	return args.Error(0)
}

func (m *MockCircuitBreaker) State() string {
	args := m.Called()
	return args.String(0)
}

// PassthroughBreaker runs the protected call directly; tests use it when the
// breaker itself is not under test.
type PassthroughBreaker struct{}

func (PassthroughBreaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (PassthroughBreaker) State() string { return "closed" }
