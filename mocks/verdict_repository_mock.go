package mocks

import (
	"context"

	"github.com/ClearVault/MediaGuard/pkg/domain/verdict"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockVerdictRepository struct {
	mock.Mock
}

func (m *MockVerdictRepository) Save(ctx context.Context, record *verdict.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockVerdictRepository) Get(ctx context.Context, id uuid.UUID) (*verdict.Record, error) {
	args := m.Called(ctx, id)
	var record *verdict.Record
	if args.Get(0) != nil {
		record = args.Get(0).(*verdict.Record)
	}
	return record, args.Error(1)
}

func (m *MockVerdictRepository) ListRecent(ctx context.Context, limit int) ([]verdict.Record, error) {
	args := m.Called(ctx, limit)
	var records []verdict.Record
	if args.Get(0) != nil {
		records = args.Get(0).([]verdict.Record)
	}
	return records, args.Error(1)
}
