package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ClearVault/MediaGuard/pkg/domain/verdict"
)

type verdictRepository struct {
	db *gorm.DB
}

func NewVerdictRepository(db *gorm.DB) verdict.Repository {
	return &verdictRepository{
		db: db,
	}
}

func (r *verdictRepository) Save(ctx context.Context, record *verdict.Record) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *verdictRepository) Get(ctx context.Context, id uuid.UUID) (*verdict.Record, error) {
	var entity verdict.Record
	if err := r.db.WithContext(ctx).First(&entity, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *verdictRepository) ListRecent(ctx context.Context, limit int) ([]verdict.Record, error) {
	var records []verdict.Record
	err := r.db.WithContext(ctx).Model(&verdict.Record{}).
		Order("created_at desc").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
