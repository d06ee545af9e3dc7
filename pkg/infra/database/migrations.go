package database

import (
	"gorm.io/gorm"

	"github.com/ClearVault/MediaGuard/pkg/domain/verdict"
)

func init() {
	RegisterMigration(Migration{
		ID:   "20250114_001",
		Name: "create moderation_verdicts table",
		Up: func(db *gorm.DB) error {
			return db.AutoMigrate(&verdict.Record{})
		},
		Down: func(db *gorm.DB) error {
			return db.Migrator().DropTable(&verdict.Record{})
		},
	})
}
