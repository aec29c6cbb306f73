package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/md-ibu786/AURA-PROTO-sub001/internal/domain/notes"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		// =========================
		// Notes (document store side of the knowledge graph)
		// =========================
		&notes.Note{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}
