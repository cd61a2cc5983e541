package persistence

import (
	"fmt"

	"github.com/maia/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// AutoMigrate creates the tables from the GORM models. Production schemas
// come from the SQL files in migrations/; this is for embedded databases in
// tests and local tooling. Ledger indexes and the owner CHECK constraint only
// exist in the SQL migrations.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.UserModel{}); err != nil {
		return fmt.Errorf("migrate users: %w", err)
	}
	for _, table := range []string{models.PayablesTable, models.ReceivablesTable} {
		if err := db.Table(table).AutoMigrate(&models.LedgerRecordModel{}); err != nil {
			return fmt.Errorf("migrate %s: %w", table, err)
		}
	}
	return nil
}
