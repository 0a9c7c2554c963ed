package repository

import (
	"gorm.io/gorm"

	"github.com/ss-lucnguyen/seller-inventory/shared/models"
)

// Migrate creates or updates the schema. The partial unique index on
// customers is what makes default-customer provisioning idempotent
// under concurrent first use; AutoMigrate cannot express it, so it is
// raw SQL.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Store{},
		&models.StoreInvitation{},
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Customer{},
		&models.Order{},
		&models.OrderItem{},
		&models.Invoice{},
	)
	if err != nil {
		return err
	}

	return db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_customers_default_per_store
		 ON customers (store_id) WHERE is_default`,
	).Error
}
