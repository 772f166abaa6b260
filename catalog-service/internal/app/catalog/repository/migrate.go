package repository

import (
	"fmt"

	"ecommerce/catalog-service/internal/app/catalog/entity"

	"gorm.io/gorm"
)

const reviewUniqueIndex = `CREATE UNIQUE INDEX IF NOT EXISTS ux_reviews_user_product_active
	ON reviews (user_id, product_id) WHERE is_active = true`

// Migrate creates or updates the catalog schema, including the partial
// unique index that backs the one-active-review rule.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&entity.Category{}, &entity.Product{}, &entity.Review{}); err != nil {
		return fmt.Errorf("failed to auto-migrate catalog schema: %w", err)
	}

	if err := db.Exec(reviewUniqueIndex).Error; err != nil {
		return fmt.Errorf("failed to create review unique index: %w", err)
	}

	return nil
}
