package repository

import (
	"context"
	"errors"
	"fmt"

	"ecommerce/catalog-service/internal/app/catalog/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	if err := conn(ctx, r.db).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// GetByID loads a product whether or not it is active.
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	return r.first(conn(ctx, r.db).Where("id = ?", id))
}

func (r *productRepository) GetActiveByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	return r.first(conn(ctx, r.db).Where("id = ? AND is_active = ?", id, true))
}

func (r *productRepository) LockByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	return r.first(conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id))
}

func (r *productRepository) first(q *gorm.DB) (*entity.Product, error) {
	var product entity.Product
	if err := q.Take(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

// List returns one page of active products matching filter, ordered by
// (created_at, id), plus the total number of matches.
func (r *productRepository) List(ctx context.Context, filter entity.ProductFilter, offset, limit int) ([]entity.Product, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	products := make([]entity.Product, 0)
	err := r.filtered(ctx, filter).
		Order("created_at ASC").
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	return products, total, nil
}

func (r *productRepository) filtered(ctx context.Context, f entity.ProductFilter) *gorm.DB {
	q := conn(ctx, r.db).Model(&entity.Product{}).Where("is_active = ?", true)

	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if f.InStock != nil {
		if *f.InStock {
			q = q.Where("stock > ?", 0)
		} else {
			q = q.Where("stock = ?", 0)
		}
	}
	if f.SellerID != nil {
		q = q.Where("seller_id = ?", *f.SellerID)
	}
	if f.CreatedAt != nil {
		q = q.Where("created_at = ?", *f.CreatedAt)
	}

	return q
}

func (r *productRepository) ListActiveByCategory(ctx context.Context, categoryID uuid.UUID) ([]entity.Product, error) {
	products := make([]entity.Product, 0)
	err := conn(ctx, r.db).
		Where("category_id = ? AND is_active = ?", categoryID, true).
		Order("created_at ASC").
		Order("id ASC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products by category: %w", err)
	}
	return products, nil
}

// Update overwrites the editable fields of an active product. Rating is
// never part of the assignment list.
func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	result := conn(ctx, r.db).
		Model(product).
		Where("is_active = ?", true).
		Select("name", "description", "price", "image_url", "stock", "category_id", "updated_at").
		Updates(product)
	if result.Error != nil {
		return fmt.Errorf("failed to update product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *productRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	result := conn(ctx, r.db).
		Model(&entity.Product{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to deactivate product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// UpdateRating writes only the rating column; updated_at is left as is.
func (r *productRepository) UpdateRating(ctx context.Context, id uuid.UUID, rating float64) error {
	result := conn(ctx, r.db).
		Model(&entity.Product{}).
		Where("id = ?", id).
		UpdateColumn("rating", rating)
	if result.Error != nil {
		return fmt.Errorf("failed to update product rating: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}
