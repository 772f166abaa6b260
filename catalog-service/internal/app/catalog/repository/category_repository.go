package repository

import (
	"context"
	"errors"
	"fmt"

	"ecommerce/catalog-service/internal/app/catalog/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	if err := conn(ctx, r.db).Create(category).Error; err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// GetByID loads a category whether or not it is active.
func (r *categoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	return r.first(conn(ctx, r.db).Where("id = ?", id))
}

func (r *categoryRepository) GetActiveByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	return r.first(conn(ctx, r.db).Where("id = ? AND is_active = ?", id, true))
}

func (r *categoryRepository) first(q *gorm.DB) (*entity.Category, error) {
	var category entity.Category
	if err := q.Take(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &category, nil
}

// ListActive returns active categories ordered by name.
func (r *categoryRepository) ListActive(ctx context.Context) ([]entity.Category, error) {
	categories := make([]entity.Category, 0)
	err := conn(ctx, r.db).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// Update overwrites name and parent of an active category.
func (r *categoryRepository) Update(ctx context.Context, category *entity.Category) error {
	result := conn(ctx, r.db).
		Model(category).
		Where("is_active = ?", true).
		Select("name", "parent_id").
		Updates(category)
	if result.Error != nil {
		return fmt.Errorf("failed to update category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// Deactivate flips is_active. Children and products are left untouched.
func (r *categoryRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	result := conn(ctx, r.db).
		Model(&entity.Category{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to deactivate category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
