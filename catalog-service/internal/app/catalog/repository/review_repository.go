package repository

import (
	"context"
	"errors"
	"fmt"

	"ecommerce/catalog-service/internal/app/catalog/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create inserts a review. A violation of ux_reviews_user_product_active
// is reported as ErrDuplicateReview.
func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	if err := conn(ctx, r.db).Create(review).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateReview
		}
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *reviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Review, error) {
	return r.first(conn(ctx, r.db).Where("id = ?", id))
}

func (r *reviewRepository) GetActiveByID(ctx context.Context, id uuid.UUID) (*entity.Review, error) {
	return r.first(conn(ctx, r.db).Where("id = ? AND is_active = ?", id, true))
}

func (r *reviewRepository) first(q *gorm.DB) (*entity.Review, error) {
	var review entity.Review
	if err := q.Take(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return &review, nil
}

func (r *reviewRepository) ListActive(ctx context.Context) ([]entity.Review, error) {
	reviews := make([]entity.Review, 0)
	err := conn(ctx, r.db).
		Where("is_active = ?", true).
		Order("comment_date ASC").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

// ListByProduct returns every review of a product, inactive ones included.
func (r *reviewRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]entity.Review, error) {
	reviews := make([]entity.Review, 0)
	err := conn(ctx, r.db).
		Where("product_id = ?", productID).
		Order("comment_date ASC").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list product reviews: %w", err)
	}
	return reviews, nil
}

func (r *reviewRepository) ExistsActive(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var count int64
	err := conn(ctx, r.db).
		Model(&entity.Review{}).
		Where("user_id = ? AND product_id = ? AND is_active = ?", userID, productID, true).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check existing review: %w", err)
	}
	return count > 0, nil
}

func (r *reviewRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	result := conn(ctx, r.db).
		Model(&entity.Review{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to deactivate review: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}

// AverageActiveGrade is the mean grade of active reviews, 0 when there are none.
func (r *reviewRepository) AverageActiveGrade(ctx context.Context, productID uuid.UUID) (float64, error) {
	var avg float64
	err := conn(ctx, r.db).
		Model(&entity.Review{}).
		Select("COALESCE(AVG(grade), 0)").
		Where("product_id = ? AND is_active = ?", productID, true).
		Scan(&avg).Error
	if err != nil {
		return 0, fmt.Errorf("failed to average review grades: %w", err)
	}
	return avg, nil
}
