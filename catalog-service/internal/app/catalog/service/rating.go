package service

import (
	"context"
	"fmt"

	"ecommerce/catalog-service/internal/app/catalog/repository"

	"github.com/google/uuid"
)

// RatingAggregator keeps products.rating equal to the mean grade of the
// product's active reviews. It is the only writer of that column.
type RatingAggregator struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
}

func NewRatingAggregator(reviewRepo repository.ReviewRepository, productRepo repository.ProductRepository) *RatingAggregator {
	return &RatingAggregator{reviewRepo: reviewRepo, productRepo: productRepo}
}

// Recompute must be called with the ctx of the transaction that mutated
// the reviews so the average sees the new state.
func (a *RatingAggregator) Recompute(ctx context.Context, productID uuid.UUID) (float64, error) {
	avg, err := a.reviewRepo.AverageActiveGrade(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("failed to compute rating: %w", err)
	}

	if err := a.productRepo.UpdateRating(ctx, productID, avg); err != nil {
		return 0, fmt.Errorf("failed to store rating: %w", err)
	}

	return avg, nil
}
