package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ecommerce/catalog-service/internal/app/catalog/entity"
	"ecommerce/catalog-service/internal/app/catalog/repository"
	"ecommerce/catalog-service/internal/app/catalog/util"
	"ecommerce/pkg/logger"
	"ecommerce/pkg/metrics"

	"github.com/google/uuid"
)

const DefaultReviewLockTTL = 10 * time.Second

// ReviewService manages reviews and keeps product ratings in step with them.
type ReviewService struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
	tx          repository.Transactor
	rating      *RatingAggregator
	locker      util.Locker
	publisher   util.MessagePublisher
	lockTTL     time.Duration
	now         func() time.Time
}

// NewReviewService wires the service. locker may be nil, in which case
// creation relies on the row lock and the unique index alone.
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	productRepo repository.ProductRepository,
	tx repository.Transactor,
	locker util.Locker,
	publisher util.MessagePublisher,
	lockTTL time.Duration,
) *ReviewService {
	if lockTTL <= 0 {
		lockTTL = DefaultReviewLockTTL
	}
	return &ReviewService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		tx:          tx,
		rating:      NewRatingAggregator(reviewRepo, productRepo),
		locker:      locker,
		publisher:   publisher,
		lockTTL:     lockTTL,
		now:         time.Now,
	}
}

func (s *ReviewService) ListReviews(ctx context.Context) ([]entity.Review, error) {
	reviews, err := s.reviewRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get reviews: %w", err)
	}
	return reviews, nil
}

// ListReviewsForProduct returns all reviews of the product, including
// deactivated ones.
func (s *ReviewService) ListReviewsForProduct(ctx context.Context, productID uuid.UUID) ([]entity.Review, error) {
	reviews, err := s.reviewRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product reviews: %w", err)
	}
	return reviews, nil
}

// CreateReview inserts the caller's review and recomputes the product
// rating in the same transaction.
func (s *ReviewService) CreateReview(ctx context.Context, caller entity.Caller, req *entity.CreateReviewRequest) (*entity.Review, error) {
	if !caller.HasRole(entity.RoleBuyer) {
		return nil, ErrBuyerRequired
	}

	release, err := s.lock(ctx, reviewLockKey(caller.UserID, req.ProductID))
	if err != nil {
		return nil, err
	}
	defer release()

	now := s.now().UTC().Truncate(time.Microsecond)
	review := &entity.Review{
		ID:          uuid.New(),
		UserID:      caller.UserID,
		ProductID:   req.ProductID,
		Comment:     req.Comment,
		CommentDate: now,
		Grade:       req.Grade,
		IsActive:    true,
	}

	var rating float64
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		product, err := s.productRepo.LockByID(ctx, req.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return ErrReviewProductInvalid
			}
			return fmt.Errorf("failed to lock product: %w", err)
		}
		if !product.IsActive {
			return ErrReviewProductInvalid
		}

		exists, err := s.reviewRepo.ExistsActive(ctx, caller.UserID, req.ProductID)
		if err != nil {
			return err
		}
		if exists {
			return ErrReviewExists
		}

		if err := s.reviewRepo.Create(ctx, review); err != nil {
			if errors.Is(err, repository.ErrDuplicateReview) {
				return ErrReviewExists
			}
			return err
		}

		rating, err = s.rating.Recompute(ctx, req.ProductID)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordReviewCreated(review.Grade)
	metrics.RecordRatingRecompute("review_created")

	grade := review.Grade
	publishEvent(ctx, s.publisher, entity.CatalogEvent{
		EventType: entity.EventReviewCreated,
		ProductID: review.ProductID,
		ReviewID:  &review.ID,
		Grade:     &grade,
		Timestamp: now,
	})
	publishEvent(ctx, s.publisher, ratingEvent(review.ProductID, rating, now))

	return review, nil
}

// DeleteReview deactivates a review and recomputes the product rating in
// the same transaction.
func (s *ReviewService) DeleteReview(ctx context.Context, caller entity.Caller, id uuid.UUID) error {
	if !caller.HasRole(entity.RoleAdmin) {
		return ErrAdminRequired
	}

	var (
		productID uuid.UUID
		rating    float64
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		review, err := s.reviewRepo.GetActiveByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrReviewNotFound) {
				return ErrReviewNotFound
			}
			return err
		}
		productID = review.ProductID

		// the product may already be inactive; its rating is still kept current
		if _, err := s.productRepo.LockByID(ctx, productID); err != nil {
			return fmt.Errorf("failed to lock product: %w", err)
		}

		if err := s.reviewRepo.Deactivate(ctx, id); err != nil {
			if errors.Is(err, repository.ErrReviewNotFound) {
				return ErrReviewNotFound
			}
			return err
		}

		rating, err = s.rating.Recompute(ctx, productID)
		return err
	})
	if err != nil {
		return err
	}

	metrics.RecordSoftDelete("review")
	metrics.RecordRatingRecompute("review_deactivated")

	now := s.now().UTC()
	publishEvent(ctx, s.publisher, entity.CatalogEvent{
		EventType: entity.EventReviewDeactivated,
		ProductID: productID,
		ReviewID:  &id,
		Timestamp: now,
	})
	publishEvent(ctx, s.publisher, ratingEvent(productID, rating, now))

	logger.Info().
		Str("review_id", id.String()).
		Str("user_id", caller.UserID.String()).
		Msg("Review deactivated")

	return nil
}

// lock takes the per (user, product) review lock. A held lock is a
// conflict; an unreachable lock backend is logged and ignored.
func (s *ReviewService) lock(ctx context.Context, key string) (func(), error) {
	noop := func() {}
	if s.locker == nil {
		return noop, nil
	}

	token, ok, err := s.locker.Acquire(ctx, key, s.lockTTL)
	if err != nil {
		logger.Warn().Err(err).Str("lock_key", key).Msg("Review lock unavailable, continuing without it")
		return noop, nil
	}
	if !ok {
		return nil, ErrReviewInProgress
	}

	return func() {
		if err := s.locker.Release(context.WithoutCancel(ctx), key, token); err != nil {
			logger.Warn().Err(err).Str("lock_key", key).Msg("Failed to release review lock")
		}
	}, nil
}

func reviewLockKey(userID, productID uuid.UUID) string {
	return "review-lock:" + userID.String() + ":" + productID.String()
}
