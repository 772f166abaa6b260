package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"ecommerce/catalog-service/internal/app/catalog/entity"
	"ecommerce/catalog-service/internal/app/catalog/repository"
	"ecommerce/catalog-service/internal/app/catalog/repository/mocks"
	"ecommerce/catalog-service/internal/app/catalog/util"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// CatalogScenarioSuite runs both services against sqlite and miniredis
type CatalogScenarioSuite struct {
	suite.Suite
	ctx      context.Context
	redis    *miniredis.Miniredis
	products repository.ProductRepository
	reviews  repository.ReviewRepository
	catalog  *CatalogService
	review   *ReviewService
}

func TestCatalogScenarioSuite(t *testing.T) {
	suite.Run(t, new(CatalogScenarioSuite))
}

func (s *CatalogScenarioSuite) SetupTest() {
	s.ctx = context.Background()

	db, err := gorm.Open(sqlite.Open(filepath.Join(s.T().TempDir(), "scenario.db")), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	s.Require().NoError(err)
	s.Require().NoError(repository.Migrate(db))

	s.redis = miniredis.RunT(s.T())
	client := redis.NewClient(&redis.Options{Addr: s.redis.Addr()})
	s.T().Cleanup(func() { _ = client.Close() })

	publisher := &mocks.MockMessagePublisher{}
	publisher.On("PublishMessage", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	categories := repository.NewCategoryRepository(db)
	s.products = repository.NewProductRepository(db)
	s.reviews = repository.NewReviewRepository(db)

	s.catalog = NewCatalogService(categories, s.products, publisher)
	s.review = NewReviewService(
		s.reviews,
		s.products,
		repository.NewTransactor(db),
		util.NewRedisLocker(client, "catalog-test"),
		publisher,
		time.Second,
	)
}

func (s *CatalogScenarioSuite) newProduct(owner entity.Caller) *entity.Product {
	category, err := s.catalog.CreateCategory(s.ctx, admin, &entity.CreateCategoryRequest{Name: "Books"})
	s.Require().NoError(err)

	product, err := s.catalog.CreateProduct(s.ctx, owner, &entity.CreateProductRequest{
		Name:       "The Go Programming Language",
		Price:      40,
		Stock:      10,
		CategoryID: category.ID,
	})
	s.Require().NoError(err)
	return product
}

func (s *CatalogScenarioSuite) rating(productID uuid.UUID) float64 {
	p, err := s.products.GetByID(s.ctx, productID)
	s.Require().NoError(err)
	return p.Rating
}

func newBuyer() entity.Caller {
	return entity.Caller{UserID: uuid.New(), Role: entity.RoleBuyer}
}

func (s *CatalogScenarioSuite) TestBooksRatingScenario() {
	product := s.newProduct(seller)
	s.Equal(0.0, s.rating(product.ID))

	alice, bob, carol := newBuyer(), newBuyer(), newBuyer()

	aliceReview, err := s.review.CreateReview(s.ctx, alice, &entity.CreateReviewRequest{ProductID: product.ID, Grade: 5})
	s.Require().NoError(err)
	_, err = s.review.CreateReview(s.ctx, bob, &entity.CreateReviewRequest{ProductID: product.ID, Grade: 3})
	s.Require().NoError(err)
	s.InDelta(4.0, s.rating(product.ID), 1e-9)

	_, err = s.review.CreateReview(s.ctx, carol, &entity.CreateReviewRequest{ProductID: product.ID, Grade: 1})
	s.Require().NoError(err)
	s.InDelta(3.0, s.rating(product.ID), 1e-9)

	s.Require().NoError(s.review.DeleteReview(s.ctx, admin, aliceReview.ID))
	s.InDelta(2.0, s.rating(product.ID), 1e-9)

	// soft-deleted review is still loadable but gone from active listings
	stored, err := s.reviews.GetByID(s.ctx, aliceReview.ID)
	s.Require().NoError(err)
	s.False(stored.IsActive)

	active, err := s.review.ListReviews(s.ctx)
	s.Require().NoError(err)
	s.Len(active, 2)

	all, err := s.review.ListReviewsForProduct(s.ctx, product.ID)
	s.Require().NoError(err)
	s.Len(all, 3)

	s.ErrorIs(s.review.DeleteReview(s.ctx, admin, aliceReview.ID), ErrReviewNotFound)
}

func (s *CatalogScenarioSuite) TestOneActiveReviewPerUserAndProduct() {
	product := s.newProduct(seller)
	other := s.newProduct(seller)
	alice := newBuyer()

	first, err := s.review.CreateReview(s.ctx, alice, &entity.CreateReviewRequest{ProductID: product.ID, Grade: 4})
	s.Require().NoError(err)

	_, err = s.review.CreateReview(s.ctx, alice, &entity.CreateReviewRequest{ProductID: product.ID, Grade: 2})
	s.ErrorIs(err, ErrReviewExists)
	s.InDelta(4.0, s.rating(product.ID), 1e-9)

	// a different product is independent
	_, err = s.review.CreateReview(s.ctx, alice, &entity.CreateReviewRequest{ProductID: other.ID, Grade: 2})
	s.Require().NoError(err)

	s.Require().NoError(s.review.DeleteReview(s.ctx, admin, first.ID))
	s.Equal(0.0, s.rating(product.ID))

	_, err = s.review.CreateReview(s.ctx, alice, &entity.CreateReviewRequest{ProductID: product.ID, Grade: 1})
	s.Require().NoError(err)
	s.InDelta(1.0, s.rating(product.ID), 1e-9)
}

func (s *CatalogScenarioSuite) TestHeldLockIsConflict() {
	product := s.newProduct(seller)
	alice := newBuyer()

	s.Require().NoError(s.redis.Set(reviewLockKey(alice.UserID, product.ID), "other-request"))

	_, err := s.review.CreateReview(s.ctx, alice, &entity.CreateReviewRequest{ProductID: product.ID, Grade: 5})
	s.ErrorIs(err, ErrReviewInProgress)

	s.redis.Del(reviewLockKey(alice.UserID, product.ID))

	_, err = s.review.CreateReview(s.ctx, alice, &entity.CreateReviewRequest{ProductID: product.ID, Grade: 5})
	s.Require().NoError(err)

	// the lock is released after the request
	s.False(s.redis.Exists(reviewLockKey(alice.UserID, product.ID)))
}

func (s *CatalogScenarioSuite) TestSoftDeletedProduct() {
	product := s.newProduct(seller)
	alice := newBuyer()

	review, err := s.review.CreateReview(s.ctx, alice, &entity.CreateReviewRequest{ProductID: product.ID, Grade: 5})
	s.Require().NoError(err)

	s.Require().NoError(s.catalog.DeactivateProduct(s.ctx, seller, product.ID))

	_, err = s.catalog.GetProduct(s.ctx, product.ID)
	s.ErrorIs(err, ErrProductNotFound)

	stored, err := s.products.GetByID(s.ctx, product.ID)
	s.Require().NoError(err)
	s.False(stored.IsActive)

	list, err := s.catalog.ListProducts(s.ctx, entity.ProductFilter{}, 1, DefaultPageSize)
	s.Require().NoError(err)
	s.Equal(int64(0), list.Total)

	_, err = s.review.CreateReview(s.ctx, newBuyer(), &entity.CreateReviewRequest{ProductID: product.ID, Grade: 1})
	s.ErrorIs(err, ErrReviewProductInvalid)

	// reviews of an inactive product can still be removed and the rating follows
	s.Require().NoError(s.review.DeleteReview(s.ctx, admin, review.ID))
	s.Equal(0.0, s.rating(product.ID))
}

func (s *CatalogScenarioSuite) TestProductUnderInactiveCategory() {
	category, err := s.catalog.CreateCategory(s.ctx, admin, &entity.CreateCategoryRequest{Name: "Old"})
	s.Require().NoError(err)
	s.Require().NoError(s.catalog.DeactivateCategory(s.ctx, admin, category.ID))

	_, err = s.catalog.CreateProduct(s.ctx, seller, &entity.CreateProductRequest{Name: "x", CategoryID: category.ID})
	s.ErrorIs(err, ErrValidation)

	_, err = s.catalog.CreateProduct(s.ctx, seller, &entity.CreateProductRequest{Name: "x", CategoryID: uuid.New()})
	s.ErrorIs(err, ErrValidation)

	_, err = s.catalog.ListProductsByCategory(s.ctx, category.ID)
	s.ErrorIs(err, ErrValidation)

	_, err = s.catalog.CreateCategory(s.ctx, admin, &entity.CreateCategoryRequest{Name: "Child", ParentID: &category.ID})
	s.ErrorIs(err, ErrParentCategoryInvalid)
}

func (s *CatalogScenarioSuite) TestUpdateProductKeepsRating() {
	product := s.newProduct(seller)

	_, err := s.review.CreateReview(s.ctx, newBuyer(), &entity.CreateReviewRequest{ProductID: product.ID, Grade: 4})
	s.Require().NoError(err)

	other := entity.Caller{UserID: uuid.New(), Role: entity.RoleSeller}
	_, err = s.catalog.UpdateProduct(s.ctx, other, product.ID, &entity.UpdateProductRequest{Name: "stolen", CategoryID: product.CategoryID})
	s.ErrorIs(err, ErrForbidden)

	updated, err := s.catalog.UpdateProduct(s.ctx, seller, product.ID, &entity.UpdateProductRequest{
		Name:       "2nd edition",
		Price:      45,
		Stock:      2,
		CategoryID: product.CategoryID,
	})
	s.Require().NoError(err)
	s.Equal("2nd edition", updated.Name)

	stored, err := s.products.GetByID(s.ctx, product.ID)
	s.Require().NoError(err)
	s.Equal("2nd edition", stored.Name)
	s.InDelta(4.0, stored.Rating, 1e-9)
}

func TestReviewLockKey(t *testing.T) {
	user, product := uuid.New(), uuid.New()
	assert.Equal(t, "review-lock:"+user.String()+":"+product.String(), reviewLockKey(user, product))
	require.NotEqual(t, reviewLockKey(user, product), reviewLockKey(product, user))
}
