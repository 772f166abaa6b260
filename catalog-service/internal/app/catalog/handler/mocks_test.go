package handler

import (
	"context"

	"ecommerce/catalog-service/internal/app/catalog/entity"
	"ecommerce/catalog-service/internal/app/catalog/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockCatalogService struct {
	mock.Mock
}

var _ service.CatalogServiceInterface = (*mockCatalogService)(nil)

func (m *mockCatalogService) ListCategories(ctx context.Context) ([]entity.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Category), args.Error(1)
}

func (m *mockCatalogService) GetCategory(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Category), args.Error(1)
}

func (m *mockCatalogService) CreateCategory(ctx context.Context, caller entity.Caller, req *entity.CreateCategoryRequest) (*entity.Category, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Category), args.Error(1)
}

func (m *mockCatalogService) UpdateCategory(ctx context.Context, caller entity.Caller, id uuid.UUID, req *entity.UpdateCategoryRequest) (*entity.Category, error) {
	args := m.Called(ctx, caller, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Category), args.Error(1)
}

func (m *mockCatalogService) DeactivateCategory(ctx context.Context, caller entity.Caller, id uuid.UUID) error {
	args := m.Called(ctx, caller, id)
	return args.Error(0)
}

func (m *mockCatalogService) ListProducts(ctx context.Context, filter entity.ProductFilter, page, pageSize int) (*entity.ProductList, error) {
	args := m.Called(ctx, filter, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ProductList), args.Error(1)
}

func (m *mockCatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *mockCatalogService) ListProductsByCategory(ctx context.Context, categoryID uuid.UUID) ([]entity.Product, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Product), args.Error(1)
}

func (m *mockCatalogService) CreateProduct(ctx context.Context, caller entity.Caller, req *entity.CreateProductRequest) (*entity.Product, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *mockCatalogService) UpdateProduct(ctx context.Context, caller entity.Caller, id uuid.UUID, req *entity.UpdateProductRequest) (*entity.Product, error) {
	args := m.Called(ctx, caller, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *mockCatalogService) DeactivateProduct(ctx context.Context, caller entity.Caller, id uuid.UUID) error {
	args := m.Called(ctx, caller, id)
	return args.Error(0)
}

type mockReviewService struct {
	mock.Mock
}

var _ service.ReviewServiceInterface = (*mockReviewService)(nil)

func (m *mockReviewService) ListReviews(ctx context.Context) ([]entity.Review, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Review), args.Error(1)
}

func (m *mockReviewService) ListReviewsForProduct(ctx context.Context, productID uuid.UUID) ([]entity.Review, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Review), args.Error(1)
}

func (m *mockReviewService) CreateReview(ctx context.Context, caller entity.Caller, req *entity.CreateReviewRequest) (*entity.Review, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Review), args.Error(1)
}

func (m *mockReviewService) DeleteReview(ctx context.Context, caller entity.Caller, id uuid.UUID) error {
	args := m.Called(ctx, caller, id)
	return args.Error(0)
}
