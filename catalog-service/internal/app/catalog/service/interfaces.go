package service

import (
	"context"

	"ecommerce/catalog-service/internal/app/catalog/entity"

	"github.com/google/uuid"
)

type CatalogServiceInterface interface {
	ListCategories(ctx context.Context) ([]entity.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	CreateCategory(ctx context.Context, caller entity.Caller, req *entity.CreateCategoryRequest) (*entity.Category, error)
	UpdateCategory(ctx context.Context, caller entity.Caller, id uuid.UUID, req *entity.UpdateCategoryRequest) (*entity.Category, error)
	DeactivateCategory(ctx context.Context, caller entity.Caller, id uuid.UUID) error

	ListProducts(ctx context.Context, filter entity.ProductFilter, page, pageSize int) (*entity.ProductList, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	ListProductsByCategory(ctx context.Context, categoryID uuid.UUID) ([]entity.Product, error)
	CreateProduct(ctx context.Context, caller entity.Caller, req *entity.CreateProductRequest) (*entity.Product, error)
	UpdateProduct(ctx context.Context, caller entity.Caller, id uuid.UUID, req *entity.UpdateProductRequest) (*entity.Product, error)
	DeactivateProduct(ctx context.Context, caller entity.Caller, id uuid.UUID) error
}

type ReviewServiceInterface interface {
	ListReviews(ctx context.Context) ([]entity.Review, error)
	ListReviewsForProduct(ctx context.Context, productID uuid.UUID) ([]entity.Review, error)
	CreateReview(ctx context.Context, caller entity.Caller, req *entity.CreateReviewRequest) (*entity.Review, error)
	DeleteReview(ctx context.Context, caller entity.Caller, id uuid.UUID) error
}

var (
	_ CatalogServiceInterface = (*CatalogService)(nil)
	_ ReviewServiceInterface  = (*ReviewService)(nil)
)
