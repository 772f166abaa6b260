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

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	// bounds the parent walk in case stored data already has a cycle
	maxCategoryDepth = 64
)

// CatalogService owns categories and products.
type CatalogService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	publisher    util.MessagePublisher
	now          func() time.Time
}

func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	publisher util.MessagePublisher,
) *CatalogService {
	return &CatalogService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		publisher:    publisher,
		now:          time.Now,
	}
}

// timestamp is UTC with microsecond precision to match what PostgreSQL
// stores, so values read back compare equal.
func (s *CatalogService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// === CATEGORIES ===

func (s *CatalogService) ListCategories(ctx context.Context) ([]entity.Category, error) {
	categories, err := s.categoryRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	category, err := s.categoryRepo.GetActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, caller entity.Caller, req *entity.CreateCategoryRequest) (*entity.Category, error) {
	if !caller.HasRole(entity.RoleAdmin) {
		return nil, ErrAdminRequired
	}

	if req.ParentID != nil {
		if _, err := s.activeParent(ctx, *req.ParentID); err != nil {
			return nil, err
		}
	}

	category := &entity.Category{
		ID:       uuid.New(),
		Name:     req.Name,
		ParentID: req.ParentID,
		IsActive: true,
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	logger.Info().
		Str("category_id", category.ID.String()).
		Str("user_id", caller.UserID.String()).
		Msg("Category created")

	return category, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, caller entity.Caller, id uuid.UUID, req *entity.UpdateCategoryRequest) (*entity.Category, error) {
	if !caller.HasRole(entity.RoleAdmin) {
		return nil, ErrAdminRequired
	}

	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		if *req.ParentID == id {
			return nil, ErrCategoryCycle
		}
		parent, err := s.activeParent(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		if err := s.ensureNotAncestor(ctx, id, parent); err != nil {
			return nil, err
		}
	}

	category.Name = req.Name
	category.ParentID = req.ParentID

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	return category, nil
}

// DeactivateCategory is shallow: child categories and products keep their
// own is_active flag.
func (s *CatalogService) DeactivateCategory(ctx context.Context, caller entity.Caller, id uuid.UUID) error {
	if !caller.HasRole(entity.RoleAdmin) {
		return ErrAdminRequired
	}

	if err := s.categoryRepo.Deactivate(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to deactivate category: %w", err)
	}

	metrics.RecordSoftDelete("category")
	logger.Info().
		Str("category_id", id.String()).
		Str("user_id", caller.UserID.String()).
		Msg("Category deactivated")

	return nil
}

func (s *CatalogService) activeParent(ctx context.Context, parentID uuid.UUID) (*entity.Category, error) {
	parent, err := s.categoryRepo.GetActiveByID(ctx, parentID)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrParentCategoryInvalid
		}
		return nil, fmt.Errorf("failed to verify parent category: %w", err)
	}
	return parent, nil
}

// ensureNotAncestor rejects a parent whose ancestor chain contains id.
func (s *CatalogService) ensureNotAncestor(ctx context.Context, id uuid.UUID, parent *entity.Category) error {
	current := parent
	for depth := 0; current.ParentID != nil && depth < maxCategoryDepth; depth++ {
		if *current.ParentID == id {
			return ErrCategoryCycle
		}
		next, err := s.categoryRepo.GetByID(ctx, *current.ParentID)
		if err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return nil
			}
			return fmt.Errorf("failed to walk category ancestors: %w", err)
		}
		current = next
	}
	return nil
}

// === PRODUCTS ===

func (s *CatalogService) ListProducts(ctx context.Context, filter entity.ProductFilter, page, pageSize int) (*entity.ProductList, error) {
	if page < 1 || pageSize < 1 || pageSize > MaxPageSize {
		return nil, ErrInvalidPagination
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return nil, ErrInvalidPriceRange
	}

	items, total, err := s.productRepo.List(ctx, filter, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return &entity.ProductList{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// ListProductsByCategory rejects an unknown or inactive category with a
// validation error rather than returning an empty list.
func (s *CatalogService) ListProductsByCategory(ctx context.Context, categoryID uuid.UUID) ([]entity.Product, error) {
	if err := s.ensureActiveCategory(ctx, categoryID); err != nil {
		return nil, err
	}

	products, err := s.productRepo.ListActiveByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list products by category: %w", err)
	}
	return products, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, caller entity.Caller, req *entity.CreateProductRequest) (*entity.Product, error) {
	if !caller.HasRole(entity.RoleSeller) {
		return nil, ErrSellerRequired
	}

	if err := s.ensureActiveCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	now := s.timestamp()
	product := &entity.Product{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Stock:       req.Stock,
		Rating:      0,
		CategoryID:  req.CategoryID,
		SellerID:    caller.UserID,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	metrics.ProductsCreated.Inc()
	publishEvent(ctx, s.publisher, productEvent(entity.EventProductCreated, product, now))

	return product, nil
}

// UpdateProduct replaces every editable field. Rating is never touched.
func (s *CatalogService) UpdateProduct(ctx context.Context, caller entity.Caller, id uuid.UUID, req *entity.UpdateProductRequest) (*entity.Product, error) {
	if !caller.HasRole(entity.RoleSeller) {
		return nil, ErrSellerRequired
	}

	product, err := s.ownedActiveProduct(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if err := s.ensureActiveCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	product.Name = req.Name
	product.Description = req.Description
	product.Price = req.Price
	product.ImageURL = req.ImageURL
	product.Stock = req.Stock
	product.CategoryID = req.CategoryID
	product.UpdatedAt = s.timestamp()

	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	publishEvent(ctx, s.publisher, productEvent(entity.EventProductUpdated, product, product.UpdatedAt))

	return product, nil
}

func (s *CatalogService) DeactivateProduct(ctx context.Context, caller entity.Caller, id uuid.UUID) error {
	if !caller.HasRole(entity.RoleSeller) {
		return ErrSellerRequired
	}

	product, err := s.ownedActiveProduct(ctx, caller, id)
	if err != nil {
		return err
	}

	if err := s.productRepo.Deactivate(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to deactivate product: %w", err)
	}

	metrics.RecordSoftDelete("product")
	publishEvent(ctx, s.publisher, productEvent(entity.EventProductDeactivated, product, s.timestamp()))

	return nil
}

func (s *CatalogService) ownedActiveProduct(ctx context.Context, caller entity.Caller, id uuid.UUID) (*entity.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.SellerID != caller.UserID {
		return nil, ErrNotProductOwner
	}
	return product, nil
}

func (s *CatalogService) ensureActiveCategory(ctx context.Context, categoryID uuid.UUID) error {
	if _, err := s.categoryRepo.GetActiveByID(ctx, categoryID); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return ErrProductCategoryInvalid
		}
		return fmt.Errorf("failed to verify category: %w", err)
	}
	return nil
}
