package handler

import (
	"errors"
	"net/http"
	"time"

	"ecommerce/catalog-service/internal/app/catalog/entity"
	"ecommerce/catalog-service/internal/app/catalog/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// CatalogHandler serves /categories and /products.
type CatalogHandler struct {
	catalogService service.CatalogServiceInterface
	validator      *validator.Validate
}

func NewCatalogHandler(catalogService service.CatalogServiceInterface) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		validator:      validator.New(),
	}
}

// === CATEGORIES ===

// ListCategories handles GET /categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalogService.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// GetCategory handles GET /categories/:id
func (h *CatalogHandler) GetCategory(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	category, err := h.catalogService.GetCategory(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// CreateCategory handles POST /categories (admin)
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	var req entity.CreateCategoryRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	category, err := h.catalogService.CreateCategory(c.Request.Context(), caller, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// UpdateCategory handles PUT /categories/:id (admin)
func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req entity.UpdateCategoryRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	category, err := h.catalogService.UpdateCategory(c.Request.Context(), caller, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// DeactivateCategory handles DELETE /categories/:id (admin)
func (h *CatalogHandler) DeactivateCategory(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.catalogService.DeactivateCategory(c.Request.Context(), caller, id); err != nil {
		respondError(c, err)
		return
	}
	respondDeactivated(c, "Category marked as inactive")
}

// === PRODUCTS ===

// ListProducts handles GET /products with optional filters and pagination
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var query entity.ProductListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondValidation(c, "Invalid query parameters")
		return
	}
	if err := h.validator.Struct(query); err != nil {
		respondValidation(c, formatValidationError(err))
		return
	}

	filter, err := toFilter(query)
	if err != nil {
		respondValidation(c, err.Error())
		return
	}

	list, err := h.catalogService.ListProducts(c.Request.Context(), filter, query.Page, query.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetProduct handles GET /products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// ListProductsByCategory handles GET /products/category/:category_id
func (h *CatalogHandler) ListProductsByCategory(c *gin.Context) {
	categoryID, ok := parseUUIDParam(c, "category_id")
	if !ok {
		return
	}

	products, err := h.catalogService.ListProductsByCategory(c.Request.Context(), categoryID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// CreateProduct handles POST /products (seller)
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	var req entity.CreateProductRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), caller, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// UpdateProduct handles PUT /products/:id (owning seller)
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req entity.UpdateProductRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	product, err := h.catalogService.UpdateProduct(c.Request.Context(), caller, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// DeactivateProduct handles DELETE /products/:id (owning seller)
func (h *CatalogHandler) DeactivateProduct(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.catalogService.DeactivateProduct(c.Request.Context(), caller, id); err != nil {
		respondError(c, err)
		return
	}
	respondDeactivated(c, "Product marked as inactive")
}

var (
	errInvalidCategoryID = errors.New("Invalid category_id")
	errInvalidSellerID   = errors.New("Invalid seller_id")
	errInvalidCreatedAt  = errors.New("created_at must be an RFC 3339 timestamp")
)

func toFilter(q entity.ProductListQuery) (entity.ProductFilter, error) {
	filter := entity.ProductFilter{
		MinPrice: q.MinPrice,
		MaxPrice: q.MaxPrice,
		InStock:  q.InStock,
	}

	if q.CategoryID != "" {
		id, err := uuid.Parse(q.CategoryID)
		if err != nil {
			return filter, errInvalidCategoryID
		}
		filter.CategoryID = &id
	}
	if q.SellerID != "" {
		id, err := uuid.Parse(q.SellerID)
		if err != nil {
			return filter, errInvalidSellerID
		}
		filter.SellerID = &id
	}
	if q.CreatedAt != "" {
		ts, err := time.Parse(time.RFC3339Nano, q.CreatedAt)
		if err != nil {
			return filter, errInvalidCreatedAt
		}
		ts = ts.UTC()
		filter.CreatedAt = &ts
	}

	return filter, nil
}
