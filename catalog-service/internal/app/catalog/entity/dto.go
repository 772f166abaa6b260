package entity

import (
	"time"

	"github.com/google/uuid"
)

type CreateCategoryRequest struct {
	Name     string     `json:"name" validate:"required,min=1,max=100"`
	ParentID *uuid.UUID `json:"parent_id"`
}

type UpdateCategoryRequest struct {
	Name     string     `json:"name" validate:"required,min=1,max=100"`
	ParentID *uuid.UUID `json:"parent_id"`
}

// CreateProductRequest is also the body of a full product update. There is
// deliberately no rating field.
type CreateProductRequest struct {
	Name        string    `json:"name" validate:"required,min=1,max=100"`
	Description *string   `json:"description" validate:"omitempty,max=500"`
	Price       float64   `json:"price" validate:"gte=0"`
	ImageURL    *string   `json:"image_url" validate:"omitempty,max=200"`
	Stock       int       `json:"stock" validate:"gte=0"`
	CategoryID  uuid.UUID `json:"category_id" validate:"required"`
}

type UpdateProductRequest = CreateProductRequest

type CreateReviewRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Grade     int       `json:"grade" validate:"required,min=1,max=5"`
	Comment   *string   `json:"comment" validate:"omitempty,max=1000"`
}

// ProductFilter is the conjunction of optional list filters. Nil means
// "not filtered".
type ProductFilter struct {
	CategoryID *uuid.UUID
	MinPrice   *float64
	MaxPrice   *float64
	InStock    *bool
	SellerID   *uuid.UUID
	CreatedAt  *time.Time
}

// ProductListQuery binds GET /products query parameters. IDs and the
// timestamp arrive as strings and are parsed by the handler.
type ProductListQuery struct {
	Page       int      `form:"page,default=1" validate:"min=1"`
	PageSize   int      `form:"page_size,default=20" validate:"min=1,max=100"`
	CategoryID string   `form:"category_id" validate:"omitempty,uuid"`
	MinPrice   *float64 `form:"min_price" validate:"omitempty,gte=0"`
	MaxPrice   *float64 `form:"max_price" validate:"omitempty,gte=0"`
	InStock    *bool    `form:"in_stock"`
	SellerID   string   `form:"seller_id" validate:"omitempty,uuid"`
	CreatedAt  string   `form:"created_at"` // RFC 3339
}

type ProductList struct {
	Items    []Product `json:"items"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
