package entity

import (
	"time"

	"github.com/google/uuid"
)

// Category is a node of the catalog tree. ParentID is nil for roots.
type Category struct {
	ID       uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Name     string     `json:"name" gorm:"size:100;not null"`
	ParentID *uuid.UUID `json:"parent_id" gorm:"type:uuid;index"`
	IsActive bool       `json:"is_active" gorm:"not null;index"`
}

// Product is a sellable item. Rating is derived from active reviews and is
// only ever written by the rating aggregator.
type Product struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string    `json:"name" gorm:"size:100;not null"`
	Description *string   `json:"description" gorm:"size:500"`
	Price       float64   `json:"price" gorm:"not null"`
	ImageURL    *string   `json:"image_url" gorm:"size:200"`
	Stock       int       `json:"stock" gorm:"not null"`
	Rating      float64   `json:"rating" gorm:"not null"`
	CategoryID  uuid.UUID `json:"category_id" gorm:"type:uuid;not null;index"`
	SellerID    uuid.UUID `json:"seller_id" gorm:"type:uuid;not null;index"`
	IsActive    bool      `json:"is_active" gorm:"not null;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null;index"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"not null"`
}

// Review is one buyer's grade of a product. At most one active review
// exists per (user, product).
type Review struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID `json:"user_id" gorm:"type:uuid;not null"`
	ProductID   uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	Comment     *string   `json:"comment"`
	CommentDate time.Time `json:"comment_date" gorm:"not null"`
	Grade       int       `json:"grade" gorm:"not null"`
	IsActive    bool      `json:"is_active" gorm:"not null;index"`
}

const (
	RoleAdmin  = "admin"
	RoleSeller = "seller"
	RoleBuyer  = "buyer"
)

// Caller is the authenticated identity behind a mutation.
type Caller struct {
	UserID uuid.UUID
	Role   string
}

func (c Caller) HasRole(role string) bool {
	return c.Role == role
}

type EventType string

const (
	EventProductCreated       EventType = "PRODUCT_CREATED"
	EventProductUpdated       EventType = "PRODUCT_UPDATED"
	EventProductDeactivated   EventType = "PRODUCT_DEACTIVATED"
	EventProductRatingUpdated EventType = "PRODUCT_RATING_UPDATED"
	EventReviewCreated        EventType = "REVIEW_CREATED"
	EventReviewDeactivated    EventType = "REVIEW_DEACTIVATED"
)

// CatalogEvent is published to Kafka after a committed change.
// The message key is ProductID.
type CatalogEvent struct {
	EventType  EventType  `json:"event_type"`
	ProductID  uuid.UUID  `json:"product_id"`
	ReviewID   *uuid.UUID `json:"review_id,omitempty"`
	SellerID   *uuid.UUID `json:"seller_id,omitempty"`
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
	Price      *float64   `json:"price,omitempty"`
	Rating     *float64   `json:"rating,omitempty"`
	Grade      *int       `json:"grade,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}
