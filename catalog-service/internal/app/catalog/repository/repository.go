package repository

import (
	"context"
	"errors"

	"ecommerce/catalog-service/internal/app/catalog/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrReviewNotFound   = errors.New("review not found")
	ErrDuplicateReview  = errors.New("active review already exists for this user and product")
)

// CategoryRepository reads and writes categories. GetByID ignores
// is_active; every other read only sees active rows.
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	GetActiveByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	ListActive(ctx context.Context) ([]entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	GetActiveByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	// LockByID loads the row with SELECT ... FOR UPDATE. It must run inside
	// a transaction to hold the lock.
	LockByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	List(ctx context.Context, filter entity.ProductFilter, offset, limit int) ([]entity.Product, int64, error)
	ListActiveByCategory(ctx context.Context, categoryID uuid.UUID) ([]entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	UpdateRating(ctx context.Context, id uuid.UUID, rating float64) error
}

type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Review, error)
	GetActiveByID(ctx context.Context, id uuid.UUID) (*entity.Review, error)
	ListActive(ctx context.Context) ([]entity.Review, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]entity.Review, error)
	ExistsActive(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	AverageActiveGrade(ctx context.Context, productID uuid.UUID) (float64, error)
}

// Transactor runs fn in a database transaction. Repositories called with
// the ctx passed to fn take part in that transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type txKey struct{}

// conn returns the transaction bound to ctx, or the base handle.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" // unique_violation
}
