package service

import "errors"

// Error kinds. Every business error below unwraps to exactly one of them,
// which is what handlers map to an HTTP status.
var (
	ErrValidation = errors.New("validation_error")
	ErrNotFound   = errors.New("not_found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
)

type domainError struct {
	kind error
	msg  string
}

func (e *domainError) Error() string { return e.msg }
func (e *domainError) Unwrap() error { return e.kind }

func newError(kind error, msg string) error {
	return &domainError{kind: kind, msg: msg}
}

var (
	ErrAdminRequired  = newError(ErrForbidden, "Only admins can perform this action")
	ErrSellerRequired = newError(ErrForbidden, "Only sellers can perform this action")
	ErrBuyerRequired  = newError(ErrForbidden, "Only buyers can perform this action")

	ErrCategoryNotFound      = newError(ErrNotFound, "Category not found")
	ErrParentCategoryInvalid = newError(ErrValidation, "Parent category not found or inactive")
	ErrCategoryCycle         = newError(ErrValidation, "Category cannot be its own ancestor")

	ErrProductNotFound        = newError(ErrNotFound, "Product not found")
	ErrProductCategoryInvalid = newError(ErrValidation, "Category not found or inactive")
	ErrNotProductOwner        = newError(ErrForbidden, "You can only modify your own products")
	ErrInvalidPriceRange      = newError(ErrValidation, "min_price cannot be greater than max_price")
	ErrInvalidPagination      = newError(ErrValidation, "page must be >= 1 and page_size between 1 and 100")

	ErrReviewProductInvalid = newError(ErrValidation, "Product not found or inactive")
	ErrReviewNotFound       = newError(ErrNotFound, "Review not found")
	ErrReviewExists         = newError(ErrConflict, "User's review already exists")
	ErrReviewInProgress     = newError(ErrConflict, "A review for this product is already being submitted")
)
