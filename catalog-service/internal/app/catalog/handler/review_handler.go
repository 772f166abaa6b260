package handler

import (
	"net/http"

	"ecommerce/catalog-service/internal/app/catalog/entity"
	"ecommerce/catalog-service/internal/app/catalog/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type ReviewHandler struct {
	reviewService service.ReviewServiceInterface
	validator     *validator.Validate
}

func NewReviewHandler(reviewService service.ReviewServiceInterface) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		validator:     validator.New(),
	}
}

// ListReviews handles GET /reviews
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	reviews, err := h.reviewService.ListReviews(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

// ListReviewsForProduct handles GET /reviews/products/:product_id.
// Inactive reviews are included.
func (h *ReviewHandler) ListReviewsForProduct(c *gin.Context) {
	productID, ok := parseUUIDParam(c, "product_id")
	if !ok {
		return
	}

	reviews, err := h.reviewService.ListReviewsForProduct(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

// CreateReview handles POST /reviews (buyer)
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	var req entity.CreateReviewRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	review, err := h.reviewService.CreateReview(c.Request.Context(), caller, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

// DeleteReview handles DELETE /reviews/:id (admin)
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.reviewService.DeleteReview(c.Request.Context(), caller, id); err != nil {
		respondError(c, err)
		return
	}
	respondDeactivated(c, "Review marked as inactive")
}
