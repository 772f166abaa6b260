package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"ecommerce/catalog-service/internal/app/catalog/entity"
	"ecommerce/catalog-service/internal/app/catalog/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupReviewHandler() (*ReviewHandler, *mockReviewService) {
	svc := new(mockReviewService)
	return NewReviewHandler(svc), svc
}

func newTestReview(productID uuid.UUID, grade int) *entity.Review {
	return &entity.Review{
		ID:          uuid.New(),
		UserID:      testBuyer.UserID,
		ProductID:   productID,
		CommentDate: time.Now().UTC(),
		Grade:       grade,
		IsActive:    true,
	}
}

func TestReviewHandler_CreateReview(t *testing.T) {
	productID := uuid.New()

	tests := []struct {
		name       string
		body       interface{}
		setupMock  func(svc *mockReviewService)
		wantStatus int
		wantError  string
	}{
		{
			name: "created",
			body: entity.CreateReviewRequest{ProductID: productID, Grade: 5},
			setupMock: func(svc *mockReviewService) {
				svc.On("CreateReview", mock.Anything, testBuyer, &entity.CreateReviewRequest{ProductID: productID, Grade: 5}).
					Return(newTestReview(productID, 5), nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "grade too high",
			body:       entity.CreateReviewRequest{ProductID: productID, Grade: 6},
			setupMock:  func(svc *mockReviewService) {},
			wantStatus: http.StatusBadRequest,
			wantError:  "validation_error",
		},
		{
			name:       "grade missing",
			body:       map[string]interface{}{"product_id": productID.String()},
			setupMock:  func(svc *mockReviewService) {},
			wantStatus: http.StatusBadRequest,
			wantError:  "validation_error",
		},
		{
			name: "product inactive",
			body: entity.CreateReviewRequest{ProductID: productID, Grade: 3},
			setupMock: func(svc *mockReviewService) {
				svc.On("CreateReview", mock.Anything, testBuyer, mock.Anything).Return(nil, service.ErrReviewProductInvalid)
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "validation_error",
		},
		{
			name: "already reviewed",
			body: entity.CreateReviewRequest{ProductID: productID, Grade: 3},
			setupMock: func(svc *mockReviewService) {
				svc.On("CreateReview", mock.Anything, testBuyer, mock.Anything).Return(nil, service.ErrReviewExists)
			},
			wantStatus: http.StatusConflict,
			wantError:  "conflict",
		},
		{
			name: "concurrent submission",
			body: entity.CreateReviewRequest{ProductID: productID, Grade: 3},
			setupMock: func(svc *mockReviewService) {
				svc.On("CreateReview", mock.Anything, testBuyer, mock.Anything).Return(nil, service.ErrReviewInProgress)
			},
			wantStatus: http.StatusConflict,
			wantError:  "conflict",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, svc := setupReviewHandler()
			tt.setupMock(svc)

			c, w := newTestContext(http.MethodPost, "/reviews", mustJSON(t, tt.body), &testBuyer)
			handler.CreateReview(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, decodeError(t, w).Error)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestReviewHandler_DeleteReview(t *testing.T) {
	handler, svc := setupReviewHandler()

	id := uuid.New()
	svc.On("DeleteReview", mock.Anything, testAdmin, id).Return(nil)

	c, w := newTestContext(http.MethodDelete, "/reviews/"+id.String(), nil, &testAdmin)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	handler.DeleteReview(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response entity.StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "success", response.Status)
	assert.Equal(t, "Review marked as inactive", response.Message)
}

func TestReviewHandler_DeleteReview_NotFound(t *testing.T) {
	handler, svc := setupReviewHandler()

	id := uuid.New()
	svc.On("DeleteReview", mock.Anything, testAdmin, id).Return(service.ErrReviewNotFound)

	c, w := newTestContext(http.MethodDelete, "/reviews/"+id.String(), nil, &testAdmin)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	handler.DeleteReview(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Review not found", decodeError(t, w).Message)
}

func TestReviewHandler_ListReviewsForProduct(t *testing.T) {
	handler, svc := setupReviewHandler()

	productID := uuid.New()
	inactive := newTestReview(productID, 1)
	inactive.IsActive = false
	svc.On("ListReviewsForProduct", mock.Anything, productID).
		Return([]entity.Review{*newTestReview(productID, 5), *inactive}, nil)

	c, w := newTestContext(http.MethodGet, "/reviews/products/"+productID.String(), nil, nil)
	c.Params = gin.Params{{Key: "product_id", Value: productID.String()}}
	handler.ListReviewsForProduct(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response []entity.Review
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response, 2)
	assert.False(t, response[1].IsActive)
}

func TestReviewHandler_ListReviewsForProduct_InvalidID(t *testing.T) {
	handler, svc := setupReviewHandler()

	c, w := newTestContext(http.MethodGet, "/reviews/products/nope", nil, nil)
	c.Params = gin.Params{{Key: "product_id", Value: "nope"}}
	handler.ListReviewsForProduct(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "ListReviewsForProduct", mock.Anything, mock.Anything)
}

func TestReviewHandler_ListReviews(t *testing.T) {
	handler, svc := setupReviewHandler()

	svc.On("ListReviews", mock.Anything).Return([]entity.Review{}, nil)

	c, w := newTestContext(http.MethodGet, "/reviews", nil, nil)
	handler.ListReviews(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}
