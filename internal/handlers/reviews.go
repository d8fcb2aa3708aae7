package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hailinh-coffee/coffeeshop-backend/internal/auth"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/reviews"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/validation"
)

// CreateReview handles POST /api/reviews.
func (a *API) CreateReview(c *gin.Context) {
	userID, name, _ := auth.Identity(c)

	var req validation.CreateReviewRequest
	if err := validation.BindAndValidate(c, &req, a.Validator); err != nil {
		return
	}

	r, err := a.Reviews.Create(c.Request.Context(), reviews.CreateInput{
		ProductID: req.ProductID,
		UserID:    userID,
		UserName:  name,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		a.failReview(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

// CanReview handles GET /api/reviews/can-review?productId=p1. The
// storefront uses it to decide whether to show the review form.
func (a *API) CanReview(c *gin.Context) {
	userID, _, _ := auth.Identity(c)
	productID := c.Query("productId")
	if productID == "" {
		a.fail(c, http.StatusBadRequest, "missing_product_id", nil)
		return
	}

	ok, err := a.Reviews.CanReview(c.Request.Context(), userID, productID)
	if err != nil {
		a.fail(c, http.StatusInternalServerError, "can_review_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"canReview": ok})
}

// ListProductReviews handles GET /api/products/:id/reviews.
func (a *API) ListProductReviews(c *gin.Context) {
	list, err := a.Reviews.ListByProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.fail(c, http.StatusInternalServerError, "list_reviews_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": list})
}

// ListMyReviews handles GET /api/reviews/mine.
func (a *API) ListMyReviews(c *gin.Context) {
	userID, _, _ := auth.Identity(c)
	list, err := a.Reviews.ListByUser(c.Request.Context(), userID)
	if err != nil {
		a.fail(c, http.StatusInternalServerError, "list_reviews_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": list})
}

// UpdateReview handles PUT /api/reviews/:id.
func (a *API) UpdateReview(c *gin.Context) {
	userID, _, _ := auth.Identity(c)

	var req validation.UpdateReviewRequest
	if err := validation.BindAndValidate(c, &req, a.Validator); err != nil {
		return
	}

	r, err := a.Reviews.Update(c.Request.Context(), c.Param("id"), userID, req.Rating, req.Comment)
	if err != nil {
		a.failReview(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// DeleteReview handles DELETE /api/reviews/:id.
func (a *API) DeleteReview(c *gin.Context) {
	userID, _, isAdmin := auth.Identity(c)
	if err := a.Reviews.Delete(c.Request.Context(), c.Param("id"), userID, isAdmin); err != nil {
		a.failReview(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *API) failReview(c *gin.Context, err error) {
	switch {
	case errors.Is(err, reviews.ErrNotFound):
		a.fail(c, http.StatusNotFound, "review_not_found", err)
	case errors.Is(err, reviews.ErrForbidden):
		a.fail(c, http.StatusForbidden, "not_your_review", err)
	case errors.Is(err, reviews.ErrNotPurchased):
		a.fail(c, http.StatusForbidden, "not_purchased", err)
	case errors.Is(err, reviews.ErrAlreadyReviewed):
		a.fail(c, http.StatusConflict, "already_reviewed", err)
	case errors.Is(err, reviews.ErrBadRating):
		a.fail(c, http.StatusBadRequest, "bad_rating", err)
	default:
		a.fail(c, http.StatusInternalServerError, "review_failed", err)
	}
}
