package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hailinh-coffee/coffeeshop-backend/internal/auth"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/promo"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/validation"
)

// ValidatePromoCode handles POST /api/promo-code/validate. This is the
// preview path: it prices the discount without consuming a usage slot.
func (a *API) ValidatePromoCode(c *gin.Context) {
	userID, _, _ := auth.Identity(c)

	var req validation.ValidatePromoRequest
	if err := validation.BindAndValidate(c, &req, a.Validator); err != nil {
		return
	}

	ev, err := a.Promo.Evaluate(c.Request.Context(), req.Code, userID, req.OrderAmount)
	if err != nil {
		a.fail(c, promoStatus(err), "promo_rejected", err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

// IncrementPromoUsage handles POST /api/promo-code/increment-usage. The
// order flow consumes usage itself; this exists for storefront flows that
// settle the discount outside checkout.
func (a *API) IncrementPromoUsage(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		a.fail(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}
	if err := a.PromoStore.IncrementUsage(c.Request.Context(), req.Code); err != nil {
		if errors.Is(err, promo.ErrUsageLimitReached) {
			a.fail(c, http.StatusConflict, "usage_limit_reached", err)
			return
		}
		a.fail(c, http.StatusInternalServerError, "increment_usage_failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListActivePromoCodes handles GET /api/promo-code/active.
func (a *API) ListActivePromoCodes(c *gin.Context) {
	list, err := a.PromoStore.ListActive(c.Request.Context())
	if err != nil {
		a.fail(c, http.StatusInternalServerError, "list_promo_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"promoCodes": list})
}

// AdminCreatePromoCode handles POST /api/admin/promo-code.
func (a *API) AdminCreatePromoCode(c *gin.Context) {
	p, ok := a.bindPromoCode(c)
	if !ok {
		return
	}
	if err := a.PromoStore.Create(c.Request.Context(), p); err != nil {
		if errors.Is(err, promo.ErrCodeExists) {
			a.fail(c, http.StatusConflict, "code_exists", err)
			return
		}
		a.fail(c, http.StatusInternalServerError, "create_promo_failed", err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// AdminListPromoCodes handles GET /api/admin/promo-code.
func (a *API) AdminListPromoCodes(c *gin.Context) {
	list, err := a.PromoStore.List(c.Request.Context())
	if err != nil {
		a.fail(c, http.StatusInternalServerError, "list_promo_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"promoCodes": list})
}

// AdminUpdatePromoCode handles PUT /api/admin/promo-code/:code.
func (a *API) AdminUpdatePromoCode(c *gin.Context) {
	ctx := c.Request.Context()
	existing, err := a.PromoStore.Get(ctx, c.Param("code"))
	if err != nil {
		a.fail(c, http.StatusInternalServerError, "update_promo_failed", err)
		return
	}
	if existing == nil {
		a.fail(c, http.StatusNotFound, "promo_not_found", nil)
		return
	}

	p, ok := a.bindPromoCode(c)
	if !ok {
		return
	}
	p.Code = existing.Code
	p.UsedCount = existing.UsedCount
	p.CreatedAt = existing.CreatedAt
	if err := a.PromoStore.Update(ctx, p); err != nil {
		a.fail(c, http.StatusInternalServerError, "update_promo_failed", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// AdminDeletePromoCode handles DELETE /api/admin/promo-code/:code.
func (a *API) AdminDeletePromoCode(c *gin.Context) {
	if err := a.PromoStore.Delete(c.Request.Context(), c.Param("code")); err != nil {
		a.fail(c, http.StatusInternalServerError, "delete_promo_failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// bindPromoCode binds and converts the admin payload. The date window is
// RFC 3339 and must be ordered.
func (a *API) bindPromoCode(c *gin.Context) (*promo.PromoCode, bool) {
	var req validation.PromoCodeRequest
	if err := validation.BindAndValidate(c, &req, a.Validator); err != nil {
		return nil, false
	}
	start, err := time.Parse(time.RFC3339, req.StartDate)
	if err != nil {
		a.fail(c, http.StatusBadRequest, "bad_start_date", err)
		return nil, false
	}
	end, err := time.Parse(time.RFC3339, req.EndDate)
	if err != nil {
		a.fail(c, http.StatusBadRequest, "bad_end_date", err)
		return nil, false
	}
	if !end.After(start) {
		a.fail(c, http.StatusBadRequest, "window_inverted", nil)
		return nil, false
	}

	return &promo.PromoCode{
		Code:              req.Code,
		Description:       req.Description,
		DiscountType:      req.DiscountType,
		DiscountValue:     req.DiscountValue,
		MaxDiscountAmount: req.MaxDiscountAmount,
		MinOrderAmount:    req.MinOrderAmount,
		StartDate:         start,
		EndDate:           end,
		UsageLimit:        req.UsageLimit,
		AllowedUsers:      req.AllowedUsers,
		Active:            req.Active,
	}, true
}
