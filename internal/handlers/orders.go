package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/hailinh-coffee/coffeeshop-backend/internal/auth"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/aws"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/orders"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/promo"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/validation"
)

// CreateOrder handles POST /api/orders. A promo code, when present, is
// re-validated and its usage consumed before the order is written.
func (a *API) CreateOrder(c *gin.Context) {
	ctx := c.Request.Context()
	userID, _, _ := auth.Identity(c)

	var req validation.CreateOrderRequest
	if err := validation.BindAndValidate(c, &req, a.Validator); err != nil {
		return
	}

	var subtotal float64
	items := make([]orders.Item, 0, len(req.Items))
	for _, it := range req.Items {
		subtotal += it.Price * float64(it.Quantity)
		items = append(items, orders.Item{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Size:      it.Size,
			Image:     it.Image,
		})
	}

	discount := 0.0
	promoCode := ""
	if req.PromoCode != "" {
		ev, err := a.Promo.Redeem(ctx, req.PromoCode, userID, subtotal)
		if err != nil {
			a.fail(c, promoStatus(err), "promo_rejected", err)
			return
		}
		discount = ev.Discount
		promoCode = ev.Code
	}

	order, err := a.Orders.Create(ctx, orders.CreateInput{
		UserID:        userID,
		Items:         items,
		ShippingInfo:  orders.ShippingInfo(req.ShippingInfo),
		ShippingFee:   req.ShippingFee,
		PromoCode:     promoCode,
		Discount:      discount,
		ClientTotal:   req.TotalPrice,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		if errors.Is(err, orders.ErrTotalMismatch) {
			a.fail(c, http.StatusBadRequest, "total_mismatch", err)
			return
		}
		log.Error().Err(err).Str("user_id", userID).Msg("create order failed")
		a.fail(c, http.StatusInternalServerError, "create_order_failed", err)
		return
	}

	a.Metrics.Count(ctx, aws.MetricOrdersCreated, map[string]string{"method": order.PaymentMethod})
	log.Info().Str("order_id", order.OrderID).Str("user_id", userID).
		Str("method", order.PaymentMethod).Float64("total", order.TotalPrice).
		Msg("order created")
	c.JSON(http.StatusCreated, order)
}

// ListMyOrders handles GET /api/orders.
func (a *API) ListMyOrders(c *gin.Context) {
	userID, _, _ := auth.Identity(c)
	list, err := a.OrderStore.ListByUser(c.Request.Context(), userID)
	if err != nil {
		a.fail(c, http.StatusInternalServerError, "list_orders_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": list})
}

// GetOrder handles GET /api/orders/:id.
func (a *API) GetOrder(c *gin.Context) {
	userID, _, isAdmin := auth.Identity(c)
	o, err := a.Orders.GetForUser(c.Request.Context(), c.Param("id"), userID, isAdmin)
	if err != nil {
		a.failOrder(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// CancelOrder handles POST /api/orders/:id/cancel.
func (a *API) CancelOrder(c *gin.Context) {
	ctx := c.Request.Context()
	userID, _, isAdmin := auth.Identity(c)

	res, err := a.Orders.Cancel(ctx, c.Param("id"), userID, isAdmin)
	if err != nil {
		a.failOrder(c, err)
		return
	}

	a.publish(ctx, aws.OrderEvent{
		Type:    aws.EventOrderCancelled,
		OrderID: res.Order.OrderID,
		UserID:  res.Order.UserID,
		Method:  res.Order.PaymentMethod,
		Amount:  res.Order.TotalPrice,
	})
	log.Info().Str("order_id", res.Order.OrderID).Bool("requires_refund", res.RequiresRefund).
		Msg("order cancelled")
	c.JSON(http.StatusOK, gin.H{
		"order":          res.Order,
		"requiresRefund": res.RequiresRefund,
		"refundAmount":   res.RefundAmount,
	})
}

// AdminListOrders handles GET /api/admin/orders.
func (a *API) AdminListOrders(c *gin.Context) {
	list, err := a.OrderStore.ListAll(c.Request.Context())
	if err != nil {
		a.fail(c, http.StatusInternalServerError, "list_orders_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": list})
}

// AdminUpdateOrderStatus handles PATCH /api/admin/orders/:id/status.
func (a *API) AdminUpdateOrderStatus(c *gin.Context) {
	var req validation.UpdateStatusRequest
	if err := validation.BindAndValidate(c, &req, a.Validator); err != nil {
		return
	}
	next, err := orders.ParseStatus(req.Status)
	if err != nil {
		a.fail(c, http.StatusBadRequest, "unknown_status", err)
		return
	}

	o, err := a.Orders.UpdateStatus(c.Request.Context(), c.Param("id"), next, req.Force)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrNotFound):
			a.fail(c, http.StatusNotFound, "order_not_found", err)
		case errors.Is(err, orders.ErrBadTransition):
			a.fail(c, http.StatusConflict, "invalid_transition", err)
		case errors.Is(err, orders.ErrStatusMismatch):
			a.fail(c, http.StatusConflict, "status_changed_concurrently", err)
		default:
			a.fail(c, http.StatusInternalServerError, "update_status_failed", err)
		}
		return
	}
	c.JSON(http.StatusOK, o)
}

// AdminUpdateOrder handles PUT /api/admin/orders/:id. Only the recipient
// details are editable, and only before the order ships.
func (a *API) AdminUpdateOrder(c *gin.Context) {
	var req validation.UpdateOrderRequest
	if err := validation.BindAndValidate(c, &req, a.Validator); err != nil {
		return
	}

	o, err := a.Orders.UpdateShipping(c.Request.Context(), c.Param("id"), orders.ShippingInfo(req.ShippingInfo))
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrNotFound):
			a.fail(c, http.StatusNotFound, "order_not_found", err)
		case errors.Is(err, orders.ErrNotEditable):
			a.fail(c, http.StatusConflict, "not_editable", err)
		default:
			a.fail(c, http.StatusInternalServerError, "update_order_failed", err)
		}
		return
	}
	c.JSON(http.StatusOK, o)
}

// AdminDeleteOrder handles DELETE /api/admin/orders/:id.
func (a *API) AdminDeleteOrder(c *gin.Context) {
	if err := a.OrderStore.Delete(c.Request.Context(), c.Param("id")); err != nil {
		a.fail(c, http.StatusInternalServerError, "delete_order_failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *API) failOrder(c *gin.Context, err error) {
	switch {
	case errors.Is(err, orders.ErrNotFound):
		a.fail(c, http.StatusNotFound, "order_not_found", err)
	case errors.Is(err, orders.ErrForbidden):
		a.fail(c, http.StatusForbidden, "not_your_order", err)
	case errors.Is(err, orders.ErrAlreadyCancelled):
		a.fail(c, http.StatusConflict, "already_cancelled", err)
	case errors.Is(err, orders.ErrNotCancellable):
		a.fail(c, http.StatusConflict, "not_cancellable", err)
	default:
		a.fail(c, http.StatusInternalServerError, "order_failed", err)
	}
}

func promoStatus(err error) int {
	switch {
	case errors.Is(err, promo.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, promo.ErrInactive),
		errors.Is(err, promo.ErrNotInWindow),
		errors.Is(err, promo.ErrExhausted),
		errors.Is(err, promo.ErrMinOrderNotMet),
		errors.Is(err, promo.ErrUserNotAllowed):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// publish sends an order event, logging rather than failing the request
// when the queue is unavailable.
func (a *API) publish(ctx context.Context, ev aws.OrderEvent) {
	if a.Publisher == nil || a.Publisher.QueueURL == "" {
		return
	}
	if err := a.Publisher.PublishOrderEvent(ctx, ev); err != nil {
		log.Warn().Err(err).Str("order_id", ev.OrderID).Str("type", ev.Type).
			Str("code", aws.ErrorCode(err)).Msg("publish order event failed")
	}
}
