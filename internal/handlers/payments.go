package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/hailinh-coffee/coffeeshop-backend/internal/auth"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/aws"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/orders"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/payment"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/payment/momo"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/validation"
)

// providerRefAttr maps a payment method to the correlation attribute the
// async callback resolves the order by.
var providerRefAttr = map[string]string{
	orders.MethodVNPay:  orders.AttrVNPayTxnRef,
	orders.MethodMoMo:   orders.AttrMoMoRequestID,
	orders.MethodPayPal: orders.AttrPayPalOrderID,
}

// CreatePayment handles POST /api/payment/create. It dispatches to the
// gateway matching the order's payment method and persists the provider
// correlation id before answering.
func (a *API) CreatePayment(c *gin.Context) {
	ctx := c.Request.Context()
	userID, _, isAdmin := auth.Identity(c)

	var req validation.CreatePaymentRequest
	if err := validation.BindAndValidate(c, &req, a.Validator); err != nil {
		return
	}

	o, err := a.Orders.GetForUser(ctx, req.OrderID, userID, isAdmin)
	if err != nil {
		a.failOrder(c, err)
		return
	}
	if o.PaymentStatus == orders.PaymentPaid {
		a.fail(c, http.StatusConflict, "already_paid", nil)
		return
	}
	if o.Status == orders.StatusCancelled {
		a.fail(c, http.StatusConflict, "order_cancelled", nil)
		return
	}

	gw, ok := a.Gateways[o.PaymentMethod]
	if !ok {
		a.fail(c, http.StatusBadRequest, "unsupported_method", nil)
		return
	}

	res, err := gw.CreateIntent(ctx, payment.IntentRequest{
		OrderID:   o.OrderID,
		Amount:    o.TotalPrice,
		OrderInfo: fmt.Sprintf("Thanh toan don hang %s", o.OrderID),
		UserID:    userID,
		ClientIP:  c.ClientIP(),
	})
	if err != nil {
		if errors.Is(err, payment.ErrGatewayDisabled) {
			a.fail(c, http.StatusServiceUnavailable, "gateway_disabled", err)
			return
		}
		log.Error().Err(err).Str("order_id", o.OrderID).Str("method", o.PaymentMethod).
			Msg("create payment intent failed")
		a.fail(c, http.StatusBadGateway, "gateway_error", err)
		return
	}

	if attr, ok := providerRefAttr[o.PaymentMethod]; ok && res.ProviderRef != "" {
		if err := a.OrderStore.SetProviderRef(ctx, o.OrderID, attr, res.ProviderRef); err != nil {
			log.Error().Err(err).Str("order_id", o.OrderID).Msg("persist provider ref failed")
			a.fail(c, http.StatusInternalServerError, "create_payment_failed", err)
			return
		}
	}
	c.JSON(http.StatusOK, res)
}

// VNPayReturn handles GET /api/payment/vnpay_return, the browser redirect
// VNPay signs. The outcome reconciles the order and the user lands on the
// storefront result page.
func (a *API) VNPayReturn(c *gin.Context) {
	ctx := c.Request.Context()
	if a.VNPay == nil {
		a.fail(c, http.StatusServiceUnavailable, "gateway_disabled", nil)
		return
	}

	params := map[string]string{}
	for k, vs := range c.Request.URL.Query() {
		if len(vs) > 0 {
			params[k] = vs[0]
		}
	}

	out := a.VNPay.VerifyReturn(params)
	if !out.Valid {
		a.Metrics.Count(ctx, aws.MetricSignatureRejected, map[string]string{"provider": "vnpay"})
		log.Warn().Str("txn_ref", params["vnp_TxnRef"]).Msg("vnpay return signature rejected")
		a.redirectResult(c, "invalid", "")
		return
	}

	o, err := a.OrderStore.FindByProviderRef(ctx, orders.AttrVNPayTxnRef, out.TxnRef)
	if err != nil || o == nil {
		log.Error().Err(err).Str("txn_ref", out.TxnRef).Msg("vnpay return order lookup failed")
		a.redirectResult(c, "invalid", "")
		return
	}

	if out.Success {
		a.settle(c, o, out.TransactionNo, "vnpay")
		a.redirectResult(c, "success", o.OrderID)
		return
	}
	a.recordFailure(c, o, "vnpay", out.ResponseCode)
	a.redirectResult(c, "failed", o.OrderID)
}

// MoMoReturn handles GET /api/payment/momo_return. The redirect is display
// only; reconciliation happens on the signed IPN.
func (a *API) MoMoReturn(c *gin.Context) {
	status := "failed"
	if c.Query("resultCode") == "0" {
		status = "success"
	}
	a.redirectResult(c, status, c.Query("orderId"))
}

// MoMoNotify handles POST /api/payment/momo_notify, the signed IPN that
// settles MoMo payments. MoMo expects 204 on receipt.
func (a *API) MoMoNotify(c *gin.Context) {
	ctx := c.Request.Context()
	if a.MoMo == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}

	var ipn momo.IPN
	if err := c.ShouldBindJSON(&ipn); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	if !a.MoMo.VerifyIPN(ipn) {
		a.Metrics.Count(ctx, aws.MetricSignatureRejected, map[string]string{"provider": "momo"})
		log.Warn().Str("order_id", ipn.OrderID).Msg("momo ipn signature rejected")
		c.Status(http.StatusForbidden)
		return
	}

	o, err := a.OrderStore.FindByProviderRef(ctx, orders.AttrMoMoRequestID, ipn.RequestID)
	if err != nil || o == nil {
		log.Error().Err(err).Str("request_id", ipn.RequestID).Msg("momo ipn order lookup failed")
		c.Status(http.StatusNoContent)
		return
	}

	if ipn.Success() {
		a.settle(c, o, fmt.Sprintf("%d", ipn.TransID), "momo")
	} else {
		a.recordFailure(c, o, "momo", fmt.Sprintf("%d", ipn.ResultCode))
	}
	c.Status(http.StatusNoContent)
}

// PayPalReturn handles GET /api/payment/paypal_return. PayPal sends the
// approved order token; the capture call settles the money.
func (a *API) PayPalReturn(c *gin.Context) {
	ctx := c.Request.Context()
	if a.PayPal == nil {
		a.fail(c, http.StatusServiceUnavailable, "gateway_disabled", nil)
		return
	}

	token := c.Query("token")
	if token == "" {
		a.redirectResult(c, "invalid", "")
		return
	}

	o, err := a.OrderStore.FindByProviderRef(ctx, orders.AttrPayPalOrderID, token)
	if err != nil || o == nil {
		log.Error().Err(err).Str("paypal_order_id", token).Msg("paypal return order lookup failed")
		a.redirectResult(c, "invalid", "")
		return
	}

	captured, err := a.PayPal.Capture(ctx, token)
	if err != nil {
		log.Error().Err(err).Str("order_id", o.OrderID).Msg("paypal capture failed")
		a.recordFailure(c, o, "paypal", "capture_error")
		a.redirectResult(c, "failed", o.OrderID)
		return
	}
	if !captured.Completed {
		a.recordFailure(c, o, "paypal", "not_completed")
		a.redirectResult(c, "failed", o.OrderID)
		return
	}
	a.settle(c, o, captured.CaptureID, "paypal")
	a.redirectResult(c, "success", o.OrderID)
}

// PayPalCancel handles GET /api/payment/paypal_cancel, the user aborting
// at PayPal. The order stays unpaid so they can retry.
func (a *API) PayPalCancel(c *gin.Context) {
	a.redirectResult(c, "cancelled", "")
}

// settle records a captured payment once and fans out the paid event.
// A replayed callback hits the conditional write and is ignored.
func (a *API) settle(c *gin.Context, o *orders.Order, transactionID, provider string) {
	ctx := c.Request.Context()
	err := a.OrderStore.RecordPaymentResult(ctx, o.OrderID, orders.PaymentPaid, transactionID)
	if errors.Is(err, orders.ErrStatusMismatch) {
		log.Info().Str("order_id", o.OrderID).Str("provider", provider).
			Msg("payment already reconciled, callback replay ignored")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("order_id", o.OrderID).Msg("record payment failed")
		return
	}

	a.Metrics.Count(ctx, aws.MetricPaymentSucceeded, map[string]string{"provider": provider})
	a.publish(ctx, aws.OrderEvent{
		Type:    aws.EventOrderPaid,
		OrderID: o.OrderID,
		UserID:  o.UserID,
		Method:  o.PaymentMethod,
		Amount:  o.TotalPrice,
	})
	log.Info().Str("order_id", o.OrderID).Str("provider", provider).
		Str("transaction_id", transactionID).Msg("payment settled")
}

func (a *API) recordFailure(c *gin.Context, o *orders.Order, provider, code string) {
	ctx := c.Request.Context()
	if err := a.OrderStore.RecordPaymentResult(ctx, o.OrderID, orders.PaymentFailed, ""); err != nil && !errors.Is(err, orders.ErrStatusMismatch) {
		log.Error().Err(err).Str("order_id", o.OrderID).Msg("record payment failure failed")
	}
	a.Metrics.Count(ctx, aws.MetricPaymentFailed, map[string]string{"provider": provider})
	log.Info().Str("order_id", o.OrderID).Str("provider", provider).Str("code", code).
		Msg("payment failed")
}

// redirectResult sends the browser to the storefront result page.
func (a *API) redirectResult(c *gin.Context, status, orderID string) {
	q := url.Values{}
	q.Set("status", status)
	if orderID != "" {
		q.Set("orderId", orderID)
	}
	c.Redirect(http.StatusFound, a.Cfg.FrontendURL+"/payment/result?"+q.Encode())
}
