// Package handlers wires the HTTP surface: checkout, payments, promo
// codes, reviews, revenue dashboards, and auth.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/hailinh-coffee/coffeeshop-backend/internal/auth"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/aws"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/config"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/orders"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/payment"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/payment/momo"
	paypalgw "github.com/hailinh-coffee/coffeeshop-backend/internal/payment/paypal"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/payment/vnpay"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/products"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/promo"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/reviews"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/revenue"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/users"
)

// API groups every dependency the HTTP handlers need.
type API struct {
	Cfg       *config.Config
	Validator *validatorv10.Validate
	Issuer    *auth.Issuer

	OrderStore *orders.Store
	Orders     *orders.Service
	PromoStore *promo.Store
	Promo      *promo.Evaluator
	Products   *products.Store
	Reviews    *reviews.Service
	Revenue    *revenue.Service
	Users      *users.Store

	// Gateways maps payment method to its gateway; unconfigured providers
	// hold payment.Disabled placeholders. The typed clients below are nil
	// when their provider is disabled.
	Gateways map[string]payment.Gateway
	VNPay    *vnpay.Client
	MoMo     *momo.Client
	PayPal   *paypalgw.Client

	Publisher *aws.Publisher
	Metrics   *aws.Metrics
}

// Register mounts every route under /api.
func (a *API) Register(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	api.POST("/auth/register", a.RegisterUser)
	api.POST("/auth/login", a.Login)

	api.GET("/products", a.ListProducts)
	api.GET("/products/:id", a.GetProduct)
	api.GET("/products/:id/reviews", a.ListProductReviews)

	authed := api.Group("", auth.RequireAuth(a.Issuer))
	{
		authed.POST("/orders", a.CreateOrder)
		authed.GET("/orders", a.ListMyOrders)
		authed.GET("/orders/:id", a.GetOrder)
		authed.POST("/orders/:id/cancel", a.CancelOrder)

		authed.POST("/payment/create", a.CreatePayment)
		authed.POST("/payment/momo/create", a.CreatePayment)
		authed.POST("/payment/paypal/create", a.CreatePayment)

		authed.POST("/promo-code/validate", a.ValidatePromoCode)
		authed.POST("/promo-code/increment-usage", a.IncrementPromoUsage)
		authed.GET("/promo-code/active", a.ListActivePromoCodes)

		authed.POST("/reviews", a.CreateReview)
		authed.GET("/reviews/can-review", a.CanReview)
		authed.GET("/reviews/mine", a.ListMyReviews)
		authed.PUT("/reviews/:id", a.UpdateReview)
		authed.DELETE("/reviews/:id", a.DeleteReview)
	}

	// provider callbacks carry their own authentication (signatures)
	api.GET("/payment/vnpay_return", a.VNPayReturn)
	api.GET("/payment/momo_return", a.MoMoReturn)
	api.POST("/payment/momo_notify", a.MoMoNotify)
	api.GET("/payment/paypal_return", a.PayPalReturn)
	api.GET("/payment/paypal_cancel", a.PayPalCancel)

	admin := api.Group("/admin", auth.RequireAuth(a.Issuer), auth.RequireAdmin())
	{
		admin.GET("/orders", a.AdminListOrders)
		admin.PATCH("/orders/:id/status", a.AdminUpdateOrderStatus)
		admin.PUT("/orders/:id", a.AdminUpdateOrder)
		admin.DELETE("/orders/:id", a.AdminDeleteOrder)

		admin.POST("/promo-code", a.AdminCreatePromoCode)
		admin.GET("/promo-code", a.AdminListPromoCodes)
		admin.PUT("/promo-code/:code", a.AdminUpdatePromoCode)
		admin.DELETE("/promo-code/:code", a.AdminDeletePromoCode)

		admin.GET("/revenue/overview", a.RevenueOverview)
		admin.GET("/revenue/monthly", a.RevenueMonthly)
		admin.GET("/revenue/by-month", a.RevenueByMonth)
	}
}

// fail writes a JSON error. Internal detail leaks only in development.
func (a *API) fail(c *gin.Context, status int, code string, err error) {
	body := gin.H{"error": code}
	if err != nil && a.Cfg.IsDevelopment() {
		body["msg"] = err.Error()
	}
	c.JSON(status, body)
}
