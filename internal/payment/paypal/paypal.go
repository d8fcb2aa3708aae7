// Package paypalgw wraps the PayPal Orders API behind the gateway
// interface. Amounts are converted from VND to USD at the configured rate
// since PayPal does not settle VND.
package paypalgw

import (
	"context"
	"fmt"

	"github.com/plutov/paypal/v4"

	"github.com/hailinh-coffee/coffeeshop-backend/internal/config"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/payment"
)

// ordersAPI is the slice of the PayPal SDK client the gateway uses.
type ordersAPI interface {
	CreateOrder(ctx context.Context, intent string, purchaseUnits []paypal.PurchaseUnitRequest, payer *paypal.CreateOrderPayer, appContext *paypal.ApplicationContext) (*paypal.Order, error)
	CaptureOrder(ctx context.Context, orderID string, captureOrderRequest paypal.CaptureOrderRequest) (*paypal.CaptureOrderResponse, error)
}

// Client implements the PayPal gateway.
type Client struct {
	api          ordersAPI
	usdToVNDRate float64
	returnURL    string
	cancelURL    string
}

// New creates a PayPal client against the sandbox or live API base.
func New(cfg config.PayPalConfig, usdToVNDRate float64, returnURL, cancelURL string) (*Client, error) {
	base := paypal.APIBaseSandBox
	if cfg.Environment == "live" {
		base = paypal.APIBaseLive
	}
	sdk, err := paypal.NewClient(cfg.ClientID, cfg.ClientSecret, base)
	if err != nil {
		return nil, fmt.Errorf("paypal client: %w", err)
	}
	if _, err := sdk.GetAccessToken(context.Background()); err != nil {
		return nil, fmt.Errorf("paypal token: %w", err)
	}
	return &Client{
		api:          sdk,
		usdToVNDRate: usdToVNDRate,
		returnURL:    returnURL,
		cancelURL:    cancelURL,
	}, nil
}

func (c *Client) Name() string { return "paypal" }

// usdValue renders a VND amount as a USD string with cents.
func (c *Client) usdValue(vnd float64) string {
	return fmt.Sprintf("%.2f", vnd/c.usdToVNDRate)
}

// CreateIntent creates a PayPal order and returns the approval link. The
// PayPal order id is the correlation ref the capture leg resolves by.
func (c *Client) CreateIntent(ctx context.Context, req payment.IntentRequest) (*payment.IntentResult, error) {
	units := []paypal.PurchaseUnitRequest{{
		ReferenceID: req.OrderID,
		Description: req.OrderInfo,
		Amount: &paypal.PurchaseUnitAmount{
			Currency: "USD",
			Value:    c.usdValue(req.Amount),
		},
	}}
	appCtx := &paypal.ApplicationContext{
		ReturnURL: c.returnURL,
		CancelURL: c.cancelURL,
	}

	order, err := c.api.CreateOrder(ctx, paypal.OrderIntentCapture, units, nil, appCtx)
	if err != nil {
		return nil, fmt.Errorf("paypal create order: %w", err)
	}

	var approveURL string
	for _, link := range order.Links {
		if link.Rel == "approve" {
			approveURL = link.Href
			break
		}
	}
	if approveURL == "" {
		return nil, fmt.Errorf("paypal order %s has no approve link", order.ID)
	}
	return &payment.IntentResult{
		Redirect:    true,
		PayURL:      approveURL,
		ProviderRef: order.ID,
	}, nil
}

// CaptureResult is the settled outcome of a capture call.
type CaptureResult struct {
	Completed bool
	CaptureID string
}

// Capture captures an approved PayPal order.
func (c *Client) Capture(ctx context.Context, paypalOrderID string) (*CaptureResult, error) {
	resp, err := c.api.CaptureOrder(ctx, paypalOrderID, paypal.CaptureOrderRequest{})
	if err != nil {
		return nil, fmt.Errorf("paypal capture: %w", err)
	}

	res := &CaptureResult{Completed: resp.Status == "COMPLETED"}
	for _, unit := range resp.PurchaseUnits {
		if unit.Payments == nil {
			continue
		}
		for _, captured := range unit.Payments.Captures {
			res.CaptureID = captured.ID
			break
		}
	}
	return res, nil
}
