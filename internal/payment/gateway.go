// Package payment defines the gateway abstraction the checkout flow talks
// to. Each provider lives in its own subpackage; COD is inline since no
// external call is involved.
package payment

import (
	"context"
	"errors"
	"fmt"
)

// ErrGatewayDisabled is returned for providers left unconfigured at
// startup. The message carried alongside tells operators what to set.
var ErrGatewayDisabled = errors.New("payment gateway not configured")

// IntentRequest is a request to start payment for an order.
type IntentRequest struct {
	OrderID   string
	Amount    float64 // VND
	OrderInfo string
	UserID    string
	ClientIP  string
}

// IntentResult tells the client how to proceed: either follow PayURL to
// the provider, or nothing further for methods that settle out of band.
type IntentResult struct {
	Redirect    bool   `json:"redirect"`
	PayURL      string `json:"payUrl,omitempty"`
	ProviderRef string `json:"providerRef,omitempty"`
	Message     string `json:"message,omitempty"`
}

// Gateway starts a payment with one provider.
type Gateway interface {
	Name() string
	CreateIntent(ctx context.Context, req IntentRequest) (*IntentResult, error)
}

// Disabled is a placeholder gateway for providers missing credentials.
// Requests fail with a remediation hint instead of a panic or a nil deref.
type Disabled struct {
	Provider string
	EnvHint  string
}

func (d *Disabled) Name() string { return d.Provider }

func (d *Disabled) CreateIntent(ctx context.Context, req IntentRequest) (*IntentResult, error) {
	return nil, fmt.Errorf("%w: %s disabled, set %s", ErrGatewayDisabled, d.Provider, d.EnvHint)
}

// COD settles on delivery; creating the intent is a no-op acknowledgment.
type COD struct{}

func (COD) Name() string { return "cod" }

func (COD) CreateIntent(ctx context.Context, req IntentRequest) (*IntentResult, error) {
	return &IntentResult{
		Redirect: false,
		Message:  "Thanh toán khi nhận hàng",
	}, nil
}
