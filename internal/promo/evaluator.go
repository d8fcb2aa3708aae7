package promo

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Validation errors, checked in this order.
var (
	ErrNotFound       = errors.New("promo code not found")
	ErrInactive       = errors.New("promo code is not active")
	ErrNotInWindow    = errors.New("promo code is outside its validity window")
	ErrExhausted      = errors.New("promo code has no redemptions left")
	ErrMinOrderNotMet = errors.New("order amount below promo minimum")
	ErrUserNotAllowed = errors.New("promo code not available for this user")
)

// Evaluation is the priced outcome of a successful validation.
type Evaluation struct {
	Code       string  `json:"code"`
	Discount   float64 `json:"discount"`
	FinalTotal float64 `json:"finalTotal"`
}

// Evaluator validates and prices promo codes against an order.
type Evaluator struct {
	store   *Store
	nowFunc func() time.Time
}

// NewEvaluator creates an Evaluator over the store.
func NewEvaluator(store *Store) *Evaluator {
	return &Evaluator{store: store, nowFunc: time.Now}
}

// Evaluate runs the full validation chain for a redemption attempt and
// returns the discount. It does not consume a usage slot; Redeem does.
func (e *Evaluator) Evaluate(ctx context.Context, code, userID string, orderAmount float64) (*Evaluation, error) {
	p, err := e.store.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	if !p.Active {
		return nil, ErrInactive
	}
	if !p.InWindow(e.nowFunc()) {
		return nil, ErrNotInWindow
	}
	if p.Exhausted() {
		return nil, ErrExhausted
	}
	if orderAmount < p.MinOrderAmount {
		return nil, fmt.Errorf("%w: need %.0f", ErrMinOrderNotMet, p.MinOrderAmount)
	}
	if !p.AllowsUser(userID) {
		return nil, ErrUserNotAllowed
	}

	discount := p.Discount(orderAmount)
	return &Evaluation{
		Code:       p.Code,
		Discount:   discount,
		FinalTotal: orderAmount - discount,
	}, nil
}

// Redeem re-validates the code and consumes one usage slot atomically.
// Callers use this at order placement; Evaluate alone serves previews.
func (e *Evaluator) Redeem(ctx context.Context, code, userID string, orderAmount float64) (*Evaluation, error) {
	ev, err := e.Evaluate(ctx, code, userID, orderAmount)
	if err != nil {
		return nil, err
	}
	if err := e.store.IncrementUsage(ctx, code); err != nil {
		if errors.Is(err, ErrUsageLimitReached) {
			return nil, ErrExhausted
		}
		return nil, err
	}
	return ev, nil
}
