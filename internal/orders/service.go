package orders

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Service errors surfaced to handlers.
var (
	ErrNotFound         = errors.New("order not found")
	ErrForbidden        = errors.New("order belongs to another user")
	ErrAlreadyCancelled = errors.New("order already cancelled")
	ErrNotCancellable   = errors.New("order can no longer be cancelled")
	ErrTotalMismatch    = errors.New("client total does not match computed total")
	ErrBadTransition    = errors.New("status transition not allowed")
	ErrNotEditable      = errors.New("order can no longer be edited")
)

// totalTolerance absorbs rounding drift between client and server pricing.
// Amounts are VND so one unit is the smallest representable difference.
const totalTolerance = 1.0

// Service layers business rules over the order store.
type Service struct {
	store   *Store
	nowFunc func() time.Time
}

// NewService creates an order Service.
func NewService(store *Store) *Service {
	return &Service{store: store, nowFunc: time.Now}
}

// CreateInput is the priced order draft assembled by the handler after
// promo evaluation.
type CreateInput struct {
	UserID        string
	Items         []Item
	ShippingInfo  ShippingInfo
	ShippingFee   float64
	PromoCode     string
	Discount      float64
	ClientTotal   float64
	PaymentMethod string
}

// Create prices the draft server-side, rejects a client total that drifts
// beyond tolerance, and persists the order as confirmed/unpaid.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Order, error) {
	if !ValidMethod(in.PaymentMethod) {
		return nil, fmt.Errorf("unsupported payment method %q", in.PaymentMethod)
	}

	var subtotal float64
	for _, it := range in.Items {
		subtotal += it.Price * float64(it.Quantity)
	}
	total := subtotal + in.ShippingFee - in.Discount
	if total < 0 {
		total = 0
	}
	if math.Abs(total-in.ClientTotal) > totalTolerance {
		return nil, ErrTotalMismatch
	}

	order := &Order{
		OrderID:       uuid.NewString(),
		UserID:        in.UserID,
		Items:         in.Items,
		ShippingInfo:  in.ShippingInfo,
		Subtotal:      subtotal,
		ShippingFee:   in.ShippingFee,
		Discount:      in.Discount,
		PromoCode:     in.PromoCode,
		TotalPrice:    total,
		PaymentMethod: in.PaymentMethod,
		PaymentStatus: PaymentUnpaid,
		Status:        StatusConfirmed,
	}
	if err := s.store.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// GetForUser fetches an order, enforcing ownership unless isAdmin.
func (s *Service) GetForUser(ctx context.Context, orderID, userID string, isAdmin bool) (*Order, error) {
	o, err := s.store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrNotFound
	}
	if !isAdmin && o.UserID != userID {
		return nil, ErrForbidden
	}
	return o, nil
}

// CancelResult reports the outcome of a cancellation, including whether a
// manual refund is owed for money already captured online.
type CancelResult struct {
	Order          *Order
	RequiresRefund bool
	RefundAmount   float64
}

// Cancel cancels an order on behalf of its owner. Only confirmed orders can
// be cancelled; anything further along is already in fulfillment. When the
// order was paid through an online gateway the result flags a refund for
// the captured amount.
func (s *Service) Cancel(ctx context.Context, orderID, userID string, isAdmin bool) (*CancelResult, error) {
	o, err := s.GetForUser(ctx, orderID, userID, isAdmin)
	if err != nil {
		return nil, err
	}
	if o.Status == StatusCancelled {
		return nil, ErrAlreadyCancelled
	}
	if o.Status != StatusConfirmed {
		return nil, ErrNotCancellable
	}

	paymentStatus := o.PaymentStatus
	if !o.Paid() {
		paymentStatus = PaymentCancelled
	}
	requiresRefund := o.Paid() && OnlineMethod(o.PaymentMethod)
	refundAmount := 0.0
	if requiresRefund {
		refundAmount = o.TotalPrice
	}

	if err := s.store.MarkCancelled(ctx, orderID, paymentStatus, requiresRefund, refundAmount); err != nil {
		return nil, err
	}

	now := s.nowFunc()
	o.Status = StatusCancelled
	o.StatusLabel = StatusCancelled.Label()
	o.PaymentStatus = paymentStatus
	o.CancelledAt = &now
	o.RequiresRefund = requiresRefund
	o.RefundAmount = refundAmount
	return &CancelResult{Order: o, RequiresRefund: requiresRefund, RefundAmount: refundAmount}, nil
}

// UpdateStatus advances an order along the fulfillment path. The write is
// conditional on the current status so two staff racing each other cannot
// skip a step. force bypasses the transition table for corrections but
// still writes conditionally.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, next Status, force bool) (*Order, error) {
	o, err := s.store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrNotFound
	}
	if !force && !CanTransition(o.Status, next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrBadTransition, o.Status, next)
	}
	if err := s.store.CASStatus(ctx, orderID, o.Status, next); err != nil {
		return nil, err
	}
	o.Status = next
	o.StatusLabel = next.Label()
	return o, nil
}

// UpdateShipping replaces the recipient details on an order that has not
// shipped yet.
func (s *Service) UpdateShipping(ctx context.Context, orderID string, info ShippingInfo) (*Order, error) {
	o, err := s.store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrNotFound
	}
	if o.Status != StatusConfirmed && o.Status != StatusPreparing {
		return nil, fmt.Errorf("%w: order is %s", ErrNotEditable, o.Status)
	}
	if err := s.store.SetShippingInfo(ctx, orderID, info); err != nil {
		return nil, err
	}
	o.ShippingInfo = info
	return o, nil
}
