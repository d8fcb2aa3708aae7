package orders

import (
	"fmt"
	"strings"
)

// Status is the canonical order fulfillment state.
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusShipping  Status = "shipping"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// transitions is the allowed forward path for staff status updates.
// Cancellation is not reachable through here; it goes through Cancel,
// which owns the refund bookkeeping.
var transitions = map[Status]Status{
	StatusConfirmed: StatusPreparing,
	StatusPreparing: StatusShipping,
	StatusShipping:  StatusDelivered,
}

// CanTransition reports whether a staff update from -> to is allowed.
func CanTransition(from, to Status) bool {
	return transitions[from] == to
}

// legacyLabels maps the display labels historically stored on orders to
// canonical statuses. Orders written before the enum migration carry
// these, so ParseStatus keeps accepting them.
var legacyLabels = map[string]Status{
	"xác nhận đơn hàng":  StatusConfirmed,
	"đang xử lý":         StatusConfirmed,
	"chuẩn bị đơn hàng":  StatusPreparing,
	"đang giao hàng":     StatusShipping,
	"giao thành công":    StatusDelivered,
	"hoàn thành":         StatusDelivered,
	"completed":          StatusDelivered,
	"delivered":          StatusDelivered,
	"đã hủy":             StatusCancelled,
	"hủy":                StatusCancelled,
}

// ParseStatus normalizes s into a canonical Status. It accepts the
// canonical names and the legacy Vietnamese/English display labels.
func ParseStatus(s string) (Status, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	switch Status(norm) {
	case StatusConfirmed, StatusPreparing, StatusShipping, StatusDelivered, StatusCancelled:
		return Status(norm), nil
	}
	if st, ok := legacyLabels[norm]; ok {
		return st, nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// Label returns the Vietnamese display label for the status.
func (s Status) Label() string {
	switch s {
	case StatusConfirmed:
		return "Xác nhận đơn hàng"
	case StatusPreparing:
		return "Chuẩn bị đơn hàng"
	case StatusShipping:
		return "Đang giao hàng"
	case StatusDelivered:
		return "Giao thành công"
	case StatusCancelled:
		return "Đã hủy"
	}
	return string(s)
}

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}
