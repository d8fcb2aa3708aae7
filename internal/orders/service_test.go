package orders

import (
	"context"
	"errors"
	"testing"
)

func newServiceWithMock() (*Service, *mockDynamo) {
	mock := newMockDynamo()
	return NewService(NewStore(mock, "orders")), mock
}

func TestCreate_PricesServerSide(t *testing.T) {
	svc, _ := newServiceWithMock()

	o, err := svc.Create(context.Background(), CreateInput{
		UserID: "u1",
		Items: []Item{
			{ProductID: "p1", Name: "Cà phê sữa", Price: 29000, Quantity: 2},
			{ProductID: "p2", Name: "Bạc xỉu", Price: 32000, Quantity: 1},
		},
		ShippingFee:   15000,
		Discount:      10000,
		ClientTotal:   95000,
		PaymentMethod: MethodCOD,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if o.Subtotal != 90000 || o.TotalPrice != 95000 {
		t.Errorf("subtotal=%v total=%v", o.Subtotal, o.TotalPrice)
	}
	if o.Status != StatusConfirmed || o.PaymentStatus != PaymentUnpaid {
		t.Errorf("status=%s payment=%s", o.Status, o.PaymentStatus)
	}
	if o.OrderID == "" {
		t.Error("order id not assigned")
	}
}

func TestCreate_RejectsTotalDrift(t *testing.T) {
	svc, _ := newServiceWithMock()

	_, err := svc.Create(context.Background(), CreateInput{
		UserID:        "u1",
		Items:         []Item{{ProductID: "p1", Price: 29000, Quantity: 1}},
		ClientTotal:   25000,
		PaymentMethod: MethodCOD,
	})
	if !errors.Is(err, ErrTotalMismatch) {
		t.Fatalf("expected ErrTotalMismatch, got %v", err)
	}

	// one currency unit of drift is tolerated
	_, err = svc.Create(context.Background(), CreateInput{
		UserID:        "u1",
		Items:         []Item{{ProductID: "p1", Price: 29000, Quantity: 1}},
		ClientTotal:   29001,
		PaymentMethod: MethodCOD,
	})
	if err != nil {
		t.Fatalf("one-unit drift rejected: %v", err)
	}
}

func TestCreate_RejectsUnknownMethod(t *testing.T) {
	svc, _ := newServiceWithMock()
	_, err := svc.Create(context.Background(), CreateInput{
		UserID:        "u1",
		Items:         []Item{{ProductID: "p1", Price: 1000, Quantity: 1}},
		ClientTotal:   1000,
		PaymentMethod: "zalopay",
	})
	if err == nil {
		t.Fatal("expected error for unsupported method")
	}
}

func TestCancel_OwnershipAndState(t *testing.T) {
	svc, mock := newServiceWithMock()
	mock.put("orders", Order{OrderID: "o1", UserID: "u1", Status: StatusConfirmed, PaymentStatus: PaymentUnpaid, PaymentMethod: MethodCOD, TotalPrice: 50000})
	mock.put("orders", Order{OrderID: "o2", UserID: "u1", Status: StatusDelivered, PaymentStatus: PaymentPaid, PaymentMethod: MethodCOD})
	mock.put("orders", Order{OrderID: "o3", UserID: "u1", Status: StatusCancelled})

	if _, err := svc.Cancel(context.Background(), "o1", "u2", false); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-owner cancel: %v", err)
	}
	if _, err := svc.Cancel(context.Background(), "o2", "u1", false); !errors.Is(err, ErrNotCancellable) {
		t.Errorf("delivered cancel: %v", err)
	}
	if _, err := svc.Cancel(context.Background(), "o3", "u1", false); !errors.Is(err, ErrAlreadyCancelled) {
		t.Errorf("repeat cancel: %v", err)
	}
	if _, err := svc.Cancel(context.Background(), "missing", "u1", false); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing cancel: %v", err)
	}

	res, err := svc.Cancel(context.Background(), "o1", "u1", false)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if res.RequiresRefund {
		t.Error("unpaid COD order flagged for refund")
	}
	if res.Order.PaymentStatus != PaymentCancelled {
		t.Errorf("payment status = %s", res.Order.PaymentStatus)
	}
}

func TestCancel_PaidOnlineOrderOwesRefund(t *testing.T) {
	svc, mock := newServiceWithMock()
	mock.put("orders", Order{OrderID: "o1", UserID: "u1", Status: StatusConfirmed, PaymentStatus: PaymentPaid, PaymentMethod: MethodPayPal, TotalPrice: 250000})

	res, err := svc.Cancel(context.Background(), "o1", "u1", false)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if !res.RequiresRefund {
		t.Fatal("paid paypal order must owe a refund")
	}
	if res.RefundAmount != 250000 {
		t.Errorf("refund amount = %v", res.RefundAmount)
	}
	// payment stays paid until the manual refund settles
	if res.Order.PaymentStatus != PaymentPaid {
		t.Errorf("payment status = %s", res.Order.PaymentStatus)
	}
}

func TestUpdateStatus_EnforcesPath(t *testing.T) {
	svc, mock := newServiceWithMock()
	mock.put("orders", Order{OrderID: "o1", Status: StatusConfirmed})

	if _, err := svc.UpdateStatus(context.Background(), "o1", StatusDelivered, false); !errors.Is(err, ErrBadTransition) {
		t.Errorf("skip transition: %v", err)
	}

	o, err := svc.UpdateStatus(context.Background(), "o1", StatusPreparing, false)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if o.Status != StatusPreparing || o.StatusLabel != "Chuẩn bị đơn hàng" {
		t.Errorf("order = %+v", o)
	}

	// force bypasses the transition table for corrections
	forced, err := svc.UpdateStatus(context.Background(), "o1", StatusConfirmed, true)
	if err != nil {
		t.Fatalf("forced update: %v", err)
	}
	if forced.Status != StatusConfirmed {
		t.Errorf("forced order = %+v", forced)
	}
}

func TestUpdateShipping_OnlyBeforeShipment(t *testing.T) {
	mock := newMockDynamo()
	mock.put("orders", Order{OrderID: "o1", Status: StatusConfirmed})
	mock.put("orders", Order{OrderID: "o2", Status: StatusShipping})
	svc := NewService(NewStore(mock, "orders"))

	info := ShippingInfo{FullName: "Minh", Phone: "0900000000", Address: "12 Lê Lợi, Huế"}
	o, err := svc.UpdateShipping(context.Background(), "o1", info)
	if err != nil {
		t.Fatalf("update shipping: %v", err)
	}
	if o.ShippingInfo.FullName != "Minh" {
		t.Errorf("order = %+v", o.ShippingInfo)
	}

	if _, err := svc.UpdateShipping(context.Background(), "o2", info); !errors.Is(err, ErrNotEditable) {
		t.Errorf("shipping order edit: %v", err)
	}
	if _, err := svc.UpdateShipping(context.Background(), "missing", info); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing order edit: %v", err)
	}
}

func TestParseStatus_LegacyLabels(t *testing.T) {
	cases := map[string]Status{
		"confirmed":         StatusConfirmed,
		"Đang xử lý":        StatusConfirmed,
		"chuẩn bị đơn hàng": StatusPreparing,
		"Đang giao hàng":    StatusShipping,
		"giao thành công":   StatusDelivered,
		"hoàn thành":        StatusDelivered,
		"COMPLETED":         StatusDelivered,
		"đã hủy":            StatusCancelled,
	}
	for in, want := range cases {
		got, err := ParseStatus(in)
		if err != nil {
			t.Errorf("ParseStatus(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseStatus(%q) = %s, want %s", in, got, want)
		}
	}
	if _, err := ParseStatus("mystery"); err == nil {
		t.Error("unknown status accepted")
	}
}
