package validation

import "testing"

func validCreateOrder() CreateOrderRequest {
	return CreateOrderRequest{
		Items: []ItemRequest{
			{ProductID: "p1", Name: "Cà phê sữa", Price: 29000, Quantity: 2},
			{ProductID: "p2", Name: "Trà đào", Price: 45000, Quantity: 1},
		},
		ShippingInfo: ShippingInfoRequest{
			FullName: "Nguyễn Văn A",
			Phone:    "0901234567",
			Address:  "12 Lý Thường Kiệt, Q.10, TP.HCM",
		},
		ShippingFee:   15000,
		Discount:      20000,
		TotalPrice:    98000, // 58000 + 45000 + 15000 - 20000
		PaymentMethod: "cod",
	}
}

func TestCreateOrderRequest_Valid(t *testing.T) {
	v := New()
	if err := v.Struct(validCreateOrder()); err != nil {
		t.Fatalf("expected valid, got: %v", err)
	}
}

func TestCreateOrderRequest_TotalMismatchRejected(t *testing.T) {
	v := New()
	req := validCreateOrder()
	req.TotalPrice = 88000
	if err := v.Struct(req); err == nil {
		t.Fatal("expected validation error for total mismatch")
	}
}

func TestCreateOrderRequest_OneUnitDriftTolerated(t *testing.T) {
	v := New()
	req := validCreateOrder()
	req.TotalPrice = 98001
	if err := v.Struct(req); err != nil {
		t.Fatalf("one unit of drift rejected: %v", err)
	}
}

func TestCreateOrderRequest_MissingFields(t *testing.T) {
	v := New()
	req := CreateOrderRequest{Items: []ItemRequest{}}
	if err := v.Struct(req); err == nil {
		t.Fatal("expected validation errors for missing fields")
	}
}

func TestCreateOrderRequest_UnknownMethod(t *testing.T) {
	v := New()
	req := validCreateOrder()
	req.PaymentMethod = "zalopay"
	if err := v.Struct(req); err == nil {
		t.Fatal("expected validation error for unsupported method")
	}
}

func TestCreateReviewRequest_RatingBounds(t *testing.T) {
	v := New()
	for _, rating := range []int{0, 6} {
		req := CreateReviewRequest{ProductID: "p1", Rating: rating}
		if err := v.Struct(req); err == nil {
			t.Errorf("rating %d accepted", rating)
		}
	}
	if err := v.Struct(CreateReviewRequest{ProductID: "p1", Rating: 5}); err != nil {
		t.Errorf("valid review rejected: %v", err)
	}
}

func TestPromoCodeRequest_DiscountType(t *testing.T) {
	v := New()
	req := PromoCodeRequest{
		Code: "SAVE50K", DiscountType: "bogus", DiscountValue: 50000,
		StartDate: "2025-06-01T00:00:00Z", EndDate: "2025-07-01T00:00:00Z",
	}
	if err := v.Struct(req); err == nil {
		t.Fatal("unknown discount type accepted")
	}
	req.DiscountType = "fixed"
	if err := v.Struct(req); err != nil {
		t.Fatalf("fixed discount rejected: %v", err)
	}
}
