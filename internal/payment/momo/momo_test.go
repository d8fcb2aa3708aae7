package momo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hailinh-coffee/coffeeshop-backend/internal/config"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/payment"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/payment/signature"
)

func testConfig(endpoint string) config.MoMoConfig {
	return config.MoMoConfig{
		PartnerCode: "MOMOTEST",
		AccessKey:   "ak",
		SecretKey:   "sk",
		Endpoint:    endpoint,
	}
}

func TestCreateIntent_SignsAndParsesResponse(t *testing.T) {
	var received createRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(createResponse{
			ResultCode: 0,
			Message:    "Success",
			PayURL:     "https://test-payment.momo.vn/pay/abc",
		})
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), "http://localhost:3000/done", "http://localhost:8080/api/payment/momo_notify")
	res, err := c.CreateIntent(context.Background(), payment.IntentRequest{
		OrderID:   "order-1",
		Amount:    120000,
		OrderInfo: "Thanh toan don hang order-1",
	})
	if err != nil {
		t.Fatalf("create intent: %v", err)
	}
	if !res.Redirect || res.PayURL != "https://test-payment.momo.vn/pay/abc" {
		t.Errorf("result = %+v", res)
	}
	if res.ProviderRef != received.RequestID {
		t.Errorf("provider ref %q != request id %q", res.ProviderRef, received.RequestID)
	}

	want := signature.HMACHex(signature.SHA256, "sk", createRaw("ak", received))
	if received.Signature != want {
		t.Errorf("request signature = %q, want %q", received.Signature, want)
	}
	if received.Amount != 120000 || received.RequestType != "captureWallet" {
		t.Errorf("request = %+v", received)
	}
}

func TestCreateIntent_ProviderRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(createResponse{ResultCode: 41, Message: "duplicate orderId"})
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), "", "")
	_, err := c.CreateIntent(context.Background(), payment.IntentRequest{OrderID: "order-1", Amount: 1000})
	if err == nil {
		t.Fatal("expected error for nonzero resultCode")
	}
}

func TestVerifyIPN(t *testing.T) {
	c := New(testConfig("http://unused"), "", "")
	n := IPN{
		PartnerCode:  "MOMOTEST",
		OrderID:      "order-1",
		RequestID:    "req-1",
		Amount:       120000,
		OrderInfo:    "Thanh toan don hang order-1",
		OrderType:    "momo_wallet",
		TransID:      4088878653,
		ResultCode:   0,
		Message:      "Successful.",
		PayType:      "qr",
		ResponseTime: 1748773800000,
	}
	n.Signature = c.SignIPN(n)

	if !c.VerifyIPN(n) {
		t.Fatal("valid IPN rejected")
	}
	if !n.Success() {
		t.Error("resultCode 0 not success")
	}

	n.Amount = 999999
	if c.VerifyIPN(n) {
		t.Error("tampered IPN verified")
	}
}

func TestIPN_FailureCode(t *testing.T) {
	n := IPN{ResultCode: 1006, Message: "user cancelled"}
	if n.Success() {
		t.Error("nonzero resultCode treated as success")
	}
}
