// Package vnpay builds signed VNPay pay URLs and verifies the signed
// return redirect. VNPay signs a sorted raw key=value string with
// HMAC-SHA512 and reports success with response code "00".
package vnpay

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/hailinh-coffee/coffeeshop-backend/internal/config"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/payment"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/payment/signature"
)

const (
	version     = "2.1.0"
	command     = "pay"
	currency    = "VND"
	locale      = "vn"
	orderType   = "billpayment"
	successCode = "00"
)

// Signature fields are excluded from the canonical string on verify.
var signatureKeys = []string{"vnp_SecureHash", "vnp_SecureHashType"}

// Client implements the VNPay gateway.
type Client struct {
	cfg       config.VNPayConfig
	returnURL string
	nowFunc   func() time.Time
}

// New creates a VNPay client.
func New(cfg config.VNPayConfig, returnURL string) *Client {
	return &Client{cfg: cfg, returnURL: returnURL, nowFunc: time.Now}
}

func (c *Client) Name() string { return "vnpay" }

// CreateIntent builds the signed redirect URL. The transaction ref doubles
// as the correlation id persisted on the order for the return leg.
func (c *Client) CreateIntent(ctx context.Context, req payment.IntentRequest) (*payment.IntentResult, error) {
	now := c.nowFunc()
	txnRef := fmt.Sprintf("%s-%d", req.OrderID, now.Unix())

	// VNPay wants the amount in minor units: VND x100.
	params := map[string]string{
		"vnp_Version":    version,
		"vnp_Command":    command,
		"vnp_TmnCode":    c.cfg.TmnCode,
		"vnp_Amount":     strconv.FormatInt(int64(req.Amount)*100, 10),
		"vnp_CurrCode":   currency,
		"vnp_TxnRef":     txnRef,
		"vnp_OrderInfo":  req.OrderInfo,
		"vnp_OrderType":  orderType,
		"vnp_Locale":     locale,
		"vnp_ReturnUrl":  c.returnURL,
		"vnp_IpAddr":     req.ClientIP,
		"vnp_CreateDate": now.Format("20060102150405"),
	}
	params["vnp_SecureHash"] = signature.Sign(signature.SHA512, c.cfg.HashSecret, params)

	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	return &payment.IntentResult{
		Redirect:    true,
		PayURL:      c.cfg.GatewayURL + "?" + q.Encode(),
		ProviderRef: txnRef,
	}, nil
}

// ReturnOutcome is the verified result of the return redirect.
type ReturnOutcome struct {
	Valid         bool
	Success       bool
	TxnRef        string
	TransactionNo string
	ResponseCode  string
	Amount        float64 // VND
}

// VerifyReturn checks the signature on the return query parameters and
// classifies the outcome. An invalid signature yields Valid=false and the
// other fields must not be trusted.
func (c *Client) VerifyReturn(params map[string]string) ReturnOutcome {
	got := params["vnp_SecureHash"]
	if !signature.Verify(signature.SHA512, c.cfg.HashSecret, params, got, signatureKeys...) {
		return ReturnOutcome{Valid: false}
	}

	amount := 0.0
	if raw, err := strconv.ParseInt(params["vnp_Amount"], 10, 64); err == nil {
		amount = float64(raw) / 100
	}
	code := params["vnp_ResponseCode"]
	return ReturnOutcome{
		Valid:         true,
		Success:       code == successCode,
		TxnRef:        params["vnp_TxnRef"],
		TransactionNo: params["vnp_TransactionNo"],
		ResponseCode:  code,
		Amount:        amount,
	}
}
