// Package momo integrates the MoMo wallet: a server-to-server create call
// returning a payUrl, and a signed IPN that settles the order. MoMo signs
// a raw string with a fixed field order using HMAC-SHA256.
package momo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/hailinh-coffee/coffeeshop-backend/internal/config"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/payment"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/payment/signature"
)

const requestType = "captureWallet"

// Client implements the MoMo gateway.
type Client struct {
	cfg        config.MoMoConfig
	returnURL  string
	notifyURL  string
	httpClient *http.Client
}

// New creates a MoMo client. Calls to the create endpoint time out after
// 15 seconds so a slow provider cannot pin checkout requests.
func New(cfg config.MoMoConfig, returnURL, notifyURL string) *Client {
	return &Client{
		cfg:        cfg,
		returnURL:  returnURL,
		notifyURL:  notifyURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) Name() string { return "momo" }

type createRequest struct {
	PartnerCode string `json:"partnerCode"`
	RequestID   string `json:"requestId"`
	Amount      int64  `json:"amount"`
	OrderID     string `json:"orderId"`
	OrderInfo   string `json:"orderInfo"`
	RedirectURL string `json:"redirectUrl"`
	IPNURL      string `json:"ipnUrl"`
	RequestType string `json:"requestType"`
	ExtraData   string `json:"extraData"`
	Lang        string `json:"lang"`
	Signature   string `json:"signature"`
}

type createResponse struct {
	ResultCode int    `json:"resultCode"`
	Message    string `json:"message"`
	PayURL     string `json:"payUrl"`
}

// createRaw builds the create-request signing string. The field order is
// fixed by the provider, not sorted.
func createRaw(accessKey string, r createRequest) string {
	return "accessKey=" + accessKey +
		"&amount=" + strconv.FormatInt(r.Amount, 10) +
		"&extraData=" + r.ExtraData +
		"&ipnUrl=" + r.IPNURL +
		"&orderId=" + r.OrderID +
		"&orderInfo=" + r.OrderInfo +
		"&partnerCode=" + r.PartnerCode +
		"&redirectUrl=" + r.RedirectURL +
		"&requestId=" + r.RequestID +
		"&requestType=" + r.RequestType
}

// CreateIntent posts a signed create request and returns the wallet URL.
func (c *Client) CreateIntent(ctx context.Context, req payment.IntentRequest) (*payment.IntentResult, error) {
	body := createRequest{
		PartnerCode: c.cfg.PartnerCode,
		RequestID:   uuid.NewString(),
		Amount:      int64(req.Amount),
		OrderID:     req.OrderID,
		OrderInfo:   req.OrderInfo,
		RedirectURL: c.returnURL,
		IPNURL:      c.notifyURL,
		RequestType: requestType,
		ExtraData:   "",
		Lang:        "vi",
	}
	body.Signature = signature.HMACHex(signature.SHA256, c.cfg.SecretKey, createRaw(c.cfg.AccessKey, body))

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal momo request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build momo request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call momo: %w", err)
	}
	defer resp.Body.Close()

	var out createResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode momo response: %w", err)
	}
	if out.ResultCode != 0 {
		return nil, fmt.Errorf("momo rejected create: %d %s", out.ResultCode, out.Message)
	}
	return &payment.IntentResult{
		Redirect:    true,
		PayURL:      out.PayURL,
		ProviderRef: body.RequestID,
	}, nil
}

// IPN is the notification MoMo posts after the wallet flow finishes.
type IPN struct {
	PartnerCode  string `json:"partnerCode"`
	OrderID      string `json:"orderId"`
	RequestID    string `json:"requestId"`
	Amount       int64  `json:"amount"`
	OrderInfo    string `json:"orderInfo"`
	OrderType    string `json:"orderType"`
	TransID      int64  `json:"transId"`
	ResultCode   int    `json:"resultCode"`
	Message      string `json:"message"`
	PayType      string `json:"payType"`
	ResponseTime int64  `json:"responseTime"`
	ExtraData    string `json:"extraData"`
	Signature    string `json:"signature"`
}

// Success reports whether the wallet captured the payment.
func (n *IPN) Success() bool { return n.ResultCode == 0 }

// ipnRaw builds the IPN signing string in the provider's fixed order.
func ipnRaw(accessKey string, n IPN) string {
	return "accessKey=" + accessKey +
		"&amount=" + strconv.FormatInt(n.Amount, 10) +
		"&extraData=" + n.ExtraData +
		"&message=" + n.Message +
		"&orderId=" + n.OrderID +
		"&orderInfo=" + n.OrderInfo +
		"&orderType=" + n.OrderType +
		"&partnerCode=" + n.PartnerCode +
		"&payType=" + n.PayType +
		"&requestId=" + n.RequestID +
		"&responseTime=" + strconv.FormatInt(n.ResponseTime, 10) +
		"&resultCode=" + strconv.Itoa(n.ResultCode) +
		"&transId=" + strconv.FormatInt(n.TransID, 10)
}

// VerifyIPN checks the notification signature.
func (c *Client) VerifyIPN(n IPN) bool {
	return signature.VerifyRaw(signature.SHA256, c.cfg.SecretKey, ipnRaw(c.cfg.AccessKey, n), n.Signature)
}

// SignIPN exists for tests and local tooling that fabricate notifications.
func (c *Client) SignIPN(n IPN) string {
	return signature.HMACHex(signature.SHA256, c.cfg.SecretKey, ipnRaw(c.cfg.AccessKey, n))
}
