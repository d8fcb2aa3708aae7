package orders

import "time"

// Payment methods accepted at checkout.
const (
	MethodCOD    = "cod"
	MethodVNPay  = "vnpay"
	MethodMoMo   = "momo"
	MethodPayPal = "paypal"
)

// Payment states carried on the order.
const (
	PaymentUnpaid    = "unpaid"
	PaymentPaid      = "paid"
	PaymentFailed    = "failed"
	PaymentCancelled = "cancelled"
)

// Item is one order line.
type Item struct {
	ProductID string  `dynamodbav:"product_id" json:"productId"`
	Name      string  `dynamodbav:"name" json:"name"`
	Price     float64 `dynamodbav:"price" json:"price"`
	Quantity  int     `dynamodbav:"quantity" json:"quantity"`
	Size      string  `dynamodbav:"size,omitempty" json:"size,omitempty"`
	Image     string  `dynamodbav:"image,omitempty" json:"image,omitempty"`
}

// ShippingInfo is the delivery contact block captured at checkout.
type ShippingInfo struct {
	FullName string `dynamodbav:"full_name" json:"fullName"`
	Phone    string `dynamodbav:"phone" json:"phone"`
	Address  string `dynamodbav:"address" json:"address"`
	Note     string `dynamodbav:"note,omitempty" json:"note,omitempty"`
}

// Order is the item stored in the orders table.
type Order struct {
	OrderID        string       `dynamodbav:"order_id" json:"orderId"` // PK
	UserID         string       `dynamodbav:"user_id" json:"userId"`
	Items          []Item       `dynamodbav:"items" json:"items"`
	ShippingInfo   ShippingInfo `dynamodbav:"shipping_info" json:"shippingInfo"`
	Subtotal       float64      `dynamodbav:"subtotal" json:"subtotal"`
	ShippingFee    float64      `dynamodbav:"shipping_fee" json:"shippingFee"`
	Discount       float64      `dynamodbav:"discount,omitempty" json:"discount,omitempty"`
	PromoCode      string       `dynamodbav:"promo_code,omitempty" json:"promoCode,omitempty"`
	TotalPrice     float64      `dynamodbav:"total_price" json:"totalPrice"`
	PaymentMethod  string       `dynamodbav:"payment_method" json:"paymentMethod"`
	PaymentStatus  string       `dynamodbav:"payment_status" json:"paymentStatus"`
	Status         Status       `dynamodbav:"status" json:"status"`
	StatusLabel    string       `dynamodbav:"status_label,omitempty" json:"statusLabel,omitempty"`
	VNPayTxnRef    string       `dynamodbav:"vnpay_txn_ref,omitempty" json:"-"`
	MoMoRequestID  string       `dynamodbav:"momo_request_id,omitempty" json:"-"`
	PayPalOrderID  string       `dynamodbav:"paypal_order_id,omitempty" json:"-"`
	TransactionID  string       `dynamodbav:"transaction_id,omitempty" json:"transactionId,omitempty"`
	PaidAt         *time.Time   `dynamodbav:"paid_at,omitempty" json:"paidAt,omitempty"`
	CancelledAt    *time.Time   `dynamodbav:"cancelled_at,omitempty" json:"cancelledAt,omitempty"`
	RequiresRefund bool         `dynamodbav:"requires_refund,omitempty" json:"requiresRefund,omitempty"`
	RefundAmount   float64      `dynamodbav:"refund_amount,omitempty" json:"refundAmount,omitempty"`
	CreatedAt      time.Time    `dynamodbav:"created_at" json:"createdAt"`
	UpdatedAt      time.Time    `dynamodbav:"updated_at" json:"updatedAt"`
}

// Paid reports whether money has been captured for this order.
func (o *Order) Paid() bool { return o.PaymentStatus == PaymentPaid }

// OnlineMethod reports whether the payment method settles through an
// external gateway, which matters for refund bookkeeping on cancel.
func OnlineMethod(method string) bool {
	return method == MethodPayPal || method == MethodMoMo
}

// ValidMethod reports whether method is one we accept at checkout.
func ValidMethod(method string) bool {
	switch method {
	case MethodCOD, MethodVNPay, MethodMoMo, MethodPayPal:
		return true
	}
	return false
}
