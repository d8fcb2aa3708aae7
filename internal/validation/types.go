package validation

// ItemRequest is a single order line in a checkout payload.
type ItemRequest struct {
	ProductID string  `json:"productId" validate:"required"`
	Name      string  `json:"name" validate:"required"`
	Price     float64 `json:"price" validate:"required,gt=0"`
	Quantity  int     `json:"quantity" validate:"required,min=1"`
	Size      string  `json:"size,omitempty"`
	Image     string  `json:"image,omitempty"`
}

// ShippingInfoRequest is the delivery contact block.
type ShippingInfoRequest struct {
	FullName string `json:"fullName" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
	Address  string `json:"address" validate:"required"`
	Note     string `json:"note,omitempty"`
}

// CreateOrderRequest is the payload for POST /api/orders.
type CreateOrderRequest struct {
	Items         []ItemRequest       `json:"items" validate:"required,min=1,dive"`
	ShippingInfo  ShippingInfoRequest `json:"shippingInfo" validate:"required"`
	ShippingFee   float64             `json:"shippingFee" validate:"gte=0"`
	PromoCode     string              `json:"promoCode,omitempty"`
	Discount      float64             `json:"discount" validate:"gte=0"`
	TotalPrice    float64             `json:"totalPrice" validate:"required,gt=0"`
	PaymentMethod string              `json:"paymentMethod" validate:"required,oneof=cod vnpay momo paypal"`
}

// UpdateStatusRequest is the staff payload for PATCH /api/orders/:id/status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Force  bool   `json:"force,omitempty"`
}

// UpdateOrderRequest is the payload for PUT /api/admin/orders/:id.
type UpdateOrderRequest struct {
	ShippingInfo ShippingInfoRequest `json:"shippingInfo" validate:"required"`
}

// ValidatePromoRequest is the payload for POST /api/promo-code/validate.
type ValidatePromoRequest struct {
	Code        string  `json:"code" validate:"required"`
	OrderAmount float64 `json:"orderAmount" validate:"required,gt=0"`
}

// PromoCodeRequest is the admin payload for creating or updating a code.
type PromoCodeRequest struct {
	Code              string   `json:"code" validate:"required"`
	Description       string   `json:"description,omitempty"`
	DiscountType      string   `json:"discountType" validate:"required,oneof=percentage fixed"`
	DiscountValue     float64  `json:"discountValue" validate:"required,gt=0"`
	MaxDiscountAmount *float64 `json:"maxDiscountAmount,omitempty" validate:"omitempty,gt=0"`
	MinOrderAmount    float64  `json:"minOrderAmount" validate:"gte=0"`
	StartDate         string   `json:"startDate" validate:"required"`
	EndDate           string   `json:"endDate" validate:"required"`
	UsageLimit        *int     `json:"usageLimit,omitempty" validate:"omitempty,gt=0"`
	AllowedUsers      []string `json:"allowedUsers,omitempty"`
	Active            bool     `json:"active"`
}

// CreateReviewRequest is the payload for POST /api/reviews.
type CreateReviewRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment,omitempty" validate:"max=2000"`
}

// UpdateReviewRequest is the payload for PUT /api/reviews/:id.
type UpdateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment,omitempty" validate:"max=2000"`
}

// CreatePaymentRequest is the payload for POST /api/payment/create and the
// per-provider create endpoints.
type CreatePaymentRequest struct {
	OrderID string `json:"orderId" validate:"required"`
}

// RegisterRequest is the payload for POST /api/auth/register.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest is the payload for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
