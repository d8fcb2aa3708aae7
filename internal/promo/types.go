package promo

import "time"

// Discount types.
const (
	TypePercentage = "percentage"
	TypeFixed      = "fixed"
)

// PromoCode is the item stored in the promo codes table, keyed by the
// uppercase code.
type PromoCode struct {
	Code              string     `dynamodbav:"code" json:"code"` // PK, uppercase
	Description       string     `dynamodbav:"description,omitempty" json:"description,omitempty"`
	DiscountType      string     `dynamodbav:"discount_type" json:"discountType"`
	DiscountValue     float64    `dynamodbav:"discount_value" json:"discountValue"`
	MaxDiscountAmount *float64   `dynamodbav:"max_discount_amount,omitempty" json:"maxDiscountAmount,omitempty"`
	MinOrderAmount    float64    `dynamodbav:"min_order_amount,omitempty" json:"minOrderAmount,omitempty"`
	StartDate         time.Time  `dynamodbav:"start_date" json:"startDate"`
	EndDate           time.Time  `dynamodbav:"end_date" json:"endDate"`
	UsageLimit        *int       `dynamodbav:"usage_limit,omitempty" json:"usageLimit,omitempty"`
	UsedCount         int        `dynamodbav:"used_count" json:"usedCount"`
	AllowedUsers      []string   `dynamodbav:"allowed_users,omitempty" json:"allowedUsers,omitempty"`
	Active            bool       `dynamodbav:"active" json:"active"`
	CreatedAt         time.Time  `dynamodbav:"created_at" json:"createdAt"`
	UpdatedAt         time.Time  `dynamodbav:"updated_at" json:"updatedAt"`
}

// InWindow reports whether the code is usable at t.
func (p *PromoCode) InWindow(t time.Time) bool {
	return !t.Before(p.StartDate) && !t.After(p.EndDate)
}

// Exhausted reports whether the usage limit has been reached. A nil limit
// means unlimited use.
func (p *PromoCode) Exhausted() bool {
	return p.UsageLimit != nil && p.UsedCount >= *p.UsageLimit
}

// AllowsUser reports whether userID may redeem the code. An empty allow
// list means everyone.
func (p *PromoCode) AllowsUser(userID string) bool {
	if len(p.AllowedUsers) == 0 {
		return true
	}
	for _, u := range p.AllowedUsers {
		if u == userID {
			return true
		}
	}
	return false
}

// Discount computes the discount for orderAmount: percentage discounts are
// capped at MaxDiscountAmount when set, and no discount ever exceeds the
// order amount.
func (p *PromoCode) Discount(orderAmount float64) float64 {
	var d float64
	switch p.DiscountType {
	case TypePercentage:
		d = orderAmount * p.DiscountValue / 100
		if p.MaxDiscountAmount != nil && d > *p.MaxDiscountAmount {
			d = *p.MaxDiscountAmount
		}
	case TypeFixed:
		d = p.DiscountValue
	}
	if d > orderAmount {
		d = orderAmount
	}
	if d < 0 {
		d = 0
	}
	return d
}
