package validation

import (
	"fmt"
	"math"

	validatorv10 "github.com/go-playground/validator/v10"
)

// totalTolerance absorbs one VND of rounding drift between the client's
// displayed total and the server-side sum.
const totalTolerance = 1.0

// New returns a configured validator with custom struct-level validation
// registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()
	v.RegisterStructValidation(createOrderStructValidation, CreateOrderRequest{})
	return v
}

// createOrderStructValidation rejects a request whose claimed total drifts
// from subtotal + shipping - discount beyond tolerance.
func createOrderStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(CreateOrderRequest)

	var sum float64
	for _, it := range req.Items {
		sum += float64(it.Quantity) * it.Price
	}
	expected := sum + req.ShippingFee - req.Discount
	if expected < 0 {
		expected = 0
	}
	if math.Abs(expected-req.TotalPrice) > totalTolerance {
		sl.ReportError(req.TotalPrice, "totalPrice", "TotalPrice", "total_match_items",
			fmt.Sprintf("computed total %.0f != claimed %.0f", expected, req.TotalPrice))
	}
}
