package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/rs/zerolog/log"
)

// Metric names emitted by the API.
const (
	MetricOrdersCreated     = "OrdersCreated"
	MetricPaymentSucceeded  = "PaymentSucceeded"
	MetricPaymentFailed     = "PaymentFailed"
	MetricSignatureRejected = "SignatureRejected"
)

// Metrics publishes business counters to CloudWatch. A nil receiver or an
// empty namespace turns every call into a no-op, so handlers never need to
// guard their call sites.
type Metrics struct {
	CW        CloudWatchAPI
	Namespace string
}

// NewMetrics returns a Metrics publisher, or nil when namespace is empty.
func NewMetrics(cw CloudWatchAPI, namespace string) *Metrics {
	if namespace == "" {
		return nil
	}
	return &Metrics{CW: cw, Namespace: namespace}
}

// Count emits a single count datapoint. Failures are logged, not returned:
// metrics are best-effort and must never fail a request.
func (m *Metrics) Count(ctx context.Context, name string, dims map[string]string) {
	if m == nil || m.CW == nil {
		return
	}

	datum := cwtypes.MetricDatum{
		MetricName: awsString(name),
		Unit:       cwtypes.StandardUnitCount,
		Value:      awsFloat(1),
	}
	for k, v := range dims {
		key, val := k, v
		datum.Dimensions = append(datum.Dimensions, cwtypes.Dimension{Name: &key, Value: &val})
	}

	_, err := m.CW.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  &m.Namespace,
		MetricData: []cwtypes.MetricDatum{datum},
	})
	if err != nil {
		log.Warn().Err(err).Str("metric", name).Str("code", ErrorCode(err)).Msg("put metric data failed")
	}
}

func awsFloat(f float64) *float64 { return &f }
