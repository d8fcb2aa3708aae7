// Package revenue aggregates order history into the dashboards the shop
// staff read: today, this week, this month, and a twelve month series.
package revenue

import (
	"context"
	"fmt"
	"time"

	"github.com/hailinh-coffee/coffeeshop-backend/internal/orders"
)

// OrderLister is the slice of the order store the aggregator needs.
type OrderLister interface {
	ListAll(ctx context.Context) ([]orders.Order, error)
}

// WindowStats summarizes the orders created inside one time window.
type WindowStats struct {
	Orders          int     `json:"orders"`
	Revenue         float64 `json:"revenue"`
	Delivered       int     `json:"delivered"`
	PendingDelivery int     `json:"pendingDelivery"`
	Cancelled       int     `json:"cancelled"`
	RefundAmount    float64 `json:"refundAmount"`
}

// Overview is the headline dashboard.
type Overview struct {
	Today     WindowStats `json:"today"`
	ThisWeek  WindowStats `json:"thisWeek"`
	ThisMonth WindowStats `json:"thisMonth"`
	AllTime   WindowStats `json:"allTime"`
}

// MonthPoint is one entry of the twelve month series.
type MonthPoint struct {
	Year  int     `json:"year"`
	Month int     `json:"month"`
	Label string  `json:"label"`
	Stats WindowStats `json:"stats"`
}

// Service computes revenue aggregates over the full order history.
type Service struct {
	orders  OrderLister
	nowFunc func() time.Time
}

// NewService creates a revenue Service.
func NewService(lister OrderLister) *Service {
	return &Service{orders: lister, nowFunc: time.Now}
}

// Overview aggregates today, the current week, and the current month.
// Weeks start on Sunday.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	list, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	now := s.nowFunc()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart := dayStart.AddDate(0, 0, -int(dayStart.Weekday()))
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	return &Overview{
		Today:     aggregate(list, dayStart, dayStart.AddDate(0, 0, 1)),
		ThisWeek:  aggregate(list, weekStart, weekStart.AddDate(0, 0, 7)),
		ThisMonth: aggregate(list, monthStart, monthStart.AddDate(0, 1, 0)),
		AllTime:   aggregate(list, time.Time{}, dayStart.AddDate(0, 0, 1)),
	}, nil
}

// ByMonth aggregates one calendar month. month is 1 through 12.
func (s *Service) ByMonth(ctx context.Context, year, month int) (*WindowStats, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("month must be 1..12, got %d", month)
	}
	list, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, s.nowFunc().Location())
	stats := aggregate(list, start, start.AddDate(0, 1, 0))
	return &stats, nil
}

// Monthly returns the twelve months of one year, January first, labeled
// for the storefront charts.
func (s *Service) Monthly(ctx context.Context, year int) ([]MonthPoint, error) {
	list, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	loc := s.nowFunc().Location()
	points := make([]MonthPoint, 0, 12)
	for m := 1; m <= 12; m++ {
		start := time.Date(year, time.Month(m), 1, 0, 0, 0, 0, loc)
		points = append(points, MonthPoint{
			Year:  year,
			Month: m,
			Label: fmt.Sprintf("Tháng %d", m),
			Stats: aggregate(list, start, start.AddDate(0, 1, 0)),
		})
	}
	return points, nil
}

// aggregate folds orders created in [start, end) into one WindowStats.
// Revenue counts every paid or delivered order, cancelled ones included;
// the refund owed on a cancelled paid order is a separate figure, not a
// deduction.
func aggregate(list []orders.Order, start, end time.Time) WindowStats {
	var w WindowStats
	for _, o := range list {
		if o.CreatedAt.Before(start) || !o.CreatedAt.Before(end) {
			continue
		}
		w.Orders++
		switch o.Status {
		case orders.StatusDelivered:
			w.Delivered++
		case orders.StatusCancelled:
			w.Cancelled++
		default:
			// failed payments are dead orders, not a fulfillment backlog
			if o.PaymentStatus != orders.PaymentFailed {
				w.PendingDelivery++
			}
		}
		if o.Status == orders.StatusCancelled && o.RequiresRefund {
			w.RefundAmount += o.RefundAmount
		}
		if o.Paid() || o.Status == orders.StatusDelivered {
			w.Revenue += o.TotalPrice
		}
	}
	return w
}
