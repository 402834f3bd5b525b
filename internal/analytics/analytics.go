// Package analytics computes the read-only sales rollup shown on the POS
// dashboard. Everything is derived from ledger aggregates; nothing here
// writes.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/rloza/tiendapos/internal/catalog"
	"github.com/rloza/tiendapos/internal/order"
)

const (
	trendDays   = 30
	topProducts = 5
)

// Summary is the dashboard payload.
type Summary struct {
	Revenue     float64              `json:"revenue"`
	Orders      int64                `json:"orders"`
	Products    int64                `json:"products"`
	SalesTrend  []order.DayRevenue   `json:"sales_trend"`
	TopProducts []order.ProductUnits `json:"top_products"`
}

type Service struct {
	orders   order.Repository
	products catalog.Repository
	now      func() time.Time
}

func NewService(orders order.Repository, products catalog.Repository) *Service {
	return &Service{orders: orders, products: products, now: time.Now}
}

// Summary aggregates total revenue, order and product counts, the daily
// sales trend over the last 30 days and the top 5 products by units sold.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	revenue, err := s.orders.TotalRevenue(ctx)
	if err != nil {
		return nil, fmt.Errorf("analytics: %w", err)
	}
	orderCount, err := s.orders.CountOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("analytics: %w", err)
	}
	productCount, err := s.products.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("analytics: %w", err)
	}
	since := s.now().UTC().AddDate(0, 0, -trendDays).Format("2006-01-02")
	trend, err := s.orders.RevenueByDay(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("analytics: %w", err)
	}
	top, err := s.orders.UnitsByProduct(ctx, topProducts)
	if err != nil {
		return nil, fmt.Errorf("analytics: %w", err)
	}

	return &Summary{
		Revenue:     revenue,
		Orders:      orderCount,
		Products:    productCount,
		SalesTrend:  trend,
		TopProducts: top,
	}, nil
}
