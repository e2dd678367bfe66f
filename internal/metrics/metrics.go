// Package metrics holds the shop's business metrics.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"shopapi/internal/model"
)

// Orders counts placed orders and their amounts.
type Orders struct {
	placed prometheus.Counter
	total  prometheus.Histogram
	items  prometheus.Histogram
}

// NewOrders creates the collectors and registers them with reg.
func NewOrders(reg prometheus.Registerer) (*Orders, error) {
	m := &Orders{
		placed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shop_orders_placed_total",
			Help: "Total number of orders placed.",
		}),
		total: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "shop_order_total_amount",
			Help:    "Order totals in currency units.",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000},
		}),
		items: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "shop_order_items",
			Help:    "Units per order.",
			Buckets: prometheus.LinearBuckets(1, 2, 8),
		}),
	}

	for _, c := range []prometheus.Collector{m.placed, m.total, m.items} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// OrderPlaced records o. It never fails.
func (m *Orders) OrderPlaced(_ context.Context, o model.Order) error {
	units := 0
	for _, l := range o.Products {
		units += l.Quantity
	}
	m.placed.Inc()
	m.total.Observe(o.Total.InexactFloat64())
	m.items.Observe(float64(units))
	return nil
}
