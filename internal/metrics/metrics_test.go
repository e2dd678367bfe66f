package metrics

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopapi/internal/model"
)

func TestOrders_OrderPlaced(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewOrders(reg)
	require.NoError(t, err)

	o := model.Order{
		ID: "o-1",
		Products: []model.OrderLine{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p2", Quantity: 1},
		},
		Total: decimal.RequireFromString("89.97"),
	}
	require.NoError(t, m.OrderPlaced(context.Background(), o))
	require.NoError(t, m.OrderPlaced(context.Background(), o))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.placed))

	expected := `
# HELP shop_order_total_amount Order totals in currency units.
# TYPE shop_order_total_amount histogram
shop_order_total_amount_bucket{le="10"} 0
shop_order_total_amount_bucket{le="25"} 0
shop_order_total_amount_bucket{le="50"} 0
shop_order_total_amount_bucket{le="100"} 2
shop_order_total_amount_bucket{le="250"} 2
shop_order_total_amount_bucket{le="500"} 2
shop_order_total_amount_bucket{le="1000"} 2
shop_order_total_amount_bucket{le="+Inf"} 2
shop_order_total_amount_sum 179.94
shop_order_total_amount_count 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "shop_order_total_amount"))
}

func TestNewOrders_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewOrders(reg)
	require.NoError(t, err)

	_, err = NewOrders(reg)
	assert.Error(t, err)
}
