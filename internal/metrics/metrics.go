package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cafe_orders_placed_total",
		Help: "Total number of orders successfully placed",
	})

	OrdersRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cafe_orders_rejected_total",
		Help: "Total number of rejected order placements",
	}, []string{"reason"})

	OrderStatusUpdatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cafe_order_status_updates_total",
		Help: "Total number of order status updates",
	})

	BillsRenderedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cafe_bills_rendered_total",
		Help: "Total number of bill PDFs rendered",
	})

	BillsDeliveredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cafe_bills_delivered_total",
		Help: "Total number of bills delivered by email",
	})

	BillFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cafe_bill_failures_total",
		Help: "Total number of bill rendering or delivery failures",
	}, []string{"stage"})
)
