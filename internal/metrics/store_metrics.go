package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ReasonInsufficientStock = "insufficient_stock"
	ReasonInvalidQuantity   = "invalid_quantity"
	ReasonNotFound          = "not_found"
	ReasonWrongPassword     = "wrong_password"
	ReasonDuplicateName     = "duplicate_name"
	ReasonInvalidProduct    = "invalid_product"
)

var (
	// ProductsCreated is a Prometheus counter for tracking the total number of products created.
	ProductsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "store_products_created_total",
		Help: "The total number of products created through the admin form",
	})

	// SalesRecorded counts completed purchases.
	SalesRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "store_sales_total",
		Help: "The total number of completed purchases",
	})

	// Revenue accumulates sale totals.
	Revenue = promauto.NewCounter(prometheus.CounterOpts{
		Name: "store_revenue_total",
		Help: "Sum of all sale totals",
	})

	// PurchasesRejected counts purchases refused before any mutation.
	PurchasesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "store_purchases_rejected_total",
		Help: "The total number of rejected purchases by reason",
	}, []string{"reason"})

	// AdminRejections counts product creations that did not insert a row.
	AdminRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "store_admin_rejections_total",
		Help: "The total number of rejected product creations by reason",
	}, []string{"reason"})
)
