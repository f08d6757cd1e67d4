package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// OrdersTotal counts order lifecycle outcomes by operation and result.
	OrdersTotal *prometheus.CounterVec
	// OrderAcceptConflicts counts acceptance attempts lost to another shipper.
	OrderAcceptConflicts prometheus.Counter
	// PromoResolutionsTotal counts promo apply/preview outcomes.
	PromoResolutionsTotal *prometheus.CounterVec
	// LedgerEntriesTotal counts appended ledger entries by type.
	LedgerEntriesTotal *prometheus.CounterVec
	// PushDeliveriesTotal tracks push relay outcomes.
	PushDeliveriesTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		OrdersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_total",
			Help:      "Count of order operations by outcome.",
		}, []string{"operation", "result"})
		OrderAcceptConflicts = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_accept_conflicts_total",
			Help:      "Acceptance attempts rejected because the order was already assigned.",
		})
		PromoResolutionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "promo_resolutions_total",
			Help:      "Count of promo resolutions by outcome.",
		}, []string{"result"})
		LedgerEntriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_entries_total",
			Help:      "Count of appended ledger entries by type.",
		}, []string{"type"})
		PushDeliveriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "push_deliveries_total",
			Help:      "Count of push notification relay outcomes.",
		}, []string{"result"})

		if c, ok := registerOrReuse(reg, OrdersTotal).(*prometheus.CounterVec); ok {
			OrdersTotal = c
		}
		if c, ok := registerOrReuse(reg, OrderAcceptConflicts).(prometheus.Counter); ok {
			OrderAcceptConflicts = c
		}
		if c, ok := registerOrReuse(reg, PromoResolutionsTotal).(*prometheus.CounterVec); ok {
			PromoResolutionsTotal = c
		}
		if c, ok := registerOrReuse(reg, LedgerEntriesTotal).(*prometheus.CounterVec); ok {
			LedgerEntriesTotal = c
		}
		if c, ok := registerOrReuse(reg, PushDeliveriesTotal).(*prometheus.CounterVec); ok {
			PushDeliveriesTotal = c
		}
	})
}
