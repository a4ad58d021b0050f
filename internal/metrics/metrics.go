// Package metrics exposes Prometheus collectors for the storefront.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the storefront's Prometheus collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	viewsRendered        *prometheus.CounterVec
	cartMutations        *prometheus.CounterVec
	cartLoadFailures     prometheus.Counter
	storageWriteFailures prometheus.Counter
	ordersPlaced         prometheus.Counter
	orderValue           prometheus.Histogram
}

// New registers the storefront collectors with the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the storefront collectors with registerer.
// Collectors that are already registered are reused.
func NewWithRegisterer(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &Metrics{
		viewsRendered: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "storefront_views_rendered_total",
			Help: "Total number of full view renders by view",
		}, []string{"view"}),
		cartMutations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "storefront_cart_mutations_total",
			Help: "Total number of cart mutations by operation",
		}, []string{"op"}),
		cartLoadFailures: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_cart_load_failures_total",
			Help: "Total number of unreadable or malformed carts reset to empty",
		}),
		storageWriteFailures: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_storage_write_failures_total",
			Help: "Total number of failed cart writes",
		}),
		ordersPlaced: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_orders_placed_total",
			Help: "Total number of confirmed orders",
		}),
		orderValue: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "storefront_order_value",
			Help:    "Total value of confirmed orders",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250},
		}),
	}
}

// ViewRendered counts one render of view.
func (m *Metrics) ViewRendered(view string) {
	if m == nil {
		return
	}
	m.viewsRendered.WithLabelValues(view).Inc()
}

// CartMutated counts one cart mutation of kind op.
func (m *Metrics) CartMutated(op string) {
	if m == nil {
		return
	}
	m.cartMutations.WithLabelValues(op).Inc()
}

// CartLoadFailed counts a cart that had to be reset on load.
func (m *Metrics) CartLoadFailed() {
	if m == nil {
		return
	}
	m.cartLoadFailures.Inc()
}

// StorageWriteFailed counts a failed cart save.
func (m *Metrics) StorageWriteFailed() {
	if m == nil {
		return
	}
	m.storageWriteFailures.Inc()
}

// OrderPlaced records a confirmed order and its total.
func (m *Metrics) OrderPlaced(total float64) {
	if m == nil {
		return
	}
	m.ordersPlaced.Inc()
	m.orderValue.Observe(total)
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}
