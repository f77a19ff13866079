package obs

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups Prometheus collectors for checkout sessions.
type Metrics struct {
	ScansTotal          *prometheus.CounterVec
	OffersTotal         *prometheus.CounterVec
	RejectedTotal       *prometheus.CounterVec
	BundlesAppliedTotal *prometheus.CounterVec
	TotalAmount         prometheus.Histogram
}

// NewMetrics registers and returns checkout collectors. Collectors already present in reg
// are reused, so several callers can share one registry.
func NewMetrics(namespace string, buckets []float64, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if len(buckets) == 0 {
		buckets = []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000}
	} else {
		sort.Float64s(buckets)
	}
	m := &Metrics{
		ScansTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_scans_total",
			Help:      "Count of products scanned, by SKU.",
		}, []string{"sku"}),
		OffersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_offers_total",
			Help:      "Count of special offer rules registered, by SKU.",
		}, []string{"sku"}),
		RejectedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_rejected_total",
			Help:      "Count of rejected checkout operations by operation and error code.",
		}, []string{"operation", "code"}),
		BundlesAppliedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_bundles_applied_total",
			Help:      "Count of offer bundles formed in checkout baskets, by SKU.",
		}, []string{"sku"}),
		TotalAmount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "checkout_total_amount",
			Help:      "Distribution of computed checkout totals in minor units.",
			Buckets:   buckets,
		}),
	}

	reuseCounter := func(dst **prometheus.CounterVec) func(prometheus.Collector) {
		return func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				*dst = v
			}
		}
	}
	mustRegisterCollector(reg, m.ScansTotal, reuseCounter(&m.ScansTotal))
	mustRegisterCollector(reg, m.OffersTotal, reuseCounter(&m.OffersTotal))
	mustRegisterCollector(reg, m.RejectedTotal, reuseCounter(&m.RejectedTotal))
	mustRegisterCollector(reg, m.BundlesAppliedTotal, reuseCounter(&m.BundlesAppliedTotal))
	mustRegisterCollector(reg, m.TotalAmount, func(existing prometheus.Collector) {
		if v, ok := existing.(prometheus.Histogram); ok {
			m.TotalAmount = v
		}
	})
	return m
}

// ObserveScan counts a successful scan.
func (m *Metrics) ObserveScan(sku string) {
	if m == nil {
		return
	}
	m.ScansTotal.WithLabelValues(sku).Inc()
}

// ObserveOffer counts a successful offer registration.
func (m *Metrics) ObserveOffer(sku string) {
	if m == nil {
		return
	}
	m.OffersTotal.WithLabelValues(sku).Inc()
}

// ObserveRejected counts an operation that returned an error.
func (m *Metrics) ObserveRejected(operation, code string) {
	if m == nil {
		return
	}
	m.RejectedTotal.WithLabelValues(operation, code).Inc()
}

// ObserveTotal records a computed total.
func (m *Metrics) ObserveTotal(total int64) {
	if m == nil {
		return
	}
	m.TotalAmount.Observe(float64(total))
}

// ObserveBundles counts n newly formed offer bundles for sku.
func (m *Metrics) ObserveBundles(sku string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.BundlesAppliedTotal.WithLabelValues(sku).Add(float64(n))
}

// ParseBucketsCSV converts a comma-separated list of bucket boundaries into floats.
func ParseBucketsCSV(csv string) []float64 {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]float64, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		v, err := strconv.ParseFloat(trimmed, 64)
		if err != nil || v <= 0 {
			continue
		}
		out = append(out, v)
	}
	return out
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register checkout metric: %w", err))
	}
}
