package metrics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/MacroPower/acctsim/pkg/ledger"
)

const namespace = "acctsim"

// Collector counts ledger operations. Register [Collector.Observe] as a
// ledger subscriber. Create instances with [NewCollector].
type Collector struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	amounts    *prometheus.CounterVec
	balance    prometheus.Gauge
	inFlight   prometheus.Gauge
}

// NewCollector creates a [Collector] with its own registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Ledger operations processed, by operation and outcome.",
		}, []string{"operation", "outcome"}),
		amounts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "amount_total",
			Help:      "Sum of amounts applied to the balance, by operation.",
		}, []string{"operation"}),
		balance: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "balance",
			Help:      "Last observed balance.",
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "withdrawals_in_flight",
			Help:      "Withdrawals currently admitted through the gate.",
		}),
	}
	c.registry.MustRegister(c.operations, c.amounts, c.balance, c.inFlight)

	return c
}

// Registry returns the registry holding the collector's metrics.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// SetBalance records a balance observed outside of ledger events, such as the
// initial balance.
func (c *Collector) SetBalance(balance int) {
	c.balance.Set(float64(balance))
}

// Observe updates metrics from a ledger event. Unknown events are ignored.
func (c *Collector) Observe(evt any) {
	switch e := evt.(type) {
	case ledger.EventRead:
		c.operations.WithLabelValues("read", "ok").Inc()
		c.balance.Set(float64(e.Balance))

	case ledger.EventDeposited:
		c.operations.WithLabelValues("deposit", "ok").Inc()
		c.amounts.WithLabelValues("deposit").Add(float64(e.Amount))
		c.balance.Set(float64(e.Balance))

	case ledger.EventWithdrawAdmitted:
		c.inFlight.Inc()

	case ledger.EventWithdrawn:
		c.operations.WithLabelValues("withdraw", e.Result.Outcome.String()).Inc()
		if e.Result.Outcome == ledger.Applied {
			c.amounts.WithLabelValues("withdraw").Add(float64(e.Result.Amount))
		}

		c.balance.Set(float64(e.Result.Balance))

	case ledger.EventWithdrawReleased:
		c.inFlight.Dec()
	}
}

// Sample is a single gathered metric value.
type Sample struct {
	Name   string
	Labels string
	Value  float64
}

// Snapshot gathers all metrics, sorted by name and labels.
func (c *Collector) Snapshot() ([]Sample, error) {
	families, err := c.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}

	samples := []Sample{}

	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			samples = append(samples, Sample{
				Name:   mf.GetName(),
				Labels: formatLabels(m.GetLabel()),
				Value:  metricValue(mf.GetType(), m),
			})
		}
	}

	sort.Slice(samples, func(i, j int) bool {
		if samples[i].Name != samples[j].Name {
			return samples[i].Name < samples[j].Name
		}

		return samples[i].Labels < samples[j].Labels
	})

	return samples, nil
}

func formatLabels(pairs []*dto.LabelPair) string {
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, fmt.Sprintf("%s=%q", p.GetName(), p.GetValue()))
	}

	return strings.Join(parts, ",")
}

func metricValue(t dto.MetricType, m *dto.Metric) float64 {
	switch t { //nolint:exhaustive // Only counters and gauges are registered.
	case dto.MetricType_COUNTER:
		return m.GetCounter().GetValue()
	case dto.MetricType_GAUGE:
		return m.GetGauge().GetValue()
	default:
		return 0
	}
}
