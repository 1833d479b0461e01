package utils

import (
	"strconv"
	"time"

	"github.com/iov-one/vault"
	"github.com/iov-one/vault/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is a decorator that counts processed transactions by message path,
// phase and result and measures how long the processing took.
type Metrics struct {
	processed *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

var _ vault.Decorator = (*Metrics)(nil)

// NewMetrics creates a Metrics decorator and registers its collectors
// with given registerer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		processed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vault",
			Name:      "tx_processed_total",
			Help:      "Number of processed transactions.",
		}, []string{"phase", "path", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vault",
			Name:      "tx_duration_seconds",
			Help:      "Time spent processing a transaction.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"phase", "path"}),
	}
	for _, c := range []prometheus.Collector{m.processed, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrapf(errors.ErrState, "register collector: %s", err)
		}
	}
	return m, nil
}

// Check records the result of the check phase.
func (m *Metrics) Check(ctx vault.Context, store vault.KVStore, tx vault.Tx, next vault.Checker) (*vault.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, store, tx)
	m.observe("check", tx, start, err)
	return res, err
}

// Deliver records the result of the deliver phase.
func (m *Metrics) Deliver(ctx vault.Context, store vault.KVStore, tx vault.Tx, next vault.Deliverer) (*vault.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, store, tx)
	m.observe("deliver", tx, start, err)
	return res, err
}

func (m *Metrics) observe(phase string, tx vault.Tx, start time.Time, err error) {
	path := vault.GetPath(tx)
	m.duration.WithLabelValues(phase, path).Observe(time.Since(start).Seconds())
	m.processed.WithLabelValues(phase, path, resultLabel(err)).Inc()
}

// resultLabel returns the ABCI code of the result. Unregistered errors
// share the internal error code.
func resultLabel(err error) string {
	code, _ := errors.ABCIInfo(err, false)
	return strconv.FormatUint(uint64(code), 10)
}
