package alumdex

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// sdkMetrics holds prometheus metrics registered for the SDK.
type sdkMetrics struct {
	operations    *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	recomputed    *prometheus.CounterVec
	superseded    *prometheus.CounterVec
	sessionsGauge prometheus.Gauge
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "alumdex",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "Total SDK operations by type and status.",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "alumdex",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "SDK operation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		recomputed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "alumdex",
			Subsystem: "sdk",
			Name:      "session_recomputations_total",
			Help:      "Debounced session recomputations by screen.",
		}, []string{"screen"}),
		superseded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "alumdex",
			Subsystem: "sdk",
			Name:      "session_superseded_total",
			Help:      "Pending recomputations replaced by a newer change, by screen.",
		}, []string{"screen"}),
		sessionsGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "alumdex",
			Subsystem: "sdk",
			Name:      "sessions_active",
			Help:      "Currently mounted sessions.",
		}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.recomputed); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.superseded); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.sessionsGauge); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or reuses an existing one.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("alumdex: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("alumdex: register metric: %w", err)
	}
	return nil
}

// observer provides logging and metrics for SDK operations. It also records
// session activity for the embedded session manager.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	var m *sdkMetrics
	if reg != nil {
		var err error
		m, err = newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
	}
	return &observer{logger: logger, metrics: m}, nil
}

func (o *observer) observe(op string, start time.Time, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)

	if o.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		o.metrics.operations.WithLabelValues(op, status).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(dur.Seconds())
	}

	if o.logger != nil {
		if err != nil {
			o.logger.Warn("operation failed", "op", op, "duration", dur, "error", err)
		} else {
			o.logger.Debug("operation completed", "op", op, "duration", dur)
		}
	}
}

// Recomputed records a finished session recomputation.
func (o *observer) Recomputed(screen string, size int) {
	if o == nil {
		return
	}
	if o.metrics != nil {
		o.metrics.recomputed.WithLabelValues(screen).Inc()
	}
	if o.logger != nil {
		o.logger.Debug("results recomputed", "screen", screen, "results", size)
	}
}

// Superseded records a pending recomputation replaced by a newer change.
func (o *observer) Superseded(screen string) {
	if o == nil || o.metrics == nil {
		return
	}
	o.metrics.superseded.WithLabelValues(screen).Inc()
}

// SessionsActive records the number of mounted sessions.
func (o *observer) SessionsActive(n int) {
	if o == nil || o.metrics == nil {
		return
	}
	o.metrics.sessionsGauge.Set(float64(n))
}
