package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope for application metrics.
const MeterName = "maia-backend"

// Auth outcomes recorded on maia.auth.attempts.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// DomainMetrics records authentication and ledger activity. A nil
// *DomainMetrics is valid and records nothing.
type DomainMetrics struct {
	authAttempts  *Counter
	authDuration  *Histogram
	ledgerWrites  *Counter
	accessDenials *Counter
}

// NewDomainMetrics creates the application instruments on meter.
func NewDomainMetrics(meter metric.Meter) (*DomainMetrics, error) {
	authAttempts, err := NewCounter(meter, "maia.auth.attempts", "Register, login and session resolution attempts", "{attempt}")
	if err != nil {
		return nil, err
	}
	authDuration, err := NewHistogram(meter, HistogramOpts{
		Name:        "maia.auth.duration",
		Description: "Time spent in authentication operations, dominated by password hashing",
		Unit:        "s",
		Boundaries:  []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
	})
	if err != nil {
		return nil, err
	}
	ledgerWrites, err := NewCounter(meter, "maia.ledger.writes", "Ledger records created, updated or deleted", "{record}")
	if err != nil {
		return nil, err
	}
	accessDenials, err := NewCounter(meter, "maia.access.denied", "Ownership checks that did not allow access", "{check}")
	if err != nil {
		return nil, err
	}

	return &DomainMetrics{
		authAttempts:  authAttempts,
		authDuration:  authDuration,
		ledgerWrites:  ledgerWrites,
		accessDenials: accessDenials,
	}, nil
}

// RecordAuth records one authentication operation and its latency.
func (m *DomainMetrics) RecordAuth(ctx context.Context, operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.authAttempts.Inc(ctx, AttrOperation.String(operation), AttrOutcome.String(outcome))
	m.authDuration.RecordDuration(ctx, elapsed, AttrOperation.String(operation))
}

// RecordLedgerWrite counts a successful ledger mutation.
func (m *DomainMetrics) RecordLedgerWrite(ctx context.Context, kind, operation, ownerKind string) {
	if m == nil {
		return
	}
	m.ledgerWrites.Inc(ctx,
		AttrLedgerKind.String(kind),
		AttrOperation.String(operation),
		AttrOwnerKind.String(ownerKind),
	)
}

// RecordAccessDenied counts a Forbidden or NotFound ownership decision.
func (m *DomainMetrics) RecordAccessDenied(ctx context.Context, resource, decision string) {
	if m == nil {
		return
	}
	m.accessDenials.Inc(ctx, AttrResource.String(resource), AttrDecision.String(decision))
}

// RegisterPoolMetrics exports connection pool statistics as observable
// gauges. stats is called on every collection cycle.
func RegisterPoolMetrics(meter metric.Meter, stats func() sql.DBStats) (metric.Registration, error) {
	connections, err := meter.Int64ObservableGauge("maia.db.pool.connections",
		metric.WithDescription("Database connections by state"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool connections gauge: %w", err)
	}
	maxOpen, err := meter.Int64ObservableGauge("maia.db.pool.max_open",
		metric.WithDescription("Maximum number of open connections"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool max gauge: %w", err)
	}
	waits, err := meter.Int64ObservableCounter("maia.db.pool.wait_count",
		metric.WithDescription("Total connections waited for"),
		metric.WithUnit("{wait}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool wait counter: %w", err)
	}

	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := stats()
		o.ObserveInt64(connections, int64(s.InUse), metric.WithAttributes(AttrDBState.String("in_use")))
		o.ObserveInt64(connections, int64(s.Idle), metric.WithAttributes(AttrDBState.String("idle")))
		o.ObserveInt64(maxOpen, int64(s.MaxOpenConnections))
		o.ObserveInt64(waits, s.WaitCount)
		return nil
	}, connections, maxOpen, waits)
}
