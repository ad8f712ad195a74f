// Package worker runs reconciliation on a schedule so month boundaries are
// picked up even when no request triggers a ledger load.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"quantofalta/internal/clock"
	"quantofalta/internal/export"
	applog "quantofalta/internal/log"
	"quantofalta/internal/services"
)

// Config holds configuration for the reconcile worker.
type Config struct {
	// Interval is how often to run a reconciliation pass (default: 1h).
	Interval time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{Interval: time.Hour}
}

// ReconcileWorker periodically reconciles the ledger and exports the affected
// month when the marker advances. Reconciliation is idempotent, so a short
// interval only costs a marker comparison.
type ReconcileWorker struct {
	service  *services.LedgerService
	exporter export.SnapshotWriter // nil disables export
	config   Config

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func New(service *services.LedgerService, exporter export.SnapshotWriter, config Config) *ReconcileWorker {
	if config.Interval <= 0 {
		config.Interval = DefaultConfig().Interval
	}
	return &ReconcileWorker{
		service:  service,
		exporter: exporter,
		config:   config,
	}
}

// Start begins the processing loop. Returns an error if already running.
func (w *ReconcileWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("reconcile worker is already running")
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	go w.runLoop(ctx)

	slog.InfoContext(ctx, "Reconcile worker started", "interval", w.config.Interval)
	return nil
}

// Stop gracefully stops the worker and waits for completion.
func (w *ReconcileWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)

	select {
	case <-w.doneCh:
		slog.InfoContext(ctx, "Reconcile worker stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Reconcile worker stop timed out")
		return ctx.Err()
	}

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	return nil
}

// IsRunning returns whether the worker is currently running.
func (w *ReconcileWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *ReconcileWorker) runLoop(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	// Run immediately on startup
	w.runOnce(ctx)

	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

// runOnce performs a single pass: reload the snapshot, reconcile, and export
// the month when the pass changed anything. The reload matters because the
// HTTP server writes to the same database; reconciling the startup copy would
// save it back and drop everything the server persisted since.
func (w *ReconcileWorker) runOnce(ctx context.Context) {
	result, err := w.service.RefreshAndReconcile(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Reconciliation failed",
			applog.NewFields().
				WithComponent(applog.ComponentWorker).
				WithOperation(applog.OpReconcile).
				WithError(err).
				ToSlice()...)
		return
	}
	if !result.Changed {
		return
	}

	fields := applog.NewFields().
		WithComponent(applog.ComponentWorker).
		WithOperation(applog.OpReconcile).
		WithMonth(result.Month)
	fields[applog.FieldPromoted] = result.Promoted
	fields[applog.FieldGenerated] = result.Generated
	slog.InfoContext(ctx, "Month reconciled by worker", fields.ToSlice()...)

	if w.exporter == nil {
		return
	}

	t, err := clock.ParseMonthKey(result.Month)
	if err != nil {
		slog.ErrorContext(ctx, "Invalid month key from reconciliation", "month", result.Month, "error", err)
		return
	}
	transactions := w.service.MonthTransactions(t.Year(), int(t.Month()))
	if err := w.exporter.WriteTransactions(ctx, result.Month, transactions); err != nil {
		// Export is best-effort; the ledger itself is already persisted.
		slog.ErrorContext(ctx, "Month export failed",
			applog.NewFields().
				WithComponent(applog.ComponentExport).
				WithOperation(applog.OpExport).
				WithMonth(result.Month).
				WithError(err).
				ToSlice()...)
	}
}
