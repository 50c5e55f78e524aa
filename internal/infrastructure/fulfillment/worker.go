package fulfillment

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/damneddesigns/storefront/internal/domain/checkout"
	"github.com/damneddesigns/storefront/internal/domain/fulfillment"
	"github.com/damneddesigns/storefront/internal/domain/shared"
	"github.com/damneddesigns/storefront/internal/infrastructure/config"
)

const pendingBatchSize = 50

// ExportWorker retries pending order exports in the background. Records
// that exhaust their attempts stay FAILED and are skipped until an
// operator intervenes.
type ExportWorker struct {
	configs   fulfillment.ConfigRepository
	orders    checkout.OrderRepository
	exporter  Exporter
	cfg       config.FulfillmentConfig
	logger    *zap.Logger
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewExportWorker creates the background export worker
func NewExportWorker(
	configs fulfillment.ConfigRepository,
	orders checkout.OrderRepository,
	exporter Exporter,
	cfg config.FulfillmentConfig,
	logger *zap.Logger,
) *ExportWorker {
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = time.Minute
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.ExportTimeout <= 0 {
		cfg.ExportTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportWorker{
		configs:  configs,
		orders:   orders,
		exporter: exporter,
		cfg:      cfg,
		logger:   logger,
	}
}

// Start starts the retry loop
func (w *ExportWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.isRunning {
		w.mu.Unlock()
		return nil
	}
	if !w.cfg.Enabled {
		w.mu.Unlock()
		w.logger.Info("Fulfillment export worker is disabled")
		return nil
	}
	w.isRunning = true
	w.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.wg.Add(1)
	go w.run(ctx)

	w.logger.Info("Fulfillment export worker started",
		zap.Duration("retry_interval", w.cfg.RetryInterval),
		zap.Int("max_attempts", w.cfg.MaxAttempts),
	)
	return nil
}

// Stop gracefully stops the worker
func (w *ExportWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return nil
	}
	w.isRunning = false
	w.mu.Unlock()

	if w.cancel != nil {
		w.cancel()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("Fulfillment export worker stopped gracefully")
		return nil
	case <-ctx.Done():
		w.logger.Warn("Fulfillment export worker stop timed out")
		return ctx.Err()
	}
}

// IsRunning returns whether the worker is running
func (w *ExportWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.isRunning
}

func (w *ExportWorker) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.cfg.RetryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("Fulfillment export loop stopping")
			return
		case <-ticker.C:
			w.ProcessPending(ctx)
		}
	}
}

// ProcessPending exports one batch of pending records. It is safe to call
// directly, for example right after a payment settles.
func (w *ExportWorker) ProcessPending(ctx context.Context) {
	cfg, err := w.configs.GetConfig(ctx)
	if errors.Is(err, shared.ErrNotFound) {
		return
	}
	if err != nil {
		w.logger.Error("Failed to load fulfillment config", zap.Error(err))
		return
	}
	if !cfg.Enabled {
		return
	}

	records, err := w.configs.FindPendingExports(ctx, pendingBatchSize)
	if err != nil {
		w.logger.Error("Failed to load pending exports", zap.Error(err))
		return
	}

	for i := range records {
		record := &records[i]
		if record.Attempts >= w.cfg.MaxAttempts {
			continue
		}
		w.processRecord(ctx, cfg, record)
	}
}

func (w *ExportWorker) processRecord(ctx context.Context, cfg *fulfillment.Config, record *fulfillment.ExportRecord) {
	order, err := w.orders.FindByID(ctx, record.OrderID)
	if err != nil {
		w.logger.Error("Failed to load order for export",
			zap.String("order_code", record.OrderCode),
			zap.Error(err),
		)
		record.MarkFailed("order lookup failed: " + err.Error())
		w.saveRecord(ctx, record)
		return
	}

	exportCtx, cancel := context.WithTimeout(ctx, w.cfg.ExportTimeout)
	err = w.exporter.ExportOrder(exportCtx, cfg, order)
	cancel()

	if err != nil {
		w.logger.Warn("Order export failed",
			zap.String("order_code", record.OrderCode),
			zap.Int("attempts", record.Attempts+1),
			zap.Error(err),
		)
		record.MarkFailed(err.Error())
	} else {
		record.MarkSent()
	}
	w.saveRecord(ctx, record)
}

func (w *ExportWorker) saveRecord(ctx context.Context, record *fulfillment.ExportRecord) {
	if err := w.configs.SaveExport(ctx, record); err != nil {
		w.logger.Error("Failed to save export record",
			zap.String("order_code", record.OrderCode),
			zap.Error(err),
		)
	}
}
