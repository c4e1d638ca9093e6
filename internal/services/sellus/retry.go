package sellus

import (
	"context"
	"fmt"
	"log"
	"time"
)

// RetryCoordinator re-attempts unresolved sync failures. It never deletes a
// queue row and treats a row failing for the tenth time exactly like one
// failing for the first; there is no backoff and no attempt cap.
type RetryCoordinator struct {
	resolver *Resolver
	stock    *StockReconciler
	failures FailureStore
}

// NewRetryCoordinator wires the retry coordinator
func NewRetryCoordinator(resolver *Resolver, stock *StockReconciler, failures FailureStore) *RetryCoordinator {
	return &RetryCoordinator{resolver: resolver, stock: stock, failures: failures}
}

// RetryUnresolved pulls up to limit oldest unresolved failures and re-runs
// identifier resolution followed by the stock reconciliation. Successful
// retries stamp ResolvedAt; everything else is left untouched for the next
// pass.
func (c *RetryCoordinator) RetryUnresolved(ctx context.Context, limit int) (*RetryReport, error) {
	report := &RetryReport{}

	rows, err := c.failures.ListUnresolved(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list unresolved failures: %w", err)
	}

	for _, row := range rows {
		report.Processed++

		// Resolution first: it is cheap and often succeeds now because a
		// batch pass has filled the cache since the failure was recorded
		if _, err := c.resolver.Resolve(ctx, row.ProductID); err != nil {
			report.StillFailing++
			report.Reasons = append(report.Reasons, fmt.Sprintf("failure %d (product %d): %v", row.ID, row.ProductID, err))
			continue
		}

		if _, err := c.stock.ReconcileStock(ctx, row.ProductID); err != nil {
			report.StillFailing++
			report.Reasons = append(report.Reasons, fmt.Sprintf("failure %d (product %d): %v", row.ID, row.ProductID, err))
			continue
		}

		if err := c.failures.MarkResolved(ctx, row.ID, "retry"); err != nil {
			report.StillFailing++
			report.Reasons = append(report.Reasons, fmt.Sprintf("failure %d: reconciled but could not stamp resolved: %v", row.ID, err))
			continue
		}
		report.Resolved++
	}

	if report.Processed > 0 {
		log.Printf("🔁 Retry pass: %d processed, %d resolved, %d still failing", report.Processed, report.Resolved, report.StillFailing)
	}
	return report, nil
}

// RetryService runs the coordinator periodically in the background. Each
// tick also runs the shadow order zombie cleanup, which is the only code
// path allowed to delete shadow orders.
type RetryService struct {
	coordinator *RetryCoordinator
	orders      *OrderResolver
	interval    time.Duration
	batch       int
	stop        chan struct{}
}

// NewRetryService creates the background retry loop. intervalMinutes <= 0
// disables it.
func NewRetryService(coordinator *RetryCoordinator, orders *OrderResolver, intervalMinutes, batch int) *RetryService {
	return &RetryService{
		coordinator: coordinator,
		orders:      orders,
		interval:    time.Duration(intervalMinutes) * time.Minute,
		batch:       batch,
		stop:        make(chan struct{}),
	}
}

// Start begins the background retry loop
func (s *RetryService) Start() {
	if s.interval <= 0 {
		log.Println("Retry service disabled: no interval configured")
		return
	}

	go func() {
		log.Printf("📡 Sellus retry service started (every %s, batch %d)", s.interval, s.batch)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runOnce(context.Background())
			case <-s.stop:
				log.Println("🛑 Sellus retry service stopped")
				return
			}
		}
	}()
}

// runOnce performs one scheduled pass: the retry batch first, then the
// shadow order zombie cleanup
func (s *RetryService) runOnce(ctx context.Context) {
	if _, err := s.coordinator.RetryUnresolved(ctx, s.batch); err != nil {
		log.Printf("❌ Retry pass failed: %v", err)
	}
	if _, err := s.orders.CleanupZombies(ctx); err != nil {
		log.Printf("❌ Zombie cleanup failed: %v", err)
	}
}

// Stop halts the service
func (s *RetryService) Stop() {
	close(s.stop)
}
