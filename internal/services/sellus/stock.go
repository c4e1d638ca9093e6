package sellus

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"

	"github.com/packlane/wmsgo/internal/models"
)

// StockReconciler pushes the authoritative local stock total for a product to
// Sellus and verifies the write landed by reading it back.
//
// This workflow runs synchronously on every pick and receive event, so it
// must never block the operator on ERP availability: terminal failures are
// recorded as UnresolvedSyncFailure rows and handed to the retry coordinator.
// It is the only workflow allowed to enqueue those rows.
type StockReconciler struct {
	gw        Caller
	resolver  *Resolver
	products  ProductStore
	inventory InventoryStore
	failures  FailureStore
	ledger    Ledger
}

// NewStockReconciler wires the stock reconciliation workflow
func NewStockReconciler(gw Caller, resolver *Resolver, products ProductStore, inventory InventoryStore, failures FailureStore, ledger Ledger) *StockReconciler {
	return &StockReconciler{
		gw:        gw,
		resolver:  resolver,
		products:  products,
		inventory: inventory,
		failures:  failures,
		ledger:    ledger,
	}
}

// ReconcileStock computes the product's total stock, writes it to Sellus and
// reads it back. Every invocation writes exactly one ledger entry: success,
// partial_success when the read-back disagrees, or error.
func (s *StockReconciler) ReconcileStock(ctx context.Context, productID uint) (*StockResult, error) {
	entry := newEntry(models.SyncTypeStock, models.SyncDirectionPush)

	product, err := s.products.Get(ctx, productID)
	if err != nil {
		err = fmt.Errorf("load product %d: %w", productID, err)
		s.ledger.Record(ctx, &entry.failed(err.Error()).entry)
		return nil, err
	}

	articleRef := ""
	if product.ExternalArticleRef != nil {
		articleRef = *product.ExternalArticleRef
	}
	entry.forProduct(productID, articleRef)

	// Authoritative stock is the sum over all locations, never a single
	// record's value
	targetStock, err := s.inventory.TotalStock(ctx, productID)
	if err != nil {
		err = fmt.Errorf("sum inventory for product %d: %w", productID, err)
		s.ledger.Record(ctx, &entry.failed(err.Error()).entry)
		return nil, err
	}

	numericID, err := s.resolver.Resolve(ctx, productID)
	if err != nil {
		s.recordFailure(ctx, product, articleRef, targetStock, err)
		s.ledger.Record(ctx, &entry.failed(err.Error()).entry)
		return nil, err
	}

	// Current remote record: oldStock for the audit trail plus whatever
	// fields Sellus requires to be echoed back unchanged
	itemPath := "/items/" + url.PathEscape(numericID)
	res := s.gw.Call(ctx, http.MethodGet, itemPath, nil)
	entry.addDuration(res.DurationMs)
	if !res.Success {
		err = fmt.Errorf("%w: %s", ErrRemoteUnavailable, res.Error)
		s.recordFailure(ctx, product, articleRef, targetStock, err)
		s.ledger.Record(ctx, &entry.failed(err.Error()).entry)
		return nil, err
	}

	remote, err := parseItem(res.Data)
	if err != nil {
		err = fmt.Errorf("parse remote item %s: %w", numericID, err)
		s.recordFailure(ctx, product, articleRef, targetStock, err)
		s.ledger.Record(ctx, &entry.failed(err.Error()).entry)
		return nil, err
	}
	oldStock := remote.Stock

	payload := buildStockPayload(remote, targetStock)
	entry.request(payload)

	res = s.gw.Call(ctx, http.MethodPost, itemPath, payload)
	entry.addDuration(res.DurationMs)
	if !res.Success && isMethodNotAllowed(res) {
		// Some deployments only accept PUT for item updates
		res = s.gw.Call(ctx, http.MethodPut, itemPath, payload)
		entry.addDuration(res.DurationMs)
	}
	if !res.Success {
		err = fmt.Errorf("%w: %s", ErrRemoteUnavailable, res.Error)
		s.recordFailure(ctx, product, articleRef, targetStock, err)
		s.ledger.Record(ctx, &entry.failed(err.Error()).entry)
		return nil, err
	}

	result := &StockResult{
		ProductID:   productID,
		NumericID:   numericID,
		TargetStock: targetStock,
		OldStock:    oldStock,
	}

	// Read back and compare. A mismatch is reported, not raised: the write
	// happened, the discrepancy is the signal.
	verify := s.gw.Call(ctx, http.MethodGet, itemPath, nil)
	entry.addDuration(verify.DurationMs).response(verify.Data)
	if verify.Success {
		if observed, err := parseItem(verify.Data); err == nil {
			result.ObservedStock = observed.Stock
			result.Verified = observed.Stock == float64(targetStock)
		}
	}

	if result.Verified {
		result.Message = fmt.Sprintf("stock updated %v → %d and verified", oldStock, targetStock)
		s.ledger.Record(ctx, &entry.succeeded().entry)
	} else {
		result.Message = fmt.Sprintf("stock update sent (%v → %d) but read-back shows %v", oldStock, targetStock, result.ObservedStock)
		s.ledger.Record(ctx, &entry.partial(result.Message).entry)
	}

	return result, nil
}

// buildStockPayload echoes every remote field except the id back unchanged
// and carries the new value under all three field names Sellus deployments
// have been observed to accept. The documentation does not guarantee which
// one a given deployment reads.
func buildStockPayload(remote *RemoteItem, targetStock int) map[string]interface{} {
	payload := make(map[string]interface{}, len(remote.Fields)+3)
	for key, raw := range remote.Fields {
		switch key {
		case "id", "itemId", "item_id":
			continue
		}
		payload[key] = json.RawMessage(raw)
	}
	for _, alias := range stockAliases {
		payload[alias] = targetStock
	}
	return payload
}

// recordFailure enqueues a retry row. Best effort: the workflow's outcome
// does not depend on the insert succeeding.
func (s *StockReconciler) recordFailure(ctx context.Context, product *models.Product, articleRef string, quantity int, cause error) {
	failure := &models.UnresolvedSyncFailure{
		ProductID:       product.ID,
		ArticleRef:      articleRef,
		QuantityChanged: quantity,
		ErrorMessage:    cause.Error(),
	}
	if err := s.failures.Create(ctx, failure); err != nil {
		log.Printf("⚠️ Failed to enqueue sync failure for product %d: %v", product.ID, err)
	}
}
