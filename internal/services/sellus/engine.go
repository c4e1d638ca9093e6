package sellus

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"
)

// Engine bundles the workflows behind the trigger surface the UI calls. Each
// trigger maps 1:1 to one workflow entry point and returns its structured
// outcome.
type Engine struct {
	Resolver *Resolver
	Orders   *OrderResolver
	Stock    *StockReconciler
	Purchase *PurchaseAccruer
	Retry    *RetryCoordinator

	notes    DeliveryNoteStore
	products ProductStore
}

// NewEngine wires the full reconciliation engine over one gateway and the
// persistence seams
func NewEngine(gw Caller, products ProductStore, inventory InventoryStore, orders OrderStore, failures FailureStore, notes DeliveryNoteStore, ledger Ledger) *Engine {
	resolver := NewResolver(gw, products, ledger)
	chain := NewOrderResolver(gw, resolver, orders)
	stock := NewStockReconciler(gw, resolver, products, inventory, failures, ledger)

	return &Engine{
		Resolver: resolver,
		Orders:   chain,
		Stock:    stock,
		Purchase: NewPurchaseAccruer(gw, chain, orders, ledger),
		Retry:    NewRetryCoordinator(resolver, stock, failures),
		notes:    notes,
		products: products,
	}
}

// CheckOffDeliveryItem marks a delivery note item checked (or unchecked) and
// runs the two workflows a receipt triggers: stock reconciliation and
// purchase-order accrual. The combined result keeps the per-workflow
// outcomes separate so the UI can render accurate partial-success messaging.
//
// Unexpected panics from the workflow internals are converted into a generic
// terminal outcome instead of crashing the caller.
func (e *Engine) CheckOffDeliveryItem(ctx context.Context, itemID uint, checked bool) (result *CheckOffResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ check-off panic for item %d: %v\n%s", itemID, r, debug.Stack())
			result = &CheckOffResult{
				ItemID:  itemID,
				Checked: checked,
				Message: "internal error, nothing should be assumed updated",
			}
			err = nil
		}
	}()

	item, err := e.notes.GetItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("load delivery note item %d: %w", itemID, err)
	}

	item.IsChecked = checked
	if checked {
		item.QuantityChecked = item.QuantityExpected
	} else {
		item.QuantityChecked = 0
	}
	if err := e.notes.SaveItem(ctx, item); err != nil {
		return nil, fmt.Errorf("save delivery note item %d: %w", itemID, err)
	}

	result = &CheckOffResult{ItemID: itemID, Checked: checked}
	if !checked {
		result.Message = "item unchecked, no synchronization triggered"
		return result, nil
	}

	// Stock reconciliation needs a local product behind the article number
	product, err := e.products.GetByArticleRef(ctx, item.ArticleNumber)
	if err != nil {
		return nil, fmt.Errorf("lookup product for article %q: %w", item.ArticleNumber, err)
	}
	if product != nil {
		stockResult, stockErr := e.Stock.ReconcileStock(ctx, product.ID)
		if stockErr != nil {
			result.Message = fmt.Sprintf("local receipt recorded; stock sync failed and was queued for retry: %v", stockErr)
		} else {
			result.Stock = stockResult
		}
	} else {
		result.Message = fmt.Sprintf("local receipt recorded; no local product for article %q, stock sync skipped", item.ArticleNumber)
	}

	result.Accrual = e.Purchase.AccruePurchaseOrder(ctx, item.ArticleNumber, item.QuantityChecked, item.OrderNumber)

	if result.Message == "" {
		switch result.Accrual.Status {
		case OutcomeSuccess:
			result.Message = "receipt recorded and fully synchronized"
		case OutcomeWarning, OutcomeSkipped:
			result.Message = "receipt recorded locally; remote purchase order not updated: " + result.Accrual.Message
		default:
			result.Message = "receipt recorded locally; remote synchronization failed: " + result.Accrual.Message
		}
	}
	return result, nil
}
