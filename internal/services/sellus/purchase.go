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

// PurchaseAccruer accrues received quantities onto the matching remote
// purchase order. Sellus has no atomic increment: the workflow reads the
// current counters, adds the received quantity locally and posts the full
// recomputed triple back. A read-then-write race against a concurrent update
// is an accepted risk; the remote API offers no optimistic-concurrency token.
type PurchaseAccruer struct {
	gw     Caller
	chain  *OrderResolver
	orders OrderStore
	ledger Ledger
}

// NewPurchaseAccruer wires the purchase-order accrual workflow
func NewPurchaseAccruer(gw Caller, chain *OrderResolver, orders OrderStore, ledger Ledger) *PurchaseAccruer {
	return &PurchaseAccruer{gw: gw, chain: chain, orders: orders, ledger: ledger}
}

// AccruePurchaseOrder records a received quantity against the remote purchase
// order matched by the cargo marking. The outcome distinguishes success,
// warning (purchase order not found, local state already updated), skipped
// (no remote order located at all) and error; the caller renders different
// messaging per status and must never treat warning or skipped as total
// failure. Exactly one ledger entry is written per invocation.
func (p *PurchaseAccruer) AccruePurchaseOrder(ctx context.Context, articleRef string, quantityReceived int, cargoMarking string) *AccrualOutcome {
	entry := newEntry(models.SyncTypePurchase, models.SyncDirectionPush).forArticle(articleRef)

	record := func(outcome *AccrualOutcome) *AccrualOutcome {
		switch outcome.Status {
		case OutcomeSuccess:
			entry.succeeded()
		case OutcomeError:
			entry.failed(outcome.Message)
		default:
			entry.partial(outcome.Message)
		}
		p.ledger.Record(ctx, &entry.entry)
		return outcome
	}

	// Step 1: locate the remote order. Failure here must not fail the local
	// receipt; the operator already holds the goods.
	resolved, err := p.chain.ResolveOrder(ctx, articleRef, cargoMarking)
	if err != nil {
		return record(&AccrualOutcome{
			Status:  OutcomeSkipped,
			Message: fmt.Sprintf("purchase order sync skipped, no remote order: %v", err),
		})
	}

	// Step 2: mirror the receipt into the local shadow tables
	shadow, err := p.orders.UpsertShadow(ctx, resolved.ID, resolved.Number, models.OrderKindSales, resolved.Details.State)
	if err != nil {
		return record(&AccrualOutcome{
			Status:        OutcomeError,
			RemoteOrderID: resolved.ID,
			Message:       fmt.Sprintf("failed to mirror order locally: %v", err),
		})
	}

	quantityOrdered := orderedQuantityFor(resolved.Details, articleRef)
	line, err := p.orders.RecordPick(ctx, shadow.ID, articleRef, quantityReceived, quantityOrdered)
	if err != nil {
		return record(&AccrualOutcome{
			Status:        OutcomeError,
			RemoteOrderID: resolved.ID,
			Message:       fmt.Sprintf("failed to record local pick: %v", err),
		})
	}

	// Step 3: search remote purchase orders by the cargo marking
	po, searchErr := p.findPurchaseOrder(ctx, cargoMarking, entry)
	if searchErr != nil {
		return record(&AccrualOutcome{
			Status:        OutcomeError,
			RemoteOrderID: resolved.ID,
			LocalLineID:   line.ID,
			Message:       fmt.Sprintf("purchase order search failed: %v", searchErr),
		})
	}
	if po == nil {
		// Local state is already updated; the missing purchase order is a
		// warning, not a failure
		return record(&AccrualOutcome{
			Status:        OutcomeWarning,
			RemoteOrderID: resolved.ID,
			LocalLineID:   line.ID,
			Message:       fmt.Sprintf("no purchase order matches %q, remote counters left untouched", cargoMarking),
		})
	}

	// Step 4: read the current counters and post the accrued triple
	received := float64(quantityReceived)
	accrued := AccruedQuantities{
		Shipped:    po.Shipped + received,
		Stock:      po.Stock + received,
		TotalStock: po.TotalStock + received,
	}

	payload := buildAccrualPayload(po, accrued)
	entry.request(payload)

	poPath := "/purchase-orders/" + url.PathEscape(po.ID)
	res := p.gw.Call(ctx, http.MethodPost, poPath, payload)
	entry.addDuration(res.DurationMs).response(res.Data)
	if !res.Success {
		return record(&AccrualOutcome{
			Status:        OutcomeError,
			RemoteOrderID: resolved.ID,
			LocalLineID:   line.ID,
			Message:       fmt.Sprintf("purchase order update failed: %s", res.Error),
		})
	}

	return record(&AccrualOutcome{
		Status:        OutcomeSuccess,
		RemoteOrderID: resolved.ID,
		LocalLineID:   line.ID,
		Posted:        &accrued,
		Message: fmt.Sprintf("accrued %d onto purchase order %s (shipped %v, stock %v, total %v)",
			quantityReceived, po.Number, accrued.Shipped, accrued.Stock, accrued.TotalStock),
	})
}

// findPurchaseOrder searches by cargo marking and fetches full details for
// the best match. A nil, nil return means nothing matched.
func (p *PurchaseAccruer) findPurchaseOrder(ctx context.Context, cargoMarking string, entry *entryBuilder) (*RemotePurchaseOrder, error) {
	search := p.gw.Call(ctx, http.MethodGet, "/purchase-orders?filter="+url.QueryEscape(`"`+cargoMarking+`"`), nil)
	entry.addDuration(search.DurationMs)
	if !search.Success {
		return nil, fmt.Errorf("%w: %s", ErrRemoteUnavailable, search.Error)
	}

	candidates, err := parsePurchaseOrderList(search.Data)
	if err != nil {
		return nil, fmt.Errorf("parse purchase order search: %w", err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	chosen := candidates[0]
	for _, candidate := range candidates {
		if candidate.Number == cargoMarking {
			chosen = candidate
			break
		}
	}

	details := p.gw.Call(ctx, http.MethodGet, "/purchase-orders/"+url.PathEscape(chosen.ID), nil)
	entry.addDuration(details.DurationMs)
	if !details.Success {
		return nil, fmt.Errorf("%w: %s", ErrRemoteUnavailable, details.Error)
	}
	return parsePurchaseOrder(details.Data)
}

// buildAccrualPayload echoes the remote fields and overwrites the three
// counters with the accrued values
func buildAccrualPayload(po *RemotePurchaseOrder, accrued AccruedQuantities) map[string]interface{} {
	payload := make(map[string]interface{}, len(po.Fields)+3)
	for key, raw := range po.Fields {
		switch key {
		case "id", "orderId", "order_id":
			continue
		}
		payload[key] = json.RawMessage(raw)
	}
	payload["shippedQuantity"] = accrued.Shipped
	payload["stockQuantity"] = accrued.Stock
	payload["totalStockQuantity"] = accrued.TotalStock
	return payload
}

// orderedQuantityFor digs the ordered quantity for an article out of the
// order detail positions. Zero means unknown; the local line then never
// auto-flips to picked.
func orderedQuantityFor(details *RemoteOrder, articleRef string) int {
	for _, key := range []string{"lines", "positions", "items"} {
		raw, ok := details.Fields[key]
		if !ok {
			continue
		}
		var positions []json.RawMessage
		if err := json.Unmarshal(raw, &positions); err != nil {
			continue
		}
		for _, pos := range positions {
			fields, err := parseFields(pos)
			if err != nil {
				continue
			}
			if probeString(fields, itemNumberAliases) != articleRef {
				continue
			}
			if qty, ok := probeFloat(fields, []string{"quantityOrdered", "quantity", "qty"}); ok {
				return int(qty)
			}
		}
	}
	log.Printf("ℹ️ No ordered quantity found for article %q on order %s", articleRef, details.ID)
	return 0
}
