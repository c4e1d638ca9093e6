package sellus

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/packlane/wmsgo/internal/models"
)

// OrderResolver locates the remote order behind partial, unreliable hints.
// The operator-entered cargo marking is the most specific signal but is often
// missing or malformed, so the chain degrades to "first active order carrying
// this article" instead of failing outright.
type OrderResolver struct {
	gw       Caller
	resolver *Resolver
	orders   OrderStore
}

// NewOrderResolver creates the order resolution chain
func NewOrderResolver(gw Caller, resolver *Resolver, orders OrderStore) *OrderResolver {
	return &OrderResolver{gw: gw, resolver: resolver, orders: orders}
}

// ResolvedOrder is the chain's successful outcome
type ResolvedOrder struct {
	ID      string
	Number  string
	Details *RemoteOrder
}

// ResolveOrder tries the strategies in priority order, first success wins:
//  1. direct remote lookup by the order reference hint
//  2. orders referencing the article's numeric id, preferring an exact hint
//     match over the first active entry
//
// A chain that fails every strategy is terminal; retries happen only through
// the retry coordinator at the workflow level.
func (o *OrderResolver) ResolveOrder(ctx context.Context, articleRef, orderHint string) (*ResolvedOrder, error) {
	chosen := o.lookupByHint(ctx, orderHint)

	if chosen == nil {
		var err error
		chosen, err = o.lookupByArticle(ctx, articleRef, orderHint)
		if err != nil {
			return nil, err
		}
	}

	if chosen == nil {
		return nil, fmt.Errorf("article %q, hint %q: %w", articleRef, orderHint, ErrNoOrderFound)
	}

	details, err := o.fetchDetails(ctx, chosen.ID)
	if err != nil {
		return nil, err
	}

	if _, err := o.orders.UpsertShadow(ctx, details.ID, details.Number, models.OrderKindSales, details.State); err != nil {
		log.Printf("⚠️ Failed to upsert shadow order %s: %v", details.ID, err)
	}

	return &ResolvedOrder{ID: details.ID, Number: details.Number, Details: details}, nil
}

// lookupByHint performs the direct order lookup. Any failure just moves the
// chain along to the next strategy.
func (o *OrderResolver) lookupByHint(ctx context.Context, hint string) *RemoteOrder {
	if hint == "" {
		return nil
	}

	res := o.gw.Call(ctx, http.MethodGet, "/orders?number="+url.QueryEscape(hint), nil)
	if !res.Success {
		return nil
	}

	orders, err := parseOrderList(res.Data)
	if err != nil {
		return nil
	}
	return matchExact(orders, hint)
}

// lookupByArticle resolves the article's numeric id and scans the orders
// referencing it
func (o *OrderResolver) lookupByArticle(ctx context.Context, articleRef, hint string) (*RemoteOrder, error) {
	numericID, err := o.resolver.ResolveRef(ctx, articleRef)
	if err != nil {
		if errors.Is(err, ErrRemoteUnavailable) {
			return nil, err
		}
		// Unresolvable article means no order can be located either
		return nil, fmt.Errorf("article %q: %w", articleRef, ErrNoOrderFound)
	}

	res := o.gw.Call(ctx, http.MethodGet, "/items/"+url.PathEscape(numericID)+"/orders", nil)
	if !res.Success {
		return nil, fmt.Errorf("%w: %s", ErrRemoteUnavailable, res.Error)
	}

	orders, err := parseOrderList(res.Data)
	if err != nil {
		return nil, fmt.Errorf("parse orders for item %s: %w", numericID, err)
	}

	// An exact hint match always beats the active-order fallback
	if exact := matchExact(orders, hint); exact != nil {
		return exact, nil
	}
	for _, order := range orders {
		if order.IsActive() {
			return order, nil
		}
	}
	return nil, nil
}

func (o *OrderResolver) fetchDetails(ctx context.Context, orderID string) (*RemoteOrder, error) {
	res := o.gw.Call(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderID), nil)
	if !res.Success {
		return nil, fmt.Errorf("%w: %s", ErrRemoteUnavailable, res.Error)
	}

	details, err := parseOrder(res.Data)
	if err != nil {
		return nil, fmt.Errorf("parse order %s: %w", orderID, err)
	}
	return details, nil
}

// matchExact returns the entry whose order number or id equals the hint
func matchExact(orders []*RemoteOrder, hint string) *RemoteOrder {
	if hint == "" {
		return nil
	}
	for _, order := range orders {
		if order.Number == hint || order.ID == hint {
			return order
		}
	}
	return nil
}

// CleanupZombies refreshes the shadow table from the current remote listing
// and deletes shadows the remote side has not mentioned for the full grace
// window. The window exists because the Sellus listing lags behind writes;
// deleting on first absence would race its eventual consistency.
func (o *OrderResolver) CleanupZombies(ctx context.Context) (int64, error) {
	res := o.gw.Call(ctx, http.MethodGet, "/orders", nil)
	if !res.Success {
		return 0, fmt.Errorf("%w: %s", ErrRemoteUnavailable, res.Error)
	}

	orders, err := parseOrderList(res.Data)
	if err != nil {
		return 0, fmt.Errorf("parse order listing: %w", err)
	}

	for _, order := range orders {
		if _, err := o.orders.UpsertShadow(ctx, order.ID, order.Number, models.OrderKindSales, order.State); err != nil {
			log.Printf("⚠️ Failed to refresh shadow order %s: %v", order.ID, err)
		}
	}

	cutoff := time.Now().UTC().Add(-models.ZombieGrace)
	deleted, err := o.orders.DeleteZombies(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete zombie orders: %w", err)
	}
	if deleted > 0 {
		log.Printf("🧹 Removed %d zombie orders (unseen since %s)", deleted, cutoff.Format(time.RFC3339))
	}
	return deleted, nil
}
