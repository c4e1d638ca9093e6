package sellus

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"

	"github.com/packlane/wmsgo/internal/models"
)

// Resolver maps local article references to Sellus numeric ids. The numeric
// id is cached on the product row the first time it resolves; after that the
// fast path never touches the network.
//
// A cache miss tries the direct item-number endpoint first. Not every Sellus
// deployment has it, so any direct-lookup failure falls back to scanning the
// full item catalog and matching on the article-number string.
type Resolver struct {
	gw       Caller
	products ProductStore
	ledger   Ledger
}

// NewResolver creates a resolver over the given gateway and product store
func NewResolver(gw Caller, products ProductStore, ledger Ledger) *Resolver {
	return &Resolver{gw: gw, products: products, ledger: ledger}
}

// Resolve returns the Sellus numeric id for a product, resolving and
// persisting it on first use. Fails with ErrMissingArticleRef when the
// product has no article reference and ErrArticleNotFound when the catalog
// does not know the reference.
func (r *Resolver) Resolve(ctx context.Context, productID uint) (string, error) {
	product, err := r.products.Get(ctx, productID)
	if err != nil {
		return "", fmt.Errorf("load product %d: %w", productID, err)
	}

	// Fast path: the id is a durable cache, resolved once
	if product.IsResolved() {
		return *product.ExternalNumericID, nil
	}

	if product.ExternalArticleRef == nil || *product.ExternalArticleRef == "" {
		return "", fmt.Errorf("product %d: %w", productID, ErrMissingArticleRef)
	}
	ref := *product.ExternalArticleRef

	numericID, ok := r.lookupDirect(ctx, ref)
	if !ok {
		catalog, _, err := r.fetchCatalog(ctx)
		if err != nil {
			return "", err
		}
		numericID, ok = catalog[ref]
	}
	if !ok {
		if err := r.products.MarkSyncError(ctx, productID); err != nil {
			log.Printf("⚠️ Failed to mark product %d sync error: %v", productID, err)
		}
		return "", fmt.Errorf("article %q: %w", ref, ErrArticleNotFound)
	}

	if err := r.products.SetResolved(ctx, productID, numericID); err != nil {
		return "", fmt.Errorf("persist resolved id for product %d: %w", productID, err)
	}

	return numericID, nil
}

// ResolveRef resolves an article reference that may not belong to a local
// product. When a product carries the ref, resolution goes through the cache
// and persists; otherwise the catalog is scanned without persisting anything.
func (r *Resolver) ResolveRef(ctx context.Context, articleRef string) (string, error) {
	if articleRef == "" {
		return "", ErrMissingArticleRef
	}

	product, err := r.products.GetByArticleRef(ctx, articleRef)
	if err != nil {
		return "", fmt.Errorf("lookup product by ref %q: %w", articleRef, err)
	}
	if product != nil {
		return r.Resolve(ctx, product.ID)
	}

	if numericID, ok := r.lookupDirect(ctx, articleRef); ok {
		return numericID, nil
	}

	catalog, _, err := r.fetchCatalog(ctx)
	if err != nil {
		return "", err
	}

	numericID, ok := catalog[articleRef]
	if !ok {
		return "", fmt.Errorf("article %q: %w", articleRef, ErrArticleNotFound)
	}
	return numericID, nil
}

// ResolveAllPending resolves every unresolved product in one catalog fetch.
// It writes a single ledger entry for the batch.
func (r *Resolver) ResolveAllPending(ctx context.Context) (*ResolveReport, error) {
	entry := newEntry(models.SyncTypeResolve, models.SyncDirectionPull)
	report := &ResolveReport{}

	pending, err := r.products.ListUnresolved(ctx)
	if err != nil {
		return nil, fmt.Errorf("list unresolved products: %w", err)
	}
	report.Scanned = len(pending)
	if len(pending) == 0 {
		return report, nil
	}

	catalog, durationMs, err := r.fetchCatalog(ctx)
	entry.addDuration(durationMs)
	if err != nil {
		r.ledger.Record(ctx, &entry.failed(err.Error()).entry)
		return nil, err
	}

	log.Printf("🔎 Resolving %d pending products against %d catalog items", len(pending), len(catalog))

	for _, product := range pending {
		if product.ExternalArticleRef == nil || *product.ExternalArticleRef == "" {
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("product %d: no article reference", product.ID))
			continue
		}
		ref := *product.ExternalArticleRef

		numericID, ok := catalog[ref]
		if !ok {
			report.Missing++
			report.Errors = append(report.Errors, fmt.Sprintf("article %q not in catalog", ref))
			if err := r.products.MarkSyncError(ctx, product.ID); err != nil {
				log.Printf("⚠️ Failed to mark product %d sync error: %v", product.ID, err)
			}
			continue
		}

		if err := r.products.SetResolved(ctx, product.ID, numericID); err != nil {
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("product %d: %v", product.ID, err))
			continue
		}
		report.Resolved++
	}

	entry.request(report)
	if report.Missing == 0 && report.Failed == 0 {
		entry.succeeded()
	} else {
		entry.partial(fmt.Sprintf("%d missing, %d failed of %d", report.Missing, report.Failed, report.Scanned))
	}
	r.ledger.Record(ctx, &entry.entry)

	log.Printf("✅ Resolution pass: %d resolved, %d missing, %d failed", report.Resolved, report.Missing, report.Failed)
	return report, nil
}

// lookupDirect asks the deployment's direct item-number endpoint for a
// single article. Deployments without it answer 404 or an HTML error page,
// so every failure reads as a miss and the caller falls back to the catalog
// scan.
func (r *Resolver) lookupDirect(ctx context.Context, ref string) (string, bool) {
	res := r.gw.Call(ctx, http.MethodGet, "/items/by-item-number/"+url.PathEscape(ref), nil)
	if !res.Success {
		return "", false
	}

	item, err := parseItem(res.Data)
	if err != nil || item.ID == "" {
		return "", false
	}
	return item.ID, true
}

// fetchCatalog pulls the full item catalog and builds the article-number to
// numeric-id map. Some deployments return the catalog only on /items/full,
// so an empty /items response falls through to it.
func (r *Resolver) fetchCatalog(ctx context.Context) (map[string]string, int64, error) {
	res := r.gw.Call(ctx, http.MethodGet, "/items", nil)
	durationMs := res.DurationMs
	if !res.Success {
		return nil, durationMs, fmt.Errorf("%w: %s", ErrRemoteUnavailable, res.Error)
	}

	items, err := parseItemList(res.Data)
	if err != nil {
		return nil, durationMs, fmt.Errorf("parse item catalog: %w", err)
	}

	if len(items) == 0 {
		res = r.gw.Call(ctx, http.MethodGet, "/items/full", nil)
		durationMs += res.DurationMs
		if !res.Success {
			return nil, durationMs, fmt.Errorf("%w: %s", ErrRemoteUnavailable, res.Error)
		}
		items, err = parseItemList(res.Data)
		if err != nil {
			return nil, durationMs, fmt.Errorf("parse full item catalog: %w", err)
		}
	}

	catalog := make(map[string]string, len(items))
	for _, item := range items {
		if item.ItemNumber == "" {
			continue
		}
		if _, exists := catalog[item.ItemNumber]; !exists {
			catalog[item.ItemNumber] = item.ID
		}
	}
	return catalog, durationMs, nil
}
