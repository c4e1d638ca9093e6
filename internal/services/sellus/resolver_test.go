package sellus

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/packlane/wmsgo/internal/models"
)

func newTestResolver(gw Caller, products ProductStore) (*Resolver, *fakeLedger) {
	ledger := &fakeLedger{}
	return NewResolver(gw, products, ledger), ledger
}

func TestResolveUsesCachedNumericID(t *testing.T) {
	gw := newFakeCaller()
	products := newFakeProducts(&models.Product{
		ID:                 1,
		ExternalArticleRef: strPtr("1201"),
		ExternalNumericID:  strPtr("55"),
	})
	resolver, _ := newTestResolver(gw, products)

	id, err := resolver.Resolve(context.Background(), 1)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if id != "55" {
		t.Errorf("id = %q, want 55", id)
	}
	if len(gw.calls) != 0 {
		t.Errorf("cached resolution made %d remote calls, want 0", len(gw.calls))
	}
}

func TestResolveScansCatalogAndPersists(t *testing.T) {
	gw := newFakeCaller()
	gw.stub(http.MethodGet, "/items", okResult(`[
		{"id": 41, "itemNumber": "9900"},
		{"id": 55, "itemNumber": "1201", "stock": 4}
	]`))

	product := &models.Product{ID: 1, ExternalArticleRef: strPtr("1201")}
	products := newFakeProducts(product)
	resolver, _ := newTestResolver(gw, products)

	id, err := resolver.Resolve(context.Background(), 1)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if id != "55" {
		t.Errorf("id = %q, want 55", id)
	}
	if product.ExternalNumericID == nil || *product.ExternalNumericID != "55" {
		t.Error("numeric id was not persisted on the product")
	}
	if product.SyncStatus != models.SyncStatusSynced {
		t.Errorf("sync status = %q, want synced", product.SyncStatus)
	}
	if product.LastSyncedAt == nil {
		t.Error("LastSyncedAt was not stamped")
	}

	// Second call must hit the cache, not the network
	if _, err := resolver.Resolve(context.Background(), 1); err != nil {
		t.Fatalf("second Resolve: %v", err)
	}
	if got := gw.countCalls(http.MethodGet, "/items"); got != 1 {
		t.Errorf("catalog fetched %d times, want 1", got)
	}
}

func TestResolveDirectLookupSkipsCatalogScan(t *testing.T) {
	gw := newFakeCaller()
	gw.stub(http.MethodGet, "/items/by-item-number/1201", okResult(`{"id": 55, "itemNumber": "1201", "stock": 4}`))

	product := &models.Product{ID: 1, ExternalArticleRef: strPtr("1201")}
	products := newFakeProducts(product)
	resolver, _ := newTestResolver(gw, products)

	id, err := resolver.Resolve(context.Background(), 1)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if id != "55" {
		t.Errorf("id = %q, want 55", id)
	}
	if product.ExternalNumericID == nil || *product.ExternalNumericID != "55" {
		t.Error("numeric id was not persisted on the product")
	}
	if gw.countCalls(http.MethodGet, "/items") != 0 {
		t.Error("a direct hit must not scan the catalog")
	}
}

func TestResolveFallsBackToScanWhenDirectLookupFails(t *testing.T) {
	gw := newFakeCaller()
	gw.stub(http.MethodGet, "/items/by-item-number/1201", failResult(http.StatusNotFound, "no such route"))
	gw.stub(http.MethodGet, "/items", okResult(`[{"id": 55, "itemNumber": "1201"}]`))

	products := newFakeProducts(&models.Product{ID: 1, ExternalArticleRef: strPtr("1201")})
	resolver, _ := newTestResolver(gw, products)

	id, err := resolver.Resolve(context.Background(), 1)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if id != "55" {
		t.Errorf("id = %q, want 55", id)
	}
	if gw.countCalls(http.MethodGet, "/items") != 1 {
		t.Error("a direct miss must fall back to the catalog scan")
	}
}

func TestResolveRefDirectLookupWithoutLocalProduct(t *testing.T) {
	gw := newFakeCaller()
	gw.stub(http.MethodGet, "/items/by-item-number/ART-7", okResult(`{"id": 7, "itemNumber": "ART-7"}`))

	products := newFakeProducts()
	resolver, _ := newTestResolver(gw, products)

	id, err := resolver.ResolveRef(context.Background(), "ART-7")
	if err != nil {
		t.Fatalf("ResolveRef: %v", err)
	}
	if id != "7" {
		t.Errorf("id = %q, want 7", id)
	}
	if len(gw.calls) != 1 {
		t.Errorf("direct hit made %d remote calls, want 1", len(gw.calls))
	}
}

func TestResolveWithoutArticleRef(t *testing.T) {
	gw := newFakeCaller()
	products := newFakeProducts(&models.Product{ID: 1})
	resolver, _ := newTestResolver(gw, products)

	_, err := resolver.Resolve(context.Background(), 1)
	if !errors.Is(err, ErrMissingArticleRef) {
		t.Fatalf("err = %v, want ErrMissingArticleRef", err)
	}
	if len(gw.calls) != 0 {
		t.Error("missing ref should fail before any remote call")
	}
}

func TestResolveMarksErrorWhenArticleUnknown(t *testing.T) {
	gw := newFakeCaller()
	gw.stub(http.MethodGet, "/items", okResult(`[{"id": 41, "itemNumber": "9900"}]`))

	product := &models.Product{ID: 1, ExternalArticleRef: strPtr("1201")}
	products := newFakeProducts(product)
	resolver, _ := newTestResolver(gw, products)

	_, err := resolver.Resolve(context.Background(), 1)
	if !errors.Is(err, ErrArticleNotFound) {
		t.Fatalf("err = %v, want ErrArticleNotFound", err)
	}
	if product.SyncStatus != models.SyncStatusError {
		t.Errorf("sync status = %q, want error", product.SyncStatus)
	}
}

func TestResolveFallsBackToFullCatalog(t *testing.T) {
	gw := newFakeCaller()
	gw.stub(http.MethodGet, "/items", okResult(`{"data": []}`))
	gw.stub(http.MethodGet, "/items/full", okResult(`{"data": [{"id": "55", "itemNumber": "1201"}]}`))

	products := newFakeProducts(&models.Product{ID: 1, ExternalArticleRef: strPtr("1201")})
	resolver, _ := newTestResolver(gw, products)

	id, err := resolver.Resolve(context.Background(), 1)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if id != "55" {
		t.Errorf("id = %q, want 55", id)
	}
	if gw.countCalls(http.MethodGet, "/items/full") != 1 {
		t.Error("empty catalog should fall through to /items/full")
	}
}

func TestResolveRefWithoutLocalProduct(t *testing.T) {
	gw := newFakeCaller()
	gw.stub(http.MethodGet, "/items", okResult(`[{"id": 7, "itemNumber": "ART-7"}]`))

	products := newFakeProducts()
	resolver, _ := newTestResolver(gw, products)

	id, err := resolver.ResolveRef(context.Background(), "ART-7")
	if err != nil {
		t.Fatalf("ResolveRef: %v", err)
	}
	if id != "7" {
		t.Errorf("id = %q, want 7", id)
	}
}

func TestResolveAllPendingSingleFetchSingleLedgerEntry(t *testing.T) {
	gw := newFakeCaller()
	gw.stub(http.MethodGet, "/items", okResult(`[
		{"id": 55, "itemNumber": "1201"},
		{"id": 56, "itemNumber": "1202"}
	]`))

	p1 := &models.Product{ID: 1, ExternalArticleRef: strPtr("1201")}
	p2 := &models.Product{ID: 2, ExternalArticleRef: strPtr("1202")}
	p3 := &models.Product{ID: 3, ExternalArticleRef: strPtr("9999")}
	products := newFakeProducts(p1, p2, p3)
	resolver, ledger := newTestResolver(gw, products)

	report, err := resolver.ResolveAllPending(context.Background())
	if err != nil {
		t.Fatalf("ResolveAllPending: %v", err)
	}

	if report.Scanned != 3 || report.Resolved != 2 || report.Missing != 1 {
		t.Errorf("report = %+v, want scanned=3 resolved=2 missing=1", report)
	}
	if gw.countCalls(http.MethodGet, "/items") != 1 {
		t.Errorf("batch pass fetched the catalog %d times, want 1", gw.countCalls(http.MethodGet, "/items"))
	}
	if !p1.IsResolved() || !p2.IsResolved() {
		t.Error("resolvable products were not persisted")
	}
	if p3.SyncStatus != models.SyncStatusError {
		t.Errorf("unknown article product status = %q, want error", p3.SyncStatus)
	}
	if len(ledger.entries) != 1 {
		t.Fatalf("ledger has %d entries, want exactly 1 for the batch", len(ledger.entries))
	}
	if ledger.entries[0].Status != models.SyncStatusPartial {
		t.Errorf("ledger status = %q, want partial_success with one miss", ledger.entries[0].Status)
	}
}

func TestResolveAllPendingNothingToDo(t *testing.T) {
	gw := newFakeCaller()
	products := newFakeProducts(&models.Product{ID: 1, ExternalNumericID: strPtr("5")})
	resolver, ledger := newTestResolver(gw, products)

	report, err := resolver.ResolveAllPending(context.Background())
	if err != nil {
		t.Fatalf("ResolveAllPending: %v", err)
	}
	if report.Scanned != 0 {
		t.Errorf("scanned = %d, want 0", report.Scanned)
	}
	if len(gw.calls) != 0 {
		t.Error("nothing pending should make no remote calls")
	}
	if len(ledger.entries) != 0 {
		t.Error("nothing pending should write no ledger entry")
	}
}
