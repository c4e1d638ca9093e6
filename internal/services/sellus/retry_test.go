package sellus

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/packlane/wmsgo/internal/models"
)

type retryFixture struct {
	gw          *fakeCaller
	products    *fakeProducts
	inventory   *fakeInventory
	failures    *fakeFailures
	orders      *fakeOrders
	coordinator *RetryCoordinator
	chain       *OrderResolver
}

func newRetryFixture(product *models.Product, quantities []int) *retryFixture {
	f := &retryFixture{
		gw:        newFakeCaller(),
		products:  newFakeProducts(product),
		inventory: &fakeInventory{quantities: map[uint][]int{product.ID: quantities}},
		failures:  &fakeFailures{},
		orders:    newFakeOrders(),
	}
	ledger := &fakeLedger{}
	resolver := NewResolver(f.gw, f.products, ledger)
	stock := NewStockReconciler(f.gw, resolver, f.products, f.inventory, f.failures, ledger)
	f.coordinator = NewRetryCoordinator(resolver, stock, f.failures)
	f.chain = NewOrderResolver(f.gw, resolver, f.orders)
	return f
}

func (f *retryFixture) enqueue(productID uint, ref string, qty int) *models.UnresolvedSyncFailure {
	row := &models.UnresolvedSyncFailure{
		ProductID:       productID,
		ArticleRef:      ref,
		QuantityChanged: qty,
		ErrorMessage:    "remote system unavailable",
	}
	f.failures.Create(context.Background(), row)
	return row
}

func TestRetryResolvesAndStamps(t *testing.T) {
	product := &models.Product{ID: 1, ExternalArticleRef: strPtr("1201")}
	f := newRetryFixture(product, []int{4})
	row := f.enqueue(1, "1201", 4)

	// The remote side is back: catalog knows the article, writes succeed
	f.gw.stub(http.MethodGet, "/items", okResult(`[{"id": 55, "itemNumber": "1201"}]`))
	f.gw.stub(http.MethodGet, "/items/55",
		okResult(`{"id": 55, "stock": 0}`),
		okResult(`{"id": 55, "stock": 4}`))
	f.gw.stub(http.MethodPost, "/items/55", okResult(`{}`))

	report, err := f.coordinator.RetryUnresolved(context.Background(), 50)
	if err != nil {
		t.Fatalf("RetryUnresolved: %v", err)
	}

	if report.Processed != 1 || report.Resolved != 1 || report.StillFailing != 0 {
		t.Errorf("report = %+v, want processed=1 resolved=1", report)
	}
	if row.ResolvedAt == nil {
		t.Fatal("successful retry must stamp ResolvedAt")
	}
	if row.ResolvedBy != "retry" {
		t.Errorf("ResolvedBy = %q, want retry", row.ResolvedBy)
	}
	if len(f.failures.rows) != 1 {
		t.Error("resolved rows are kept, never deleted")
	}

	// A second pass has nothing left to do
	report, err = f.coordinator.RetryUnresolved(context.Background(), 50)
	if err != nil {
		t.Fatalf("second RetryUnresolved: %v", err)
	}
	if report.Processed != 0 {
		t.Errorf("second pass processed %d rows, want 0", report.Processed)
	}
}

func TestRetryLeavesFailingRowsUntouched(t *testing.T) {
	product := &models.Product{ID: 1, ExternalArticleRef: strPtr("1201")}
	f := newRetryFixture(product, []int{4})
	row := f.enqueue(1, "1201", 4)

	// Catalog still does not know the article
	f.gw.stub(http.MethodGet, "/items", okResult(`[{"id": 9, "itemNumber": "OTHER"}]`))

	report, err := f.coordinator.RetryUnresolved(context.Background(), 50)
	if err != nil {
		t.Fatalf("RetryUnresolved: %v", err)
	}

	if report.Processed != 1 || report.StillFailing != 1 {
		t.Errorf("report = %+v, want processed=1 stillFailing=1", report)
	}
	if len(report.Reasons) != 1 {
		t.Errorf("reasons = %v, want one entry", report.Reasons)
	}
	if row.ResolvedAt != nil {
		t.Error("a failing row must stay unresolved for the next pass")
	}
	if len(f.failures.rows) != 1 {
		t.Error("rows are never deleted, however often they fail")
	}
}

func TestRetryHonorsBatchLimit(t *testing.T) {
	product := &models.Product{ID: 1, ExternalArticleRef: strPtr("1201")}
	f := newRetryFixture(product, []int{4})
	f.enqueue(1, "1201", 4)
	f.enqueue(1, "1201", 2)
	f.enqueue(1, "1201", 1)

	f.gw.stub(http.MethodGet, "/items", okResult(`[{"id": 9, "itemNumber": "OTHER"}]`))

	report, err := f.coordinator.RetryUnresolved(context.Background(), 2)
	if err != nil {
		t.Fatalf("RetryUnresolved: %v", err)
	}
	if report.Processed != 2 {
		t.Errorf("processed = %d, want the batch limit 2", report.Processed)
	}
}

func TestRetryServiceDisabledWithoutInterval(t *testing.T) {
	product := &models.Product{ID: 1}
	f := newRetryFixture(product, nil)

	service := NewRetryService(f.coordinator, f.chain, 0, 50)
	service.Start()
	// Start must return immediately without spawning the loop; Stop on a
	// disabled service must not panic either way
	service.Stop()
}

func TestRetryServicePassRunsRetriesAndZombieCleanup(t *testing.T) {
	product := &models.Product{ID: 1, ExternalArticleRef: strPtr("1201")}
	f := newRetryFixture(product, []int{4})
	row := f.enqueue(1, "1201", 4)

	// A shadow order the remote listing forgot about long ago
	f.orders.orders["EXT-9"] = &models.Order{
		ID:               1,
		ExternalOrderID:  "EXT-9",
		LastSeenRemoteAt: time.Now().UTC().Add(-models.ZombieGrace - time.Hour),
	}

	f.gw.stub(http.MethodGet, "/items", okResult(`[{"id": 55, "itemNumber": "1201"}]`))
	f.gw.stub(http.MethodGet, "/items/55",
		okResult(`{"id": 55, "stock": 0}`),
		okResult(`{"id": 55, "stock": 4}`))
	f.gw.stub(http.MethodPost, "/items/55", okResult(`{}`))
	f.gw.stub(http.MethodGet, "/orders", okResult(`[]`))

	service := NewRetryService(f.coordinator, f.chain, 15, 50)
	service.runOnce(context.Background())

	if row.ResolvedAt == nil {
		t.Error("the pass must run the retry batch")
	}
	if _, ok := f.orders.orders["EXT-9"]; ok {
		t.Error("the pass must delete shadow orders unseen past the grace window")
	}
}
