package sellus

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/packlane/wmsgo/internal/models"
)

type engineFixture struct {
	gw       *fakeCaller
	products *fakeProducts
	notes    *fakeNotes
	failures *fakeFailures
	ledger   *fakeLedger
	engine   *Engine
}

func newEngineFixture(product *models.Product, quantities []int, item *models.DeliveryNoteItem) *engineFixture {
	f := &engineFixture{
		gw:       newFakeCaller(),
		notes:    &fakeNotes{items: map[uint]*models.DeliveryNoteItem{item.ID: item}},
		failures: &fakeFailures{},
		ledger:   &fakeLedger{},
	}
	if product != nil {
		f.products = newFakeProducts(product)
	} else {
		f.products = newFakeProducts()
	}

	inventory := &fakeInventory{quantities: map[uint][]int{}}
	if product != nil {
		inventory.quantities[product.ID] = quantities
	}

	f.engine = NewEngine(f.gw, f.products, inventory, newFakeOrders(), f.failures, f.notes, f.ledger)
	return f
}

func TestCheckOffTriggersBothWorkflows(t *testing.T) {
	product := &models.Product{ID: 1, ExternalArticleRef: strPtr("1201"), ExternalNumericID: strPtr("55")}
	item := &models.DeliveryNoteItem{
		ID:               4,
		ArticleNumber:    "1201",
		OrderNumber:      "GODS-42",
		QuantityExpected: 3,
	}
	f := newEngineFixture(product, []int{8}, item)

	// Stock reconciliation
	f.gw.stub(http.MethodGet, "/items/55",
		okResult(`{"id": 55, "stock": 5}`),
		okResult(`{"id": 55, "stock": 8}`))
	f.gw.stub(http.MethodPost, "/items/55", okResult(`{}`))
	// Purchase accrual
	f.gw.stub(http.MethodGet, "/orders?number=GODS-42", okResult(`[{"id": 9, "orderNumber": "GODS-42", "state": "active"}]`))
	f.gw.stub(http.MethodGet, "/orders/9", okResult(`{"id": 9, "orderNumber": "GODS-42", "state": "active"}`))
	f.gw.stub(http.MethodGet, "/purchase-orders?filter=%22GODS-42%22", okResult(`[{"id": 77, "orderNumber": "GODS-42"}]`))
	f.gw.stub(http.MethodGet, "/purchase-orders/77", okResult(`{"id": 77, "shippedQuantity": 10, "stockQuantity": 10, "totalStockQuantity": 10}`))
	f.gw.stub(http.MethodPost, "/purchase-orders/77", okResult(`{}`))

	result, err := f.engine.CheckOffDeliveryItem(context.Background(), 4, true)
	if err != nil {
		t.Fatalf("CheckOffDeliveryItem: %v", err)
	}

	if !item.IsChecked || item.QuantityChecked != 3 {
		t.Errorf("item = %+v, want checked with quantity 3", item)
	}
	if result.Stock == nil || !result.Stock.Verified {
		t.Errorf("stock result = %+v, want a verified reconciliation", result.Stock)
	}
	if result.Accrual == nil || result.Accrual.Status != OutcomeSuccess {
		t.Errorf("accrual = %+v, want success", result.Accrual)
	}
	if result.Accrual.Posted.Shipped != 13 {
		t.Errorf("posted shipped = %v, want 13", result.Accrual.Posted.Shipped)
	}
	if result.Message != "receipt recorded and fully synchronized" {
		t.Errorf("message = %q", result.Message)
	}
	// One stock entry plus one accrual entry
	if len(f.ledger.entries) != 2 {
		t.Errorf("ledger has %d entries, want 2", len(f.ledger.entries))
	}
}

func TestUncheckSkipsSynchronization(t *testing.T) {
	item := &models.DeliveryNoteItem{
		ID:               4,
		ArticleNumber:    "1201",
		QuantityExpected: 3,
		QuantityChecked:  3,
		IsChecked:        true,
	}
	f := newEngineFixture(nil, nil, item)

	result, err := f.engine.CheckOffDeliveryItem(context.Background(), 4, false)
	if err != nil {
		t.Fatalf("CheckOffDeliveryItem: %v", err)
	}

	if item.IsChecked || item.QuantityChecked != 0 {
		t.Errorf("item = %+v, want unchecked with quantity 0", item)
	}
	if result.Stock != nil || result.Accrual != nil {
		t.Error("unchecking must not trigger any synchronization")
	}
	if len(f.gw.calls) != 0 {
		t.Errorf("unchecking made %d remote calls, want 0", len(f.gw.calls))
	}
}

func TestCheckOffStockFailureStillRunsAccrual(t *testing.T) {
	product := &models.Product{ID: 1, ExternalArticleRef: strPtr("1201"), ExternalNumericID: strPtr("55")}
	item := &models.DeliveryNoteItem{
		ID:               4,
		ArticleNumber:    "1201",
		OrderNumber:      "GODS-42",
		QuantityExpected: 2,
	}
	f := newEngineFixture(product, []int{2}, item)

	// Stock write fails terminally, accrual chain finds nothing
	f.gw.stub(http.MethodGet, "/items/55", failResult(http.StatusServiceUnavailable, "maintenance"))

	result, err := f.engine.CheckOffDeliveryItem(context.Background(), 4, true)
	if err != nil {
		t.Fatalf("remote failure must not fail the local check-off: %v", err)
	}

	if !item.IsChecked {
		t.Error("local check-off must survive remote failures")
	}
	if !strings.Contains(result.Message, "queued for retry") {
		t.Errorf("message = %q, want a queued-for-retry notice", result.Message)
	}
	if len(f.failures.rows) != 1 {
		t.Errorf("failure rows = %d, want 1", len(f.failures.rows))
	}
	if result.Accrual == nil || result.Accrual.Status != OutcomeSkipped {
		t.Errorf("accrual = %+v, want skipped when no remote order resolves", result.Accrual)
	}
}

func TestCheckOffWithoutLocalProduct(t *testing.T) {
	item := &models.DeliveryNoteItem{
		ID:               4,
		ArticleNumber:    "UNKNOWN-9",
		QuantityExpected: 1,
	}
	f := newEngineFixture(nil, nil, item)

	result, err := f.engine.CheckOffDeliveryItem(context.Background(), 4, true)
	if err != nil {
		t.Fatalf("CheckOffDeliveryItem: %v", err)
	}

	if result.Stock != nil {
		t.Error("no local product means no stock reconciliation")
	}
	if !strings.Contains(result.Message, "stock sync skipped") {
		t.Errorf("message = %q, want a stock-sync-skipped notice", result.Message)
	}
	if result.Accrual == nil {
		t.Error("accrual still runs without a local product")
	}
}
