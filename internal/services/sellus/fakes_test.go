package sellus

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/packlane/wmsgo/internal/models"
)

// fakeCaller scripts gateway responses per "METHOD path" key. Multiple
// queued results are served in order; the last one sticks.
type recordedCall struct {
	method string
	path   string
	body   interface{}
}

type fakeCaller struct {
	responses map[string][]Result
	calls     []recordedCall
}

func newFakeCaller() *fakeCaller {
	return &fakeCaller{responses: make(map[string][]Result)}
}

func (f *fakeCaller) stub(method, path string, results ...Result) {
	key := method + " " + path
	f.responses[key] = append(f.responses[key], results...)
}

func (f *fakeCaller) Call(_ context.Context, method, path string, body interface{}) Result {
	f.calls = append(f.calls, recordedCall{method: method, path: path, body: body})

	key := method + " " + path
	queue, ok := f.responses[key]
	if !ok || len(queue) == 0 {
		return Result{Success: false, Status: 404, Error: "no stub for " + key}
	}
	result := queue[0]
	if len(queue) > 1 {
		f.responses[key] = queue[1:]
	}
	return result
}

func (f *fakeCaller) countCalls(method, path string) int {
	n := 0
	for _, c := range f.calls {
		if c.method == method && c.path == path {
			n++
		}
	}
	return n
}

func okResult(data string) Result {
	return Result{Success: true, Status: 200, Data: json.RawMessage(data)}
}

func failResult(status int, msg string) Result {
	return Result{Success: false, Status: status, Error: msg}
}

// fakeProducts is an in-memory ProductStore
type fakeProducts struct {
	products map[uint]*models.Product
}

func newFakeProducts(products ...*models.Product) *fakeProducts {
	f := &fakeProducts{products: make(map[uint]*models.Product)}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeProducts) Get(_ context.Context, id uint) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d not found", id)
	}
	return p, nil
}

func (f *fakeProducts) GetByArticleRef(_ context.Context, ref string) (*models.Product, error) {
	for _, p := range f.products {
		if p.ExternalArticleRef != nil && *p.ExternalArticleRef == ref {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeProducts) SetResolved(_ context.Context, id uint, numericID string) error {
	p, ok := f.products[id]
	if !ok {
		return fmt.Errorf("product %d not found", id)
	}
	now := time.Now().UTC()
	p.ExternalNumericID = &numericID
	p.SyncStatus = models.SyncStatusSynced
	p.LastSyncedAt = &now
	return nil
}

func (f *fakeProducts) MarkSyncError(_ context.Context, id uint) error {
	p, ok := f.products[id]
	if !ok {
		return fmt.Errorf("product %d not found", id)
	}
	p.SyncStatus = models.SyncStatusError
	return nil
}

func (f *fakeProducts) ListUnresolved(_ context.Context) ([]models.Product, error) {
	var out []models.Product
	for _, p := range f.products {
		if !p.IsResolved() {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// fakeInventory is an in-memory InventoryStore
type fakeInventory struct {
	quantities map[uint][]int
}

func (f *fakeInventory) TotalStock(_ context.Context, productID uint) (int, error) {
	total := 0
	for _, q := range f.quantities[productID] {
		total += q
	}
	return total, nil
}

// fakeOrders is an in-memory OrderStore
type fakeOrders struct {
	nextID uint
	orders map[string]*models.Order
	lines  []*models.OrderLine
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{orders: make(map[string]*models.Order)}
}

func (f *fakeOrders) UpsertShadow(_ context.Context, externalID, orderNumber string, kind models.OrderKind, state string) (*models.Order, error) {
	if existing, ok := f.orders[externalID]; ok {
		existing.OrderNumber = orderNumber
		existing.State = state
		existing.LastSeenRemoteAt = time.Now().UTC()
		return existing, nil
	}
	f.nextID++
	order := &models.Order{
		ID:               f.nextID,
		ExternalOrderID:  externalID,
		OrderNumber:      orderNumber,
		Kind:             kind,
		State:            state,
		LastSeenRemoteAt: time.Now().UTC(),
	}
	f.orders[externalID] = order
	return order, nil
}

func (f *fakeOrders) RecordPick(_ context.Context, orderID uint, articleRef string, qty, quantityOrdered int) (*models.OrderLine, error) {
	var line *models.OrderLine
	for _, l := range f.lines {
		if l.OrderID == orderID && l.ArticleRef == articleRef {
			line = l
			break
		}
	}
	if line == nil {
		line = &models.OrderLine{
			ID:              uint(len(f.lines) + 1),
			OrderID:         orderID,
			ArticleRef:      articleRef,
			QuantityOrdered: quantityOrdered,
		}
		f.lines = append(f.lines, line)
	}

	line.QuantityPicked += qty
	if line.QuantityOrdered == 0 && quantityOrdered > 0 {
		line.QuantityOrdered = quantityOrdered
	}
	if line.QuantityOrdered > 0 && line.QuantityPicked >= line.QuantityOrdered {
		line.IsPicked = true
	}
	return line, nil
}

func (f *fakeOrders) DeleteZombies(_ context.Context, seenBefore time.Time) (int64, error) {
	var deleted int64
	for key, order := range f.orders {
		if order.LastSeenRemoteAt.Before(seenBefore) {
			delete(f.orders, key)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeOrders) lineFor(articleRef string) *models.OrderLine {
	for _, l := range f.lines {
		if l.ArticleRef == articleRef {
			return l
		}
	}
	return nil
}

// fakeFailures is an in-memory FailureStore
type fakeFailures struct {
	nextID int64
	rows   []*models.UnresolvedSyncFailure
}

func (f *fakeFailures) Create(_ context.Context, failure *models.UnresolvedSyncFailure) error {
	f.nextID++
	failure.ID = f.nextID
	failure.CreatedAt = time.Now().UTC()
	f.rows = append(f.rows, failure)
	return nil
}

func (f *fakeFailures) ListUnresolved(_ context.Context, limit int) ([]models.UnresolvedSyncFailure, error) {
	var out []models.UnresolvedSyncFailure
	for _, row := range f.rows {
		if row.ResolvedAt == nil {
			out = append(out, *row)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeFailures) MarkResolved(_ context.Context, id int64, by string) error {
	for _, row := range f.rows {
		if row.ID == id {
			now := time.Now().UTC()
			row.ResolvedAt = &now
			row.ResolvedBy = by
			return nil
		}
	}
	return fmt.Errorf("failure %d not found", id)
}

// fakeNotes is an in-memory DeliveryNoteStore
type fakeNotes struct {
	items map[uint]*models.DeliveryNoteItem
}

func (f *fakeNotes) GetItem(_ context.Context, id uint) (*models.DeliveryNoteItem, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, fmt.Errorf("delivery note item %d not found", id)
	}
	return item, nil
}

func (f *fakeNotes) SaveItem(_ context.Context, item *models.DeliveryNoteItem) error {
	f.items[item.ID] = item
	return nil
}

// fakeLedger collects recorded entries
type fakeLedger struct {
	entries []models.SyncLedgerEntry
}

func (f *fakeLedger) Record(_ context.Context, entry *models.SyncLedgerEntry) {
	f.entries = append(f.entries, *entry)
}

func strPtr(s string) *string {
	return &s
}
