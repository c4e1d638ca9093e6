package sellus

import (
	"encoding/json"
	"fmt"

	"github.com/packlane/wmsgo/internal/models"
)

// The Sellus API's JSON shapes vary by endpoint and deployment: lists arrive
// bare or wrapped, ids arrive as numbers or strings, and several field names
// have been observed for the same value. Each parser below probes an ordered
// alias list instead of trusting a single documented name.

var (
	listKeys = []string{"data", "items", "orders", "results"}

	itemIDAliases     = []string{"id", "itemId", "item_id"}
	itemNumberAliases = []string{"itemNumber", "articleNumber", "number", "sku", "item_number"}
	stockAliases      = []string{"stock", "quantity", "availableQuantity"}

	orderIDAliases     = []string{"id", "orderId", "order_id"}
	orderNumberAliases = []string{"orderNumber", "number", "reference", "name"}
	orderStateAliases  = []string{"state", "status"}

	shippedAliases    = []string{"shippedQuantity", "shipped", "shipped_qty"}
	poStockAliases    = []string{"stockQuantity", "stock"}
	totalStockAliases = []string{"totalStockQuantity", "totalStock", "total_stock_qty"}
)

// activeStates are the remote order states considered "active" when picking a
// fallback order for an article
var activeStates = map[string]bool{
	"active":      true,
	"open":        true,
	"confirmed":   true,
	"in_progress": true,
}

// RemoteItem is one catalog item as Sellus returns it. Fields keeps every
// raw field so updates can echo remote-required values back unchanged.
type RemoteItem struct {
	ID         string
	ItemNumber string
	Stock      float64
	Fields     map[string]json.RawMessage
}

// RemoteOrder is one sales or purchase order header from a Sellus listing
type RemoteOrder struct {
	ID     string
	Number string
	State  string
	Fields map[string]json.RawMessage
}

// RemotePurchaseOrder carries the three quantity counters the accrual
// workflow reads and recomputes
type RemotePurchaseOrder struct {
	ID         string
	Number     string
	Shipped    float64
	Stock      float64
	TotalStock float64
	Fields     map[string]json.RawMessage
}

// IsActive reports whether the remote system considers this order active
func (o *RemoteOrder) IsActive() bool {
	return activeStates[o.State]
}

func probeString(fields map[string]json.RawMessage, aliases []string) string {
	for _, key := range aliases {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var fs models.FlexString
		if err := json.Unmarshal(raw, &fs); err == nil && fs != "" {
			return fs.String()
		}
	}
	return ""
}

func probeID(fields map[string]json.RawMessage, aliases []string) string {
	for _, key := range aliases {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var fi models.FlexID
		if err := json.Unmarshal(raw, &fi); err == nil && !fi.IsZero() {
			return fi.String()
		}
	}
	return ""
}

func probeFloat(fields map[string]json.RawMessage, aliases []string) (float64, bool) {
	for _, key := range aliases {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var ff models.FlexFloat
		if err := json.Unmarshal(raw, &ff); err == nil {
			return ff.Float64(), true
		}
	}
	return 0, false
}

// unwrapList accepts either a bare JSON array or an object wrapping the array
// under one of the known list keys
func unwrapList(raw json.RawMessage) ([]json.RawMessage, error) {
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, fmt.Errorf("response is neither a list nor an object: %w", err)
	}

	for _, key := range listKeys {
		inner, ok := wrapper[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(inner, &list); err == nil {
			return list, nil
		}
	}

	return nil, fmt.Errorf("no list found under any of %v", listKeys)
}

func parseFields(raw json.RawMessage) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode object: %w", err)
	}
	return fields, nil
}

func parseItem(raw json.RawMessage) (*RemoteItem, error) {
	fields, err := parseFields(raw)
	if err != nil {
		return nil, err
	}

	item := &RemoteItem{
		ID:         probeID(fields, itemIDAliases),
		ItemNumber: probeString(fields, itemNumberAliases),
		Fields:     fields,
	}
	item.Stock, _ = probeFloat(fields, stockAliases)

	if item.ID == "" {
		return nil, fmt.Errorf("item without id: %s", truncate(string(raw), 120))
	}
	return item, nil
}

func parseItemList(raw json.RawMessage) ([]*RemoteItem, error) {
	entries, err := unwrapList(raw)
	if err != nil {
		return nil, err
	}

	items := make([]*RemoteItem, 0, len(entries))
	for _, entry := range entries {
		item, err := parseItem(entry)
		if err != nil {
			// Skip malformed entries, the catalog is large and partially dirty
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func parseOrder(raw json.RawMessage) (*RemoteOrder, error) {
	fields, err := parseFields(raw)
	if err != nil {
		return nil, err
	}

	order := &RemoteOrder{
		ID:     probeID(fields, orderIDAliases),
		Number: probeString(fields, orderNumberAliases),
		State:  probeString(fields, orderStateAliases),
		Fields: fields,
	}
	if order.ID == "" {
		return nil, fmt.Errorf("order without id: %s", truncate(string(raw), 120))
	}
	return order, nil
}

func parseOrderList(raw json.RawMessage) ([]*RemoteOrder, error) {
	entries, err := unwrapList(raw)
	if err != nil {
		return nil, err
	}

	orders := make([]*RemoteOrder, 0, len(entries))
	for _, entry := range entries {
		order, err := parseOrder(entry)
		if err != nil {
			continue
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func parsePurchaseOrder(raw json.RawMessage) (*RemotePurchaseOrder, error) {
	fields, err := parseFields(raw)
	if err != nil {
		return nil, err
	}

	po := &RemotePurchaseOrder{
		ID:     probeID(fields, orderIDAliases),
		Number: probeString(fields, orderNumberAliases),
		Fields: fields,
	}
	po.Shipped, _ = probeFloat(fields, shippedAliases)
	po.Stock, _ = probeFloat(fields, poStockAliases)
	po.TotalStock, _ = probeFloat(fields, totalStockAliases)

	if po.ID == "" {
		return nil, fmt.Errorf("purchase order without id: %s", truncate(string(raw), 120))
	}
	return po, nil
}

func parsePurchaseOrderList(raw json.RawMessage) ([]*RemotePurchaseOrder, error) {
	entries, err := unwrapList(raw)
	if err != nil {
		return nil, err
	}

	orders := make([]*RemotePurchaseOrder, 0, len(entries))
	for _, entry := range entries {
		po, err := parsePurchaseOrder(entry)
		if err != nil {
			continue
		}
		orders = append(orders, po)
	}
	return orders, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
