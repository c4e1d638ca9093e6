package sellus

import "errors"

// Sentinel errors of the reconciliation engine. Resolution and lookup
// failures are caught at workflow boundaries and converted into structured
// outcomes; they never escape to HTTP handlers as raw errors.
var (
	ErrMissingArticleRef = errors.New("product has no article reference")
	ErrArticleNotFound   = errors.New("article not found in remote catalog")
	ErrNoOrderFound      = errors.New("no matching remote order found")
	ErrRemoteUnavailable = errors.New("remote system unavailable")
)

// OutcomeStatus distinguishes full success, partial success and hard failure.
// Callers render different operator messaging per status, so these are never
// collapsed into a boolean.
type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeWarning OutcomeStatus = "warning" // local state updated, remote counters untouched
	OutcomeSkipped OutcomeStatus = "skipped" // no remote order found, local receipt still counts
	OutcomeError   OutcomeStatus = "error"   // hard failure, nothing should be assumed updated
)

// AccruedQuantities is the recomputed counter triple pushed back to Sellus.
// The remote system has no atomic increment, so the workflow reads the old
// values, adds the received quantity locally and posts the full triple.
type AccruedQuantities struct {
	Shipped    float64 `json:"shippedQuantity"`
	Stock      float64 `json:"stockQuantity"`
	TotalStock float64 `json:"totalStockQuantity"`
}

// AccrualOutcome is the structured result of the purchase-order accrual
// workflow.
type AccrualOutcome struct {
	Status        OutcomeStatus      `json:"status"`
	Message       string             `json:"message"`
	RemoteOrderID string             `json:"remote_order_id,omitempty"`
	LocalLineID   uint               `json:"local_line_id,omitempty"`
	Posted        *AccruedQuantities `json:"posted,omitempty"`
}

// StockResult is the structured result of the stock reconciliation workflow.
// Verified=false means the write was accepted but the read-back disagreed;
// the discrepancy itself is the signal, not an error.
type StockResult struct {
	ProductID     uint    `json:"product_id"`
	NumericID     string  `json:"numeric_id"`
	TargetStock   int     `json:"target_stock"`
	OldStock      float64 `json:"old_stock"`
	ObservedStock float64 `json:"observed_stock"`
	Verified      bool    `json:"verified"`
	Message       string  `json:"message"`
}

// ResolveReport summarizes a batch identifier resolution pass
type ResolveReport struct {
	Scanned  int      `json:"scanned"`
	Resolved int      `json:"resolved"`
	Missing  int      `json:"missing"` // article ref absent from the remote catalog
	Failed   int      `json:"failed"`  // products without an article ref
	Errors   []string `json:"errors,omitempty"`
}

// RetryReport summarizes one retry coordinator pass
type RetryReport struct {
	Processed    int      `json:"processed"`
	Resolved     int      `json:"resolved"`
	StillFailing int      `json:"still_failing"`
	Reasons      []string `json:"reasons,omitempty"`
}

// CheckOffResult combines the two workflows triggered by an operator checking
// an item off a delivery note.
type CheckOffResult struct {
	ItemID  uint            `json:"item_id"`
	Checked bool            `json:"checked"`
	Stock   *StockResult    `json:"stock,omitempty"`
	Accrual *AccrualOutcome `json:"accrual,omitempty"`
	Message string          `json:"message"`
}
