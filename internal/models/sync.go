package models

import (
	"time"

	"gorm.io/datatypes"
)

// Sync types recorded in the ledger
const (
	SyncTypeStock       = "stock"
	SyncTypeResolve     = "resolve"
	SyncTypePurchase    = "purchase_order"
	SyncTypeOrderLookup = "order_lookup"
	SyncTypeRetry       = "retry"
)

// Sync directions
const (
	SyncDirectionPush = "push" // local -> Sellus
	SyncDirectionPull = "pull" // Sellus -> local
)

// Ledger entry statuses
const (
	SyncStatusOK      = "success"
	SyncStatusFailed  = "error"
	SyncStatusPartial = "partial_success"
)

// SyncLedgerEntry records one synchronization attempt against Sellus.
// Rows are append-only: nothing mutates an entry after insert. The ledger is
// the audit trail; the retry queue lives in UnresolvedSyncFailure.
type SyncLedgerEntry struct {
	ID                int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	CorrelationID     string         `gorm:"type:uuid;index" json:"correlation_id"`
	SyncType          string         `gorm:"type:varchar(50);not null;index" json:"sync_type"`
	Direction         string         `gorm:"type:varchar(10);not null" json:"direction"`
	RelatedArticleRef string         `gorm:"index" json:"related_article_ref"`
	RelatedProductID  *uint          `gorm:"index" json:"related_product_id,omitempty"`
	Status            string         `gorm:"type:varchar(20);not null;index" json:"status"` // success | error | partial_success
	RequestPayload    datatypes.JSON `json:"request_payload,omitempty"`
	ResponsePayload   datatypes.JSON `json:"response_payload,omitempty"`
	ErrorMessage      string         `gorm:"type:text" json:"error_message"`
	DurationMs        int64          `gorm:"default:0" json:"duration_ms"`
	CreatedAt         time.Time      `json:"created_at"`
}

// TableName specifies the table name
func (SyncLedgerEntry) TableName() string {
	return "sync_ledger_entries"
}

// UnresolvedSyncFailure is the retry coordinator's work queue: one row per
// terminally-failed stock reconciliation. Rows are never deleted; a
// successful retry stamps ResolvedAt and the queue query excludes it.
type UnresolvedSyncFailure struct {
	ID              int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID       uint       `gorm:"index;not null" json:"product_id"`
	ArticleRef      string     `gorm:"index" json:"article_ref"`
	QuantityChanged int        `gorm:"default:0" json:"quantity_changed"`
	OrderNumber     string     `json:"order_number"`
	ErrorMessage    string     `gorm:"type:text" json:"error_message"`
	ResolvedAt      *time.Time `gorm:"index" json:"resolved_at,omitempty"`
	ResolvedBy      string     `gorm:"type:varchar(50)" json:"resolved_by,omitempty"` // "retry" or an operator name

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (UnresolvedSyncFailure) TableName() string {
	return "unresolved_sync_failures"
}

// IsResolved reports whether a retry already succeeded for this row
func (f *UnresolvedSyncFailure) IsResolved() bool {
	return f.ResolvedAt != nil
}
