package sellus

import (
	"context"
	"time"

	"github.com/packlane/wmsgo/internal/models"
)

// The workflows talk to persistence through these seams. Production wiring
// uses the gorm repositories in internal/store; tests substitute in-memory
// fakes.

// ProductStore is the resolver's repository seam. Every reader and writer of
// the numeric-id cache goes through here, which is what makes the
// resolve-once behavior observable.
type ProductStore interface {
	Get(ctx context.Context, id uint) (*models.Product, error)
	// GetByArticleRef returns nil without error when no product carries the ref
	GetByArticleRef(ctx context.Context, ref string) (*models.Product, error)
	// SetResolved persists the numeric id, marks the product synced and
	// stamps LastSyncedAt
	SetResolved(ctx context.Context, id uint, numericID string) error
	MarkSyncError(ctx context.Context, id uint) error
	ListUnresolved(ctx context.Context) ([]models.Product, error)
}

// InventoryStore exposes the authoritative stock total
type InventoryStore interface {
	// TotalStock sums Quantity across all inventory records of the product
	TotalStock(ctx context.Context, productID uint) (int, error)
}

// OrderStore maintains the local shadow of remote orders
type OrderStore interface {
	// UpsertShadow creates or refreshes a shadow order and stamps
	// LastSeenRemoteAt
	UpsertShadow(ctx context.Context, externalID, orderNumber string, kind models.OrderKind, state string) (*models.Order, error)
	// RecordPick increments QuantityPicked on the line for articleRef,
	// creating the line with quantityOrdered if absent, and flips IsPicked
	// once picked >= ordered
	RecordPick(ctx context.Context, orderID uint, articleRef string, qty, quantityOrdered int) (*models.OrderLine, error)
	// DeleteZombies removes shadow orders not seen remotely since the cutoff
	DeleteZombies(ctx context.Context, seenBefore time.Time) (int64, error)
}

// FailureStore is the retry coordinator's queue
type FailureStore interface {
	Create(ctx context.Context, f *models.UnresolvedSyncFailure) error
	// ListUnresolved returns up to limit rows with ResolvedAt IS NULL,
	// oldest first
	ListUnresolved(ctx context.Context, limit int) ([]models.UnresolvedSyncFailure, error)
	MarkResolved(ctx context.Context, id int64, by string) error
}

// DeliveryNoteStore reads and updates delivery note items for the check-off
// trigger
type DeliveryNoteStore interface {
	GetItem(ctx context.Context, id uint) (*models.DeliveryNoteItem, error)
	SaveItem(ctx context.Context, item *models.DeliveryNoteItem) error
}

// Ledger records sync attempts. Writes are best effort: a failed ledger
// insert must never change a workflow's outcome.
type Ledger interface {
	Record(ctx context.Context, entry *models.SyncLedgerEntry)
}
