package store

import (
	"context"
	"log"
	"time"

	"github.com/packlane/wmsgo/internal/database"
	"github.com/packlane/wmsgo/internal/models"
)

// FailureRepo is the gorm-backed retry queue
type FailureRepo struct {
	db *database.DB
}

// NewFailureRepo creates a failure repository
func NewFailureRepo(db *database.DB) *FailureRepo {
	return &FailureRepo{db: db}
}

// Create enqueues one unresolved failure
func (r *FailureRepo) Create(ctx context.Context, f *models.UnresolvedSyncFailure) error {
	return r.db.WithContext(ctx).Create(f).Error
}

// ListUnresolved returns the oldest rows without a ResolvedAt stamp
func (r *FailureRepo) ListUnresolved(ctx context.Context, limit int) ([]models.UnresolvedSyncFailure, error) {
	var rows []models.UnresolvedSyncFailure
	err := r.db.WithContext(ctx).
		Where("resolved_at IS NULL").
		Order("created_at").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// MarkResolved stamps ResolvedAt and ResolvedBy; the row itself is never
// deleted
func (r *FailureRepo) MarkResolved(ctx context.Context, id int64, by string) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Model(&models.UnresolvedSyncFailure{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"resolved_at": now,
			"resolved_by": by,
		}).Error
}

// LedgerRepo appends sync ledger entries. Writes are best effort: the ledger
// must never change a workflow's outcome, so failures are logged and
// swallowed.
type LedgerRepo struct {
	db *database.DB
}

// NewLedgerRepo creates a ledger repository
func NewLedgerRepo(db *database.DB) *LedgerRepo {
	return &LedgerRepo{db: db}
}

// Record inserts one entry
func (r *LedgerRepo) Record(ctx context.Context, entry *models.SyncLedgerEntry) {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		log.Printf("⚠️ Failed to write sync ledger entry (%s/%s): %v", entry.SyncType, entry.Status, err)
	}
}
