package store

import (
	"context"
	"errors"
	"time"

	"github.com/packlane/wmsgo/internal/database"
	"github.com/packlane/wmsgo/internal/models"
	"gorm.io/gorm"
)

// ProductRepo is the gorm-backed product store. It is the single seam for
// reading and writing the resolved numeric-id cache.
type ProductRepo struct {
	db *database.DB
}

// NewProductRepo creates a product repository
func NewProductRepo(db *database.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

// Get loads one product by id
func (r *ProductRepo) Get(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// GetByArticleRef returns the product carrying the reference, or nil when
// none does
func (r *ProductRepo) GetByArticleRef(ctx context.Context, ref string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Where("external_article_ref = ?", ref).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// SetResolved persists the numeric id, marks the product synced and stamps
// LastSyncedAt
func (r *ProductRepo) SetResolved(ctx context.Context, id uint, numericID string) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"external_numeric_id": numericID,
			"sync_status":         models.SyncStatusSynced,
			"last_synced_at":      now,
		}).Error
}

// MarkSyncError flags a product whose article reference the remote catalog
// does not know
func (r *ProductRepo) MarkSyncError(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		Update("sync_status", models.SyncStatusError).Error
}

// ListUnresolved returns all products without a cached numeric id
func (r *ProductRepo) ListUnresolved(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("external_numeric_id IS NULL OR external_numeric_id = ''").
		Order("id").
		Find(&products).Error
	return products, err
}

// InventoryRepo exposes the authoritative stock totals
type InventoryRepo struct {
	db *database.DB
}

// NewInventoryRepo creates an inventory repository
func NewInventoryRepo(db *database.DB) *InventoryRepo {
	return &InventoryRepo{db: db}
}

// TotalStock sums the quantity of every inventory record of the product
func (r *InventoryRepo) TotalStock(ctx context.Context, productID uint) (int, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.InventoryRecord{}).
		Where("product_id = ?", productID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	return int(total), err
}
