package store

import (
	"context"
	"errors"
	"time"

	"github.com/packlane/wmsgo/internal/database"
	"github.com/packlane/wmsgo/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRepo maintains the local shadow of remote orders
type OrderRepo struct {
	db *database.DB
}

// NewOrderRepo creates an order repository
func NewOrderRepo(db *database.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

// UpsertShadow creates or refreshes a shadow order and stamps
// LastSeenRemoteAt
func (r *OrderRepo) UpsertShadow(ctx context.Context, externalID, orderNumber string, kind models.OrderKind, state string) (*models.Order, error) {
	order := models.Order{
		ExternalOrderID:  externalID,
		OrderNumber:      orderNumber,
		Kind:             kind,
		State:            state,
		LastSeenRemoteAt: time.Now().UTC(),
	}

	// deleted_at is part of the update set so a soft-deleted row revives
	// instead of blocking the unique external id forever
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_order_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"order_number", "state", "last_seen_remote_at", "updated_at", "deleted_at"}),
	}).Create(&order).Error
	if err != nil {
		return nil, err
	}

	// Re-read: on conflict the insert does not report the existing row's id
	var saved models.Order
	if err := r.db.WithContext(ctx).Where("external_order_id = ?", externalID).First(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

// RecordPick increments QuantityPicked on the order's line for the article,
// creating the line if absent, and flips IsPicked once the ordered quantity
// is reached
func (r *OrderRepo) RecordPick(ctx context.Context, orderID uint, articleRef string, qty, quantityOrdered int) (*models.OrderLine, error) {
	var line models.OrderLine
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND article_ref = ?", orderID, articleRef).
		First(&line).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		line = models.OrderLine{
			OrderID:         orderID,
			ArticleRef:      articleRef,
			QuantityOrdered: quantityOrdered,
		}
	} else if err != nil {
		return nil, err
	}

	line.QuantityPicked += qty
	if line.QuantityOrdered == 0 && quantityOrdered > 0 {
		line.QuantityOrdered = quantityOrdered
	}
	if line.QuantityOrdered > 0 && line.QuantityPicked >= line.QuantityOrdered {
		line.IsPicked = true
	}

	if err := r.db.WithContext(ctx).Save(&line).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

// DeleteZombies removes shadow orders the remote listing has not mentioned
// since the cutoff, together with their lines. The delete is unscoped: the
// same external id must be insertable again once the remote listing mentions
// the order, and a soft-deleted ghost would collide with the unique index.
func (r *OrderRepo) DeleteZombies(ctx context.Context, seenBefore time.Time) (int64, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("last_seen_remote_at < ?", seenBefore).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	if err := r.db.WithContext(ctx).Where("order_id IN ?", ids).Delete(&models.OrderLine{}).Error; err != nil {
		return 0, err
	}

	result := r.db.WithContext(ctx).Unscoped().Where("id IN ?", ids).Delete(&models.Order{})
	return result.RowsAffected, result.Error
}
