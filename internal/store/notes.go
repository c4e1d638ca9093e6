package store

import (
	"context"

	"github.com/packlane/wmsgo/internal/database"
	"github.com/packlane/wmsgo/internal/models"
)

// DeliveryNoteRepo reads and writes delivery notes and their items
type DeliveryNoteRepo struct {
	db *database.DB
}

// NewDeliveryNoteRepo creates a delivery note repository
func NewDeliveryNoteRepo(db *database.DB) *DeliveryNoteRepo {
	return &DeliveryNoteRepo{db: db}
}

// GetItem loads one delivery note item
func (r *DeliveryNoteRepo) GetItem(ctx context.Context, id uint) (*models.DeliveryNoteItem, error) {
	var item models.DeliveryNoteItem
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// SaveItem persists a delivery note item
func (r *DeliveryNoteRepo) SaveItem(ctx context.Context, item *models.DeliveryNoteItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// FindItemByLabel locates the open delivery note item a scanned receipt label
// points at: the note is matched by cargo marking, the line by article number.
// Unchecked items win over checked ones so re-scanning a processed label is
// visible to the operator.
func (r *DeliveryNoteRepo) FindItemByLabel(ctx context.Context, cargoMarking, articleNumber string) (*models.DeliveryNoteItem, error) {
	var item models.DeliveryNoteItem
	err := r.db.WithContext(ctx).
		Joins("JOIN delivery_notes ON delivery_notes.id = delivery_note_items.delivery_note_id").
		Where("delivery_notes.cargo_marking = ? AND delivery_note_items.article_number = ?", cargoMarking, articleNumber).
		Order("delivery_note_items.is_checked ASC, delivery_note_items.created_at DESC").
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateNote persists a note together with its items
func (r *DeliveryNoteRepo) CreateNote(ctx context.Context, note *models.DeliveryNote) error {
	return r.db.WithContext(ctx).Create(note).Error
}

// GetNote loads a note with its items
func (r *DeliveryNoteRepo) GetNote(ctx context.Context, id uint) (*models.DeliveryNote, error) {
	var note models.DeliveryNote
	if err := r.db.WithContext(ctx).Preload("Items").First(&note, id).Error; err != nil {
		return nil, err
	}
	return &note, nil
}

// ListNotes returns the most recent notes
func (r *DeliveryNoteRepo) ListNotes(ctx context.Context, limit int) ([]models.DeliveryNote, error) {
	var notes []models.DeliveryNote
	err := r.db.WithContext(ctx).Preload("Items").
		Order("created_at DESC").
		Limit(limit).
		Find(&notes).Error
	return notes, err
}
