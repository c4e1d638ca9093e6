package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DeliveryNote is one paper delivery note, usually captured by the vision
// extraction step from a photo. Extracted fields get the same validation as
// manual entry; the extractor output is untrusted input.
type DeliveryNote struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	DeliveryNoteNumber string         `gorm:"index" json:"delivery_note_number"`
	CargoMarking       string         `gorm:"index" json:"cargo_marking"`
	Source             string         `gorm:"type:varchar(20);default:'manual'" json:"source"` // manual | vision
	RawExtraction      datatypes.JSON `json:"raw_extraction,omitempty"`                        // original extractor payload for audit

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Items []DeliveryNoteItem `gorm:"foreignKey:DeliveryNoteID" json:"items,omitempty"`
}

// TableName specifies the table name for DeliveryNote model
func (DeliveryNote) TableName() string {
	return "delivery_notes"
}

// DeliveryNoteItem is one line of a delivery note. Checking an item off is
// what triggers the stock reconciliation and purchase-order accrual
// workflows.
type DeliveryNoteItem struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	DeliveryNoteID   uint   `gorm:"index;not null" json:"delivery_note_id"`
	ArticleNumber    string `gorm:"index;not null" json:"article_number"`
	OrderNumber      string `gorm:"index" json:"order_number"` // cargo/order reference
	Description      string `json:"description"`
	QuantityExpected int    `gorm:"not null;default:0" json:"quantity_expected"`
	QuantityChecked  int    `gorm:"not null;default:0" json:"quantity_checked"`
	IsChecked        bool   `gorm:"default:false;index" json:"is_checked"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	DeliveryNote *DeliveryNote `gorm:"foreignKey:DeliveryNoteID" json:"delivery_note,omitempty"`
}

// TableName specifies the table name for DeliveryNoteItem model
func (DeliveryNoteItem) TableName() string {
	return "delivery_note_items"
}
