package models

import (
	"time"

	"gorm.io/gorm"
)

// SyncStatus tracks whether a product has been matched against Sellus
type SyncStatus string

const (
	SyncStatusUnsynced SyncStatus = "unsynced"
	SyncStatusSynced   SyncStatus = "synced"
	SyncStatusError    SyncStatus = "error"
)

// Product is the local article record.
// ExternalNumericID is the resolved Sellus identifier. It is set exactly once
// by the resolver and treated as a durable cache afterwards; clearing it is an
// explicit admin action, never something the sync engine does on its own.
type Product struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	Name               string     `gorm:"not null" json:"name"`
	ExternalArticleRef *string    `gorm:"index" json:"external_article_ref,omitempty"` // human-entered Sellus article number
	ExternalNumericID  *string    `gorm:"index" json:"external_numeric_id,omitempty"`  // resolved opaque Sellus id
	SyncStatus         SyncStatus `gorm:"type:varchar(20);default:'unsynced';index" json:"sync_status"`
	LastSyncedAt       *time.Time `json:"last_synced_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Inventory []InventoryRecord `gorm:"foreignKey:ProductID" json:"inventory,omitempty"`
}

// TableName specifies the table name for Product model
func (Product) TableName() string {
	return "products"
}

// IsResolved reports whether the Sellus numeric id is cached
func (p *Product) IsResolved() bool {
	return p.ExternalNumericID != nil && *p.ExternalNumericID != ""
}

// InventoryRecord is one product/location quantity. The authoritative stock
// for a product is the SUM over all of its records; no single record is ever
// pushed to Sellus on its own.
type InventoryRecord struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	ProductID  uint `gorm:"index;not null" json:"product_id"`
	LocationID uint `gorm:"index;not null" json:"location_id"`
	Quantity   int  `gorm:"not null;default:0;check:quantity >= 0" json:"quantity"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// TableName specifies the table name for InventoryRecord model
func (InventoryRecord) TableName() string {
	return "inventory_records"
}
