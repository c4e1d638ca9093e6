package models

import (
	"time"

	"gorm.io/gorm"
)

// StockLocation is one storage place in the warehouse hierarchy. Top-level
// rows (ParentID nil) are warehouses, children are zones, racks or bins.
// InventoryRecord rows reference the leaf their quantity sits on.
type StockLocation struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"not null" json:"name"`
	Code     string `gorm:"index" json:"code,omitempty"` // short code printed on rack labels
	ParentID *uint  `gorm:"index" json:"parent_id,omitempty"`
	IsActive bool   `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Parent   *StockLocation  `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Children []StockLocation `gorm:"foreignKey:ParentID" json:"children,omitempty"`
}

// TableName specifies the table name
func (StockLocation) TableName() string {
	return "stock_locations"
}
