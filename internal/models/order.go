package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderKind distinguishes the remote document type an order shadows
type OrderKind string

const (
	OrderKindSales    OrderKind = "sales"
	OrderKindPurchase OrderKind = "purchase"
)

// Order is the local shadow of a remote Sellus order. It is created and
// updated by the order resolution chain and the bulk sales import; it is only
// ever deleted by the zombie cleanup pass once the remote listing has not
// mentioned it for the full grace window.
type Order struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	ExternalOrderID string    `gorm:"uniqueIndex;not null" json:"external_order_id"`
	OrderNumber     string    `gorm:"index" json:"order_number"` // cargo marking / reference string
	Kind            OrderKind `gorm:"type:varchar(20);default:'sales';index" json:"kind"`
	State           string    `gorm:"type:varchar(50)" json:"state"` // remote state string, stored verbatim

	// LastSeenRemoteAt is stamped every time the remote listing returns this
	// order; the zombie cleanup only touches orders stale for > ZombieGrace.
	LastSeenRemoteAt time.Time `gorm:"index" json:"last_seen_remote_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Lines []OrderLine `gorm:"foreignKey:OrderID" json:"lines,omitempty"`
}

// TableName specifies the table name for Order model
func (Order) TableName() string {
	return "orders"
}

// ZombieGrace is how long a shadow order may be absent from the remote
// listing before cleanup may delete it. Kept generous because the Sellus
// listing lags behind writes.
const ZombieGrace = 24 * time.Hour

// OrderLine is one article position on a shadow order
type OrderLine struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	OrderID         uint   `gorm:"index;not null" json:"order_id"`
	ArticleRef      string `gorm:"index;not null" json:"article_ref"`
	QuantityOrdered int    `gorm:"not null;default:0" json:"quantity_ordered"`
	QuantityPicked  int    `gorm:"not null;default:0" json:"quantity_picked"`
	IsPicked        bool   `gorm:"default:false" json:"is_picked"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Order *Order `gorm:"foreignKey:OrderID" json:"order,omitempty"`
}

// TableName specifies the table name for OrderLine model
func (OrderLine) TableName() string {
	return "order_lines"
}
