package pricing

import "time"

// ItemType distinguishes base services from optional add-ons.
type ItemType string

const (
	// ItemTypeService marks one of the two base offerings.
	ItemTypeService ItemType = "service"
	// ItemTypeAddon marks an optional extra priced on top of a service.
	ItemTypeAddon ItemType = "addon"
)

// Catalog item codes. Services and add-ons are keyed by these codes everywhere
// an order references the catalog.
const (
	CodeRemove         = "remove"
	CodeReset          = "reset"
	CodeYearProtection = "yearProtection"
	CodeExpressService = "expressService"
)

// Item is one purchasable catalog entry. Items are soft-deactivated through
// IsActive, never deleted; the read path only serves active rows.
type Item struct {
	Code        string    `gorm:"column:code;primaryKey;size:64;not null" json:"code"`
	Name        string    `gorm:"column:name;size:190;not null" json:"name"`
	Price       float64   `gorm:"column:price;not null" json:"price"`
	Type        ItemType  `gorm:"column:type;size:16;not null" json:"type"`
	Description *string   `gorm:"column:description;size:512" json:"description,omitempty"`
	IsActive    bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName exposes the table backing the pricing catalog.
func (Item) TableName() string {
	return "pricing_items"
}
