package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem is one order line. UnitPrice is the price captured at purchase
// time and is never refreshed from the product.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey"`
	OrderID   uint            `gorm:"not null;index"`
	ProductID *uint           `gorm:"index"`
	Product   *Product        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (OrderItem) TableName() string {
	return "order_product"
}
