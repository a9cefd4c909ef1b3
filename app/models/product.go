package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product.IsActive carries no gorm default on purpose: a default tag would
// make gorm skip an explicit false on insert.
type Product struct {
	ID          uint            `gorm:"primaryKey"`
	CategoryID  uint            `gorm:"not null;index"`
	Category    *Category       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	Name        string          `gorm:"size:255;not null"`
	Slug        string          `gorm:"size:255;not null;uniqueIndex"`
	Description *string         `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Stock       int             `gorm:"not null"`
	Image       *string         `gorm:"size:2048"`
	IsActive    bool            `gorm:"not null;index"`
	CreatedAt   time.Time       `gorm:"index"`
	UpdatedAt   time.Time
}
