package models

import (
	"time"
)

type Category struct {
	ID          uint    `gorm:"primaryKey"`
	Name        string  `gorm:"size:255;not null"`
	Slug        string  `gorm:"size:255;not null;uniqueIndex"`
	Description *string `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
