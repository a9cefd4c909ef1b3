package models

import (
	"time"
)

type AccessToken struct {
	ID         uint       `gorm:"primaryKey"`
	UserID     uint       `gorm:"not null;index"`
	User       *User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Name       string     `gorm:"size:255;not null"`
	TokenID    string     `gorm:"size:64;not null;uniqueIndex"`
	LastUsedAt *time.Time
	ExpiresAt  *time.Time
	CreatedAt  time.Time
}

func (AccessToken) TableName() string {
	return "personal_access_tokens"
}
