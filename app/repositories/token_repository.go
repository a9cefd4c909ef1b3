package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rakhulsr/techstore-api/app/models"
	"gorm.io/gorm"
)

type TokenRepository interface {
	Create(ctx context.Context, token *models.AccessToken) error
	FindByTokenID(ctx context.Context, tokenID string) (*models.AccessToken, error)
	Touch(ctx context.Context, id uint, at time.Time) error
	Delete(ctx context.Context, id uint) error
	DeleteByUserID(ctx context.Context, userID uint) error
	CountByUserID(ctx context.Context, userID uint) (int64, error)
}

type tokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Create(ctx context.Context, token *models.AccessToken) error {
	return r.db.WithContext(ctx).Omit("User").Create(token).Error
}

func (r *tokenRepository) FindByTokenID(ctx context.Context, tokenID string) (*models.AccessToken, error) {
	var token models.AccessToken
	err := r.db.WithContext(ctx).Preload("User").Where("token_id = ?", tokenID).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find access token: %w", err)
	}
	return &token, nil
}

func (r *tokenRepository) Touch(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.AccessToken{}).Where("id = ?", id).Update("last_used_at", at).Error
}

func (r *tokenRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.AccessToken{}, "id = ?", id).Error
}

func (r *tokenRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.AccessToken{}).Error
}

func (r *tokenRepository) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.AccessToken{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
