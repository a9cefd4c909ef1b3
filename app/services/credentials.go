package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Rakhulsr/techstore-api/app/models"
	"github.com/Rakhulsr/techstore-api/app/repositories"
	"github.com/Rakhulsr/techstore-api/app/utils/apperr"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenName = "auth_token"

// CredentialStore hashes passwords and manages revocable bearer tokens.
type CredentialStore interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
	IssueToken(ctx context.Context, user *models.User) (string, error)
	// Authenticate resolves a bearer token to its user and the id of the
	// token row backing it.
	Authenticate(ctx context.Context, token string) (*models.User, uint, error)
	RevokeToken(ctx context.Context, tokenRowID uint) error
	RevokeAllTokens(ctx context.Context, userID uint) error
}

// TokenCredentialStore signs HS256 JWTs whose jti names a row in
// personal_access_tokens. Deleting the row revokes the token.
type TokenCredentialStore struct {
	tokenRepo repositories.TokenRepository
	secret    []byte
	ttl       time.Duration
	cost      int
	now       func() time.Time
}

func NewCredentialStore(tokenRepo repositories.TokenRepository, secret string, ttl time.Duration) *TokenCredentialStore {
	return &TokenCredentialStore{
		tokenRepo: tokenRepo,
		secret:    []byte(secret),
		ttl:       ttl,
		cost:      bcrypt.DefaultCost,
		now:       time.Now,
	}
}

// WithCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (s *TokenCredentialStore) WithCost(cost int) *TokenCredentialStore {
	s.cost = cost
	return s
}

func (s *TokenCredentialStore) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperr.FieldError("password", fmt.Sprintf("The password field must not be greater than %d bytes.", maxPasswordBytes))
	}
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (s *TokenCredentialStore) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (s *TokenCredentialStore) IssueToken(ctx context.Context, user *models.User) (string, error) {
	now := s.now()
	row := &models.AccessToken{
		UserID:    user.ID,
		Name:      defaultTokenName,
		TokenID:   uuid.New().String(),
		CreatedAt: now,
	}

	claims := jwt.RegisteredClaims{
		ID:       row.TokenID,
		Subject:  strconv.FormatUint(uint64(user.ID), 10),
		IssuedAt: jwt.NewNumericDate(now),
	}
	if s.ttl > 0 {
		expires := now.Add(s.ttl)
		row.ExpiresAt = &expires
		claims.ExpiresAt = jwt.NewNumericDate(expires)
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	if err := s.tokenRepo.Create(ctx, row); err != nil {
		return "", fmt.Errorf("failed to persist token: %w", err)
	}
	return signed, nil
}

func (s *TokenCredentialStore) Authenticate(ctx context.Context, token string) (*models.User, uint, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		log.Debug().Err(err).Msg("rejected bearer token")
		return nil, 0, apperr.Unauthenticated()
	}

	row, err := s.tokenRepo.FindByTokenID(ctx, claims.ID)
	if err != nil {
		return nil, 0, err
	}
	if row == nil || row.User == nil {
		return nil, 0, apperr.Unauthenticated()
	}
	if claims.Subject != strconv.FormatUint(uint64(row.UserID), 10) {
		return nil, 0, apperr.Unauthenticated()
	}

	now := s.now()
	if row.ExpiresAt != nil && !now.Before(*row.ExpiresAt) {
		return nil, 0, apperr.Unauthenticated()
	}

	if err := s.tokenRepo.Touch(ctx, row.ID, now); err != nil {
		log.Warn().Err(err).Uint("token_id", row.ID).Msg("failed to record token usage")
	}
	return row.User, row.ID, nil
}

func (s *TokenCredentialStore) RevokeToken(ctx context.Context, tokenRowID uint) error {
	if tokenRowID == 0 {
		return errors.New("no token to revoke")
	}
	if err := s.tokenRepo.Delete(ctx, tokenRowID); err != nil {
		return fmt.Errorf("failed to revoke token %d: %w", tokenRowID, err)
	}
	return nil
}

func (s *TokenCredentialStore) RevokeAllTokens(ctx context.Context, userID uint) error {
	if err := s.tokenRepo.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke tokens of user %d: %w", userID, err)
	}
	return nil
}
