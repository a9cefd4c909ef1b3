package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Rakhulsr/techstore-api/app/models"
	"github.com/Rakhulsr/techstore-api/app/repositories"
	"github.com/Rakhulsr/techstore-api/app/utils/apperr"
	"github.com/rs/zerolog/log"
)

const (
	minPasswordLength = 8
	// bcrypt only hashes the first 72 bytes.
	maxPasswordBytes = 72
)

type RegisterInput struct {
	Name                 string
	Email                string
	Password             string
	PasswordConfirmation string
}

type AccountService struct {
	userRepo repositories.UserRepositoryImpl
	creds    CredentialStore
}

func NewAccountService(userRepo repositories.UserRepositoryImpl, creds CredentialStore) *AccountService {
	return &AccountService{userRepo: userRepo, creds: creds}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func checkNewPassword(field, password, confirmation string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return apperr.FieldError(field, fmt.Sprintf("The %s field must be at least %d characters.", strings.ReplaceAll(field, "_", " "), minPasswordLength))
	}
	if len(password) > maxPasswordBytes {
		return apperr.FieldError(field, fmt.Sprintf("The %s field must not be greater than %d bytes.", strings.ReplaceAll(field, "_", " "), maxPasswordBytes))
	}
	if password != confirmation {
		return apperr.FieldError(field, fmt.Sprintf("The %s field confirmation does not match.", strings.ReplaceAll(field, "_", " ")))
	}
	return nil
}

func (s *AccountService) ensureEmailFree(ctx context.Context, email string, exceptID uint) error {
	taken, err := s.userRepo.EmailTaken(ctx, email, exceptID)
	if err != nil {
		return err
	}
	if taken {
		return apperr.FieldError("email", "The email has already been taken.")
	}
	return nil
}

// Register creates a client account and returns it with a fresh token.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, "", apperr.FieldError("name", "The name field is required.")
	}
	email := normalizeEmail(in.Email)
	if err := checkNewPassword("password", in.Password, in.PasswordConfirmation); err != nil {
		return nil, "", err
	}
	if err := s.ensureEmailFree(ctx, email, 0); err != nil {
		return nil, "", err
	}

	hashed, err := s.creds.Hash(in.Password)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: hashed,
		Role:     models.RoleClient,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if repositories.IsDuplicateKey(err) {
			return nil, "", apperr.FieldError("email", "The email has already been taken.")
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.creds.IssueToken(ctx, user)
	if err != nil {
		return nil, "", err
	}
	log.Info().Uint("user_id", user.ID).Msg("user registered")
	return user, token, nil
}

// Login revokes every token the user already holds before issuing a new
// one, so at most one session is live per account.
func (s *AccountService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || !s.creds.Verify(password, user.Password) {
		return nil, "", apperr.InvalidLogin()
	}

	if err := s.creds.RevokeAllTokens(ctx, user.ID); err != nil {
		return nil, "", err
	}
	token, err := s.creds.IssueToken(ctx, user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AccountService) Logout(ctx context.Context, tokenRowID uint) error {
	return s.creds.RevokeToken(ctx, tokenRowID)
}

// Me reloads the caller so the response reflects the stored row.
func (s *AccountService) Me(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.Unauthenticated()
	}
	return user, nil
}

// UpdateProfile changes name and email; nil leaves a field untouched.
func (s *AccountService) UpdateProfile(ctx context.Context, userID uint, name, email *string) (*models.User, error) {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}

	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, apperr.FieldError("name", "The name field is required.")
		}
		user.Name = trimmed
	}
	if email != nil {
		normalized := normalizeEmail(*email)
		if normalized == "" {
			return nil, apperr.FieldError("email", "The email field is required.")
		}
		if err := s.ensureEmailFree(ctx, normalized, user.ID); err != nil {
			return nil, err
		}
		user.Email = normalized
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if repositories.IsDuplicateKey(err) {
			return nil, apperr.FieldError("email", "The email has already been taken.")
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// UpdatePassword keeps existing tokens valid.
func (s *AccountService) UpdatePassword(ctx context.Context, userID uint, current, password, confirmation string) error {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}
	if err := checkNewPassword("password", password, confirmation); err != nil {
		return err
	}
	if !s.creds.Verify(current, user.Password) {
		return apperr.InvalidCredentials("current_password", "The current password is incorrect.")
	}

	hashed, err := s.creds.Hash(password)
	if err != nil {
		return err
	}
	return s.userRepo.UpdatePassword(ctx, user.ID, hashed)
}
