package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Rakhulsr/techstore-api/app/configs"
	"github.com/Rakhulsr/techstore-api/app/models"
	"github.com/Rakhulsr/techstore-api/app/repositories"
	"github.com/Rakhulsr/techstore-api/app/utils/apperr"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Stats is the dashboard summary. TotalUsers and TotalProducts are only
// filled in extended mode.
type Stats struct {
	TotalUsers    *int64
	TotalProducts *int64
	TotalOrders   int64
	TotalRevenue  decimal.Decimal
}

type CreateUserInput struct {
	Name                 string
	Email                string
	Password             string
	PasswordConfirmation string
	Role                 string
	IsAdmin              bool
}

type UserPatch struct {
	Name    *string
	Email   *string
	Role    *string
	IsAdmin *bool
}

type AdminService struct {
	userRepo    repositories.UserRepositoryImpl
	productRepo repositories.ProductRepositoryImpl
	orderRepo   repositories.OrderRepository
	accounts    *AccountService
	orders      *OrderService
	creds       CredentialStore
	statsMode   string
}

func NewAdminService(
	userRepo repositories.UserRepositoryImpl,
	productRepo repositories.ProductRepositoryImpl,
	orderRepo repositories.OrderRepository,
	accounts *AccountService,
	orders *OrderService,
	creds CredentialStore,
	statsMode string,
) *AdminService {
	return &AdminService{
		userRepo:    userRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		accounts:    accounts,
		orders:      orders,
		creds:       creds,
		statsMode:   statsMode,
	}
}

func (s *AdminService) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	orders, err := s.orderRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	stats.TotalOrders = orders

	revenue, err := s.orderRepo.SumTotal(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalRevenue = revenue.Round(2)

	if s.statsMode == configs.StatsModeBasic {
		return stats, nil
	}

	users, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	products, err := s.productRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	stats.TotalUsers = &users
	stats.TotalProducts = &products
	return stats, nil
}

func (s *AdminService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.GetAllUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func (s *AdminService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	if user == nil {
		return nil, apperr.NotFound("User not found.")
	}
	return user, nil
}

func checkRole(role string) (string, error) {
	role = strings.TrimSpace(role)
	switch role {
	case "":
		return models.RoleClient, nil
	case models.RoleClient, models.RoleAdmin:
		return role, nil
	default:
		return "", apperr.FieldError("role", "The selected role is invalid.")
	}
}

// CreateUser lets an admin create an account with any role. No token is
// issued.
func (s *AdminService) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	name, err := checkName(in.Name)
	if err != nil {
		return nil, err
	}
	email := normalizeEmail(in.Email)
	if email == "" {
		return nil, apperr.FieldError("email", "The email field is required.")
	}
	if err := checkNewPassword("password", in.Password, in.PasswordConfirmation); err != nil {
		return nil, err
	}
	role, err := checkRole(in.Role)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.ensureEmailFree(ctx, email, 0); err != nil {
		return nil, err
	}

	hashed, err := s.creds.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Name:     name,
		Email:    email,
		Password: hashed,
		Role:     role,
		IsAdmin:  in.IsAdmin,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if repositories.IsDuplicateKey(err) {
			return nil, apperr.FieldError("email", "The email has already been taken.")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	log.Info().Uint("user_id", user.ID).Str("role", user.Role).Bool("is_admin", user.IsAdmin).Msg("user created by admin")
	return user, nil
}

func (s *AdminService) UpdateUser(ctx context.Context, id uint, patch UserPatch) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		if user.Name, err = checkName(*patch.Name); err != nil {
			return nil, err
		}
	}
	if patch.Email != nil {
		email := normalizeEmail(*patch.Email)
		if email == "" {
			return nil, apperr.FieldError("email", "The email field is required.")
		}
		if err := s.accounts.ensureEmailFree(ctx, email, user.ID); err != nil {
			return nil, err
		}
		user.Email = email
	}
	if patch.Role != nil {
		if user.Role, err = checkRole(*patch.Role); err != nil {
			return nil, err
		}
	}
	if patch.IsAdmin != nil {
		user.IsAdmin = *patch.IsAdmin
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if repositories.IsDuplicateKey(err) {
			return nil, apperr.FieldError("email", "The email has already been taken.")
		}
		return nil, fmt.Errorf("failed to update user %d: %w", id, err)
	}
	return user, nil
}

// DeleteUser removes the account together with its orders and tokens.
// Admins cannot delete themselves.
func (s *AdminService) DeleteUser(ctx context.Context, callerID, id uint) error {
	if callerID == id {
		return apperr.Forbidden("You cannot delete your own account.")
	}
	if _, err := s.GetUser(ctx, id); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	log.Info().Uint("user_id", id).Uint("deleted_by", callerID).Msg("user deleted")
	return nil
}

func (s *AdminService) UserOrders(ctx context.Context, id uint) ([]models.Order, error) {
	if _, err := s.GetUser(ctx, id); err != nil {
		return nil, err
	}
	return s.orders.ListUserOrders(ctx, id)
}

// EnsureAdmin creates the given administrator or promotes the existing
// account with that email.
func (s *AdminService) EnsureAdmin(ctx context.Context, name, email, password string) (*models.User, bool, error) {
	existing, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		existing.Role = models.RoleAdmin
		existing.IsAdmin = true
		if err := s.userRepo.Update(ctx, existing); err != nil {
			return nil, false, fmt.Errorf("failed to promote user %d: %w", existing.ID, err)
		}
		return existing, false, nil
	}

	user, err := s.CreateUser(ctx, CreateUserInput{
		Name:                 name,
		Email:                email,
		Password:             password,
		PasswordConfirmation: password,
		Role:                 models.RoleAdmin,
		IsAdmin:              true,
	})
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}
