package services

import (
	"context"
	"testing"

	"github.com/Rakhulsr/techstore-api/app/configs"
	"github.com/Rakhulsr/techstore-api/app/db/testdb"
	"github.com/Rakhulsr/techstore-api/app/models"
	"github.com/Rakhulsr/techstore-api/app/repositories"
	"github.com/Rakhulsr/techstore-api/app/utils/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	disk     *storage.LocalDisk
	tokens   repositories.TokenRepository
	creds    *TokenCredentialStore
	accounts *AccountService
	catalog  *CatalogService
	orders   *OrderService
	admin    *AdminService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithMode(t, configs.StatsModeExtended)
}

func newFixtureWithMode(t *testing.T, statsMode string) *fixture {
	t.Helper()

	db := testdb.Open(t)
	userRepo := repositories.NewUserRepository(db)
	productRepo := repositories.NewProductRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	itemRepo := repositories.NewOrderItemRepository(db)
	tokenRepo := repositories.NewTokenRepository(db)

	disk := storage.NewLocalDisk(t.TempDir(), "http://localhost:8000")
	creds := NewCredentialStore(tokenRepo, "test-secret", 0).WithCost(bcrypt.MinCost)
	accounts := NewAccountService(userRepo, creds)
	orders := NewOrderService(db, orderRepo, itemRepo, productRepo)

	return &fixture{
		db:       db,
		disk:     disk,
		tokens:   tokenRepo,
		creds:    creds,
		accounts: accounts,
		catalog:  NewCatalogService(productRepo, categoryRepo, disk),
		orders:   orders,
		admin:    NewAdminService(userRepo, productRepo, orderRepo, accounts, orders, creds, statsMode),
	}
}

func (f *fixture) register(t *testing.T, name, email string) (*models.User, string) {
	t.Helper()
	user, token, err := f.accounts.Register(context.Background(), RegisterInput{
		Name:                 name,
		Email:                email,
		Password:             "password123",
		PasswordConfirmation: "password123",
	})
	require.NoError(t, err)
	return user, token
}

func (f *fixture) category(t *testing.T, name string) *models.Category {
	t.Helper()
	category, err := f.catalog.CreateCategory(context.Background(), CategoryInput{Name: name})
	require.NoError(t, err)
	return category
}

func (f *fixture) product(t *testing.T, categoryID uint, name, price string, active bool) *models.Product {
	t.Helper()
	product, err := f.catalog.CreateProduct(context.Background(), ProductInput{
		CategoryID: categoryID,
		Name:       name,
		Price:      decimal.RequireFromString(price),
		Stock:      10,
		IsActive:   &active,
	})
	require.NoError(t, err)
	return product
}

func ptr[T any](v T) *T {
	return &v
}
