package services

import (
	"github.com/Rakhulsr/techstore-api/app/configs"
	"github.com/Rakhulsr/techstore-api/app/repositories"
	"github.com/Rakhulsr/techstore-api/app/utils/storage"
	"gorm.io/gorm"
)

// Registry wires repositories into the services shared by the HTTP server
// and the CLI.
type Registry struct {
	Files    *storage.LocalDisk
	Creds    *TokenCredentialStore
	Accounts *AccountService
	Catalog  *CatalogService
	Orders   *OrderService
	Admin    *AdminService
}

func NewRegistry(db *gorm.DB, env configs.ENV) *Registry {
	userRepo := repositories.NewUserRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	productRepo := repositories.NewProductRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	itemRepo := repositories.NewOrderItemRepository(db)
	tokenRepo := repositories.NewTokenRepository(db)

	files := storage.NewLocalDisk(env.StorageDir, env.AppURL)
	creds := NewCredentialStore(tokenRepo, env.JWTSecret, env.TokenTTL)
	accounts := NewAccountService(userRepo, creds)
	orders := NewOrderService(db, orderRepo, itemRepo, productRepo)

	return &Registry{
		Files:    files,
		Creds:    creds,
		Accounts: accounts,
		Catalog:  NewCatalogService(productRepo, categoryRepo, files),
		Orders:   orders,
		Admin:    NewAdminService(userRepo, productRepo, orderRepo, accounts, orders, creds, env.StatsMode),
	}
}
