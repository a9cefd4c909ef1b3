package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Rakhulsr/techstore-api/app/models"
	"github.com/Rakhulsr/techstore-api/app/repositories"
	"github.com/Rakhulsr/techstore-api/app/utils/apperr"
	"github.com/Rakhulsr/techstore-api/app/utils/calc"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const maxStatusLength = 50

// NewOrderLine is one line of an order being placed. Only the seeder places
// orders; there is no checkout endpoint.
type NewOrderLine struct {
	ProductID uint
	Quantity  int
}

type OrderService struct {
	db          *gorm.DB
	orderRepo   repositories.OrderRepository
	itemRepo    repositories.OrderItemRepository
	productRepo repositories.ProductRepositoryImpl
}

func NewOrderService(db *gorm.DB, orderRepo repositories.OrderRepository, itemRepo repositories.OrderItemRepository, productRepo repositories.ProductRepositoryImpl) *OrderService {
	return &OrderService{
		db:          db,
		orderRepo:   orderRepo,
		itemRepo:    itemRepo,
		productRepo: productRepo,
	}
}

// ListOrders returns every order with its owner, newest first.
func (s *OrderService) ListOrders(ctx context.Context, status string) ([]models.Order, error) {
	orders, err := s.orderRepo.GetAllOrders(ctx, strings.TrimSpace(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// ListUserOrders returns the user's orders with their lines and products.
func (s *OrderService) ListUserOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	orders, err := s.orderRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders of user %d: %w", userID, err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// UpdateStatus accepts any non-empty status up to 50 characters.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uint, status string) (*models.Order, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, apperr.FieldError("status", "The status field is required.")
	}
	if utf8.RuneCountInString(status) > maxStatusLength {
		return nil, apperr.FieldError("status", fmt.Sprintf("The status field must not be greater than %d characters.", maxStatusLength))
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order %d: %w", orderID, err)
	}
	if order == nil {
		return nil, apperr.NotFound("Order not found.")
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderID, status); err != nil {
		return nil, fmt.Errorf("failed to update order %d: %w", orderID, err)
	}
	log.Info().Uint("order_id", orderID).Str("from", order.Status).Str("to", status).Msg("order status updated")

	return s.orderRepo.GetOrderByIDWithUser(ctx, orderID)
}

// PlaceOrder records an order at current product prices. Stock is not
// decremented and inactive products are accepted.
func (s *OrderService) PlaceOrder(ctx context.Context, userID uint, shippingAddress string, lines []NewOrderLine) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, apperr.FieldError("items", "The items field is required.")
	}

	order := &models.Order{
		UserID:          userID,
		Status:          models.OrderStatusPending,
		ShippingAddress: shippingAddress,
	}
	items := make([]models.OrderItem, 0, len(lines))
	lineTotals := make([]decimal.Decimal, 0, len(lines))
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, apperr.FieldError("quantity", "The quantity field must be at least 1.")
		}
		product, err := s.productRepo.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, apperr.FieldError("product_id", "The selected product id is invalid.")
		}
		productID := product.ID
		items = append(items, models.OrderItem{
			ProductID: &productID,
			Quantity:  line.Quantity,
			UnitPrice: product.Price,
		})
		lineTotals = append(lineTotals, calc.LineTotal(product.Price, line.Quantity))
	}
	order.Total = calc.Sum(lineTotals...)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		return s.itemRepo.BulkCreate(ctx, tx, items)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}
	order.Items = items
	return order, nil
}
