// Package resources shapes models into the JSON documents returned by the
// API.
package resources

import (
	"time"

	"github.com/Rakhulsr/techstore-api/app/models"
	"github.com/Rakhulsr/techstore-api/app/utils/storage"
)

type User struct {
	ID        uint    `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	IsAdmin   bool    `json:"is_admin"`
	CreatedAt *string `json:"created_at,omitempty"`
}

type Category struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

type Product struct {
	ID          uint      `json:"id"`
	CategoryID  uint      `json:"category_id"`
	Category    *Category `json:"category,omitempty"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	Image       *string   `json:"image"`
	ImageURL    *string   `json:"image_url"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   string    `json:"created_at"`
	UpdatedAt   string    `json:"updated_at"`
}

type OrderItem struct {
	ID        uint     `json:"id"`
	ProductID *uint    `json:"product_id"`
	Product   *Product `json:"product"`
	Quantity  int      `json:"quantity"`
	UnitPrice float64  `json:"unit_price"`
}

type Order struct {
	ID              uint        `json:"id"`
	UserID          uint        `json:"user_id"`
	User            *User       `json:"user,omitempty"`
	Status          string      `json:"status"`
	Total           float64     `json:"total"`
	ShippingAddress string      `json:"shipping_address"`
	Items           []OrderItem `json:"items,omitempty"`
	CreatedAt       string      `json:"created_at"`
	UpdatedAt       string      `json:"updated_at"`
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// NewUser omits created_at; admin listings use NewUserWithTimestamp.
func NewUser(u *models.User) User {
	return User{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Role:    u.Role,
		IsAdmin: u.IsAdmin,
	}
}

func NewUserWithTimestamp(u *models.User) User {
	res := NewUser(u)
	created := timestamp(u.CreatedAt)
	res.CreatedAt = &created
	return res
}

func NewUsers(users []models.User) []User {
	out := make([]User, 0, len(users))
	for i := range users {
		out = append(out, NewUserWithTimestamp(&users[i]))
	}
	return out
}

func NewCategory(c *models.Category) Category {
	return Category{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		CreatedAt:   timestamp(c.CreatedAt),
		UpdatedAt:   timestamp(c.UpdatedAt),
	}
}

func NewCategories(categories []models.Category) []Category {
	out := make([]Category, 0, len(categories))
	for i := range categories {
		out = append(out, NewCategory(&categories[i]))
	}
	return out
}

// NewProduct resolves image_url against files: absolute URLs pass through,
// stored paths are served from the public storage root.
func NewProduct(p *models.Product, files storage.Storage) Product {
	res := Product{
		ID:          p.ID,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       p.Price.InexactFloat64(),
		Stock:       p.Stock,
		Image:       p.Image,
		IsActive:    p.IsActive,
		CreatedAt:   timestamp(p.CreatedAt),
		UpdatedAt:   timestamp(p.UpdatedAt),
	}
	if p.Category != nil {
		category := NewCategory(p.Category)
		res.Category = &category
	}
	if p.Image != nil && *p.Image != "" {
		url := files.URL(*p.Image)
		res.ImageURL = &url
	}
	return res
}

func NewProducts(products []models.Product, files storage.Storage) []Product {
	out := make([]Product, 0, len(products))
	for i := range products {
		out = append(out, NewProduct(&products[i], files))
	}
	return out
}

func NewOrder(o *models.Order, files storage.Storage) Order {
	res := Order{
		ID:              o.ID,
		UserID:          o.UserID,
		Status:          o.Status,
		Total:           o.Total.InexactFloat64(),
		ShippingAddress: o.ShippingAddress,
		CreatedAt:       timestamp(o.CreatedAt),
		UpdatedAt:       timestamp(o.UpdatedAt),
	}
	if o.User != nil {
		user := NewUser(o.User)
		res.User = &user
	}
	if o.Items != nil {
		res.Items = make([]OrderItem, 0, len(o.Items))
		for i := range o.Items {
			item := &o.Items[i]
			line := OrderItem{
				ID:        item.ID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice.InexactFloat64(),
			}
			if item.Product != nil {
				product := NewProduct(item.Product, files)
				line.Product = &product
			}
			res.Items = append(res.Items, line)
		}
	}
	return res
}

func NewOrders(orders []models.Order, files storage.Storage) []Order {
	out := make([]Order, 0, len(orders))
	for i := range orders {
		out = append(out, NewOrder(&orders[i], files))
	}
	return out
}
