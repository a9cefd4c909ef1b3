package seeders

import (
	"context"
	"fmt"

	"github.com/Rakhulsr/techstore-api/app/db/fakers"
	"github.com/Rakhulsr/techstore-api/app/models"
	"github.com/Rakhulsr/techstore-api/app/repositories"
	"github.com/Rakhulsr/techstore-api/app/services"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type categorySeed struct {
	Name        string
	Slug        string
	Description string
}

type productSeed struct {
	Category    string
	Name        string
	Slug        string
	Description string
	Price       string
	Stock       int
	Image       string
}

var categorySeeds = []categorySeed{
	{Name: "Périphériques", Slug: "peripheriques", Description: "Claviers, souris, écrans, casques, webcams."},
	{Name: "Composants", Slug: "composants", Description: "SSD, RAM, cartes graphiques, processeurs."},
	{Name: "Réseau", Slug: "reseau", Description: "Routeurs, câbles, cartes Wi-Fi."},
}

func unsplash(photo string) string {
	return "https://images.unsplash.com/" + photo + "?w=400&h=300&fit=crop"
}

var productSeeds = []productSeed{
	{Category: "peripheriques", Name: "Clavier Mécanique RGB", Slug: "clavier-mecanique-rgb", Description: "Clavier gaming avec switches Cherry MX, rétroéclairage RGB.", Price: "129.99", Stock: 15, Image: unsplash("photo-1511467687858-23d96c32e4ae")},
	{Category: "peripheriques", Name: "Écran 27\" 144 Hz", Slug: "ecran-27-144hz", Description: "Moniteur Full HD 144 Hz, 1 ms, FreeSync.", Price: "249.99", Stock: 8, Image: unsplash("photo-1527443224154-c4a3942d3acf")},
	{Category: "peripheriques", Name: "Casque Sans Fil Pro", Slug: "casque-sans-fil-pro", Description: "Casque Bluetooth, réduction de bruit, 30 h d'autonomie.", Price: "179.99", Stock: 22, Image: unsplash("photo-1505740420928-5e560c06d30e")},
	{Category: "composants", Name: "SSD NVMe 1 To", Slug: "ssd-nvme-1to", Description: "Stockage ultra-rapide, lecture 3500 Mo/s, M.2.", Price: "89.99", Stock: 45, Image: unsplash("photo-1597872200969-2b65d565bd41")},
	{Category: "peripheriques", Name: "Webcam Full HD", Slug: "webcam-full-hd", Description: "1080p 60 fps, micro intégré.", Price: "69.99", Stock: 30, Image: unsplash("photo-1587826080692-f439cd0b70da")},
	{Category: "peripheriques", Name: "Souris Ergonomique", Slug: "souris-ergonomique", Description: "Capteur 16000 DPI, 7 boutons programmables.", Price: "49.99", Stock: 50, Image: unsplash("photo-1527864550417-7fd91fc51a46")},
	{Category: "reseau", Name: "Routeur Wi-Fi 6", Slug: "routeur-wifi-6", Description: "Dual band, 3000 Mbit/s.", Price: "119.99", Stock: 12, Image: unsplash("photo-1606904825846-647eb07f5be2")},
}

// Options controls the optional demo data generated next to the catalog.
type Options struct {
	Customers     int
	Orders        int
	ExtraProducts int
}

type Seeder struct {
	db  *gorm.DB
	reg *services.Registry
}

func NewSeeder(db *gorm.DB, reg *services.Registry) *Seeder {
	return &Seeder{db: db, reg: reg}
}

// SeedCatalog inserts the reference categories and products. Rows are matched
// by slug so running it twice changes nothing.
func (s *Seeder) SeedCatalog(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	categoryIDs := make(map[string]uint, len(categorySeeds))

	for _, seed := range categorySeeds {
		description := seed.Description
		category := models.Category{}
		err := db.Where(models.Category{Slug: seed.Slug}).
			Attrs(models.Category{Name: seed.Name, Description: &description}).
			FirstOrCreate(&category).Error
		if err != nil {
			return fmt.Errorf("seed category %s: %w", seed.Slug, err)
		}
		categoryIDs[seed.Slug] = category.ID
	}

	for _, seed := range productSeeds {
		description, image := seed.Description, seed.Image
		product := models.Product{}
		err := db.Where(models.Product{Slug: seed.Slug}).
			Attrs(models.Product{
				CategoryID:  categoryIDs[seed.Category],
				Name:        seed.Name,
				Description: &description,
				Price:       decimal.RequireFromString(seed.Price),
				Stock:       seed.Stock,
				Image:       &image,
				IsActive:    true,
			}).
			FirstOrCreate(&product).Error
		if err != nil {
			return fmt.Errorf("seed product %s: %w", seed.Slug, err)
		}
	}

	log.Info().Int("categories", len(categorySeeds)).Int("products", len(productSeeds)).Msg("catalog seeded")
	return nil
}

// SeedDemo creates faked customers, filler products and orders spread over
// those customers.
func (s *Seeder) SeedDemo(ctx context.Context, opts Options) error {
	if opts.ExtraProducts > 0 {
		var categories []models.Category
		if err := s.db.WithContext(ctx).Find(&categories).Error; err != nil {
			return err
		}
		if len(categories) == 0 {
			return fmt.Errorf("no category to attach demo products to, seed the catalog first")
		}
		for i := 0; i < opts.ExtraProducts; i++ {
			category := categories[i%len(categories)]
			if _, err := s.reg.Catalog.CreateProduct(ctx, fakers.ProductFaker(category.ID)); err != nil {
				return fmt.Errorf("demo product: %w", err)
			}
		}
	}

	customers := make([]*models.User, 0, opts.Customers)
	for i := 0; i < opts.Customers; i++ {
		user, err := s.reg.Admin.CreateUser(ctx, fakers.UserFaker())
		if err != nil {
			return fmt.Errorf("demo customer: %w", err)
		}
		customers = append(customers, user)
	}

	if opts.Orders == 0 {
		log.Info().Int("customers", len(customers)).Int("products", opts.ExtraProducts).Msg("demo data seeded")
		return nil
	}
	if len(customers) == 0 {
		return fmt.Errorf("orders need at least one demo customer")
	}

	page, err := s.reg.Catalog.ListProducts(ctx, repositories.ProductFilter{ActiveOnly: true, Page: 1, PerPage: 500})
	if err != nil {
		return err
	}
	if len(page.Items) == 0 {
		return fmt.Errorf("no active product to order, seed the catalog first")
	}

	for i := 0; i < opts.Orders; i++ {
		customer := customers[i%len(customers)]
		order, err := s.reg.Orders.PlaceOrder(ctx, customer.ID, fakers.ShippingAddressFaker(), fakers.OrderLinesFaker(page.Items))
		if err != nil {
			return fmt.Errorf("demo order: %w", err)
		}
		if status := fakers.OrderStatusFaker(); status != order.Status {
			if _, err := s.reg.Orders.UpdateStatus(ctx, order.ID, status); err != nil {
				return err
			}
		}
	}

	log.Info().
		Int("customers", len(customers)).
		Int("products", opts.ExtraProducts).
		Int("orders", opts.Orders).
		Msg("demo data seeded")
	return nil
}

// DBSeed runs the catalog seed followed by the demo data.
func DBSeed(ctx context.Context, db *gorm.DB, reg *services.Registry, opts Options) error {
	s := NewSeeder(db, reg)
	if err := s.SeedCatalog(ctx); err != nil {
		return err
	}
	return s.SeedDemo(ctx, opts)
}
