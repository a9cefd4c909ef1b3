package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Rakhulsr/techstore-api/app/models"
	"github.com/Rakhulsr/techstore-api/app/utils/calc"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductFilter struct {
	Search     string
	CategoryID *uint
	ActiveOnly bool
	Page       int
	PerPage    int
}

type ProductRepositoryImpl interface {
	GetPaginated(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error)
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	SlugTaken(ctx context.Context, slug string, exceptID uint) (bool, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id uint) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepositoryImpl {
	return &productRepository{db}
}

// searchCondition is a case-insensitive substring match for the dialect.
// MySQL (utf8mb4 collations) and Postgres (ILIKE) fold accented letters too.
// SQLite's LOWER and LIKE fold ASCII only, so there "ÉCRAN" misses "Écran".
func searchCondition(dialect string) string {
	switch dialect {
	case "postgres":
		return "(name ILIKE ? OR description ILIKE ?)"
	case "mysql":
		return "(name LIKE ? OR description LIKE ?)"
	default:
		return "(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)"
	}
}

func (p *productRepository) filtered(ctx context.Context, filter ProductFilter) *gorm.DB {
	q := p.db.WithContext(ctx).Model(&models.Product{})
	if filter.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	if filter.Search != "" {
		searchKeyword := "%" + strings.ToLower(filter.Search) + "%"
		q = q.Where(searchCondition(p.db.Dialector.Name()), searchKeyword, searchKeyword)
	}
	if filter.CategoryID != nil {
		q = q.Where("category_id = ?", *filter.CategoryID)
	}
	return q
}

func (p *productRepository) GetPaginated(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error) {
	var products []models.Product
	var total int64

	filter.Page, filter.PerPage = calc.NormalizePage(filter.Page, filter.PerPage)

	if err := p.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	err := p.filtered(ctx, filter).
		Preload("Category").
		Order("created_at DESC").
		Order("id DESC").
		Limit(filter.PerPage).
		Offset(calc.Offset(filter.Page, filter.PerPage)).
		Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	return products, total, nil
}

func (p *productRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := p.db.WithContext(ctx).
		Model(&models.Product{}).
		Preload("Category").
		Where("id = ?", id).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (p *productRepository) SlugTaken(ctx context.Context, slug string, exceptID uint) (bool, error) {
	var count int64
	q := p.db.WithContext(ctx).Model(&models.Product{}).Where("slug = ?", slug)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check product slug: %w", err)
	}
	return count > 0, nil
}

func (p *productRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	return p.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error
}

func (p *productRepository) UpdateProduct(ctx context.Context, product *models.Product) error {
	return p.db.WithContext(ctx).Omit(clause.Associations).Save(product).Error
}

// DeleteProduct reports false when no row matched.
func (p *productRepository) DeleteProduct(ctx context.Context, id uint) (bool, error) {
	result := p.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (p *productRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).Model(&models.Product{}).Count(&count).Error
	return count, err
}
