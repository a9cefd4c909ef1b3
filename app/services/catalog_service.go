package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/Rakhulsr/techstore-api/app/helpers"
	"github.com/Rakhulsr/techstore-api/app/models"
	"github.com/Rakhulsr/techstore-api/app/repositories"
	"github.com/Rakhulsr/techstore-api/app/utils/apperr"
	"github.com/Rakhulsr/techstore-api/app/utils/calc"
	"github.com/Rakhulsr/techstore-api/app/utils/storage"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const productImageDir = "products"

// ProductPage is one page of a product listing.
type ProductPage struct {
	Items      []models.Product
	Page       int
	PerPage    int
	TotalPages int
	TotalCount int64
}

type ProductInput struct {
	CategoryID  uint
	Name        string
	Slug        string
	Description *string
	Price       decimal.Decimal
	Stock       int
	// IsActive defaults to true when nil.
	IsActive *bool
	Image    *storage.Upload
}

// ProductPatch is a partial update. Nil fields are left untouched, except
// Description which is cleared when ClearDescription is set.
type ProductPatch struct {
	CategoryID       *uint
	Name             *string
	Slug             *string
	Description      *string
	ClearDescription bool
	Price            *decimal.Decimal
	Stock            *int
	IsActive         *bool
	Image            *storage.Upload
}

type CategoryInput struct {
	Name        string
	Slug        string
	Description *string
}

type CategoryPatch struct {
	Name             *string
	Slug             *string
	Description      *string
	ClearDescription bool
}

type CatalogService struct {
	productRepo  repositories.ProductRepositoryImpl
	categoryRepo repositories.CategoryRepositoryImpl
	files        storage.Storage
}

func NewCatalogService(productRepo repositories.ProductRepositoryImpl, categoryRepo repositories.CategoryRepositoryImpl, files storage.Storage) *CatalogService {
	return &CatalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		files:        files,
	}
}

func (s *CatalogService) ListProducts(ctx context.Context, filter repositories.ProductFilter) (*ProductPage, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	filter.Page, filter.PerPage = calc.NormalizePage(filter.Page, filter.PerPage)

	products, total, err := s.productRepo.GetPaginated(ctx, filter)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []models.Product{}
	}

	return &ProductPage{
		Items:      products,
		Page:       filter.Page,
		PerPage:    filter.PerPage,
		TotalPages: calc.LastPage(total, filter.PerPage),
		TotalCount: total,
	}, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	if product == nil {
		return nil, apperr.NotFound("Product not found.")
	}
	return product, nil
}

func (s *CatalogService) requireCategory(ctx context.Context, id uint) error {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if category == nil {
		return apperr.FieldError("category_id", "The selected category id is invalid.")
	}
	return nil
}

func checkName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.FieldError("name", "The name field is required.")
	}
	if utf8.RuneCountInString(name) > 255 {
		return "", apperr.FieldError("name", "The name field must not be greater than 255 characters.")
	}
	return name, nil
}

// resolveSlug derives the slug from name when none is supplied.
func resolveSlug(slug, name string) (string, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		slug = helpers.GenerateSlug(name)
	}
	if slug == "" {
		return "", apperr.FieldError("slug", "The slug field is required.")
	}
	if utf8.RuneCountInString(slug) > 255 {
		return "", apperr.FieldError("slug", "The slug field must not be greater than 255 characters.")
	}
	return slug, nil
}

// MaxStock and MaxPrice are the limits of the stock int and price
// decimal(10,2) columns.
const MaxStock = math.MaxInt32

var MaxPrice = decimal.RequireFromString("99999999.99")

func checkPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return apperr.FieldError("price", "The price field must be at least 0.")
	}
	if price.GreaterThan(MaxPrice) {
		return apperr.FieldError("price", "The price field must not be greater than 99999999.99.")
	}
	return nil
}

func checkStock(stock int) error {
	if stock < 0 {
		return apperr.FieldError("stock", "The stock field must be at least 0.")
	}
	if stock > MaxStock {
		return apperr.FieldError("stock", fmt.Sprintf("The stock field must not be greater than %d.", MaxStock))
	}
	return nil
}

func readImage(upload *storage.Upload) (*storage.Image, error) {
	img, err := storage.ReadImage(upload)
	switch {
	case errors.Is(err, storage.ErrTooLarge):
		return nil, apperr.FieldError("image", "The image field must not be greater than 2048 kilobytes.")
	case errors.Is(err, storage.ErrUnsupported):
		return nil, apperr.FieldError("image", "The image field must be a file of type: jpeg, png, jpg, gif, webp.")
	case err != nil:
		return nil, apperr.FieldError("image", "The image failed to upload.")
	}
	return img, nil
}

func (s *CatalogService) productSlugFree(ctx context.Context, slug string, exceptID uint) error {
	taken, err := s.productRepo.SlugTaken(ctx, slug, exceptID)
	if err != nil {
		return err
	}
	if taken {
		return apperr.Conflict("slug", "The slug has already been taken.")
	}
	return nil
}

// discardImage removes a file that was written for a row that never got
// saved. Absolute URLs are never ours to delete.
func (s *CatalogService) discardImage(ctx context.Context, image *string) {
	if image == nil || *image == "" || storage.IsAbsoluteURL(*image) {
		return
	}
	if err := s.files.Delete(ctx, *image); err != nil {
		log.Warn().Err(err).Str("path", *image).Msg("failed to delete product image")
	}
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	name, err := checkName(in.Name)
	if err != nil {
		return nil, err
	}
	slug, err := resolveSlug(in.Slug, name)
	if err != nil {
		return nil, err
	}
	if err := checkPrice(in.Price); err != nil {
		return nil, err
	}
	if err := checkStock(in.Stock); err != nil {
		return nil, err
	}
	if err := s.requireCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	var img *storage.Image
	if in.Image != nil {
		if img, err = readImage(in.Image); err != nil {
			return nil, err
		}
	}
	if err := s.productSlugFree(ctx, slug, 0); err != nil {
		return nil, err
	}

	product := &models.Product{
		CategoryID:  in.CategoryID,
		Name:        name,
		Slug:        slug,
		Description: in.Description,
		Price:       calc.Round2(in.Price),
		Stock:       in.Stock,
		IsActive:    true,
	}
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}

	if img != nil {
		rel, err := s.files.PutImage(ctx, productImageDir, img)
		if err != nil {
			return nil, fmt.Errorf("failed to store product image: %w", err)
		}
		product.Image = &rel
	}

	if err := s.productRepo.CreateProduct(ctx, product); err != nil {
		s.discardImage(ctx, product.Image)
		if repositories.IsDuplicateKey(err) {
			return nil, apperr.Conflict("slug", "The slug has already been taken.")
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	log.Info().Uint("product_id", product.ID).Str("slug", product.Slug).Msg("product created")
	return s.GetProduct(ctx, product.ID)
}

// UpdateProduct applies patch. A new image replaces the old file, which is
// deleted before the new one is written.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, patch ProductPatch) (*models.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		if product.Name, err = checkName(*patch.Name); err != nil {
			return nil, err
		}
	}
	if patch.Slug != nil {
		if product.Slug, err = resolveSlug(*patch.Slug, product.Name); err != nil {
			return nil, err
		}
		if err := s.productSlugFree(ctx, product.Slug, product.ID); err != nil {
			return nil, err
		}
	}
	if patch.ClearDescription {
		product.Description = nil
	} else if patch.Description != nil {
		product.Description = patch.Description
	}
	if patch.Price != nil {
		if err := checkPrice(*patch.Price); err != nil {
			return nil, err
		}
		product.Price = calc.Round2(*patch.Price)
	}
	if patch.Stock != nil {
		if err := checkStock(*patch.Stock); err != nil {
			return nil, err
		}
		product.Stock = *patch.Stock
	}
	if patch.IsActive != nil {
		product.IsActive = *patch.IsActive
	}
	if patch.CategoryID != nil && *patch.CategoryID != product.CategoryID {
		if err := s.requireCategory(ctx, *patch.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = *patch.CategoryID
	}

	if patch.Image != nil {
		img, err := readImage(patch.Image)
		if err != nil {
			return nil, err
		}
		s.discardImage(ctx, product.Image)
		product.Image = nil

		rel, err := s.files.PutImage(ctx, productImageDir, img)
		if err != nil {
			return nil, fmt.Errorf("failed to store product image: %w", err)
		}
		product.Image = &rel
	}

	product.Category = nil
	if err := s.productRepo.UpdateProduct(ctx, product); err != nil {
		if repositories.IsDuplicateKey(err) {
			return nil, apperr.Conflict("slug", "The slug has already been taken.")
		}
		return nil, fmt.Errorf("failed to update product %d: %w", id, err)
	}
	return s.GetProduct(ctx, product.ID)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return err
	}

	deleted, err := s.productRepo.DeleteProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	if !deleted {
		return apperr.NotFound("Product not found.")
	}

	s.discardImage(ctx, product.Image)
	log.Info().Uint("product_id", id).Msg("product deleted")
	return nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.categoryRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get category %d: %w", id, err)
	}
	if category == nil {
		return nil, apperr.NotFound("Category not found.")
	}
	return category, nil
}

func (s *CatalogService) categorySlugFree(ctx context.Context, slug string, exceptID uint) error {
	taken, err := s.categoryRepo.SlugTaken(ctx, slug, exceptID)
	if err != nil {
		return err
	}
	if taken {
		return apperr.Conflict("slug", "The slug has already been taken.")
	}
	return nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	name, err := checkName(in.Name)
	if err != nil {
		return nil, err
	}
	slug, err := resolveSlug(in.Slug, name)
	if err != nil {
		return nil, err
	}
	if err := s.categorySlugFree(ctx, slug, 0); err != nil {
		return nil, err
	}

	category := &models.Category{Name: name, Slug: slug, Description: in.Description}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if repositories.IsDuplicateKey(err) {
			return nil, apperr.Conflict("slug", "The slug has already been taken.")
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uint, patch CategoryPatch) (*models.Category, error) {
	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		if category.Name, err = checkName(*patch.Name); err != nil {
			return nil, err
		}
	}
	if patch.Slug != nil {
		if category.Slug, err = resolveSlug(*patch.Slug, category.Name); err != nil {
			return nil, err
		}
		if err := s.categorySlugFree(ctx, category.Slug, category.ID); err != nil {
			return nil, err
		}
	}
	if patch.ClearDescription {
		category.Description = nil
	} else if patch.Description != nil {
		category.Description = patch.Description
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		if repositories.IsDuplicateKey(err) {
			return nil, apperr.Conflict("slug", "The slug has already been taken.")
		}
		return nil, fmt.Errorf("failed to update category %d: %w", id, err)
	}
	return category, nil
}

// DeleteCategory refuses while products still reference the category.
func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) error {
	if _, err := s.GetCategory(ctx, id); err != nil {
		return err
	}

	count, err := s.categoryRepo.CountProducts(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperr.Conflict("", "The category still has products and cannot be deleted.")
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		if repositories.IsForeignKeyViolation(err) {
			return apperr.Conflict("", "The category still has products and cannot be deleted.")
		}
		return fmt.Errorf("failed to delete category %d: %w", id, err)
	}
	return nil
}
