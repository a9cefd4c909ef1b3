package services

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Rakhulsr/techstore-api/app/repositories"
	"github.com/Rakhulsr/techstore-api/app/utils/apperr"
	"github.com/Rakhulsr/techstore-api/app/utils/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x02, 0x00, 0x00, 0x00, 0x90, 0x77, 0x53, 0xDE,
}

func pngUpload() *storage.Upload {
	return &storage.Upload{Filename: "photo.png", Size: int64(len(pngBytes)), Content: bytes.NewReader(pngBytes)}
}

func TestListProductsFiltersAndPaginates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reseau := f.category(t, "Réseau")
	composants := f.category(t, "Composants")
	assert.Equal(t, "reseau", reseau.Slug)

	f.product(t, reseau.ID, "Routeur WiFi 6", "149.99", true)
	f.product(t, reseau.ID, "Switch 8 ports", "39.90", true)
	f.product(t, composants.ID, "Carte graphique RTX", "599.00", true)
	f.product(t, composants.ID, "Ancien routeur", "9.99", false)

	page, err := f.catalog.ListProducts(ctx, repositories.ProductFilter{Search: "routeur", CategoryID: &reseau.ID, ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Routeur WiFi 6", page.Items[0].Name)
	require.NotNil(t, page.Items[0].Category)
	assert.Equal(t, "Réseau", page.Items[0].Category.Name)

	page, err = f.catalog.ListProducts(ctx, repositories.ProductFilter{Search: "ROUTEUR", ActiveOnly: true})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)

	page, err = f.catalog.ListProducts(ctx, repositories.ProductFilter{Search: "routeur"})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	page, err = f.catalog.ListProducts(ctx, repositories.ProductFilter{ActiveOnly: true, PerPage: 2, Page: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 1)
	// newest first, so the oldest active product lands on the last page
	assert.Equal(t, "Routeur WiFi 6", page.Items[0].Name)

	page, err = f.catalog.ListProducts(ctx, repositories.ProductFilter{PerPage: 1000})
	require.NoError(t, err)
	assert.Equal(t, 500, page.PerPage)

	page, err = f.catalog.ListProducts(ctx, repositories.ProductFilter{Search: "nothing matches"})
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.TotalPages)
}

func TestCreateProductDefaultsAndConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat := f.category(t, "Périphériques")

	product, err := f.catalog.CreateProduct(ctx, ProductInput{
		CategoryID: cat.ID,
		Name:       "Clavier Mécanique",
		Price:      decimal.RequireFromString("89.999"),
		Stock:      5,
	})
	require.NoError(t, err)
	assert.Equal(t, "clavier-mecanique", product.Slug)
	assert.True(t, product.IsActive)
	assert.True(t, decimal.NewFromInt(90).Equal(product.Price))
	assert.Nil(t, product.Image)

	_, err = f.catalog.CreateProduct(ctx, ProductInput{CategoryID: cat.ID, Name: "Clavier mécanique", Price: decimal.NewFromInt(1)})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = f.catalog.CreateProduct(ctx, ProductInput{CategoryID: cat.ID + 100, Name: "Souris", Price: decimal.NewFromInt(1)})
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, e.Kind)
	assert.Contains(t, e.Errors, "category_id")

	_, err = f.catalog.CreateProduct(ctx, ProductInput{CategoryID: cat.ID, Name: "Souris", Price: decimal.NewFromInt(-1)})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.catalog.CreateProduct(ctx, ProductInput{CategoryID: cat.ID, Name: "Souris", Price: decimal.NewFromInt(1), Stock: -3})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.catalog.CreateProduct(ctx, ProductInput{CategoryID: cat.ID, Name: "Souris", Price: decimal.NewFromInt(1), Stock: MaxStock + 1})
	e, ok = apperr.As(err)
	require.True(t, ok)
	assert.Contains(t, e.Errors, "stock")

	_, err = f.catalog.CreateProduct(ctx, ProductInput{CategoryID: cat.ID, Name: "Souris", Price: decimal.RequireFromString("100000000")})
	e, ok = apperr.As(err)
	require.True(t, ok)
	assert.Contains(t, e.Errors, "price")

	inactive, err := f.catalog.CreateProduct(ctx, ProductInput{CategoryID: cat.ID, Name: "Souris", Price: decimal.NewFromInt(1), IsActive: ptr(false)})
	require.NoError(t, err)
	assert.False(t, inactive.IsActive)
}

func TestProductImageLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat := f.category(t, "Composants")

	product, err := f.catalog.CreateProduct(ctx, ProductInput{
		CategoryID: cat.ID,
		Name:       "SSD NVMe",
		Price:      decimal.NewFromInt(120),
		Image:      pngUpload(),
	})
	require.NoError(t, err)
	require.NotNil(t, product.Image)
	first := filepath.Join(f.disk.Root(), *product.Image)
	assert.FileExists(t, first)

	// a rejected upload must leave the current image alone
	_, err = f.catalog.UpdateProduct(ctx, product.ID, ProductPatch{
		Image: &storage.Upload{Filename: "notes.png", Size: 5, Content: bytes.NewReader([]byte("hello"))},
	})
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Contains(t, e.Errors, "image")
	assert.FileExists(t, first)

	updated, err := f.catalog.UpdateProduct(ctx, product.ID, ProductPatch{Image: pngUpload()})
	require.NoError(t, err)
	require.NotNil(t, updated.Image)
	assert.NotEqual(t, *product.Image, *updated.Image)
	assert.NoFileExists(t, first)
	assert.FileExists(t, filepath.Join(f.disk.Root(), *updated.Image))

	require.NoError(t, f.catalog.DeleteProduct(ctx, product.ID))
	_, statErr := os.Stat(filepath.Join(f.disk.Root(), *updated.Image))
	assert.True(t, os.IsNotExist(statErr))
}

func TestUpdateProductPartial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	peripheriques := f.category(t, "Périphériques")
	reseau := f.category(t, "Réseau")
	product := f.product(t, peripheriques.ID, "Webcam HD", "59.90", true)

	updated, err := f.catalog.UpdateProduct(ctx, product.ID, ProductPatch{Stock: ptr(3)})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Stock)
	assert.Equal(t, "Webcam HD", updated.Name)
	assert.True(t, decimal.RequireFromString("59.90").Equal(updated.Price))

	updated, err = f.catalog.UpdateProduct(ctx, product.ID, ProductPatch{
		CategoryID:  &reseau.ID,
		Description: ptr("1080p"),
		IsActive:    ptr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, reseau.ID, updated.CategoryID)
	require.NotNil(t, updated.Category)
	assert.Equal(t, "Réseau", updated.Category.Name)
	assert.Equal(t, "1080p", *updated.Description)
	assert.False(t, updated.IsActive)

	updated, err = f.catalog.UpdateProduct(ctx, product.ID, ProductPatch{ClearDescription: true})
	require.NoError(t, err)
	assert.Nil(t, updated.Description)

	other := f.product(t, reseau.ID, "Routeur", "10", true)
	_, err = f.catalog.UpdateProduct(ctx, product.ID, ProductPatch{Slug: ptr(other.Slug)})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = f.catalog.UpdateProduct(ctx, 9999, ProductPatch{Stock: ptr(1)})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestDeleteProductTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat := f.category(t, "Réseau")
	product := f.product(t, cat.ID, "Switch", "20", true)

	require.NoError(t, f.catalog.DeleteProduct(ctx, product.ID))
	err := f.catalog.DeleteProduct(ctx, product.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = f.catalog.GetProduct(ctx, product.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestCategoryCRUD(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cat, err := f.catalog.CreateCategory(ctx, CategoryInput{Name: "Stockage", Description: ptr("Disques")})
	require.NoError(t, err)
	assert.Equal(t, "stockage", cat.Slug)

	_, err = f.catalog.CreateCategory(ctx, CategoryInput{Name: "Autre", Slug: "stockage"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	renamed, err := f.catalog.UpdateCategory(ctx, cat.ID, CategoryPatch{Name: ptr("Stockage SSD")})
	require.NoError(t, err)
	assert.Equal(t, "Stockage SSD", renamed.Name)
	assert.Equal(t, "stockage", renamed.Slug)

	categories, err := f.catalog.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 1)

	f.product(t, cat.ID, "SSD", "50", true)
	err = f.catalog.DeleteCategory(ctx, cat.ID)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	empty := f.category(t, "Vide")
	require.NoError(t, f.catalog.DeleteCategory(ctx, empty.ID))
	_, err = f.catalog.GetCategory(ctx, empty.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
