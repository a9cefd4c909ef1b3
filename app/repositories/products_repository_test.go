package repositories

import (
	"context"
	"testing"

	"github.com/Rakhulsr/techstore-api/app/db/testdb"
	"github.com/Rakhulsr/techstore-api/app/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchConditionPerDialect(t *testing.T) {
	assert.Equal(t, "(name ILIKE ? OR description ILIKE ?)", searchCondition("postgres"))
	assert.Equal(t, "(name LIKE ? OR description LIKE ?)", searchCondition("mysql"))
	assert.Equal(t, "(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", searchCondition("sqlite"))
}

func TestGetPaginatedSearchIgnoresCase(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()

	category := &models.Category{Name: "Réseau", Slug: "reseau"}
	require.NoError(t, NewCategoryRepository(db).Create(ctx, category))

	description := "Dual band, 3000 Mbit/s."
	repo := NewProductRepository(db)
	require.NoError(t, repo.CreateProduct(ctx, &models.Product{
		CategoryID:  category.ID,
		Name:        "Routeur Wi-Fi 6",
		Slug:        "routeur-wifi-6",
		Description: &description,
		Price:       decimal.RequireFromString("119.99"),
		Stock:       12,
		IsActive:    true,
	}))

	for _, term := range []string{"ROUTEUR", "wi-fi", "DUAL BAND"} {
		items, total, err := repo.GetPaginated(ctx, ProductFilter{Search: term})
		require.NoError(t, err, term)
		assert.EqualValues(t, 1, total, term)
		assert.Len(t, items, 1, term)
	}
}

func TestGetPaginatedHugePageStaysEmpty(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()

	category := &models.Category{Name: "Composants", Slug: "composants"}
	require.NoError(t, NewCategoryRepository(db).Create(ctx, category))
	require.NoError(t, NewProductRepository(db).CreateProduct(ctx, &models.Product{
		CategoryID: category.ID,
		Name:       "SSD NVMe 1 To",
		Slug:       "ssd-nvme-1to",
		Price:      decimal.RequireFromString("89.99"),
		Stock:      45,
		IsActive:   true,
	}))

	items, total, err := NewProductRepository(db).GetPaginated(ctx, ProductFilter{Page: int(^uint(0) >> 1), PerPage: 500})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Empty(t, items)
}
