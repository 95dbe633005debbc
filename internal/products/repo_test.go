package products

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/merchlane/merchportal-backend/pkg/db/models"
)

func setupProductsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  department_id TEXT NOT NULL,
  name TEXT NOT NULL,
  description TEXT,
  price_cents INTEGER NOT NULL,
  discount_price_cents INTEGER,
  image_url TEXT,
  tags TEXT,
  stock_qty INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(schema).Error)

	return conn
}

func insertProduct(t *testing.T, conn *gorm.DB, deptID uuid.UUID, name string, priceCents int, discount *int, active bool, createdAt time.Time) models.Product {
	t.Helper()
	product := models.Product{
		ID:                 uuid.New(),
		DepartmentID:       deptID,
		Name:               name,
		PriceCents:         priceCents,
		DiscountPriceCents: discount,
		StockQty:           10,
		IsActive:           active,
		CreatedAt:          createdAt,
		UpdatedAt:          createdAt,
	}
	require.NoError(t, conn.Create(&product).Error)
	if !active {
		// GORM's `default:true` tag overrides a zero-valued IsActive on
		// Create, so persist the inactive flag with an explicit update.
		require.NoError(t, conn.Model(&models.Product{}).Where("id = ?", product.ID).UpdateColumn("is_active", false).Error)
	}
	return product
}

func TestRepositoryListFiltersByDepartment(t *testing.T) {
	conn := setupProductsTestDB(t)
	repo := NewRepository(conn)

	deptA := uuid.New()
	deptB := uuid.New()
	now := time.Now().UTC()
	wantA := insertProduct(t, conn, deptA, "Terminal Hoodie", 5400, nil, true, now)
	insertProduct(t, conn, deptB, "Brand Tee", 2500, nil, true, now.Add(-time.Minute))

	rows, next, err := repo.List(context.Background(), listProductsParams{
		Filters: ProductListFilters{DepartmentID: &deptA},
		Limit:   10,
	})
	require.NoError(t, err)
	assert.Nil(t, next)
	require.Len(t, rows, 1)
	assert.Equal(t, wantA.ID, rows[0].ID)
}

func TestRepositoryListHidesInactiveByDefault(t *testing.T) {
	conn := setupProductsTestDB(t)
	repo := NewRepository(conn)

	dept := uuid.New()
	now := time.Now().UTC()
	insertProduct(t, conn, dept, "Retired Mug", 1200, nil, false, now)
	visible := insertProduct(t, conn, dept, "Debug Duck", 900, nil, true, now.Add(-time.Minute))

	rows, _, err := repo.List(context.Background(), listProductsParams{Limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, visible.ID, rows[0].ID)

	rows, _, err = repo.List(context.Background(), listProductsParams{
		Filters: ProductListFilters{IncludeHidden: true},
		Limit:   10,
	})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestRepositoryListPriceFilterUsesEffectivePrice(t *testing.T) {
	conn := setupProductsTestDB(t)
	repo := NewRepository(conn)

	dept := uuid.New()
	now := time.Now().UTC()
	discount := 800
	discounted := insertProduct(t, conn, dept, "Sale Hoodie", 1000, &discount, true, now)
	insertProduct(t, conn, dept, "Full Price Hoodie", 1000, nil, true, now.Add(-time.Minute))

	max := 900
	rows, _, err := repo.List(context.Background(), listProductsParams{
		Filters: ProductListFilters{PriceMaxCents: &max},
		Limit:   10,
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, discounted.ID, rows[0].ID)
}

func TestRepositoryListPaginates(t *testing.T) {
	conn := setupProductsTestDB(t)
	repo := NewRepository(conn)

	dept := uuid.New()
	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		insertProduct(t, conn, dept, "Item", 1000, nil, true, base.Add(time.Duration(i)*time.Minute))
	}

	first, next, err := repo.List(context.Background(), listProductsParams{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.NotNil(t, next)

	second, next, err := repo.List(context.Background(), listProductsParams{Limit: 2, Cursor: next})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Nil(t, next)
	assert.NotEqual(t, first[0].ID, second[0].ID)
	assert.NotEqual(t, first[1].ID, second[0].ID)
}

func TestRepositoryDeactivate(t *testing.T) {
	conn := setupProductsTestDB(t)
	repo := NewRepository(conn)

	dept := uuid.New()
	product := insertProduct(t, conn, dept, "Sticker Pack", 700, nil, true, time.Now().UTC())

	require.NoError(t, repo.Deactivate(context.Background(), product.ID))

	got, err := repo.FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}
