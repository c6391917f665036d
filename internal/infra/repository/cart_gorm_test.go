package repository

import (
	"context"
	"os"
	"testing"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// TEST_DATABASE_URL が無ければスキップ（実DBが必要）
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Cart{}, &model.Product{}))

	t.Cleanup(func() {
		db.Exec("DELETE FROM carts")
		db.Exec("DELETE FROM products")
	})
	db.Exec("DELETE FROM carts")
	db.Exec("DELETE FROM products")
	return db
}

func TestCartGormRepository_Contract(t *testing.T) {
	db := openTestDB(t)
	runCartRepositoryContract(t, NewCartGormRepository(db))
}

func TestProductGormRepository_LookupPrice(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&[]model.Product{
		{ID: "p1", Name: "Beans", Price: decimal.RequireFromString("12.30"), Quantity: 4, IsActive: true},
		{ID: "p2", Name: "Gone", Price: decimal.RequireFromString("1"), Quantity: 0, IsActive: true},
		{ID: "p3", Name: "Hidden", Price: decimal.RequireFromString("1"), Quantity: 9, IsActive: false},
	}).Error)

	r := NewProductGormRepository(db)

	info, err := r.LookupPrice(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, info.UnitPrice.Equal(decimal.RequireFromString("12.3")))
	assert.True(t, info.InStock)

	info, err = r.LookupPrice(ctx, "p2")
	require.NoError(t, err)
	assert.False(t, info.InStock)

	_, err = r.LookupPrice(ctx, "p3")
	assert.ErrorIs(t, err, repo.ErrNotFound)

	_, err = r.LookupPrice(ctx, "nope")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestProductGormRepository_LookupDetails(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&[]model.Product{
		{ID: "p1", Name: "Beans", Price: decimal.RequireFromString("1"), Quantity: 1, IsActive: true},
		{ID: "p2", Name: "Hidden", Price: decimal.RequireFromString("1"), Quantity: 1, IsActive: false},
	}).Error)

	r := NewProductGormRepository(db)

	d, err := r.LookupDetails(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, repo.ProductDetails{ID: "p1", Name: "Beans"}, d)

	// 公開停止中でも名前は返す
	d, err = r.LookupDetails(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, "Hidden", d.Name)

	_, err = r.LookupDetails(ctx, "nope")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

// 商品サービス側のテーブルに deleted_at が無くても引ける
func TestProductGormRepository_LookupPrice_NoDeletedAtColumn(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Migrator().DropTable("products"))
	require.NoError(t, db.Exec(`CREATE TABLE products (
		id varchar(64) PRIMARY KEY,
		name varchar(255) NOT NULL,
		price numeric(14,2) NOT NULL,
		quantity bigint NOT NULL,
		is_active boolean NOT NULL DEFAULT false,
		created_at timestamptz NOT NULL DEFAULT now(),
		updated_at timestamptz NOT NULL DEFAULT now()
	)`).Error)
	require.NoError(t, db.Exec(`INSERT INTO products (id, name, price, quantity, is_active) VALUES ('p1', 'Beans', 4.5, 2, true)`).Error)

	info, err := NewProductGormRepository(db).LookupPrice(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, info.UnitPrice.Equal(decimal.RequireFromString("4.5")))
	assert.True(t, info.InStock)
}
