//go:build integration
// +build integration

// To enable gopls support for this file, add the following to your VSCode settings.json:
// "gopls": {
//   "buildFlags": ["-tags=integration"]
// }

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	salespostgres "github.com/Apurer/sales-api/internal/domains/sales/adapters/persistence/postgres"
	"github.com/Apurer/sales-api/internal/domains/sales/domain"
	"github.com/Apurer/sales-api/internal/domains/sales/ports"
	"github.com/Apurer/sales-api/internal/platform/migrations"
)

func setupPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("sales_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = migrations.Run(db)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

func sampleSale(saleNumber int) *domain.Sale {
	sale := &domain.Sale{
		SaleNumber: saleNumber,
		SaleDate:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Customer:   "Acme Corp",
		Branch:     "Downtown",
		Status:     domain.StatusNotCancelled,
		Products: []domain.SaleItem{
			{Product: "Keyboard", Quantity: decimal.NewFromInt(5), UnitPrice: decimal.NewFromInt(10)},
			{Product: "Mouse", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(25)},
		},
	}
	for i := range sale.Products {
		if err := sale.Products[i].ApplyDiscount(); err != nil {
			panic(err)
		}
	}
	return sale
}

func TestPostgresRepository_CreateAndGetByID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := salespostgres.NewRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, sampleSale(100))
	require.NoError(t, err)
	assert.NotNil(t, created)
	assert.Len(t, created.Products, 2)
	assert.Equal(t, 1, created.Products[0].SaleItemID)
	assert.Equal(t, 2, created.Products[1].SaleItemID)

	retrieved, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, retrieved.SaleNumber)
	assert.Equal(t, "Acme Corp", retrieved.Customer)
	assert.True(t, retrieved.Products[0].Discount.Equal(decimal.NewFromInt(5)))
	assert.True(t, retrieved.TotalSaleAmount().Equal(decimal.NewFromInt(95)))
}

func TestPostgresRepository_DuplicateSaleNumber(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := salespostgres.NewRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, sampleSale(7))
	require.NoError(t, err)

	_, err = repo.Create(ctx, sampleSale(7))
	require.ErrorIs(t, err, ports.ErrDuplicateSaleNumber)
}

func TestPostgresRepository_UpdateToTakenSaleNumber(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := salespostgres.NewRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, sampleSale(41))
	require.NoError(t, err)
	created, err := repo.Create(ctx, sampleSale(42))
	require.NoError(t, err)

	incoming := sampleSale(41)
	incoming.ID = created.ID
	for i := range incoming.Products {
		incoming.Products[i].ID = created.Products[i].ID
	}

	_, err = repo.Update(ctx, created, incoming)
	require.ErrorIs(t, err, ports.ErrDuplicateSaleNumber)

	// The rolled-back update must leave the aggregate untouched.
	retrieved, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 42, retrieved.SaleNumber)
}

func TestPostgresRepository_UpdateReconcilesItems(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := salespostgres.NewRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, sampleSale(200))
	require.NoError(t, err)

	incoming := &domain.Sale{
		ID:         created.ID,
		SaleNumber: 200,
		SaleDate:   created.SaleDate,
		Customer:   created.Customer,
		Branch:     "Uptown",
		Status:     domain.StatusCancelled,
		Products: []domain.SaleItem{
			{ID: created.Products[0].ID, Product: "Keyboard", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(10)},
			{Product: "Monitor", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(200)},
		},
	}
	for i := range incoming.Products {
		require.NoError(t, incoming.Products[i].ApplyDiscount())
	}

	updated, err := repo.Update(ctx, created, incoming)
	require.NoError(t, err)
	assert.Equal(t, "Uptown", updated.Branch)
	assert.Equal(t, domain.StatusCancelled, updated.Status)
	assert.Len(t, updated.Products, 2)
	// Matched item keeps its sequence.
	assert.Equal(t, created.Products[0].SaleItemID, updated.Products[0].SaleItemID)

	retrieved, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, retrieved.Products, 2)
	for _, item := range retrieved.Products {
		assert.NotEqual(t, created.Products[1].ID, item.ID, "dropped item must be gone")
	}
}

func TestPostgresRepository_DeleteCascades(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := salespostgres.NewRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, sampleSale(300))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, created.ID))
	_, err = repo.GetByID(ctx, created.ID)
	require.ErrorIs(t, err, ports.ErrNotFound)

	var itemCount int64
	require.NoError(t, db.Table("sale_items").Where("sale_id = ?", created.ID).Count(&itemCount).Error)
	assert.Zero(t, itemCount)

	require.ErrorIs(t, repo.Delete(ctx, created.ID), ports.ErrNotFound)
}

func TestPostgresRepository_ListWithPlan(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := salespostgres.NewRepository(db)
	ctx := context.Background()

	for i := 1; i <= 25; i++ {
		sale := sampleSale(i)
		if i%2 == 0 {
			sale.Branch = "Uptown"
		}
		_, err := repo.Create(ctx, sale)
		require.NoError(t, err)
	}

	plan, err := domain.QueryFields.Build(2, 10, "saleNumber", nil)
	require.NoError(t, err)
	sales, total, err := repo.List(ctx, plan)
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)
	require.Len(t, sales, 10)
	assert.Equal(t, 11, sales[0].SaleNumber)
	assert.Equal(t, 20, sales[9].SaleNumber)

	plan, err = domain.QueryFields.Build(1, 100, "saleNumber desc", map[string]string{
		"branch":         "Uptown",
		"_maxSaleNumber": "10",
	})
	require.NoError(t, err)
	sales, total, err = repo.List(ctx, plan)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.NotEmpty(t, sales)
	assert.Equal(t, 10, sales[0].SaleNumber)

	plan, err = domain.QueryFields.Build(1, 100, "", map[string]string{"customer": "Acme*"})
	require.NoError(t, err)
	_, total, err = repo.List(ctx, plan)
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)
}
