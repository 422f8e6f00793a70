package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	salesmemory "github.com/Apurer/sales-api/internal/domains/sales/adapters/memory"
	types "github.com/Apurer/sales-api/internal/domains/sales/application/types"
	"github.com/Apurer/sales-api/internal/domains/sales/domain"
	"github.com/Apurer/sales-api/internal/domains/sales/ports"
	"github.com/Apurer/sales-api/internal/shared/criteria"
)

func newService() (*Service, *salesmemory.Repository) {
	repo := salesmemory.NewRepository()
	return NewService(repo), repo
}

func saleInput(saleNumber int) types.SaleInput {
	return types.SaleInput{
		SaleNumber: saleNumber,
		SaleDate:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Customer:   "Acme Corp",
		Branch:     "Downtown",
		Status:     "NotCancelled",
		Products: []types.SaleItemInput{
			{Product: "Keyboard", Quantity: decimal.NewFromInt(5), UnitPrice: decimal.NewFromInt(10)},
			{Product: "Mouse", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(25)},
		},
	}
}

func TestCreateSale_ComputesDiscounts(t *testing.T) {
	svc, _ := newService()

	sale, err := svc.CreateSale(context.Background(), types.CreateSaleInput{SaleInput: saleInput(100)})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, sale.ID)
	require.Len(t, sale.Products, 2)

	// 5 units hit the 10% tier; 2 units get nothing.
	require.True(t, sale.Products[0].Discount.Equal(decimal.NewFromInt(5)), "got %s", sale.Products[0].Discount)
	require.True(t, sale.Products[0].TotalAmount.Equal(decimal.NewFromInt(45)), "got %s", sale.Products[0].TotalAmount)
	require.True(t, sale.Products[1].Discount.IsZero())
	require.True(t, sale.TotalSaleAmount().Equal(decimal.NewFromInt(95)), "got %s", sale.TotalSaleAmount())

	require.Equal(t, 1, sale.Products[0].SaleItemID)
	require.Equal(t, 2, sale.Products[1].SaleItemID)
}

func TestCreateSale_DuplicateSaleNumber(t *testing.T) {
	svc, _ := newService()

	_, err := svc.CreateSale(context.Background(), types.CreateSaleInput{SaleInput: saleInput(500)})
	require.NoError(t, err)

	_, err = svc.CreateSale(context.Background(), types.CreateSaleInput{SaleInput: saleInput(500)})
	require.ErrorIs(t, err, ports.ErrDuplicateSaleNumber)
}

func TestCreateSale_CollectsValidationFailures(t *testing.T) {
	svc, _ := newService()

	input := saleInput(0)
	input.Customer = "  "
	input.Products[0].Quantity = decimal.NewFromInt(21)

	_, err := svc.CreateSale(context.Background(), types.CreateSaleInput{SaleInput: input})
	var failed *ValidationFailedError
	require.ErrorAs(t, err, &failed)

	fields := make([]string, 0, len(failed.Errors))
	for _, failure := range failed.Errors {
		fields = append(fields, failure.Field)
	}
	require.Contains(t, fields, "customer")
	require.Contains(t, fields, "saleNumber")
	require.Contains(t, fields, "products[0].quantity")
}

func TestCreateSale_RejectsEmptyProducts(t *testing.T) {
	svc, _ := newService()

	input := saleInput(101)
	input.Products = nil

	_, err := svc.CreateSale(context.Background(), types.CreateSaleInput{SaleInput: input})
	var failed *ValidationFailedError
	require.ErrorAs(t, err, &failed)
	require.Len(t, failed.Errors, 1)
	require.Equal(t, "products", failed.Errors[0].Field)
}

func TestCreateSale_RejectsClientSuppliedDiscountMismatch(t *testing.T) {
	svc, _ := newService()

	// The service recomputes discounts from the tier table, so a request
	// carrying quantity 21 fails even though it names no discount.
	input := saleInput(102)
	input.Products = []types.SaleItemInput{
		{Product: "Keyboard", Quantity: decimal.NewFromInt(21), UnitPrice: decimal.NewFromInt(10)},
	}
	_, err := svc.CreateSale(context.Background(), types.CreateSaleInput{SaleInput: input})
	var failed *ValidationFailedError
	require.ErrorAs(t, err, &failed)
	require.Equal(t, "Cannot sell more than 20 identical items", failed.Errors[0].Message)
}

func TestUpdateSale_ReconcilesItems(t *testing.T) {
	svc, _ := newService()

	created, err := svc.CreateSale(context.Background(), types.CreateSaleInput{SaleInput: saleInput(200)})
	require.NoError(t, err)

	update := saleInput(200)
	update.ID = created.ID
	update.Products = []types.SaleItemInput{
		// Keep the first item (quantity bumped), drop the second, add one.
		{ID: created.Products[0].ID, Product: "Keyboard", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(10)},
		{Product: "Monitor", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(200)},
	}

	updated, err := svc.UpdateSale(context.Background(), types.UpdateSaleInput{SaleInput: update})
	require.NoError(t, err)
	require.Len(t, updated.Products, 2)

	// Matched item keeps its sequence; bumped quantity hits the 20% tier.
	require.Equal(t, created.Products[0].SaleItemID, updated.Products[0].SaleItemID)
	require.True(t, updated.Products[0].Discount.Equal(decimal.NewFromInt(20)), "got %s", updated.Products[0].Discount)
	require.NotEqual(t, uuid.Nil, updated.Products[1].ID)
	require.Equal(t, 2, updated.Products[1].SaleItemID)
}

func TestUpdateSale_UnknownItemID(t *testing.T) {
	svc, _ := newService()

	created, err := svc.CreateSale(context.Background(), types.CreateSaleInput{SaleInput: saleInput(201)})
	require.NoError(t, err)

	update := saleInput(201)
	update.ID = created.ID
	update.Products = []types.SaleItemInput{
		{ID: uuid.New(), Product: "Ghost", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(1)},
	}

	_, err = svc.UpdateSale(context.Background(), types.UpdateSaleInput{SaleInput: update})
	require.ErrorIs(t, err, domain.ErrItemUnknown)
}

func TestUpdateSale_NotFound(t *testing.T) {
	svc, _ := newService()

	update := saleInput(202)
	update.ID = uuid.New()
	_, err := svc.UpdateSale(context.Background(), types.UpdateSaleInput{SaleInput: update})
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestGetSale_NotFound(t *testing.T) {
	svc, _ := newService()

	_, err := svc.GetSale(context.Background(), types.SaleIdentifier{ID: uuid.New()})
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestDeleteSale(t *testing.T) {
	svc, _ := newService()

	created, err := svc.CreateSale(context.Background(), types.CreateSaleInput{SaleInput: saleInput(300)})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSale(context.Background(), types.SaleIdentifier{ID: created.ID}))
	_, err = svc.GetSale(context.Background(), types.SaleIdentifier{ID: created.ID})
	require.ErrorIs(t, err, ports.ErrNotFound)

	require.ErrorIs(t, svc.DeleteSale(context.Background(), types.SaleIdentifier{ID: created.ID}), ports.ErrNotFound)
}

func TestListSales_FiltersAndPaginates(t *testing.T) {
	svc, _ := newService()

	for i := 1; i <= 25; i++ {
		input := saleInput(i)
		if i%2 == 0 {
			input.Branch = "Uptown"
		}
		_, err := svc.CreateSale(context.Background(), types.CreateSaleInput{SaleInput: input})
		require.NoError(t, err)
	}

	result, err := svc.ListSales(context.Background(), types.ListSalesInput{
		Page:     2,
		PageSize: 10,
		Order:    "saleNumber",
	})
	require.NoError(t, err)
	require.Equal(t, int64(25), result.TotalCount)
	require.Len(t, result.Sales, 10)
	require.Equal(t, 11, result.Sales[0].SaleNumber)
	require.Equal(t, 20, result.Sales[9].SaleNumber)

	result, err = svc.ListSales(context.Background(), types.ListSalesInput{
		Page:     1,
		PageSize: 100,
		Order:    "saleNumber desc",
		Filters:  map[string]string{"branch": "Uptown", "_maxSaleNumber": "10"},
	})
	require.NoError(t, err)
	require.Equal(t, int64(5), result.TotalCount)
	require.Equal(t, 10, result.Sales[0].SaleNumber)
	require.Equal(t, 2, result.Sales[4].SaleNumber)
}

func TestListSales_UnknownFilterField(t *testing.T) {
	svc, _ := newService()

	_, err := svc.ListSales(context.Background(), types.ListSalesInput{
		Page:     1,
		PageSize: 10,
		Filters:  map[string]string{"warehouse": "north"},
	})
	var unknown *criteria.UnknownFieldError
	require.ErrorAs(t, err, &unknown)
}
