package ports

import (
	"context"

	types "github.com/Apurer/sales-api/internal/domains/sales/application/types"
	"github.com/Apurer/sales-api/internal/domains/sales/domain"
)

// Service exposes the sales use cases to adapters.
type Service interface {
	CreateSale(ctx context.Context, input types.CreateSaleInput) (*domain.Sale, error)
	UpdateSale(ctx context.Context, input types.UpdateSaleInput) (*domain.Sale, error)
	GetSale(ctx context.Context, input types.SaleIdentifier) (*domain.Sale, error)
	ListSales(ctx context.Context, input types.ListSalesInput) (*types.SaleList, error)
	DeleteSale(ctx context.Context, input types.SaleIdentifier) error
}
