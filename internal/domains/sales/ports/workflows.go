package ports

import (
	"context"

	types "github.com/Apurer/sales-api/internal/domains/sales/application/types"
	"github.com/Apurer/sales-api/internal/domains/sales/domain"
)

// WorkflowOrchestrator runs the sale-creation use case, either durably
// on a Temporal cluster or inline against the service.
type WorkflowOrchestrator interface {
	CreateSale(ctx context.Context, input types.CreateSaleInput) (*domain.Sale, error)
}
