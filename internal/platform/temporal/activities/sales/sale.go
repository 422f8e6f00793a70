package sales

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	salesapp "github.com/Apurer/sales-api/internal/domains/sales/application"
	types "github.com/Apurer/sales-api/internal/domains/sales/application/types"
	"github.com/Apurer/sales-api/internal/domains/sales/domain"
	salesports "github.com/Apurer/sales-api/internal/domains/sales/ports"
)

// PersistSaleActivityName persists a sale aggregate through the application service.
const PersistSaleActivityName = "sales.activities.PersistSale"

// Stable failure type names crossing the workflow boundary. The workflow
// retry policy and the caller-side translation both key on them.
const (
	ValidationFailedErrorType    = "ValidationFailedError"
	DuplicateSaleNumberErrorType = "DuplicateSaleNumber"
)

// Activities groups activities that operate on the sales bounded context.
type Activities struct {
	persistService salesports.Service
}

// NewActivities wires the sales collaborators into the Temporal activities bundle.
func NewActivities(persistService salesports.Service) *Activities {
	return &Activities{persistService: persistService}
}

// PersistSale validates and stores a new sale aggregate and returns it.
func (a *Activities) PersistSale(ctx context.Context, input types.CreateSaleInput) (*domain.Sale, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.persistService == nil {
		logger.Error("sale persist activity not initialized", "saleNumber", input.SaleNumber)
		return nil, errors.New("sale persist activity not initialized")
	}
	logger.Info("PersistSale activity started", "saleNumber", input.SaleNumber)
	sale, err := a.persistService.CreateSale(ctx, input)
	if err != nil {
		logger.Error("PersistSale activity failed", "saleNumber", input.SaleNumber, "error", err)
		return nil, asWorkflowFailure(err)
	}
	logger.Info("PersistSale activity completed", "saleId", sale.ID, "saleNumber", sale.SaleNumber)
	return sale, nil
}

// asWorkflowFailure converts business failures into non-retryable
// application errors with stable type names so the workflow caller can
// rebuild them on its side of the boundary. Validation failures carry
// the collected field errors as details. Anything else stays retryable.
func asWorkflowFailure(err error) error {
	var validationFailed *salesapp.ValidationFailedError
	if errors.As(err, &validationFailed) {
		return temporal.NewNonRetryableApplicationError(
			validationFailed.Error(), ValidationFailedErrorType, validationFailed, validationFailed.Errors)
	}
	if errors.Is(err, salesports.ErrDuplicateSaleNumber) {
		return temporal.NewNonRetryableApplicationError(err.Error(), DuplicateSaleNumberErrorType, err)
	}
	return err
}
