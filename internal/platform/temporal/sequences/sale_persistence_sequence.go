package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	types "github.com/Apurer/sales-api/internal/domains/sales/application/types"
	"github.com/Apurer/sales-api/internal/domains/sales/domain"
	saleactivities "github.com/Apurer/sales-api/internal/platform/temporal/activities/sales"
)

// RunSalePersistenceSequence executes the ordered set of activities needed to persist a sale aggregate.
func RunSalePersistenceSequence(ctx workflow.Context, input types.CreateSaleInput) (*domain.Sale, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("sale persistence sequence started", "saleNumber", input.SaleNumber)
	persistOptions := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
			// Validation and conflict failures never heal on retry.
			NonRetryableErrorTypes: []string{
				saleactivities.ValidationFailedErrorType,
				saleactivities.DuplicateSaleNumberErrorType,
			},
		},
	}

	var sale domain.Sale
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, persistOptions), saleactivities.PersistSaleActivityName, input).Get(ctx, &sale)
	if err != nil {
		logger.Error("sale persistence sequence failed", "saleNumber", input.SaleNumber, "error", err)
		return nil, err
	}
	logger.Info("sale persistence sequence persisted", "saleId", sale.ID, "saleNumber", sale.SaleNumber)
	return &sale, nil
}
