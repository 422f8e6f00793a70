package sales

import (
	"go.temporal.io/sdk/workflow"

	types "github.com/Apurer/sales-api/internal/domains/sales/application/types"
	"github.com/Apurer/sales-api/internal/domains/sales/domain"
	"github.com/Apurer/sales-api/internal/platform/temporal/sequences"
)

const (
	// SaleCreationWorkflowName is the public identifier for registering the workflow.
	SaleCreationWorkflowName = "sales.workflows.Creation"
	// SaleCreationTaskQueue is the queue consumed by the worker processing sale workflows.
	SaleCreationTaskQueue = "SALE_CREATION"
)

// SaleCreationWorkflowInput captures the payload required to provision a new sale.
type SaleCreationWorkflowInput struct {
	Command types.CreateSaleInput
	TraceID string
}

// SaleCreationWorkflow orchestrates the activities needed to persist a sale aggregate.
func SaleCreationWorkflow(ctx workflow.Context, input SaleCreationWorkflowInput) (*domain.Sale, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("SaleCreationWorkflow started", withTraceID(input.TraceID, "saleNumber", input.Command.SaleNumber)...)
	sale, err := sequences.RunSalePersistenceSequence(ctx, input.Command)
	if err != nil {
		logger.Error("SaleCreationWorkflow failed", withTraceID(input.TraceID, "saleNumber", input.Command.SaleNumber, "error", err)...)
		return nil, err
	}
	logger.Info("SaleCreationWorkflow completed", withTraceID(input.TraceID, "saleId", sale.ID)...)
	return sale, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
