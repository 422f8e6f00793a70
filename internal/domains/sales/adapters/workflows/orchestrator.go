package workflows

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	salesapp "github.com/Apurer/sales-api/internal/domains/sales/application"
	types "github.com/Apurer/sales-api/internal/domains/sales/application/types"
	"github.com/Apurer/sales-api/internal/domains/sales/domain"
	"github.com/Apurer/sales-api/internal/domains/sales/ports"
	saleactivities "github.com/Apurer/sales-api/internal/platform/temporal/activities/sales"
	saleworkflows "github.com/Apurer/sales-api/internal/platform/temporal/workflows/sales"
)

var (
	_ ports.WorkflowOrchestrator = (*TemporalSaleWorkflows)(nil)
	_ ports.WorkflowOrchestrator = (*InlineSaleWorkflows)(nil)
)

// TemporalSaleWorkflows starts sale workflows on a Temporal cluster.
type TemporalSaleWorkflows struct {
	client    client.Client
	taskQueue string
}

// NewTemporalSaleWorkflows wires a Temporal client into the orchestrator.
func NewTemporalSaleWorkflows(c client.Client) *TemporalSaleWorkflows {
	return &TemporalSaleWorkflows{client: c, taskQueue: saleworkflows.SaleCreationTaskQueue}
}

// CreateSale starts the Temporal workflow that persists a sale aggregate.
// The sale number doubles as an idempotency key: a second submission of
// the same number joins the in-flight workflow instead of starting a new one.
func (o *TemporalSaleWorkflows) CreateSale(ctx context.Context, input types.CreateSaleInput) (*domain.Sale, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal sale workflows not configured")
	}
	workflowID := buildSaleCreationWorkflowID(input)
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: o.taskQueue,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		saleworkflows.SaleCreationWorkflow,
		saleworkflows.SaleCreationWorkflowInput{Command: input, TraceID: workflowTraceID(ctx)},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) {
			existingRun := o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
			var sale domain.Sale
			if err := existingRun.Get(ctx, &sale); err != nil {
				return nil, translateWorkflowError(err)
			}
			return &sale, nil
		}
		return nil, err
	}
	var sale domain.Sale
	if err := run.Get(ctx, &sale); err != nil {
		return nil, translateWorkflowError(err)
	}
	return &sale, nil
}

// translateWorkflowError rebuilds the application errors the persist
// activity flattened into typed application errors, so callers keep
// getting the same errors on the durable path as on the inline one.
func translateWorkflowError(err error) error {
	if err == nil {
		return nil
	}
	var applicationErr *temporal.ApplicationError
	if !errors.As(err, &applicationErr) {
		return err
	}
	switch applicationErr.Type() {
	case saleactivities.ValidationFailedErrorType:
		var fieldErrors []domain.ValidationError
		if applicationErr.HasDetails() {
			if detailsErr := applicationErr.Details(&fieldErrors); detailsErr == nil && len(fieldErrors) > 0 {
				return &salesapp.ValidationFailedError{Errors: fieldErrors}
			}
		}
		return &salesapp.ValidationFailedError{Errors: []domain.ValidationError{
			{Field: "sale", Message: applicationErr.Message()},
		}}
	case saleactivities.DuplicateSaleNumberErrorType:
		detail := strings.TrimSuffix(applicationErr.Message(), ": "+ports.ErrDuplicateSaleNumber.Error())
		return fmt.Errorf("%s: %w", detail, ports.ErrDuplicateSaleNumber)
	}
	return err
}

// InlineSaleWorkflows executes the service directly without Temporal, useful for tests or dev fallbacks.
type InlineSaleWorkflows struct {
	service ports.Service
}

// NewInlineSaleWorkflows wraps the sales service for synchronous execution.
func NewInlineSaleWorkflows(service ports.Service) *InlineSaleWorkflows {
	return &InlineSaleWorkflows{service: service}
}

// CreateSale delegates to the application service without durable orchestration.
func (o *InlineSaleWorkflows) CreateSale(ctx context.Context, input types.CreateSaleInput) (*domain.Sale, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline sale workflows not configured")
	}
	return o.service.CreateSale(ctx, input)
}

func buildSaleCreationWorkflowID(input types.CreateSaleInput) string {
	if input.SaleNumber > 0 {
		return fmt.Sprintf("sale-creation-%d", input.SaleNumber)
	}
	return fmt.Sprintf("sale-creation-unnumbered-%d", time.Now().UnixNano())
}

func workflowTraceID(ctx context.Context) string {
	span := oteltrace.SpanFromContext(ctx)
	if span == nil {
		return ""
	}
	spanCtx := span.SpanContext()
	if !spanCtx.IsValid() || !spanCtx.TraceID().IsValid() {
		return ""
	}
	return strings.TrimSpace(spanCtx.TraceID().String())
}
