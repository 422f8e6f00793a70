package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	types "github.com/Apurer/sales-api/internal/domains/sales/application/types"
	"github.com/Apurer/sales-api/internal/domains/sales/domain"
	"github.com/Apurer/sales-api/internal/domains/sales/ports"
)

const tracerName = "github.com/Apurer/sales-api/internal/domains/sales/adapters/observability/service"

// Service decorates the sales application port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

// CreateSale persists a new sale aggregate with instrumentation.
func (s *Service) CreateSale(ctx context.Context, input types.CreateSaleInput) (*domain.Sale, error) {
	ctx, span := s.startSpan(ctx, "Service.CreateSale", attribute.Int("sale.number", input.SaleNumber))
	defer span.End()

	s.logInfo(ctx, "creating sale", slog.Int("sale.number", input.SaleNumber))
	result, err := s.inner.CreateSale(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create sale", slog.Int("sale.number", input.SaleNumber))
	}
	if result != nil {
		s.metrics.recordCreated(ctx, result.Status)
		s.logInfo(ctx, "sale created", slog.String("sale.id", result.ID.String()), slog.Int("sale.number", result.SaleNumber))
	}
	return result, nil
}

// UpdateSale replaces an existing sale with new state.
func (s *Service) UpdateSale(ctx context.Context, input types.UpdateSaleInput) (*domain.Sale, error) {
	ctx, span := s.startSpan(ctx, "Service.UpdateSale", attribute.String("sale.id", input.ID.String()))
	defer span.End()

	s.logInfo(ctx, "updating sale", slog.String("sale.id", input.ID.String()))
	result, err := s.inner.UpdateSale(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update sale", slog.String("sale.id", input.ID.String()))
	}
	if result != nil {
		s.metrics.recordUpdated(ctx, result.Status)
		s.logInfo(ctx, "sale updated", slog.String("sale.id", result.ID.String()), slog.String("status", string(result.Status)))
	}
	return result, nil
}

// GetSale loads a single sale aggregate.
func (s *Service) GetSale(ctx context.Context, input types.SaleIdentifier) (*domain.Sale, error) {
	ctx, span := s.startSpan(ctx, "Service.GetSale", attribute.String("sale.id", input.ID.String()))
	defer span.End()

	s.logInfo(ctx, "loading sale", slog.String("sale.id", input.ID.String()))
	result, err := s.inner.GetSale(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load sale", slog.String("sale.id", input.ID.String()))
	}
	if result != nil {
		s.logInfo(ctx, "sale loaded", slog.String("sale.id", result.ID.String()), slog.String("status", string(result.Status)))
	}
	return result, nil
}

// ListSales runs a filtered, sorted, paginated query.
func (s *Service) ListSales(ctx context.Context, input types.ListSalesInput) (*types.SaleList, error) {
	ctx, span := s.startSpan(ctx, "Service.ListSales",
		attribute.Int("query.page", input.Page),
		attribute.Int("query.page_size", input.PageSize),
	)
	defer span.End()

	s.logInfo(ctx, "listing sales", slog.Int("page", input.Page), slog.Int("page_size", input.PageSize))
	result, err := s.inner.ListSales(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list sales")
	}
	if result != nil {
		span.SetAttributes(attribute.Int("sale.result.count", len(result.Sales)))
		s.logInfo(ctx, "listed sales", slog.Int("count", len(result.Sales)), slog.Int64("total", result.TotalCount))
	}
	return result, nil
}

// DeleteSale removes a sale.
func (s *Service) DeleteSale(ctx context.Context, input types.SaleIdentifier) error {
	ctx, span := s.startSpan(ctx, "Service.DeleteSale", attribute.String("sale.id", input.ID.String()))
	defer span.End()

	s.logInfo(ctx, "deleting sale", slog.String("sale.id", input.ID.String()))
	if err := s.inner.DeleteSale(ctx, input); err != nil {
		return s.handleError(ctx, span, err, "failed to delete sale", slog.String("sale.id", input.ID.String()))
	}
	s.metrics.recordDeleted(ctx)
	s.logInfo(ctx, "sale deleted", slog.String("sale.id", input.ID.String()))
	return nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	salesCreated metric.Int64Counter
	salesUpdated metric.Int64Counter
	salesDeleted metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	salesCreated, _ := m.Int64Counter("sales.service.created", metric.WithDescription("Number of sales created"))
	salesUpdated, _ := m.Int64Counter("sales.service.updated", metric.WithDescription("Number of sales updated"))
	salesDeleted, _ := m.Int64Counter("sales.service.deleted", metric.WithDescription("Number of sales deleted"))
	return serviceMetrics{
		salesCreated: salesCreated,
		salesUpdated: salesUpdated,
		salesDeleted: salesDeleted,
	}
}

func (m serviceMetrics) recordCreated(ctx context.Context, status domain.Status) {
	addCounter(ctx, m.salesCreated, 1, attribute.String("sale.status", string(status)))
}

func (m serviceMetrics) recordUpdated(ctx context.Context, status domain.Status) {
	addCounter(ctx, m.salesUpdated, 1, attribute.String("sale.status", string(status)))
}

func (m serviceMetrics) recordDeleted(ctx context.Context) {
	addCounter(ctx, m.salesDeleted, 1)
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
