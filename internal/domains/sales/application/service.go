// Package application orchestrates the sales use cases: discount
// normalization, validation, and repository round-trips.
package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	types "github.com/Apurer/sales-api/internal/domains/sales/application/types"
	"github.com/Apurer/sales-api/internal/domains/sales/domain"
	"github.com/Apurer/sales-api/internal/domains/sales/ports"
)

// Service implements the sales use cases on top of a repository.
type Service struct {
	repo ports.Repository
}

// NewService wires the sales service with its repository.
func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo}
}

// CreateSale normalizes discounts, validates the request, guards the
// sale-number uniqueness, and persists the new aggregate.
func (s *Service) CreateSale(ctx context.Context, input types.CreateSaleInput) (*domain.Sale, error) {
	sale, err := s.prepare(input.SaleInput)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.GetBySaleNumber(ctx, sale.SaleNumber); err == nil {
		return nil, fmt.Errorf("sale with number %d: %w", sale.SaleNumber, ports.ErrDuplicateSaleNumber)
	} else if !errors.Is(err, ports.ErrNotFound) {
		return nil, err
	}
	return s.repo.Create(ctx, sale)
}

// UpdateSale normalizes and validates the incoming representation, loads
// the existing aggregate, and lets the repository reconcile and persist
// the item sets atomically.
func (s *Service) UpdateSale(ctx context.Context, input types.UpdateSaleInput) (*domain.Sale, error) {
	incoming, err := s.prepare(input.SaleInput)
	if err != nil {
		return nil, err
	}
	existing, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, existing, incoming)
}

// GetSale loads a single aggregate.
func (s *Service) GetSale(ctx context.Context, input types.SaleIdentifier) (*domain.Sale, error) {
	return s.repo.GetByID(ctx, input.ID)
}

// ListSales resolves the raw query parameters into a plan and returns
// the matching page plus the pre-pagination total.
func (s *Service) ListSales(ctx context.Context, input types.ListSalesInput) (*types.SaleList, error) {
	plan, err := domain.QueryFields.Build(input.Page, input.PageSize, input.Order, input.Filters)
	if err != nil {
		return nil, err
	}
	sales, total, err := s.repo.List(ctx, plan)
	if err != nil {
		return nil, err
	}
	return &types.SaleList{Sales: sales, TotalCount: total}, nil
}

// DeleteSale removes the whole aggregate, items included.
func (s *Service) DeleteSale(ctx context.Context, input types.SaleIdentifier) error {
	return s.repo.Delete(ctx, input.ID)
}

// prepare builds the domain aggregate from a request: discounts are
// computed first, then every validation rule runs and all failures are
// collected. The compute-then-validate order is load-bearing; the
// validator round-trips the tier table the calculator just applied.
func (s *Service) prepare(input types.SaleInput) (*domain.Sale, error) {
	sale := &domain.Sale{
		ID:         input.ID,
		SaleNumber: input.SaleNumber,
		SaleDate:   input.SaleDate,
		Customer:   input.Customer,
		Branch:     input.Branch,
		// Validate attributes a required/invalid status failure; the raw
		// value is kept so the two cases stay distinguishable.
		Status:   domain.Status(input.Status),
		Products: make([]domain.SaleItem, 0, len(input.Products)),
	}

	for _, item := range input.Products {
		saleItem := domain.SaleItem{
			ID:         item.ID,
			SaleItemID: item.SaleItemID,
			SaleID:     item.SaleID,
			Product:    item.Product,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
		}
		// The only failure here is the quantity ceiling, which Validate
		// reports with its field attribution.
		_ = saleItem.ApplyDiscount()
		sale.Products = append(sale.Products, saleItem)
	}

	result := s.validateBoundary(sale)
	result.Merge(sale.Validate())

	if !result.IsValid() {
		return nil, &ValidationFailedError{Errors: result.Errors}
	}
	return sale, nil
}

// validateBoundary enforces the inbound-request rules that do not bind
// the persisted aggregate itself.
func (s *Service) validateBoundary(sale *domain.Sale) domain.ValidationResult {
	var result domain.ValidationResult
	if strings.TrimSpace(sale.Customer) == "" {
		result.Add("customer", "Customer is required")
	}
	if strings.TrimSpace(sale.Branch) == "" {
		result.Add("branch", "Branch is required")
	}
	if len(sale.Products) == 0 {
		result.Add("products", "Products must not be empty")
	}
	return result
}

var _ ports.Service = (*Service)(nil)
