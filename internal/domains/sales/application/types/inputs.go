// Package types carries the use-case inputs and results shared between
// the application service, its ports, and the transport adapters.
package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Apurer/sales-api/internal/domains/sales/domain"
)

// SaleItemInput is one product line as submitted by a client. Discount
// is never accepted from the wire; the service computes it.
type SaleItemInput struct {
	ID         uuid.UUID
	SaleItemID int
	SaleID     uuid.UUID
	Product    string
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
}

// SaleInput is a full sale representation as submitted by a client.
// Status arrives as its wire string and is parsed during validation.
type SaleInput struct {
	ID         uuid.UUID
	SaleNumber int
	SaleDate   time.Time
	Customer   string
	Branch     string
	Status     string
	Products   []SaleItemInput
}

// CreateSaleInput starts a new sale aggregate.
type CreateSaleInput struct {
	SaleInput
}

// UpdateSaleInput replaces an existing sale aggregate.
type UpdateSaleInput struct {
	SaleInput
}

// SaleIdentifier addresses one sale.
type SaleIdentifier struct {
	ID uuid.UUID
}

// ListSalesInput carries raw list-query parameters. Order is the
// comma-separated "<field> [asc|desc]" list; Filters holds every query
// parameter left after the reserved pagination keys are removed.
type ListSalesInput struct {
	Page     int
	PageSize int
	Order    string
	Filters  map[string]string
}

// SaleList is a page of sales plus the total match count before
// pagination.
type SaleList struct {
	Sales      []*domain.Sale
	TotalCount int64
}
