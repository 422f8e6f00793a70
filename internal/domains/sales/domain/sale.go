// Package domain models the Sale aggregate: a sale header plus the
// items it owns, persisted and reconciled as one unit.
package domain

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status indicates whether a sale was cancelled. The zero value is not a
// legal status: callers must construct one explicitly via ParseStatus,
// and absent input surfaces as a required-field validation error.
type Status string

const (
	StatusCancelled    Status = "Cancelled"
	StatusNotCancelled Status = "NotCancelled"
)

var (
	ErrStatusRequired = errors.New("sale status is required")
	ErrInvalidStatus  = errors.New("sale status must be Cancelled or NotCancelled")
)

// ParseStatus constructs a Status from its wire representation.
func ParseStatus(value string) (Status, error) {
	switch Status(value) {
	case StatusCancelled:
		return StatusCancelled, nil
	case StatusNotCancelled:
		return StatusNotCancelled, nil
	case "":
		return "", ErrStatusRequired
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, value)
	}
}

// Valid reports whether the status carries one of the two legal values.
func (s Status) Valid() bool {
	return s == StatusCancelled || s == StatusNotCancelled
}

// SaleItem is a product line owned by a Sale. SaleItemID is the
// store-assigned sequence within the sale and is immutable once set.
type SaleItem struct {
	ID          uuid.UUID
	SaleItemID  int
	SaleID      uuid.UUID
	Product     string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Discount    decimal.Decimal
	TotalAmount decimal.Decimal
}

// Sale is the aggregate root.
type Sale struct {
	ID         uuid.UUID
	SaleNumber int
	SaleDate   time.Time
	Customer   string
	Branch     string
	Status     Status
	Products   []SaleItem
}

// TotalSaleAmount sums the total amount of every item in the sale.
func (s *Sale) TotalSaleAmount() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Products {
		total = total.Add(item.TotalAmount)
	}
	return total
}

// AssignItemSequences numbers items that do not yet carry a store
// sequence, continuing after the highest sequence already assigned.
// Repositories call this on persist; sequences never change afterwards.
func (s *Sale) AssignItemSequences() {
	next := 0
	for _, item := range s.Products {
		if item.SaleItemID > next {
			next = item.SaleItemID
		}
	}
	for i := range s.Products {
		if s.Products[i].SaleItemID <= 0 {
			next++
			s.Products[i].SaleItemID = next
		}
	}
}

// ValidationError is a single field-attributed rule failure.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult collects every rule failure; evaluation never stops
// at the first one.
type ValidationResult struct {
	Errors []ValidationError
}

// IsValid reports whether no rule failed.
func (r ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// Add records one failure.
func (r *ValidationResult) Add(field, message string) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: message})
}

// Merge appends the failures of another result.
func (r *ValidationResult) Merge(other ValidationResult) {
	r.Errors = append(r.Errors, other.Errors...)
}

const (
	msgQuantityLimit   = "Cannot sell more than 20 identical items"
	msgInvalidDiscount = "Invalid discount based on quantity"
)

// Validate checks the aggregate's invariants. Discounts must already be
// normalized by ItemDiscount; validation round-trips the same tier
// table, so computing discounts after validating would reject
// legitimately discounted items.
func (s *Sale) Validate() ValidationResult {
	var result ValidationResult
	if s.SaleNumber <= 0 || s.SaleNumber >= math.MaxInt32 {
		result.Add("saleNumber", fmt.Sprintf("Sale Number must be greater than 0 and less than %d", math.MaxInt32))
	}
	if !s.Status.Valid() {
		if s.Status == "" {
			result.Add("status", ErrStatusRequired.Error())
		} else {
			result.Add("status", ErrInvalidStatus.Error())
		}
	}
	for i, item := range s.Products {
		field := fmt.Sprintf("products[%d]", i)
		if item.Quantity.GreaterThan(maxItemQuantity) {
			result.Add(field+".quantity", msgQuantityLimit)
			continue
		}
		expected, err := ItemDiscount(item.Quantity, item.UnitPrice)
		if err != nil || !item.Discount.Equal(expected) {
			result.Add(field+".discount", msgInvalidDiscount)
		}
	}
	return result
}
