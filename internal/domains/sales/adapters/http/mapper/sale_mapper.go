package mapper

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	types "github.com/Apurer/sales-api/internal/domains/sales/application/types"
	"github.com/Apurer/sales-api/internal/domains/sales/domain"
)

// MutationSaleItem captures an inbound item payload. Discount and
// totalAmount are never read from clients; the service computes both.
type MutationSaleItem struct {
	ID         uuid.UUID       `json:"id,omitempty"`
	SaleItemID int             `json:"saleItemId,omitempty"`
	SaleID     uuid.UUID       `json:"saleId,omitempty"`
	Product    string          `json:"product"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
}

// MutationSale captures inbound payloads for create/update flows.
type MutationSale struct {
	ID         uuid.UUID          `json:"id,omitempty"`
	SaleNumber int                `json:"saleNumber"`
	SaleDate   time.Time          `json:"saleDate"`
	Customer   string             `json:"customer"`
	Branch     string             `json:"branch"`
	Status     string             `json:"status"`
	Products   []MutationSaleItem `json:"products"`
}

// SaleItem is the HTTP representation of one product line.
type SaleItem struct {
	ID          uuid.UUID       `json:"id"`
	SaleItemID  int             `json:"saleItemId"`
	SaleID      uuid.UUID       `json:"saleId"`
	Product     string          `json:"product"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Discount    decimal.Decimal `json:"discount"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// Sale is the HTTP representation of a sale aggregate.
type Sale struct {
	ID              uuid.UUID       `json:"id"`
	SaleNumber      int             `json:"saleNumber"`
	SaleDate        time.Time       `json:"saleDate"`
	Customer        string          `json:"customer"`
	Branch          string          `json:"branch"`
	Status          string          `json:"status"`
	Products        []SaleItem      `json:"products"`
	TotalSaleAmount decimal.Decimal `json:"totalSaleAmount"`
}

// SalePage is the paginated list envelope.
type SalePage struct {
	Items      []Sale `json:"items"`
	TotalCount int64  `json:"totalCount"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
}

// ToSaleInput maps an inbound payload into the use-case input.
func ToSaleInput(payload MutationSale) types.SaleInput {
	items := make([]types.SaleItemInput, 0, len(payload.Products))
	for _, item := range payload.Products {
		items = append(items, types.SaleItemInput{
			ID:         item.ID,
			SaleItemID: item.SaleItemID,
			SaleID:     item.SaleID,
			Product:    item.Product,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
		})
	}
	return types.SaleInput{
		ID:         payload.ID,
		SaleNumber: payload.SaleNumber,
		SaleDate:   payload.SaleDate,
		Customer:   payload.Customer,
		Branch:     payload.Branch,
		Status:     payload.Status,
		Products:   items,
	}
}

// FromDomainSale maps a domain aggregate into its transport shape.
func FromDomainSale(s *domain.Sale) Sale {
	items := make([]SaleItem, 0, len(s.Products))
	for _, item := range s.Products {
		items = append(items, SaleItem{
			ID:          item.ID,
			SaleItemID:  item.SaleItemID,
			SaleID:      item.SaleID,
			Product:     item.Product,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Discount:    item.Discount,
			TotalAmount: item.TotalAmount,
		})
	}
	return Sale{
		ID:              s.ID,
		SaleNumber:      s.SaleNumber,
		SaleDate:        s.SaleDate,
		Customer:        s.Customer,
		Branch:          s.Branch,
		Status:          string(s.Status),
		Products:        items,
		TotalSaleAmount: s.TotalSaleAmount(),
	}
}

// FromSaleList maps a result page into the list envelope.
func FromSaleList(list *types.SaleList, page, pageSize int) SalePage {
	items := make([]Sale, 0, len(list.Sales))
	for _, sale := range list.Sales {
		items = append(items, FromDomainSale(sale))
	}
	return SalePage{
		Items:      items,
		TotalCount: list.TotalCount,
		Page:       page,
		PageSize:   pageSize,
	}
}
