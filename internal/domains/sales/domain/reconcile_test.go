package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func storedSale() *Sale {
	saleID := uuid.New()
	return &Sale{
		ID:         saleID,
		SaleNumber: 7,
		SaleDate:   time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		Customer:   "Acme Corp",
		Branch:     "Downtown",
		Status:     StatusNotCancelled,
		Products: []SaleItem{
			{ID: uuid.New(), SaleItemID: 1, SaleID: saleID, Product: "Keyboard", Quantity: decimal.NewFromInt(5), UnitPrice: decimal.NewFromInt(10)},
			{ID: uuid.New(), SaleItemID: 2, SaleID: saleID, Product: "Mouse", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(25)},
		},
	}
}

func TestApplyUpdate_InsertUpdateDelete(t *testing.T) {
	existing := storedSale()
	keptID := existing.Products[0].ID
	droppedID := existing.Products[1].ID

	incoming := &Sale{
		ID:         existing.ID,
		SaleNumber: 8,
		SaleDate:   time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Customer:   "Acme Corp",
		Branch:     "Uptown",
		Status:     StatusCancelled,
		Products: []SaleItem{
			{ID: keptID, Product: "Keyboard", Quantity: decimal.NewFromInt(6), UnitPrice: decimal.NewFromInt(10)},
			{Product: "Monitor", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(200)},
		},
	}

	diff, err := existing.ApplyUpdate(incoming)
	require.NoError(t, err)

	require.Equal(t, []uuid.UUID{keptID}, diff.ToUpdate)
	require.Equal(t, []uuid.UUID{droppedID}, diff.ToDelete)
	require.Len(t, diff.ToInsert, 1)
	require.NotEqual(t, uuid.Nil, diff.ToInsert[0])

	require.Equal(t, 8, existing.SaleNumber)
	require.Equal(t, "Uptown", existing.Branch)
	require.Equal(t, StatusCancelled, existing.Status)
	require.Len(t, existing.Products, 2)
	require.Equal(t, diff.ToInsert[0], existing.Products[1].ID)
	require.Equal(t, existing.ID, existing.Products[1].SaleID)
}

func TestApplyUpdate_CarriesSequenceForward(t *testing.T) {
	existing := storedSale()
	keptID := existing.Products[1].ID

	incoming := &Sale{
		ID:         existing.ID,
		SaleNumber: existing.SaleNumber,
		Customer:   existing.Customer,
		Branch:     existing.Branch,
		Status:     existing.Status,
		Products: []SaleItem{
			// Client omits the sequence; the stored one must survive.
			{ID: keptID, Product: "Mouse", Quantity: decimal.NewFromInt(3), UnitPrice: decimal.NewFromInt(25)},
		},
	}

	_, err := existing.ApplyUpdate(incoming)
	require.NoError(t, err)
	require.Equal(t, 2, existing.Products[0].SaleItemID)
}

func TestApplyUpdate_UnknownItemID(t *testing.T) {
	existing := storedSale()
	before := *existing
	beforeItems := append([]SaleItem{}, existing.Products...)

	incoming := &Sale{
		ID:       existing.ID,
		Customer: existing.Customer,
		Branch:   existing.Branch,
		Status:   existing.Status,
		Products: []SaleItem{
			{ID: uuid.New(), Product: "Ghost", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(1)},
		},
	}

	_, err := existing.ApplyUpdate(incoming)
	require.ErrorIs(t, err, ErrItemUnknown)

	// The aggregate stays untouched on failure.
	require.Equal(t, before.SaleNumber, existing.SaleNumber)
	require.Equal(t, beforeItems, existing.Products)
}

func TestApplyUpdate_ItemFromAnotherSale(t *testing.T) {
	existing := storedSale()
	incoming := &Sale{
		ID:       existing.ID,
		Customer: existing.Customer,
		Branch:   existing.Branch,
		Status:   existing.Status,
		Products: []SaleItem{
			{ID: existing.Products[0].ID, SaleID: uuid.New(), Product: "Keyboard", Quantity: decimal.NewFromInt(5), UnitPrice: decimal.NewFromInt(10)},
		},
	}

	_, err := existing.ApplyUpdate(incoming)
	require.ErrorIs(t, err, ErrItemSaleMismatch)
}

func TestApplyUpdate_RoundTripItemSet(t *testing.T) {
	existing := storedSale()
	keptA := existing.Products[0]
	keptB := existing.Products[1]

	incoming := &Sale{
		ID:         existing.ID,
		SaleNumber: existing.SaleNumber,
		Customer:   existing.Customer,
		Branch:     existing.Branch,
		Status:     existing.Status,
		Products: []SaleItem{
			{ID: keptA.ID, Product: keptA.Product, Quantity: keptA.Quantity, UnitPrice: keptA.UnitPrice},
			{ID: keptB.ID, Product: keptB.Product, Quantity: keptB.Quantity, UnitPrice: keptB.UnitPrice},
			{Product: "Monitor", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(200)},
		},
	}

	diff, err := existing.ApplyUpdate(incoming)
	require.NoError(t, err)
	require.Empty(t, diff.ToDelete)
	require.Len(t, diff.ToUpdate, 2)
	require.Len(t, diff.ToInsert, 1)

	ids := make(map[uuid.UUID]struct{}, len(existing.Products))
	for _, item := range existing.Products {
		ids[item.ID] = struct{}{}
	}
	require.Contains(t, ids, keptA.ID)
	require.Contains(t, ids, keptB.ID)
	require.Contains(t, ids, diff.ToInsert[0])
}
