package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrItemSaleMismatch rejects an incoming item whose sale id names a
	// different sale than the aggregate being updated.
	ErrItemSaleMismatch = errors.New("sale item does not belong to this sale")
	// ErrItemUnknown rejects an incoming item whose id matches no existing
	// item. New items must omit the id field.
	ErrItemUnknown = errors.New("sale item not found; to create a new item, the id field must be omitted")
)

// ItemDiff is the outcome of reconciling an incoming item set against
// the existing one: the id sets to insert, update, and delete.
// Repositories apply all three within one transaction.
type ItemDiff struct {
	ToInsert []uuid.UUID
	ToUpdate []uuid.UUID
	ToDelete []uuid.UUID
}

// ApplyUpdate merges an incoming full-sale representation onto the
// existing aggregate: header scalars are copied over, and the item
// collections are reconciled by id. Incoming items without an id are
// new and receive one; items with an id must match an existing item and
// keep their store-assigned sequence number when the incoming one is
// unset. Existing items absent from the incoming set are dropped. On
// error the aggregate is left unchanged.
func (s *Sale) ApplyUpdate(incoming *Sale) (ItemDiff, error) {
	existing := make(map[uuid.UUID]SaleItem, len(s.Products))
	for _, item := range s.Products {
		existing[item.ID] = item
	}
	incomingIDs := make(map[uuid.UUID]struct{}, len(incoming.Products))
	for _, item := range incoming.Products {
		if item.ID != uuid.Nil {
			incomingIDs[item.ID] = struct{}{}
		}
	}

	var diff ItemDiff
	next := make([]SaleItem, 0, len(incoming.Products))
	for _, item := range incoming.Products {
		if item.SaleID == uuid.Nil {
			item.SaleID = s.ID
		} else if item.SaleID != s.ID {
			return ItemDiff{}, fmt.Errorf("sale id %s: %w", item.SaleID, ErrItemSaleMismatch)
		}
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
			diff.ToInsert = append(diff.ToInsert, item.ID)
			next = append(next, item)
			continue
		}
		prev, ok := existing[item.ID]
		if !ok {
			return ItemDiff{}, fmt.Errorf("item %s: %w", item.ID, ErrItemUnknown)
		}
		if item.SaleItemID <= 0 && prev.SaleItemID > 0 {
			item.SaleItemID = prev.SaleItemID
		}
		diff.ToUpdate = append(diff.ToUpdate, item.ID)
		next = append(next, item)
	}
	for _, item := range s.Products {
		if _, ok := incomingIDs[item.ID]; !ok {
			diff.ToDelete = append(diff.ToDelete, item.ID)
		}
	}

	s.SaleNumber = incoming.SaleNumber
	s.SaleDate = incoming.SaleDate
	s.Customer = incoming.Customer
	s.Branch = incoming.Branch
	s.Status = incoming.Status
	s.Products = next
	return diff, nil
}
