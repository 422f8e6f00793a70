package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/Apurer/sales-api/internal/domains/sales/domain"
	"github.com/Apurer/sales-api/internal/domains/sales/ports"
	"github.com/Apurer/sales-api/internal/shared/criteria"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory sale persistence adapter, used as the dev
// fallback when no database is configured and as the fake in tests.
type Repository struct {
	mu    sync.RWMutex
	sales map[uuid.UUID]*domain.Sale
}

func NewRepository() *Repository {
	return &Repository{sales: map[uuid.UUID]*domain.Sale{}}
}

func (r *Repository) Create(_ context.Context, sale *domain.Sale) (*domain.Sale, error) {
	if sale == nil {
		return nil, errors.New("sale is nil")
	}
	clone := cloneSale(sale)
	if clone.ID == uuid.Nil {
		clone.ID = uuid.New()
	}
	for i := range clone.Products {
		if clone.Products[i].ID == uuid.Nil {
			clone.Products[i].ID = uuid.New()
		}
		clone.Products[i].SaleID = clone.ID
	}
	clone.AssignItemSequences()

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.sales {
		if stored.SaleNumber == clone.SaleNumber {
			return nil, ports.ErrDuplicateSaleNumber
		}
	}
	r.sales[clone.ID] = clone
	return cloneSale(clone), nil
}

func (r *Repository) Update(_ context.Context, existing, incoming *domain.Sale) (*domain.Sale, error) {
	if existing == nil || incoming == nil {
		return nil, errors.New("sale is nil")
	}
	reconciled := cloneSale(existing)
	if _, err := reconciled.ApplyUpdate(incoming); err != nil {
		return nil, err
	}
	reconciled.AssignItemSequences()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sales[reconciled.ID]; !ok {
		return nil, ports.ErrNotFound
	}
	for id, stored := range r.sales {
		if id != reconciled.ID && stored.SaleNumber == reconciled.SaleNumber {
			return nil, ports.ErrDuplicateSaleNumber
		}
	}
	r.sales[reconciled.ID] = reconciled
	return cloneSale(reconciled), nil
}

func (r *Repository) GetByID(_ context.Context, id uuid.UUID) (*domain.Sale, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sale, ok := r.sales[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return cloneSale(sale), nil
}

func (r *Repository) GetBySaleNumber(_ context.Context, saleNumber int) (*domain.Sale, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, sale := range r.sales {
		if sale.SaleNumber == saleNumber {
			return cloneSale(sale), nil
		}
	}
	return nil, ports.ErrNotFound
}

func (r *Repository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sales[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.sales, id)
	return nil
}

func (r *Repository) List(_ context.Context, plan criteria.Plan) ([]*domain.Sale, int64, error) {
	r.mu.RLock()
	all := make([]*domain.Sale, 0, len(r.sales))
	for _, sale := range r.sales {
		all = append(all, cloneSale(sale))
	}
	r.mu.RUnlock()

	// Map iteration order is random; sort by sale number so an unordered
	// page is stable and equal sort keys get a deterministic tiebreak.
	sort.Slice(all, func(i, j int) bool { return all[i].SaleNumber < all[j].SaleNumber })

	window, total := domain.QueryFields.Apply(plan, all)
	return window, int64(total), nil
}

func cloneSale(sale *domain.Sale) *domain.Sale {
	clone := *sale
	clone.Products = append([]domain.SaleItem{}, sale.Products...)
	return &clone
}
