package ports

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Apurer/sales-api/internal/domains/sales/domain"
	"github.com/Apurer/sales-api/internal/shared/criteria"
)

var (
	ErrNotFound            = errors.New("sale not found")
	ErrDuplicateSaleNumber = errors.New("sale number already exists")
)

// Repository persists sale aggregates. Create and Update are atomic:
// either the whole aggregate (header plus items) is written or nothing
// is. List applies a criteria plan and reports the total match count
// before pagination.
type Repository interface {
	Create(ctx context.Context, sale *domain.Sale) (*domain.Sale, error)
	Update(ctx context.Context, existing, incoming *domain.Sale) (*domain.Sale, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error)
	GetBySaleNumber(ctx context.Context, saleNumber int) (*domain.Sale, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, plan criteria.Plan) ([]*domain.Sale, int64, error)
}
