package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/sales-api/internal/domains/sales/domain"
	"github.com/Apurer/sales-api/internal/domains/sales/ports"
	"github.com/Apurer/sales-api/internal/shared/criteria"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists sale aggregates in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB
// lifecycle; schema is applied by the migrations package.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// saleRecord maps the sale header to its relational table.
type saleRecord struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey;column:id"`
	SaleNumber int              `gorm:"column:sale_number;uniqueIndex:idx_sales_sale_number"`
	SaleDate   time.Time        `gorm:"column:sale_date;index"`
	Customer   string           `gorm:"column:customer"`
	Branch     string           `gorm:"column:branch"`
	Status     string           `gorm:"column:status;type:varchar(32)"`
	Products   []saleItemRecord `gorm:"foreignKey:SaleID;references:ID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time        `gorm:"column:created_at"`
	UpdatedAt  time.Time        `gorm:"column:updated_at"`
}

func (saleRecord) TableName() string { return "sales" }

// saleItemRecord maps one owned item row.
type saleItemRecord struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;column:id"`
	SaleItemID  int             `gorm:"column:sale_item_id"`
	SaleID      uuid.UUID       `gorm:"type:uuid;column:sale_id;index"`
	Product     string          `gorm:"column:product"`
	Quantity    decimal.Decimal `gorm:"column:quantity;type:decimal(18,6)"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:decimal(18,2)"`
	Discount    decimal.Decimal `gorm:"column:discount;type:decimal(18,2)"`
	TotalAmount decimal.Decimal `gorm:"column:total_amount;type:decimal(18,2)"`
	CreatedAt   time.Time       `gorm:"column:created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at"`
}

func (saleItemRecord) TableName() string { return "sale_items" }

// Create inserts a new aggregate, header and items in one transaction.
func (r *Repository) Create(ctx context.Context, sale *domain.Sale) (*domain.Sale, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, errors.New("sale is nil")
	}
	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	for i := range sale.Products {
		if sale.Products[i].ID == uuid.Nil {
			sale.Products[i].ID = uuid.New()
		}
		sale.Products[i].SaleID = sale.ID
	}
	sale.AssignItemSequences()

	record := toRecord(sale)
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ports.ErrDuplicateSaleNumber
		}
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

// Update reconciles the incoming item set against the existing
// aggregate and applies the resulting diff in one transaction. Any
// failure rolls back; callers never observe partial writes.
func (r *Repository) Update(ctx context.Context, existing, incoming *domain.Sale) (*domain.Sale, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if existing == nil || incoming == nil {
		return nil, errors.New("sale is nil")
	}
	diff, err := existing.ApplyUpdate(incoming)
	if err != nil {
		return nil, err
	}
	existing.AssignItemSequences()

	inserts := idSet(diff.ToInsert)
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		header := toRecord(existing)
		header.Products = nil
		if err := tx.Model(&saleRecord{}).Where("id = ?", existing.ID).Updates(map[string]any{
			"sale_number": header.SaleNumber,
			"sale_date":   header.SaleDate,
			"customer":    header.Customer,
			"branch":      header.Branch,
			"status":      header.Status,
		}).Error; err != nil {
			return err
		}
		if len(diff.ToDelete) > 0 {
			if err := tx.Delete(&saleItemRecord{}, "id IN ?", diff.ToDelete).Error; err != nil {
				return err
			}
		}
		for _, item := range existing.Products {
			record := toItemRecord(item)
			if _, ok := inserts[item.ID]; ok {
				if err := tx.Create(&record).Error; err != nil {
					return err
				}
				continue
			}
			if err := tx.Model(&saleItemRecord{}).Where("id = ?", item.ID).Updates(map[string]any{
				"sale_item_id": record.SaleItemID,
				"product":      record.Product,
				"quantity":     record.Quantity,
				"unit_price":   record.UnitPrice,
				"discount":     record.Discount,
				"total_amount": record.TotalAmount,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// The header update can move sale_number onto a taken value.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ports.ErrDuplicateSaleNumber
		}
		return nil, err
	}
	return r.GetByID(ctx, existing.ID)
}

// GetByID fetches an aggregate with its items, ordered by sequence.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record saleRecord
	err := r.db.WithContext(ctx).
		Preload("Products", func(db *gorm.DB) *gorm.DB { return db.Order("sale_item_id") }).
		First(&record, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// GetBySaleNumber fetches an aggregate by its unique sale number.
func (r *Repository) GetBySaleNumber(ctx context.Context, saleNumber int) (*domain.Sale, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record saleRecord
	err := r.db.WithContext(ctx).
		Preload("Products", func(db *gorm.DB) *gorm.DB { return db.Order("sale_item_id") }).
		First(&record, "sale_number = ?", saleNumber).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// Delete removes the aggregate; items cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&saleRecord{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// List translates the criteria plan into WHERE/ORDER BY/LIMIT clauses.
// The total is counted after filtering, before the page window. Column
// names come from the allow-listed registry, never from client input.
func (r *Repository) List(ctx context.Context, plan criteria.Plan) ([]*domain.Sale, int64, error) {
	if err := r.ensureDB(); err != nil {
		return nil, 0, err
	}
	query := r.db.WithContext(ctx).Model(&saleRecord{})
	for _, filter := range plan.Filters {
		switch filter.Op {
		case criteria.OpAtLeast:
			query = query.Where(filter.Column+" >= ?", filterArg(filter))
		case criteria.OpAtMost:
			query = query.Where(filter.Column+" <= ?", filterArg(filter))
		case criteria.OpLike:
			query = query.Where(filter.Column+" LIKE ?", filter.LikePattern())
		default:
			query = query.Where(filter.Column+" = ?", filterArg(filter))
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	for _, key := range plan.Sort {
		query = query.Order(clause.OrderByColumn{
			Column: clause.Column{Name: key.Column},
			Desc:   key.Descending,
		})
	}
	if plan.Paginated() {
		query = query.Offset(plan.Offset()).Limit(plan.PageSize)
	}

	var records []saleRecord
	err := query.
		Preload("Products", func(db *gorm.DB) *gorm.DB { return db.Order("sale_item_id") }).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	sales := make([]*domain.Sale, 0, len(records))
	for i := range records {
		sales = append(sales, records[i].toDomain())
	}
	return sales, total, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres sale repository not configured")
	}
	return nil
}

func filterArg(filter criteria.Filter) any {
	switch filter.Kind {
	case criteria.KindNumber:
		return filter.Number
	case criteria.KindTime:
		return filter.Time
	default:
		return filter.Text
	}
}

func idSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func toRecord(sale *domain.Sale) saleRecord {
	record := saleRecord{
		ID:         sale.ID,
		SaleNumber: sale.SaleNumber,
		SaleDate:   sale.SaleDate,
		Customer:   sale.Customer,
		Branch:     sale.Branch,
		Status:     string(sale.Status),
	}
	for _, item := range sale.Products {
		record.Products = append(record.Products, toItemRecord(item))
	}
	return record
}

func toItemRecord(item domain.SaleItem) saleItemRecord {
	return saleItemRecord{
		ID:          item.ID,
		SaleItemID:  item.SaleItemID,
		SaleID:      item.SaleID,
		Product:     item.Product,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		Discount:    item.Discount,
		TotalAmount: item.TotalAmount,
	}
}

func (r saleRecord) toDomain() *domain.Sale {
	sale := &domain.Sale{
		ID:         r.ID,
		SaleNumber: r.SaleNumber,
		SaleDate:   r.SaleDate,
		Customer:   r.Customer,
		Branch:     r.Branch,
		Status:     domain.Status(r.Status),
	}
	for _, item := range r.Products {
		sale.Products = append(sale.Products, domain.SaleItem{
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
	return sale
}
