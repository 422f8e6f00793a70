package migrations

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the sales schema. Intended to replace adapter-level
// automigrate so ops can run it as a one-shot step (see cmd/migrate).
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&saleRecord{},
		&saleItemRecord{},
	)
}

// Sale header schema mirrors the sales Postgres adapter.
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

// Owned item schema mirrors the sales Postgres adapter.
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
