package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/sales-api/internal/shared/criteria"
)

// QueryFields is the allow-listed registry of Sale properties reachable
// from list-query filters and order keys. Anything else fails with an
// unknown-field error before touching the store.
var QueryFields = criteria.MustRegistry(map[string]criteria.Field[*Sale]{
	"Id": {
		Column: "id",
		Kind:   criteria.KindString,
		String: func(s *Sale) string { return s.ID.String() },
	},
	"SaleNumber": {
		Column: "sale_number",
		Kind:   criteria.KindNumber,
		Number: func(s *Sale) decimal.Decimal { return decimal.NewFromInt(int64(s.SaleNumber)) },
	},
	"SaleDate": {
		Column: "sale_date",
		Kind:   criteria.KindTime,
		Time:   func(s *Sale) time.Time { return s.SaleDate },
	},
	"Customer": {
		Column: "customer",
		Kind:   criteria.KindString,
		String: func(s *Sale) string { return s.Customer },
	},
	"Branch": {
		Column: "branch",
		Kind:   criteria.KindString,
		String: func(s *Sale) string { return s.Branch },
	},
	"Status": {
		Column: "status",
		Kind:   criteria.KindString,
		String: func(s *Sale) string { return string(s.Status) },
	},
})
