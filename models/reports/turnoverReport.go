package reports

import (
	"context"
	"time"

	"github.com/skladtech/inventory_backend/config"
)

type TurnoverReportRow struct {
	ProductId        int    `json:"product_id"`
	Name             string `json:"name"`
	Sku              string `json:"sku"`
	OutgoingQuantity int    `json:"outgoing_quantity"`
	OutgoingCount    int    `json:"outgoing_count"`
}

type InactiveProductRow struct {
	ProductId int    `json:"product_id"`
	Name      string `json:"name"`
	Sku       string `json:"sku"`
	Quantity  int    `json:"quantity"`
}

type TurnoverReportSummary struct {
	PeriodDays       int                   `json:"period_days"`
	FromDate         time.Time             `json:"from_date"`
	PopularProducts  []*TurnoverReportRow  `json:"popular_products"`
	InactiveProducts []*InactiveProductRow `json:"inactive_products"`
}

// GetTurnoverReport ranks products by outgoing volume over the last
// periodDays and lists products with no ledger activity at all in the
// same window.
func GetTurnoverReport(ctx context.Context, periodDays int) (*TurnoverReportSummary, error) {

	if periodDays <= 0 {
		periodDays = 30
	}
	fromDate := time.Now().AddDate(0, 0, -periodDays)

	popularSql := `
SELECT
    p.id AS product_id,
    p.name,
    p.sku,
    SUM(st.quantity) AS outgoing_quantity,
    COUNT(st.id) AS outgoing_count
FROM stock_transactions st
    JOIN products p ON p.id = st.product_id
WHERE st.type = 'out' AND st.date >= ?
GROUP BY p.id, p.name, p.sku
ORDER BY outgoing_quantity DESC
LIMIT 10;
`

	inactiveSql := `
SELECT
    p.id AS product_id,
    p.name,
    p.sku,
    p.quantity
FROM products p
WHERE NOT EXISTS (
    SELECT 1 FROM stock_transactions st
    WHERE st.product_id = p.id AND st.date >= ?
)
ORDER BY p.name;
`

	db := config.GetDB()
	summary := TurnoverReportSummary{PeriodDays: periodDays, FromDate: fromDate}

	if err := db.WithContext(ctx).Raw(popularSql, fromDate).Scan(&summary.PopularProducts).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Raw(inactiveSql, fromDate).Scan(&summary.InactiveProducts).Error; err != nil {
		return nil, err
	}

	return &summary, nil
}

func (r TurnoverReportRow) GetCellValues() []interface{} {
	return []interface{}{r.Name, r.Sku, r.OutgoingQuantity, r.OutgoingCount}
}
