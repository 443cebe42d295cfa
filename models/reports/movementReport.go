package reports

import (
	"context"
	"time"

	"github.com/skladtech/inventory_backend/config"
)

type MovementReportRow struct {
	ProductId        int    `json:"product_id"`
	Name             string `json:"name"`
	Sku              string `json:"sku"`
	IncomingQuantity int    `json:"incoming_quantity"`
	OutgoingQuantity int    `json:"outgoing_quantity"`
	TransactionCount int    `json:"transaction_count"`
}

type MovementReportSummary struct {
	FromDate          time.Time            `json:"from_date"`
	ToDate            time.Time            `json:"to_date"`
	TotalTransactions int64                `json:"total_transactions"`
	IncomingCount     int64                `json:"incoming_count"`
	OutgoingCount     int64                `json:"outgoing_count"`
	Rows              []*MovementReportRow `json:"rows"`
}

// GetMovementReport aggregates the stock ledger per product over a
// period, split by direction. Read-only consumer of the ledger.
func GetMovementReport(ctx context.Context, fromDate time.Time, toDate time.Time) (*MovementReportSummary, error) {

	sql := `
SELECT
    p.id AS product_id,
    p.name,
    p.sku,
    COALESCE(SUM(CASE WHEN st.type = 'in' THEN st.quantity ELSE 0 END), 0) AS incoming_quantity,
    COALESCE(SUM(CASE WHEN st.type = 'out' THEN st.quantity ELSE 0 END), 0) AS outgoing_quantity,
    COUNT(st.id) AS transaction_count
FROM stock_transactions st
    JOIN products p ON p.id = st.product_id
WHERE st.date BETWEEN ? AND ?
GROUP BY p.id, p.name, p.sku
ORDER BY outgoing_quantity DESC, p.name;
`

	var rows []*MovementReportRow
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, fromDate, toDate).Scan(&rows).Error; err != nil {
		return nil, err
	}

	summary := MovementReportSummary{
		FromDate: fromDate,
		ToDate:   toDate,
		Rows:     rows,
	}
	for _, row := range rows {
		summary.TotalTransactions += int64(row.TransactionCount)
	}

	var inCount, outCount int64
	if err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM stock_transactions WHERE type = 'in' AND date BETWEEN ? AND ?`,
		fromDate, toDate).Scan(&inCount).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM stock_transactions WHERE type = 'out' AND date BETWEEN ? AND ?`,
		fromDate, toDate).Scan(&outCount).Error; err != nil {
		return nil, err
	}
	summary.IncomingCount = inCount
	summary.OutgoingCount = outCount

	return &summary, nil
}

func (r MovementReportRow) GetCellValues() []interface{} {
	return []interface{}{r.Name, r.Sku, r.IncomingQuantity, r.OutgoingQuantity, r.TransactionCount}
}
