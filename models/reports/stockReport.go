package reports

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/skladtech/inventory_backend/config"
)

type StockReportRow struct {
	ProductId  int             `json:"product_id"`
	Name       string          `json:"name"`
	Sku        string          `json:"sku"`
	Unit       string          `json:"unit"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
	MinStock   int             `json:"min_stock"`
	IsLowStock bool            `json:"is_low_stock"`
	StockValue decimal.Decimal `json:"stock_value"`
}

type StockReportSummary struct {
	TotalProducts    int64             `json:"total_products"`
	LowStockCount    int64             `json:"low_stock_count"`
	ZeroStockCount   int64             `json:"zero_stock_count"`
	NormalStockCount int64             `json:"normal_stock_count"`
	TotalStockValue  decimal.Decimal   `json:"total_stock_value"`
	Rows             []*StockReportRow `json:"rows"`
}

// GetStockReport builds the on-hand snapshot per product: quantity,
// minimum threshold, low-stock flag and stock value (quantity x price).
func GetStockReport(ctx context.Context, lowStockOnly bool) (*StockReportSummary, error) {

	sql := `
SELECT
    p.id AS product_id,
    p.name,
    p.sku,
    p.unit,
    p.price,
    p.quantity,
    p.min_stock,
    (p.min_stock > 0 AND p.quantity <= p.min_stock) AS is_low_stock,
    p.quantity * p.price AS stock_value
FROM products p
ORDER BY p.name;
`

	var rows []*StockReportRow
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql).Scan(&rows).Error; err != nil {
		return nil, err
	}

	summary := StockReportSummary{TotalStockValue: decimal.Zero}
	filtered := make([]*StockReportRow, 0, len(rows))
	for _, row := range rows {
		summary.TotalProducts++
		if row.IsLowStock {
			summary.LowStockCount++
		}
		if row.Quantity == 0 {
			summary.ZeroStockCount++
		}
		summary.TotalStockValue = summary.TotalStockValue.Add(row.StockValue)
		if lowStockOnly && !row.IsLowStock {
			continue
		}
		filtered = append(filtered, row)
	}
	summary.NormalStockCount = summary.TotalProducts - summary.LowStockCount
	summary.Rows = filtered

	return &summary, nil
}

func (r StockReportRow) GetCellValues() []interface{} {
	return []interface{}{r.Name, r.Sku, r.Unit, r.Price, r.Quantity, r.MinStock, r.StockValue}
}
