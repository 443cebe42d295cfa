package workflow

import (
	"context"

	"github.com/skladtech/inventory_backend/config"
	"github.com/skladtech/inventory_backend/models"
)

// RecordStockMovement posts a manual stock adjustment and runs the same
// post-commit duties as invoice completion: dropping the cached product
// and checking the low-stock threshold on the committed quantity.
func RecordStockMovement(ctx context.Context, input *models.NewStockTransaction) (*models.StockTransaction, error) {
	logger := config.GetLogger()

	entry, product, err := models.CreateStockTransaction(ctx, input)
	if err != nil {
		return nil, err
	}

	adjusted := []*models.Product{product}
	invalidateProductCaches(logger, adjusted)
	notifyIfLowStock(ctx, logger, adjusted)

	return entry, nil
}
