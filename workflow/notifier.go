package workflow

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/skladtech/inventory_backend/config"
	"github.com/skladtech/inventory_backend/models"
)

// LowStockNotifier receives products whose on-hand quantity is at or
// below the minimum after a stock adjustment. The engine calls it as an
// explicit post-condition check after completion commits; delivery
// (e-mail, push, ...) is the implementation's concern.
type LowStockNotifier interface {
	NotifyLowStock(ctx context.Context, product *models.Product) error
}

// notificationWriter is the default notifier: it writes Notification
// rows for every active admin and manager.
type notificationWriter struct{}

func (notificationWriter) NotifyLowStock(ctx context.Context, product *models.Product) error {
	return models.CreateLowStockNotifications(ctx, product)
}

var lowStockNotifier LowStockNotifier = notificationWriter{}

// RegisterLowStockNotifier replaces the default notifier. Call once at
// startup, before any completion runs.
func RegisterLowStockNotifier(n LowStockNotifier) {
	if n != nil {
		lowStockNotifier = n
	}
}

// invalidateProductCaches drops cached copies of adjusted products after
// the transaction commits. The invalidation inside the transaction is
// best effort only: a concurrent reader landing between it and the
// commit re-caches the pre-commit quantity, so this pass is what keeps
// readers from being served stale stock.
func invalidateProductCaches(logger *logrus.Logger, products []*models.Product) {
	for _, product := range products {
		if err := product.RemoveInstanceRedis(); err != nil {
			config.LogError(logger, "workflow", "invalidateProductCaches", "invalidate", product.ID, err)
		}
	}
}

// notifyIfLowStock runs the low-stock check over post-commit product
// states. Notifier failures are logged, never propagated: the stock
// mutation has already committed.
func notifyIfLowStock(ctx context.Context, logger *logrus.Logger, products []*models.Product) {
	for _, product := range products {
		if !product.IsLowStock() {
			continue
		}
		if err := lowStockNotifier.NotifyLowStock(ctx, product); err != nil {
			config.LogError(logger, "workflow", "notifyIfLowStock", "notify", product.ID, err)
		}
	}
}
