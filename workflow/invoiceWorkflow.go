package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/skladtech/inventory_backend/config"
	"github.com/skladtech/inventory_backend/models"
	"github.com/skladtech/inventory_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const postingLockTTL = 30 * time.Second

// acquirePostingLock serializes posting per invoice across instances.
// Row locks inside the transaction still guard per-product contention;
// this keeps two replicas from racing on the same invoice id. With no
// redis configured (unit tests, dev) it is a no-op.
func acquirePostingLock(ctx context.Context, invoiceId int) (*redislock.Lock, error) {
	locker := config.GetRedisLock()
	if locker == nil {
		return nil, nil
	}
	key := fmt.Sprintf("posting:invoice:%d", invoiceId)
	lock, err := locker.Obtain(ctx, key, postingLockTTL, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(250*time.Millisecond), 20),
	})
	if err != nil {
		return nil, fmt.Errorf("could not acquire posting lock for invoice %d: %w", invoiceId, err)
	}
	return lock, nil
}

func releasePostingLock(ctx context.Context, lock *redislock.Lock) {
	if lock != nil {
		_ = lock.Release(ctx)
	}
}

// fetchInvoiceForPosting locks the invoice row and loads its lines.
func fetchInvoiceForPosting(tx *gorm.DB, id int) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&invoice, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	if err := tx.Where("invoice_id = ?", id).Find(&invoice.Items).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

// ledgerComment builds the comment stored on every ledger entry of a
// completed invoice: it references the invoice number and the
// counterparty (supplier or expense reason).
func ledgerComment(ctx context.Context, invoice *models.Invoice) (string, error) {
	switch invoice.Kind {
	case models.InvoiceKindPurchase:
		supplier, err := models.GetSupplier(ctx, derefInt(invoice.SupplierId))
		if err != nil {
			return "", fmt.Errorf("supplier for invoice %s: %w", invoice.InvoiceNumber, err)
		}
		return fmt.Sprintf("Receipt by invoice %s. Supplier: %s", invoice.InvoiceNumber, supplier.Name), nil
	case models.InvoiceKindExpense:
		reason, err := models.GetExpenseReason(ctx, derefInt(invoice.ReasonId))
		if err != nil {
			return "", fmt.Errorf("expense reason for invoice %s: %w", invoice.InvoiceNumber, err)
		}
		return fmt.Sprintf("Expense by invoice %s. Reason: %s", invoice.InvoiceNumber, reason.Name), nil
	}
	return "", fmt.Errorf("invalid invoice kind %q", invoice.Kind)
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// CompleteInvoice applies a draft invoice's stock effect and seals it.
// Sufficiency check (outgoing), per-line quantity adjustments, ledger
// appends and the status flip run in a single transaction: they all
// succeed together or none take effect. Readers never observe a
// completed invoice with un-applied deltas, nor a partially adjusted
// stock state.
func CompleteInvoice(ctx context.Context, id int) (*models.Invoice, error) {
	logger := config.GetLogger()

	lock, err := acquirePostingLock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer releasePostingLock(ctx, lock)

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()

	invoice, err := fetchInvoiceForPosting(tx, id)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if invoice.Status != models.InvoiceStatusDraft {
		tx.Rollback()
		return nil, models.ErrInvalidState
	}

	comment, err := ledgerComment(ctx, invoice)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	adjusted, err := applyInvoiceStock(ctx, tx, invoice, comment)
	if err != nil {
		tx.Rollback()
		if !models.IsInsufficientStock(err) {
			config.LogError(logger, "workflow", "CompleteInvoice", "applyStock", invoice.InvoiceNumber, err)
		}
		return nil, err
	}

	if err := tx.Model(invoice).Update("Status", models.InvoiceStatusCompleted).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	invoice.Status = models.InvoiceStatusCompleted

	// post-commit duties on committed state
	invalidateProductCaches(logger, adjusted)
	notifyIfLowStock(ctx, logger, adjusted)

	return invoice, nil
}

// CancelInvoice marks a draft invoice cancelled. No stock or ledger
// effect; completed invoices cannot be cancelled.
func CancelInvoice(ctx context.Context, id int) (*models.Invoice, error) {

	lock, err := acquirePostingLock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer releasePostingLock(ctx, lock)

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()

	invoice, err := fetchInvoiceForPosting(tx, id)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if invoice.Status != models.InvoiceStatusDraft {
		tx.Rollback()
		return nil, models.ErrInvalidState
	}

	if err := tx.Model(invoice).Update("Status", models.InvoiceStatusCancelled).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	invoice.Status = models.InvoiceStatusCancelled

	return invoice, nil
}
