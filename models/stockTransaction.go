package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/skladtech/inventory_backend/config"
	"github.com/skladtech/inventory_backend/utils"
	"gorm.io/gorm"
)

// StockTransaction is the append-only stock ledger. Entries are created
// by the reconciliation engine (one per completed invoice line) and by
// the manual movement operation below. There is deliberately no update
// or delete API for this model.
type StockTransaction struct {
	ID            int             `gorm:"primary_key" json:"id"`
	ProductId     int             `gorm:"index;not null" json:"product_id" binding:"required"`
	Type          TransactionType `gorm:"type:enum('in','out');not null" json:"type"`
	Quantity      int             `gorm:"not null" json:"quantity" binding:"required"`
	Date          time.Time       `gorm:"autoCreateTime;index" json:"date"`
	UserId        int             `gorm:"index" json:"user_id"`
	Comment       string          `gorm:"type:text" json:"comment"`
	CorrelationId string          `gorm:"size:64;index" json:"correlation_id"`
}

type NewStockTransaction struct {
	ProductId int             `json:"product_id" binding:"required"`
	Type      TransactionType `json:"type" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required"`
	Comment   string          `json:"comment"`
}

func correlationIdFromContextOrNew(ctx context.Context) string {
	if ctx != nil {
		if v, ok := utils.GetCorrelationIdFromContext(ctx); ok && v != "" {
			return v
		}
	}
	return uuid.NewString()
}

// appendStockTransaction writes one ledger entry inside the caller's
// transaction. Internal: all entry creation funnels through here.
func appendStockTransaction(ctx context.Context, tx *gorm.DB, entry *StockTransaction) error {
	entry.CorrelationId = correlationIdFromContextOrNew(ctx)
	if entry.UserId == 0 {
		if userId, ok := utils.GetUserIdFromContext(ctx); ok {
			entry.UserId = userId
		}
	}
	return tx.Create(entry).Error
}

// AppendInvoiceLedgerEntry writes one ledger entry for a completed
// invoice line inside the reconciliation engine's transaction.
func AppendInvoiceLedgerEntry(ctx context.Context, tx *gorm.DB, entry *StockTransaction) error {
	return appendStockTransaction(ctx, tx, entry)
}

// CreateStockTransaction records a direct stock movement (receiving or
// writing off outside an invoice) and adjusts the product quantity in
// the same transaction. Returns the entry and the adjusted product so
// the caller can run the post-commit duties (cache invalidation, the
// low-stock check) shared with invoice completion.
func CreateStockTransaction(ctx context.Context, input *NewStockTransaction) (*StockTransaction, *Product, error) {

	if input.Quantity <= 0 {
		return nil, nil, ErrInvalidQuantity
	}
	if err := utils.ValidateResourceId[Product](ctx, input.ProductId); err != nil {
		return nil, nil, err
	}

	delta := input.Quantity
	if input.Type == TransactionTypeOut {
		delta = -input.Quantity
	}

	entry := StockTransaction{
		ProductId: input.ProductId,
		Type:      input.Type,
		Quantity:  input.Quantity,
		Comment:   input.Comment,
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()

	product, err := AdjustProductQuantity(tx, input.ProductId, delta)
	if err != nil {
		tx.Rollback()
		return nil, nil, err
	}
	if err := appendStockTransaction(ctx, tx, &entry); err != nil {
		tx.Rollback()
		return nil, nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, nil, err
	}

	return &entry, product, nil
}

func GetStockTransactionsByProduct(ctx context.Context, productId int) ([]*StockTransaction, error) {

	db := config.GetDB()
	var results []*StockTransaction
	err := db.WithContext(ctx).
		Where("product_id = ?", productId).
		Order("date DESC, id DESC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func GetStockTransactionsAll(ctx context.Context, limit int, fromDate *time.Time, toDate *time.Time) ([]*StockTransaction, error) {

	db := config.GetDB()
	dbCtx := db.WithContext(ctx)
	if fromDate != nil && toDate != nil {
		dbCtx = dbCtx.Where("date BETWEEN ? AND ?", fromDate, toDate)
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var results []*StockTransaction
	err := dbCtx.Order("date DESC, id DESC").Limit(limit).Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
