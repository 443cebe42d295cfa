package workflow

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/skladtech/inventory_backend/models"
	"github.com/skladtech/inventory_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sortedItems returns the invoice lines ordered by product id so that
// concurrent completions touching the same products always acquire row
// locks in the same order.
func sortedItems(invoice *models.Invoice) []models.InvoiceItem {
	items := make([]models.InvoiceItem, len(invoice.Items))
	copy(items, invoice.Items)
	sort.Slice(items, func(i, j int) bool {
		return items[i].ProductId < items[j].ProductId
	})
	return items
}

// lockProducts takes FOR UPDATE locks on every referenced product row
// and returns them keyed by id.
func lockProducts(tx *gorm.DB, items []models.InvoiceItem) (map[int]*models.Product, error) {
	products := make(map[int]*models.Product, len(items))
	for _, item := range items {
		var product models.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&product, item.ProductId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("product %d: %w", item.ProductId, utils.ErrorRecordNotFound)
			}
			return nil, err
		}
		products[item.ProductId] = &product
	}
	return products, nil
}

// checkStockSufficiency verifies every line of an outgoing invoice
// against locked on-hand quantities. The first failing line aborts the
// whole completion; nothing has been mutated at this point.
func checkStockSufficiency(items []models.InvoiceItem, products map[int]*models.Product) error {
	for _, item := range items {
		product := products[item.ProductId]
		if product.Quantity < item.Quantity {
			return &models.InsufficientStockError{
				ProductId:   product.ID,
				ProductName: product.Name,
				Available:   product.Quantity,
				Requested:   item.Quantity,
			}
		}
	}
	return nil
}

// applyInvoiceStock mutates product quantities and appends one ledger
// entry per line, all inside the caller's transaction. For outgoing
// invoices the sufficiency of every line is verified up front, so a
// failure here means no partial state escapes: the transaction rolls
// back as a whole. Returns the adjusted products for the post-commit
// low-stock check.
func applyInvoiceStock(ctx context.Context, tx *gorm.DB, invoice *models.Invoice, comment string) ([]*models.Product, error) {

	items := sortedItems(invoice)

	products, err := lockProducts(tx, items)
	if err != nil {
		return nil, err
	}

	direction := models.TransactionTypeIn
	if invoice.Kind == models.InvoiceKindExpense {
		direction = models.TransactionTypeOut
		if err := checkStockSufficiency(items, products); err != nil {
			return nil, err
		}
	}

	adjusted := make([]*models.Product, 0, len(items))
	for _, item := range items {
		delta := item.Quantity
		if direction == models.TransactionTypeOut {
			delta = -item.Quantity
		}

		product, err := models.AdjustProductQuantity(tx, item.ProductId, delta)
		if err != nil {
			return nil, err
		}
		adjusted = append(adjusted, product)

		if err := models.AppendInvoiceLedgerEntry(ctx, tx, &models.StockTransaction{
			ProductId: item.ProductId,
			Type:      direction,
			Quantity:  item.Quantity,
			Comment:   comment,
		}); err != nil {
			return nil, err
		}
	}
	return adjusted, nil
}
