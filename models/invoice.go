package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/skladtech/inventory_backend/config"
	"github.com/skladtech/inventory_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Invoice is the aggregate root for both incoming (purchase) and
// outgoing (expense) stock documents. Header and lines are freely
// editable while status is draft; completion and cancellation are
// one-way terminal transitions driven by the workflow package.
type Invoice struct {
	ID            int             `gorm:"primary_key" json:"id"`
	InvoiceNumber string          `gorm:"size:50;not null;unique" json:"invoice_number"`
	Kind          InvoiceKind     `gorm:"type:enum('purchase','expense');not null" json:"kind"`
	InvoiceDate   time.Time       `gorm:"not null;index" json:"invoice_date"`
	SupplierId    *int            `gorm:"index" json:"supplier_id"`
	ReasonId      *int            `gorm:"index" json:"reason_id"`
	Status        InvoiceStatus   `gorm:"type:enum('draft','completed','cancelled');default:'draft'" json:"status"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"total_amount"`
	Comment       string          `gorm:"type:text" json:"comment"`
	CreatedBy     int             `gorm:"index" json:"created_by"`
	Items         []InvoiceItem   `gorm:"foreignKey:InvoiceId;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// InvoiceItem belongs to exactly one invoice; a product may appear on
// an invoice at most once. UnitPrice is a snapshot taken when the line
// is created (catalog price for expense, supplied price for purchase).
type InvoiceItem struct {
	ID         int             `gorm:"primary_key" json:"id"`
	InvoiceId  int             `gorm:"not null;uniqueIndex:idx_invoice_product,priority:1" json:"invoice_id"`
	ProductId  int             `gorm:"not null;uniqueIndex:idx_invoice_product,priority:2" json:"product_id"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_price"`
}

type NewInvoice struct {
	InvoiceNumber string           `json:"invoice_number"`
	Kind          InvoiceKind      `json:"kind" binding:"required"`
	InvoiceDate   time.Time        `json:"invoice_date" binding:"required"`
	SupplierId    *int             `json:"supplier_id"`
	ReasonId      *int             `json:"reason_id"`
	Comment       string           `json:"comment"`
	Items         []NewInvoiceItem `json:"items"`
}

type NewInvoiceItem struct {
	ProductId int             `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type InvoiceHeaderUpdate struct {
	InvoiceNumber string    `json:"invoice_number" binding:"required"`
	InvoiceDate   time.Time `json:"invoice_date" binding:"required"`
	SupplierId    *int      `json:"supplier_id"`
	ReasonId      *int      `json:"reason_id"`
	Comment       string    `json:"comment"`
}

const invoiceNumberPadding = 6

var invoiceNumberPrefixes = map[InvoiceKind]string{
	InvoiceKindPurchase: "PUR-",
	InvoiceKindExpense:  "EXP-",
}

// computeTotalAmount sums line subtotals. Deterministic and idempotent;
// the invariant total == sum(quantity x unit price) holds after every
// line mutation.
func computeTotalAmount(items []InvoiceItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.TotalPrice)
	}
	return total
}

// lineSubtotal is quantity x unit price.
func lineSubtotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// formatInvoiceNumber renders the advisory next number: prefix plus the
// zero-padded successor of the last id.
func formatInvoiceNumber(kind InvoiceKind, lastId int) string {
	return fmt.Sprintf("%s%0*d", invoiceNumberPrefixes[kind], invoiceNumberPadding, lastId+1)
}

// NextInvoiceNumber suggests a display default for new invoices. It is
// advisory only: the unique constraint on invoice_number decides the
// race between two drafts asking at the same time, and the second
// writer gets ErrUniquenessViolation.
func NextInvoiceNumber(ctx context.Context, kind InvoiceKind) (string, error) {
	db := config.GetDB()
	var lastId *int
	if err := db.WithContext(ctx).Model(&Invoice{}).
		Select("max(id)").Scan(&lastId).Error; err != nil {
		return "", err
	}
	if lastId == nil {
		return formatInvoiceNumber(kind, 0), nil
	}
	return formatInvoiceNumber(kind, *lastId), nil
}

func isDuplicateKeyError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// validate input for both create & update. (id = 0 for create)
func (input *NewInvoice) validate(ctx context.Context, id int) error {
	switch input.Kind {
	case InvoiceKindPurchase:
		if input.SupplierId == nil || *input.SupplierId <= 0 {
			return errors.New("supplier is required for a purchase invoice")
		}
		if err := utils.ValidateResourceId[Supplier](ctx, *input.SupplierId); err != nil {
			return fmt.Errorf("supplier %d: %w", *input.SupplierId, err)
		}
	case InvoiceKindExpense:
		if input.ReasonId == nil || *input.ReasonId <= 0 {
			return errors.New("expense reason is required for an expense invoice")
		}
		if err := utils.ValidateResourceId[ExpenseReason](ctx, *input.ReasonId); err != nil {
			return fmt.Errorf("expense reason %d: %w", *input.ReasonId, err)
		}
	default:
		return errors.New("invalid invoice kind")
	}

	if input.InvoiceNumber != "" {
		if err := utils.ValidateUnique[Invoice](ctx, "invoice_number", input.InvoiceNumber, id); err != nil {
			return fmt.Errorf("%w: invoice number %q", ErrUniquenessViolation, input.InvoiceNumber)
		}
	}

	seen := make(map[int]bool)
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return ErrInvalidQuantity
		}
		if seen[item.ProductId] {
			return ErrDuplicateLine
		}
		seen[item.ProductId] = true
	}
	return nil
}

// snapshotUnitPrice resolves the price stored on a new line: current
// catalog price for outgoing invoices, caller-supplied purchase price
// for incoming ones.
func snapshotUnitPrice(kind InvoiceKind, input NewInvoiceItem, product *Product) (decimal.Decimal, error) {
	if kind == InvoiceKindExpense {
		return product.Price, nil
	}
	if input.UnitPrice.IsNegative() {
		return decimal.Zero, errors.New("purchase unit price cannot be negative")
	}
	if input.UnitPrice.IsZero() {
		return product.Price, nil
	}
	return input.UnitPrice, nil
}

func mapNewInvoiceItems(ctx context.Context, kind InvoiceKind, inputs []NewInvoiceItem) ([]InvoiceItem, error) {
	items := make([]InvoiceItem, 0, len(inputs))
	for _, input := range inputs {
		product, err := GetProduct(ctx, input.ProductId)
		if err != nil {
			return nil, fmt.Errorf("product %d: %w", input.ProductId, err)
		}
		unitPrice, err := snapshotUnitPrice(kind, input, product)
		if err != nil {
			return nil, err
		}
		items = append(items, InvoiceItem{
			ProductId:  input.ProductId,
			Quantity:   input.Quantity,
			UnitPrice:  unitPrice,
			TotalPrice: lineSubtotal(input.Quantity, unitPrice),
		})
	}
	return items, nil
}

func CreateInvoice(ctx context.Context, input *NewInvoice) (*Invoice, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	number := input.InvoiceNumber
	if number == "" {
		var err error
		number, err = NextInvoiceNumber(ctx, input.Kind)
		if err != nil {
			return nil, err
		}
	}

	items, err := mapNewInvoiceItems(ctx, input.Kind, input.Items)
	if err != nil {
		return nil, err
	}

	userId, _ := utils.GetUserIdFromContext(ctx)
	invoice := Invoice{
		InvoiceNumber: number,
		Kind:          input.Kind,
		InvoiceDate:   input.InvoiceDate,
		SupplierId:    input.SupplierId,
		ReasonId:      input.ReasonId,
		Status:        InvoiceStatusDraft,
		TotalAmount:   computeTotalAmount(items),
		Comment:       input.Comment,
		CreatedBy:     userId,
		Items:         items,
	}

	db := config.GetDB()
	// db action
	if err := db.WithContext(ctx).Create(&invoice).Error; err != nil {
		if isDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: invoice number %q", ErrUniquenessViolation, number)
		}
		return nil, err
	}
	return &invoice, nil
}

// fetchDraftInvoice loads the invoice row under a FOR UPDATE lock and
// rejects any mutation of a non-draft invoice.
func fetchDraftInvoice(tx *gorm.DB, id int) (*Invoice, error) {
	var invoice Invoice
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&invoice, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	if invoice.Status != InvoiceStatusDraft {
		return nil, ErrInvalidState
	}
	return &invoice, nil
}

// recomputeInvoiceTotal rewrites the header total from the persisted
// line set inside the caller's transaction. No cached value survives a
// line mutation.
func recomputeInvoiceTotal(tx *gorm.DB, invoiceId int) error {
	var items []InvoiceItem
	if err := tx.Where("invoice_id = ?", invoiceId).Find(&items).Error; err != nil {
		return err
	}
	return tx.Model(&Invoice{ID: invoiceId}).
		Update("TotalAmount", computeTotalAmount(items)).Error
}

func UpdateInvoice(ctx context.Context, id int, input *InvoiceHeaderUpdate) (*Invoice, error) {

	invoice, err := utils.FetchModel[Invoice](ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice.Status != InvoiceStatusDraft {
		return nil, ErrInvalidState
	}

	if input.InvoiceNumber != invoice.InvoiceNumber {
		if err := utils.ValidateUnique[Invoice](ctx, "invoice_number", input.InvoiceNumber, id); err != nil {
			return nil, fmt.Errorf("%w: invoice number %q", ErrUniquenessViolation, input.InvoiceNumber)
		}
	}
	switch invoice.Kind {
	case InvoiceKindPurchase:
		if input.SupplierId != nil {
			if err := utils.ValidateResourceId[Supplier](ctx, *input.SupplierId); err != nil {
				return nil, fmt.Errorf("supplier %d: %w", *input.SupplierId, err)
			}
		}
	case InvoiceKindExpense:
		if input.ReasonId != nil {
			if err := utils.ValidateResourceId[ExpenseReason](ctx, *input.ReasonId); err != nil {
				return nil, fmt.Errorf("expense reason %d: %w", *input.ReasonId, err)
			}
		}
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()

	locked, err := fetchDraftInvoice(tx, id)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	updates := map[string]interface{}{
		"InvoiceNumber": input.InvoiceNumber,
		"InvoiceDate":   input.InvoiceDate,
		"Comment":       input.Comment,
	}
	if invoice.Kind == InvoiceKindPurchase && input.SupplierId != nil {
		updates["SupplierId"] = input.SupplierId
	}
	if invoice.Kind == InvoiceKindExpense && input.ReasonId != nil {
		updates["ReasonId"] = input.ReasonId
	}
	if err := tx.Model(locked).Updates(updates).Error; err != nil {
		tx.Rollback()
		if isDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: invoice number %q", ErrUniquenessViolation, input.InvoiceNumber)
		}
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return GetInvoice(ctx, id)
}

// AddInvoiceItem appends a line to a draft invoice, snapshots the unit
// price and recomputes the header total in one transaction.
func AddInvoiceItem(ctx context.Context, invoiceId int, input *NewInvoiceItem) (*InvoiceItem, error) {

	if input.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	product, err := GetProduct(ctx, input.ProductId)
	if err != nil {
		return nil, fmt.Errorf("product %d: %w", input.ProductId, err)
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()

	invoice, err := fetchDraftInvoice(tx, invoiceId)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	var count int64
	if err := tx.Model(&InvoiceItem{}).
		Where("invoice_id = ? AND product_id = ?", invoiceId, input.ProductId).
		Count(&count).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if count > 0 {
		tx.Rollback()
		return nil, ErrDuplicateLine
	}

	unitPrice, err := snapshotUnitPrice(invoice.Kind, *input, product)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	item := InvoiceItem{
		InvoiceId:  invoiceId,
		ProductId:  input.ProductId,
		Quantity:   input.Quantity,
		UnitPrice:  unitPrice,
		TotalPrice: lineSubtotal(input.Quantity, unitPrice),
	}
	if err := tx.Create(&item).Error; err != nil {
		tx.Rollback()
		if isDuplicateKeyError(err) {
			return nil, ErrDuplicateLine
		}
		return nil, err
	}
	if err := recomputeInvoiceTotal(tx, invoiceId); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return &item, nil
}

// RemoveInvoiceItem deletes a line from a draft invoice and recomputes
// the header total in one transaction.
func RemoveInvoiceItem(ctx context.Context, invoiceId int, itemId int) (*InvoiceItem, error) {

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()

	if _, err := fetchDraftInvoice(tx, invoiceId); err != nil {
		tx.Rollback()
		return nil, err
	}

	var item InvoiceItem
	if err := tx.Where("invoice_id = ?", invoiceId).First(&item, itemId).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	if err := tx.Delete(&item).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := recomputeInvoiceTotal(tx, invoiceId); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return &item, nil
}

// DeleteInvoice removes a draft invoice together with its lines.
func DeleteInvoice(ctx context.Context, id int) (*Invoice, error) {

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()

	invoice, err := fetchDraftInvoice(tx, id)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	// lines go with the invoice (cascade)
	if err := tx.Select("Items").Delete(&invoice).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return invoice, nil
}

func GetInvoice(ctx context.Context, id int) (*Invoice, error) {
	return utils.FetchModel[Invoice](ctx, id, "Items")
}

func GetInvoicesAll(ctx context.Context, kind *InvoiceKind, status *InvoiceStatus, fromDate *time.Time, toDate *time.Time) ([]*Invoice, error) {

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Preload("Items")
	if kind != nil && *kind != "" {
		dbCtx = dbCtx.Where("kind = ?", *kind)
	}
	if status != nil && *status != "" {
		dbCtx = dbCtx.Where("status = ?", *status)
	}
	if fromDate != nil && toDate != nil {
		dbCtx = dbCtx.Where("invoice_date BETWEEN ? AND ?", fromDate, toDate)
	}
	var results []*Invoice
	err := dbCtx.Order("invoice_date DESC, created_at DESC").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
