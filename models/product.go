package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/skladtech/inventory_backend/config"
	"github.com/skladtech/inventory_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Product struct {
	ID          int             `gorm:"primary_key" json:"id"`
	Name        string          `gorm:"size:255;not null" json:"name" binding:"required"`
	Description string          `gorm:"type:text" json:"description"`
	Sku         string          `gorm:"size:100;not null;unique" json:"sku" binding:"required"`
	Unit        ProductUnit     `gorm:"type:enum('pcs','kg','g','l','m');default:'pcs'" json:"unit"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Quantity    int             `gorm:"not null;default:0" json:"quantity"`
	MinStock    int             `gorm:"not null;default:0" json:"min_stock"`
	CreatedBy   int             `gorm:"index" json:"created_by"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProduct struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Sku         string          `json:"sku" binding:"required"`
	Unit        ProductUnit     `json:"unit"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	MinStock    int             `json:"min_stock"`
}

/*
caches:
	Product:$id
	ProductList
*/

func (product Product) RemoveInstanceRedis() error {
	if err := utils.RemoveRedisItem[Product](product.ID); err != nil {
		return err
	}
	return utils.RemoveRedisList[Product]()
}

// IsLowStock reports whether on-hand quantity is at or below the
// configured minimum. Pure predicate; the low-stock notifier checks it
// after every quantity adjustment.
func (product Product) IsLowStock() bool {
	return product.MinStock > 0 && product.Quantity <= product.MinStock
}

// validate input for both create & update. (id = 0 for create)
func (input *NewProduct) validate(ctx context.Context, id int) error {
	if input.Quantity < 0 {
		return ErrInvalidQuantity
	}
	if input.Price.IsNegative() {
		return errors.New("price cannot be negative")
	}
	// sku must be unique
	if err := utils.ValidateUnique[Product](ctx, "sku", input.Sku, id); err != nil {
		return fmt.Errorf("%w: sku %q", ErrUniquenessViolation, input.Sku)
	}
	return nil
}

func CreateProduct(ctx context.Context, input *NewProduct) (*Product, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	userId, _ := utils.GetUserIdFromContext(ctx)

	unit := input.Unit
	if unit == "" {
		unit = ProductUnitPiece
	}
	product := Product{
		Name:        input.Name,
		Description: input.Description,
		Sku:         input.Sku,
		Unit:        unit,
		Price:       input.Price,
		Quantity:    input.Quantity,
		MinStock:    input.MinStock,
		CreatedBy:   userId,
	}

	db := config.GetDB()
	// db action. A concurrent create can slip past the uniqueness
	// pre-check; the constraint is authoritative.
	if err := db.WithContext(ctx).Create(&product).Error; err != nil {
		if isDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: sku %q", ErrUniquenessViolation, input.Sku)
		}
		return nil, err
	}
	if err := utils.RemoveRedisList[Product](); err != nil {
		return nil, err
	}
	return &product, nil
}

func UpdateProduct(ctx context.Context, id int, input *NewProduct) (*Product, error) {

	product, err := utils.FetchModel[Product](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	db := config.GetDB()
	// quantity is owned by the reconciliation engine and the manual
	// stock movement operation; a catalog update never touches it.
	if err = db.WithContext(ctx).Model(&product).
		Updates(map[string]interface{}{
			"Name":        input.Name,
			"Description": input.Description,
			"Sku":         input.Sku,
			"Unit":        input.Unit,
			"Price":       input.Price,
			"MinStock":    input.MinStock,
		}).Error; err != nil {
		if isDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: sku %q", ErrUniquenessViolation, input.Sku)
		}
		return nil, err
	}

	if err := product.RemoveInstanceRedis(); err != nil {
		return nil, err
	}
	return product, nil
}

func DeleteProduct(ctx context.Context, id int) (*Product, error) {

	result, err := utils.FetchModel[Product](ctx, id)
	if err != nil {
		return nil, err
	}

	// Do not delete while invoice lines or ledger entries reference the product
	count, err := utils.ResourceCountWhere[InvoiceItem](ctx, "product_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: product is used by invoice lines", ErrProtectedReference)
	}
	count, err = utils.ResourceCountWhere[StockTransaction](ctx, "product_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: product has ledger entries", ErrProtectedReference)
	}

	db := config.GetDB()
	// db action
	if err := db.WithContext(ctx).Delete(&result).Error; err != nil {
		return nil, err
	}
	if err := result.RemoveInstanceRedis(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetProduct reads from redis first, then db, caching the result.
func GetProduct(ctx context.Context, id int) (*Product, error) {

	result, err := utils.RetrieveRedis[Product](id)
	if err != nil {
		return nil, err
	}
	if result == nil {
		result, err = utils.FetchModel[Product](ctx, id)
		if err != nil {
			return nil, err
		}
		if err := utils.StoreRedis[Product](result, id); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func GetProductsAll(ctx context.Context, name *string) ([]*Product, error) {

	// the unfiltered list is the hot path; cache it
	if name == nil || *name == "" {
		results, err := utils.RetrieveRedisList[Product]()
		if err != nil {
			return nil, err
		}
		if results != nil {
			return results, nil
		}
	}

	db := config.GetDB()
	var results []*Product

	dbCtx := db.WithContext(ctx)
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("name LIKE ? OR sku LIKE ?", "%"+*name+"%", "%"+*name+"%")
	}
	if err := dbCtx.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}

	if name == nil || *name == "" {
		if err := utils.StoreRedisList[Product](results); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// AdjustProductQuantity applies delta to the product's on-hand quantity
// inside the caller's transaction, holding a row lock so concurrent
// completions touching the same product serialize. Defense-in-depth
// guard: the resulting quantity must not go below zero even though the
// reconciliation engine checks sufficiency before calling.
func AdjustProductQuantity(tx *gorm.DB, productId int, delta int) (*Product, error) {

	var product Product
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, productId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %d: %w", productId, utils.ErrorRecordNotFound)
		}
		return nil, err
	}

	newQty := product.Quantity + delta
	if newQty < 0 {
		return nil, fmt.Errorf("%w: product %q", ErrNegativeStock, product.Name)
	}

	if err := tx.Model(&product).Update("Quantity", newQty).Error; err != nil {
		return nil, err
	}
	product.Quantity = newQty

	if err := product.RemoveInstanceRedis(); err != nil {
		return nil, err
	}
	return &product, nil
}
