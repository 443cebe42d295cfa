package models

import (
	"context"
	"fmt"
	"time"

	"github.com/skladtech/inventory_backend/config"
	"github.com/skladtech/inventory_backend/utils"
)

// Supplier is the counterparty of a purchase invoice.
type Supplier struct {
	ID          int       `gorm:"primary_key" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name" binding:"required"`
	Description string    `gorm:"type:text" json:"description"`
	Phone       string    `gorm:"size:20" json:"phone"`
	Email       string    `gorm:"size:100" json:"email"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewSupplier struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
}

func CreateSupplier(ctx context.Context, input *NewSupplier) (*Supplier, error) {

	supplier := Supplier{
		Name:        input.Name,
		Description: input.Description,
		Phone:       input.Phone,
		Email:       input.Email,
	}

	db := config.GetDB()
	// db action
	if err := db.WithContext(ctx).Create(&supplier).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

func UpdateSupplier(ctx context.Context, id int, input *NewSupplier) (*Supplier, error) {

	supplier, err := utils.FetchModel[Supplier](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err = db.WithContext(ctx).Model(&supplier).
		Updates(map[string]interface{}{
			"Name":        input.Name,
			"Description": input.Description,
			"Phone":       input.Phone,
			"Email":       input.Email,
		}).Error; err != nil {
		return nil, err
	}
	return supplier, nil
}

func DeleteSupplier(ctx context.Context, id int) (*Supplier, error) {

	result, err := utils.FetchModel[Supplier](ctx, id)
	if err != nil {
		return nil, err
	}

	// Do not delete if any invoice references this supplier
	count, err := utils.ResourceCountWhere[Invoice](ctx, "supplier_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: supplier is used by invoices", ErrProtectedReference)
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func GetSupplier(ctx context.Context, id int) (*Supplier, error) {
	return utils.FetchModel[Supplier](ctx, id)
}

func GetSuppliersAll(ctx context.Context, name *string) ([]*Supplier, error) {

	db := config.GetDB()
	var results []*Supplier

	dbCtx := db.WithContext(ctx)
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	if err := dbCtx.Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
