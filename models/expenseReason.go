package models

import (
	"context"
	"fmt"
	"time"

	"github.com/skladtech/inventory_backend/config"
	"github.com/skladtech/inventory_backend/utils"
)

// ExpenseReason is the counterparty of an expense invoice (why stock
// left the warehouse: write-off, internal use, damage and so on).
type ExpenseReason struct {
	ID          int       `gorm:"primary_key" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name" binding:"required"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewExpenseReason struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func CreateExpenseReason(ctx context.Context, input *NewExpenseReason) (*ExpenseReason, error) {

	reason := ExpenseReason{
		Name:        input.Name,
		Description: input.Description,
	}

	db := config.GetDB()
	// db action
	if err := db.WithContext(ctx).Create(&reason).Error; err != nil {
		return nil, err
	}
	return &reason, nil
}

func UpdateExpenseReason(ctx context.Context, id int, input *NewExpenseReason) (*ExpenseReason, error) {

	reason, err := utils.FetchModel[ExpenseReason](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err = db.WithContext(ctx).Model(&reason).
		Updates(map[string]interface{}{
			"Name":        input.Name,
			"Description": input.Description,
		}).Error; err != nil {
		return nil, err
	}
	return reason, nil
}

func DeleteExpenseReason(ctx context.Context, id int) (*ExpenseReason, error) {

	result, err := utils.FetchModel[ExpenseReason](ctx, id)
	if err != nil {
		return nil, err
	}

	// Do not delete if any invoice references this reason
	count, err := utils.ResourceCountWhere[Invoice](ctx, "reason_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: expense reason is used by invoices", ErrProtectedReference)
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func GetExpenseReason(ctx context.Context, id int) (*ExpenseReason, error) {
	return utils.FetchModel[ExpenseReason](ctx, id)
}

func GetExpenseReasonsAll(ctx context.Context) ([]*ExpenseReason, error) {

	db := config.GetDB()
	var results []*ExpenseReason
	if err := db.WithContext(ctx).Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
