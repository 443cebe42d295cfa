package models

import (
	"context"
	"fmt"
	"time"

	"github.com/skladtech/inventory_backend/config"
	"github.com/skladtech/inventory_backend/utils"
)

type Notification struct {
	ID                int              `gorm:"primary_key" json:"id"`
	UserId            int              `gorm:"index;not null" json:"user_id"`
	Title             string           `gorm:"size:255;not null" json:"title"`
	Message           string           `gorm:"type:text;not null" json:"message"`
	Type              NotificationType `gorm:"type:enum('low_stock','system','alert');default:'system'" json:"type"`
	IsRead            bool             `gorm:"not null;default:false" json:"is_read"`
	RelatedObjectId   *int             `json:"related_object_id"`
	RelatedObjectType string           `gorm:"size:100" json:"related_object_type"`
	CreatedAt         time.Time        `gorm:"autoCreateTime;index" json:"created_at"`
}

// CreateLowStockNotifications fans a low-stock alert for the product
// out to every active admin and manager.
func CreateLowStockNotifications(ctx context.Context, product *Product) error {

	users, err := usersWithStockAccess(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return nil
	}

	productId := product.ID
	notifications := make([]Notification, 0, len(users))
	for _, user := range users {
		notifications = append(notifications, Notification{
			UserId: user.ID,
			Title:  "Low stock",
			Message: fmt.Sprintf("Product %q (sku: %s) has reached its minimum stock level. On hand: %d",
				product.Name, product.Sku, product.Quantity),
			Type:              NotificationTypeLowStock,
			RelatedObjectId:   &productId,
			RelatedObjectType: "product",
		})
	}

	db := config.GetDB()
	return db.WithContext(ctx).Create(&notifications).Error
}

func GetNotificationsByUser(ctx context.Context, userId int, unreadOnly bool) ([]*Notification, error) {

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("user_id = ?", userId)
	if unreadOnly {
		dbCtx = dbCtx.Where("is_read = ?", false)
	}
	var results []*Notification
	if err := dbCtx.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func CountUnreadNotifications(ctx context.Context, userId int) (int64, error) {
	return utils.ResourceCountWhere[Notification](ctx, "user_id = ? AND is_read = ?", userId, false)
}

func MarkNotificationRead(ctx context.Context, userId int, id int) (*Notification, error) {

	db := config.GetDB()
	var notification Notification
	if err := db.WithContext(ctx).
		Where("user_id = ?", userId).First(&notification, id).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	if err := db.WithContext(ctx).Model(&notification).Update("IsRead", true).Error; err != nil {
		return nil, err
	}
	notification.IsRead = true
	return &notification, nil
}

func MarkAllNotificationsRead(ctx context.Context, userId int) error {

	db := config.GetDB()
	return db.WithContext(ctx).Model(&Notification{}).
		Where("user_id = ? AND is_read = ?", userId, false).
		Update("IsRead", true).Error
}
