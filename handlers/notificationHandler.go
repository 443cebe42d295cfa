package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skladtech/inventory_backend/models"
	"github.com/skladtech/inventory_backend/utils"
)

func GetNotificationsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, _ := utils.GetUserIdFromContext(c.Request.Context())
		unreadOnly := c.Query("unread") == "true"
		notifications, err := models.GetNotificationsByUser(c.Request.Context(), userId, unreadOnly)
		if err != nil {
			respondDomainError(c, "handlers", "GetNotificationsHandler", err)
			return
		}
		c.JSON(http.StatusOK, notifications)
	}
}

func GetUnreadNotificationCountHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, _ := utils.GetUserIdFromContext(c.Request.Context())
		count, err := models.CountUnreadNotifications(c.Request.Context(), userId)
		if err != nil {
			respondDomainError(c, "handlers", "GetUnreadNotificationCountHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"unread_count": count})
	}
}

func MarkNotificationReadHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		userId, _ := utils.GetUserIdFromContext(c.Request.Context())
		notification, err := models.MarkNotificationRead(c.Request.Context(), userId, id)
		if err != nil {
			respondDomainError(c, "handlers", "MarkNotificationReadHandler", err)
			return
		}
		c.JSON(http.StatusOK, notification)
	}
}

func MarkAllNotificationsReadHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, _ := utils.GetUserIdFromContext(c.Request.Context())
		if err := models.MarkAllNotificationsRead(c.Request.Context(), userId); err != nil {
			respondDomainError(c, "handlers", "MarkAllNotificationsReadHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
