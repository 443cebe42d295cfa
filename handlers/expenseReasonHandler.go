package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skladtech/inventory_backend/models"
)

func CreateExpenseReasonHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewExpenseReason
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		reason, err := models.CreateExpenseReason(c.Request.Context(), &input)
		if err != nil {
			respondDomainError(c, "handlers", "CreateExpenseReasonHandler", err)
			return
		}
		c.JSON(http.StatusCreated, reason)
	}
}

func UpdateExpenseReasonHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		var input models.NewExpenseReason
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		reason, err := models.UpdateExpenseReason(c.Request.Context(), id, &input)
		if err != nil {
			respondDomainError(c, "handlers", "UpdateExpenseReasonHandler", err)
			return
		}
		c.JSON(http.StatusOK, reason)
	}
}

func DeleteExpenseReasonHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		reason, err := models.DeleteExpenseReason(c.Request.Context(), id)
		if err != nil {
			respondDomainError(c, "handlers", "DeleteExpenseReasonHandler", err)
			return
		}
		c.JSON(http.StatusOK, reason)
	}
}

func GetExpenseReasonsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		reasons, err := models.GetExpenseReasonsAll(c.Request.Context())
		if err != nil {
			respondDomainError(c, "handlers", "GetExpenseReasonsHandler", err)
			return
		}
		c.JSON(http.StatusOK, reasons)
	}
}
