package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/skladtech/inventory_backend/models"
	"github.com/skladtech/inventory_backend/workflow"
)

func CreateStockTransactionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewStockTransaction
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		entry, err := workflow.RecordStockMovement(c.Request.Context(), &input)
		if err != nil {
			respondDomainError(c, "handlers", "CreateStockTransactionHandler", err)
			return
		}
		c.JSON(http.StatusCreated, entry)
	}
}

func GetStockTransactionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.Query("limit"))
		fromDate, toDate := parseDateRange(c)
		transactions, err := models.GetStockTransactionsAll(c.Request.Context(), limit, fromDate, toDate)
		if err != nil {
			respondDomainError(c, "handlers", "GetStockTransactionsHandler", err)
			return
		}
		c.JSON(http.StatusOK, transactions)
	}
}

// parseDateRange reads from/to query params as YYYY-MM-DD. The "to" day
// is inclusive.
func parseDateRange(c *gin.Context) (*time.Time, *time.Time) {
	from, errFrom := time.Parse("2006-01-02", c.Query("from"))
	to, errTo := time.Parse("2006-01-02", c.Query("to"))
	if errFrom != nil || errTo != nil {
		return nil, nil
	}
	to = to.AddDate(0, 0, 1).Add(-time.Second)
	return &from, &to
}
