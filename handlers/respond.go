package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/skladtech/inventory_backend/config"
	"github.com/skladtech/inventory_backend/models"
	"github.com/skladtech/inventory_backend/utils"
)

// respondDomainError maps domain errors onto HTTP statuses. Validation
// problems come back as 400, state conflicts as 409, unknown errors are
// logged and returned as 500.
func respondDomainError(c *gin.Context, module string, funcName string, err error) {

	var insufficient *models.InsufficientStockError
	if errors.As(err, &insufficient) {
		c.JSON(http.StatusConflict, gin.H{
			"error":        insufficient.Error(),
			"product_id":   insufficient.ProductId,
			"product_name": insufficient.ProductName,
			"available":    insufficient.Available,
			"requested":    insufficient.Requested,
		})
		return
	}

	switch {
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
	case errors.Is(err, models.ErrInvalidQuantity),
		errors.Is(err, models.ErrDuplicateLine):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInvalidState),
		errors.Is(err, models.ErrNegativeStock),
		errors.Is(err, models.ErrUniquenessViolation),
		errors.Is(err, models.ErrProtectedReference):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		config.LogError(config.GetLogger(), module, funcName, "", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// respondBindError reports a malformed or invalid request body. Field
// level validation failures are itemized.
func respondBindError(c *gin.Context, err error) {
	if fields := utils.ProcessValidationErrors(err); fields != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": fields})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func pathId(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}
