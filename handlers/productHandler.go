package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skladtech/inventory_backend/models"
)

func CreateProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewProduct
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		product, err := models.CreateProduct(c.Request.Context(), &input)
		if err != nil {
			respondDomainError(c, "handlers", "CreateProductHandler", err)
			return
		}
		c.JSON(http.StatusCreated, product)
	}
}

func UpdateProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		var input models.NewProduct
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		product, err := models.UpdateProduct(c.Request.Context(), id, &input)
		if err != nil {
			respondDomainError(c, "handlers", "UpdateProductHandler", err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func DeleteProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		product, err := models.DeleteProduct(c.Request.Context(), id)
		if err != nil {
			respondDomainError(c, "handlers", "DeleteProductHandler", err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func GetProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		product, err := models.GetProduct(c.Request.Context(), id)
		if err != nil {
			respondDomainError(c, "handlers", "GetProductHandler", err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func GetProductsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Query("name")
		products, err := models.GetProductsAll(c.Request.Context(), &name)
		if err != nil {
			respondDomainError(c, "handlers", "GetProductsHandler", err)
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

// GetProductTransactionsHandler lists the ledger entries of one product,
// newest first.
func GetProductTransactionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		transactions, err := models.GetStockTransactionsByProduct(c.Request.Context(), id)
		if err != nil {
			respondDomainError(c, "handlers", "GetProductTransactionsHandler", err)
			return
		}
		c.JSON(http.StatusOK, transactions)
	}
}
