package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skladtech/inventory_backend/models"
)

func CreateSupplierHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewSupplier
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		supplier, err := models.CreateSupplier(c.Request.Context(), &input)
		if err != nil {
			respondDomainError(c, "handlers", "CreateSupplierHandler", err)
			return
		}
		c.JSON(http.StatusCreated, supplier)
	}
}

func UpdateSupplierHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		var input models.NewSupplier
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		supplier, err := models.UpdateSupplier(c.Request.Context(), id, &input)
		if err != nil {
			respondDomainError(c, "handlers", "UpdateSupplierHandler", err)
			return
		}
		c.JSON(http.StatusOK, supplier)
	}
}

func DeleteSupplierHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		supplier, err := models.DeleteSupplier(c.Request.Context(), id)
		if err != nil {
			respondDomainError(c, "handlers", "DeleteSupplierHandler", err)
			return
		}
		c.JSON(http.StatusOK, supplier)
	}
}

func GetSuppliersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Query("name")
		suppliers, err := models.GetSuppliersAll(c.Request.Context(), &name)
		if err != nil {
			respondDomainError(c, "handlers", "GetSuppliersHandler", err)
			return
		}
		c.JSON(http.StatusOK, suppliers)
	}
}
