package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skladtech/inventory_backend/models"
	"github.com/skladtech/inventory_backend/workflow"
)

func CreateInvoiceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewInvoice
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		invoice, err := models.CreateInvoice(c.Request.Context(), &input)
		if err != nil {
			respondDomainError(c, "handlers", "CreateInvoiceHandler", err)
			return
		}
		c.JSON(http.StatusCreated, invoice)
	}
}

func UpdateInvoiceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		var input models.InvoiceHeaderUpdate
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		invoice, err := models.UpdateInvoice(c.Request.Context(), id, &input)
		if err != nil {
			respondDomainError(c, "handlers", "UpdateInvoiceHandler", err)
			return
		}
		c.JSON(http.StatusOK, invoice)
	}
}

func DeleteInvoiceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		invoice, err := models.DeleteInvoice(c.Request.Context(), id)
		if err != nil {
			respondDomainError(c, "handlers", "DeleteInvoiceHandler", err)
			return
		}
		c.JSON(http.StatusOK, invoice)
	}
}

func GetInvoiceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		invoice, err := models.GetInvoice(c.Request.Context(), id)
		if err != nil {
			respondDomainError(c, "handlers", "GetInvoiceHandler", err)
			return
		}
		c.JSON(http.StatusOK, invoice)
	}
}

func GetInvoicesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		kind := models.InvoiceKind(c.Query("kind"))
		status := models.InvoiceStatus(c.Query("status"))
		fromDate, toDate := parseDateRange(c)
		invoices, err := models.GetInvoicesAll(c.Request.Context(), &kind, &status, fromDate, toDate)
		if err != nil {
			respondDomainError(c, "handlers", "GetInvoicesHandler", err)
			return
		}
		c.JSON(http.StatusOK, invoices)
	}
}

// NextInvoiceNumberHandler suggests a default number for the create
// form. Advisory only; the unique constraint still decides.
func NextInvoiceNumberHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		kind := models.InvoiceKind(c.Query("kind"))
		if kind != models.InvoiceKindPurchase && kind != models.InvoiceKindExpense {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice kind"})
			return
		}
		number, err := models.NextInvoiceNumber(c.Request.Context(), kind)
		if err != nil {
			respondDomainError(c, "handlers", "NextInvoiceNumberHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"invoice_number": number})
	}
}

func AddInvoiceItemHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		var input models.NewInvoiceItem
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		item, err := models.AddInvoiceItem(c.Request.Context(), id, &input)
		if err != nil {
			respondDomainError(c, "handlers", "AddInvoiceItemHandler", err)
			return
		}
		c.JSON(http.StatusCreated, item)
	}
}

func RemoveInvoiceItemHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		itemId, ok := pathId(c, "itemId")
		if !ok {
			return
		}
		item, err := models.RemoveInvoiceItem(c.Request.Context(), id, itemId)
		if err != nil {
			respondDomainError(c, "handlers", "RemoveInvoiceItemHandler", err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// CompleteInvoiceHandler applies the invoice to stock and seals it.
func CompleteInvoiceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		invoice, err := workflow.CompleteInvoice(c.Request.Context(), id)
		if err != nil {
			respondDomainError(c, "handlers", "CompleteInvoiceHandler", err)
			return
		}
		c.JSON(http.StatusOK, invoice)
	}
}

func CancelInvoiceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		invoice, err := workflow.CancelInvoice(c.Request.Context(), id)
		if err != nil {
			respondDomainError(c, "handlers", "CancelInvoiceHandler", err)
			return
		}
		c.JSON(http.StatusOK, invoice)
	}
}
