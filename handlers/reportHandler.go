package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/skladtech/inventory_backend/models/reports"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func writeExcelResponse(c *gin.Context, filename string, headings []string, rows []reports.ExcelExporter) {
	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", "attachment; filename="+filename)
	if err := reports.WriteExcel(c.Writer, headings, rows); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to write file"})
	}
}

// StockReportHandler returns the on-hand snapshot, as JSON or as an
// xlsx attachment when format=xlsx.
func StockReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		lowStockOnly := c.Query("low_stock_only") == "true"
		report, err := reports.GetStockReport(c.Request.Context(), lowStockOnly)
		if err != nil {
			respondDomainError(c, "handlers", "StockReportHandler", err)
			return
		}
		if c.Query("format") == "xlsx" {
			writeExcelResponse(c, "stock_report.xlsx",
				reports.StockReportHeadings, reports.StockReportExporters(report.Rows))
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func MovementReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		fromDate, toDate := parseDateRange(c)
		if fromDate == nil || toDate == nil {
			now := time.Now()
			monthAgo := now.AddDate(0, -1, 0)
			fromDate, toDate = &monthAgo, &now
		}
		report, err := reports.GetMovementReport(c.Request.Context(), *fromDate, *toDate)
		if err != nil {
			respondDomainError(c, "handlers", "MovementReportHandler", err)
			return
		}
		if c.Query("format") == "xlsx" {
			writeExcelResponse(c, "movement_report.xlsx",
				reports.MovementReportHeadings, reports.MovementReportExporters(report.Rows))
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func TurnoverReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		periodDays, _ := strconv.Atoi(c.Query("period_days"))
		report, err := reports.GetTurnoverReport(c.Request.Context(), periodDays)
		if err != nil {
			respondDomainError(c, "handlers", "TurnoverReportHandler", err)
			return
		}
		if c.Query("format") == "xlsx" {
			writeExcelResponse(c, "turnover_report.xlsx",
				reports.TurnoverReportHeadings, reports.TurnoverReportExporters(report.PopularProducts))
			return
		}
		c.JSON(http.StatusOK, report)
	}
}
