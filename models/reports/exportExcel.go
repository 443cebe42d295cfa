package reports

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

type ExcelExporter interface {
	GetCellValues() []interface{}
}

// WriteExcel streams a single-sheet workbook: one heading row, then one
// row per record. Column count follows the headings.
func WriteExcel(w io.Writer, headings []string, rows []ExcelExporter) error {

	f := excelize.NewFile()
	sheetName := "Sheet1"
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	col := 'A'
	for _, h := range headings {
		f.SetCellValue(sheetName, string(col)+"1", h)
		col++
	}

	rowNo := 2
	for _, d := range rows {
		col := 'A'
		for _, value := range d.GetCellValues() {
			f.SetCellValue(sheetName, string(col)+fmt.Sprint(rowNo), value)
			col++
		}
		rowNo++
	}

	return f.Write(w)
}

func StockReportExporters(rows []*StockReportRow) []ExcelExporter {
	out := make([]ExcelExporter, len(rows))
	for i, r := range rows {
		out[i] = *r
	}
	return out
}

func MovementReportExporters(rows []*MovementReportRow) []ExcelExporter {
	out := make([]ExcelExporter, len(rows))
	for i, r := range rows {
		out[i] = *r
	}
	return out
}

func TurnoverReportExporters(rows []*TurnoverReportRow) []ExcelExporter {
	out := make([]ExcelExporter, len(rows))
	for i, r := range rows {
		out[i] = *r
	}
	return out
}

var StockReportHeadings = []string{"Name", "SKU", "Unit", "Price", "Quantity", "MinStock", "StockValue"}
var MovementReportHeadings = []string{"Name", "SKU", "Incoming", "Outgoing", "Transactions"}
var TurnoverReportHeadings = []string{"Name", "SKU", "OutgoingQuantity", "OutgoingCount"}
