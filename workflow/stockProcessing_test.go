package workflow

import (
	"errors"
	"testing"

	"github.com/skladtech/inventory_backend/models"
)

func TestSortedItemsOrdersByProductId(t *testing.T) {
	invoice := &models.Invoice{
		Items: []models.InvoiceItem{
			{ProductId: 9, Quantity: 1},
			{ProductId: 2, Quantity: 1},
			{ProductId: 5, Quantity: 1},
		},
	}
	items := sortedItems(invoice)
	if items[0].ProductId != 2 || items[1].ProductId != 5 || items[2].ProductId != 9 {
		t.Fatalf("items not sorted by product id: %+v", items)
	}
	// input slice untouched
	if invoice.Items[0].ProductId != 9 {
		t.Fatalf("sortedItems must not mutate the invoice")
	}
}

func TestCheckStockSufficiencyNamesFirstFailingLine(t *testing.T) {
	items := []models.InvoiceItem{
		{ProductId: 1, Quantity: 5},
		{ProductId: 2, Quantity: 50},
		{ProductId: 3, Quantity: 50},
	}
	products := map[int]*models.Product{
		1: {ID: 1, Name: "Bolt", Quantity: 10},
		2: {ID: 2, Name: "Nut", Quantity: 8},
		3: {ID: 3, Name: "Washer", Quantity: 0},
	}

	err := checkStockSufficiency(items, products)
	var insufficient *models.InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if insufficient.ProductId != 2 {
		t.Fatalf("first failing line is product 2, got %d", insufficient.ProductId)
	}
	if insufficient.Available != 8 || insufficient.Requested != 50 {
		t.Fatalf("unexpected availability payload: %+v", insufficient)
	}

	if err := checkStockSufficiency(items[:1], products); err != nil {
		t.Fatalf("sufficient line must pass, got %v", err)
	}
}

func TestLedgerCommentDereferencesNilCounterparty(t *testing.T) {
	if derefInt(nil) != 0 {
		t.Fatalf("nil pointer must deref to zero")
	}
	v := 7
	if derefInt(&v) != 7 {
		t.Fatalf("deref of 7 expected 7")
	}
}
