package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func TestDuplicateKeyErrorDetection(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		expected bool
	}{
		{"mysql duplicate entry", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, true},
		{"mysql foreign key", &mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"}, false},
		{"gorm duplicated key", gorm.ErrDuplicatedKey, true},
		{"unrelated error", errors.New("connection reset"), false},
	}
	for _, tc := range cases {
		if got := isDuplicateKeyError(tc.err); got != tc.expected {
			t.Fatalf("%s: isDuplicateKeyError expected %v, got %v", tc.name, tc.expected, got)
		}
	}
}

func TestFormatInvoiceNumber(t *testing.T) {
	cases := []struct {
		kind     InvoiceKind
		lastId   int
		expected string
	}{
		{InvoiceKindPurchase, 0, "PUR-000001"},
		{InvoiceKindExpense, 0, "EXP-000001"},
		{InvoiceKindPurchase, 41, "PUR-000042"},
		{InvoiceKindExpense, 999999, "EXP-1000000"},
	}
	for _, tc := range cases {
		got := formatInvoiceNumber(tc.kind, tc.lastId)
		if got != tc.expected {
			t.Fatalf("formatInvoiceNumber(%s, %d) expected %s, got %s", tc.kind, tc.lastId, tc.expected, got)
		}
	}
}

func TestLineSubtotal(t *testing.T) {
	got := lineSubtotal(3, decimal.RequireFromString("19.99"))
	if got.String() != "59.97" {
		t.Fatalf("lineSubtotal(3, 19.99) expected 59.97, got %s", got.String())
	}
}

func TestComputeTotalAmount(t *testing.T) {
	items := []InvoiceItem{
		{Quantity: 2, UnitPrice: decimal.RequireFromString("10.50"), TotalPrice: decimal.RequireFromString("21.00")},
		{Quantity: 1, UnitPrice: decimal.RequireFromString("0.99"), TotalPrice: decimal.RequireFromString("0.99")},
	}
	got := computeTotalAmount(items)
	if got.String() != "21.99" {
		t.Fatalf("computeTotalAmount expected 21.99, got %s", got.String())
	}

	if !computeTotalAmount(nil).IsZero() {
		t.Fatalf("computeTotalAmount of no lines must be zero")
	}
}

func TestSnapshotUnitPrice(t *testing.T) {
	product := &Product{Price: decimal.RequireFromString("12.00")}

	// expense lines always snapshot the catalog price
	got, err := snapshotUnitPrice(InvoiceKindExpense, NewInvoiceItem{UnitPrice: decimal.RequireFromString("99.00")}, product)
	if err != nil {
		t.Fatalf("snapshotUnitPrice expense: %v", err)
	}
	if got.String() != "12" {
		t.Fatalf("expense unit price expected catalog 12, got %s", got.String())
	}

	// purchase lines use the supplied price
	got, err = snapshotUnitPrice(InvoiceKindPurchase, NewInvoiceItem{UnitPrice: decimal.RequireFromString("7.50")}, product)
	if err != nil {
		t.Fatalf("snapshotUnitPrice purchase: %v", err)
	}
	if got.String() != "7.5" {
		t.Fatalf("purchase unit price expected 7.5, got %s", got.String())
	}

	// zero falls back to the catalog price
	got, err = snapshotUnitPrice(InvoiceKindPurchase, NewInvoiceItem{}, product)
	if err != nil {
		t.Fatalf("snapshotUnitPrice purchase fallback: %v", err)
	}
	if got.String() != "12" {
		t.Fatalf("purchase fallback expected catalog 12, got %s", got.String())
	}

	// negative is rejected
	if _, err = snapshotUnitPrice(InvoiceKindPurchase, NewInvoiceItem{UnitPrice: decimal.RequireFromString("-1")}, product); err == nil {
		t.Fatalf("negative purchase price must be rejected")
	}
}

func TestProductIsLowStock(t *testing.T) {
	cases := []struct {
		quantity int
		minStock int
		expected bool
	}{
		{10, 5, false},
		{5, 5, true},
		{4, 5, true},
		{0, 5, true},
		{0, 0, false}, // threshold disabled
		{3, 0, false},
	}
	for _, tc := range cases {
		p := Product{Quantity: tc.quantity, MinStock: tc.minStock}
		if p.IsLowStock() != tc.expected {
			t.Fatalf("IsLowStock with quantity=%d minStock=%d expected %v", tc.quantity, tc.minStock, tc.expected)
		}
	}
}

func TestInvoiceStatusIsTerminal(t *testing.T) {
	if InvoiceStatusDraft.IsTerminal() {
		t.Fatalf("draft must not be terminal")
	}
	if !InvoiceStatusCompleted.IsTerminal() {
		t.Fatalf("completed must be terminal")
	}
	if !InvoiceStatusCancelled.IsTerminal() {
		t.Fatalf("cancelled must be terminal")
	}
}

func TestEnumUnmarshalRejectsUnknownValues(t *testing.T) {
	var kind InvoiceKind
	if err := json.Unmarshal([]byte(`"refund"`), &kind); err == nil {
		t.Fatalf("invalid invoice kind must not unmarshal")
	}
	if err := json.Unmarshal([]byte(`"purchase"`), &kind); err != nil || kind != InvoiceKindPurchase {
		t.Fatalf("purchase should unmarshal, got %v %v", kind, err)
	}

	var txType TransactionType
	if err := json.Unmarshal([]byte(`"sideways"`), &txType); err == nil {
		t.Fatalf("invalid transaction type must not unmarshal")
	}

	var role UserRole
	if err := json.Unmarshal([]byte(`"root"`), &role); err == nil {
		t.Fatalf("invalid user role must not unmarshal")
	}
}

func TestUserRoleCanManageStock(t *testing.T) {
	if !UserRoleAdmin.CanManageStock() || !UserRoleManager.CanManageStock() {
		t.Fatalf("admin and manager must manage stock")
	}
	if UserRoleEmployee.CanManageStock() {
		t.Fatalf("employee must not manage stock")
	}
}

func TestInsufficientStockErrorNamesProduct(t *testing.T) {
	err := error(&InsufficientStockError{
		ProductId:   7,
		ProductName: "Bolt M6",
		Available:   3,
		Requested:   10,
	})
	if !IsInsufficientStock(err) {
		t.Fatalf("IsInsufficientStock must match")
	}

	var target *InsufficientStockError
	if !errors.As(err, &target) {
		t.Fatalf("errors.As must unwrap InsufficientStockError")
	}
	if target.ProductName != "Bolt M6" || target.Available != 3 || target.Requested != 10 {
		t.Fatalf("unexpected error payload: %+v", target)
	}
	if IsInsufficientStock(ErrNegativeStock) {
		t.Fatalf("sentinel errors must not match IsInsufficientStock")
	}
}
