package models_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/skladtech/inventory_backend/config"
	"github.com/skladtech/inventory_backend/models"
	"github.com/skladtech/inventory_backend/utils"
	"github.com/skladtech/inventory_backend/workflow"
)

// End-to-end invoice lifecycle against real MySQL and Redis containers:
// draft editing rules, completion stock effects, ledger entries,
// insufficiency abort, terminal state transitions and low-stock alerts.
func TestInvoiceLifecycle(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := context.Background()

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("REDIS_ADDRESS", fmt.Sprintf("127.0.0.1:%s", redisPort))
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "inventory_test")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	models.MigrateTable()

	admin, err := models.CreateUser(ctx, &models.NewUser{
		Username: "admin",
		Name:     "Admin",
		Password: "secret123",
		Role:     models.UserRoleAdmin,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	ctx = utils.SetUserIdInContext(ctx, admin.ID)
	ctx = utils.SetUsernameInContext(ctx, admin.Username)
	ctx = utils.SetUserNameInContext(ctx, admin.Name)
	ctx = utils.SetUserRoleInContext(ctx, string(admin.Role))

	supplier, err := models.CreateSupplier(ctx, &models.NewSupplier{Name: "Acme Supply"})
	if err != nil {
		t.Fatalf("CreateSupplier: %v", err)
	}
	reason, err := models.CreateExpenseReason(ctx, &models.NewExpenseReason{Name: "Write-off"})
	if err != nil {
		t.Fatalf("CreateExpenseReason: %v", err)
	}

	bolt, err := models.CreateProduct(ctx, &models.NewProduct{
		Name:     "Bolt M6",
		Sku:      "BOLT-M6",
		Price:    decimal.RequireFromString("1.50"),
		Quantity: 10,
		MinStock: 5,
	})
	if err != nil {
		t.Fatalf("CreateProduct bolt: %v", err)
	}
	nut, err := models.CreateProduct(ctx, &models.NewProduct{
		Name:     "Nut M6",
		Sku:      "NUT-M6",
		Price:    decimal.RequireFromString("0.75"),
		Quantity: 100,
	})
	if err != nil {
		t.Fatalf("CreateProduct nut: %v", err)
	}

	// duplicate sku is rejected before persistence
	if _, err := models.CreateProduct(ctx, &models.NewProduct{
		Name: "Bolt copy", Sku: "BOLT-M6", Price: decimal.RequireFromString("1"),
	}); !errors.Is(err, models.ErrUniquenessViolation) {
		t.Fatalf("duplicate sku expected ErrUniquenessViolation, got %v", err)
	}

	supplierId := supplier.ID
	reasonId := reason.ID
	invoiceDate := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("purchase completion receives stock", func(t *testing.T) {
		number, err := models.NextInvoiceNumber(ctx, models.InvoiceKindPurchase)
		if err != nil {
			t.Fatalf("NextInvoiceNumber: %v", err)
		}
		if !strings.HasPrefix(number, "PUR-") {
			t.Fatalf("advisory number expected PUR- prefix, got %s", number)
		}

		invoice, err := models.CreateInvoice(ctx, &models.NewInvoice{
			Kind:        models.InvoiceKindPurchase,
			InvoiceDate: invoiceDate,
			SupplierId:  &supplierId,
			Items: []models.NewInvoiceItem{
				{ProductId: bolt.ID, Quantity: 20, UnitPrice: decimal.RequireFromString("1.20")},
				{ProductId: nut.ID, Quantity: 50},
			},
		})
		if err != nil {
			t.Fatalf("CreateInvoice: %v", err)
		}
		if invoice.Status != models.InvoiceStatusDraft {
			t.Fatalf("new invoice expected draft, got %s", invoice.Status)
		}
		// 20 x 1.20 + 50 x 0.75 (catalog fallback) = 61.50
		if !invoice.TotalAmount.Equal(decimal.RequireFromString("61.50")) {
			t.Fatalf("total expected 61.50, got %s", invoice.TotalAmount.String())
		}

		// warm the product cache; completion must invalidate it after
		// the commit so readers never see the pre-receipt quantity
		if _, err := models.GetProduct(ctx, bolt.ID); err != nil {
			t.Fatalf("GetProduct: %v", err)
		}

		completed, err := workflow.CompleteInvoice(ctx, invoice.ID)
		if err != nil {
			t.Fatalf("CompleteInvoice: %v", err)
		}
		if completed.Status != models.InvoiceStatusCompleted {
			t.Fatalf("expected completed, got %s", completed.Status)
		}

		gotBolt, err := models.GetProduct(ctx, bolt.ID)
		if err != nil {
			t.Fatalf("GetProduct: %v", err)
		}
		if gotBolt.Quantity != 30 {
			t.Fatalf("bolt quantity expected 30 after receipt, got %d", gotBolt.Quantity)
		}

		entries, err := models.GetStockTransactionsByProduct(ctx, bolt.ID)
		if err != nil {
			t.Fatalf("GetStockTransactionsByProduct: %v", err)
		}
		if len(entries) != 1 || entries[0].Type != models.TransactionTypeIn || entries[0].Quantity != 20 {
			t.Fatalf("expected one incoming ledger entry of 20, got %+v", entries)
		}
		if !strings.Contains(entries[0].Comment, completed.InvoiceNumber) {
			t.Fatalf("ledger comment must reference the invoice number, got %q", entries[0].Comment)
		}

		// completed invoices are immutable
		if _, err := workflow.CompleteInvoice(ctx, invoice.ID); !errors.Is(err, models.ErrInvalidState) {
			t.Fatalf("double complete expected ErrInvalidState, got %v", err)
		}
		if _, err := workflow.CancelInvoice(ctx, invoice.ID); !errors.Is(err, models.ErrInvalidState) {
			t.Fatalf("cancel after complete expected ErrInvalidState, got %v", err)
		}
		if _, err := models.AddInvoiceItem(ctx, invoice.ID, &models.NewInvoiceItem{ProductId: nut.ID, Quantity: 1}); !errors.Is(err, models.ErrInvalidState) {
			t.Fatalf("line add after complete expected ErrInvalidState, got %v", err)
		}
		if _, err := models.DeleteInvoice(ctx, invoice.ID); !errors.Is(err, models.ErrInvalidState) {
			t.Fatalf("delete after complete expected ErrInvalidState, got %v", err)
		}
	})

	t.Run("missing references are not found", func(t *testing.T) {
		missing := 999999
		if _, err := models.CreateInvoice(ctx, &models.NewInvoice{
			Kind:        models.InvoiceKindPurchase,
			InvoiceDate: invoiceDate,
			SupplierId:  &missing,
		}); !errors.Is(err, utils.ErrorRecordNotFound) {
			t.Fatalf("unknown supplier expected ErrorRecordNotFound, got %v", err)
		}
		if _, err := models.CreateInvoice(ctx, &models.NewInvoice{
			Kind:        models.InvoiceKindExpense,
			InvoiceDate: invoiceDate,
			ReasonId:    &reasonId,
			Items:       []models.NewInvoiceItem{{ProductId: missing, Quantity: 1}},
		}); !errors.Is(err, utils.ErrorRecordNotFound) {
			t.Fatalf("unknown product expected ErrorRecordNotFound, got %v", err)
		}
		if _, err := models.GetInvoice(ctx, missing); !errors.Is(err, utils.ErrorRecordNotFound) {
			t.Fatalf("unknown invoice expected ErrorRecordNotFound, got %v", err)
		}
		if _, err := workflow.CompleteInvoice(ctx, missing); !errors.Is(err, utils.ErrorRecordNotFound) {
			t.Fatalf("completing an unknown invoice expected ErrorRecordNotFound, got %v", err)
		}
	})

	t.Run("draft validation", func(t *testing.T) {
		if _, err := models.CreateInvoice(ctx, &models.NewInvoice{
			Kind:        models.InvoiceKindExpense,
			InvoiceDate: invoiceDate,
			ReasonId:    &reasonId,
			Items: []models.NewInvoiceItem{
				{ProductId: bolt.ID, Quantity: 1},
				{ProductId: bolt.ID, Quantity: 2},
			},
		}); !errors.Is(err, models.ErrDuplicateLine) {
			t.Fatalf("duplicate product lines expected ErrDuplicateLine, got %v", err)
		}

		if _, err := models.CreateInvoice(ctx, &models.NewInvoice{
			Kind:        models.InvoiceKindExpense,
			InvoiceDate: invoiceDate,
			ReasonId:    &reasonId,
			Items:       []models.NewInvoiceItem{{ProductId: bolt.ID, Quantity: -3}},
		}); !errors.Is(err, models.ErrInvalidQuantity) {
			t.Fatalf("negative quantity expected ErrInvalidQuantity, got %v", err)
		}
	})

	t.Run("insufficient stock aborts completion atomically", func(t *testing.T) {
		before, err := models.GetProduct(ctx, bolt.ID)
		if err != nil {
			t.Fatalf("GetProduct: %v", err)
		}

		invoice, err := models.CreateInvoice(ctx, &models.NewInvoice{
			Kind:        models.InvoiceKindExpense,
			InvoiceDate: invoiceDate,
			ReasonId:    &reasonId,
			Items: []models.NewInvoiceItem{
				{ProductId: nut.ID, Quantity: 10},
				{ProductId: bolt.ID, Quantity: before.Quantity + 1},
			},
		})
		if err != nil {
			t.Fatalf("CreateInvoice: %v", err)
		}

		_, err = workflow.CompleteInvoice(ctx, invoice.ID)
		var insufficient *models.InsufficientStockError
		if !errors.As(err, &insufficient) {
			t.Fatalf("expected InsufficientStockError, got %v", err)
		}
		if insufficient.ProductId != bolt.ID || insufficient.Available != before.Quantity {
			t.Fatalf("error must name the failing product and availability: %+v", insufficient)
		}

		// nothing moved, invoice still draft
		after, err := models.GetProduct(ctx, nut.ID)
		if err != nil {
			t.Fatalf("GetProduct: %v", err)
		}
		if after.Quantity != 150 {
			t.Fatalf("nut quantity must be unchanged at 150, got %d", after.Quantity)
		}
		got, err := models.GetInvoice(ctx, invoice.ID)
		if err != nil {
			t.Fatalf("GetInvoice: %v", err)
		}
		if got.Status != models.InvoiceStatusDraft {
			t.Fatalf("failed completion must leave the invoice draft, got %s", got.Status)
		}
		entries, err := models.GetStockTransactionsByProduct(ctx, nut.ID)
		if err != nil {
			t.Fatalf("GetStockTransactionsByProduct: %v", err)
		}
		for _, e := range entries {
			if e.Type == models.TransactionTypeOut {
				t.Fatalf("no outgoing ledger entry may survive the rollback: %+v", e)
			}
		}

		cancelled, err := workflow.CancelInvoice(ctx, invoice.ID)
		if err != nil {
			t.Fatalf("CancelInvoice: %v", err)
		}
		if cancelled.Status != models.InvoiceStatusCancelled {
			t.Fatalf("expected cancelled, got %s", cancelled.Status)
		}
	})

	t.Run("expense completion crossing the threshold alerts", func(t *testing.T) {
		// bolt is at 30 with minStock 5; spending 26 leaves 4
		invoice, err := models.CreateInvoice(ctx, &models.NewInvoice{
			Kind:        models.InvoiceKindExpense,
			InvoiceDate: invoiceDate,
			ReasonId:    &reasonId,
			Items:       []models.NewInvoiceItem{{ProductId: bolt.ID, Quantity: 26}},
		})
		if err != nil {
			t.Fatalf("CreateInvoice: %v", err)
		}
		if _, err := workflow.CompleteInvoice(ctx, invoice.ID); err != nil {
			t.Fatalf("CompleteInvoice: %v", err)
		}

		got, err := models.GetProduct(ctx, bolt.ID)
		if err != nil {
			t.Fatalf("GetProduct: %v", err)
		}
		if got.Quantity != 4 {
			t.Fatalf("bolt quantity expected 4, got %d", got.Quantity)
		}
		if !got.IsLowStock() {
			t.Fatalf("bolt must be low on stock at 4/5")
		}

		notifications, err := models.GetNotificationsByUser(ctx, admin.ID, true)
		if err != nil {
			t.Fatalf("GetNotificationsByUser: %v", err)
		}
		var found bool
		for _, n := range notifications {
			if n.Type == models.NotificationTypeLowStock &&
				n.RelatedObjectId != nil && *n.RelatedObjectId == bolt.ID {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected a low-stock notification for the bolt, got %+v", notifications)
		}
	})

	t.Run("manual movement adjusts stock in one transaction", func(t *testing.T) {
		entry, err := workflow.RecordStockMovement(ctx, &models.NewStockTransaction{
			ProductId: bolt.ID,
			Type:      models.TransactionTypeIn,
			Quantity:  6,
			Comment:   "cycle count correction",
		})
		if err != nil {
			t.Fatalf("RecordStockMovement: %v", err)
		}
		if entry.UserId != admin.ID {
			t.Fatalf("ledger entry must carry the acting user, got %d", entry.UserId)
		}
		got, err := models.GetProduct(ctx, bolt.ID)
		if err != nil {
			t.Fatalf("GetProduct: %v", err)
		}
		if got.Quantity != 10 {
			t.Fatalf("bolt quantity expected 10 after correction, got %d", got.Quantity)
		}

		// a manual write-off crossing the minimum alerts, same as
		// invoice completion
		baseline := countLowStockNotifications(t, ctx, admin.ID, bolt.ID)
		if _, err := workflow.RecordStockMovement(ctx, &models.NewStockTransaction{
			ProductId: bolt.ID,
			Type:      models.TransactionTypeOut,
			Quantity:  5,
			Comment:   "damaged in storage",
		}); err != nil {
			t.Fatalf("RecordStockMovement: %v", err)
		}
		got, err = models.GetProduct(ctx, bolt.ID)
		if err != nil {
			t.Fatalf("GetProduct: %v", err)
		}
		if got.Quantity != 5 || !got.IsLowStock() {
			t.Fatalf("bolt must be low on stock at 5/5, got quantity %d", got.Quantity)
		}
		if countLowStockNotifications(t, ctx, admin.ID, bolt.ID) <= baseline {
			t.Fatalf("manual write-off below the minimum must raise a low-stock notification")
		}

		// writing off below zero is rejected
		if _, err := workflow.RecordStockMovement(ctx, &models.NewStockTransaction{
			ProductId: bolt.ID,
			Type:      models.TransactionTypeOut,
			Quantity:  6,
		}); !errors.Is(err, models.ErrNegativeStock) {
			t.Fatalf("expected ErrNegativeStock, got %v", err)
		}
	})

	t.Run("referenced records are protected", func(t *testing.T) {
		if _, err := models.DeleteProduct(ctx, bolt.ID); !errors.Is(err, models.ErrProtectedReference) {
			t.Fatalf("product with ledger entries expected ErrProtectedReference, got %v", err)
		}
		if _, err := models.DeleteSupplier(ctx, supplier.ID); !errors.Is(err, models.ErrProtectedReference) {
			t.Fatalf("referenced supplier expected ErrProtectedReference, got %v", err)
		}
		if _, err := models.DeleteExpenseReason(ctx, reason.ID); !errors.Is(err, models.ErrProtectedReference) {
			t.Fatalf("referenced reason expected ErrProtectedReference, got %v", err)
		}
	})
}

func countLowStockNotifications(t *testing.T, ctx context.Context, userId int, productId int) int {
	t.Helper()
	notifications, err := models.GetNotificationsByUser(ctx, userId, true)
	if err != nil {
		t.Fatalf("GetNotificationsByUser: %v", err)
	}
	count := 0
	for _, n := range notifications {
		if n.Type == models.NotificationTypeLowStock &&
			n.RelatedObjectId != nil && *n.RelatedObjectId == productId {
			count++
		}
	}
	return count
}

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("inventory-test-redis-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-p", "127.0.0.1:0:6379",
		"redis:7-alpine",
	)
	if err != nil {
		t.Fatalf("start redis container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "6379/tcp")
	if err != nil {
		t.Fatalf("redis docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "redis-cli", "ping")
		if err == nil {
			return name, port
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("redis did not become ready")
	return "", ""
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("inventory-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=inventory_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	// Example: "127.0.0.1:49154\n"
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
