package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/skladtech/inventory_backend/models"
	"github.com/skladtech/inventory_backend/utils"
)

func TestRespondDomainErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"missing record", utils.ErrorRecordNotFound, http.StatusNotFound},
		{"missing referenced product", fmt.Errorf("product 42: %w", utils.ErrorRecordNotFound), http.StatusNotFound},
		{"missing supplier", fmt.Errorf("supplier 7: %w", utils.ErrorRecordNotFound), http.StatusNotFound},
		{"invalid quantity", models.ErrInvalidQuantity, http.StatusBadRequest},
		{"duplicate line", models.ErrDuplicateLine, http.StatusBadRequest},
		{"non-draft mutation", models.ErrInvalidState, http.StatusConflict},
		{"duplicate sku", fmt.Errorf("%w: sku %q", models.ErrUniquenessViolation, "BOLT-M6"), http.StatusConflict},
		{"negative stock", fmt.Errorf("%w: product %q", models.ErrNegativeStock, "Bolt"), http.StatusConflict},
		{"protected reference", models.ErrProtectedReference, http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			respondDomainError(c, "handlers", "TestRespondDomainErrorStatusMapping", tc.err)
			if w.Code != tc.status {
				t.Fatalf("%v: expected status %d, got %d", tc.err, tc.status, w.Code)
			}
		})
	}
}

func TestRespondDomainErrorInsufficientStockPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondDomainError(c, "handlers", "TestRespondDomainErrorInsufficientStockPayload", &models.InsufficientStockError{
		ProductId:   3,
		ProductName: "Bolt M6",
		Available:   4,
		Requested:   26,
	})

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if body["product_name"] != "Bolt M6" {
		t.Fatalf("payload must name the failing product, got %v", body)
	}
	if body["available"] != float64(4) || body["requested"] != float64(26) {
		t.Fatalf("payload must carry availability, got %v", body)
	}
}
