package errhttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	invdomain "github.com/ghuser/stockline/services/inventory/domain"
	orderdomain "github.com/ghuser/stockline/services/ordering/domain"
	podomain "github.com/ghuser/stockline/services/procurement/domain"
)

func TestWriteError_StatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"product not found", invdomain.ErrProductNotFound, http.StatusNotFound},
		{"stock not found", invdomain.ErrStockNotFound, http.StatusNotFound},
		{"order not found", orderdomain.ErrOrderNotFound, http.StatusNotFound},
		{"purchase order not found", podomain.ErrPurchaseOrderNotFound, http.StatusNotFound},

		{"insufficient stock", &invdomain.InsufficientStockError{
			ProductID: uuid.New(), Available: 2, Requested: 5,
		}, http.StatusConflict},
		{"excess receipt", &podomain.ExcessReceiptError{
			ProductID: uuid.New(), Remaining: 1, Received: 3,
		}, http.StatusConflict},
		{"invalid transition", &orderdomain.InvalidTransitionError{
			From: "delivered", To: "pending",
		}, http.StatusConflict},
		{"duplicate product", invdomain.ErrProductAlreadyExists, http.StatusConflict},
		{"immutable order", orderdomain.ErrOrderImmutable, http.StatusConflict},
		{"immutable purchase order", podomain.ErrPurchaseOrderImmutable, http.StatusConflict},

		{"empty order", orderdomain.ErrEmptyOrder, http.StatusUnprocessableEntity},
		{"duplicate line item", orderdomain.ErrDuplicateLineItem, http.StatusUnprocessableEntity},
		{"invalid order quantity", orderdomain.ErrInvalidQuantity, http.StatusUnprocessableEntity},
		{"zero adjustment", invdomain.ErrZeroAdjustment, http.StatusUnprocessableEntity},
		{"nothing received", podomain.ErrNothingReceived, http.StatusUnprocessableEntity},
		{"unknown receipt line", podomain.ErrUnknownLine, http.StatusUnprocessableEntity},
		{"invalid product name", invdomain.ErrInvalidProductName, http.StatusUnprocessableEntity},

		{"unrecognized error", errors.New("kaboom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tt.err)
			if rec.Code != tt.want {
				t.Fatalf("expected status %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestWriteError_MatchesWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("create order: %w",
		fmt.Errorf("product %s: %w", uuid.New(), invdomain.ErrProductNotFound))
	rec := httptest.NewRecorder()
	WriteError(rec, wrapped)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for wrapped sentinel, got %d", rec.Code)
	}

	var typed error = fmt.Errorf("edit items: %w", &invdomain.InsufficientStockError{
		ProductID: uuid.New(), Available: 0, Requested: 1,
	})
	rec = httptest.NewRecorder()
	WriteError(rec, typed)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for wrapped typed error, got %d", rec.Code)
	}
}

func TestWriteError_Body(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, orderdomain.ErrOrderNotFound)

	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Fatalf("expected JSON content type, got %q", ct)
	}

	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body.Error != orderdomain.ErrOrderNotFound.Error() {
		t.Fatalf("unexpected error message %q", body.Error)
	}
}
