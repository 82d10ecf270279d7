// Package errhttp maps domain errors to HTTP status codes.
// Add a case to mapErrorToStatus for each new domain sentinel or typed error.
package errhttp

import (
	"errors"
	"net/http"

	"github.com/ghuser/stockline/pkg/httpx"
	invdomain "github.com/ghuser/stockline/services/inventory/domain"
	orderdomain "github.com/ghuser/stockline/services/ordering/domain"
	podomain "github.com/ghuser/stockline/services/procurement/domain"
)

// WriteError maps err to an HTTP status code and writes a JSON error response.
// Uses errors.Is()/errors.As() so wrapped errors are matched correctly.
// Defaults to 500 Internal Server Error for unrecognized errors.
func WriteError(w http.ResponseWriter, err error) {
	httpx.JSONError(w, mapErrorToStatus(err), err.Error())
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, invdomain.ErrProductNotFound),
		errors.Is(err, invdomain.ErrStockNotFound),
		errors.Is(err, orderdomain.ErrOrderNotFound),
		errors.Is(err, podomain.ErrPurchaseOrderNotFound):
		return http.StatusNotFound // 404

	case invdomain.IsInsufficientStock(err),
		podomain.IsExcessReceipt(err),
		orderdomain.IsInvalidTransition(err),
		errors.Is(err, invdomain.ErrProductAlreadyExists),
		errors.Is(err, orderdomain.ErrOrderImmutable),
		errors.Is(err, podomain.ErrPurchaseOrderImmutable):
		return http.StatusConflict // 409

	case errors.Is(err, invdomain.ErrInvalidQuantity),
		errors.Is(err, invdomain.ErrInvalidProductName),
		errors.Is(err, invdomain.ErrZeroAdjustment),
		errors.Is(err, orderdomain.ErrEmptyOrder),
		errors.Is(err, orderdomain.ErrDuplicateLineItem),
		errors.Is(err, orderdomain.ErrInvalidQuantity),
		errors.Is(err, orderdomain.ErrUnknownStatus),
		errors.Is(err, podomain.ErrEmptyPurchaseOrder),
		errors.Is(err, podomain.ErrDuplicateLine),
		errors.Is(err, podomain.ErrInvalidQuantity),
		errors.Is(err, podomain.ErrNothingReceived),
		errors.Is(err, podomain.ErrUnknownLine):
		return http.StatusUnprocessableEntity // 422

	default:
		return http.StatusInternalServerError // 500
	}
}
