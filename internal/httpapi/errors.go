package httpapi

import (
	"context"
	"errors"
	"net/http"

	addressapp "github.com/dwikikusuma/storefront/internal/address/app"
	addressdomain "github.com/dwikikusuma/storefront/internal/address/domain"
	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
	"github.com/dwikikusuma/storefront/internal/checkout/flow"
)

type apiError struct {
	status  int
	code    string
	message string
}

func (e *apiError) Error() string { return e.message }

var errUnavailable = &apiError{status: http.StatusServiceUnavailable, code: "UNAVAILABLE", message: "service unavailable"}

func errNotFound(msg string) error {
	return &apiError{status: http.StatusNotFound, code: "NOT_FOUND", message: msg}
}

func errBadRequest(msg string) error {
	return &apiError{status: http.StatusBadRequest, code: "INVALID_ARGUMENT", message: msg}
}

// httpStatusFromError maps engine errors to a status and a stable code.
// Anything unrecognized is a 500 and its message is not exposed.
func httpStatusFromError(err error) (int, string, string) {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr.status, apiErr.code, apiErr.message
	}

	switch {
	case errors.Is(err, flow.ErrInvalidTransition):
		return http.StatusConflict, "INVALID_TRANSITION", err.Error()
	case errors.Is(err, flow.ErrNoCheckout):
		return http.StatusConflict, "NO_CHECKOUT", err.Error()
	case errors.Is(err, checkoutapp.ErrEmptyCheckout):
		return http.StatusConflict, "EMPTY_CHECKOUT", err.Error()
	case errors.Is(err, addressapp.ErrAutofillClosed):
		return http.StatusConflict, "NO_CHECKOUT", err.Error()
	case errors.Is(err, checkoutapp.ErrInvalidPayment):
		return http.StatusBadRequest, "INVALID_PAYMENT", err.Error()
	case errors.Is(err, addressdomain.ErrInvalidPostalCode):
		return http.StatusBadRequest, "INVALID_POSTAL_CODE", err.Error()
	case errors.Is(err, checkoutapp.ErrInvalidInput), errors.Is(err, catalogapp.ErrInvalidInput):
		return http.StatusBadRequest, "INVALID_ARGUMENT", err.Error()
	case errors.Is(err, catalogapp.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", err.Error()
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "UNAVAILABLE", "request cancelled or timed out"
	default:
		return http.StatusInternalServerError, "INTERNAL", "internal error"
	}
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	status, code, msg := httpStatusFromError(err)
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: msg}})
}
