package http

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/leathric/storefront/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError отображает доменные ошибки на HTTP-статусы. Неопознанные
// ошибки уходят как 500 без деталей, чтобы не раскрывать внутренности.
func writeError(w http.ResponseWriter, logger *log.Entry, err error) {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		logger.WithError(err).Error("internal error")
		writeJSON(w, status, errorResponse{Error: "internal server error", Code: code})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: code})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusNotFound, "order_not_found"
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound, "product_not_found"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user_not_found"
	case errors.Is(err, domain.ErrCartItemNotFound):
		return http.StatusNotFound, "cart_item_not_found"
	case errors.Is(err, domain.ErrCartNotFound):
		return http.StatusNotFound, "cart_not_found"
	case errors.Is(err, domain.ErrAccessDenied):
		return http.StatusForbidden, "access_denied"
	case errors.Is(err, domain.ErrCartEmpty):
		return http.StatusBadRequest, "cart_empty"
	case errors.Is(err, domain.ErrUnknownStatus):
		return http.StatusBadRequest, "unknown_status"
	case errors.Is(err, domain.ErrQuantityInvalid):
		return http.StatusBadRequest, "quantity_invalid"
	case errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusConflict, "insufficient_stock"
	case errors.Is(err, domain.ErrInvalidState):
		return http.StatusConflict, "invalid_state"
	case errors.Is(err, domain.ErrIllegalTransition):
		return http.StatusConflict, "illegal_transition"
	case errors.Is(err, domain.ErrNotCancellable):
		return http.StatusConflict, "not_cancellable"
	case errors.Is(err, domain.ErrPaymentAlreadyConfirmed):
		return http.StatusConflict, "payment_already_confirmed"
	case errors.Is(err, domain.ErrWishlistDuplicate):
		return http.StatusConflict, "wishlist_duplicate"
	case errors.Is(err, domain.ErrVersionConflict):
		return http.StatusConflict, "version_conflict"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
