package handlers

import (
	"errors"
	"net/http"

	"github.com/pocketbase/pocketbase/apis"

	"trip-booking/internal/status"
)

// toApiError maps core error kinds onto HTTP status codes: missing records to
// 404, illegal transitions and bad decisions to 400, contention on bounded
// resources to 409 so clients know a retry may succeed, store failures to 503.
func toApiError(err error) error {
	switch {
	case errors.Is(err, status.ErrTicketNotFound),
		errors.Is(err, status.ErrBookingNotFound),
		errors.Is(err, status.ErrVendorNotFound),
		errors.Is(err, status.ErrTransactionNotFound):
		return apis.NewNotFoundError(err.Error(), err)

	case errors.Is(err, status.ErrInvalidTransition),
		errors.Is(err, status.ErrInvalidDecision):
		return apis.NewBadRequestError(err.Error(), err)

	case errors.Is(err, status.ErrInsufficientStock),
		errors.Is(err, status.ErrSlotPoolFull),
		errors.Is(err, status.ErrTicketNotApproved):
		return apis.NewApiError(http.StatusConflict, err.Error(), err)

	case errors.Is(err, status.ErrStoreUnavailable):
		return apis.NewApiError(http.StatusServiceUnavailable, "Store unavailable, please retry", err)

	default:
		return apis.NewApiError(http.StatusInternalServerError, "Something went wrong", err)
	}
}
