package handler

import (
	"errors"
	"net/http"

	"vouchy/internal/service"
	"vouchy/internal/util"

	"github.com/rs/zerolog"
)

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInvalidFolder),
		errors.Is(err, service.ErrUnknownAction),
		errors.Is(err, service.ErrUnknownProduct):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrMissingSignature),
		errors.Is(err, service.ErrInvalidSignature):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrSpaceInactive),
		errors.Is(err, service.ErrAIQuotaExceeded):
		return http.StatusForbidden
	case errors.Is(err, service.ErrSpaceNotFound),
		errors.Is(err, service.ErrCustomerNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrRateLimited),
		errors.Is(err, service.ErrGatewayRateLimit):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError answers with {"error": err.Error()} and the mapped status.
func writeServiceError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).Msg("Unhandled error")
	}
	util.WriteError(w, status, err.Error())
}

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST, OPTIONS")
		util.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return false
	}
	return true
}
