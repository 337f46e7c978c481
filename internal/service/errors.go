package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotConfigured    = errors.New("not configured")
	ErrRateLimited      = errors.New("too many requests, please try again later")
	ErrSpaceNotFound    = errors.New("space not found")
	ErrSpaceInactive    = errors.New("space is not accepting submissions")
	ErrInvalidFolder    = errors.New("invalid folder")
	ErrUnknownAction    = errors.New("unknown action")
	ErrAIQuotaExceeded  = errors.New("monthly AI limit reached for your plan")
	ErrGatewayRateLimit = errors.New("AI gateway rate limit exceeded")
	ErrMissingSignature = errors.New("missing webhook signature")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrUnknownProduct   = errors.New("unknown product")
	ErrCustomerNotFound = errors.New("customer not found")
)

func missingField(name string) error {
	return fmt.Errorf("%w: %s is required", ErrInvalidInput, name)
}
