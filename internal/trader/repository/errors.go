package repository

import (
	"errors"
	"fmt"
)

// ErrInsufficientFunds is returned when the exchange rejects an order
// because the account balance cannot cover it.
var ErrInsufficientFunds = errors.New("insufficient funds")

// APIError represents a transient exchange or network failure. Cycles that
// hit one are treated as Hold and retried on the next schedule.
type APIError struct {
	Op  string
	Err error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("binance api: %s: %v", e.Op, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether the error is a retryable exchange/network
// failure rather than a permanent rejection.
func IsTransient(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
