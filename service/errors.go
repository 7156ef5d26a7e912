package service

import "errors"

var (
	// ErrInvalidID means a caller-supplied id is not a valid object id.
	ErrInvalidID = errors.New("invalid id")
	// ErrStockExceeded means a requested quantity exceeds live stock.
	ErrStockExceeded = errors.New("exceeds the stock")
	// ErrEmptyOrder means a checkout group resolved to zero valid lines.
	ErrEmptyOrder = errors.New("order has no valid products")
	// ErrPaymentNotCompleted means the provider did not report COMPLETED.
	ErrPaymentNotCompleted = errors.New("transaction not completed")
	// ErrPaymentUnavailable means no payment provider is configured or
	// the provider is unreachable.
	ErrPaymentUnavailable = errors.New("payment provider unavailable")
	// ErrPermissionDenied means the caller may not touch this resource.
	ErrPermissionDenied = errors.New("permission denied")
)
