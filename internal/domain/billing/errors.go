package billing

import "errors"

var (
	// ErrInvoiceNotFound indicates the invoice doesn't exist.
	ErrInvoiceNotFound = errors.New("invoice not found")
	// ErrInvalidInput indicates invalid billing input.
	ErrInvalidInput = errors.New("invalid billing input")
)
