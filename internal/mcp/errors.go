package mcp

import (
	"errors"
	"fmt"

	"github.com/jlchiang/tutorbase/internal/domain/billing"
	"github.com/jlchiang/tutorbase/internal/domain/session"
	"github.com/jlchiang/tutorbase/internal/domain/student"
)

// APIError represents a tool error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// mapError maps domain errors to tool error codes. Unrecognized errors
// pass through unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, student.ErrStudentNotFound):
		return &APIError{Code: "STUDENT_NOT_FOUND", Message: "student not found", RecoveryHint: "Call list_students to see the roster"}
	case errors.Is(err, student.ErrInvalidInput):
		return &APIError{Code: "INVALID_STUDENT", Message: err.Error()}
	case errors.Is(err, session.ErrSessionNotFound):
		return &APIError{Code: "SESSION_NOT_FOUND", Message: "session not found", RecoveryHint: "Call list_sessions to see current sessions"}
	case errors.Is(err, session.ErrInvalidTimeRange):
		return &APIError{Code: "INVALID_TIME_RANGE", Message: "session end must be after start"}
	case errors.Is(err, session.ErrInvalidInput):
		return &APIError{Code: "INVALID_SESSION", Message: err.Error()}
	case errors.Is(err, billing.ErrInvoiceNotFound):
		return &APIError{Code: "INVOICE_NOT_FOUND", Message: "invoice not found", RecoveryHint: "Call list_invoices to see current invoices"}
	case errors.Is(err, billing.ErrInvalidInput):
		return &APIError{Code: "INVALID_BILLING_INPUT", Message: err.Error()}
	default:
		return err
	}
}
