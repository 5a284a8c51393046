package errors

import (
	"errors"
	"fmt"
)

// ReportValidationError is returned by the report normalizer when the raw
// report does not conform to the expected shape. It carries a description of
// the first violation found; no partial normalization result accompanies it.
type ReportValidationError struct {
	Reason string `json:"message"`
}

// Error gives a human-readable description of the error.
func (e *ReportValidationError) Error() string {
	return fmt.Sprintf("invalid test report: %s", e.Reason)
}

// InvalidReportErr returns a new ReportValidationError for the given violation.
func InvalidReportErr(format string, args ...interface{}) error {
	return &ReportValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsReportValidationError reports whether err is a report validation failure.
func IsReportValidationError(err error) bool {
	var verr *ReportValidationError
	return errors.As(err, &verr)
}
