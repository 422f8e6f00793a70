package application

import (
	"strings"

	"github.com/Apurer/sales-api/internal/domains/sales/domain"
)

// ValidationFailedError carries every field-attributed failure collected
// while validating a request. No single failure aborts evaluation of the
// rest.
type ValidationFailedError struct {
	Errors []domain.ValidationError
}

func (e *ValidationFailedError) Error() string {
	messages := make([]string, 0, len(e.Errors))
	for _, fieldError := range e.Errors {
		messages = append(messages, fieldError.Field+": "+fieldError.Message)
	}
	return "sale validation failed: " + strings.Join(messages, "; ")
}
