package sales

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"

	salesapp "github.com/Apurer/sales-api/internal/domains/sales/application"
	"github.com/Apurer/sales-api/internal/domains/sales/domain"
	salesports "github.com/Apurer/sales-api/internal/domains/sales/ports"
)

func TestAsWorkflowFailure_ValidationCarriesFieldErrors(t *testing.T) {
	validation := &salesapp.ValidationFailedError{Errors: []domain.ValidationError{
		{Field: "customer", Message: "Customer is required"},
		{Field: "products[0].quantity", Message: "Cannot sell more than 20 identical items"},
	}}

	err := asWorkflowFailure(validation)

	var applicationErr *temporal.ApplicationError
	require.ErrorAs(t, err, &applicationErr)
	require.True(t, applicationErr.NonRetryable())
	require.Equal(t, ValidationFailedErrorType, applicationErr.Type())

	var fieldErrors []domain.ValidationError
	require.NoError(t, applicationErr.Details(&fieldErrors))
	require.Equal(t, validation.Errors, fieldErrors)
}

func TestAsWorkflowFailure_DuplicateSaleNumberNotRetried(t *testing.T) {
	duplicate := fmt.Errorf("sale with number 42: %w", salesports.ErrDuplicateSaleNumber)

	err := asWorkflowFailure(duplicate)

	var applicationErr *temporal.ApplicationError
	require.ErrorAs(t, err, &applicationErr)
	require.True(t, applicationErr.NonRetryable())
	require.Equal(t, DuplicateSaleNumberErrorType, applicationErr.Type())
}

func TestAsWorkflowFailure_OtherErrorsStayRetryable(t *testing.T) {
	cause := errors.New("connection refused")
	require.Equal(t, cause, asWorkflowFailure(cause))
}
