package util

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainErrorPassesThrough(t *testing.T) {
	original := NewDuplicateEmail()

	mapped := ToDomainError(original)
	require.NotNil(t, mapped)
	assert.Equal(t, "DUPLICATE_EMAIL", mapped.Code)
	assert.Equal(t, http.StatusBadRequest, mapped.HTTPStatus)
}

func TestToDomainErrorUnwrapsWrapped(t *testing.T) {
	wrapped := fmt.Errorf("signup: %w", NewInvalidCredentials())

	mapped := ToDomainError(wrapped)
	require.NotNil(t, mapped)
	assert.Equal(t, "INVALID_CREDENTIALS", mapped.Code)
	assert.Equal(t, http.StatusUnauthorized, mapped.HTTPStatus)
}

func TestToDomainErrorTimeout(t *testing.T) {
	mapped := ToDomainError(fmt.Errorf("query: %w", context.DeadlineExceeded))
	require.NotNil(t, mapped)
	assert.Equal(t, "TIMEOUT", mapped.Code)
	assert.Equal(t, http.StatusGatewayTimeout, mapped.HTTPStatus)
}

func TestToDomainErrorNoRows(t *testing.T) {
	mapped := ToDomainError(pgx.ErrNoRows)
	require.NotNil(t, mapped)
	assert.Equal(t, "NOT_FOUND", mapped.Code)
	assert.Equal(t, http.StatusNotFound, mapped.HTTPStatus)
}

func TestToDomainErrorCollapsesUnknown(t *testing.T) {
	cause := errors.New("connection reset by peer")

	mapped := ToDomainError(cause)
	require.NotNil(t, mapped)
	assert.Equal(t, "INTERNAL_ERROR", mapped.Code)
	assert.Equal(t, "internal server error", mapped.Message)
	assert.True(t, errors.Is(mapped, cause))
}

func TestToDomainErrorNil(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))
}

func TestDomainErrorMessageHidesCause(t *testing.T) {
	cause := errors.New("dial tcp 10.0.0.5:5432 refused")
	err := NewInternalError(cause)

	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.NotContains(t, de.Message, "10.0.0.5")
	assert.Contains(t, de.Error(), "dial tcp")
}

func TestCredentialErrorsAreIdentical(t *testing.T) {
	unknownEmail := ToDomainError(NewInvalidCredentials())
	wrongPassword := ToDomainError(NewInvalidCredentials())

	assert.Equal(t, unknownEmail.Code, wrongPassword.Code)
	assert.Equal(t, unknownEmail.Message, wrongPassword.Message)
	assert.Equal(t, unknownEmail.HTTPStatus, wrongPassword.HTTPStatus)
}
