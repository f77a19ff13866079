package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppErrorWrapsSentinel(t *testing.T) {
	sentinel := errors.New("invalid argument")
	err := NewAppError(CodeInvalidArgument, "product is required", sentinel)

	require.ErrorIs(t, err, sentinel)
	require.Equal(t, "product is required: invalid argument", err.Error())
	require.True(t, IsAppError(fmt.Errorf("scan: %w", err)))
	require.Equal(t, CodeInvalidArgument, CodeOf(fmt.Errorf("scan: %w", err)))
}

func TestAppErrorMessageOnly(t *testing.T) {
	err := NewAppError(CodeFailedPrecondition, "offer already registered", nil)
	require.Equal(t, "offer already registered", err.Error())
	require.Nil(t, err.Unwrap())
}

func TestCodeOfPlainError(t *testing.T) {
	require.Empty(t, CodeOf(errors.New("boom")))
	require.False(t, IsAppError(nil))

	var nilErr *AppError
	require.Empty(t, nilErr.Error())
}
