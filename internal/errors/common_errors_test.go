package errors

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "without cause",
			err:      NewConfigError("missing spreadsheet id", nil),
			expected: "[CONFIG] missing spreadsheet id",
		},
		{
			name:     "with cause",
			err:      NewDataSourceError("failed to open workbook", os.ErrNotExist),
			expected: "[DATA_SOURCE] failed to open workbook: file does not exist",
		},
		{
			name:     "config error",
			err:      NewConfigError("bad file", fmt.Errorf("yaml: line 2")),
			expected: "[CONFIG] bad file: yaml: line 2",
		},
		{
			name:     "output error",
			err:      NewOutputError("chart not written", nil),
			expected: "[OUTPUT] chart not written",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("screen: %w", NewDataSourceError("read failed", cause))

	assert.ErrorIs(t, err, cause)

	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, ErrTypeDataSource, appErr.Type)

	assert.Nil(t, NewConfigError("x", nil).Unwrap())
}

func TestAppError_WithContext(t *testing.T) {
	err := NewOutputError("write failed", nil).
		WithContext("path", "out.png").
		WithContext("bytes", 0)

	assert.Equal(t, "out.png", err.Context["path"])
	assert.Equal(t, 0, err.Context["bytes"])

	bare := &AppError{Type: ErrTypeOutput, Message: "x"}
	bare.WithContext("ticker", "KO")
	assert.Equal(t, "KO", bare.Context["ticker"])
}

func TestNewAppError(t *testing.T) {
	err := NewAppError(ErrTypeConfig, "no data file", nil)
	assert.Equal(t, ErrTypeConfig, err.Type)
	assert.Equal(t, "no data file", err.Message)
	assert.NotNil(t, err.Context)
	assert.Empty(t, err.Context)
}
