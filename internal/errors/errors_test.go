package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError(t *testing.T) {
	t.Run("Error with cause", func(t *testing.T) {
		cause := fmt.Errorf("disk full")
		err := NewStorageError("failed to write table", cause)
		assert.Contains(t, err.Error(), "STORAGE")
		assert.Contains(t, err.Error(), "disk full")
	})

	t.Run("Error without cause", func(t *testing.T) {
		err := NewValidationError("duplicate security code 4502")
		assert.Equal(t, "[VALIDATION] duplicate security code 4502", err.Error())
	})

	t.Run("Unwrap", func(t *testing.T) {
		cause := fmt.Errorf("underlying")
		err := NewConfigError("bad config", cause)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("WithContext", func(t *testing.T) {
		err := NewValidationError("negative total assets").
			WithContext("code", "4151").
			WithContext("column", "total_assets")
		assert.Equal(t, "4151", err.Context["code"])
		assert.Equal(t, "total_assets", err.Context["column"])
	})
}

func TestSchemaError(t *testing.T) {
	err := NewSchemaError([]string{"roe", "equity", "revenue"})

	// All missing columns are reported at once, sorted for determinism.
	assert.Equal(t, "[SCHEMA] required columns missing: equity, revenue, roe", err.Error())

	var schemaErr *SchemaError
	require.True(t, errors.As(error(err), &schemaErr))
	assert.Len(t, schemaErr.Missing, 3)
}

func TestParseError(t *testing.T) {
	err := NewParseError([]BadCell{
		{Row: 7, Code: "4502", Column: "revenue", Raw: "n/a"},
		{Row: 3, Code: "4151", Column: "equity", Raw: "--"},
		{Row: 7, Code: "4502", Column: "net_income", Raw: "?"},
	})

	t.Run("lists every offending cell", func(t *testing.T) {
		msg := err.Error()
		assert.Contains(t, msg, "3 cell(s)")
		assert.Contains(t, msg, `row 7 (code=4502) column "revenue": "n/a"`)
		assert.Contains(t, msg, `row 3 (code=4151) column "equity": "--"`)
	})

	t.Run("Rows deduplicates and sorts", func(t *testing.T) {
		assert.Equal(t, []int{3, 7}, err.Rows())
	})
}

func TestInsufficientDataError(t *testing.T) {
	err := NewInsufficientDataError(1, 2)
	assert.Contains(t, err.Error(), "INSUFFICIENT_DATA")
	assert.Contains(t, err.Error(), "1 companies")
	assert.Contains(t, err.Error(), "cluster count is 2")
}
