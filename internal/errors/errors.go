package errors

import (
	"fmt"
	"sort"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeSchema           ErrorType = "SCHEMA"
	ErrTypeParse            ErrorType = "PARSE"
	ErrTypeInsufficientData ErrorType = "INSUFFICIENT_DATA"
	ErrTypeValidation       ErrorType = "VALIDATION"
	ErrTypeConfig           ErrorType = "CONFIG"
	ErrTypeStorage          ErrorType = "STORAGE"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// SchemaError reports every required column missing from the input table.
// It is fatal for the analysis that encountered it.
type SchemaError struct {
	Missing []string
}

// Error implements the error interface
func (e *SchemaError) Error() string {
	cols := append([]string(nil), e.Missing...)
	sort.Strings(cols)
	return fmt.Sprintf("[%s] required columns missing: %s", ErrTypeSchema, strings.Join(cols, ", "))
}

// NewSchemaError creates a schema error for the given missing columns
func NewSchemaError(missing []string) *SchemaError {
	return &SchemaError{Missing: missing}
}

// BadCell identifies a single cell that failed numeric coercion.
type BadCell struct {
	Row    int    // 1-based data row index within the sheet
	Code   string // security code of the affected company, if known
	Column string // canonical column name
	Raw    string // the offending cell content
}

func (c BadCell) String() string {
	return fmt.Sprintf("row %d (code=%s) column %q: %q", c.Row, c.Code, c.Column, c.Raw)
}

// ParseError reports every cell that failed numeric coercion, not just the
// first. Whether the affected rows are dropped or kept with undefined values
// is decided by the missing-value policy, not by this error.
type ParseError struct {
	Cells []BadCell
}

// Error implements the error interface
func (e *ParseError) Error() string {
	parts := make([]string, len(e.Cells))
	for i, c := range e.Cells {
		parts[i] = c.String()
	}
	return fmt.Sprintf("[%s] %d cell(s) failed numeric coercion: %s", ErrTypeParse, len(e.Cells), strings.Join(parts, "; "))
}

// NewParseError creates a parse error for the given bad cells
func NewParseError(cells []BadCell) *ParseError {
	return &ParseError{Cells: cells}
}

// Rows returns the distinct 1-based row indices with at least one bad cell,
// in ascending order.
func (e *ParseError) Rows() []int {
	seen := make(map[int]bool)
	var rows []int
	for _, c := range e.Cells {
		if !seen[c.Row] {
			seen[c.Row] = true
			rows = append(rows, c.Row)
		}
	}
	sort.Ints(rows)
	return rows
}

// InsufficientDataError indicates the dataset is too small for the requested
// cluster count. It is fatal for the clustering analysis only.
type InsufficientDataError struct {
	Companies int
	MinK      int
}

// Error implements the error interface
func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("[%s] %d companies available but smallest candidate cluster count is %d", ErrTypeInsufficientData, e.Companies, e.MinK)
}

// NewInsufficientDataError creates an insufficient data error
func NewInsufficientDataError(companies, minK int) *InsufficientDataError {
	return &InsufficientDataError{Companies: companies, MinK: minK}
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}
