// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrEmptySeries     = errors.New("series is empty")
	ErrInvalidWindow   = errors.New("window must be at least 1")
	ErrDivisionByZero  = errors.New("division by zero")
	ErrNoData          = errors.New("no data available")
	ErrUnknownExchange = errors.New("unknown exchange")
	ErrInvalidSymbol   = errors.New("invalid symbol")
	ErrInvalidMonths   = errors.New("months must be between 1 and 60")
	ErrConfigInvalid   = errors.New("invalid configuration")
	ErrRateLimited     = errors.New("rate limited")
	ErrTimeout         = errors.New("operation timed out")
	ErrStoreClosed     = errors.New("store is closed")
)

// FetchError represents an error from the market data source.
type FetchError struct {
	Symbol   string
	Exchange string
	Message  string
	Err      error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch error [%s %s]: %s: %v", e.Symbol, e.Exchange, e.Message, e.Err)
	}
	return fmt.Sprintf("fetch error [%s %s]: %s", e.Symbol, e.Exchange, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a new FetchError.
func NewFetchError(symbol, exchange, message string, err error) *FetchError {
	return &FetchError{
		Symbol:   symbol,
		Exchange: exchange,
		Message:  message,
		Err:      err,
	}
}

// DataError represents a data-related error.
type DataError struct {
	Source  string
	Symbol  string
	Message string
	Err     error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data error [%s] %s: %s: %v", e.Source, e.Symbol, e.Message, e.Err)
	}
	return fmt.Sprintf("data error [%s] %s: %s", e.Source, e.Symbol, e.Message)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// NewDataError creates a new DataError.
func NewDataError(source, symbol, message string, err error) *DataError {
	return &DataError{
		Source:  source,
		Symbol:  symbol,
		Message: message,
		Err:     err,
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
