package shared

import "fmt"

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// Validation error

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Order-related errors

type OrderError struct {
	*DomainError
	OrderID int64
}

func NewOrderError(orderID int64, message string) *OrderError {
	return &OrderError{
		DomainError: &DomainError{Message: fmt.Sprintf("order %d: %s", orderID, message)},
		OrderID:     orderID,
	}
}

// Configuration errors put the run into degraded mode instead of failing it

type ConfigError struct {
	*DomainError
	Setting string
}

func NewConfigError(setting, message string) *ConfigError {
	return &ConfigError{
		DomainError: &DomainError{Message: fmt.Sprintf("config %s: %s", setting, message)},
		Setting:     setting,
	}
}

// Stock-related errors

type MalformedStockError struct {
	*DomainError
	Reason string
}

func NewMalformedStockError(reason string) *MalformedStockError {
	return &MalformedStockError{
		DomainError: &DomainError{Message: fmt.Sprintf("malformed stock record: %s", reason)},
		Reason:      reason,
	}
}
