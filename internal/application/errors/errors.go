// Package apperrors defines application-level error types.
package apperrors

import (
	"fmt"
	"strings"
)

// ValidationError indicates the bridge configuration failed validation.
type ValidationError struct {
	Field   string   // Field that failed validation
	Message string   // Error message
	Details []string // Additional details
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s: %s:\n  - %s", e.Field, e.Message, strings.Join(e.Details, "\n  - "))
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string, details ...string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Details: details,
	}
}

// NamespaceError indicates a namespace could not be built or mounted.
type NamespaceError struct {
	Cause   error
	Plugin  string
	Mount   string
	Message string
}

func (e *NamespaceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("namespace %s (%s): %s: %v", e.Mount, e.Plugin, e.Message, e.Cause)
	}
	return fmt.Sprintf("namespace %s (%s): %s", e.Mount, e.Plugin, e.Message)
}

func (e *NamespaceError) Unwrap() error {
	return e.Cause
}

// NewNamespaceError creates a new namespace error.
func NewNamespaceError(plugin, mount, message string, cause error) *NamespaceError {
	return &NamespaceError{
		Plugin:  plugin,
		Mount:   mount,
		Message: message,
		Cause:   cause,
	}
}

// GrantError indicates a namespace was not granted.
type GrantError struct {
	Reason   string
	Required []string
}

func (e *GrantError) Error() string {
	return fmt.Sprintf("grant error: %s (%s)", e.Reason, strings.Join(e.Required, ", "))
}

// NewGrantError creates a new grant error.
func NewGrantError(reason string, required ...string) *GrantError {
	return &GrantError{
		Reason:   reason,
		Required: required,
	}
}

// ConfigurationError indicates system config or setup issue.
type ConfigurationError struct {
	Cause   error
	Aspect  string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("configuration error (%s): %s: %v", e.Aspect, e.Message, e.Cause)
	}
	return fmt.Sprintf("configuration error (%s): %s", e.Aspect, e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// NewConfigurationError creates a new configuration error.
func NewConfigurationError(aspect, message string, cause error) *ConfigurationError {
	return &ConfigurationError{
		Aspect:  aspect,
		Message: message,
		Cause:   cause,
	}
}
