// Package errors provides custom error types for flowtag.
// Item-level failures (linkage gaps, fetch and apply errors) are typed so the
// batch driver can classify them, while configuration errors stop a run
// before any workflow is touched.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is and As mirror the standard library so callers need a single import.
var (
	Is   = errors.Is
	As   = errors.As
	Join = errors.Join
)

// Common sentinel errors
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrAPIKeyRequired indicates that an API key is required but not provided
	ErrAPIKeyRequired = errors.New("API key required")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrLinkageGap indicates a deployed workflow has no source definition
	ErrLinkageGap = errors.New("linkage gap")

	// ErrFetch indicates the current remote record could not be read
	ErrFetch = errors.New("fetch failed")

	// ErrApply indicates the remote store rejected a write
	ErrApply = errors.New("apply failed")

	// ErrConfig indicates missing or invalid configuration
	ErrConfig = errors.New("configuration error")
)

// MaxBodyLen bounds how much of a response body is kept for diagnostics.
const MaxBodyLen = 100

// Truncate shortens s to at most n bytes without splitting a UTF-8 sequence.
func Truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// APIError represents a non-success response from the workflow API.
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error from %s (status %d): %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error from %s: %s", e.Endpoint, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *APIError) Is(target error) bool {
	return e.StatusCode == 404 && target == ErrNotFound
}

// NewAPIError creates a new APIError
func NewAPIError(endpoint string, statusCode int, message string) *APIError {
	return &APIError{
		Endpoint:   endpoint,
		StatusCode: statusCode,
		Message:    message,
	}
}

// ConfigError represents a configuration error. It is fatal at startup.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// LinkageGapError reports a deployed workflow whose name matches no source file.
type LinkageGapError struct {
	Name     string
	RemoteID string
}

// Error implements the error interface
func (e *LinkageGapError) Error() string {
	return fmt.Sprintf("no source path for workflow %q (ID: %s)", e.Name, e.RemoteID)
}

// Is implements errors.Is support
func (e *LinkageGapError) Is(target error) bool {
	return target == ErrLinkageGap
}

// FetchError reports that the current remote record could not be read.
type FetchError struct {
	RemoteID   string
	StatusCode int
	Body       string
	Err        error
}

// Error implements the error interface
func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to get workflow %s: HTTP %d: %s", e.RemoteID, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("failed to get workflow %s: %v", e.RemoteID, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}

// NewFetchError creates a FetchError, truncating the body.
func NewFetchError(remoteID string, statusCode int, body string, err error) *FetchError {
	return &FetchError{
		RemoteID:   remoteID,
		StatusCode: statusCode,
		Body:       Truncate(body, MaxBodyLen),
		Err:        err,
	}
}

// ApplyError reports a rejected write. HTTP writes carry a status and body,
// database writes carry the statements that failed.
type ApplyError struct {
	RemoteID   string
	StatusCode int
	Body       string
	Statements []string
	Err        error
}

// Error implements the error interface
func (e *ApplyError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
	case len(e.Statements) > 0:
		msg := fmt.Sprintf("%d statement(s) failed for workflow %s", len(e.Statements), e.RemoteID)
		if e.Err != nil {
			msg += ": " + e.Err.Error()
		}
		return msg
	case e.Err != nil:
		return fmt.Sprintf("failed to update workflow %s: %v", e.RemoteID, e.Err)
	default:
		return fmt.Sprintf("failed to update workflow %s", e.RemoteID)
	}
}

// Unwrap implements errors.Unwrap
func (e *ApplyError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ApplyError) Is(target error) bool {
	return target == ErrApply
}

// NewHTTPApplyError creates an ApplyError from a rejected HTTP write.
func NewHTTPApplyError(remoteID string, statusCode int, body string) *ApplyError {
	return &ApplyError{
		RemoteID:   remoteID,
		StatusCode: statusCode,
		Body:       Truncate(body, MaxBodyLen),
	}
}

// ParseWarning describes a source file excluded from the index.
// It is not returned as an error by the scan; it is collected and logged.
type ParseWarning struct {
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseWarning) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("could not parse %s: %s: %v", e.File, e.Message, e.Err)
	}
	return fmt.Sprintf("could not parse %s: %s", e.File, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseWarning) Unwrap() error {
	return e.Err
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsLinkageGap checks if an error is a linkage gap
func IsLinkageGap(err error) bool {
	return errors.Is(err, ErrLinkageGap)
}

// IsFetchError checks if an error is a fetch failure
func IsFetchError(err error) bool {
	return errors.Is(err, ErrFetch)
}

// IsApplyError checks if an error is an apply failure
func IsApplyError(err error) bool {
	return errors.Is(err, ErrApply)
}

// IsConfigError checks if an error is a configuration error
func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfig)
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml"
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "open", "walk"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// ResourceError represents an error during resource operations
type ResourceError struct {
	Operation string // "create", "update", "delete", "fetch"
	Resource  string // "workflow", "tag", "policy"
	ID        string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ResourceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to %s %s %s: %s", e.Operation, e.Resource, e.ID, e.Message)
	}
	return fmt.Sprintf("failed to %s %s: %s", e.Operation, e.Resource, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ResourceError) Unwrap() error {
	return e.Err
}

// NewResourceError creates a new ResourceError
func NewResourceError(operation, resource, id string, err error) *ResourceError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ResourceError{
		Operation: operation,
		Resource:  resource,
		ID:        id,
		Message:   message,
		Err:       err,
	}
}

// ProcessError represents an error from an external process or command
type ProcessError struct {
	Operation string // What operation was being performed
	Command   string // The command that was executed
	Output    string // Stderr output from the process
	ExitCode  int    // Exit code if available
	Err       error  // Underlying error
}

// Error implements the error interface
func (e *ProcessError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("process error during %s (command: %s): %v\nOutput: %s", e.Operation, e.Command, e.Err, strings.TrimSpace(e.Output))
	}
	return fmt.Sprintf("process error during %s (command: %s): %v", e.Operation, e.Command, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *ProcessError) Unwrap() error {
	return e.Err
}

// NewProcessError creates a new ProcessError
func NewProcessError(operation, command, output string, err error) *ProcessError {
	return &ProcessError{
		Operation: operation,
		Command:   command,
		Output:    output,
		Err:       err,
	}
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapResource wraps an error as a ResourceError
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return NewResourceError(operation, resource, id, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}
