// Package errors provides standardized error handling for dropsort.
// It defines the error types, kinds, and helper functions used for
// consistent error creation, wrapping, and inspection across the
// application.
package errors

import (
	"errors"
	"fmt"
)

// Standard errors package functions re-exported for convenience
var (
	// Unwrap unwraps an error to access the underlying error
	Unwrap = errors.Unwrap
	// Is reports whether any error in err's chain matches target
	Is = errors.Is
	// As finds the first error in err's chain that matches target
	As = errors.As
)

// Common error values for frequently occurring conditions
var (
	ErrFileNotFound  = NewFileError("file not found", "", FileNotFound, nil)
	ErrFileAccess    = NewFileError("file access denied", "", FileAccessDenied, nil)
	ErrInvalidPath   = NewFileError("invalid file path", "", InvalidPath, nil)
	ErrInvalidConfig = NewConfigError("invalid configuration", "", InvalidConfig, nil)
	ErrWatchFailed   = NewWatchError("watch failed", "", WatchFailed, nil)
)

// ErrorKind represents the kind of error
type ErrorKind int

// Error kinds
const (
	Unknown ErrorKind = iota
	// File error kinds
	FileNotFound
	FileAccessDenied
	InvalidPath
	FileOperationFailed
	// Config error kinds
	InvalidConfig
	ConfigNotFound
	// Watch error kinds
	WatchFailed
	WatchAlreadyRunning
	// Journal error kinds
	JournalOpenFailed
	JournalOperationFailed
)

// ApplicationError is the base error type for all application errors
type ApplicationError struct {
	msg  string
	err  error
	kind ErrorKind
}

// Error returns the error message
func (e *ApplicationError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

// Unwrap returns the wrapped error
func (e *ApplicationError) Unwrap() error {
	return e.err
}

// Kind returns the kind of error
func (e *ApplicationError) Kind() ErrorKind {
	return e.kind
}

// FileError represents errors raised by file operations
type FileError struct {
	ApplicationError
	path string
}

// NewFileError creates a new file error
func NewFileError(msg string, path string, kind ErrorKind, err error) *FileError {
	return &FileError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		path: path,
	}
}

// Error returns the file error message
func (e *FileError) Error() string {
	if e.path != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.path, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.path)
	}
	return e.ApplicationError.Error()
}

// Path returns the file path associated with the error
func (e *FileError) Path() string {
	return e.path
}

// ConfigError represents errors related to configuration
type ConfigError struct {
	ApplicationError
	param string
}

// NewConfigError creates a new configuration error
func NewConfigError(msg string, param string, kind ErrorKind, err error) *ConfigError {
	return &ConfigError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		param: param,
	}
}

// Error returns the config error message
func (e *ConfigError) Error() string {
	if e.param != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.param, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.param)
	}
	return e.ApplicationError.Error()
}

// Param returns the configuration parameter associated with the error
func (e *ConfigError) Param() string {
	return e.param
}

// WatchError represents errors raised by the watch daemon
type WatchError struct {
	ApplicationError
	dir string
}

// NewWatchError creates a new watch error
func NewWatchError(msg string, dir string, kind ErrorKind, err error) *WatchError {
	return &WatchError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		dir: dir,
	}
}

// Error returns the watch error message
func (e *WatchError) Error() string {
	if e.dir != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.dir, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.dir)
	}
	return e.ApplicationError.Error()
}

// Dir returns the watched directory associated with the error
func (e *WatchError) Dir() string {
	return e.dir
}

// JournalError represents errors raised by the move journal
type JournalError struct {
	ApplicationError
	operation string
}

// NewJournalError creates a new journal error
func NewJournalError(msg string, err error) *JournalError {
	return &JournalError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: JournalOperationFailed,
		},
	}
}

// NewJournalOpenError creates an error for a journal that cannot be
// opened or initialized
func NewJournalOpenError(msg string, err error) *JournalError {
	return &JournalError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: JournalOpenFailed,
		},
	}
}

// WithOperation adds operation information to the journal error
func (e *JournalError) WithOperation(operation string) *JournalError {
	e.operation = operation
	return e
}

// Error returns the journal error message
func (e *JournalError) Error() string {
	if e.operation != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: operation=%s: %v", e.msg, e.operation, e.err)
		}
		return fmt.Sprintf("%s: operation=%s", e.msg, e.operation)
	}
	return e.ApplicationError.Error()
}

// Operation returns the journal operation associated with the error
func (e *JournalError) Operation() string {
	return e.operation
}

// New creates a new error with a message
func New(msg string) error {
	return &ApplicationError{
		msg:  msg,
		kind: Unknown,
	}
}

// Newf creates a new error with a formatted message
func Newf(format string, args ...interface{}) error {
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		kind: Unknown,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  msg,
		err:  err,
		kind: Unknown,
	}
}

// Wrapf wraps an existing error with additional formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		err:  err,
		kind: Unknown,
	}
}

// IsFileNotFound checks if the error is a file not found error
func IsFileNotFound(err error) bool {
	var fileErr *FileError
	if errors.As(err, &fileErr) {
		return fileErr.Kind() == FileNotFound
	}
	return false
}

// IsFileAccessDenied checks if the error is a file access denied error
func IsFileAccessDenied(err error) bool {
	var fileErr *FileError
	if errors.As(err, &fileErr) {
		return fileErr.Kind() == FileAccessDenied
	}
	return false
}

// IsInvalidConfig checks if the error is an invalid configuration error
func IsInvalidConfig(err error) bool {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr.Kind() == InvalidConfig
	}
	return false
}

// IsWatchError checks if the error came from the watch daemon
func IsWatchError(err error) bool {
	var watchErr *WatchError
	return errors.As(err, &watchErr)
}

// IsJournalError checks if the error came from the move journal
func IsJournalError(err error) bool {
	var journalErr *JournalError
	return errors.As(err, &journalErr)
}
