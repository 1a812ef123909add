// Package errors provides standardized error handling for tagshelf.
// It defines the catalog's error kinds, typed errors carrying the context each
// kind needs, and helpers for consistent creation, wrapping and inspection.
package errors

import (
	"errors"
	"fmt"
)

// Standard errors package errors that we re-export for convenience
var (
	// Unwrap unwraps an error to access the underlying error
	Unwrap = errors.Unwrap
	// Is reports whether any error in err's chain matches target
	Is = errors.Is
	// As finds the first error in err's chain that matches target
	As = errors.As
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
	// Config error kinds
	InvalidConfig
	ConfigNotFound
	// Sidecar error kinds
	ProcessUnavailable
	DriverTerminated
	// Catalog error kinds
	FolderReadError
	RecordParseError
	StaleAddress
	WriteNotConfirmed
)

var kindNames = map[ErrorKind]string{
	Unknown:            "unknown",
	FileNotFound:       "file_not_found",
	FileAccessDenied:   "file_access_denied",
	InvalidPath:        "invalid_path",
	InvalidConfig:      "invalid_config",
	ConfigNotFound:     "config_not_found",
	ProcessUnavailable: "process_unavailable",
	DriverTerminated:   "driver_terminated",
	FolderReadError:    "folder_read_error",
	RecordParseError:   "record_parse_error",
	StaleAddress:       "stale_address",
	WriteNotConfirmed:  "write_not_confirmed",
}

// String returns the snake_case name of the kind
func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Common error constants for frequently occurring errors
var (
	ErrProcessUnavailable = NewSidecarError("sidecar process unavailable", ProcessUnavailable, nil)
	ErrDriverTerminated   = NewSidecarError("sidecar process terminated", DriverTerminated, nil)
	ErrInvalidConfig      = NewConfigError("invalid configuration", "", InvalidConfig, nil)
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

// FileError represents errors related to file and folder paths
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

// SidecarError represents failures of the external metadata process
type SidecarError struct {
	ApplicationError
}

// NewSidecarError creates a new sidecar error
func NewSidecarError(msg string, kind ErrorKind, err error) *SidecarError {
	return &SidecarError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
	}
}

// Is matches sidecar errors by kind so callers can compare against
// ErrProcessUnavailable and ErrDriverTerminated.
func (e *SidecarError) Is(target error) bool {
	t, ok := target.(*SidecarError)
	if !ok {
		return false
	}
	return t.kind == e.kind
}

// FolderError represents a failed bulk read of one folder
type FolderError struct {
	FileError
}

// NewFolderError creates a new folder read error
func NewFolderError(msg string, path string, err error) *FolderError {
	return &FolderError{FileError: *NewFileError(msg, path, FolderReadError, err)}
}

// RecordError represents a single unusable metadata record
type RecordError struct {
	ApplicationError
	folder string
	record int
}

// NewRecordError creates a new record parse error for the record at position
// record in the bulk read of folder.
func NewRecordError(msg string, folder string, record int, err error) *RecordError {
	return &RecordError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: RecordParseError,
		},
		folder: folder,
		record: record,
	}
}

// Error returns the record error message
func (e *RecordError) Error() string {
	base := fmt.Sprintf("%s: %s[%d]", e.msg, e.folder, e.record)
	if e.err != nil {
		return fmt.Sprintf("%s: %v", base, e.err)
	}
	return base
}

// Folder returns the folder whose bulk read contained the record
func (e *RecordError) Folder() string {
	return e.folder
}

// Record returns the position of the record in the bulk read
func (e *RecordError) Record() int {
	return e.record
}

// AddressError represents an address that no longer resolves
type AddressError struct {
	ApplicationError
	folder int
	image  int
}

// NewAddressError creates a new stale address error
func NewAddressError(folder, image int) *AddressError {
	return &AddressError{
		ApplicationError: ApplicationError{
			msg:  "stale address",
			kind: StaleAddress,
		},
		folder: folder,
		image:  image,
	}
}

// Error returns the address error message
func (e *AddressError) Error() string {
	return fmt.Sprintf("%s: {folder:%d image:%d}", e.msg, e.folder, e.image)
}

// Address returns the folder and image indices that failed to resolve
func (e *AddressError) Address() (int, int) {
	return e.folder, e.image
}

// WriteError represents a field write the sidecar did not confirm
type WriteError struct {
	FileError
	field string
}

// NewWriteError creates a new write-not-confirmed error
func NewWriteError(path, field string, err error) *WriteError {
	return &WriteError{
		FileError: *NewFileError("write not confirmed", path, WriteNotConfirmed, err),
		field:     field,
	}
}

// Field returns the metadata field that was being written
func (e *WriteError) Field() string {
	return e.field
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

type kinded interface {
	Kind() ErrorKind
}

// KindOf returns the kind of the first kinded error in err's chain that is not
// Unknown, or Unknown.
func KindOf(err error) ErrorKind {
	for err != nil {
		if k, ok := err.(kinded); ok && k.Kind() != Unknown {
			return k.Kind()
		}
		err = errors.Unwrap(err)
	}
	return Unknown
}

// IsProcessUnavailable checks if the sidecar could not be started
func IsProcessUnavailable(err error) bool {
	return KindOf(err) == ProcessUnavailable
}

// IsDriverTerminated checks if the sidecar died mid-session
func IsDriverTerminated(err error) bool {
	return KindOf(err) == DriverTerminated
}

// IsStaleAddress checks if the error is a stale address error
func IsStaleAddress(err error) bool {
	var addrErr *AddressError
	return errors.As(err, &addrErr)
}

// IsFolderReadError checks if the error is a folder read error
func IsFolderReadError(err error) bool {
	var folderErr *FolderError
	return errors.As(err, &folderErr)
}

// IsInvalidConfig checks if the error is an invalid configuration error
func IsInvalidConfig(err error) bool {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr.Kind() == InvalidConfig
	}
	return false
}
