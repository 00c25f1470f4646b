// Package errors provides standardized error types and helpers for the TextGridTools codebase.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrFormat indicates malformed or unsupported input text
	ErrFormat = errors.New("format error")
	// ErrStructure indicates an edit would violate a tier or grid invariant
	ErrStructure = errors.New("structure violation")
	// ErrNotFound indicates a query outside a tier's populated domain or an unknown tier
	ErrNotFound = errors.New("not found")
	// ErrOverlap indicates a merge of tiers or time ranges would overlap
	ErrOverlap = errors.New("overlap")
	// ErrInsufficientData indicates a computation has no usable input
	ErrInsufficientData = errors.New("insufficient data")
	// ErrUnsupported indicates an unsupported operation or format
	ErrUnsupported = errors.New("unsupported")
	// ErrIO indicates a file or stream operation failed
	ErrIO = errors.New("i/o error")
)

// FormatError represents malformed input text with line context.
// Line is 1-based; zero means the error has no line context.
type FormatError struct {
	Format  string // Format or variant being parsed (e.g., "long", "short", "eaf")
	Line    int    // Physical line number of the offending input
	Message string // Error details
	Err     error  // Underlying error, if any
}

func (e *FormatError) Error() string {
	switch {
	case e.Line > 0 && e.Format != "":
		return fmt.Sprintf("%s: line %d: %s", e.Format, e.Line, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	case e.Format != "":
		return fmt.Sprintf("%s: %s", e.Format, e.Message)
	}
	return e.Message
}

func (e *FormatError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrFormat
}

// StructureError represents a rejected edit that would violate a
// tier or grid invariant (overlap, gap, ordering, domain).
type StructureError struct {
	Op      string // Operation that was rejected (e.g., "add interval", "crop")
	Message string // Why the edit is invalid
	Err     error  // Underlying error, if any
}

func (e *StructureError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

func (e *StructureError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrStructure
}

// NotFoundError represents a failed lookup with context
type NotFoundError struct {
	Kind string // Kind of thing looked up (e.g., "tier", "interval", "point", "grid")
	Key  string // Name or position that was queried
	Err  error  // Underlying error, if any
}

func (e *NotFoundError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s not found: %s", e.Kind, e.Key)
	}
	return fmt.Sprintf("%s not found", e.Kind)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// OverlapError represents a merge or concatenation whose time ranges collide
type OverlapError struct {
	Op      string // Operation that collided (e.g., "merge tiers")
	Message string // Which ranges overlap
	Err     error  // Underlying error, if any
}

func (e *OverlapError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

func (e *OverlapError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrOverlap
}

// InsufficientDataError represents a statistic with no usable aligned units
type InsufficientDataError struct {
	Message string // What was missing
	Err     error  // Underlying error, if any
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %s", e.Message)
}

func (e *InsufficientDataError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInsufficientData
}

// UnsupportedError represents an unsupported feature or format
type UnsupportedError struct {
	Feature string // Feature or format that is unsupported
	Reason  string // Why it's not supported
	Err     error  // Underlying error, if any
}

func (e *UnsupportedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported %s: %s", e.Feature, e.Reason)
	}
	return fmt.Sprintf("unsupported %s", e.Feature)
}

func (e *UnsupportedError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrUnsupported
}

// IOError represents an I/O operation error with context
type IOError struct {
	Operation string // Operation being performed (e.g., "read", "write", "open")
	Path      string // File/resource path involved
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrIO
}

// Is matches ErrIO. Unlike the other error types an IOError always
// carries an underlying error, which Unwrap exposes instead of the
// sentinel.
func (e *IOError) Is(target error) bool {
	return target == ErrIO
}

// Helper functions for creating common errors

// NewFormat creates a FormatError
func NewFormat(format string, line int, message string) *FormatError {
	return &FormatError{
		Format:  format,
		Line:    line,
		Message: message,
	}
}

// NewFormatf creates a FormatError with a formatted message
func NewFormatf(format string, line int, msg string, args ...interface{}) *FormatError {
	return &FormatError{
		Format:  format,
		Line:    line,
		Message: fmt.Sprintf(msg, args...),
	}
}

// NewStructure creates a StructureError
func NewStructure(op, message string) *StructureError {
	return &StructureError{
		Op:      op,
		Message: message,
	}
}

// NewStructuref creates a StructureError with a formatted message
func NewStructuref(op, msg string, args ...interface{}) *StructureError {
	return &StructureError{
		Op:      op,
		Message: fmt.Sprintf(msg, args...),
	}
}

// NewNotFound creates a NotFoundError
func NewNotFound(kind, key string) *NotFoundError {
	return &NotFoundError{
		Kind: kind,
		Key:  key,
	}
}

// NewOverlap creates an OverlapError
func NewOverlap(op, message string) *OverlapError {
	return &OverlapError{
		Op:      op,
		Message: message,
	}
}

// NewInsufficientData creates an InsufficientDataError
func NewInsufficientData(message string) *InsufficientDataError {
	return &InsufficientDataError{
		Message: message,
	}
}

// NewUnsupported creates an UnsupportedError
func NewUnsupported(feature, reason string) *UnsupportedError {
	return &UnsupportedError{
		Feature: feature,
		Reason:  reason,
	}
}

// NewIO creates an IOError
func NewIO(operation, path string, err error) *IOError {
	return &IOError{
		Operation: operation,
		Path:      path,
		Err:       err,
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
