package errors

import (
	"fmt"
	"strings"
	"unicode"
)

// ValidationError reports input that cannot form a consistent network or
// pipeline request, for example an edge that references a node missing from
// an explicit node table.
type ValidationError struct {
	Field  string // What was being validated ("edge", "node", "layouts", ...)
	Value  string // Offending value, if any
	Reason string // Human-readable explanation
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("validation: %s %q: %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// Code returns the error code for this error type.
func (e *ValidationError) Code() Code { return ErrCodeValidation }

// Invalid is shorthand for constructing a *ValidationError.
func Invalid(field, value, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Value: value, Reason: fmt.Sprintf(format, args...)}
}

// MissingCoordinateError reports a (node or edge, layout) pair that has no
// coordinate. It breaks the composite-key join, so the run is aborted rather
// than emitting edges with dangling endpoints.
type MissingCoordinateError struct {
	EdgeID   string // Empty when a node row itself is missing
	Layout   string
	Endpoint string // "from", "to" or "node"
	Node     string
}

// Error implements the error interface.
func (e *MissingCoordinateError) Error() string {
	if e.EdgeID == "" {
		return fmt.Sprintf("missing coordinate: node %q has no position in layout %q", e.Node, e.Layout)
	}
	return fmt.Sprintf("missing coordinate: edge %q endpoint %s (node %q) unresolved in layout %q",
		e.EdgeID, e.Endpoint, e.Node, e.Layout)
}

// Code returns the error code for this error type.
func (e *MissingCoordinateError) Code() Code { return ErrCodeMissingCoordinate }

// UnsupportedLayoutError reports a layout name with no registered algorithm.
type UnsupportedLayoutError struct {
	Name      string
	Supported []string
}

// Error implements the error interface.
func (e *UnsupportedLayoutError) Error() string {
	if len(e.Supported) == 0 {
		return fmt.Sprintf("unsupported layout: %q", e.Name)
	}
	return fmt.Sprintf("unsupported layout: %q (must be one of: %s)", e.Name, strings.Join(e.Supported, ", "))
}

// Code returns the error code for this error type.
func (e *UnsupportedLayoutError) Code() Code { return ErrCodeUnsupportedLayout }

// ValidateOutputPath validates an output base path for safety.
// It rejects empty paths and paths containing control characters.
func ValidateOutputPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output path contains invalid control characters")
		}
	}
	return nil
}
