// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Metadata operations
	OpReadMetadata Op = "read metadata"
	OpIdentifyFile Op = "identify file"

	// Library operations
	OpScanDirectory Op = "scan directory"

	// Configuration
	OpLoadConfig Op = "load config"

	// Output
	OpEncodeOutput Op = "encode output"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
