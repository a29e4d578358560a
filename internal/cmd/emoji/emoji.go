// Package emoji provides symbol constants for CLI output.
package emoji

// Symbols used as status markers in tables and summary lines.
const (
	// Success marks an applied item or a completed operation.
	Success = "✓"

	// Error marks a failed item.
	Error = "✗"

	// Warning marks non-fatal problems such as unreadable definitions.
	Warning = "!"

	// Optional marks a skipped item.
	Optional = "-"

	// Info marks simulated changes and informational lines.
	Info = "i"
)
