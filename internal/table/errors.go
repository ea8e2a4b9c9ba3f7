package table

import (
	"fmt"
	"strings"
)

// FormatError reports a file or export format that is not recognised.
type FormatError struct {
	Name      string   // file name or format name as given
	Supported []string // recognised alternatives, if known
}

func (e *FormatError) Error() string {
	msg := fmt.Sprintf("unsupported format %q", e.Name)
	if len(e.Supported) > 0 {
		msg += " (supported: " + strings.Join(e.Supported, ", ") + ")"
	}
	return msg
}

// ParseError reports bytes that could not be decoded into a table.
type ParseError struct {
	Name string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("error reading file %s: %v", e.Name, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// InsufficientInputError is returned when fewer than two tables are merged.
type InsufficientInputError struct {
	Got int
}

func (e *InsufficientInputError) Error() string {
	return fmt.Sprintf("at least two tables are required for merging, got %d", e.Got)
}

// MergeError reports a failure while projecting or joining. Step is the
// index of the table being merged in, or -1 when the failure is not tied to
// a single table.
type MergeError struct {
	Step int
	Err  error
}

func (e *MergeError) Error() string {
	if e.Step < 0 {
		return fmt.Sprintf("error merging tables: %v", e.Err)
	}
	return fmt.Sprintf("error merging table %d: %v", e.Step, e.Err)
}

func (e *MergeError) Unwrap() error {
	return e.Err
}
