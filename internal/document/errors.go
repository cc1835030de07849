package document

import "fmt"

// FormatError means the raw input could not be parsed as the document
// schema at all. It is recoverable: callers fall back to delivering the
// original text as a plain message.
type FormatError struct {
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("document format: %s: %v", e.Reason, e.Err)
	}
	return "document format: " + e.Reason
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// SchemaError means the document object is structurally invalid, most
// commonly an unrecognized block type. It aborts the render attempt.
type SchemaError struct {
	Reason string
}

func (e *SchemaError) Error() string {
	return "document schema: " + e.Reason
}

// RenderBackendError wraps a single block's render failure. It is caught
// at the block boundary; the block degrades to a textual representation
// and the rest of the document still renders.
type RenderBackendError struct {
	Block string
	Err   error
}

func (e *RenderBackendError) Error() string {
	return fmt.Sprintf("render %s block: %v", e.Block, e.Err)
}

func (e *RenderBackendError) Unwrap() error {
	return e.Err
}
