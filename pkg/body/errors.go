package body

import "fmt"

// StreamReadError reports a body that could not be fully drained.
type StreamReadError struct {
	// Read is the number of bytes received before the failure.
	Read int
	Err  error
}

func (e *StreamReadError) Error() string {
	return fmt.Sprintf("body: stream read failed after %d bytes: %v", e.Read, e.Err)
}

func (e *StreamReadError) Unwrap() error { return e.Err }

// DecodingError reports a payload whose declared encoding or charset could
// not be decoded.
type DecodingError struct {
	// Stage is "content-encoding" or "charset".
	Stage string
	// Value is the declared encoding or charset.
	Value string
	Err   error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("body: cannot decode %s %q: %v", e.Stage, e.Value, e.Err)
}

func (e *DecodingError) Unwrap() error { return e.Err }
