package sequence

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
)

// WriterSink writes messages as JSON lines.
type WriterSink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewWriterSink returns a sink encoding to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{enc: json.NewEncoder(w)}
}

// NewStdoutSink returns a sink writing to stdout.
func NewStdoutSink() *WriterSink {
	return NewWriterSink(os.Stdout)
}

// Capture writes each message on its own line.
func (s *WriterSink) Capture(msgs ...Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.enc == nil {
		return fmt.Errorf("%w: writer closed", ErrSinkUnavailable)
	}
	for _, m := range msgs {
		if err := s.enc.Encode(m); err != nil {
			return fmt.Errorf("sequence: encode message %s: %w", m.ID, err)
		}
	}
	return nil
}

// FileSink appends JSON lines to a file.
type FileSink struct {
	*WriterSink
	file *os.File
}

// NewFileSink opens path for appending, creating it if needed.
func NewFileSink(path string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSinkUnavailable, err)
	}
	return &FileSink{WriterSink: NewWriterSink(f), file: f}, nil
}

// Close flushes and closes the file. Later captures fail.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}
	_ = s.file.Sync()
	err := s.file.Close()
	s.file = nil
	s.enc = nil
	return err
}

var (
	_ Sink      = (*WriterSink)(nil)
	_ Sink      = (*FileSink)(nil)
	_ io.Closer = (*FileSink)(nil)
)
