package body

import (
	"bytes"
	"io"
	"net/http"
)

// Buffer drains rc once and returns its bytes together with a fresh reader
// yielding the same bytes. The original stream is closed.
//
// If the stream fails part way, Buffer returns the bytes read so far, a
// *StreamReadError, and a reader that replays those bytes and then fails
// with the original error, which is exactly what an unobserved consumer
// would have seen.
func Buffer(rc io.ReadCloser) ([]byte, io.ReadCloser, error) {
	if rc == nil || rc == http.NoBody {
		return nil, http.NoBody, nil
	}

	data, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		return data, io.NopCloser(io.MultiReader(bytes.NewReader(data), failingReader{err})), &StreamReadError{Read: len(data), Err: err}
	}
	return data, Replay(data), nil
}

// Replay returns a new reader over data. Empty data replays as http.NoBody.
func Replay(data []byte) io.ReadCloser {
	if len(data) == 0 {
		return http.NoBody
	}
	return io.NopCloser(bytes.NewReader(data))
}

// ReplayFunc returns a function suitable for http.Request.GetBody.
func ReplayFunc(data []byte) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		return Replay(data), nil
	}
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }
