package body

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// MaxDecodedSize caps how much a compressed payload may expand to.
const MaxDecodedSize = 10 * 1024 * 1024

var errTooLarge = fmt.Errorf("decoded body exceeds %d bytes", MaxDecodedSize)

var zstdDecoders = sync.Pool{
	New: func() any {
		d, _ := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderMaxMemory(MaxDecodedSize),
		)
		return d
	},
}

// decompress expands data according to a Content-Encoding value. Unknown
// encodings are treated as identity.
func decompress(data []byte, encoding string) ([]byte, error) {
	var (
		out []byte
		err error
	)

	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "gzip", "x-gzip":
		out, err = gunzip(data)
	case "zip":
		out, err = unzipFirst(data)
	case "deflate":
		out, err = inflate(data)
	case "zstd":
		out, err = unzstd(data)
	default:
		return data, nil
	}

	if err != nil {
		return nil, &DecodingError{Stage: "content-encoding", Value: encoding, Err: err}
	}
	return out, nil
}

func gunzip(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() { _ = zr.Close() }()
	return readLimited(zr)
}

// unzipFirst returns the contents of the first regular file in a zip
// archive. An archive without files decodes to nothing.
func unzipFirst(data []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer func() { _ = rc.Close() }()
		return readLimited(rc)
	}
	return nil, nil
}

// inflate accepts both zlib-wrapped and raw deflate streams; servers send
// either under "deflate".
func inflate(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err == nil {
		defer func() { _ = zr.Close() }()
		return readLimited(zr)
	}

	fr := flate.NewReader(bytes.NewReader(data))
	defer func() { _ = fr.Close() }()
	return readLimited(fr)
}

func unzstd(data []byte) ([]byte, error) {
	dec, ok := zstdDecoders.Get().(*zstd.Decoder)
	if !ok || dec == nil {
		return nil, errors.New("zstd decoder unavailable")
	}
	defer zstdDecoders.Put(dec)
	return dec.DecodeAll(data, nil)
}

func readLimited(r io.Reader) ([]byte, error) {
	out, err := io.ReadAll(io.LimitReader(r, MaxDecodedSize+1))
	if err != nil {
		return nil, err
	}
	if len(out) > MaxDecodedSize {
		return nil, errTooLarge
	}
	return out, nil
}
