package capture

import (
	"bufio"
	"bytes"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/lsd-consulting/lsd-interceptors-go/pkg/body"
	"github.com/lsd-consulting/lsd-interceptors-go/pkg/outcome"
)

// Middleware wraps next so that every exchange it serves is captured.
//
// The response is buffered until next returns, so the response message is
// emitted before anything reaches the client. Handler panics are re-raised
// after whatever the handler wrote has been passed on. A handler that
// panics before writing leaves the status to whatever recovers the panic.
func (i *Interceptor) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !i.cfg.Filter.Allows(r) {
			next.ServeHTTP(w, r)
			return
		}

		timer := outcome.StartTimer(i.cfg.Clock)

		reqBody, replay, err := body.Buffer(r.Body)
		r.Body = replay
		if err != nil {
			// The handler still gets the bytes that arrived, followed by
			// the read error.
			i.fail(nil, StageRequestBody, err)
			next.ServeHTTP(w, r)
			return
		}

		ex := i.begin(r, reqBody, timer)
		i.emit(ex, StageEmitRequest, i.requestMessage(ex))

		rec := newResponseRecorder(w)
		completed := false
		defer func() {
			if completed {
				return
			}
			i.fail(ex, StageDownstream, errors.New("handler panicked"))
			if rec.wroteHeader {
				rec.flush()
			}
		}()

		next.ServeHTTP(rec, r)
		completed = true

		if rec.hijacked {
			i.finish(ex, http.StatusSwitchingProtocols, rec.snapshot(), nil)
			return
		}
		i.finish(ex, rec.statusCode(), rec.snapshot(), rec.body.Bytes())
		rec.flush()
	})
}

// responseRecorder buffers a handler's response so it can be captured
// before being written to the real ResponseWriter.
type responseRecorder struct {
	w           http.ResponseWriter
	header      http.Header
	sent        http.Header
	status      int
	wroteHeader bool
	hijacked    bool
	flushed     bool
	body        bytes.Buffer
}

func newResponseRecorder(w http.ResponseWriter) *responseRecorder {
	return &responseRecorder{w: w, header: http.Header{}}
}

func (rr *responseRecorder) Header() http.Header { return rr.header }

func (rr *responseRecorder) WriteHeader(code int) {
	if rr.wroteHeader || rr.hijacked {
		return
	}
	// Informational responses other than 101 go out immediately, as they
	// would from a plain ResponseWriter.
	if code >= 100 && code < 200 && code != http.StatusSwitchingProtocols {
		copyHeader(rr.w.Header(), rr.header)
		rr.w.WriteHeader(code)
		return
	}
	rr.status = code
	rr.wroteHeader = true
	rr.sent = rr.header.Clone()
}

func (rr *responseRecorder) Write(b []byte) (int, error) {
	if rr.hijacked {
		return 0, http.ErrHijacked
	}
	if !rr.wroteHeader {
		rr.WriteHeader(http.StatusOK)
	}
	return rr.body.Write(b)
}

// Flush is a no-op: the body is released once the handler returns.
func (rr *responseRecorder) Flush() {}

// Unwrap exposes the real writer to http.ResponseController for deadlines
// and full duplex. Flush and Hijack stay on the recorder.
func (rr *responseRecorder) Unwrap() http.ResponseWriter { return rr.w }

// Hijack hands the connection to the handler. Nothing buffered so far is
// written afterwards.
func (rr *responseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := rr.w.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	conn, buf, err := hj.Hijack()
	if err == nil {
		rr.hijacked = true
	}
	return conn, buf, err
}

func (rr *responseRecorder) statusCode() int {
	if !rr.wroteHeader {
		return http.StatusOK
	}
	return rr.status
}

// snapshot returns the headers as they stood when the status was written.
func (rr *responseRecorder) snapshot() http.Header {
	if rr.sent != nil {
		return rr.sent
	}
	return rr.header.Clone()
}

// flush writes status, headers, body and trailers to the real writer.
func (rr *responseRecorder) flush() {
	if rr.hijacked || rr.flushed {
		return
	}
	rr.flushed = true

	sent := rr.snapshot()
	copyHeader(rr.w.Header(), sent)
	rr.w.WriteHeader(rr.statusCode())
	if rr.body.Len() > 0 {
		_, _ = rr.w.Write(rr.body.Bytes())
	}

	// Trailers are whatever was declared up front or set with the
	// trailer prefix after the header was written.
	declared := make(map[string]bool)
	for _, v := range sent.Values("Trailer") {
		for _, name := range strings.Split(v, ",") {
			declared[http.CanonicalHeaderKey(strings.TrimSpace(name))] = true
		}
	}
	for k, v := range rr.header {
		if declared[k] || strings.HasPrefix(k, http.TrailerPrefix) {
			rr.w.Header()[k] = v
		}
	}
}

func copyHeader(dst, src http.Header) {
	for k, v := range src {
		dst[k] = append([]string(nil), v...)
	}
}
