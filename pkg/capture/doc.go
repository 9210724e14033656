// Package capture turns HTTP exchanges into pairs of sequence messages.
//
// An Interceptor wraps either side of an HTTP call:
//
//   - Middleware wraps an http.Handler (inbound traffic)
//   - Transport wraps an http.RoundTripper (outbound traffic)
//
// For every exchange it emits a request message before the wrapped handler
// runs and a response message after it returns. Bodies are buffered once and
// replayed, so the handler and the caller see exactly the bytes they would
// have seen without the interceptor.
//
//	sink := sequence.NewMemorySink(0)
//	ic, err := capture.New(sink, id.NewULIDGenerator(), capture.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	http.ListenAndServe(":8080", ic.Middleware(app))
//
// Instrumentation failures (unreadable bodies, sink errors) are logged and
// never change the status, headers or body delivered to the caller. Errors
// and panics from the wrapped handler propagate unchanged.
package capture
