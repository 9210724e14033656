// Package sequence defines the messages emitted for observed exchanges and
// the sinks that receive them.
//
// Every exchange produces two messages: a SYNCHRONOUS request message from
// the caller to the callee, followed by a SYNCHRONOUS_RESPONSE message in
// the opposite direction that carries an arrow colour and the duration.
//
// # Sinks
//
//   - WriterSink: writes messages as JSON lines to any io.Writer
//   - FileSink: a WriterSink appending to a file
//   - MemorySink: a bounded in-memory history with live subscriptions
//   - MultiSink: fans messages out to several sinks
//   - NoOpSink: discards everything
//
// All sinks are safe for concurrent use; messages from overlapping
// exchanges may interleave but each Capture call is applied atomically.
package sequence
