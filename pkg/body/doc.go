// Package body buffers HTTP bodies for inspection and decides how a captured
// payload is rendered.
//
// # Buffering
//
// Request and response bodies are single-use streams. Buffer drains a body
// exactly once and hands back both a snapshot for rendering and a fresh
// reader for the next consumer, so neither the downstream handler nor the
// original caller can tell the exchange was observed.
//
// # Rendering
//
// Decode applies a fixed policy to a snapshot:
//
//  1. A body under an active Content-Encoding is redacted unless encoded
//     display is enabled.
//  2. A body without a Content-Type, or whose type mentions text, json, xml
//     or yaml, is decompressed, transcoded to UTF-8 and HTML-escaped.
//  3. Anything else is redacted to its content type.
//
// Decoding failures never escape: they become a redacted rendering that
// describes the failure.
package body
