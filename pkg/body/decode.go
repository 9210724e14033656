package body

import (
	"html"
	"net/http"
	"strings"
)

// Reason explains why a body was not rendered.
type Reason string

// Redaction reasons. ReasonNone marks a rendered body.
const (
	ReasonNone            Reason = ""
	ReasonEncoded         Reason = "encoded"
	ReasonUnsupportedType Reason = "unsupported-content-type"
	ReasonUndecodable     Reason = "undecodable"
)

// supportedTypes are matched as case-sensitive substrings of the raw
// Content-Type value.
var supportedTypes = []string{"text", "json", "xml", "yaml"}

// Rendered is the outcome of Decode: either escaped text, or a redaction
// with a reason and a detail such as the encoding or content type.
type Rendered struct {
	Text   string
	Reason Reason
	Detail string
}

// Redacted reports whether the body was withheld.
func (r Rendered) Redacted() bool { return r.Reason != ReasonNone }

// String returns the HTML-safe text to embed in a message fragment.
func (r Rendered) String() string {
	switch r.Reason {
	case ReasonNone:
		return r.Text
	case ReasonEncoded:
		return "[encoded body: " + html.EscapeString(r.Detail) + "]"
	case ReasonUnsupportedType:
		return "[" + html.EscapeString(r.Detail) + "]"
	default:
		return "[undecodable body: " + html.EscapeString(r.Detail) + "]"
	}
}

// Options controls Decode.
type Options struct {
	// ShowEncoded renders bodies that carry a Content-Encoding instead of
	// redacting them.
	ShowEncoded bool
}

// Decode renders data given its declared Content-Type and Content-Encoding.
// Empty strings mean the header was absent.
func Decode(data []byte, contentType, contentEncoding string, opts Options) Rendered {
	return decode(data, contentType, contentType != "", contentEncoding, opts)
}

// DecodeHeader is Decode reading both values from h. A Content-Type that is
// present but empty is an unsupported type, unlike a missing one.
func DecodeHeader(data []byte, h http.Header, opts Options) Rendered {
	_, hasType := h["Content-Type"]
	return decode(data, h.Get("Content-Type"), hasType, h.Get("Content-Encoding"), opts)
}

func decode(data []byte, contentType string, hasType bool, contentEncoding string, opts Options) Rendered {
	if contentEncoding != "" && !opts.ShowEncoded {
		return Rendered{Reason: ReasonEncoded, Detail: contentEncoding}
	}
	if hasType && !IsSupported(contentType) {
		return Rendered{Reason: ReasonUnsupportedType, Detail: contentType}
	}

	text, err := decodeText(data, contentType, contentEncoding)
	if err != nil {
		return Rendered{Reason: ReasonUndecodable, Detail: err.Error()}
	}
	return Rendered{Text: html.EscapeString(text)}
}

// IsSupported reports whether contentType names a textual payload.
func IsSupported(contentType string) bool {
	for _, s := range supportedTypes {
		if strings.Contains(contentType, s) {
			return true
		}
	}
	return false
}

func decodeText(data []byte, contentType, contentEncoding string) (string, error) {
	plain, err := decompress(data, contentEncoding)
	if err != nil {
		return "", err
	}
	plain, err = toUTF8(plain, contentType)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(plain), "\uFFFD"), nil
}
