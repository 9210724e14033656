package render

import (
	"fmt"
	"html"
	"net/http"
	"sort"
	"strings"
	"time"
)

// Field is one header name/value pair. A header with several values
// yields one Field per value.
type Field struct {
	Name  string
	Value string
}

// FieldsFromHeader flattens h into fields. Header maps carry no order, so
// names are sorted; the values of one name keep their received order.
func FieldsFromHeader(h http.Header) []Field {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]Field, 0, len(names))
	for _, name := range names {
		values := h[name]
		if len(values) == 0 {
			fields = append(fields, Field{Name: name})
			continue
		}
		for _, v := range values {
			fields = append(fields, Field{Name: name, Value: v})
		}
	}
	return fields
}

// Headers renders the HEADERS section. No fields render as "".
func Headers(fields []Field) string {
	if len(fields) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("<section>\n    <h3>HEADERS</h3>\n    <table>\n")
	for _, f := range fields {
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td></tr>\n", html.EscapeString(f.Name), html.EscapeString(f.Value))
	}
	b.WriteString("    </table>\n</section>")
	return b.String()
}

// RequestView holds what a request fragment shows.
type RequestView struct {
	Source  string
	Target  string
	Method  string
	URI     string
	Headers []Field
	// Body must already be HTML-safe.
	Body string
}

// Request renders the fragment attached to a request message.
func Request(v RequestView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<section>\n    <h3>PATH</h3>\n    <p>%s: %s to (%s)%s</p>\n</section>\n",
		html.EscapeString(v.Source), html.EscapeString(v.Method), html.EscapeString(v.Target), html.EscapeString(v.URI))
	writeHeadersAndBody(&b, v.Headers, v.Body)
	return b.String()
}

// ResponseView holds what a response fragment shows.
type ResponseView struct {
	Source   string
	Target   string
	Duration time.Duration
	Headers  []Field
	// Body must already be HTML-safe.
	Body string
}

// Response renders the fragment attached to a response message. Source and
// Target are those of the request; the section reads target to source.
func Response(v ResponseView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<section>\n    <h3>RESPONSE</h3>\n    <p>%s to %s (%dms)</p>\n</section>\n",
		html.EscapeString(v.Target), html.EscapeString(v.Source), v.Duration.Milliseconds())
	writeHeadersAndBody(&b, v.Headers, v.Body)
	return b.String()
}

func writeHeadersAndBody(b *strings.Builder, fields []Field, body string) {
	if h := Headers(fields); h != "" {
		b.WriteString(h)
		b.WriteString("\n")
	}
	fmt.Fprintf(b, "<section>\n    <h3>BODY</h3>\n    <p>%s</p>\n</section>\n", body)
}
