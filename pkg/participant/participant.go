package participant

import (
	"net"
	"net/http"
	"regexp"
	"strings"
)

// Default names used when a request carries no usable identity.
const (
	Anonymous = "Anonymous"
	Unknown   = "Unknown"
)

// Resolver extracts a raw participant name from a request.
type Resolver func(r *http.Request) string

// rule is one textual rewrite. Rules run in table order and each one sees
// the output of the previous rule.
type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

var rules = []rule{
	{regexp.MustCompile(`Apache-HttpClient.*`), "http_client"},
	{regexp.MustCompile(`Go-http-client.*`), "http_client"},
	{regexp.MustCompile(`#.*`), ""},
	{regexp.MustCompile(`\.local.*`), ""},
	{regexp.MustCompile(`:.*`), ""},
	{regexp.MustCompile(`[$,.:]`), ""},
	{regexp.MustCompile(`-`), "_"},
}

// Normalize rewrites a raw header value into a stable participant name.
func Normalize(raw string) string {
	s := raw
	for _, r := range rules {
		s = r.pattern.ReplaceAllLiteralString(s, r.replacement)
	}
	return s
}

// SourceName reads the caller identity from the User-Agent header.
func SourceName(r *http.Request) string {
	return HeaderSource("User-Agent")(r)
}

// TargetName reads the callee identity from the Host header, falling back
// to the first label of the URL host.
func TargetName(r *http.Request) string {
	return HeaderTarget("Host")(r)
}

// HeaderSource returns a Resolver that reads the caller from header, or
// Anonymous when the header is missing or blank.
func HeaderSource(header string) Resolver {
	return func(r *http.Request) string {
		if v := strings.TrimSpace(r.Header.Get(header)); v != "" {
			return v
		}
		return Anonymous
	}
}

// HeaderTarget returns a Resolver that reads the callee from header. When
// header is Host the request's Host field is the value, since net/http
// moves the Host header there. Otherwise a missing header falls back to
// the first label of the request authority, and Unknown when that is
// blank too.
func HeaderTarget(header string) Resolver {
	isHost := http.CanonicalHeaderKey(header) == "Host"
	return func(r *http.Request) string {
		v := r.Header.Get(header)
		if v == "" && isHost {
			v = explicitHost(r)
		}
		if v == "" {
			v = firstLabel(explicitHost(r))
		}
		if v == "" && r.URL != nil {
			v = firstLabel(r.URL.Hostname())
		}
		if strings.TrimSpace(v) == "" {
			return Unknown
		}
		return v
	}
}

// firstLabel returns the leftmost DNS label of host, ignoring any port.
func firstLabel(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	label, _, _ := strings.Cut(host, ".")
	return label
}

// explicitHost returns r.Host only when it was set independently of the
// URL. Outbound requests built with http.NewRequest copy the URL host into
// r.Host, which is not a declared Host header.
func explicitHost(r *http.Request) string {
	if r.URL != nil && r.Host == r.URL.Host {
		return ""
	}
	return r.Host
}
