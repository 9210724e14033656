package capture

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter selects exchanges by path and host glob patterns. Paths use
// doublestar syntax ("/api/**"); hosts are matched case-insensitively
// without their port.
//
// Precedence:
//  1. matching any exclude pattern skips the exchange
//  2. if include patterns exist, one of them must match
//  3. otherwise the exchange is captured
type Filter struct {
	IncludePaths []string `yaml:"includePaths,omitempty" json:"includePaths,omitempty"`
	ExcludePaths []string `yaml:"excludePaths,omitempty" json:"excludePaths,omitempty"`
	IncludeHosts []string `yaml:"includeHosts,omitempty" json:"includeHosts,omitempty"`
	ExcludeHosts []string `yaml:"excludeHosts,omitempty" json:"excludeHosts,omitempty"`
}

// Validate reports the first malformed pattern.
func (f *Filter) Validate() error {
	if f == nil {
		return nil
	}
	for _, group := range [][]string{f.IncludePaths, f.ExcludePaths, f.IncludeHosts, f.ExcludeHosts} {
		for _, p := range group {
			if !doublestar.ValidatePattern(p) {
				return fmt.Errorf("capture: invalid filter pattern %q", p)
			}
		}
	}
	return nil
}

// Allows reports whether r should be captured.
func (f *Filter) Allows(r *http.Request) bool {
	if f == nil {
		return true
	}
	host := strings.ToLower(requestHost(r))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	path := ""
	if r.URL != nil {
		path = r.URL.Path
	}

	if matchAny(f.ExcludeHosts, host, true) || matchAny(f.ExcludePaths, path, false) {
		return false
	}
	if len(f.IncludeHosts) > 0 && !matchAny(f.IncludeHosts, host, true) {
		return false
	}
	if len(f.IncludePaths) > 0 && !matchAny(f.IncludePaths, path, false) {
		return false
	}
	return true
}

func matchAny(patterns []string, s string, fold bool) bool {
	for _, p := range patterns {
		if fold {
			p = strings.ToLower(p)
		}
		if ok, err := doublestar.Match(p, s); err == nil && ok {
			return true
		}
	}
	return false
}

// requestHost prefers the Host field and falls back to the URL host.
func requestHost(r *http.Request) string {
	if r.Host != "" {
		return r.Host
	}
	if r.URL != nil {
		return r.URL.Host
	}
	return ""
}
