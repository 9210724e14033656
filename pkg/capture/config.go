package capture

import (
	"log/slog"

	"github.com/lsd-consulting/lsd-interceptors-go/pkg/outcome"
	"github.com/lsd-consulting/lsd-interceptors-go/pkg/participant"
)

// Config holds the swappable strategies used for each exchange. Nil
// fields fall back to the defaults.
type Config struct {
	// ShowEncodedBody renders bodies sent with a Content-Encoding instead
	// of replacing them with a marker.
	ShowEncodedBody bool

	// SourceName extracts the raw caller name. Default: User-Agent.
	SourceName participant.Resolver

	// TargetName extracts the raw callee name. Default: Host.
	TargetName participant.Resolver

	// Normalize cleans raw names into participant names.
	Normalize func(string) string

	// Filter selects which exchanges are captured. Nil captures all.
	Filter *Filter

	// Clock is used for timestamps and durations. Default: time.Now.
	Clock outcome.Clock
}

// DefaultConfig returns the default strategies.
func DefaultConfig() *Config {
	return &Config{
		SourceName: participant.SourceName,
		TargetName: participant.TargetName,
		Normalize:  participant.Normalize,
	}
}

func (c *Config) withDefaults() Config {
	out := *DefaultConfig()
	if c == nil {
		return out
	}
	out.ShowEncodedBody = c.ShowEncodedBody
	out.Filter = c.Filter
	out.Clock = c.Clock
	if c.SourceName != nil {
		out.SourceName = c.SourceName
	}
	if c.TargetName != nil {
		out.TargetName = c.TargetName
	}
	if c.Normalize != nil {
		out.Normalize = c.Normalize
	}
	return out
}

// Option configures an Interceptor.
type Option func(*Interceptor)

// WithLogger sets the logger used for instrumentation failures.
func WithLogger(l *slog.Logger) Option {
	return func(i *Interceptor) {
		if l != nil {
			i.log = l
		}
	}
}

// WithObserver registers an Observer for exchange outcomes.
func WithObserver(o Observer) Option {
	return func(i *Interceptor) {
		if o != nil {
			i.obs = o
		}
	}
}
