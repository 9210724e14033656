package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/lsd-consulting/lsd-interceptors-go/internal/id"
	"github.com/lsd-consulting/lsd-interceptors-go/pkg/admin"
	"github.com/lsd-consulting/lsd-interceptors-go/pkg/capture"
	"github.com/lsd-consulting/lsd-interceptors-go/pkg/config"
	"github.com/lsd-consulting/lsd-interceptors-go/pkg/metrics"
	"github.com/lsd-consulting/lsd-interceptors-go/pkg/sequence"
)

// pipeline is everything the proxy command runs: the capturing reverse
// proxy, the sinks behind it and the admin API over them.
type pipeline struct {
	sinks   *sequence.MultiSink
	memory  *sequence.MemorySink
	metrics *metrics.Metrics

	proxy http.Handler
	admin http.Handler
}

func newPipeline(cfg *config.Config, log *slog.Logger, stdout io.Writer) (*pipeline, error) {
	upstream, err := url.Parse(cfg.Upstream)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream: %w", err)
	}

	p := &pipeline{
		sinks:   sequence.NewMultiSink(),
		memory:  sequence.NewMemorySink(cfg.MemoryLimit),
		metrics: metrics.New(metrics.WithRuntime()),
	}
	p.sinks.Add(p.memory)

	switch cfg.Output {
	case "":
	case config.StdoutOutput:
		p.sinks.Add(sequence.NewWriterSink(stdout))
	default:
		file, err := sequence.NewFileSink(cfg.Output)
		if err != nil {
			return nil, err
		}
		p.sinks.Add(file)
	}

	if err := p.metrics.TrackStored(p.memory.Count); err != nil {
		return nil, errors.Join(err, p.sinks.Close())
	}

	ic, err := capture.New(p.sinks, id.NewULIDGenerator(), cfg.Capture(),
		capture.WithLogger(log.With("component", "capture")),
		capture.WithObserver(p.metrics),
	)
	if err != nil {
		return nil, errors.Join(err, p.sinks.Close())
	}

	p.proxy = ic.Middleware(newReverseProxy(upstream, log))
	if cfg.Admin != "" {
		p.admin = admin.New(p.memory,
			admin.WithLogger(log.With("component", "admin")),
			admin.WithMetrics(p.metrics.Handler()),
		)
	}
	return p, nil
}

func newReverseProxy(upstream *url.URL, log *slog.Logger) *httputil.ReverseProxy {
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(upstream)
			pr.SetXForwarded()
			// Keep the caller's Host so the callee name survives the hop.
			pr.Out.Host = pr.In.Host
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.Warn("upstream request failed", "method", r.Method, "path", r.URL.Path, "error", err)
			w.WriteHeader(http.StatusBadGateway)
		},
	}
}

func (p *pipeline) Close() error {
	return p.sinks.Close()
}
