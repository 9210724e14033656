package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/lsd-consulting/lsd-interceptors-go/pkg/config"
	"github.com/lsd-consulting/lsd-interceptors-go/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

type proxyFlags struct {
	configPath      string
	listen          string
	admin           string
	upstream        string
	output          string
	showEncodedBody bool
	memoryLimit     int
	logLevel        string
	logFormat       string
}

func newProxyCommand() *cobra.Command {
	f := &proxyFlags{}

	cmd := &cobra.Command{
		Use:   "proxy",
		Short: "Run a capturing reverse proxy in front of an upstream service",
		Long: `Run a reverse proxy that forwards every request to the upstream and captures
each exchange. Press Ctrl+C to stop.

Examples:
  lsd-capture proxy --upstream http://localhost:3000
  lsd-capture proxy -c lsd.yaml --output exchanges.ndjson`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, f)
			if err != nil {
				return err
			}

			logCfg := cfg.Logging()
			logCfg.Output = cmd.ErrOrStderr()
			logCfg.Component = "lsd-capture"
			log := logging.New(logCfg)

			p, err := newPipeline(cfg, log, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer func() {
				if err := p.Close(); err != nil {
					log.Warn("failed to close sinks", "error", err)
				}
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			proxyLn, err := net.Listen("tcp", cfg.Listen)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", cfg.Listen, err)
			}
			var adminLn net.Listener
			if p.admin != nil {
				adminLn, err = net.Listen("tcp", cfg.Admin)
				if err != nil {
					_ = proxyLn.Close()
					return fmt.Errorf("failed to listen on %s: %w", cfg.Admin, err)
				}
			}

			log.Info("capture proxy started", "listen", proxyLn.Addr().String(), "upstream", cfg.Upstream)
			if adminLn != nil {
				log.Info("admin API started", "listen", adminLn.Addr().String())
			}
			return serve(ctx, log, p, proxyLn, adminLn)
		},
	}

	bindProxyFlags(cmd, f)
	return cmd
}

func bindProxyFlags(cmd *cobra.Command, f *proxyFlags) {
	fl := cmd.Flags()
	fl.StringVarP(&f.configPath, "config", "c", "", "Path to a YAML or JSON configuration file")
	fl.StringVarP(&f.listen, "listen", "l", config.DefaultListen, "Proxy listen address")
	fl.StringVar(&f.admin, "admin", config.DefaultAdmin, "Admin API listen address (empty disables it)")
	fl.StringVarP(&f.upstream, "upstream", "u", "", "Upstream base URL")
	fl.StringVarP(&f.output, "output", "o", config.StdoutOutput, "NDJSON output file, - for stdout, empty to disable")
	fl.BoolVar(&f.showEncodedBody, "show-encoded-body", false, "Decode and show bodies sent with a Content-Encoding")
	fl.IntVar(&f.memoryLimit, "memory-limit", config.DefaultMemoryLimit, "Messages kept in memory for the admin API")
	fl.StringVar(&f.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	fl.StringVar(&f.logFormat, "log-format", "text", "Log format (text, json)")
}

// resolveConfig layers file, environment and explicitly set flags, in that
// order, then validates the result.
func resolveConfig(cmd *cobra.Command, f *proxyFlags) (*config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		loaded, err := config.LoadFromFile(f.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.ApplyEnv(os.LookupEnv)

	fl := cmd.Flags()
	if fl.Changed("listen") {
		cfg.Listen = f.listen
	}
	if fl.Changed("admin") {
		cfg.Admin = f.admin
	}
	if fl.Changed("upstream") {
		cfg.Upstream = f.upstream
	}
	if fl.Changed("output") {
		cfg.Output = f.output
	}
	if fl.Changed("show-encoded-body") {
		cfg.ShowEncodedBody = f.showEncodedBody
	}
	if fl.Changed("memory-limit") {
		cfg.MemoryLimit = f.memoryLimit
	}
	if fl.Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if fl.Changed("log-format") {
		cfg.Log.Format = f.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// serve runs the proxy and admin servers until ctx is done or either of
// them fails, then shuts both down.
func serve(ctx context.Context, log *slog.Logger, p *pipeline, proxyLn, adminLn net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)

	servers := []*http.Server{{Handler: p.proxy, ReadHeaderTimeout: 10 * time.Second}}
	listeners := []net.Listener{proxyLn}
	if adminLn != nil {
		servers = append(servers, &http.Server{Handler: p.admin, ReadHeaderTimeout: 10 * time.Second})
		listeners = append(listeners, adminLn)
	}

	for i, srv := range servers {
		srv, ln := srv, listeners[i]
		g.Go(func() error {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server on %s: %w", ln.Addr(), err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}
