package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lsd-consulting/lsd-interceptors-go/pkg/config"
	"github.com/lsd-consulting/lsd-interceptors-go/pkg/logging"
	"github.com/lsd-consulting/lsd-interceptors-go/pkg/sequence"
)

func TestVersionCommand_JSON(t *testing.T) {
	var out bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"version", "--json"})

	require.NoError(t, root.Execute())

	var v VersionOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &v))
	assert.Equal(t, runtime.Version(), v.Go)
	assert.Equal(t, runtime.GOOS, v.OS)
	assert.NotEmpty(t, v.Version)
}

func TestVersionCommand_Text(t *testing.T) {
	var out bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.True(t, strings.HasPrefix(out.String(), "lsd-capture "))
}

func TestProxyCommand_RequiresUpstream(t *testing.T) {
	t.Setenv(config.EnvUpstream, "")

	root := NewRootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"proxy"})

	err := root.Execute()
	var cfgErr *config.ConfigError
	require.True(t, errors.As(err, &cfgErr), "got %v", err)
	assert.Equal(t, "upstream", cfgErr.Field)
}

func TestProxyCommand_MissingExplicitEnvFile(t *testing.T) {
	root := NewRootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"proxy", "--env-file", filepath.Join(t.TempDir(), "missing.env")})

	err := root.Execute()
	assert.ErrorContains(t, err, "failed to load env file")
}

func TestLoadEnvFile(t *testing.T) {
	t.Setenv("LSD_TEST_FROM_FILE", "")
	require.NoError(t, os.Unsetenv("LSD_TEST_FROM_FILE"))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LSD_TEST_FROM_FILE=hello\n"), 0o600))

	require.NoError(t, loadEnvFile(path, true))
	assert.Equal(t, "hello", os.Getenv("LSD_TEST_FROM_FILE"))

	assert.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), ".env"), false), "missing default file is ignored")
	assert.NoError(t, loadEnvFile("", true))
}

func parseProxyFlags(t *testing.T, args ...string) (*cobra.Command, *proxyFlags) {
	t.Helper()
	cmd := &cobra.Command{Use: "proxy"}
	f := &proxyFlags{}
	bindProxyFlags(cmd, f)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd, f
}

func TestResolveConfig_Layering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lsd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen: ":7000"
admin: ":7001"
upstream: "http://from-file:1"
log:
  level: warn
`), 0o600))

	t.Setenv(config.EnvListen, "")
	t.Setenv(config.EnvLogLevel, "")
	t.Setenv(config.EnvUpstream, "http://from-env:2")

	cmd, f := parseProxyFlags(t, "-c", path, "--listen", ":7100", "--memory-limit", "5")
	cfg, err := resolveConfig(cmd, f)
	require.NoError(t, err)

	assert.Equal(t, ":7100", cfg.Listen, "flag beats file")
	assert.Equal(t, ":7001", cfg.Admin, "unset flag keeps file value")
	assert.Equal(t, "http://from-env:2", cfg.Upstream, "env beats file")
	assert.Equal(t, 5, cfg.MemoryLimit)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestResolveConfig_FileErrors(t *testing.T) {
	cmd, f := parseProxyFlags(t, "-c", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := resolveConfig(cmd, f)
	assert.ErrorIs(t, err, config.ErrFileNotFound)
}

func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/price" {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"product":"`+r.URL.Query().Get("product")+`"}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(upstream string) *config.Config {
	cfg := config.Default()
	cfg.Upstream = upstream
	return cfg
}

func shopRequest() *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/price?product=apple", nil)
	r.Header.Set("User-Agent", "Bond")
	r.Host = "Shop"
	return r
}

func TestPipeline_CapturesProxiedExchange(t *testing.T) {
	upstream := newUpstream(t)

	var stdout bytes.Buffer
	p, err := newPipeline(testConfig(upstream.URL), logging.Nop(), &stdout)
	require.NoError(t, err)
	defer p.Close()

	rec := httptest.NewRecorder()
	p.proxy.ServeHTTP(rec, shopRequest())

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"product":"apple"}`, rec.Body.String())

	msgs := p.memory.List(0)
	require.Len(t, msgs, 2)
	assert.Equal(t, "Bond", msgs[0].From)
	assert.Equal(t, "Shop", msgs[0].To)
	assert.Equal(t, "GET /price?product=apple", msgs[0].Label)
	assert.Equal(t, "orange", msgs[1].Colour)
	assert.Contains(t, msgs[1].Label, "404")

	var lines []sequence.Message
	sc := bufio.NewScanner(&stdout)
	for sc.Scan() {
		var m sequence.Message
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		lines = append(lines, m)
	}
	require.Len(t, lines, 2)
	assert.Equal(t, msgs[0].ID, lines[0].ID)
	assert.Equal(t, msgs[1].ID, lines[1].ID)

	adminRec := httptest.NewRecorder()
	p.admin.ServeHTTP(adminRec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, adminRec.Body.String(), `lsd_exchanges_total{outcome="client-error"} 1`)
	assert.Contains(t, adminRec.Body.String(), "lsd_stored_messages 2")
}

func TestPipeline_UpstreamDown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	deadURL := "http://" + ln.Addr().String()
	require.NoError(t, ln.Close())

	cfg := testConfig(deadURL)
	cfg.Output = ""
	p, err := newPipeline(cfg, logging.Nop(), io.Discard)
	require.NoError(t, err)
	defer p.Close()

	rec := httptest.NewRecorder()
	p.proxy.ServeHTTP(rec, shopRequest())

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	msgs := p.memory.List(0)
	require.Len(t, msgs, 2)
	assert.Equal(t, "red", msgs[1].Colour)
}

func TestPipeline_FileOutput(t *testing.T) {
	upstream := newUpstream(t)

	cfg := testConfig(upstream.URL)
	cfg.Output = filepath.Join(t.TempDir(), "exchanges.ndjson")
	cfg.Admin = ""
	p, err := newPipeline(cfg, logging.Nop(), io.Discard)
	require.NoError(t, err)
	assert.Nil(t, p.admin, "admin disabled")

	p.proxy.ServeHTTP(httptest.NewRecorder(), shopRequest())
	require.NoError(t, p.Close())

	data, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\n"))
}

func TestPipeline_UnwritableOutput(t *testing.T) {
	cfg := testConfig("http://localhost:1")
	cfg.Output = filepath.Join(t.TempDir(), "missing-dir", "out.ndjson")

	_, err := newPipeline(cfg, logging.Nop(), io.Discard)
	assert.ErrorIs(t, err, sequence.ErrSinkUnavailable)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	upstream := newUpstream(t)
	p, err := newPipeline(testConfig(upstream.URL), logging.Nop(), io.Discard)
	require.NoError(t, err)
	defer p.Close()

	proxyLn, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	adminLn, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, logging.Nop(), p, proxyLn, adminLn) }()

	resp, err := http.Get("http://" + proxyLn.Addr().String() + "/price?product=pear")
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get("http://" + adminLn.Addr().String() + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
	assert.Equal(t, 2, p.memory.Count())
}

func TestBuildVersion(t *testing.T) {
	restore := func(v, c, d string) func() {
		return func() { Version, Commit, BuildDate = v, c, d }
	}
	t.Cleanup(restore(Version, Commit, BuildDate))

	t.Run("injected values win", func(t *testing.T) {
		Version, Commit, BuildDate = "v1.2.3", "abc123", "2026-01-02"
		v := buildVersion()
		assert.Equal(t, "v1.2.3", v.Version)
		assert.True(t, strings.HasPrefix(v.Commit, "abc123"), v.Commit)
		assert.Equal(t, "2026-01-02", v.Date)
	})

	t.Run("placeholders are never reported as injected", func(t *testing.T) {
		Version, Commit, BuildDate = UnsetVersion, UnsetCommit, UnsetBuildDate
		v := buildVersion()
		assert.NotEmpty(t, v.Commit)
		assert.NotEqual(t, "unknown", v.Commit)
		assert.NotEmpty(t, v.Date)
	})
}
