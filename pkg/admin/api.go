package admin

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/lsd-consulting/lsd-interceptors-go/pkg/logging"
	"github.com/lsd-consulting/lsd-interceptors-go/pkg/sequence"
)

// Store is the message store served by the API. *sequence.MemorySink
// implements it.
type Store interface {
	List(limit int) []sequence.Message
	Count() int
	Clear()
	Subscribe(buffer int) (sequence.Subscriber, func())
}

var _ Store = (*sequence.MemorySink)(nil)

// DefaultTitle is the diagram title used when none is configured.
const DefaultTitle = "Captured exchanges"

// API serves the admin endpoints.
type API struct {
	store    Store
	metrics  http.Handler
	log      *slog.Logger
	title    string
	started  time.Time
	upgrader websocket.Upgrader
	router   chi.Router
}

// Option configures an API.
type Option func(*API)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *API) {
		if l != nil {
			a.log = l
		}
	}
}

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(a *API) { a.metrics = h }
}

// WithTitle sets the diagram title.
func WithTitle(title string) Option {
	return func(a *API) { a.title = title }
}

// WithCheckOrigin overrides the WebSocket origin check. The default
// accepts same-origin requests only.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(a *API) { a.upgrader.CheckOrigin = fn }
}

// New creates an API over store.
func New(store Store, opts ...Option) *API {
	a := &API{
		store:   store,
		log:     logging.Nop(),
		title:   DefaultTitle,
		started: time.Now(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	a.router = a.routes()
	return a
}

func (a *API) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(a.requestLogger)

	r.Get("/healthz", a.handleHealth)
	r.Route("/messages", func(r chi.Router) {
		r.Get("/", a.handleListMessages)
		r.Delete("/", a.handleClearMessages)
		r.Get("/live", a.handleLive)
	})
	r.Get("/diagram.puml", a.handleDiagram)
	if a.metrics != nil {
		r.Method(http.MethodGet, "/metrics", a.metrics)
	}
	return r
}

// ServeHTTP implements http.Handler.
func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Uptime returns the time since the API was created.
func (a *API) Uptime() time.Duration {
	return time.Since(a.started)
}

func (a *API) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		a.log.Debug("admin request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}
