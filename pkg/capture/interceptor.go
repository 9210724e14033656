package capture

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/lsd-consulting/lsd-interceptors-go/internal/id"
	"github.com/lsd-consulting/lsd-interceptors-go/pkg/body"
	"github.com/lsd-consulting/lsd-interceptors-go/pkg/logging"
	"github.com/lsd-consulting/lsd-interceptors-go/pkg/outcome"
	"github.com/lsd-consulting/lsd-interceptors-go/pkg/render"
	"github.com/lsd-consulting/lsd-interceptors-go/pkg/sequence"
)

// ErrSinkUnavailable is returned by New when no sink is given.
var ErrSinkUnavailable = sequence.ErrSinkUnavailable

// Interceptor captures exchanges into a sequence.Sink. It holds no
// per-exchange state and is safe for concurrent use.
type Interceptor struct {
	sink sequence.Sink
	ids  id.Generator
	cfg  Config
	log  *slog.Logger
	obs  Observer
}

// New returns an Interceptor writing to sink. A nil sink is a setup error
// wrapping sequence.ErrSinkUnavailable. A nil ids uses ULIDs and a nil cfg
// uses DefaultConfig.
func New(sink sequence.Sink, ids id.Generator, cfg *Config, opts ...Option) (*Interceptor, error) {
	if sink == nil {
		return nil, fmt.Errorf("capture: %w: nil sink", ErrSinkUnavailable)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if ids == nil {
		ids = id.NewULIDGenerator()
	}

	i := &Interceptor{
		sink: sink,
		ids:  ids,
		cfg:  cfg.withDefaults(),
		log:  logging.Nop(),
		obs:  nopObserver{},
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

func (c *Config) validate() error {
	if c == nil {
		return nil
	}
	return c.Filter.Validate()
}

// exchange is the state of one observed request/response pair. It lives on
// the stack of a single ServeHTTP or RoundTrip call.
type exchange struct {
	id     string
	source string
	target string
	method string
	uri    string
	timer  outcome.Timer

	requestHeader http.Header
	requestBody   []byte
}

func (i *Interceptor) begin(r *http.Request, reqBody []byte, timer outcome.Timer) *exchange {
	header := r.Header.Clone()
	if header == nil {
		header = http.Header{}
	}
	if host := requestHost(r); host != "" && header.Get("Host") == "" {
		header.Set("Host", host)
	}

	return &exchange{
		id:            uuid.NewString(),
		source:        i.cfg.Normalize(i.cfg.SourceName(r)),
		target:        i.cfg.Normalize(i.cfg.TargetName(r)),
		method:        r.Method,
		uri:           requestURI(r),
		timer:         timer,
		requestHeader: header,
		requestBody:   reqBody,
	}
}

func (i *Interceptor) requestMessage(ex *exchange) sequence.Message {
	rendered := i.decode(ex, ex.requestBody, ex.requestHeader)
	return sequence.Message{
		ID:         i.ids.Next(),
		ExchangeID: ex.id,
		Timestamp:  ex.timer.Start(),
		From:       ex.source,
		To:         ex.target,
		Label:      ex.method + " " + ex.uri,
		Type:       sequence.Synchronous,
		Data: render.Request(render.RequestView{
			Source:  ex.source,
			Target:  ex.target,
			Method:  ex.method,
			URI:     ex.uri,
			Headers: render.FieldsFromHeader(ex.requestHeader),
			Body:    rendered.String(),
		}),
	}
}

func (i *Interceptor) responseMessage(ex *exchange, status int, header http.Header, respBody []byte, elapsed time.Duration) sequence.Message {
	rendered := i.decode(ex, respBody, header)
	return sequence.Message{
		ID:         i.ids.Next(),
		ExchangeID: ex.id,
		Timestamp:  ex.timer.Start().Add(elapsed),
		From:       ex.target,
		To:         ex.source,
		Label:      responseLabel(status, elapsed),
		Type:       sequence.SynchronousResponse,
		Colour:     outcome.Classify(status).Colour(),
		Duration:   elapsed,
		Data: render.Response(render.ResponseView{
			Source:   ex.source,
			Target:   ex.target,
			Duration: elapsed,
			Headers:  render.FieldsFromHeader(header),
			Body:     rendered.String(),
		}),
	}
}

// finish emits the response message once the downstream call returned.
func (i *Interceptor) finish(ex *exchange, status int, header http.Header, respBody []byte) {
	elapsed := ex.timer.Elapsed()
	if i.emit(ex, StageEmitResponse, i.responseMessage(ex, status, header, respBody, elapsed)) {
		i.obs.ExchangeCaptured(outcome.Classify(status), elapsed)
	}
}

func (i *Interceptor) decode(ex *exchange, data []byte, header http.Header) body.Rendered {
	rendered := body.DecodeHeader(data, header, body.Options{ShowEncoded: i.cfg.ShowEncodedBody})
	if rendered.Reason == body.ReasonUndecodable {
		i.log.Debug("body not decodable", "exchange", ex.id, "detail", rendered.Detail)
	}
	return rendered
}

func (i *Interceptor) emit(ex *exchange, stage Stage, msg sequence.Message) bool {
	if err := i.sink.Capture(msg); err != nil {
		i.fail(ex, stage, err)
		return false
	}
	return true
}

func (i *Interceptor) fail(ex *exchange, stage Stage, err error) {
	exchangeID := ""
	if ex != nil {
		exchangeID = ex.id
	}
	i.log.Warn("exchange capture failed", "exchange", exchangeID, "stage", string(stage), "error", err)
	i.obs.CaptureFailed(stage)
}

func requestURI(r *http.Request) string {
	if r.RequestURI != "" {
		return r.RequestURI
	}
	if r.URL != nil {
		return r.URL.RequestURI()
	}
	return "/"
}

// responseLabel renders "<code> <reason> (<ms>ms)".
func responseLabel(status int, elapsed time.Duration) string {
	label := strconv.Itoa(status)
	if text := http.StatusText(status); text != "" {
		label += " " + text
	}
	return label + " (" + strconv.FormatInt(elapsed.Milliseconds(), 10) + "ms)"
}
