package capture

import (
	"net/http"

	"github.com/lsd-consulting/lsd-interceptors-go/pkg/body"
	"github.com/lsd-consulting/lsd-interceptors-go/pkg/outcome"
)

// Transport wraps next so that every outbound request it carries is
// captured. A nil next uses http.DefaultTransport.
func (i *Interceptor) Transport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &transport{i: i, next: next}
}

type transport struct {
	i    *Interceptor
	next http.RoundTripper
}

// RoundTrip captures req and its response. Errors from the wrapped
// transport are returned unchanged and produce no response message.
func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	i := t.i
	if !i.cfg.Filter.Allows(req) {
		return t.next.RoundTrip(req)
	}

	timer := outcome.StartTimer(i.cfg.Clock)

	// RoundTrippers must not modify the caller's request.
	out := req.Clone(req.Context())
	var reqBody []byte
	if req.Body != nil {
		data, replay, err := body.Buffer(req.Body)
		out.Body = replay
		if err != nil {
			i.fail(nil, StageRequestBody, err)
			return t.next.RoundTrip(out)
		}
		reqBody = data
		out.GetBody = body.ReplayFunc(data)
	}

	ex := i.begin(out, reqBody, timer)
	i.emit(ex, StageEmitRequest, i.requestMessage(ex))

	resp, err := t.next.RoundTrip(out)
	if err != nil {
		i.fail(ex, StageDownstream, err)
		return resp, err
	}

	respBody, replayResp, err := body.Buffer(resp.Body)
	resp.Body = replayResp
	if err != nil {
		// The caller reads the same bytes and then the same error.
		i.fail(ex, StageResponseBody, err)
		return resp, nil
	}

	i.finish(ex, resp.StatusCode, resp.Header, respBody)
	return resp, nil
}
