package capture

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lsd-consulting/lsd-interceptors-go/internal/id"
	"github.com/lsd-consulting/lsd-interceptors-go/pkg/outcome"
	"github.com/lsd-consulting/lsd-interceptors-go/pkg/sequence"
)

const (
	requestBody  = "A request body"
	responseBody = "A response body"
)

type spyObserver struct {
	mu       sync.Mutex
	captured []outcome.Class
	failures []Stage
}

func (o *spyObserver) ExchangeCaptured(class outcome.Class, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.captured = append(o.captured, class)
}

func (o *spyObserver) CaptureFailed(stage Stage) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failures = append(o.failures, stage)
}

func (o *spyObserver) Failures() []Stage {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Stage(nil), o.failures...)
}

func newInterceptor(t *testing.T, cfg *Config, opts ...Option) (*Interceptor, *sequence.MemorySink) {
	t.Helper()
	sink := sequence.NewMemorySink(0)
	ic, err := New(sink, id.NewSequence("msg-"), cfg, opts...)
	require.NoError(t, err)
	return ic, sink
}

// pair returns the request and response messages, failing unless exactly
// two were captured.
func pair(t *testing.T, sink *sequence.MemorySink) (sequence.Message, sequence.Message) {
	t.Helper()
	msgs := sink.List(0)
	require.Len(t, msgs, 2)
	return msgs[0], msgs[1]
}

// steppingClock returns start on the first call and start+step afterwards.
func steppingClock(start time.Time, step time.Duration) outcome.Clock {
	var mu sync.Mutex
	calls := 0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 1 {
			return start
		}
		return start.Add(step)
	}
}
