package capture

import (
	"time"

	"github.com/lsd-consulting/lsd-interceptors-go/pkg/outcome"
)

// Stage names the step of an exchange where instrumentation failed.
type Stage string

// Stages.
const (
	StageRequestBody  Stage = "request-body"
	StageResponseBody Stage = "response-body"
	StageEmitRequest  Stage = "emit-request"
	StageEmitResponse Stage = "emit-response"
	StageDownstream   Stage = "downstream"
)

// Observer is notified about captured exchanges. Implementations must be
// safe for concurrent use.
type Observer interface {
	// ExchangeCaptured is called once both messages were handed to the sink.
	ExchangeCaptured(class outcome.Class, d time.Duration)

	// CaptureFailed is called when an exchange could not be fully captured.
	CaptureFailed(stage Stage)
}

type nopObserver struct{}

func (nopObserver) ExchangeCaptured(outcome.Class, time.Duration) {}
func (nopObserver) CaptureFailed(Stage)                            {}
