package sequence

import (
	"errors"
	"time"
)

// ErrSinkUnavailable indicates a sink that cannot accept messages. It is
// a setup problem, not a per-exchange one.
var ErrSinkUnavailable = errors.New("sequence: sink unavailable")

// Type distinguishes requests from responses.
type Type string

// Message types.
const (
	Synchronous         Type = "SYNCHRONOUS"
	SynchronousResponse Type = "SYNCHRONOUS_RESPONSE"
)

// Message is one directed arrow between two participants.
type Message struct {
	// ID is assigned by the id generator when the message is built.
	ID string `json:"id"`

	// ExchangeID is shared by the request and response of one exchange.
	ExchangeID string `json:"exchangeId,omitempty"`

	Timestamp time.Time `json:"timestamp"`

	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label"`

	// Data is an HTML fragment describing the message.
	Data string `json:"data"`

	Type Type `json:"type"`

	// Colour is set on responses only.
	Colour string `json:"colour,omitempty"`

	// Duration is set on responses only.
	Duration time.Duration `json:"duration,omitempty"`
}

// IsResponse reports whether m is a response message.
func (m Message) IsResponse() bool { return m.Type == SynchronousResponse }

// Sink receives messages.
type Sink interface {
	// Capture records messages in order. Implementations must be
	// safe for concurrent use.
	Capture(msgs ...Message) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(msgs ...Message) error

// Capture calls f.
func (f SinkFunc) Capture(msgs ...Message) error { return f(msgs...) }

// NoOpSink discards all messages.
type NoOpSink struct{}

// Capture discards msgs.
func (NoOpSink) Capture(...Message) error { return nil }

var (
	_ Sink = NoOpSink{}
	_ Sink = SinkFunc(nil)
)
