package sequence

import "sync"

// DefaultMemoryLimit is the history size used when none is given.
const DefaultMemoryLimit = 1000

// Subscriber receives messages as they are captured.
type Subscriber chan Message

// MemorySink keeps the most recent messages and notifies subscribers.
type MemorySink struct {
	mu          sync.RWMutex
	limit       int
	messages    []Message
	subscribers map[Subscriber]struct{}
}

// NewMemorySink keeps up to limit messages, dropping the oldest first.
// A limit of zero or less uses DefaultMemoryLimit.
func NewMemorySink(limit int) *MemorySink {
	if limit <= 0 {
		limit = DefaultMemoryLimit
	}
	return &MemorySink{
		limit:       limit,
		subscribers: make(map[Subscriber]struct{}),
	}
}

// Capture appends msgs and forwards them to subscribers. A subscriber
// that is not keeping up misses messages rather than blocking capture.
func (s *MemorySink) Capture(msgs ...Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, msgs...)
	if over := len(s.messages) - s.limit; over > 0 {
		s.messages = append(s.messages[:0:0], s.messages[over:]...)
	}

	for sub := range s.subscribers {
		for _, m := range msgs {
			select {
			case sub <- m:
			default:
			}
		}
	}
	return nil
}

// List returns up to limit of the most recent messages, oldest first.
// A limit of zero or less returns everything.
func (s *MemorySink) List(limit int) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.messages
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}

// Count returns the number of stored messages.
func (s *MemorySink) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Clear removes all stored messages.
func (s *MemorySink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
}

// Subscribe registers a buffered subscriber. The returned function
// unregisters and closes it.
func (s *MemorySink) Subscribe(buffer int) (Subscriber, func()) {
	if buffer <= 0 {
		buffer = 64
	}
	sub := make(Subscriber, buffer)

	s.mu.Lock()
	s.subscribers[sub] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	return sub, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, sub)
			s.mu.Unlock()
			close(sub)
		})
	}
}

var _ Sink = (*MemorySink)(nil)
