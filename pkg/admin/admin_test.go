package admin

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lsd-consulting/lsd-interceptors-go/pkg/sequence"
)

func message(id string, typ sequence.Type) sequence.Message {
	m := sequence.Message{ID: id, From: "Bond", To: "Shop", Label: "GET /price", Type: typ}
	if typ == sequence.SynchronousResponse {
		m.From, m.To = m.To, m.From
		m.Colour = "orange"
		m.Label = "404 Not Found (3ms)"
	}
	return m
}

func seeded(t *testing.T, n int) *sequence.MemorySink {
	t.Helper()
	store := sequence.NewMemorySink(0)
	for i := 0; i < n; i++ {
		typ := sequence.Synchronous
		if i%2 == 1 {
			typ = sequence.SynchronousResponse
		}
		require.NoError(t, store.Capture(message(string(rune('a'+i)), typ)))
	}
	return store
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	api := New(seeded(t, 2))

	rec := do(t, api, http.MethodGet, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, resp.Messages)
}

func TestListMessages(t *testing.T) {
	api := New(seeded(t, 4))

	tests := []struct {
		name    string
		target  string
		wantIDs []string
	}{
		{"all", "/messages", []string{"a", "b", "c", "d"}},
		{"limit keeps newest", "/messages?limit=2", []string{"c", "d"}},
		{"zero is all", "/messages?limit=0", []string{"a", "b", "c", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, api, http.MethodGet, tt.target)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var resp MessagesResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			ids := make([]string, 0, len(resp.Messages))
			for _, m := range resp.Messages {
				ids = append(ids, m.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, len(tt.wantIDs), resp.Count)
			assert.Equal(t, 4, resp.Total)
		})
	}
}

func TestListMessages_Empty(t *testing.T) {
	rec := do(t, New(sequence.NewMemorySink(0)), http.MethodGet, "/messages")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"messages":[]`)
}

func TestListMessages_InvalidLimit(t *testing.T) {
	api := New(seeded(t, 1))
	for _, target := range []string{"/messages?limit=abc", "/messages?limit=-3"} {
		rec := do(t, api, http.MethodGet, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var resp ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "invalid_limit", resp.Error)
	}
}

func TestClearMessages(t *testing.T) {
	store := seeded(t, 3)
	api := New(store)

	rec := do(t, api, http.MethodDelete, "/messages")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, store.Count())
}

func TestDiagram(t *testing.T) {
	api := New(seeded(t, 2), WithTitle("Checkout"))

	rec := do(t, api, http.MethodGet, "/diagram.puml")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "@startuml\ntitle Checkout\nBond -> Shop : GET /price\nShop -[#orange]-> Bond : 404 Not Found (3ms)\n@enduml\n", rec.Body.String())

	rec = do(t, api, http.MethodGet, "/diagram.puml?title=Other")
	assert.Contains(t, rec.Body.String(), "title Other\n")
}

func TestMetrics(t *testing.T) {
	rec := do(t, New(seeded(t, 0)), http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusNotFound, rec.Code, "not mounted without a handler")

	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "lsd_exchanges_total 1\n")
	})
	rec = do(t, New(seeded(t, 0), WithMetrics(metrics)), http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "lsd_exchanges_total 1\n", rec.Body.String())
}

func TestMethodNotAllowed(t *testing.T) {
	rec := do(t, New(seeded(t, 0)), http.MethodPost, "/messages")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// signalStore reports when a live subscriber has registered.
type signalStore struct {
	*sequence.MemorySink
	subscribed chan struct{}
}

func (s *signalStore) Subscribe(buffer int) (sequence.Subscriber, func()) {
	sub, cancel := s.MemorySink.Subscribe(buffer)
	close(s.subscribed)
	return sub, cancel
}

func TestLive(t *testing.T) {
	store := &signalStore{MemorySink: sequence.NewMemorySink(0), subscribed: make(chan struct{})}
	srv := httptest.NewServer(New(store))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/messages/live"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	select {
	case <-store.subscribed:
	case <-time.After(5 * time.Second):
		t.Fatal("live handler never subscribed")
	}

	require.NoError(t, store.Capture(message("live-1", sequence.Synchronous), message("live-2", sequence.SynchronousResponse)))

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for _, want := range []string{"live-1", "live-2"} {
		var got sequence.Message
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, want, got.ID)
	}
}

func TestLive_RejectsForeignOrigin(t *testing.T) {
	srv := httptest.NewServer(New(sequence.NewMemorySink(0)))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/messages/live"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Origin": []string{"http://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
