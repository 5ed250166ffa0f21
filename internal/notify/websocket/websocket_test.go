package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfarer-go/wayfarer/internal/notify"
	"github.com/wayfarer-go/wayfarer/pkg/core"
	"github.com/wayfarer-go/wayfarer/pkg/streaming"
)

// Compile-time interface check.
var _ notify.Observer = (*Sink)(nil)

// testServer upgrades to WebSocket, records received envelopes and acks hello
// and goodbye.
func testServer(t *testing.T) (*httptest.Server, *messageLog) {
	t.Helper()
	ml := &messageLog{}

	upgrader := ws.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ml.setSecret(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer c.Close()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				return
			}

			var env streaming.Envelope
			if err := json.Unmarshal(msg, &env); err != nil {
				continue
			}
			ml.add(env)

			if env.Type == streaming.TypeHello || env.Type == streaming.TypeGoodbye {
				data, _ := json.Marshal(streaming.AckMessage{Type: "ack", For: env.Type})
				if err := c.WriteMessage(ws.TextMessage, data); err != nil {
					return
				}
			}
		}
	}))

	return srv, ml
}

type messageLog struct {
	mu       sync.Mutex
	messages []streaming.Envelope
	secret   string
}

func (m *messageLog) add(env streaming.Envelope) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, env)
}

func (m *messageLog) setSecret(s string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secret = s
}

func (m *messageLog) all() []streaming.Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]streaming.Envelope, len(m.messages))
	copy(cp, m.messages)
	return cp
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestOpenAndClose(t *testing.T) {
	srv, ml := testServer(t)
	defer srv.Close()

	s := New(Config{URL: wsURL(srv), Secret: "s3cret", Client: "wayfarer", Version: "test"}, nil)
	require.NoError(t, s.Open())
	require.NoError(t, s.Close())

	msgs := ml.all()
	require.GreaterOrEqual(t, len(msgs), 2)
	assert.Equal(t, streaming.TypeHello, msgs[0].Type)
	assert.Equal(t, streaming.TypeGoodbye, msgs[len(msgs)-1].Type)

	var hello streaming.HelloPayload
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &hello))
	assert.Equal(t, "wayfarer", hello.Client)

	ml.mu.Lock()
	assert.Equal(t, "s3cret", ml.secret)
	ml.mu.Unlock()
}

func TestObserverEvents(t *testing.T) {
	srv, ml := testServer(t)
	defer srv.Close()

	s := New(Config{URL: wsURL(srv)}, nil)
	require.NoError(t, s.Open())

	s.OnLocationChanged(core.Position{Latitude: 52.5, Longitude: 13.4})
	s.OnLoginCompleted(core.LoginResult{Status: core.LoginSuccess, Message: "Login successful"})
	s.OnTickResult(core.ScanOutcome{
		Tick:    7,
		Capture: &core.CaptureOutcome{Species: core.SpeciesZubat, Status: core.CaptureSuccess},
	})
	require.NoError(t, s.Close())

	types := make(map[string]int)
	var tick streaming.TickPayload
	for _, m := range ml.all() {
		types[m.Type]++
		if m.Type == streaming.TypeTickResult {
			require.NoError(t, json.Unmarshal(m.Payload, &tick))
		}
	}

	assert.Equal(t, 1, types[streaming.TypeLocationChanged])
	assert.Equal(t, 1, types[streaming.TypeLoginCompleted])
	assert.Equal(t, 1, types[streaming.TypeTickResult])
	assert.Equal(t, uint64(7), tick.Outcome.Tick)
	assert.Equal(t, []string{"Zubat successfully captured"}, tick.Messages)
}

func TestOpen_DialFailure(t *testing.T) {
	s := New(Config{URL: "ws://127.0.0.1:1/stream"}, nil)
	assert.Error(t, s.Open())
}

func TestOpen_InvalidURL(t *testing.T) {
	assert.Error(t, New(Config{URL: "://bad"}, nil).Open())
	assert.Error(t, New(Config{URL: "http://localhost:8090/stream"}, nil).Open())
}

func TestSendAfterCloseIsDropped(t *testing.T) {
	srv, ml := testServer(t)
	defer srv.Close()

	s := New(Config{URL: wsURL(srv)}, nil)
	require.NoError(t, s.Open())
	require.NoError(t, s.Close())
	before := len(ml.all())

	s.OnLocationChanged(core.Position{Latitude: 1})
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, ml.all(), before)
	assert.ErrorIs(t, s.stream.request([]byte("{}"), "x", time.Second), errStreamClosed)
}

func TestReconnectReplaysHello(t *testing.T) {
	ml := &messageLog{}
	var mu sync.Mutex
	var conns []*ws.Conn

	upgrader := ws.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		mu.Lock()
		conns = append(conns, c)
		mu.Unlock()
		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				return
			}
			var env streaming.Envelope
			if json.Unmarshal(msg, &env) != nil {
				continue
			}
			ml.add(env)
			if env.Type == streaming.TypeHello {
				data, _ := json.Marshal(streaming.AckMessage{Type: "ack", For: env.Type})
				_ = c.WriteMessage(ws.TextMessage, data)
			}
		}
	}))
	defer srv.Close()

	s := New(Config{URL: wsURL(srv)}, nil)
	s.stream.backoff = 10 * time.Millisecond
	require.NoError(t, s.Open())
	defer s.stream.close()

	mu.Lock()
	_ = conns[0].Close()
	mu.Unlock()

	assert.Eventually(t, func() bool {
		hellos := 0
		for _, m := range ml.all() {
			if m.Type == streaming.TypeHello {
				hellos++
			}
		}
		return hellos == 2
	}, 2*time.Second, 10*time.Millisecond)
}
