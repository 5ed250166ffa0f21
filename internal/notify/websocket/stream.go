package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"

	"github.com/wayfarer-go/wayfarer/pkg/streaming"
)

const (
	outboxSize       = 1024
	maxRedials       = 10
	initialBackoff   = time.Second
	maxBackoff       = 30 * time.Second
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = pongWait * 9 / 10
	handshakeTimeout = 10 * time.Second
	ackTimeout       = 10 * time.Second
)

var errStreamClosed = errors.New("observer stream closed")

// stream owns one logical connection. A supervisor goroutine serves the
// current socket and redials with backoff when it breaks, replaying the hello
// envelope first.
type stream struct {
	log    *slog.Logger
	dialer *ws.Dialer
	target string
	header http.Header

	outbox  chan []byte
	stop    chan struct{}
	stopped chan struct{}

	mu      sync.Mutex
	hello   []byte
	waiters map[string][]chan struct{}
	closing bool
	started bool

	backoff time.Duration
}

func newStream(logger *slog.Logger) *stream {
	return &stream{
		log: logger,
		dialer: &ws.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshakeTimeout,
		},
		outbox:  make(chan []byte, outboxSize),
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
		waiters: make(map[string][]chan struct{}),
		backoff: initialBackoff,
	}
}

// open dials once and starts the supervisor. hello is sent first and must be
// acknowledged before open returns.
func (s *stream) open(rawURL, secret string, hello []byte) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid stream url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("invalid stream url scheme %q", u.Scheme)
	}
	s.target = u.String()
	s.header = http.Header{}
	if secret != "" {
		s.header.Set("Authorization", "Bearer "+secret)
	}

	conn, err := s.dial()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.hello = hello
	s.started = true
	s.mu.Unlock()

	go s.supervise(conn)
	return s.request(hello, streaming.TypeHello, ackTimeout)
}

func (s *stream) dial() (*ws.Conn, error) {
	conn, _, err := s.dialer.Dial(s.target, s.header)
	if err != nil {
		return nil, fmt.Errorf("dial observer stream: %w", err)
	}
	return conn, nil
}

func (s *stream) supervise(conn *ws.Conn) {
	defer close(s.stopped)
	var carry []byte
	for {
		var err error
		carry, err = s.serve(conn, carry)
		if err == nil {
			return
		}
		s.log.Warn("Observer stream broken", "error", err)

		if conn = s.redial(); conn == nil {
			return
		}
		if err := s.writeNow(conn, s.helloBytes()); err != nil {
			s.log.Warn("Failed to replay hello", "error", err)
			_ = conn.Close()
			continue
		}
		s.log.Info("Observer stream reconnected")
	}
}

// serve pumps the outbox into conn until stop, returning nil, or a failure.
// A message whose write failed is returned for the next connection.
func (s *stream) serve(conn *ws.Conn, carry []byte) ([]byte, error) {
	readErr := make(chan error, 1)
	go func() { readErr <- s.readAcks(conn) }()
	defer conn.Close()

	if carry != nil {
		if err := s.writeNow(conn, carry); err != nil {
			return carry, err
		}
	}

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-s.stop:
			_ = conn.WriteControl(ws.CloseMessage,
				ws.FormatCloseMessage(ws.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return nil, nil
		case err := <-readErr:
			return nil, err
		case <-ping.C:
			if err := conn.WriteControl(ws.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return nil, err
			}
		case data := <-s.outbox:
			if err := s.writeNow(conn, data); err != nil {
				return data, err
			}
		}
	}
}

func (s *stream) writeNow(conn *ws.Conn, data []byte) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteMessage(ws.TextMessage, data)
}

// readAcks wakes request callers. Anything that is not an ack is ignored.
func (s *stream) readAcks(conn *ws.Conn) error {
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var ack streaming.AckMessage
		if json.Unmarshal(raw, &ack) != nil || ack.Type != "ack" {
			s.log.Debug("Ignoring stream message", "raw", string(raw))
			continue
		}
		s.mu.Lock()
		waiting := s.waiters[ack.For]
		delete(s.waiters, ack.For)
		s.mu.Unlock()
		for _, w := range waiting {
			close(w)
		}
	}
}

func (s *stream) redial() *ws.Conn {
	backoff := s.backoff
	for attempt := 1; attempt <= maxRedials; attempt++ {
		select {
		case <-s.stop:
			return nil
		case <-time.After(backoff):
		}
		conn, err := s.dial()
		if err == nil {
			return conn
		}
		s.log.Warn("Observer stream redial failed", "attempt", attempt, "error", err)
		backoff = min(backoff*2, maxBackoff)
	}
	s.log.Error("Giving up on observer stream", "attempts", maxRedials)
	return nil
}

func (s *stream) helloBytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hello
}

// send queues data without blocking; it is dropped when the outbox is full.
func (s *stream) send(data []byte) {
	select {
	case s.outbox <- data:
	default:
		s.log.Warn("Observer stream outbox full, dropping message")
	}
}

// request sends data and waits for the server to ack ackFor.
func (s *stream) request(data []byte, ackFor string, timeout time.Duration) error {
	acked := make(chan struct{})
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return errStreamClosed
	}
	s.waiters[ackFor] = append(s.waiters[ackFor], acked)
	s.mu.Unlock()

	s.send(data)

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-acked:
		return nil
	case <-timer.C:
		return fmt.Errorf("timeout waiting for ack of %q", ackFor)
	case <-s.stopped:
		return errStreamClosed
	}
}

// close stops the supervisor and waits until the socket is closed.
func (s *stream) close() {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return
	}
	s.closing = true
	started := s.started
	s.mu.Unlock()

	close(s.stop)
	if started {
		<-s.stopped
	}
}
