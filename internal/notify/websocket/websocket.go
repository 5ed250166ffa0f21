// Package websocket streams observer events to a remote UI over a WebSocket.
package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/wayfarer-go/wayfarer/pkg/core"
	"github.com/wayfarer-go/wayfarer/pkg/streaming"
)

// Config holds WebSocket sink configuration.
type Config struct {
	URL     string
	Secret  string
	Client  string
	Version string
}

// Sink implements notify.Observer by pushing envelopes to the server.
type Sink struct {
	stream *stream
	cfg    Config
}

// New creates a disconnected sink.
func New(cfg Config, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{
		stream: newStream(logger.With("component", "stream")),
		cfg:    cfg,
	}
}

// Open dials the server and waits for the hello to be acknowledged.
func (s *Sink) Open() error {
	hello, err := marshalEnvelope(streaming.TypeHello, streaming.HelloPayload{
		Client:  s.cfg.Client,
		Version: s.cfg.Version,
	})
	if err != nil {
		return err
	}
	if err := s.stream.open(s.cfg.URL, s.cfg.Secret, hello); err != nil {
		s.stream.close()
		return err
	}
	return nil
}

// Close says goodbye and disconnects.
func (s *Sink) Close() error {
	bye, err := marshalEnvelope(streaming.TypeGoodbye, nil)
	if err == nil {
		err = s.stream.request(bye, streaming.TypeGoodbye, ackTimeout)
	}
	s.stream.close()
	return err
}

// marshalEnvelope builds a JSON-encoded Envelope from a message type and payload.
func marshalEnvelope(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	env := streaming.Envelope{Type: msgType, Payload: raw}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

func (s *Sink) sendEnvelope(msgType string, payload any) {
	data, err := marshalEnvelope(msgType, payload)
	if err != nil {
		s.stream.log.Error("Failed to encode observer event", "type", msgType, "error", err)
		return
	}
	s.stream.send(data)
}

func (s *Sink) OnTickResult(o core.ScanOutcome) {
	s.sendEnvelope(streaming.TypeTickResult, streaming.TickPayload{Outcome: o, Messages: o.Messages()})
}

func (s *Sink) OnLoginCompleted(r core.LoginResult) {
	s.sendEnvelope(streaming.TypeLoginCompleted, streaming.LoginPayload{Result: r})
}

func (s *Sink) OnLocationChanged(p core.Position) {
	s.sendEnvelope(streaming.TypeLocationChanged, streaming.LocationPayload{Position: p})
}
