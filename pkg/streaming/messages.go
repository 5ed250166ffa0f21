// Package streaming defines the JSON messages pushed to a remote observer over
// a WebSocket.
package streaming

import (
	"encoding/json"

	"github.com/wayfarer-go/wayfarer/pkg/core"
)

// Message type constants matching the streaming protocol.
const (
	TypeHello           = "hello"
	TypeGoodbye         = "goodbye"
	TypeTickResult      = "tick_result"
	TypeLoginCompleted  = "login_completed"
	TypeLocationChanged = "location_changed"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
}

// HelloPayload identifies the client. It is replayed after every reconnect.
type HelloPayload struct {
	Client  string `json:"client"`
	Version string `json:"version"`
	Player  string `json:"player,omitempty"`
}

// TickPayload carries one scan outcome and its rendered notifications.
type TickPayload struct {
	Outcome  core.ScanOutcome `json:"outcome"`
	Messages []string         `json:"messages"`
}

// LoginPayload carries a completed login attempt.
type LoginPayload struct {
	Result core.LoginResult `json:"result"`
}

// LocationPayload carries an accepted position update.
type LocationPayload struct {
	Position core.Position `json:"position"`
}
