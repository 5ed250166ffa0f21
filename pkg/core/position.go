// pkg/core/position.go
package core

import "time"

// Position is a single fix reported by a location source.
// It is replaced wholesale on every update, never mutated in place.
type Position struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Altitude  float64   `json:"altitude"`
	Timestamp time.Time `json:"timestamp"`
}

// IsZero reports whether p carries no fix at all.
func (p Position) IsZero() bool {
	return p.Latitude == 0 && p.Longitude == 0 && p.Altitude == 0 && p.Timestamp.IsZero()
}
