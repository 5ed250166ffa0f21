// Package gameclient defines the boundary to the remote game backend.
// Adapters live in sub-packages: httpapi talks to a JSON gateway, sim is an
// in-process world used by the demo command and tests.
package gameclient

import (
	"context"
	"errors"

	"github.com/wayfarer-go/wayfarer/pkg/core"
)

// Conditions raised by adapters. The session layer classifies them.
var (
	// ErrAuthFailed is returned by Authenticate when the backend rejects the credentials.
	ErrAuthFailed = errors.New("authentication rejected")
	// ErrSessionInvalid means the session token is no longer accepted.
	ErrSessionInvalid = errors.New("session invalid")
	// ErrUnavailable covers unreachable, overloaded or failing backends.
	ErrUnavailable = errors.New("backend unavailable")
	// ErrNoSuchItem is raised when a required consumable is missing from the inventory.
	ErrNoSuchItem = errors.New("no such item")
)

// Client authenticates against the backend.
type Client interface {
	Authenticate(ctx context.Context, creds core.Credentials) (Session, error)
}

// Session is an authenticated handle.
type Session interface {
	SetLocation(ctx context.Context, pos core.Position) error
	Waypoints(ctx context.Context) ([]Waypoint, error)
	Catchable(ctx context.Context) ([]Creature, error)
	Gyms(ctx context.Context) ([]Gym, error)
	Inventory(ctx context.Context) (core.Inventory, error)
	// Collected reports whether the species has ever been captured by this player.
	Collected(ctx context.Context, species core.Species) (bool, error)
	Specimens(ctx context.Context, species core.Species) ([]Specimen, error)
}

// Waypoint is a lootable fixed location.
type Waypoint interface {
	ID() string
	Position() core.Position
	// CanLoot reports whether the waypoint is off cooldown.
	CanLoot() bool
	Loot(ctx context.Context) (core.LootOutcome, error)
}

// Creature is a catchable entity near the player.
type Creature interface {
	ID() string
	Species() core.Species
	Rarity() core.Rarity
	Position() core.Position
	// Encounter returns false when the creature is no longer available.
	Encounter(ctx context.Context) (bool, error)
	Capture(ctx context.Context, policy core.CatchPolicy) (core.CaptureStatus, error)
}

// Gym is a discovered arena location.
type Gym interface {
	ID() string
	Position() core.Position
}

// Specimen is a held creature that can be evolved or transferred.
type Specimen interface {
	ID() string
	Species() core.Species
	CanEvolve() bool
	Evolve(ctx context.Context) (Specimen, error)
	Transfer(ctx context.Context) error
}
