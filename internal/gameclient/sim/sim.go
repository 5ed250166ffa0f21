// Package sim is an in-process game world implementing the gameclient interfaces.
// It backs the demo command and the session and scan loop tests, with hooks to
// inject faults, stall calls and expire sessions.
package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wayfarer-go/wayfarer/internal/gameclient"
	"github.com/wayfarer-go/wayfarer/pkg/core"
)

// Operation names used for fault injection and call accounting.
const (
	OpAuthenticate = "authenticate"
	OpSetLocation  = "setLocation"
	OpWaypoints    = "waypoints"
	OpLoot         = "loot"
	OpCatchable    = "catchable"
	OpEncounter    = "encounter"
	OpCapture      = "capture"
	OpGyms         = "gyms"
	OpInventory    = "inventory"
	OpCollected    = "collected"
	OpSpecimens    = "specimens"
	OpEvolve       = "evolve"
	OpTransfer     = "transfer"
)

// DefaultCooldown is how long a looted waypoint stays unavailable.
const DefaultCooldown = 5 * time.Minute

// WaypointSpec describes a waypoint placed in the world.
type WaypointSpec struct {
	ID         string
	Position   core.Position
	InCooldown bool
	Experience int
	Items      int
	// Result overrides the loot status; empty means SUCCESS.
	Result core.LootStatus
}

// CreatureSpec describes a creature placed in the world.
type CreatureSpec struct {
	ID       string
	Species  core.Species
	Rarity   core.Rarity
	Position core.Position
	// Hidden creatures are listed but never yield a successful encounter.
	Hidden bool
	// Result is the capture status returned; empty means SUCCESS.
	Result core.CaptureStatus
}

// SpecimenSpec describes a creature held by the player.
type SpecimenSpec struct {
	ID          string
	Species     core.Species
	Evolvable   bool
	EvolveErr   error
	TransferErr error
}

type waypointState struct {
	spec          WaypointSpec
	cooldownUntil time.Time
	loots         int
}

type creatureState struct {
	spec     CreatureSpec
	captured bool
}

type specimenState struct {
	spec SpecimenSpec
}

// World holds the whole simulated backend state.
type World struct {
	mu sync.Mutex

	accounts   map[string]string
	busy       bool
	generation int

	waypoints []*waypointState
	creatures []*creatureState
	gyms      []gymHandle
	specimens []*specimenState
	inventory core.Inventory
	collected map[core.Species]bool

	faults map[string]error
	stalls map[string]bool
	calls  map[string]int

	lastLocation *core.Position
	lastPolicy   *core.CatchPolicy
	nextID       int

	cooldown time.Duration
	now      func() time.Time
}

// NewWorld returns an empty world with no accounts.
func NewWorld() *World {
	return &World{
		accounts:  make(map[string]string),
		collected: make(map[core.Species]bool),
		faults:    make(map[string]error),
		stalls:    make(map[string]bool),
		calls:     make(map[string]int),
		cooldown:  DefaultCooldown,
		now:       time.Now,
	}
}

// AddAccount registers a username/password pair.
func (w *World) AddAccount(username, password string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.accounts[username] = password
}

// SetBusy makes Authenticate report an overloaded backend.
func (w *World) SetBusy(busy bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.busy = busy
}

// AddWaypoint places a waypoint.
func (w *World) AddWaypoint(spec WaypointSpec) {
	w.mu.Lock()
	defer w.mu.Unlock()
	st := &waypointState{spec: spec}
	if spec.InCooldown {
		st.cooldownUntil = w.now().Add(w.cooldown)
	}
	w.waypoints = append(w.waypoints, st)
}

// AddCreature places a catchable creature.
func (w *World) AddCreature(spec CreatureSpec) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.creatures = append(w.creatures, &creatureState{spec: spec})
}

// AddGym places a gym.
func (w *World) AddGym(id string, pos core.Position) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.gyms = append(w.gyms, gymHandle{id: id, pos: pos})
}

// AddSpecimen gives the player a held creature.
func (w *World) AddSpecimen(spec SpecimenSpec) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.specimens = append(w.specimens, &specimenState{spec: spec})
}

// SetInventory replaces the consumable counts.
func (w *World) SetInventory(inv core.Inventory) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.inventory = inv
}

// Inventory returns the current consumable counts.
func (w *World) Inventory() core.Inventory {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inventory
}

// MarkCollected records the species as previously captured.
func (w *World) MarkCollected(species core.Species) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.collected[species] = true
}

// Fail makes every subsequent call of op return err until Heal is called.
func (w *World) Fail(op string, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.faults[op] = err
}

// Stall makes every subsequent call of op block until its context ends.
func (w *World) Stall(op string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stalls[op] = true
}

// Heal clears faults and stalls registered for op.
func (w *World) Heal(op string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.faults, op)
	delete(w.stalls, op)
}

// Expire invalidates every session issued so far.
func (w *World) Expire() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.generation++
}

// Calls returns how many times op was invoked.
func (w *World) Calls(op string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.calls[op]
}

// TotalCalls returns the number of session-bound calls made so far.
func (w *World) TotalCalls() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	total := 0
	for op, n := range w.calls {
		if op != OpAuthenticate {
			total += n
		}
	}
	return total
}

// LootCount returns how many times the waypoint was looted.
func (w *World) LootCount(id string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, wp := range w.waypoints {
		if wp.spec.ID == id {
			return wp.loots
		}
	}
	return 0
}

// LastLocation returns the most recent position pushed by any session.
func (w *World) LastLocation() (core.Position, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.lastLocation == nil {
		return core.Position{}, false
	}
	return *w.lastLocation, true
}

// LastPolicy returns the policy used by the most recent capture call.
func (w *World) LastPolicy() (core.CatchPolicy, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.lastPolicy == nil {
		return core.CatchPolicy{}, false
	}
	return *w.lastPolicy, true
}

// HeldSpecies returns the species of every held specimen in order.
func (w *World) HeldSpecies() []core.Species {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]core.Species, 0, len(w.specimens))
	for _, s := range w.specimens {
		out = append(out, s.spec.Species)
	}
	return out
}

// Authenticate implements gameclient.Client.
func (w *World) Authenticate(ctx context.Context, creds core.Credentials) (gameclient.Session, error) {
	if err := w.enter(ctx, OpAuthenticate, -1); err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.busy {
		return nil, fmt.Errorf("authenticate: %w", gameclient.ErrUnavailable)
	}
	pass, ok := w.accounts[creds.Username]
	if !ok || pass != creds.Password {
		return nil, fmt.Errorf("authenticate %q: %w", creds.Username, gameclient.ErrAuthFailed)
	}
	return &session{world: w, generation: w.generation}, nil
}

// enter performs call accounting, stalls, fault injection and session validity
// checks. A negative generation skips the validity check.
func (w *World) enter(ctx context.Context, op string, generation int) error {
	w.mu.Lock()
	w.calls[op]++
	stalled := w.stalls[op]
	fault := w.faults[op]
	expired := generation >= 0 && generation != w.generation
	w.mu.Unlock()

	if stalled {
		<-ctx.Done()
		return fmt.Errorf("%s: %w", op, ctx.Err())
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if fault != nil {
		return fmt.Errorf("%s: %w", op, fault)
	}
	if expired {
		return fmt.Errorf("%s: %w", op, gameclient.ErrSessionInvalid)
	}
	return nil
}

func (w *World) newID(prefix string) string {
	w.nextID++
	return fmt.Sprintf("%s-%d", prefix, w.nextID)
}

// evolutions maps low-value species to their evolved form.
var evolutions = map[core.Species]core.Species{
	core.SpeciesPidgey:   "PIDGEOTTO",
	core.SpeciesWeedle:   "KAKUNA",
	core.SpeciesCaterpie: "METAPOD",
	core.SpeciesRattata:  "RATICATE",
	core.SpeciesSpearow:  "FEAROW",
	core.SpeciesZubat:    "GOLBAT",
}

var _ gameclient.Client = (*World)(nil)
