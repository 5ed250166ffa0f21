package sim

import (
	"context"
	"fmt"

	"github.com/wayfarer-go/wayfarer/internal/gameclient"
	"github.com/wayfarer-go/wayfarer/pkg/core"
)

type session struct {
	world      *World
	generation int
}

func (s *session) SetLocation(ctx context.Context, pos core.Position) error {
	if err := s.world.enter(ctx, OpSetLocation, s.generation); err != nil {
		return err
	}
	s.world.mu.Lock()
	defer s.world.mu.Unlock()
	p := pos
	s.world.lastLocation = &p
	return nil
}

func (s *session) Waypoints(ctx context.Context) ([]gameclient.Waypoint, error) {
	if err := s.world.enter(ctx, OpWaypoints, s.generation); err != nil {
		return nil, err
	}
	w := s.world
	w.mu.Lock()
	defer w.mu.Unlock()
	now := w.now()
	out := make([]gameclient.Waypoint, 0, len(w.waypoints))
	for _, st := range w.waypoints {
		out = append(out, &waypointHandle{
			session: s,
			state:   st,
			id:      st.spec.ID,
			pos:     st.spec.Position,
			canLoot: !now.Before(st.cooldownUntil),
		})
	}
	return out, nil
}

func (s *session) Catchable(ctx context.Context) ([]gameclient.Creature, error) {
	if err := s.world.enter(ctx, OpCatchable, s.generation); err != nil {
		return nil, err
	}
	w := s.world
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]gameclient.Creature, 0, len(w.creatures))
	for _, st := range w.creatures {
		if st.captured {
			continue
		}
		out = append(out, &creatureHandle{session: s, state: st, spec: st.spec})
	}
	return out, nil
}

func (s *session) Gyms(ctx context.Context) ([]gameclient.Gym, error) {
	if err := s.world.enter(ctx, OpGyms, s.generation); err != nil {
		return nil, err
	}
	w := s.world
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]gameclient.Gym, 0, len(w.gyms))
	for _, g := range w.gyms {
		out = append(out, g)
	}
	return out, nil
}

func (s *session) Inventory(ctx context.Context) (core.Inventory, error) {
	if err := s.world.enter(ctx, OpInventory, s.generation); err != nil {
		return core.Inventory{}, err
	}
	return s.world.Inventory(), nil
}

func (s *session) Collected(ctx context.Context, species core.Species) (bool, error) {
	if err := s.world.enter(ctx, OpCollected, s.generation); err != nil {
		return false, err
	}
	s.world.mu.Lock()
	defer s.world.mu.Unlock()
	return s.world.collected[species], nil
}

func (s *session) Specimens(ctx context.Context, species core.Species) ([]gameclient.Specimen, error) {
	if err := s.world.enter(ctx, OpSpecimens, s.generation); err != nil {
		return nil, err
	}
	w := s.world
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []gameclient.Specimen
	for _, st := range w.specimens {
		if st.spec.Species == species {
			out = append(out, &specimenHandle{session: s, state: st, spec: st.spec})
		}
	}
	return out, nil
}

type waypointHandle struct {
	session *session
	state   *waypointState
	id      string
	pos     core.Position
	canLoot bool
}

func (h *waypointHandle) ID() string              { return h.id }
func (h *waypointHandle) Position() core.Position { return h.pos }
func (h *waypointHandle) CanLoot() bool           { return h.canLoot }

func (h *waypointHandle) Loot(ctx context.Context) (core.LootOutcome, error) {
	w := h.session.world
	if err := w.enter(ctx, OpLoot, h.session.generation); err != nil {
		return core.LootOutcome{}, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	h.state.loots++
	out := core.LootOutcome{WaypointID: h.id, Position: h.pos}
	now := w.now()
	if now.Before(h.state.cooldownUntil) {
		out.Status = core.LootInCooldown
		out.RawStatus = string(core.LootInCooldown)
		return out, nil
	}

	status := h.state.spec.Result
	if status == "" {
		status = core.LootSuccess
	}
	out.Status = status
	out.RawStatus = string(status)
	if status == core.LootSuccess {
		out.Experience = h.state.spec.Experience
		out.ItemsAwarded = h.state.spec.Items
		h.state.cooldownUntil = now.Add(w.cooldown)
	}
	return out, nil
}

type creatureHandle struct {
	session *session
	state   *creatureState
	spec    CreatureSpec
}

func (h *creatureHandle) ID() string              { return h.spec.ID }
func (h *creatureHandle) Species() core.Species   { return h.spec.Species }
func (h *creatureHandle) Rarity() core.Rarity     { return h.spec.Rarity }
func (h *creatureHandle) Position() core.Position { return h.spec.Position }

func (h *creatureHandle) Encounter(ctx context.Context) (bool, error) {
	w := h.session.world
	if err := w.enter(ctx, OpEncounter, h.session.generation); err != nil {
		return false, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return !h.state.captured && !h.spec.Hidden, nil
}

func (h *creatureHandle) Capture(ctx context.Context, policy core.CatchPolicy) (core.CaptureStatus, error) {
	w := h.session.world
	if err := w.enter(ctx, OpCapture, h.session.generation); err != nil {
		return core.CaptureError, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	p := policy
	w.lastPolicy = &p

	switch {
	case w.inventory.Balls > 0:
		w.inventory.Balls--
	case w.inventory.MasterBalls > 0 && !policy.ExcludeMasterBall:
		w.inventory.MasterBalls--
	default:
		return core.CaptureError, fmt.Errorf("capture %s: %w", h.spec.ID, gameclient.ErrNoSuchItem)
	}
	if policy.UseBait && policy.MaxBaitItems != 0 && w.inventory.Bait > 0 {
		w.inventory.Bait--
	}

	status := h.spec.Result
	if status == "" {
		status = core.CaptureSuccess
	}
	if status == core.CaptureSuccess {
		h.state.captured = true
		w.collected[h.spec.Species] = true
		w.specimens = append(w.specimens, &specimenState{spec: SpecimenSpec{
			ID:        w.newID("specimen"),
			Species:   h.spec.Species,
			Evolvable: evolutions[h.spec.Species] != "",
		}})
	}
	return status, nil
}

type gymHandle struct {
	id  string
	pos core.Position
}

func (g gymHandle) ID() string              { return g.id }
func (g gymHandle) Position() core.Position { return g.pos }

type specimenHandle struct {
	session *session
	state   *specimenState
	spec    SpecimenSpec
}

func (h *specimenHandle) ID() string            { return h.spec.ID }
func (h *specimenHandle) Species() core.Species { return h.spec.Species }
func (h *specimenHandle) CanEvolve() bool       { return h.spec.Evolvable }

func (h *specimenHandle) Evolve(ctx context.Context) (gameclient.Specimen, error) {
	w := h.session.world
	if err := w.enter(ctx, OpEvolve, h.session.generation); err != nil {
		return nil, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if h.spec.EvolveErr != nil {
		return nil, fmt.Errorf("evolve %s: %w", h.spec.ID, h.spec.EvolveErr)
	}
	if !w.remove(h.state) {
		return nil, fmt.Errorf("evolve %s: specimen not held", h.spec.ID)
	}

	evolved := evolutions[h.spec.Species]
	if evolved == "" {
		evolved = h.spec.Species
	}
	st := &specimenState{spec: SpecimenSpec{ID: w.newID("specimen"), Species: evolved}}
	w.specimens = append(w.specimens, st)
	return &specimenHandle{session: h.session, state: st, spec: st.spec}, nil
}

func (h *specimenHandle) Transfer(ctx context.Context) error {
	w := h.session.world
	if err := w.enter(ctx, OpTransfer, h.session.generation); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if h.spec.TransferErr != nil {
		return fmt.Errorf("transfer %s: %w", h.spec.ID, h.spec.TransferErr)
	}
	if !w.remove(h.state) {
		return fmt.Errorf("transfer %s: specimen not held", h.spec.ID)
	}
	return nil
}

// remove drops a held specimen. Callers hold w.mu.
func (w *World) remove(st *specimenState) bool {
	for i, s := range w.specimens {
		if s == st {
			w.specimens = append(w.specimens[:i], w.specimens[i+1:]...)
			return true
		}
	}
	return false
}
