package session

import (
	"context"
	"errors"

	"github.com/wayfarer-go/wayfarer/internal/catchpolicy"
	"github.com/wayfarer-go/wayfarer/internal/gameclient"
	"github.com/wayfarer-go/wayfarer/internal/geo"
	"github.com/wayfarer-go/wayfarer/pkg/core"
)

// SweepSpecies is the allow-list of low-value species recycled by the sweep.
var SweepSpecies = []core.Species{
	core.SpeciesPidgey,
	core.SpeciesWeedle,
	core.SpeciesCaterpie,
	core.SpeciesRattata,
	core.SpeciesSpearow,
	core.SpeciesZubat,
}

// SetLocation records pos and forwards it to the session. Without a session it
// only records the position; remote failures are logged and dropped.
func (m *Manager) SetLocation(ctx context.Context, pos core.Position) {
	m.mu.Lock()
	p := pos
	m.position = &p
	h := m.handle
	m.mu.Unlock()

	if h == nil {
		return
	}
	cctx, cancel := m.call(ctx)
	defer cancel()
	if err := h.SetLocation(cctx, pos); err != nil {
		err = m.classify("set location", h, err)
		m.log.Warn("Failed to push location", "error", err)
	}
}

// ListDiscoveredWaypoints merges the waypoints reported by the session into the
// tracked set and returns the whole set.
func (m *Manager) ListDiscoveredWaypoints(ctx context.Context) ([]gameclient.Waypoint, error) {
	h, err := m.session()
	if err != nil {
		return nil, err
	}
	if _, err := m.fetchWaypoints(ctx, h); err != nil {
		return nil, err
	}
	return m.waypoints.All(), nil
}

func (m *Manager) fetchWaypoints(ctx context.Context, h gameclient.Session) ([]gameclient.Waypoint, error) {
	cctx, cancel := m.call(ctx)
	defer cancel()
	found, err := h.Waypoints(cctx)
	if err != nil {
		return nil, m.classify("list waypoints", h, err)
	}
	if added := m.waypoints.Merge(found...); added > 0 {
		m.log.Debug("Discovered waypoints", "added", added, "tracked", m.waypoints.Len())
	}
	return found, nil
}

// LootReachableWaypoints loots every waypoint that is off cooldown and within
// the loot radius of the last pushed position. Outcomes gathered before a
// fatal failure are returned together with the error.
func (m *Manager) LootReachableWaypoints(ctx context.Context) ([]core.LootOutcome, error) {
	h, err := m.session()
	if err != nil {
		return nil, err
	}
	found, err := m.fetchWaypoints(ctx, h)
	if err != nil {
		return nil, err
	}
	pos, ok := m.Position()
	if !ok {
		return nil, nil
	}

	var outcomes []core.LootOutcome
	for _, wp := range found {
		if !wp.CanLoot() || !m.reachable(pos, wp.Position()) {
			continue
		}

		cctx, cancel := m.call(ctx)
		outcome, err := wp.Loot(cctx)
		cancel()
		if err != nil {
			err = m.classify("loot "+wp.ID(), h, err)
			if fatal(err) {
				return outcomes, err
			}
			m.log.Warn("Loot failed", "waypoint", wp.ID(), "error", err)
			outcome = core.LootOutcome{
				WaypointID: wp.ID(),
				Status:     core.LootError,
				RawStatus:  string(core.LootError),
				Position:   wp.Position(),
			}
		}
		if outcome.WaypointID == "" {
			outcome.WaypointID = wp.ID()
		}
		m.log.Debug("Looted waypoint", "waypoint", wp.ID(), "status", outcome.Status, "xp", outcome.Experience)
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

func (m *Manager) reachable(from, to core.Position) bool {
	if m.cfg.LootRadius <= 0 {
		return true
	}
	return geo.Within(from, to, m.cfg.LootRadius)
}

// ListNearbyCreatures merges the catchable creatures into the tracked set and
// returns a sighting for every tracked creature.
func (m *Manager) ListNearbyCreatures(ctx context.Context) ([]core.CreatureSighting, error) {
	h, err := m.session()
	if err != nil {
		return nil, err
	}
	if _, err := m.fetchCreatures(ctx, h); err != nil {
		return nil, err
	}

	tracked := m.creatures.All()
	out := make([]core.CreatureSighting, 0, len(tracked))
	for _, c := range tracked {
		out = append(out, core.CreatureSighting{
			ID:       c.ID(),
			Species:  c.Species(),
			Rarity:   c.Rarity(),
			Position: c.Position(),
		})
	}
	return out, nil
}

func (m *Manager) fetchCreatures(ctx context.Context, h gameclient.Session) ([]gameclient.Creature, error) {
	cctx, cancel := m.call(ctx)
	defer cancel()
	found, err := h.Catchable(cctx)
	if err != nil {
		return nil, m.classify("list creatures", h, err)
	}
	if added := m.creatures.Merge(found...); added > 0 {
		m.log.Debug("Discovered creatures", "added", added, "tracked", m.creatures.Len())
	}
	return found, nil
}

// ListDiscoveredGyms merges the gyms reported by the session into the tracked
// set and returns the whole set.
func (m *Manager) ListDiscoveredGyms(ctx context.Context) ([]gameclient.Gym, error) {
	h, err := m.session()
	if err != nil {
		return nil, err
	}
	cctx, cancel := m.call(ctx)
	defer cancel()
	found, err := h.Gyms(cctx)
	if err != nil {
		return nil, m.classify("list gyms", h, err)
	}
	if added := m.gyms.Merge(found...); added > 0 {
		m.log.Debug("Discovered gyms", "added", added, "tracked", m.gyms.Len())
	}
	return m.gyms.All(), nil
}

// AttemptCapture tries creatures in the order the session lists them and
// captures the first one whose encounter succeeds. It returns nil without an
// error when no encounter succeeds.
func (m *Manager) AttemptCapture(ctx context.Context) (*core.CaptureOutcome, error) {
	h, err := m.session()
	if err != nil {
		return nil, err
	}

	inv, err := m.inventory(ctx, h)
	if err != nil {
		return nil, err
	}
	if inv.Balls <= 0 && inv.MasterBalls <= 0 {
		return nil, ErrInsufficientSupplies
	}

	candidates, err := m.fetchCreatures(ctx, h)
	if err != nil {
		return nil, err
	}

	for _, c := range candidates {
		cctx, cancel := m.call(ctx)
		ok, err := c.Encounter(cctx)
		cancel()
		if err != nil {
			err = m.classify("encounter "+c.ID(), h, err)
			if fatal(err) {
				return nil, err
			}
			m.log.Debug("Encounter failed", "creature", c.ID(), "error", err)
			continue
		}
		if !ok {
			continue
		}
		return m.capture(ctx, h, c, inv)
	}
	return nil, nil
}

func (m *Manager) capture(ctx context.Context, h gameclient.Session, c gameclient.Creature, inv core.Inventory) (*core.CaptureOutcome, error) {
	cctx, cancel := m.call(ctx)
	collected, err := h.Collected(cctx, c.Species())
	cancel()
	if err != nil {
		return nil, m.classify("collection record", h, err)
	}

	policy := catchpolicy.WithInventory(catchpolicy.Decide(c.Rarity(), collected), inv)
	if !catchpolicy.CanCapture(policy, inv) {
		return nil, ErrInsufficientSupplies
	}

	if err := pause(ctx, m.cfg.EncounterPace); err != nil {
		return nil, err
	}

	cctx, cancel = m.call(ctx)
	status, err := c.Capture(cctx, policy)
	cancel()
	if err != nil {
		return nil, m.classify("capture "+c.ID(), h, err)
	}

	outcome := &core.CaptureOutcome{
		CreatureID: c.ID(),
		Species:    c.Species(),
		Rarity:     c.Rarity(),
		Status:     status,
		Policy:     policy,
		Position:   c.Position(),
	}
	if status == core.CaptureSuccess {
		m.creatures.Remove(c.ID())
	}
	m.log.Info("Capture attempted",
		"creature", c.ID(),
		"species", c.Species(),
		"rarity", c.Rarity(),
		"collected", collected,
		"maxBalls", policy.MaxBallAttempts,
		"status", status)
	return outcome, nil
}

func (m *Manager) inventory(ctx context.Context, h gameclient.Session) (core.Inventory, error) {
	cctx, cancel := m.call(ctx)
	defer cancel()
	inv, err := h.Inventory(cctx)
	if err != nil {
		return core.Inventory{}, m.classify("inventory", h, err)
	}
	return inv, nil
}

// ReduceLowValueInventory evolves every eligible held specimen of the sweep
// species and transfers the result, or the original when evolution is not
// possible. Item failures are logged and counted; only losing the session
// stops the sweep.
func (m *Manager) ReduceLowValueInventory(ctx context.Context) (core.SweepReport, error) {
	var report core.SweepReport
	h, err := m.session()
	if err != nil {
		return report, err
	}

	for _, species := range SweepSpecies {
		cctx, cancel := m.call(ctx)
		held, err := h.Specimens(cctx, species)
		cancel()
		if err != nil {
			err = m.classify("list specimens", h, err)
			if sessionLost(err) {
				return report, err
			}
			m.log.Warn("Failed to list specimens", "species", species, "error", err)
			report.Failed++
			continue
		}

		for _, sp := range held {
			if err := m.recycle(ctx, h, sp, &report); err != nil {
				return report, err
			}
		}
	}

	if report.Evolved+report.Transferred+report.Failed > 0 {
		m.log.Info("Inventory sweep finished",
			"evolved", report.Evolved,
			"transferred", report.Transferred,
			"failed", report.Failed)
	}
	return report, nil
}

// recycle returns an error only when the session is gone.
func (m *Manager) recycle(ctx context.Context, h gameclient.Session, sp gameclient.Specimen, report *core.SweepReport) error {
	target := sp
	if sp.CanEvolve() {
		cctx, cancel := m.call(ctx)
		evolved, err := sp.Evolve(cctx)
		cancel()
		switch {
		case err != nil:
			err = m.classify("evolve "+sp.ID(), h, err)
			if sessionLost(err) {
				return err
			}
			m.log.Warn("Evolve failed", "specimen", sp.ID(), "species", sp.Species(), "error", err)
			report.Failed++
		default:
			report.Evolved++
			target = evolved
		}
		if err := pause(ctx, m.cfg.ActionPace); err != nil {
			return err
		}
	}

	cctx, cancel := m.call(ctx)
	err := target.Transfer(cctx)
	cancel()
	if err != nil {
		err = m.classify("transfer "+target.ID(), h, err)
		if sessionLost(err) {
			return err
		}
		m.log.Warn("Transfer failed", "specimen", target.ID(), "species", target.Species(), "error", err)
		report.Failed++
	} else {
		report.Transferred++
	}
	return pause(ctx, m.cfg.ActionPace)
}

func sessionLost(err error) bool {
	return errors.Is(err, ErrSessionExpired) ||
		errors.Is(err, ErrNoSession) ||
		errors.Is(err, context.Canceled)
}
