package httpapi

import (
	"context"
	"net/http"

	"github.com/wayfarer-go/wayfarer/internal/gameclient"
	"github.com/wayfarer-go/wayfarer/pkg/core"
)

type session struct {
	client *Client
	token  string
}

func (s *session) call(ctx context.Context, method, path string, body, out any) error {
	return s.client.do(ctx, method, path, s.token, body, out)
}

func (s *session) SetLocation(ctx context.Context, pos core.Position) error {
	return s.call(ctx, http.MethodPut, "/api/v1/location", locationDTO{
		Latitude:  pos.Latitude,
		Longitude: pos.Longitude,
		Altitude:  pos.Altitude,
	}, nil)
}

func (s *session) Waypoints(ctx context.Context) ([]gameclient.Waypoint, error) {
	var dtos []waypointDTO
	if err := s.call(ctx, http.MethodGet, "/api/v1/waypoints", nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]gameclient.Waypoint, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, &waypoint{session: s, dto: d})
	}
	return out, nil
}

func (s *session) Catchable(ctx context.Context) ([]gameclient.Creature, error) {
	var dtos []creatureDTO
	if err := s.call(ctx, http.MethodGet, "/api/v1/creatures/catchable", nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]gameclient.Creature, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, &creature{session: s, dto: d})
	}
	return out, nil
}

func (s *session) Gyms(ctx context.Context) ([]gameclient.Gym, error) {
	var dtos []gymDTO
	if err := s.call(ctx, http.MethodGet, "/api/v1/gyms", nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]gameclient.Gym, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, gym{dto: d})
	}
	return out, nil
}

func (s *session) Inventory(ctx context.Context) (core.Inventory, error) {
	var inv core.Inventory
	err := s.call(ctx, http.MethodGet, "/api/v1/inventory", nil, &inv)
	return inv, err
}

func (s *session) Collected(ctx context.Context, species core.Species) (bool, error) {
	var resp collectionResponse
	err := s.call(ctx, http.MethodGet, "/api/v1/collection/"+escape(string(species)), nil, &resp)
	return resp.Collected, err
}

func (s *session) Specimens(ctx context.Context, species core.Species) ([]gameclient.Specimen, error) {
	var dtos []specimenDTO
	path := "/api/v1/specimens?species=" + escape(string(species))
	if err := s.call(ctx, http.MethodGet, path, nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]gameclient.Specimen, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, &specimen{session: s, dto: d})
	}
	return out, nil
}

type waypoint struct {
	session *session
	dto     waypointDTO
}

func (w *waypoint) ID() string              { return w.dto.ID }
func (w *waypoint) Position() core.Position { return w.dto.position() }
func (w *waypoint) CanLoot() bool           { return w.dto.CanLoot }

func (w *waypoint) Loot(ctx context.Context) (core.LootOutcome, error) {
	var resp lootResponse
	if err := w.session.call(ctx, http.MethodPost, "/api/v1/waypoints/"+escape(w.dto.ID)+"/loot", nil, &resp); err != nil {
		return core.LootOutcome{}, err
	}
	return core.LootOutcome{
		WaypointID:   w.dto.ID,
		Status:       lootStatus(resp.Status),
		Experience:   resp.Experience,
		ItemsAwarded: resp.ItemsAwarded,
		RawStatus:    resp.Status,
		Position:     w.dto.position(),
	}, nil
}

type creature struct {
	session *session
	dto     creatureDTO
}

func (c *creature) ID() string              { return c.dto.ID }
func (c *creature) Species() core.Species   { return c.dto.Species }
func (c *creature) Rarity() core.Rarity     { return c.dto.Rarity }
func (c *creature) Position() core.Position { return c.dto.position() }

func (c *creature) Encounter(ctx context.Context) (bool, error) {
	var resp encounterResponse
	err := c.session.call(ctx, http.MethodPost, "/api/v1/creatures/"+escape(c.dto.ID)+"/encounter", nil, &resp)
	return resp.Success, err
}

func (c *creature) Capture(ctx context.Context, policy core.CatchPolicy) (core.CaptureStatus, error) {
	var resp captureResponse
	if err := c.session.call(ctx, http.MethodPost, "/api/v1/creatures/"+escape(c.dto.ID)+"/capture", policy, &resp); err != nil {
		return core.CaptureError, err
	}
	return captureStatus(resp.Status), nil
}

type gym struct {
	dto gymDTO
}

func (g gym) ID() string              { return g.dto.ID }
func (g gym) Position() core.Position { return g.dto.position() }

type specimen struct {
	session *session
	dto     specimenDTO
}

func (s *specimen) ID() string            { return s.dto.ID }
func (s *specimen) Species() core.Species { return s.dto.Species }
func (s *specimen) CanEvolve() bool       { return s.dto.CanEvolve }

func (s *specimen) Evolve(ctx context.Context) (gameclient.Specimen, error) {
	var evolved specimenDTO
	if err := s.session.call(ctx, http.MethodPost, "/api/v1/specimens/"+escape(s.dto.ID)+"/evolve", nil, &evolved); err != nil {
		return nil, err
	}
	return &specimen{session: s.session, dto: evolved}, nil
}

func (s *specimen) Transfer(ctx context.Context) error {
	return s.session.call(ctx, http.MethodPost, "/api/v1/specimens/"+escape(s.dto.ID)+"/transfer", nil, nil)
}
