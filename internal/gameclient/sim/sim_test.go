package sim

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfarer-go/wayfarer/internal/gameclient"
	"github.com/wayfarer-go/wayfarer/pkg/core"
)

func newTestSession(t *testing.T, w *World) gameclient.Session {
	t.Helper()
	w.AddAccount("ash", "pikachu")
	s, err := w.Authenticate(context.Background(), core.Credentials{Username: "ash", Password: "pikachu"})
	require.NoError(t, err)
	return s
}

func TestAuthenticate(t *testing.T) {
	w := NewWorld()
	w.AddAccount("ash", "pikachu")

	_, err := w.Authenticate(context.Background(), core.Credentials{Username: "ash", Password: "wrong"})
	assert.ErrorIs(t, err, gameclient.ErrAuthFailed)

	w.SetBusy(true)
	_, err = w.Authenticate(context.Background(), core.Credentials{Username: "ash", Password: "pikachu"})
	assert.ErrorIs(t, err, gameclient.ErrUnavailable)

	w.SetBusy(false)
	s, err := w.Authenticate(context.Background(), core.Credentials{Username: "ash", Password: "pikachu"})
	require.NoError(t, err)
	assert.NotNil(t, s)
	assert.Equal(t, 3, w.Calls(OpAuthenticate))
}

func TestLoot_EntersCooldown(t *testing.T) {
	w := NewWorld()
	w.AddWaypoint(WaypointSpec{ID: "wp-1", Experience: 50, Items: 2})
	s := newTestSession(t, w)
	ctx := context.Background()

	wps, err := s.Waypoints(ctx)
	require.NoError(t, err)
	require.Len(t, wps, 1)
	require.True(t, wps[0].CanLoot())

	out, err := wps[0].Loot(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.LootSuccess, out.Status)
	assert.Equal(t, 50, out.Experience)
	assert.Equal(t, 2, out.ItemsAwarded)

	wps, err = s.Waypoints(ctx)
	require.NoError(t, err)
	assert.False(t, wps[0].CanLoot())
	assert.Equal(t, 1, w.LootCount("wp-1"))
}

func TestExpire_InvalidatesSessions(t *testing.T) {
	w := NewWorld()
	s := newTestSession(t, w)

	w.Expire()
	_, err := s.Waypoints(context.Background())
	assert.ErrorIs(t, err, gameclient.ErrSessionInvalid)
}

func TestFailAndHeal(t *testing.T) {
	w := NewWorld()
	s := newTestSession(t, w)
	ctx := context.Background()

	w.Fail(OpGyms, gameclient.ErrUnavailable)
	_, err := s.Gyms(ctx)
	assert.ErrorIs(t, err, gameclient.ErrUnavailable)

	w.Heal(OpGyms)
	_, err = s.Gyms(ctx)
	assert.NoError(t, err)
}

func TestStall_BlocksUntilDeadline(t *testing.T) {
	w := NewWorld()
	s := newTestSession(t, w)
	w.Stall(OpCatchable)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := s.Catchable(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestCapture_ConsumesBallsAndRecordsCollection(t *testing.T) {
	w := NewWorld()
	w.SetInventory(core.Inventory{Balls: 1, Bait: 1})
	w.AddCreature(CreatureSpec{ID: "c-1", Species: core.SpeciesZubat})
	w.AddCreature(CreatureSpec{ID: "c-2", Species: core.SpeciesZubat})
	s := newTestSession(t, w)
	ctx := context.Background()

	creatures, err := s.Catchable(ctx)
	require.NoError(t, err)
	require.Len(t, creatures, 2)

	policy := core.CatchPolicy{MaxBallAttempts: core.Unlimited, MaxBaitItems: core.Unlimited, UseBait: true, ExcludeMasterBall: true}
	status, err := creatures[0].Capture(ctx, policy)
	require.NoError(t, err)
	assert.Equal(t, core.CaptureSuccess, status)
	assert.Equal(t, core.Inventory{}, w.Inventory())

	collected, err := s.Collected(ctx, core.SpeciesZubat)
	require.NoError(t, err)
	assert.True(t, collected)

	_, err = creatures[1].Capture(ctx, policy)
	assert.ErrorIs(t, err, gameclient.ErrNoSuchItem)

	remaining, err := s.Catchable(ctx)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestEvolveAndTransfer(t *testing.T) {
	w := NewWorld()
	w.AddSpecimen(SpecimenSpec{ID: "p-1", Species: core.SpeciesPidgey, Evolvable: true})
	s := newTestSession(t, w)
	ctx := context.Background()

	specimens, err := s.Specimens(ctx, core.SpeciesPidgey)
	require.NoError(t, err)
	require.Len(t, specimens, 1)

	evolved, err := specimens[0].Evolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.Species("PIDGEOTTO"), evolved.Species())
	assert.Equal(t, []core.Species{"PIDGEOTTO"}, w.HeldSpecies())

	require.NoError(t, evolved.Transfer(ctx))
	assert.Empty(t, w.HeldSpecies())
}

func TestPopulate(t *testing.T) {
	w := NewWorld()
	center := core.Position{Latitude: 48.8566, Longitude: 2.3522}
	Populate(w, center, rand.New(rand.NewPCG(1, 2)))

	s, err := w.Authenticate(context.Background(), core.Credentials{Username: DemoUsername, Password: DemoPassword})
	require.NoError(t, err)

	wps, err := s.Waypoints(context.Background())
	require.NoError(t, err)
	assert.Len(t, wps, 12)
	for _, wp := range wps {
		assert.InDelta(t, center.Latitude, wp.Position().Latitude, 0.01)
		assert.InDelta(t, center.Longitude, wp.Position().Longitude, 0.01)
	}

	creatures, err := s.Catchable(context.Background())
	require.NoError(t, err)
	assert.Len(t, creatures, 30)
}
