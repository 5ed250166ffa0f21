package sim

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/wayfarer-go/wayfarer/pkg/core"
)

// DemoUsername and DemoPassword are the account created by Populate.
const (
	DemoUsername = "demo"
	DemoPassword = "demo"
)

var demoSpecies = []struct {
	species core.Species
	rarity  core.Rarity
}{
	{core.SpeciesPidgey, core.RarityVeryCommon},
	{core.SpeciesRattata, core.RarityVeryCommon},
	{core.SpeciesZubat, core.RarityVeryCommon},
	{core.SpeciesWeedle, core.RarityCommon},
	{core.SpeciesCaterpie, core.RarityCommon},
	{core.SpeciesSpearow, core.RarityCommon},
	{"PIKACHU", core.RarityUncommon},
	{"EEVEE", core.RarityRare},
	{"SNORLAX", core.RarityVeryRare},
	{"DRAGONITE", core.RarityEpic},
	{"MEWTWO", core.RarityLegendary},
	{"MEW", core.RarityMythic},
}

// Populate fills the world with entities scattered around center.
func Populate(w *World, center core.Position, rng *rand.Rand) {
	w.AddAccount(DemoUsername, DemoPassword)
	w.SetInventory(core.Inventory{Balls: 40, MasterBalls: 1, Bait: 10})

	for i := range 12 {
		w.AddWaypoint(WaypointSpec{
			ID:         fmt.Sprintf("waypoint-%02d", i+1),
			Position:   offset(center, rng.Float64()*240-120, rng.Float64()*240-120),
			Experience: 50,
			Items:      1 + rng.IntN(4),
		})
	}

	for i := range 30 {
		pick := demoSpecies[weightedIndex(rng)]
		w.AddCreature(CreatureSpec{
			ID:       fmt.Sprintf("creature-%02d", i+1),
			Species:  pick.species,
			Rarity:   pick.rarity,
			Position: offset(center, rng.Float64()*140-70, rng.Float64()*140-70),
			Hidden:   rng.IntN(5) == 0,
			Result:   captureResult(rng),
		})
	}

	for i := range 3 {
		w.AddGym(fmt.Sprintf("gym-%d", i+1), offset(center, rng.Float64()*400-200, rng.Float64()*400-200))
	}

	for i, s := range []core.Species{core.SpeciesPidgey, core.SpeciesPidgey, core.SpeciesWeedle, core.SpeciesZubat} {
		w.AddSpecimen(SpecimenSpec{
			ID:        fmt.Sprintf("held-%d", i+1),
			Species:   s,
			Evolvable: i%2 == 0,
		})
	}
	w.MarkCollected(core.SpeciesPidgey)
}

// weightedIndex favours the common end of demoSpecies.
func weightedIndex(rng *rand.Rand) int {
	n := len(demoSpecies)
	i := int(math.Floor(math.Pow(rng.Float64(), 2.5) * float64(n)))
	return min(i, n-1)
}

func captureResult(rng *rand.Rand) core.CaptureStatus {
	switch r := rng.IntN(10); {
	case r < 6:
		return core.CaptureSuccess
	case r < 8:
		return core.CaptureMissed
	case r < 9:
		return core.CaptureFlee
	default:
		return core.CaptureEscape
	}
}

// offset moves p by the given metres east and north.
func offset(p core.Position, east, north float64) core.Position {
	const metresPerDegree = 111_320.0
	out := p
	out.Latitude += north / metresPerDegree
	out.Longitude += east / (metresPerDegree * math.Cos(p.Latitude*math.Pi/180))
	return out
}
