package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRarity(t *testing.T) {
	tests := []struct {
		input string
		want  Rarity
	}{
		{"VERY_COMMON", RarityVeryCommon},
		{"common", RarityCommon},
		{"very-rare", RarityVeryRare},
		{" Legendary ", RarityLegendary},
		{"MYTHIC", RarityMythic},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRarity(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseRarity("shiny")
	assert.Error(t, err)
}

func TestRarity_Ordered(t *testing.T) {
	for i := 1; i < len(Rarities); i++ {
		assert.Less(t, Rarities[i-1], Rarities[i])
	}
	assert.Equal(t, "Rarity(42)", Rarity(42).String())
}

func TestSpecies_DisplayName(t *testing.T) {
	assert.Equal(t, "Pidgey", SpeciesPidgey.DisplayName())
	assert.Equal(t, "Mr mime", Species("MR_MIME").DisplayName())
	assert.Equal(t, "Unknown", Species("").DisplayName())
}

func TestScanOutcome_Messages(t *testing.T) {
	o := ScanOutcome{
		Loot: []LootOutcome{
			{Status: LootSuccess, Experience: 50},
			{Status: LootInventoryFull},
			{Status: LootInCooldown},
			{Status: LootError, RawStatus: "OUT_OF_RANGE_FAR"},
		},
		Capture: &CaptureOutcome{Species: SpeciesZubat, Status: CaptureFlee},
		Notices: []string{"Not enough capture devices to catch creature"},
	}

	assert.Equal(t, []string{
		"Waypoint was successfully looted. Gained 50 XP",
		"Inventory too full to loot waypoint",
		"Waypoint is currently in cooldown",
		"Couldn't loot waypoint due to error OUT_OF_RANGE_FAR",
		"Zubat fled",
		"Not enough capture devices to catch creature",
	}, o.Messages())
}

func TestCaptureOutcome_Message(t *testing.T) {
	assert.Equal(t, "Rattata successfully captured", CaptureOutcome{Species: SpeciesRattata, Status: CaptureSuccess}.Message())
	assert.Equal(t, "Rattata missed", CaptureOutcome{Species: SpeciesRattata, Status: CaptureMissed}.Message())
	assert.Equal(t, "Unable to catch Rattata", CaptureOutcome{Species: SpeciesRattata, Status: CaptureEscape}.Message())
}
