// pkg/core/rarity.go
package core

import (
	"fmt"
	"strings"
)

// Rarity is the ordered scarcity class of a creature species.
type Rarity int

const (
	RarityVeryCommon Rarity = iota
	RarityCommon
	RarityUncommon
	RarityRare
	RarityVeryRare
	RarityEpic
	RarityLegendary
	RarityMythic
)

var rarityNames = [...]string{
	"VERY_COMMON",
	"COMMON",
	"UNCOMMON",
	"RARE",
	"VERY_RARE",
	"EPIC",
	"LEGENDARY",
	"MYTHIC",
}

// Rarities lists every tier from most to least common.
var Rarities = []Rarity{
	RarityVeryCommon,
	RarityCommon,
	RarityUncommon,
	RarityRare,
	RarityVeryRare,
	RarityEpic,
	RarityLegendary,
	RarityMythic,
}

func (r Rarity) String() string {
	if r < 0 || int(r) >= len(rarityNames) {
		return fmt.Sprintf("Rarity(%d)", int(r))
	}
	return rarityNames[r]
}

// ParseRarity converts a tier name such as "VERY_RARE" into a Rarity.
// Matching is case-insensitive and accepts dashes or spaces for underscores.
func ParseRarity(s string) (Rarity, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	for i, name := range rarityNames {
		if name == norm {
			return Rarity(i), nil
		}
	}
	return 0, fmt.Errorf("unknown rarity %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (r Rarity) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Rarity) UnmarshalText(b []byte) error {
	parsed, err := ParseRarity(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
