// pkg/core/species.go
package core

import "strings"

// Species identifies a creature kind, e.g. "PIDGEY".
type Species string

// Species held in bulk and recycled for experience by the inventory sweep.
const (
	SpeciesPidgey   Species = "PIDGEY"
	SpeciesWeedle   Species = "WEEDLE"
	SpeciesCaterpie Species = "CATERPIE"
	SpeciesRattata  Species = "RATTATA"
	SpeciesSpearow  Species = "SPEAROW"
	SpeciesZubat    Species = "ZUBAT"
)

// DisplayName returns the species in title case ("PIDGEY" -> "Pidgey").
func (s Species) DisplayName() string {
	name := strings.ToLower(strings.ReplaceAll(string(s), "_", " "))
	if name == "" {
		return "Unknown"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
