package geo

import (
	"encoding/json"
	"fmt"

	"github.com/wayfarer-go/wayfarer/pkg/core"
)

// ParseTrack parses a JSON array of coordinates into an ordered list of positions.
// Input format: "[[long1,lat1],[long2,lat2,elev2],...]"
func ParseTrack(input []byte) ([]core.Position, error) {
	var coords [][]float64
	if err := json.Unmarshal(input, &coords); err != nil {
		return nil, fmt.Errorf("failed to parse track JSON: %w", err)
	}

	if len(coords) < 1 {
		return nil, fmt.Errorf("track must have at least 1 point, got %d", len(coords))
	}

	track := make([]core.Position, len(coords))
	for i, coord := range coords {
		if len(coord) < 2 {
			return nil, fmt.Errorf("coordinate %d has insufficient values", i)
		}
		if !Valid(coord[1], coord[0]) {
			return nil, fmt.Errorf("coordinate %d: %w", i, ErrInvalidCoordinates)
		}
		track[i] = core.Position{Longitude: coord[0], Latitude: coord[1]}
		if len(coord) > 2 {
			track[i].Altitude = coord[2]
		}
	}

	return track, nil
}
