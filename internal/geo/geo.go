package geo

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"

	"github.com/wayfarer-go/wayfarer/pkg/core"
)

// Positions arrive as WGS84 (EPSG:4326). Range checks project both ends into Web
// Mercator (EPSG:3857) and correct the planar distance by the Mercator scale factor,
// which is accurate to well under a metre at loot-radius scale.

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// PositionFromString parses "long,lat" or "long,lat,elev" into a core.Position.
func PositionFromString(coords string) (core.Position, error) {
	coordsSplit := strings.Split(coords, ",")
	if len(coordsSplit) < 2 {
		return core.Position{}, ErrInvalidCoordinates
	}
	long, err := strconv.ParseFloat(strings.TrimSpace(coordsSplit[0]), 64)
	if err != nil {
		return core.Position{}, ErrInvalidCoordinates
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(coordsSplit[1]), 64)
	if err != nil {
		return core.Position{}, ErrInvalidCoordinates
	}
	var elev float64
	if len(coordsSplit) > 2 {
		elev, err = strconv.ParseFloat(strings.TrimSpace(coordsSplit[2]), 64)
		if err != nil {
			return core.Position{}, ErrInvalidCoordinates
		}
	}
	if !Valid(lat, long) {
		return core.Position{}, ErrInvalidCoordinates
	}
	return core.Position{Latitude: lat, Longitude: long, Altitude: elev}, nil
}

// Valid reports whether lat/long fall inside the WGS84 domain.
func Valid(lat, long float64) bool {
	return lat >= -90 && lat <= 90 && long >= -180 && long <= 180
}

// Project converts a position into a Web Mercator point carrying altitude as Z.
func Project(p core.Position) geom.Point {
	epsg := wgs84.EPSG()
	f := epsg.Transform(4326, 3857)
	x, y, _ := f(p.Longitude, p.Latitude, 0)
	return geom.NewPoint(
		geom.Coordinates{
			XY:   geom.XY{X: x, Y: y},
			Z:    p.Altitude,
			Type: geom.CoordinatesType(geom.DimXYZ),
		},
	)
}

// Distance returns the ground distance in metres between two positions.
func Distance(a, b core.Position) float64 {
	ca, ok := Project(a).Coordinates()
	if !ok {
		return math.Inf(1)
	}
	cb, ok := Project(b).Coordinates()
	if !ok {
		return math.Inf(1)
	}
	meanLat := (a.Latitude + b.Latitude) / 2 * math.Pi / 180
	return math.Hypot(ca.X-cb.X, ca.Y-cb.Y) * math.Cos(meanLat)
}

// Within reports whether b lies within radius metres of a.
func Within(a, b core.Position, radius float64) bool {
	return Distance(a, b) <= radius
}

// Stamp returns p with its timestamp set to t.
func Stamp(p core.Position, t time.Time) core.Position {
	p.Timestamp = t
	return p
}
