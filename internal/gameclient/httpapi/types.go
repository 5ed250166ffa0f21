package httpapi

import "github.com/wayfarer-go/wayfarer/pkg/core"

type authRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type locationDTO struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
}

func (l locationDTO) position() core.Position {
	return core.Position{Latitude: l.Latitude, Longitude: l.Longitude, Altitude: l.Altitude}
}

type waypointDTO struct {
	ID string `json:"id"`
	locationDTO
	CanLoot bool `json:"canLoot"`
}

type lootResponse struct {
	Status       string `json:"status"`
	Experience   int    `json:"experience"`
	ItemsAwarded int    `json:"itemsAwarded"`
}

type creatureDTO struct {
	ID      string       `json:"id"`
	Species core.Species `json:"species"`
	Rarity  core.Rarity  `json:"rarity"`
	locationDTO
}

type encounterResponse struct {
	Success bool `json:"success"`
}

type captureResponse struct {
	Status string `json:"status"`
}

type gymDTO struct {
	ID string `json:"id"`
	locationDTO
}

type collectionResponse struct {
	Collected bool `json:"collected"`
}

type specimenDTO struct {
	ID        string       `json:"id"`
	Species   core.Species `json:"species"`
	CanEvolve bool         `json:"canEvolve"`
}

func lootStatus(raw string) core.LootStatus {
	switch s := core.LootStatus(raw); s {
	case core.LootSuccess, core.LootInventoryFull, core.LootInCooldown, core.LootOutOfRange:
		return s
	default:
		return core.LootError
	}
}

func captureStatus(raw string) core.CaptureStatus {
	switch s := core.CaptureStatus(raw); s {
	case core.CaptureSuccess, core.CaptureFlee, core.CaptureMissed, core.CaptureEscape:
		return s
	default:
		return core.CaptureError
	}
}
