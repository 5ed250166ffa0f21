// pkg/core/outcome.go
package core

import (
	"fmt"
	"time"
)

// LootStatus classifies the result of looting one waypoint.
type LootStatus string

const (
	LootSuccess       LootStatus = "SUCCESS"
	LootInventoryFull LootStatus = "INVENTORY_FULL"
	LootInCooldown    LootStatus = "IN_COOLDOWN"
	LootOutOfRange    LootStatus = "OUT_OF_RANGE"
	LootError         LootStatus = "ERROR"
)

// LootOutcome is the per-waypoint result of a loot attempt.
type LootOutcome struct {
	WaypointID   string     `json:"waypointId"`
	Status       LootStatus `json:"status"`
	Experience   int        `json:"experience"`
	ItemsAwarded int        `json:"itemsAwarded"`
	// RawStatus is the backend's own status name, kept for unclassified results.
	RawStatus string   `json:"rawStatus,omitempty"`
	Position  Position `json:"position"`
}

// CaptureStatus classifies the result of a capture call.
type CaptureStatus string

const (
	CaptureSuccess CaptureStatus = "SUCCESS"
	CaptureFlee    CaptureStatus = "FLEE"
	CaptureMissed  CaptureStatus = "MISSED"
	CaptureEscape  CaptureStatus = "ESCAPE"
	CaptureError   CaptureStatus = "ERROR"
)

// CaptureOutcome describes the single capture attempted during a tick.
type CaptureOutcome struct {
	CreatureID string        `json:"creatureId"`
	Species    Species       `json:"species"`
	Rarity     Rarity        `json:"rarity"`
	Status     CaptureStatus `json:"status"`
	Policy     CatchPolicy   `json:"policy"`
	Position   Position      `json:"position"`
}

// CreatureSighting is a display record of a creature near the player.
type CreatureSighting struct {
	ID       string   `json:"id"`
	Species  Species  `json:"species"`
	Rarity   Rarity   `json:"rarity"`
	Position Position `json:"position"`
}

// SweepReport summarises one inventory reduction sweep.
type SweepReport struct {
	Evolved     int `json:"evolved"`
	Transferred int `json:"transferred"`
	Failed      int `json:"failed"`
}

// ScanOutcome summarises one tick of the world scan loop.
// It lives only for the duration of the tick and its notifications.
type ScanOutcome struct {
	Tick       uint64             `json:"tick"`
	StartedAt  time.Time          `json:"startedAt"`
	Duration   time.Duration      `json:"duration"`
	Position   Position           `json:"position"`
	Skipped    bool               `json:"skipped"`
	SkipReason string             `json:"skipReason,omitempty"`
	Aborted    bool               `json:"aborted"`
	Loot       []LootOutcome      `json:"loot,omitempty"`
	Nearby     []CreatureSighting `json:"nearby,omitempty"`
	Capture    *CaptureOutcome    `json:"capture,omitempty"`
	Sweep      SweepReport        `json:"sweep"`
	Notices    []string           `json:"notices,omitempty"`
	Errors     []error            `json:"-"`
}

// Messages renders the outcome as short notifications for the user.
func (o ScanOutcome) Messages() []string {
	var out []string
	for _, l := range o.Loot {
		out = append(out, l.Message())
	}
	if o.Capture != nil {
		out = append(out, o.Capture.Message())
	}
	out = append(out, o.Notices...)
	return out
}

// Message renders a loot outcome as a short notification.
func (l LootOutcome) Message() string {
	switch l.Status {
	case LootSuccess:
		return fmt.Sprintf("Waypoint was successfully looted. Gained %d XP", l.Experience)
	case LootInventoryFull:
		return "Inventory too full to loot waypoint"
	case LootInCooldown:
		return "Waypoint is currently in cooldown"
	case LootOutOfRange:
		return "Waypoint is out of range"
	default:
		status := l.RawStatus
		if status == "" {
			status = string(l.Status)
		}
		return "Couldn't loot waypoint due to error " + status
	}
}

// Message renders a capture outcome as a short notification.
func (c CaptureOutcome) Message() string {
	name := c.Species.DisplayName()
	switch c.Status {
	case CaptureSuccess:
		return name + " successfully captured"
	case CaptureFlee:
		return name + " fled"
	case CaptureMissed:
		return name + " missed"
	default:
		return "Unable to catch " + name
	}
}
