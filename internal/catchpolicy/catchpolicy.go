// Package catchpolicy decides how many consumables a capture attempt may spend.
package catchpolicy

import "github.com/wayfarer-go/wayfarer/pkg/core"

// tierLimits caps consumption for species already in the collection.
// Tiers rarer than RARE are absent and therefore unlimited.
var tierLimits = map[core.Rarity]int{
	core.RarityVeryCommon: 2,
	core.RarityCommon:     5,
	core.RarityUncommon:   7,
	core.RarityRare:       9,
}

// Limit returns the tier cap for a previously collected species.
func Limit(tier core.Rarity) int {
	if limit, ok := tierLimits[tier]; ok {
		return limit
	}
	return core.Unlimited
}

// Decide returns the policy for a capture attempt.
// Species never collected before get unlimited consumption; collected species
// are capped by their rarity tier.
func Decide(tier core.Rarity, alreadyCollected bool) core.CatchPolicy {
	limit := core.Unlimited
	if alreadyCollected {
		limit = Limit(tier)
	}
	return core.CatchPolicy{
		MaxBallAttempts:   limit,
		MaxBaitItems:      limit,
		UseBait:           true,
		ExcludeMasterBall: true,
		UseBestBall:       true,
	}
}

// WithInventory adjusts policy to what the player actually holds.
func WithInventory(policy core.CatchPolicy, inv core.Inventory) core.CatchPolicy {
	if inv.Bait <= 0 {
		policy.UseBait = false
		policy.MaxBaitItems = 0
	}
	return policy
}

// CanCapture reports whether inv holds a capture device the policy may use.
func CanCapture(policy core.CatchPolicy, inv core.Inventory) bool {
	if inv.Balls > 0 {
		return true
	}
	return !policy.ExcludeMasterBall && inv.MasterBalls > 0
}
