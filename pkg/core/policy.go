// pkg/core/policy.go
package core

// Unlimited marks a consumption limit with no cap.
const Unlimited = -1

// CatchPolicy bounds how many consumables a single capture attempt may spend.
type CatchPolicy struct {
	MaxBallAttempts   int  `json:"maxBallAttempts"`
	MaxBaitItems      int  `json:"maxBaitItems"`
	UseBait           bool `json:"useBait"`
	ExcludeMasterBall bool `json:"excludeMasterBall"`
	UseBestBall       bool `json:"useBestBall"`
}

// Inventory holds the consumable counts relevant to captures.
type Inventory struct {
	Balls       int `json:"balls"`
	MasterBalls int `json:"masterBalls"`
	Bait        int `json:"bait"`
}
