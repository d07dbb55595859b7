package controller

import (
	"math/rand/v2"

	"github.com/samber/lo"

	"github.com/2arnav4/RaceOracle/pkg/racesim"
)

const (
	defaultAggression = 0.8

	// per-tick chance of briefly lifting off the throttle
	liftProbability = 0.05
	// per-tick chance of a short hard brake stab
	brakeStabProbability = 0.01
	aggressiveSteerGain  = 0.6
	driftJitter          = 0.03
)

// Aggressive is a high-risk driver: near-full throttle, occasional
// lifts and brake stabs, high-gain line correction with drift jitter.
type Aggressive struct {
	aggression  float64
	trackRadius float64
	rng         *rand.Rand
}

// NewAggressive creates the strategy; aggression outside (0,1] falls
// back to the default.
func NewAggressive(aggression, trackRadius float64, src rand.Source) *Aggressive {
	if aggression <= 0 || aggression > 1 {
		aggression = defaultAggression
	}
	return &Aggressive{
		aggression:  aggression,
		trackRadius: trackRadius,
		rng:         rand.New(src),
	}
}

func (c *Aggressive) Reset() {}

func (c *Aggressive) GetAction(obs racesim.Observation) (throttle, brake, steer float64) {
	throttle = 1.0
	if c.rng.Float64() < liftProbability {
		throttle -= c.rng.Float64() * (1 - c.aggression)
	}
	if c.rng.Float64() < brakeStabProbability*(1-c.aggression) {
		brake = c.rng.Float64() * 0.5
	}

	steer = steerOnCircle(obs.X, obs.Y, c.trackRadius, aggressiveSteerGain)
	steer += (c.rng.Float64()*2 - 1) * driftJitter * c.aggression
	return lo.Clamp(throttle, 0.0, 1.0), brake, lo.Clamp(steer, -1.0, 1.0)
}
