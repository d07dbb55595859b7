// Package controller provides the concrete driving strategies behind
// the racesim.Controller capability. All strategies are stateful per
// episode and draw their jitter from the episode random source.
package controller

import (
	"math/rand/v2"

	"github.com/samber/lo"

	"github.com/2arnav4/RaceOracle/pkg/racesim"
)

// personalities for the rule based strategy
const (
	PersonalityAggressive = "aggressive"
	PersonalityCautious   = "cautious"
	PersonalityNeutral    = "neutral"
)

const (
	targetSpeedAggressive = 48.0
	targetSpeedCautious   = 38.0
	targetSpeedNeutral    = 42.0

	// target speed multiplier while it rains
	rainSpeedFactor = 0.8
	// dead band around the target speed before full throttle/brake
	speedDeadBand = 2.0
	// throttle inside the dead band
	coastThrottle = 0.3
	// uniform throttle/brake exploration jitter
	inputJitter = 0.05
)

// RuleBased is a simple heuristic driver: hold a personality-dependent
// target speed, correct radially back onto the centerline.
type RuleBased struct {
	personality string
	trackRadius float64
	rng         *rand.Rand
}

func NewRuleBased(personality string, trackRadius float64, src rand.Source) *RuleBased {
	return &RuleBased{
		personality: personality,
		trackRadius: trackRadius,
		rng:         rand.New(src),
	}
}

func (c *RuleBased) Reset() {}

func (c *RuleBased) GetAction(obs racesim.Observation) (throttle, brake, steer float64) {
	target := c.targetSpeed()
	if obs.Weather.Raining {
		target *= rainSpeedFactor
	}

	switch {
	case obs.Speed < target-speedDeadBand:
		throttle = 1.0
	case obs.Speed > target+speedDeadBand:
		brake = 1.0
	default:
		throttle = coastThrottle
	}
	throttle = lo.Clamp(throttle+c.jitter(inputJitter), 0.0, 1.0)
	brake = lo.Clamp(brake+c.jitter(inputJitter), 0.0, 1.0)

	steer = steerOnCircle(obs.X, obs.Y, c.trackRadius, c.steerGain())
	return throttle, brake, steer
}

func (c *RuleBased) targetSpeed() float64 {
	switch c.personality {
	case PersonalityAggressive:
		return targetSpeedAggressive
	case PersonalityCautious:
		return targetSpeedCautious
	default:
		return targetSpeedNeutral
	}
}

func (c *RuleBased) steerGain() float64 {
	switch c.personality {
	case PersonalityAggressive:
		return 0.5
	case PersonalityCautious:
		return 0.25
	default:
		return 0.35
	}
}

func (c *RuleBased) jitter(amplitude float64) float64 {
	return (c.rng.Float64()*2 - 1) * amplitude
}
