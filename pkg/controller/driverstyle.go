package controller

import (
	"math"
	"math/rand/v2"

	"github.com/samber/lo"

	"github.com/2arnav4/RaceOracle/pkg/profile"
	"github.com/2arnav4/RaceOracle/pkg/racesim"
)

const (
	// profile max speeds are km/h figures from real telemetry; the
	// simulation speed scale is smaller
	profileSpeedScale = 8.0
	baseSpeedCap      = 60.0

	tireWearPerLap    = 0.12
	wearAggressionCut = 0.25
	minAggression     = 0.4
	fuelGainPerLap    = 0.05
	minFuelFactor     = 0.7

	confidenceGain  = 0.01
	confidenceDecay = 0.002
	maxConfidence   = 1.2
	minConfidence   = 0.8
)

// DriverStyle drives according to a real driver's style profile, with
// tire wear, fuel load and confidence evolving over the race.
type DriverStyle struct {
	driverCode  string
	trackRadius float64
	rec         profile.Record
	rng         *rand.Rand

	tireWear   float64
	confidence float64
}

// NewDriverStyle resolves the driver profile at construction so a
// missing code surfaces before any episode runs.
func NewDriverStyle(
	driverCode string,
	store *profile.Store,
	trackRadius float64,
	src rand.Source,
) (*DriverStyle, error) {
	rec, err := store.Get(driverCode)
	if err != nil {
		return nil, err
	}
	ret := &DriverStyle{
		driverCode:  driverCode,
		trackRadius: trackRadius,
		rec:         rec,
		rng:         rand.New(src),
	}
	ret.Reset()
	return ret, nil
}

func (c *DriverStyle) DriverCode() string { return c.driverCode }

func (c *DriverStyle) Reset() {
	c.tireWear = 0
	c.confidence = 1.0
}

func (c *DriverStyle) GetAction(obs racesim.Observation) (throttle, brake, steer float64) {
	baseSpeed := math.Min(c.rec.Overall.MaxSpeed/profileSpeedScale, baseSpeedCap)

	c.tireWear = math.Min(1.0, float64(obs.LapCount)*tireWearPerLap)
	aggression := math.Max(minAggression,
		c.rec.Overall.AggressionScore-c.tireWear*wearAggressionCut)
	fuelFactor := math.Max(minFuelFactor, 1-float64(obs.LapCount)*fuelGainPerLap)

	// confidence stabilizes while running close to the base pace
	if obs.Speed > baseSpeed*0.9 {
		c.confidence = math.Min(maxConfidence, c.confidence+confidenceGain)
	} else {
		c.confidence = math.Max(minConfidence, c.confidence-confidenceDecay)
	}

	target := baseSpeed * fuelFactor * c.confidence
	if obs.Speed < target {
		throttle = math.Min(1.0, aggression+0.15)
	} else {
		throttle = math.Max(0, (1-c.rec.Overall.BrakingRisk)*c.confidence)
		brake = math.Min(1.0, c.rec.Overall.BrakingRisk+c.tireWear*0.3)
	}

	gain := (0.15 + aggression*0.25) * (1 - c.tireWear*0.3)
	steer = steerOnCircle(obs.X, obs.Y, c.trackRadius, gain)
	steer += (c.rng.Float64()*0.04 - 0.02) * (0.5 + c.rec.Overall.CoastingPct)
	return throttle, brake, lo.Clamp(steer, -1.0, 1.0)
}
