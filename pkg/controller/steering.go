package controller

import (
	"math"

	"github.com/samber/lo"

	"github.com/2arnav4/RaceOracle/pkg/racesim"
)

// steerOnCircle computes the steer input to follow the track
// counterclockwise: a feedforward term holding the current turning
// circle plus a corrective term proportional to the radial error. A
// car outside the centerline tightens the turn, a car inside loosens
// it.
func steerOnCircle(x, y, radius, gain float64) float64 {
	dist := math.Hypot(x, y)
	if dist < 1 {
		dist = 1
	}
	ff := 1 / (racesim.HeadingTurnRate * dist)
	err := (dist - radius) / radius
	return lo.Clamp(ff+err*gain, -1.0, 1.0)
}
