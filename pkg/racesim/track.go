package racesim

import "math"

// corridor half width on each side of the centerline
const trackHalfWidth = 40.0

// Track is the immutable geometry of a circular track. Progress values
// are distances along the centerline, normalized into [0, LapDistance()).
type Track struct {
	radius float64
}

func NewTrack(radius float64) *Track {
	return &Track{radius: radius}
}

func (t *Track) Radius() float64 { return t.radius }

func (t *Track) LapDistance() float64 { return 2 * math.Pi * t.radius }

// CenterlinePoint maps progress to the cartesian point on the
// centerline. Progress 0 maps to (radius, 0); progress increases
// counterclockwise.
func (t *Track) CenterlinePoint(progress float64) (x, y float64) {
	normalized := math.Mod(progress, t.LapDistance())
	if normalized < 0 {
		normalized += t.LapDistance()
	}
	angle := normalized / t.radius
	return t.radius * math.Cos(angle), t.radius * math.Sin(angle)
}

// ProgressFromPosition projects (x,y) onto the centerline by angle
// alone. Radial deviation does not contribute to progress, it only
// matters for crash checks.
func (t *Track) ProgressFromPosition(x, y float64) float64 {
	angle := math.Atan2(y, x)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	return math.Mod(angle*t.radius, t.LapDistance())
}

func (t *Track) DistanceToCenterline(x, y float64) float64 {
	return math.Abs(math.Hypot(x, y) - t.radius)
}

// IsLapComplete reports a wraparound from the last 10% of a lap into
// the first 10%. The window misses a lap when a vehicle covers more
// than 10% of the lap distance within one tick.
func (t *Track) IsLapComplete(current, previous float64) bool {
	return previous >= 0.9*t.LapDistance() && current < 0.1*t.LapDistance()
}

func (t *Track) InnerRadius() float64 { return t.radius - trackHalfWidth }

func (t *Track) OuterRadius() float64 { return t.radius + trackHalfWidth }

// ContainsPosition reports whether (x,y) lies within the track
// corridor.
func (t *Track) ContainsPosition(x, y float64) bool {
	dist := math.Hypot(x, y)
	return dist >= t.InnerRadius() && dist <= t.OuterRadius()
}
