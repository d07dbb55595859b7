package racesim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrack_LapDistance(t *testing.T) {
	for _, radius := range []float64{1, 50, 100, 1234.5} {
		track := NewTrack(radius)
		assert.InDelta(t, 2*math.Pi*radius, track.LapDistance(), 1e-9)
	}
}

func TestTrack_CenterlinePoint(t *testing.T) {
	track := NewTrack(100)
	x, y := track.CenterlinePoint(0)
	assert.InDelta(t, 100.0, x, 1e-9)
	assert.InDelta(t, 0.0, y, 1e-9)

	// quarter lap, counterclockwise
	x, y = track.CenterlinePoint(track.LapDistance() / 4)
	assert.InDelta(t, 0.0, x, 1e-9)
	assert.InDelta(t, 100.0, y, 1e-9)

	// negative progress wraps
	x, y = track.CenterlinePoint(-track.LapDistance() / 4)
	assert.InDelta(t, 0.0, x, 1e-9)
	assert.InDelta(t, -100.0, y, 1e-9)
}

func TestTrack_ProgressRoundTrip(t *testing.T) {
	track := NewTrack(100)
	for _, progress := range []float64{0, 1, 100, 300, 628, 999} {
		want := math.Mod(progress, track.LapDistance())
		x, y := track.CenterlinePoint(progress)
		assert.InDelta(t, want, track.ProgressFromPosition(x, y), 1e-6,
			"progress %v", progress)
	}
}

func TestTrack_ProgressIgnoresRadialDeviation(t *testing.T) {
	track := NewTrack(100)
	// same angle, off the circle
	onTrack := track.ProgressFromPosition(100, 0)
	offTrack := track.ProgressFromPosition(130, 0)
	assert.InDelta(t, onTrack, offTrack, 1e-9)
}

func TestTrack_DistanceToCenterline(t *testing.T) {
	track := NewTrack(100)
	assert.InDelta(t, 0.0, track.DistanceToCenterline(100, 0), 1e-9)
	assert.InDelta(t, 30.0, track.DistanceToCenterline(130, 0), 1e-9)
	assert.InDelta(t, 30.0, track.DistanceToCenterline(70, 0), 1e-9)
}

func TestTrack_IsLapComplete(t *testing.T) {
	track := NewTrack(100)
	lap := track.LapDistance()

	tests := []struct {
		name     string
		current  float64
		previous float64
		want     bool
	}{
		{"wraparound", 0.01 * lap, 0.95 * lap, true},
		{"normal progress", 0.5 * lap, 0.45 * lap, false},
		{"previous too early", 0.05 * lap, 0.85 * lap, false},
		{"current too late", 0.15 * lap, 0.95 * lap, false},
		{"at the thresholds", 0.09 * lap, 0.9 * lap, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, track.IsLapComplete(tt.current, tt.previous))
		})
	}
}

func TestTrack_Bounds(t *testing.T) {
	track := NewTrack(100)
	assert.Equal(t, 60.0, track.InnerRadius())
	assert.Equal(t, 140.0, track.OuterRadius())

	assert.True(t, track.ContainsPosition(100, 0))
	assert.True(t, track.ContainsPosition(139, 0))
	assert.False(t, track.ContainsPosition(141, 0))
	assert.False(t, track.ContainsPosition(59, 0))
}
