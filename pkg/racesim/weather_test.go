package racesim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeather_Effects(t *testing.T) {
	w := NewWeather()
	assert.False(t, w.IsRaining())
	assert.Equal(t, WeatherEffects{Raining: false, Friction: 1.0, Visibility: 1.0},
		w.Effects())

	w.SetRain(true)
	assert.Equal(t, WeatherEffects{Raining: true, Friction: 1.5, Visibility: 0.8},
		w.Effects())

	w.SetRain(false)
	assert.Equal(t, 1.0, w.FrictionMultiplier())
	assert.Equal(t, 1.0, w.VisibilityMultiplier())
}
