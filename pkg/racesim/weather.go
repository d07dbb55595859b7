package racesim

const (
	dryFriction   = 1.0
	wetFriction   = 1.5
	dryVisibility = 1.0
	wetVisibility = 0.8
)

// WeatherEffects is the read-only weather snapshot handed to the
// physics step and to controllers.
type WeatherEffects struct {
	Raining    bool    `json:"raining"`
	Friction   float64 `json:"friction"`
	Visibility float64 `json:"visibility"`
}

// Weather holds the mutable environment state. Friction and visibility
// are derived from the rain flag and never stored on their own.
type Weather struct {
	raining bool
}

func NewWeather() *Weather {
	return &Weather{}
}

// SetRain is the only mutator.
func (w *Weather) SetRain(raining bool) {
	w.raining = raining
}

func (w *Weather) IsRaining() bool { return w.raining }

func (w *Weather) FrictionMultiplier() float64 {
	if w.raining {
		return wetFriction
	}
	return dryFriction
}

func (w *Weather) VisibilityMultiplier() float64 {
	if w.raining {
		return wetVisibility
	}
	return dryVisibility
}

func (w *Weather) Effects() WeatherEffects {
	return WeatherEffects{
		Raining:    w.raining,
		Friction:   w.FrictionMultiplier(),
		Visibility: w.VisibilityMultiplier(),
	}
}
