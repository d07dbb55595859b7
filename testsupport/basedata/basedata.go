// Package basedata provides shared sample data for tests.
package basedata

import (
	"log"

	"github.com/2arnav4/RaceOracle/pkg/profile"
	"github.com/2arnav4/RaceOracle/pkg/scenario"
)

// SampleScenario is a small two-team grid with stochastic events
// switched off, suitable for deterministic tests.
func SampleScenario() *scenario.Scenario {
	off := false
	ret := &scenario.Scenario{
		Name:       "testscenario",
		TargetLaps: 2,
		MaxTime:    300,
		Vehicles: []scenario.VehicleConfig{
			{
				ID:       "v1",
				Name:     "Red One",
				Team:     "Red",
				MaxSpeed: 50,
				Controller: scenario.ControllerSpec{
					Type:        scenario.ControllerRuleBased,
					Personality: "aggressive",
				},
			},
			{
				ID:       "v2",
				Name:     "Blue One",
				Team:     "Blue",
				MaxSpeed: 45,
				Controller: scenario.ControllerSpec{
					Type:        scenario.ControllerRuleBased,
					Personality: "cautious",
				},
			},
		},
		Events: scenario.EventConfig{Random: &off},
	}
	ret.ApplyDefaults()
	return ret
}

// SampleProfilesJSON mirrors the layout of the offline pipeline
// output, including extra fields the loader must tolerate.
func SampleProfilesJSON() []byte {
	return []byte(`{
  "VER": {
    "driver_name": "Max Verstappen",
    "style_tags": ["late_braker"],
    "overall": {
      "aggression_score": 0.82,
      "braking_risk": 0.35,
      "coasting_pct": 0.05,
      "max_speed": 338.0
    }
  },
  "HAM": {
    "driver_name": "Lewis Hamilton",
    "overall": {
      "aggression_score": 0.74,
      "braking_risk": 0.28,
      "coasting_pct": 0.09,
      "max_speed": 334.0
    }
  }
}`)
}

// SampleStore parses SampleProfilesJSON; panics on failure since the
// fixture is static.
func SampleStore() *profile.Store {
	store, err := profile.Parse(SampleProfilesJSON())
	if err != nil {
		log.Fatalf("could not parse sample profiles: %v", err)
	}
	return store
}
