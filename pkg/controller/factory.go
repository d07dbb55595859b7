package controller

import (
	"fmt"
	"math/rand/v2"

	"github.com/2arnav4/RaceOracle/pkg/profile"
	"github.com/2arnav4/RaceOracle/pkg/racesim"
	"github.com/2arnav4/RaceOracle/pkg/scenario"
)

// FromSpec builds the strategy selected by the controller spec. The
// profile store may be nil unless a driver_style controller is
// requested.
func FromSpec(
	spec scenario.ControllerSpec,
	store *profile.Store,
	trackRadius float64,
	src rand.Source,
) (racesim.Controller, error) {
	switch spec.Type {
	case scenario.ControllerRuleBased:
		return NewRuleBased(spec.Personality, trackRadius, src), nil
	case scenario.ControllerDriverStyle:
		if store == nil {
			return nil, fmt.Errorf(
				"controller for driver %s requires a profile store", spec.Driver)
		}
		return NewDriverStyle(spec.Driver, store, trackRadius, src)
	case scenario.ControllerAggressive:
		return NewAggressive(spec.Aggression, trackRadius, src), nil
	default:
		return nil, fmt.Errorf("unknown controller type %q", spec.Type)
	}
}
