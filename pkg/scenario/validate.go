package scenario

import (
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/2arnav4/RaceOracle/pkg/racesim"
)

// ErrInvalidScenario tags every validation failure. Check with
// errors.Is.
var ErrInvalidScenario = errors.New("invalid scenario")

var knownEventKinds = []string{
	string(racesim.EventRainOn),
	string(racesim.EventRainOff),
	string(racesim.EventEngineFailure),
	string(racesim.EventControlImpairment),
}

var knownControllerTypes = []string{
	ControllerRuleBased,
	ControllerDriverStyle,
	ControllerAggressive,
}

// Validate checks the whole scenario and reports every violation at
// once, so a misconfigured study fails before the first episode.
//
//nolint:gocognit,cyclop // flat list of checks
func (s *Scenario) Validate() error {
	var problems []string

	if s.TrackRadius <= 0 {
		problems = append(problems, fmt.Sprintf("track_radius must be > 0 (got %g)", s.TrackRadius))
	}
	if s.Dt <= 0 {
		problems = append(problems, fmt.Sprintf("dt must be > 0 (got %g)", s.Dt))
	}
	if s.TargetLaps <= 0 {
		problems = append(problems, fmt.Sprintf("target_laps must be > 0 (got %d)", s.TargetLaps))
	}
	if s.MaxTime <= 0 {
		problems = append(problems, fmt.Sprintf("max_time must be > 0 (got %g)", s.MaxTime))
	}

	if len(s.Vehicles) == 0 {
		problems = append(problems, "at least one vehicle is required")
	}
	seen := map[string]bool{}
	for i, v := range s.Vehicles {
		if v.ID == "" {
			problems = append(problems, fmt.Sprintf("vehicles[%d]: id must not be empty", i))
			continue
		}
		if seen[v.ID] {
			problems = append(problems, fmt.Sprintf("vehicles[%d]: duplicate id %q", i, v.ID))
		}
		seen[v.ID] = true
		problems = append(problems, validateLimits(i, v)...)
		problems = append(problems, validateController(i, v.Controller)...)
	}

	problems = append(problems, s.validateProbabilities()...)

	for i, ev := range s.Events.Scheduled {
		if !lo.Contains(knownEventKinds, ev.Type) {
			problems = append(problems,
				fmt.Sprintf("events.scheduled[%d]: unknown type %q", i, ev.Type))
			continue
		}
		if ev.Time < 0 {
			problems = append(problems,
				fmt.Sprintf("events.scheduled[%d]: time must be >= 0 (got %g)", i, ev.Time))
		}
		kind := racesim.EventKind(ev.Type)
		if kind == racesim.EventEngineFailure || kind == racesim.EventControlImpairment {
			if !seen[ev.Vehicle] {
				problems = append(problems,
					fmt.Sprintf("events.scheduled[%d]: vehicle %q is not configured", i, ev.Vehicle))
			}
		}
	}

	if len(problems) == 0 {
		return nil
	}
	combined := problems[0]
	for _, p := range problems[1:] {
		combined += "; " + p
	}
	return fmt.Errorf("%w: %s", ErrInvalidScenario, combined)
}

func validateLimits(i int, v VehicleConfig) []string {
	var problems []string
	check := func(name string, val float64) {
		if val < 0 {
			problems = append(problems,
				fmt.Sprintf("vehicles[%d]: %s must be > 0 when set (got %g)", i, name, val))
		}
	}
	check("max_speed", v.MaxSpeed)
	check("max_acceleration", v.MaxAcceleration)
	check("max_deceleration", v.MaxDeceleration)
	check("max_steer_rate", v.MaxSteerRate)
	return problems
}

func validateController(i int, c ControllerSpec) []string {
	var problems []string
	switch c.Type {
	case ControllerRuleBased, ControllerAggressive:
		// personality/aggression have usable defaults
	case ControllerDriverStyle:
		if c.Driver == "" {
			problems = append(problems,
				fmt.Sprintf("vehicles[%d].controller: driver_style requires a driver code", i))
		}
	case "":
		problems = append(problems,
			fmt.Sprintf("vehicles[%d].controller: type must be one of %v", i, knownControllerTypes))
	default:
		problems = append(problems,
			fmt.Sprintf("vehicles[%d].controller: unknown type %q", i, c.Type))
	}
	return problems
}

func (s *Scenario) validateProbabilities() []string {
	var problems []string
	check := func(name string, val *float64) {
		if val != nil && (*val < 0 || *val > 1) {
			problems = append(problems,
				fmt.Sprintf("events.%s must be within [0,1] (got %g)", name, *val))
		}
	}
	check("rain_on", s.Events.RainOn)
	check("rain_off", s.Events.RainOff)
	check("engine_failure", s.Events.EngineFailure)
	check("control_impairment", s.Events.ControlImpairment)
	return problems
}
