// Package scenario holds the configuration a Monte Carlo study
// repeats: track, vehicles with their controllers, event
// probabilities and schedule, race limits.
package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/2arnav4/RaceOracle/pkg/racesim"
)

const (
	DefaultTrackRadius = 100.0
	DefaultTickSize    = 0.05
	DefaultTargetLaps  = 3
	DefaultMaxTime     = 600.0
)

// controller spec types
const (
	ControllerRuleBased   = "rule_based"
	ControllerDriverStyle = "driver_style"
	ControllerAggressive  = "aggressive"
)

type (
	// ControllerSpec selects and parameterizes the strategy driving
	// one vehicle. Only the fields of the selected type are used.
	ControllerSpec struct {
		Type        string  `yaml:"type"`
		Personality string  `yaml:"personality,omitempty"` // rule_based
		Driver      string  `yaml:"driver,omitempty"`      // driver_style
		Aggression  float64 `yaml:"aggression,omitempty"`  // aggressive
	}

	// VehicleConfig describes one car on the grid. Zero-valued limits
	// keep the simulation defaults.
	VehicleConfig struct {
		ID              string         `yaml:"id"`
		Name            string         `yaml:"name"`
		Team            string         `yaml:"team,omitempty"`
		MaxSpeed        float64        `yaml:"max_speed,omitempty"`
		MaxAcceleration float64        `yaml:"max_acceleration,omitempty"`
		MaxDeceleration float64        `yaml:"max_deceleration,omitempty"`
		MaxSteerRate    float64        `yaml:"max_steer_rate,omitempty"`
		Controller      ControllerSpec `yaml:"controller"`
	}

	// ScheduledEventSpec is one entry of the event schedule. Vehicle
	// and Duration apply to the failure kinds only.
	ScheduledEventSpec struct {
		Type     string  `yaml:"type"`
		Time     float64 `yaml:"time"`
		Vehicle  string  `yaml:"vehicle,omitempty"`
		Duration float64 `yaml:"duration,omitempty"`
	}

	// EventConfig configures the event engine. Probability overrides
	// are pointers so that zero is a valid override.
	EventConfig struct {
		Random            *bool                `yaml:"random,omitempty"`
		RainOn            *float64             `yaml:"rain_on,omitempty"`
		RainOff           *float64             `yaml:"rain_off,omitempty"`
		EngineFailure     *float64             `yaml:"engine_failure,omitempty"`
		ControlImpairment *float64             `yaml:"control_impairment,omitempty"`
		Scheduled         []ScheduledEventSpec `yaml:"scheduled,omitempty"`
	}

	// Scenario is the complete study configuration.
	Scenario struct {
		Name         string          `yaml:"name,omitempty"`
		TrackRadius  float64         `yaml:"track_radius,omitempty"`
		Dt           float64         `yaml:"dt,omitempty"`
		TargetLaps   int             `yaml:"target_laps,omitempty"`
		MaxTime      float64         `yaml:"max_time,omitempty"`
		Vehicles     []VehicleConfig `yaml:"vehicles"`
		Events       EventConfig     `yaml:"events,omitempty"`
		ProfilesFile string          `yaml:"profiles_file,omitempty"`
	}
)

// Parse decodes a scenario document, applies defaults and validates
// it.
func Parse(data []byte) (*Scenario, error) {
	ret := &Scenario{}
	if err := yaml.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("could not parse scenario: %w", err)
	}
	ret.ApplyDefaults()
	if err := ret.Validate(); err != nil {
		return nil, err
	}
	return ret, nil
}

func LoadFile(fileName string) (*Scenario, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, fmt.Errorf("could not read scenario %s: %w", fileName, err)
	}
	ret, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fileName, err)
	}
	return ret, nil
}

// ApplyDefaults fills unset top level values.
func (s *Scenario) ApplyDefaults() {
	if s.TrackRadius == 0 {
		s.TrackRadius = DefaultTrackRadius
	}
	if s.Dt == 0 {
		s.Dt = DefaultTickSize
	}
	if s.TargetLaps == 0 {
		s.TargetLaps = DefaultTargetLaps
	}
	if s.MaxTime == 0 {
		s.MaxTime = DefaultMaxTime
	}
}

// RandomEventsEnabled reports whether stochastic events run; they are
// on unless the scenario switches them off.
func (s *Scenario) RandomEventsEnabled() bool {
	return s.Events.Random == nil || *s.Events.Random
}

// Probabilities resolves the stochastic probabilities with the
// scenario overrides applied.
func (s *Scenario) Probabilities() racesim.Probabilities {
	probs := racesim.DefaultProbabilities()
	if s.Events.RainOn != nil {
		probs.RainOn = *s.Events.RainOn
	}
	if s.Events.RainOff != nil {
		probs.RainOff = *s.Events.RainOff
	}
	if s.Events.EngineFailure != nil {
		probs.EngineFailure = *s.Events.EngineFailure
	}
	if s.Events.ControlImpairment != nil {
		probs.ControlImpairment = *s.Events.ControlImpairment
	}
	return probs
}

// ScheduledEvents converts the schedule into event engine entries.
// Call Validate first; unknown kinds are skipped here.
func (s *Scenario) ScheduledEvents() []racesim.ScheduledEvent {
	ret := make([]racesim.ScheduledEvent, 0, len(s.Events.Scheduled))
	for _, spec := range s.Events.Scheduled {
		payload := eventPayload(spec)
		if payload == nil {
			continue
		}
		ret = append(ret, racesim.ScheduledEvent{Time: spec.Time, Payload: payload})
	}
	return ret
}

func eventPayload(spec ScheduledEventSpec) racesim.EventPayload {
	switch racesim.EventKind(spec.Type) {
	case racesim.EventRainOn:
		return racesim.RainOn{}
	case racesim.EventRainOff:
		return racesim.RainOff{}
	case racesim.EventEngineFailure:
		return racesim.EngineFailure{VehicleID: spec.Vehicle, Duration: spec.Duration}
	case racesim.EventControlImpairment:
		return racesim.ControlImpairment{VehicleID: spec.Vehicle, Duration: spec.Duration}
	default:
		return nil
	}
}
