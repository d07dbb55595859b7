// Package racesim implements one simulated race episode: circular
// track geometry, per-vehicle physics with a failure/DNF state
// machine, scheduled and stochastic events, and the per-tick engine
// driving a race to completion.
package racesim

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/2arnav4/RaceOracle/log"
)

const (
	defaultTargetLaps = 3
	defaultMaxTime    = 600.0

	// per-tick crash chance while control is impaired
	crashWhileImpairedProb = 0.003
	// cumulative engine failure time beyond which a vehicle retires
	engineFailureDNFLimit = 15.0
)

// RacePhase is the lifecycle of one episode.
type RacePhase string

const (
	RaceNotStarted RacePhase = "NOT_STARTED"
	RaceActive     RacePhase = "ACTIVE"
	RaceEnded      RacePhase = "ENDED"
)

type (
	// Observation is the read-only snapshot a controller decides on.
	Observation struct {
		VehicleID       string         `json:"vehicleId"`
		X               float64        `json:"x"`
		Y               float64        `json:"y"`
		Speed           float64        `json:"speed"`
		Heading         float64        `json:"heading"`
		LapProgress     float64        `json:"lapProgress"`
		LapCount        int            `json:"lapCount"`
		Finished        bool           `json:"finished"`
		EngineFailed    bool           `json:"engineFailed"`
		ControlImpaired bool           `json:"controlImpaired"`
		DNFReason       string         `json:"dnfReason,omitempty"`
		Weather         WeatherEffects `json:"weather"`
	}

	// Controller supplies control inputs for one vehicle. A controller
	// is stateful per episode; Reset is called once when the race is
	// reset. GetAction returns throttle in [0,1], brake in [0,1] and
	// steer in [-1,1]; values outside are clamped by the physics.
	Controller interface {
		Reset()
		GetAction(obs Observation) (throttle, brake, steer float64)
	}

	// SimulationEngine drives one race episode over one world.
	SimulationEngine struct {
		world       *World
		events      *EventEngine
		controllers map[string]Controller
		targetLaps  int
		maxTime     float64
		phase       RacePhase
		src         rand.Source
		crashTrial  distuv.Bernoulli
		log         *log.Logger
	}

	EngineOption func(*SimulationEngine)
)

func WithTargetLaps(laps int) EngineOption {
	return func(e *SimulationEngine) { e.targetLaps = laps }
}

func WithMaxTime(maxTime float64) EngineOption {
	return func(e *SimulationEngine) { e.maxTime = maxTime }
}

// WithController binds a controller to the vehicle id. Vehicles
// without a controller receive neutral zero input.
func WithController(vehicleID string, c Controller) EngineOption {
	return func(e *SimulationEngine) { e.controllers[vehicleID] = c }
}

func WithControllers(controllers map[string]Controller) EngineOption {
	return func(e *SimulationEngine) {
		for id, c := range controllers {
			e.controllers[id] = c
		}
	}
}

// WithEngineRandomSource sets the source for the engine's own crash
// trials. Use the episode source shared with the event engine.
func WithEngineRandomSource(src rand.Source) EngineOption {
	return func(e *SimulationEngine) { e.src = src }
}

func NewSimulationEngine(world *World, events *EventEngine, opts ...EngineOption) *SimulationEngine {
	ret := &SimulationEngine{
		world:       world,
		events:      events,
		controllers: make(map[string]Controller),
		targetLaps:  defaultTargetLaps,
		maxTime:     defaultMaxTime,
		phase:       RaceNotStarted,
		log:         log.Default().Named("racesim.engine"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.src == nil {
		ret.src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	ret.crashTrial = distuv.Bernoulli{P: crashWhileImpairedProb, Src: ret.src}
	return ret
}

func (e *SimulationEngine) World() *World        { return e.world }
func (e *SimulationEngine) Events() *EventEngine { return e.events }
func (e *SimulationEngine) Phase() RacePhase     { return e.phase }
func (e *SimulationEngine) TargetLaps() int      { return e.targetLaps }
func (e *SimulationEngine) MaxTime() float64     { return e.maxTime }

// ResetRace puts the world back to the starting grid: time zero, dry
// weather, every vehicle at progress 0 with zero speed, facing down
// the track, every controller reset, all events re-armed.
func (e *SimulationEngine) ResetRace() {
	e.world.Reset()
	e.events.Reset()
	startX, startY := e.world.Track().CenterlinePoint(0)
	for _, v := range e.world.Vehicles() {
		v.x, v.y = startX, startY
		// counterclockwise tangent at progress 0
		v.heading = math.Pi / 2
		v.lapProgress = 0
	}
	for _, c := range e.controllers {
		c.Reset()
	}
	e.phase = RaceActive
}

// Step advances the episode by one tick: events, then per vehicle
// observe, decide, integrate, lap check and failure checks, then the
// timeout sweep, then the time advance. Callers must ResetRace first.
func (e *SimulationEngine) Step() {
	e.events.FireScheduled(e.world)
	e.events.EvaluateStochastic(e.world)

	effects := e.world.Weather().Effects()
	now := e.world.TimeElapsed()
	dt := e.world.TickSize()

	for _, v := range e.world.Vehicles() {
		if v.Finished() {
			continue
		}
		throttle, brake, steer := e.controlInputs(v, effects)
		v.UpdatePhysics(dt, throttle, brake, steer, effects.Friction, effects.Visibility)

		newProgress := e.world.Track().ProgressFromPosition(v.x, v.y)
		if e.world.Track().IsLapComplete(newProgress, v.lapProgress) {
			v.IncrementLap()
		}
		v.lapProgress = newProgress

		if v.lapCount >= e.targetLaps {
			position := e.finisherCount() + 1
			v.FinishRace(position, now)
			e.log.Debug("vehicle finished",
				log.String("vehicle", v.ID()),
				log.Int("position", position),
				log.Float64("time", now))
		}

		if !v.Finished() && v.ControlImpaired() && e.crashTrial.Rand() == 1 {
			v.FinishRaceDNF(DNFReasonCrash, now)
			e.log.Debug("vehicle crashed", log.String("vehicle", v.ID()))
			continue
		}
		if !v.Finished() && v.CumulativeEngineFailureTime() > engineFailureDNFLimit {
			v.FinishRaceDNF(DNFReasonEngineFailure, now)
			e.log.Debug("vehicle retired with engine failure",
				log.String("vehicle", v.ID()))
			continue
		}
		v.RecordTelemetry(now)
	}

	if now >= e.maxTime {
		e.timeoutSweep(now)
	}
	e.world.AdvanceTime()
}

// IsRaceFinished reports whether every vehicle reached a terminal
// state or the episode hit its hard time cutoff.
func (e *SimulationEngine) IsRaceFinished() bool {
	if e.world.TimeElapsed() >= e.maxTime {
		return true
	}
	return lo.EveryBy(e.world.Vehicles(), func(v *Vehicle) bool {
		return v.Finished()
	})
}

// RunEpisode resets the race, steps it to completion and compiles the
// result. Vehicles still racing when the cutoff ends the loop are
// swept into DNF(TIMEOUT) so every vehicle is classified.
func (e *SimulationEngine) RunEpisode() EpisodeResult {
	e.ResetRace()
	for !e.IsRaceFinished() {
		e.Step()
	}
	e.timeoutSweep(e.world.TimeElapsed())
	e.phase = RaceEnded
	return e.compileResult()
}

func (e *SimulationEngine) controlInputs(v *Vehicle, effects WeatherEffects) (throttle, brake, steer float64) {
	c, ok := e.controllers[v.ID()]
	if !ok {
		// unbound vehicles coast with neutral input
		return 0, 0, 0
	}
	return c.GetAction(v.Observation(effects))
}

func (e *SimulationEngine) finisherCount() int {
	return lo.CountBy(e.world.Vehicles(), func(v *Vehicle) bool {
		return v.Finished() && v.DNFReason() == ""
	})
}

func (e *SimulationEngine) timeoutSweep(now float64) {
	for _, v := range e.world.Vehicles() {
		if !v.Finished() {
			v.FinishRaceDNF(DNFReasonTimeout, now)
		}
	}
}

func (e *SimulationEngine) compileResult() EpisodeResult {
	ret := EpisodeResult{
		TotalTime:  e.world.TimeElapsed(),
		TargetLaps: e.targetLaps,
		Events:     e.events.Fired(),
	}
	for _, v := range e.world.Vehicles() {
		if v.DNFReason() != "" {
			ret.DNFVehicles = append(ret.DNFVehicles, DNFResult{
				VehicleID:   v.ID(),
				Name:        v.Name(),
				Team:        v.Team(),
				Reason:      v.DNFReason(),
				DNFTime:     v.DNFTime(),
				LapCount:    v.LapCount(),
				LapProgress: v.LapProgress(),
				EventLog:    v.EventLog(),
			})
			continue
		}
		if v.Finished() {
			ret.FinishingPositions = append(ret.FinishingPositions, VehicleResult{
				VehicleID:       v.ID(),
				Name:            v.Name(),
				Team:            v.Team(),
				Position:        v.FinishPosition(),
				FinishTime:      v.FinishTime(),
				LapCount:        v.LapCount(),
				TelemetryLength: len(v.TelemetryHistory()),
				EventLog:        v.EventLog(),
			})
		}
	}
	sort.Slice(ret.FinishingPositions, func(i, j int) bool {
		return ret.FinishingPositions[i].Position < ret.FinishingPositions[j].Position
	})
	return ret
}
