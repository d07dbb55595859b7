package racesim

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/2arnav4/RaceOracle/log"
)

type EventKind string

const (
	EventRainOn            EventKind = "RAIN_ON"
	EventRainOff           EventKind = "RAIN_OFF"
	EventEngineFailure     EventKind = "ENGINE_FAILURE"
	EventControlImpairment EventKind = "CONTROL_IMPAIRMENT"
)

const (
	// scheduled events fire when |scheduled time - now| < this window
	scheduledFireWindow = 0.01

	defaultEngineFailureDuration     = 5.0
	defaultControlImpairmentDuration = 3.0

	minEngineFailureDuration     = 2.0
	maxEngineFailureDuration     = 5.0
	minControlImpairmentDuration = 1.0
	maxControlImpairmentDuration = 3.0
)

type (
	// EventPayload is the tagged payload of an event. Each kind
	// carries only the fields it needs.
	EventPayload interface {
		Kind() EventKind
	}

	RainOn  struct{}
	RainOff struct{}

	// EngineFailure targets one vehicle. A zero Duration means the
	// default duration for this kind.
	EngineFailure struct {
		VehicleID string
		Duration  float64
	}

	// ControlImpairment targets one vehicle. A zero Duration means the
	// default duration for this kind.
	ControlImpairment struct {
		VehicleID string
		Duration  float64
	}
)

func (RainOn) Kind() EventKind            { return EventRainOn }
func (RainOff) Kind() EventKind           { return EventRainOff }
func (EngineFailure) Kind() EventKind     { return EventEngineFailure }
func (ControlImpairment) Kind() EventKind { return EventControlImpairment }

// ScheduledEvent fires its payload once, when the world time reaches
// Time within the firing window.
type ScheduledEvent struct {
	Time    float64
	Payload EventPayload

	fired bool
}

// FiredEvent is one entry of the episode's ordered fired-event record.
type FiredEvent struct {
	Kind      EventKind `json:"kind"`
	Time      float64   `json:"time"`
	VehicleID string    `json:"vehicleId,omitempty"`
}

// Probabilities are per-tick Bernoulli probabilities for stochastic
// events. Failure kinds are evaluated once per non-finished vehicle
// per tick, the rain kinds once per tick.
type Probabilities struct {
	RainOn            float64
	RainOff           float64
	EngineFailure     float64
	ControlImpairment float64
}

func DefaultProbabilities() Probabilities {
	return Probabilities{
		RainOn:            0.005,
		RainOff:           0.003,
		EngineFailure:     0.001,
		ControlImpairment: 0.002,
	}
}

type (
	// EventEngine holds the scheduled events and the stochastic event
	// generators of one episode and applies their effects to the
	// world at the right simulated time.
	EventEngine struct {
		scheduled     []*ScheduledEvent
		fired         []FiredEvent
		probs         Probabilities
		randomEnabled bool
		src           rand.Source

		rainOnTrial        distuv.Bernoulli
		rainOffTrial       distuv.Bernoulli
		engineFailTrial    distuv.Bernoulli
		controlImpairTrial distuv.Bernoulli
		engineDuration     distuv.Uniform
		controlDuration    distuv.Uniform

		log *log.Logger
	}

	EventEngineOption func(*EventEngine)
)

// WithRandomSource sets the episode random source. Without it a
// process-seeded source is used.
func WithRandomSource(src rand.Source) EventEngineOption {
	return func(e *EventEngine) { e.src = src }
}

func WithProbabilities(probs Probabilities) EventEngineOption {
	return func(e *EventEngine) { e.probs = probs }
}

// WithRandomEvents enables or disables the stochastic event trials.
func WithRandomEvents(enabled bool) EventEngineOption {
	return func(e *EventEngine) { e.randomEnabled = enabled }
}

func WithScheduledEvents(events ...ScheduledEvent) EventEngineOption {
	return func(e *EventEngine) {
		for _, ev := range events {
			e.AddScheduled(ev)
		}
	}
}

func NewEventEngine(opts ...EventEngineOption) *EventEngine {
	ret := &EventEngine{
		probs:         DefaultProbabilities(),
		randomEnabled: true,
		log:           log.Default().Named("racesim.events"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.src == nil {
		ret.src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	ret.initDistributions()
	return ret
}

func (e *EventEngine) initDistributions() {
	e.rainOnTrial = distuv.Bernoulli{P: e.probs.RainOn, Src: e.src}
	e.rainOffTrial = distuv.Bernoulli{P: e.probs.RainOff, Src: e.src}
	e.engineFailTrial = distuv.Bernoulli{P: e.probs.EngineFailure, Src: e.src}
	e.controlImpairTrial = distuv.Bernoulli{P: e.probs.ControlImpairment, Src: e.src}
	e.engineDuration = distuv.Uniform{
		Min: minEngineFailureDuration,
		Max: maxEngineFailureDuration,
		Src: e.src,
	}
	e.controlDuration = distuv.Uniform{
		Min: minControlImpairmentDuration,
		Max: maxControlImpairmentDuration,
		Src: e.src,
	}
}

func (e *EventEngine) AddScheduled(ev ScheduledEvent) {
	ev.fired = false
	e.scheduled = append(e.scheduled, &ev)
}

// Fired returns the ordered record of all events fired so far.
func (e *EventEngine) Fired() []FiredEvent { return e.fired }

// FireScheduled fires every due scheduled event against the current
// world time. Each scheduled event fires at most once.
func (e *EventEngine) FireScheduled(w *World) {
	now := w.TimeElapsed()
	for _, ev := range e.scheduled {
		if ev.fired {
			continue
		}
		if math.Abs(ev.Time-now) < scheduledFireWindow {
			ev.fired = true
			e.fire(w, ev.Payload, now)
		}
	}
}

// EvaluateStochastic runs the per-tick Bernoulli trials: one rain
// transition trial, then per non-finished vehicle an engine failure
// and a control impairment trial, in registry order.
func (e *EventEngine) EvaluateStochastic(w *World) {
	if !e.randomEnabled {
		return
	}
	now := w.TimeElapsed()

	if !w.Weather().IsRaining() {
		if e.rainOnTrial.Rand() == 1 {
			e.fire(w, RainOn{}, now)
		}
	} else if e.rainOffTrial.Rand() == 1 {
		e.fire(w, RainOff{}, now)
	}

	for _, v := range w.Vehicles() {
		if v.Finished() {
			continue
		}
		if e.engineFailTrial.Rand() == 1 {
			e.fire(w, EngineFailure{
				VehicleID: v.ID(),
				Duration:  e.engineDuration.Rand(),
			}, now)
		}
		if e.controlImpairTrial.Rand() == 1 {
			e.fire(w, ControlImpairment{
				VehicleID: v.ID(),
				Duration:  e.controlDuration.Rand(),
			}, now)
		}
	}
}

// fire records the event and applies its effect. The record is
// appended even when the effect has no target; payload kinds outside
// the known set are recorded and otherwise ignored.
func (e *EventEngine) fire(w *World, payload EventPayload, now float64) {
	record := FiredEvent{Kind: payload.Kind(), Time: now}
	switch p := payload.(type) {
	case EngineFailure:
		record.VehicleID = p.VehicleID
	case ControlImpairment:
		record.VehicleID = p.VehicleID
	}
	e.fired = append(e.fired, record)
	e.log.Debug("event fired",
		log.String("kind", string(record.Kind)),
		log.Float64("time", record.Time),
		log.String("vehicle", record.VehicleID))

	switch p := payload.(type) {
	case RainOn:
		w.SetWeather(true)
	case RainOff:
		w.SetWeather(false)
	case EngineFailure:
		if v, ok := w.Vehicle(p.VehicleID); ok && !v.Finished() {
			v.ApplyEngineFailure(durationOrDefault(p.Duration, defaultEngineFailureDuration))
		}
	case ControlImpairment:
		if v, ok := w.Vehicle(p.VehicleID); ok && !v.Finished() {
			v.ApplyControlImpairment(durationOrDefault(p.Duration, defaultControlImpairmentDuration))
		}
	}
}

func durationOrDefault(duration, defaultVal float64) float64 {
	if duration <= 0 {
		return defaultVal
	}
	return duration
}

// Reset clears the fired record and re-arms the scheduled events. The
// schedule itself is retained.
func (e *EventEngine) Reset() {
	e.fired = nil
	for _, ev := range e.scheduled {
		ev.fired = false
	}
}
