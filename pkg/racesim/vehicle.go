package racesim

import (
	"math"

	"github.com/samber/lo"
)

const (
	defaultMaxSpeed        = 50.0
	defaultMaxAcceleration = 10.0
	defaultMaxDeceleration = 15.0
	defaultMaxSteerRate    = 0.5

	// rolling drag applied while moving, scaled by track friction
	dragCoefficient = 0.5
	// steering authority left while control is impaired
	impairedSteerFactor = 0.5
)

// HeadingTurnRate converts steer input and speed into heading change
// per second. Exported so controllers can compute the feedforward
// steer needed to hold a circular line.
const HeadingTurnRate = 0.1

// DNF reasons
const (
	DNFReasonCrash         = "CRASH"
	DNFReasonEngineFailure = "ENGINE_FAILURE"
	DNFReasonTimeout       = "TIMEOUT"
)

// vehicle event log entry types
const (
	LogLapComplete       = "LAP_COMPLETE"
	LogEngineFailure     = "ENGINE_FAILURE"
	LogEngineRecovered   = "ENGINE_RECOVERED"
	LogControlImpairment = "CONTROL_IMPAIRMENT"
	LogControlRecovered  = "CONTROL_RECOVERED"
	LogRaceFinished      = "RACE_FINISHED"
	LogRaceDNF           = "RACE_DNF"
)

type (
	// LogEntry is one entry of a vehicle's race event log. Only the
	// fields relevant for Type are set.
	LogEntry struct {
		Type     string  `json:"type"`
		Lap      int     `json:"lap,omitempty"`
		Duration float64 `json:"duration,omitempty"`
		Position int     `json:"position,omitempty"`
		Time     float64 `json:"time,omitempty"`
		Reason   string  `json:"reason,omitempty"`
	}

	// TelemetrySnapshot is one per-tick record of a racing vehicle.
	TelemetrySnapshot struct {
		Time        float64 `json:"time"`
		X           float64 `json:"x"`
		Y           float64 `json:"y"`
		Speed       float64 `json:"speed"`
		Heading     float64 `json:"heading"`
		LapProgress float64 `json:"lapProgress"`
		LapCount    int     `json:"lapCount"`
	}

	// Vehicle carries the physics state, race progress and the
	// failure/DNF state machine of one car. All mutation goes through
	// methods; invalid states (negative speed, inputs out of range)
	// are clamped at the point of mutation.
	Vehicle struct {
		id   string
		name string
		team string

		maxSpeed        float64
		maxAcceleration float64
		maxDeceleration float64
		maxSteerRate    float64

		x       float64
		y       float64
		speed   float64
		heading float64

		lapProgress float64
		lapCount    int

		finished       bool
		finishPosition int
		finishTime     float64
		dnfReason      string
		dnfTime        float64

		engineFailed            bool
		controlImpaired         bool
		engineRecoveryTime      float64
		controlRecoveryTime     float64
		cumulativeEngineFailure float64

		eventLog  []LogEntry
		telemetry []TelemetrySnapshot
	}

	VehicleOption func(*Vehicle)
)

func WithTeam(team string) VehicleOption {
	return func(v *Vehicle) { v.team = team }
}

func WithMaxSpeed(maxSpeed float64) VehicleOption {
	return func(v *Vehicle) { v.maxSpeed = maxSpeed }
}

func WithMaxAcceleration(maxAccel float64) VehicleOption {
	return func(v *Vehicle) { v.maxAcceleration = maxAccel }
}

func WithMaxDeceleration(maxDecel float64) VehicleOption {
	return func(v *Vehicle) { v.maxDeceleration = maxDecel }
}

func WithMaxSteerRate(maxSteerRate float64) VehicleOption {
	return func(v *Vehicle) { v.maxSteerRate = maxSteerRate }
}

func NewVehicle(id, name string, opts ...VehicleOption) *Vehicle {
	ret := &Vehicle{
		id:              id,
		name:            name,
		maxSpeed:        defaultMaxSpeed,
		maxAcceleration: defaultMaxAcceleration,
		maxDeceleration: defaultMaxDeceleration,
		maxSteerRate:    defaultMaxSteerRate,
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (v *Vehicle) ID() string   { return v.id }
func (v *Vehicle) Name() string { return v.name }
func (v *Vehicle) Team() string { return v.team }

func (v *Vehicle) Position() (x, y float64) { return v.x, v.y }
func (v *Vehicle) Speed() float64           { return v.speed }
func (v *Vehicle) Heading() float64         { return v.heading }
func (v *Vehicle) LapProgress() float64     { return v.lapProgress }
func (v *Vehicle) LapCount() int            { return v.lapCount }

func (v *Vehicle) Finished() bool      { return v.finished }
func (v *Vehicle) FinishPosition() int { return v.finishPosition }
func (v *Vehicle) FinishTime() float64 { return v.finishTime }
func (v *Vehicle) DNFReason() string   { return v.dnfReason }
func (v *Vehicle) DNFTime() float64    { return v.dnfTime }

func (v *Vehicle) EngineFailed() bool    { return v.engineFailed }
func (v *Vehicle) ControlImpaired() bool { return v.controlImpaired }

func (v *Vehicle) CumulativeEngineFailureTime() float64 {
	return v.cumulativeEngineFailure
}

// EventLog returns the append-only race event log. Callers must treat
// the returned slice as read-only.
func (v *Vehicle) EventLog() []LogEntry { return v.eventLog }

// TelemetryHistory returns the recorded telemetry snapshots. Callers
// must treat the returned slice as read-only.
func (v *Vehicle) TelemetryHistory() []TelemetrySnapshot { return v.telemetry }

// UpdatePhysics advances the vehicle by one tick of size dt with the
// given control inputs and weather multipliers. Inputs are clamped,
// speed never leaves [0, maxSpeed*weatherEffect]. A terminal vehicle
// is left untouched.
func (v *Vehicle) UpdatePhysics(dt, throttle, brake, steer, frictionMult, weatherEffect float64) {
	if v.finished {
		return
	}

	if v.engineFailed {
		throttle = 0
		v.cumulativeEngineFailure += dt
		v.engineRecoveryTime -= dt
		if v.engineRecoveryTime <= 0 {
			v.engineFailed = false
			v.engineRecoveryTime = 0
			v.appendLog(LogEntry{Type: LogEngineRecovered})
		}
	}

	throttle = lo.Clamp(throttle, 0.0, 1.0)
	brake = lo.Clamp(brake, 0.0, 1.0)
	steer = lo.Clamp(steer, -1.0, 1.0)

	netAccel := throttle*v.maxAcceleration - brake*v.maxDeceleration
	if v.speed > 0 {
		netAccel -= dragCoefficient * frictionMult
	}
	v.speed = lo.Clamp(v.speed+netAccel*dt, 0, v.maxSpeed*weatherEffect)

	if v.controlImpaired {
		steer *= impairedSteerFactor
		v.controlRecoveryTime -= dt
		if v.controlRecoveryTime <= 0 {
			v.controlImpaired = false
			v.controlRecoveryTime = 0
			v.appendLog(LogEntry{Type: LogControlRecovered})
		}
	}

	v.heading += steer * v.speed * HeadingTurnRate * dt
	v.x += v.speed * math.Cos(v.heading) * dt
	v.y += v.speed * math.Sin(v.heading) * dt
}

// ApplyEngineFailure puts the engine into the failed sub-state for the
// given duration. A no-op while a failure is already active.
func (v *Vehicle) ApplyEngineFailure(duration float64) {
	if v.engineFailed {
		return
	}
	v.engineFailed = true
	v.engineRecoveryTime = duration
	v.appendLog(LogEntry{Type: LogEngineFailure, Duration: duration})
}

// ApplyControlImpairment puts the steering into the impaired sub-state
// for the given duration. A no-op while an impairment is already
// active.
func (v *Vehicle) ApplyControlImpairment(duration float64) {
	if v.controlImpaired {
		return
	}
	v.controlImpaired = true
	v.controlRecoveryTime = duration
	v.appendLog(LogEntry{Type: LogControlImpairment, Duration: duration})
}

func (v *Vehicle) IncrementLap() {
	v.lapCount++
	v.appendLog(LogEntry{Type: LogLapComplete, Lap: v.lapCount})
}

// FinishRace marks the vehicle FINISHED with its assigned position.
// Terminal states are one-way; later calls are ignored.
func (v *Vehicle) FinishRace(position int, raceTime float64) {
	if v.finished {
		return
	}
	v.finished = true
	v.finishPosition = position
	v.finishTime = raceTime
	v.appendLog(LogEntry{Type: LogRaceFinished, Position: position, Time: raceTime})
}

// FinishRaceDNF marks the vehicle DNF with the given reason. Terminal
// states are one-way; later calls are ignored.
func (v *Vehicle) FinishRaceDNF(reason string, raceTime float64) {
	if v.finished {
		return
	}
	v.finished = true
	v.dnfReason = reason
	v.dnfTime = raceTime
	v.appendLog(LogEntry{Type: LogRaceDNF, Reason: reason, Time: raceTime})
}

func (v *Vehicle) RecordTelemetry(now float64) {
	v.telemetry = append(v.telemetry, TelemetrySnapshot{
		Time:        now,
		X:           v.x,
		Y:           v.y,
		Speed:       v.speed,
		Heading:     v.heading,
		LapProgress: v.lapProgress,
		LapCount:    v.lapCount,
	})
}

// Observation builds the read-only snapshot handed to controllers.
func (v *Vehicle) Observation(weather WeatherEffects) Observation {
	return Observation{
		VehicleID:       v.id,
		X:               v.x,
		Y:               v.y,
		Speed:           v.speed,
		Heading:         v.heading,
		LapProgress:     v.lapProgress,
		LapCount:        v.lapCount,
		Finished:        v.finished,
		EngineFailed:    v.engineFailed,
		ControlImpaired: v.controlImpaired,
		DNFReason:       v.dnfReason,
		Weather:         weather,
	}
}

// Reset restores the factory state and clears both histories.
func (v *Vehicle) Reset() {
	v.x = 0
	v.y = 0
	v.speed = 0
	v.heading = 0
	v.lapProgress = 0
	v.lapCount = 0
	v.finished = false
	v.finishPosition = 0
	v.finishTime = 0
	v.dnfReason = ""
	v.dnfTime = 0
	v.engineFailed = false
	v.controlImpaired = false
	v.engineRecoveryTime = 0
	v.controlRecoveryTime = 0
	v.cumulativeEngineFailure = 0
	v.eventLog = nil
	v.telemetry = nil
}

func (v *Vehicle) appendLog(entry LogEntry) {
	v.eventLog = append(v.eventLog, entry)
}
