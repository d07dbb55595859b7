package racesim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// flatOut drives full throttle and holds the centerline with a
// feedforward steering term; deterministic on purpose.
type flatOut struct {
	radius float64
	resets int
}

func (c *flatOut) Reset() { c.resets++ }

func (c *flatOut) GetAction(obs Observation) (throttle, brake, steer float64) {
	dist := math.Hypot(obs.X, obs.Y)
	if dist < 1 {
		dist = 1
	}
	ff := 1 / (HeadingTurnRate * dist)
	err := (dist - c.radius) / c.radius
	return 1, 0, ff + err*0.5
}

func raceEngine(maxSpeeds ...float64) (*SimulationEngine, []*flatOut) {
	track := NewTrack(100)
	world := NewWorld(track, 0.05)
	controllers := make([]*flatOut, 0, len(maxSpeeds))
	opts := []EngineOption{WithEngineRandomSource(testSource())}
	for i, maxSpeed := range maxSpeeds {
		id := string(rune('a' + i))
		world.AddVehicle(NewVehicle(id, "Car "+id, WithMaxSpeed(maxSpeed)))
		c := &flatOut{radius: 100}
		controllers = append(controllers, c)
		opts = append(opts, WithController(id, c))
	}
	engine := NewSimulationEngine(world, noRandomEvents(), opts...)
	return engine, controllers
}

func TestEngine_ResetRace(t *testing.T) {
	engine, controllers := raceEngine(50)
	assert.Equal(t, RaceNotStarted, engine.Phase())

	engine.ResetRace()
	assert.Equal(t, RaceActive, engine.Phase())
	assert.Equal(t, 1, controllers[0].resets)

	v := engine.World().Vehicles()[0]
	x, y := v.Position()
	assert.InDelta(t, 100.0, x, 1e-9)
	assert.InDelta(t, 0.0, y, 1e-9)
	assert.Zero(t, v.Speed())
	assert.InDelta(t, math.Pi/2, v.Heading(), 1e-9)
}

func TestEngine_FasterVehicleWins(t *testing.T) {
	engine, _ := raceEngine(50, 45)
	res := engine.RunEpisode()

	assert.Equal(t, RaceEnded, engine.Phase())
	assert.Len(t, res.FinishingPositions, 2)
	assert.Empty(t, res.DNFVehicles)

	assert.Equal(t, "a", res.FinishingPositions[0].VehicleID)
	assert.Equal(t, 1, res.FinishingPositions[0].Position)
	assert.Equal(t, 2, res.FinishingPositions[1].Position)
	assert.Less(t,
		res.FinishingPositions[0].FinishTime,
		res.FinishingPositions[1].FinishTime)
	assert.Equal(t, 3, res.FinishingPositions[0].LapCount)
}

func TestEngine_PositionsArePermutation(t *testing.T) {
	engine, _ := raceEngine(50, 44, 47)
	res := engine.RunEpisode()

	assert.Len(t, res.FinishingPositions, 3)
	lastTime := -1.0
	for i, fin := range res.FinishingPositions {
		assert.Equal(t, i+1, fin.Position)
		assert.Greater(t, fin.FinishTime, lastTime)
		lastTime = fin.FinishTime
	}
	// vehicle order by speed: a, c, b
	assert.Equal(t, "a", res.FinishingPositions[0].VehicleID)
	assert.Equal(t, "c", res.FinishingPositions[1].VehicleID)
	assert.Equal(t, "b", res.FinishingPositions[2].VehicleID)
}

func TestEngine_LapCountMonotonic(t *testing.T) {
	engine, _ := raceEngine(50)
	engine.ResetRace()
	v := engine.World().Vehicles()[0]

	last := 0
	for !engine.IsRaceFinished() {
		engine.Step()
		assert.GreaterOrEqual(t, v.LapCount(), last)
		assert.LessOrEqual(t, v.LapCount()-last, 1)
		last = v.LapCount()
	}
}

func TestEngine_UnboundVehicleCoasts(t *testing.T) {
	track := NewTrack(100)
	world := NewWorld(track, 0.05)
	world.AddVehicle(NewVehicle("loose", "No Controller"))
	engine := NewSimulationEngine(world, noRandomEvents(),
		WithEngineRandomSource(testSource()),
		WithMaxTime(2.0))

	res := engine.RunEpisode()
	assert.Empty(t, res.FinishingPositions)
	assert.Len(t, res.DNFVehicles, 1)
	assert.Equal(t, DNFReasonTimeout, res.DNFVehicles[0].Reason)

	v := world.Vehicles()[0]
	assert.Zero(t, v.Speed())
}

func TestEngine_TimeoutSweep(t *testing.T) {
	engine, _ := raceEngine(50, 45)
	WithMaxTime(5.0)(engine)

	res := engine.RunEpisode()
	assert.Empty(t, res.FinishingPositions)
	assert.Len(t, res.DNFVehicles, 2)
	for _, dnf := range res.DNFVehicles {
		assert.Equal(t, DNFReasonTimeout, dnf.Reason)
	}
	assert.GreaterOrEqual(t, res.TotalTime, 5.0)
}

func TestEngine_EngineFailureDNFLimit(t *testing.T) {
	engine, _ := raceEngine(50)
	engine.ResetRace()
	v := engine.World().Vehicles()[0]

	v.cumulativeEngineFailure = engineFailureDNFLimit + 0.1
	engine.Step()

	assert.True(t, v.Finished())
	assert.Equal(t, DNFReasonEngineFailure, v.DNFReason())
}

func TestEngine_ScheduledRainChangesVisibility(t *testing.T) {
	track := NewTrack(100)
	world := NewWorld(track, 0.05)
	world.AddVehicle(NewVehicle("a", "Car a", WithMaxSpeed(50)))
	events := NewEventEngine(
		WithRandomEvents(false),
		WithRandomSource(testSource()),
		WithScheduledEvents(ScheduledEvent{Time: 5.0, Payload: RainOn{}}),
	)
	engine := NewSimulationEngine(world, events,
		WithEngineRandomSource(testSource()),
		WithController("a", &flatOut{radius: 100}))

	engine.ResetRace()
	for world.TimeElapsed() < 10.0 {
		if world.TimeElapsed() < 4.99 {
			assert.Equal(t, 1.0, world.Weather().VisibilityMultiplier())
		}
		engine.Step()
		if world.TimeElapsed() > 5.01 {
			assert.Equal(t, 0.8, world.Weather().VisibilityMultiplier())
		}
	}
	assert.Len(t, events.Fired(), 1)
	assert.InDelta(t, 5.0, events.Fired()[0].Time, 0.01)
}

func TestEngine_TelemetryRecordedWhileRacing(t *testing.T) {
	engine, _ := raceEngine(50)
	engine.ResetRace()
	v := engine.World().Vehicles()[0]

	for range 10 {
		engine.Step()
	}
	assert.Len(t, v.TelemetryHistory(), 10)
	assert.InDelta(t, 0.0, v.TelemetryHistory()[0].Time, 1e-9)
}

func TestEngine_RunEpisodeIsRepeatable(t *testing.T) {
	engine, _ := raceEngine(50, 45)
	first := engine.RunEpisode()
	second := engine.RunEpisode()

	assert.Equal(t, first.FinishingPositions, second.FinishingPositions)
	assert.Equal(t, first.TotalTime, second.TotalTime)
}
