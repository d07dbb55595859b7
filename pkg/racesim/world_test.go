package racesim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleWorld() *World {
	w := NewWorld(NewTrack(100), 0.05)
	w.AddVehicle(NewVehicle("v1", "One"))
	w.AddVehicle(NewVehicle("v2", "Two"))
	w.AddVehicle(NewVehicle("v3", "Three"))
	return w
}

func TestWorld_VehicleRegistryOrder(t *testing.T) {
	w := sampleWorld()
	ids := []string{}
	for _, v := range w.Vehicles() {
		ids = append(ids, v.ID())
	}
	assert.Equal(t, []string{"v1", "v2", "v3"}, ids)

	// re-adding a known id keeps the order
	w.AddVehicle(NewVehicle("v2", "Two Again"))
	v, ok := w.Vehicle("v2")
	assert.True(t, ok)
	assert.Equal(t, "Two Again", v.Name())
	assert.Len(t, w.Vehicles(), 3)
	assert.Equal(t, "v2", w.Vehicles()[1].ID())
}

func TestWorld_AdvanceTime(t *testing.T) {
	w := sampleWorld()
	for range 10 {
		w.AdvanceTime()
	}
	assert.InDelta(t, 0.5, w.TimeElapsed(), 1e-9)
}

func TestWorld_IsVehicleCrashed(t *testing.T) {
	w := sampleWorld()
	v, _ := w.Vehicle("v1")

	v.x, v.y = 100, 0
	assert.False(t, w.IsVehicleCrashed("v1"))

	// within the crash tolerance, outside the corridor
	v.x, v.y = 144, 0
	assert.False(t, w.IsVehicleCrashed("v1"))

	v.x, v.y = 146, 0
	assert.True(t, w.IsVehicleCrashed("v1"))

	assert.False(t, w.IsVehicleCrashed("unknown"))
}

func TestWorld_Reset(t *testing.T) {
	w := sampleWorld()
	w.SetWeather(true)
	w.AdvanceTime()
	v, _ := w.Vehicle("v1")
	v.speed = 20
	v.IncrementLap()

	w.Reset()
	assert.Zero(t, w.TimeElapsed())
	assert.False(t, w.Weather().IsRaining())
	assert.Zero(t, v.speed)
	assert.Zero(t, v.LapCount())
}

func TestWorld_State(t *testing.T) {
	w := sampleWorld()
	w.SetWeather(true)
	state := w.State()
	assert.Len(t, state.Vehicles, 3)
	assert.True(t, state.Weather.Raining)
	assert.Equal(t, "v1", state.Vehicles[0].VehicleID)
	assert.True(t, state.Vehicles[0].Weather.Raining)
}
