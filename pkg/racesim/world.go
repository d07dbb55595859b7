package racesim

import "math"

// distance from the centerline beyond which a vehicle counts as
// crashed, slightly more lenient than the track corridor
const crashDistanceThreshold = 45.0

// WorldState is a point-in-time snapshot of a whole world.
type WorldState struct {
	Time     float64        `json:"time"`
	Weather  WeatherEffects `json:"weather"`
	Vehicles []Observation  `json:"vehicles"`
}

// World owns the track, the weather and the vehicles of one episode.
// Vehicles are kept in a registry keyed by id with a stable insertion
// order used for all iteration.
type World struct {
	track    *Track
	weather  *Weather
	vehicles map[string]*Vehicle
	order    []string

	timeElapsed float64
	dt          float64
}

func NewWorld(track *Track, dt float64) *World {
	return &World{
		track:    track,
		weather:  NewWeather(),
		vehicles: make(map[string]*Vehicle),
		dt:       dt,
	}
}

func (w *World) Track() *Track     { return w.track }
func (w *World) Weather() *Weather { return w.weather }

func (w *World) TimeElapsed() float64 { return w.timeElapsed }
func (w *World) TickSize() float64    { return w.dt }

// AddVehicle registers a vehicle. Adding a vehicle with a known id
// replaces the registered one without changing the iteration order.
func (w *World) AddVehicle(v *Vehicle) {
	if _, ok := w.vehicles[v.ID()]; !ok {
		w.order = append(w.order, v.ID())
	}
	w.vehicles[v.ID()] = v
}

func (w *World) Vehicle(id string) (*Vehicle, bool) {
	v, ok := w.vehicles[id]
	return v, ok
}

// Vehicles returns all vehicles in insertion order.
func (w *World) Vehicles() []*Vehicle {
	ret := make([]*Vehicle, 0, len(w.order))
	for _, id := range w.order {
		ret = append(ret, w.vehicles[id])
	}
	return ret
}

// SetWeather toggles rain. All weather mutation goes through here.
func (w *World) SetWeather(raining bool) {
	w.weather.SetRain(raining)
}

func (w *World) AdvanceTime() {
	w.timeElapsed += w.dt
}

// IsVehicleCrashed reports whether the vehicle strayed beyond the
// crash distance from the centerline. Unknown ids report false.
func (w *World) IsVehicleCrashed(id string) bool {
	v, ok := w.vehicles[id]
	if !ok {
		return false
	}
	x, y := v.Position()
	return math.Abs(math.Hypot(x, y)-w.track.Radius()) > crashDistanceThreshold
}

// State captures the current world snapshot.
func (w *World) State() WorldState {
	effects := w.weather.Effects()
	vehicles := make([]Observation, 0, len(w.order))
	for _, v := range w.Vehicles() {
		vehicles = append(vehicles, v.Observation(effects))
	}
	return WorldState{
		Time:     w.timeElapsed,
		Weather:  effects,
		Vehicles: vehicles,
	}
}

// Reset restores time, weather and every vehicle to their initial
// state.
func (w *World) Reset() {
	w.timeElapsed = 0
	w.weather.SetRain(false)
	for _, v := range w.Vehicles() {
		v.Reset()
	}
}
