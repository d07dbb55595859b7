package racesim

type (
	// VehicleResult is one finisher's entry of an episode result.
	VehicleResult struct {
		VehicleID       string     `json:"vehicleId"`
		Name            string     `json:"name"`
		Team            string     `json:"team,omitempty"`
		Position        int        `json:"position"`
		FinishTime      float64    `json:"finishTime"`
		LapCount        int        `json:"lapCount"`
		TelemetryLength int        `json:"telemetryLength"`
		EventLog        []LogEntry `json:"eventLog,omitempty"`
	}

	// DNFResult is one retired vehicle's entry of an episode result.
	DNFResult struct {
		VehicleID   string     `json:"vehicleId"`
		Name        string     `json:"name"`
		Team        string     `json:"team,omitempty"`
		Reason      string     `json:"reason"`
		DNFTime     float64    `json:"dnfTime"`
		LapCount    int        `json:"lapCount"`
		LapProgress float64    `json:"lapProgress"`
		EventLog    []LogEntry `json:"eventLog,omitempty"`
	}

	// EpisodeResult is the compiled outcome of one race episode.
	// FinishingPositions is ordered by assigned position; Events is the
	// ordered record of every fired event of the episode.
	EpisodeResult struct {
		TotalTime          float64         `json:"totalTime"`
		TargetLaps         int             `json:"targetLaps"`
		FinishingPositions []VehicleResult `json:"finishingPositions"`
		DNFVehicles        []DNFResult     `json:"dnfVehicles"`
		Events             []FiredEvent    `json:"events"`
	}
)

// Winner returns the first finisher, if any.
func (r EpisodeResult) Winner() (VehicleResult, bool) {
	if len(r.FinishingPositions) == 0 {
		return VehicleResult{}, false
	}
	return r.FinishingPositions[0], true
}

// FinishTimeOf returns the finish time of the given vehicle or
// fallback when it did not finish.
func (r EpisodeResult) FinishTimeOf(vehicleID string, fallback float64) float64 {
	for i := range r.FinishingPositions {
		if r.FinishingPositions[i].VehicleID == vehicleID {
			return r.FinishingPositions[i].FinishTime
		}
	}
	return fallback
}
