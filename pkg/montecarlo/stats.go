package montecarlo

import (
	"sort"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type (
	// VehicleStats aggregates one vehicle over all episodes of a
	// study. Finish-time figures and the mean position are nil when
	// the vehicle never finished.
	VehicleStats struct {
		VehicleID string `json:"vehicleId"`
		Name      string `json:"name"`
		Team      string `json:"team,omitempty"`

		Finishes   int     `json:"finishes"`
		DNFs       int     `json:"dnfs"`
		Wins       int     `json:"wins"`
		FinishRate float64 `json:"finishRate"`
		DNFRate    float64 `json:"dnfRate"`

		FinishTimeMin      *float64 `json:"finishTimeMin,omitempty"`
		FinishTimeMean     *float64 `json:"finishTimeMean,omitempty"`
		FinishTimeMax      *float64 `json:"finishTimeMax,omitempty"`
		MeanFinishPosition *float64 `json:"meanFinishPosition,omitempty"`

		MeanLapCount float64        `json:"meanLapCount"`
		DNFReasons   map[string]int `json:"dnfReasons,omitempty"`
	}

	// TeamStats combines the vehicles sharing a team label.
	TeamStats struct {
		Team           string   `json:"team"`
		Vehicles       []string `json:"vehicles"`
		Finishes       int      `json:"finishes"`
		DNFs           int      `json:"dnfs"`
		Wins           int      `json:"wins"`
		MeanFinishTime *float64 `json:"meanFinishTime,omitempty"`
		FinishRate     float64  `json:"finishRate"`
	}

	// OverallStats covers the whole study.
	OverallStats struct {
		MeanTotalTime float64 `json:"meanTotalTime"`
		MinTotalTime  float64 `json:"minTotalTime"`
		MaxTotalTime  float64 `json:"maxTotalTime"`
		TotalEvents   int     `json:"totalEvents"`
		TotalFinishes int     `json:"totalFinishes"`
		TotalDNFs     int     `json:"totalDnfs"`
		DNFRate       float64 `json:"dnfRate"`
	}

	// StudyResult is the aggregate outcome of one Monte Carlo study.
	StudyResult struct {
		ID           string         `json:"id"`
		ScenarioName string         `json:"scenarioName,omitempty"`
		Episodes     int            `json:"episodes"`
		Vehicles     []VehicleStats `json:"vehicles"`
		Teams        []TeamStats    `json:"teams,omitempty"`
		Overall      OverallStats   `json:"overall"`
		DNFReasons   map[string]int `json:"dnfReasons,omitempty"`
	}
)

// vehicleSamples is the per-vehicle working set while aggregating.
type vehicleSamples struct {
	stats       VehicleStats
	finishTimes []float64
	positions   []float64
	lapCounts   []float64
}

// Aggregate computes the study statistics over the collected results.
// Safe to call on an empty runner; rates report 0 without data.
//
//nolint:funlen // one aggregation pass
func (r *Runner) Aggregate() StudyResult {
	results := r.Results()
	episodes := len(results)

	byVehicle := map[string]*vehicleSamples{}
	order := make([]string, 0, len(r.scenario.Vehicles))
	for _, vc := range r.scenario.Vehicles {
		order = append(order, vc.ID)
		byVehicle[vc.ID] = &vehicleSamples{stats: VehicleStats{
			VehicleID:  vc.ID,
			Name:       vc.Name,
			Team:       vc.Team,
			DNFReasons: map[string]int{},
		}}
	}

	totalTimes := make([]float64, 0, episodes)
	overall := OverallStats{}
	dnfReasons := map[string]int{}

	for i := range results {
		res := &results[i]
		totalTimes = append(totalTimes, res.TotalTime)
		overall.TotalEvents += len(res.Events)

		for _, fin := range res.FinishingPositions {
			samples, ok := byVehicle[fin.VehicleID]
			if !ok {
				continue
			}
			samples.stats.Finishes++
			if fin.Position == 1 {
				samples.stats.Wins++
			}
			samples.finishTimes = append(samples.finishTimes, fin.FinishTime)
			samples.positions = append(samples.positions, float64(fin.Position))
			samples.lapCounts = append(samples.lapCounts, float64(fin.LapCount))
			overall.TotalFinishes++
		}
		for _, dnf := range res.DNFVehicles {
			samples, ok := byVehicle[dnf.VehicleID]
			if !ok {
				continue
			}
			samples.stats.DNFs++
			samples.stats.DNFReasons[dnf.Reason]++
			samples.lapCounts = append(samples.lapCounts, float64(dnf.LapCount))
			dnfReasons[dnf.Reason]++
			overall.TotalDNFs++
		}
	}

	vehicles := make([]VehicleStats, 0, len(order))
	for _, id := range order {
		vehicles = append(vehicles, byVehicle[id].compile(episodes))
	}

	if episodes > 0 {
		overall.MeanTotalTime = stat.Mean(totalTimes, nil)
		overall.MinTotalTime = floats.Min(totalTimes)
		overall.MaxTotalTime = floats.Max(totalTimes)
	}
	if classified := overall.TotalFinishes + overall.TotalDNFs; classified > 0 {
		overall.DNFRate = float64(overall.TotalDNFs) / float64(classified)
	}

	return StudyResult{
		ID:           uuid.New().String(),
		ScenarioName: r.scenario.Name,
		Episodes:     episodes,
		Vehicles:     vehicles,
		Teams:        teamStats(vehicles),
		Overall:      overall,
		DNFReasons:   dnfReasons,
	}
}

func (s *vehicleSamples) compile(episodes int) VehicleStats {
	ret := s.stats
	if episodes > 0 {
		ret.FinishRate = float64(ret.Finishes) / float64(episodes)
		ret.DNFRate = float64(ret.DNFs) / float64(episodes)
	}
	if len(s.finishTimes) > 0 {
		ret.FinishTimeMin = ptr(floats.Min(s.finishTimes))
		ret.FinishTimeMean = ptr(stat.Mean(s.finishTimes, nil))
		ret.FinishTimeMax = ptr(floats.Max(s.finishTimes))
		ret.MeanFinishPosition = ptr(stat.Mean(s.positions, nil))
	}
	if len(s.lapCounts) > 0 {
		ret.MeanLapCount = stat.Mean(s.lapCounts, nil)
	}
	if len(ret.DNFReasons) == 0 {
		ret.DNFReasons = nil
	}
	return ret
}

// teamStats folds the per-vehicle stats of each non-empty team label.
func teamStats(vehicles []VehicleStats) []TeamStats {
	grouped := lo.GroupBy(
		lo.Filter(vehicles, func(v VehicleStats, _ int) bool { return v.Team != "" }),
		func(v VehicleStats) string { return v.Team })

	ret := make([]TeamStats, 0, len(grouped))
	for team, members := range grouped {
		entry := TeamStats{Team: team}
		var meanTimes []float64
		for _, m := range members {
			entry.Vehicles = append(entry.Vehicles, m.VehicleID)
			entry.Finishes += m.Finishes
			entry.DNFs += m.DNFs
			entry.Wins += m.Wins
			if m.FinishTimeMean != nil {
				meanTimes = append(meanTimes, *m.FinishTimeMean)
			}
		}
		if len(meanTimes) > 0 {
			entry.MeanFinishTime = ptr(stat.Mean(meanTimes, nil))
		}
		if classified := entry.Finishes + entry.DNFs; classified > 0 {
			entry.FinishRate = float64(entry.Finishes) / float64(classified)
		}
		ret = append(ret, entry)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Team < ret[j].Team })
	return ret
}

func ptr(v float64) *float64 { return &v }
