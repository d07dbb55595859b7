package montecarlo

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"

	"github.com/2arnav4/RaceOracle/pkg/racesim"
	"github.com/2arnav4/RaceOracle/pkg/scenario"
)

// z value for a 95% normal-approximation confidence interval
const confidenceZ = 1.96

// WinProbabilityResult is the outcome of a head-to-head study for one
// target vehicle. The probability interval is clamped to [0,1]; the
// finish-time interval is reported unclamped.
type WinProbabilityResult struct {
	VehicleID string `json:"vehicleId"`
	Name      string `json:"name"`
	Runs      int    `json:"runs"`

	WinProbability float64 `json:"winProbability"`
	Margin         float64 `json:"margin"`
	CILow          float64 `json:"ciLow"`
	CIHigh         float64 `json:"ciHigh"`

	MeanFinishTime   float64 `json:"meanFinishTime"`
	FinishTimeMargin float64 `json:"finishTimeMargin"`
	FinishTimeCILow  float64 `json:"finishTimeCiLow"`
	FinishTimeCIHigh float64 `json:"finishTimeCiHigh"`
}

// WinProbability estimates the chance that the vehicle posts the
// fastest finish time, over n fresh episodes. A vehicle that does not
// finish an episode is assigned the episode's hard time cutoff as a
// sentinel; ties on the minimum resolve to the earliest-configured
// vehicle.
func (r *Runner) WinProbability(
	ctx context.Context,
	vehicleID string,
	n int,
) (*WinProbabilityResult, error) {
	target, ok := lo.Find(r.scenario.Vehicles, func(vc scenario.VehicleConfig) bool {
		return vc.ID == vehicleID
	})
	if !ok {
		return nil, fmt.Errorf("vehicle %q is not part of the scenario", vehicleID)
	}
	if err := r.RunMany(ctx, n); err != nil {
		return nil, err
	}
	results := r.Results()
	if len(results) == 0 {
		return nil, fmt.Errorf("no completed episodes")
	}

	wins := make([]float64, 0, len(results))
	times := make([]float64, 0, len(results))
	for i := range results {
		winner := winnerOf(&results[i], r.scenario, r.scenario.MaxTime)
		wins = append(wins, lo.Ternary(winner == vehicleID, 1.0, 0.0))
		times = append(times, results[i].FinishTimeOf(vehicleID, r.scenario.MaxTime))
	}

	winMean, winMargin := meanWithMargin(wins)
	timeMean, timeMargin := meanWithMargin(times)

	return &WinProbabilityResult{
		VehicleID:        vehicleID,
		Name:             target.Name,
		Runs:             len(results),
		WinProbability:   winMean,
		Margin:           winMargin,
		CILow:            math.Max(0, winMean-winMargin),
		CIHigh:           math.Min(1, winMean+winMargin),
		MeanFinishTime:   timeMean,
		FinishTimeMargin: timeMargin,
		FinishTimeCILow:  timeMean - timeMargin,
		FinishTimeCIHigh: timeMean + timeMargin,
	}, nil
}

// winnerOf returns the vehicle id with the minimal finish time of the
// episode, every non-finisher counted at the sentinel time.
func winnerOf(res *racesim.EpisodeResult, sc *scenario.Scenario, sentinel float64) string {
	winner := ""
	best := math.Inf(1)
	for _, vc := range sc.Vehicles {
		t := res.FinishTimeOf(vc.ID, sentinel)
		if t < best {
			best = t
			winner = vc.ID
		}
	}
	return winner
}

// meanWithMargin computes the sample mean and the 95% half-width from
// the population standard deviation (divisor N).
func meanWithMargin(samples []float64) (mean, margin float64) {
	n := float64(len(samples))
	if n == 0 {
		return 0, 0
	}
	mean = stat.Mean(samples, nil)
	popVariance := stat.MomentAbout(2, samples, mean, nil)
	stdErr := math.Sqrt(popVariance) / math.Sqrt(n)
	return mean, confidenceZ * stdErr
}

// Formatted renders the human-readable report.
func (w *WinProbabilityResult) Formatted() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Win probability study: %s (%s)\n", w.Name, w.VehicleID)
	fmt.Fprintf(&b, "  runs:            %d\n", w.Runs)
	fmt.Fprintf(&b, "  win probability: %.3f ± %.3f (95%% CI %.3f .. %.3f)\n",
		w.WinProbability, w.Margin, w.CILow, w.CIHigh)
	fmt.Fprintf(&b, "  finish time:     %.2fs ± %.2fs (95%% CI %.2f .. %.2f)\n",
		w.MeanFinishTime, w.FinishTimeMargin, w.FinishTimeCILow, w.FinishTimeCIHigh)
	return b.String()
}
