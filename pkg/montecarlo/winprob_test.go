package montecarlo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2arnav4/RaceOracle/testsupport/basedata"
)

func TestMeanWithMargin(t *testing.T) {
	mean, margin := meanWithMargin(nil)
	assert.Zero(t, mean)
	assert.Zero(t, margin)

	// identical samples carry no uncertainty
	mean, margin = meanWithMargin([]float64{3, 3, 3, 3})
	assert.Equal(t, 3.0, mean)
	assert.Zero(t, margin)

	// four coin flips: mean .5, population sd .5, SE .25
	mean, margin = meanWithMargin([]float64{1, 1, 0, 0})
	assert.Equal(t, 0.5, mean)
	assert.InDelta(t, confidenceZ*0.25, margin, 1e-9)

	// the margin shrinks as 1/sqrt(n)
	big := make([]float64, 0, 16)
	for range 8 {
		big = append(big, 1, 0)
	}
	_, bigMargin := meanWithMargin(big)
	assert.InDelta(t, margin/2, bigMargin, 1e-9)
}

func TestWinProbability_DominantVehicle(t *testing.T) {
	runner := newTestRunner(t)
	res, err := runner.WinProbability(context.Background(), "v1", 20)
	require.NoError(t, err)

	assert.Equal(t, "v1", res.VehicleID)
	assert.Equal(t, "Red One", res.Name)
	assert.Equal(t, 20, res.Runs)
	// v1 outpaces v2 in every episode
	assert.Equal(t, 1.0, res.WinProbability)
	assert.Zero(t, res.Margin)
	assert.Equal(t, 1.0, res.CILow)
	assert.Equal(t, 1.0, res.CIHigh)

	assert.Greater(t, res.MeanFinishTime, 0.0)
	assert.Less(t, res.MeanFinishTime, runner.scenario.MaxTime)
	assert.LessOrEqual(t, res.FinishTimeCILow, res.MeanFinishTime)
	assert.LessOrEqual(t, res.MeanFinishTime, res.FinishTimeCIHigh)
}

func TestWinProbability_SlowerVehicle(t *testing.T) {
	runner := newTestRunner(t)
	res, err := runner.WinProbability(context.Background(), "v2", 10)
	require.NoError(t, err)

	assert.Zero(t, res.WinProbability)
	assert.Zero(t, res.CILow)
	assert.Zero(t, res.CIHigh)
}

func TestWinProbability_UnknownVehicle(t *testing.T) {
	runner := newTestRunner(t)
	_, err := runner.WinProbability(context.Background(), "ghost", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}

func TestWinProbability_TimeoutSentinel(t *testing.T) {
	sc := basedata.SampleScenario()
	sc.MaxTime = 10
	runner, err := NewRunner(sc, WithSeed(42))
	require.NoError(t, err)

	res, err := runner.WinProbability(context.Background(), "v1", 5)
	require.NoError(t, err)

	// no vehicle finishes, so v1 wins the tie at the sentinel time
	assert.Equal(t, 1.0, res.WinProbability)
	assert.Equal(t, sc.MaxTime, res.MeanFinishTime)
	assert.Zero(t, res.FinishTimeMargin)
}

func TestWinProbabilityResult_Formatted(t *testing.T) {
	res := &WinProbabilityResult{
		VehicleID:      "v1",
		Name:           "Red One",
		Runs:           100,
		WinProbability: 0.8,
		Margin:         0.078,
		CILow:          0.722,
		CIHigh:         0.878,
		MeanFinishTime: 41.2,
	}
	out := res.Formatted()
	assert.Contains(t, out, "Red One")
	assert.Contains(t, out, "runs:            100")
	assert.Contains(t, out, "0.800")
	assert.Contains(t, out, "41.20s")
}
