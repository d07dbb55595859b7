package montecarlo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gtassert "gotest.tools/v3/assert"

	"github.com/2arnav4/RaceOracle/pkg/scenario"
	"github.com/2arnav4/RaceOracle/testsupport/basedata"
)

func newTestRunner(t *testing.T, opts ...RunnerOption) *Runner {
	t.Helper()
	opts = append([]RunnerOption{WithSeed(42)}, opts...)
	runner, err := NewRunner(basedata.SampleScenario(), opts...)
	require.NoError(t, err)
	return runner
}

func TestNewRunner_RejectsInvalidScenario(t *testing.T) {
	sc := basedata.SampleScenario()
	sc.Vehicles[0].ID = sc.Vehicles[1].ID
	_, err := NewRunner(sc)
	assert.ErrorIs(t, err, scenario.ErrInvalidScenario)
}

func TestNewRunner_RejectsUnknownDriverCode(t *testing.T) {
	sc := basedata.SampleScenario()
	sc.Vehicles[0].Controller = scenario.ControllerSpec{
		Type:   scenario.ControllerDriverStyle,
		Driver: "ZZZ",
	}
	_, err := NewRunner(sc, WithProfiles(basedata.SampleStore()))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ZZZ")
}

func TestRunMany_CollectsAllEpisodes(t *testing.T) {
	runner := newTestRunner(t)
	require.NoError(t, runner.RunMany(context.Background(), 5))
	assert.Len(t, runner.Results(), 5)

	// a fresh run replaces the collected results
	require.NoError(t, runner.RunMany(context.Background(), 3))
	assert.Len(t, runner.Results(), 3)
}

func TestRunMany_SameSeedReproduces(t *testing.T) {
	first := newTestRunner(t)
	second := newTestRunner(t)
	require.NoError(t, first.RunMany(context.Background(), 4))
	require.NoError(t, second.RunMany(context.Background(), 4))

	gtassert.DeepEqual(t, first.Results(), second.Results())
}

func TestRunMany_WorkerCountDoesNotChangeResults(t *testing.T) {
	serial := newTestRunner(t)
	parallel := newTestRunner(t, WithWorkers(4))
	require.NoError(t, serial.RunMany(context.Background(), 8))
	require.NoError(t, parallel.RunMany(context.Background(), 8))

	gtassert.DeepEqual(t, serial.Results(), parallel.Results())
}

func TestRunMany_CancelledContext(t *testing.T) {
	runner := newTestRunner(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := runner.RunMany(ctx, 10)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunMany_FasterVehicleAlwaysWins(t *testing.T) {
	runner := newTestRunner(t)
	require.NoError(t, runner.RunMany(context.Background(), 10))

	for _, res := range runner.Results() {
		require.Len(t, res.FinishingPositions, 2)
		assert.Equal(t, "v1", res.FinishingPositions[0].VehicleID)
		assert.Less(t,
			res.FinishingPositions[0].FinishTime,
			res.FinishingPositions[1].FinishTime)
	}
}
