package montecarlo

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gtassert "gotest.tools/v3/assert"

	"github.com/2arnav4/RaceOracle/pkg/racesim"
	"github.com/2arnav4/RaceOracle/testsupport/basedata"
)

func TestAggregate_AllFinishers(t *testing.T) {
	runner := newTestRunner(t)
	require.NoError(t, runner.RunMany(context.Background(), 10))
	agg := runner.Aggregate()

	assert.NotEmpty(t, agg.ID)
	assert.Equal(t, "testscenario", agg.ScenarioName)
	assert.Equal(t, 10, agg.Episodes)
	require.Len(t, agg.Vehicles, 2)

	v1 := agg.Vehicles[0]
	assert.Equal(t, "v1", v1.VehicleID)
	assert.Equal(t, 10, v1.Finishes)
	assert.Equal(t, 10, v1.Wins)
	assert.Zero(t, v1.DNFs)
	assert.Equal(t, 1.0, v1.FinishRate)
	assert.Zero(t, v1.DNFRate)
	require.NotNil(t, v1.FinishTimeMean)
	assert.LessOrEqual(t, *v1.FinishTimeMin, *v1.FinishTimeMean)
	assert.LessOrEqual(t, *v1.FinishTimeMean, *v1.FinishTimeMax)
	require.NotNil(t, v1.MeanFinishPosition)
	assert.Equal(t, 1.0, *v1.MeanFinishPosition)
	assert.Equal(t, 2.0, v1.MeanLapCount)

	v2 := agg.Vehicles[1]
	assert.Zero(t, v2.Wins)
	assert.Equal(t, 2.0, *v2.MeanFinishPosition)

	assert.Equal(t, 20, agg.Overall.TotalFinishes)
	assert.Zero(t, agg.Overall.TotalDNFs)
	assert.Zero(t, agg.Overall.DNFRate)
	assert.Empty(t, agg.DNFReasons)
}

func TestAggregate_TeamStats(t *testing.T) {
	runner := newTestRunner(t)
	require.NoError(t, runner.RunMany(context.Background(), 4))
	agg := runner.Aggregate()

	require.Len(t, agg.Teams, 2)
	// sorted by team label
	assert.Equal(t, "Blue", agg.Teams[0].Team)
	assert.Equal(t, "Red", agg.Teams[1].Team)

	red := agg.Teams[1]
	assert.Equal(t, []string{"v1"}, red.Vehicles)
	assert.Equal(t, 4, red.Wins)
	assert.Equal(t, 4, red.Finishes)
	assert.Equal(t, 1.0, red.FinishRate)
	require.NotNil(t, red.MeanFinishTime)
}

func TestAggregate_TimeoutStudy(t *testing.T) {
	sc := basedata.SampleScenario()
	sc.MaxTime = 10 // too short to complete any lap count
	runner, err := NewRunner(sc, WithSeed(42))
	require.NoError(t, err)
	require.NoError(t, runner.RunMany(context.Background(), 3))
	agg := runner.Aggregate()

	assert.Zero(t, agg.Overall.TotalFinishes)
	assert.Equal(t, 6, agg.Overall.TotalDNFs)
	assert.Equal(t, 1.0, agg.Overall.DNFRate)
	assert.Equal(t, 6, agg.DNFReasons[racesim.DNFReasonTimeout])

	v1 := agg.Vehicles[0]
	assert.Nil(t, v1.FinishTimeMean)
	assert.Nil(t, v1.MeanFinishPosition)
	assert.Equal(t, 1.0, v1.DNFRate)
}

func TestAggregate_Deterministic(t *testing.T) {
	first := newTestRunner(t)
	second := newTestRunner(t)
	require.NoError(t, first.RunMany(context.Background(), 5))
	require.NoError(t, second.RunMany(context.Background(), 5))

	// identical apart from the freshly assigned study id
	gtassert.DeepEqual(t, first.Aggregate(), second.Aggregate(),
		cmpopts.IgnoreFields(StudyResult{}, "ID"))
}

func TestAggregate_Empty(t *testing.T) {
	runner := newTestRunner(t)
	agg := runner.Aggregate()

	assert.Zero(t, agg.Episodes)
	assert.Zero(t, agg.Overall.DNFRate)
	require.Len(t, agg.Vehicles, 2)
	assert.Zero(t, agg.Vehicles[0].FinishRate)
}

func TestSummary(t *testing.T) {
	runner := newTestRunner(t)
	require.NoError(t, runner.RunMany(context.Background(), 5))
	agg := runner.Aggregate()

	var b strings.Builder
	agg.Summary(&b)
	out := b.String()

	assert.Contains(t, out, "Episodes: 5")
	assert.Contains(t, out, "Red One")
	assert.Contains(t, out, "Blue One")
	assert.Contains(t, out, "Teams:")
	// winner is listed first
	assert.Less(t, strings.Index(out, "Red One"), strings.Index(out, "Blue One"))
}
