// Package montecarlo repeats independent race episodes over a
// scenario and aggregates the outcomes into study statistics.
package montecarlo

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/2arnav4/RaceOracle/log"
	"github.com/2arnav4/RaceOracle/pkg/controller"
	"github.com/2arnav4/RaceOracle/pkg/profile"
	"github.com/2arnav4/RaceOracle/pkg/racesim"
	"github.com/2arnav4/RaceOracle/pkg/scenario"
)

type (
	// Runner owns a scenario and runs independent episodes over it.
	// Episodes share no mutable state; each gets a fresh world, event
	// engine and controllers plus its own random stream derived from
	// the base seed and the episode index.
	Runner struct {
		scenario *scenario.Scenario
		store    *profile.Store
		baseSeed uint64
		workers  int

		mu      sync.Mutex
		results []racesim.EpisodeResult

		log *log.Logger
	}

	RunnerOption func(*Runner)
)

// WithSeed sets the base seed of the study. Episode i derives its
// stream from (seed, i).
func WithSeed(seed uint64) RunnerOption {
	return func(r *Runner) { r.baseSeed = seed }
}

// WithWorkers bounds the episode worker pool.
func WithWorkers(workers int) RunnerOption {
	return func(r *Runner) {
		if workers > 0 {
			r.workers = workers
		}
	}
}

// WithProfiles injects the driver profile store used by driver_style
// controllers.
func WithProfiles(store *profile.Store) RunnerOption {
	return func(r *Runner) { r.store = store }
}

// NewRunner validates the scenario and resolves every controller spec
// once, so a misconfigured study (including unknown driver codes)
// fails here and not mid-study.
func NewRunner(sc *scenario.Scenario, opts ...RunnerOption) (*Runner, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	ret := &Runner{
		scenario: sc,
		baseSeed: rand.Uint64(),
		workers:  1,
		log:      log.Default().Named("montecarlo"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.store == nil && sc.ProfilesFile != "" {
		store, err := profile.LoadFile(sc.ProfilesFile)
		if err != nil {
			return nil, err
		}
		ret.store = store
	}
	// dry-run the construction to surface controller problems up front
	if _, err := ret.buildEpisode(0); err != nil {
		return nil, err
	}
	return ret, nil
}

func (r *Runner) Scenario() *scenario.Scenario { return r.scenario }
func (r *Runner) BaseSeed() uint64             { return r.baseSeed }

// Results returns the collected episode results of the last RunMany,
// ordered by episode index.
func (r *Runner) Results() []racesim.EpisodeResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.results
}

// RunMany discards previously collected results and runs n episodes
// across the worker pool. Results are stored by episode index, so the
// outcome does not depend on worker interleaving. Cancellation takes
// effect between episodes; completed episodes are kept.
func (r *Runner) RunMany(ctx context.Context, n int) error {
	results := make([]racesim.EpisodeResult, n)
	done := make([]bool, n)

	indexes := make(chan int)
	errs := make(chan error, r.workers)
	var wg sync.WaitGroup
	for range r.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var failed bool
			for idx := range indexes {
				if failed {
					continue
				}
				engine, err := r.buildEpisode(idx)
				if err != nil {
					errs <- err
					failed = true
					continue
				}
				results[idx] = engine.RunEpisode()
				done[idx] = true
			}
		}()
	}

	var cancelled bool
feed:
	for i := range n {
		select {
		case <-ctx.Done():
			cancelled = true
			break feed
		case indexes <- i:
		}
	}
	close(indexes)
	wg.Wait()
	close(errs)
	if err := <-errs; err != nil {
		return err
	}

	r.mu.Lock()
	r.results = r.results[:0]
	for i := range n {
		if done[i] {
			r.results = append(r.results, results[i])
		}
	}
	r.mu.Unlock()

	r.log.Info("study finished",
		log.Int("requested", n),
		log.Int("completed", len(r.Results())),
		log.Uint64("seed", r.baseSeed))
	if cancelled {
		return ctx.Err()
	}
	return nil
}

// buildEpisode assembles a fresh simulation engine for the episode
// index with its own random stream.
func (r *Runner) buildEpisode(idx int) (*racesim.SimulationEngine, error) {
	src := rand.NewPCG(r.baseSeed, uint64(idx)) //nolint:gosec // reproducibility, not crypto

	track := racesim.NewTrack(r.scenario.TrackRadius)
	world := racesim.NewWorld(track, r.scenario.Dt)

	engineOpts := []racesim.EngineOption{
		racesim.WithTargetLaps(r.scenario.TargetLaps),
		racesim.WithMaxTime(r.scenario.MaxTime),
		racesim.WithEngineRandomSource(src),
	}
	for _, vc := range r.scenario.Vehicles {
		world.AddVehicle(newVehicle(vc))
		ctrl, err := controller.FromSpec(vc.Controller, r.store, r.scenario.TrackRadius, src)
		if err != nil {
			return nil, fmt.Errorf("vehicle %s: %w", vc.ID, err)
		}
		engineOpts = append(engineOpts, racesim.WithController(vc.ID, ctrl))
	}

	events := racesim.NewEventEngine(
		racesim.WithRandomSource(src),
		racesim.WithProbabilities(r.scenario.Probabilities()),
		racesim.WithRandomEvents(r.scenario.RandomEventsEnabled()),
		racesim.WithScheduledEvents(r.scenario.ScheduledEvents()...),
	)

	return racesim.NewSimulationEngine(world, events, engineOpts...), nil
}

func newVehicle(vc scenario.VehicleConfig) *racesim.Vehicle {
	var opts []racesim.VehicleOption
	if vc.Team != "" {
		opts = append(opts, racesim.WithTeam(vc.Team))
	}
	if vc.MaxSpeed > 0 {
		opts = append(opts, racesim.WithMaxSpeed(vc.MaxSpeed))
	}
	if vc.MaxAcceleration > 0 {
		opts = append(opts, racesim.WithMaxAcceleration(vc.MaxAcceleration))
	}
	if vc.MaxDeceleration > 0 {
		opts = append(opts, racesim.WithMaxDeceleration(vc.MaxDeceleration))
	}
	if vc.MaxSteerRate > 0 {
		opts = append(opts, racesim.WithMaxSteerRate(vc.MaxSteerRate))
	}
	return racesim.NewVehicle(vc.ID, vc.Name, opts...)
}
