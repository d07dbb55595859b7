package study

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/2arnav4/RaceOracle/log"
	"github.com/2arnav4/RaceOracle/pkg/config"
	"github.com/2arnav4/RaceOracle/pkg/montecarlo"
	"github.com/2arnav4/RaceOracle/pkg/scenario"
)

func NewStudyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "study",
		Short: "runs a Monte Carlo study and prints the aggregate statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStudy(cmd.Context())
		},
	}
	cmd.Flags().IntVarP(&config.Episodes,
		"episodes",
		"n",
		1000,
		"number of episodes to simulate")
	cmd.Flags().IntVar(&config.Workers,
		"workers",
		1,
		"number of concurrent episode workers")
	cmd.Flags().Uint64Var(&config.Seed,
		"seed",
		0,
		"base seed for the study (0 picks a random one)")
	cmd.Flags().StringVarP(&config.Output,
		"output",
		"o",
		"text",
		"output format (text, json)")
	return cmd
}

func runStudy(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	sc, err := scenario.LoadFile(config.Scenario)
	if err != nil {
		return err
	}
	if config.ProfilesFile != "" {
		sc.ProfilesFile = config.ProfilesFile
	}
	runner, err := montecarlo.NewRunner(sc, runnerOptions()...)
	if err != nil {
		return err
	}

	log.Info("starting study",
		log.String("scenario", config.Scenario),
		log.Int("episodes", config.Episodes),
		log.Int("workers", config.Workers),
		log.Uint64("seed", runner.BaseSeed()))

	if err := runner.RunMany(ctx, config.Episodes); err != nil {
		// a cancelled study still reports what it collected
		log.Warn("study interrupted", log.ErrorField(err))
	}
	aggregate := runner.Aggregate()

	switch config.Output {
	case "json":
		data, err := oj.Marshal(&aggregate, 2)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	default:
		aggregate.Summary(os.Stdout)
	}
	return nil
}

func runnerOptions() []montecarlo.RunnerOption {
	opts := []montecarlo.RunnerOption{
		montecarlo.WithWorkers(config.Workers),
	}
	if config.Seed != 0 {
		opts = append(opts, montecarlo.WithSeed(config.Seed))
	}
	return opts
}
