package winprob

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/2arnav4/RaceOracle/log"
	"github.com/2arnav4/RaceOracle/pkg/config"
	"github.com/2arnav4/RaceOracle/pkg/montecarlo"
	"github.com/2arnav4/RaceOracle/pkg/scenario"
)

var vehicleID string

func NewWinprobCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "winprob",
		Short: "estimates the win probability of one vehicle with a confidence interval",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWinprob(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&vehicleID,
		"vehicle",
		"",
		"id of the vehicle under study")
	cmd.Flags().IntVarP(&config.Episodes,
		"episodes",
		"n",
		500,
		"number of episodes to simulate")
	cmd.Flags().IntVar(&config.Workers,
		"workers",
		1,
		"number of concurrent episode workers")
	cmd.Flags().Uint64Var(&config.Seed,
		"seed",
		0,
		"base seed for the study (0 picks a random one)")
	//nolint:errcheck // flag is declared above
	cmd.MarkFlagRequired("vehicle")
	return cmd
}

func runWinprob(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	sc, err := scenario.LoadFile(config.Scenario)
	if err != nil {
		return err
	}
	if config.ProfilesFile != "" {
		sc.ProfilesFile = config.ProfilesFile
	}
	opts := []montecarlo.RunnerOption{montecarlo.WithWorkers(config.Workers)}
	if config.Seed != 0 {
		opts = append(opts, montecarlo.WithSeed(config.Seed))
	}
	runner, err := montecarlo.NewRunner(sc, opts...)
	if err != nil {
		return err
	}

	log.Info("starting win probability study",
		log.String("scenario", config.Scenario),
		log.String("vehicle", vehicleID),
		log.Int("episodes", config.Episodes),
		log.Uint64("seed", runner.BaseSeed()))

	result, err := runner.WinProbability(ctx, vehicleID, config.Episodes)
	if err != nil {
		return err
	}
	fmt.Print(result.Formatted())
	return nil
}
