package race

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/2arnav4/RaceOracle/log"
	"github.com/2arnav4/RaceOracle/pkg/config"
	"github.com/2arnav4/RaceOracle/pkg/montecarlo"
	"github.com/2arnav4/RaceOracle/pkg/racesim"
	"github.com/2arnav4/RaceOracle/pkg/scenario"
)

func NewRaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "race",
		Short: "runs a single race episode and prints the outcome",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRace(cmd.Context())
		},
	}
	cmd.Flags().Uint64Var(&config.Seed,
		"seed",
		0,
		"seed for the episode (0 picks a random one)")
	return cmd
}

func runRace(ctx context.Context) error {
	sc, err := scenario.LoadFile(config.Scenario)
	if err != nil {
		return err
	}
	if config.ProfilesFile != "" {
		sc.ProfilesFile = config.ProfilesFile
	}
	opts := []montecarlo.RunnerOption{}
	if config.Seed != 0 {
		opts = append(opts, montecarlo.WithSeed(config.Seed))
	}
	runner, err := montecarlo.NewRunner(sc, opts...)
	if err != nil {
		return err
	}

	log.Info("running episode",
		log.String("scenario", config.Scenario),
		log.Uint64("seed", runner.BaseSeed()))
	if err := runner.RunMany(ctx, 1); err != nil {
		return err
	}
	results := runner.Results()
	if len(results) == 0 {
		return fmt.Errorf("episode did not complete")
	}
	printEpisode(&results[0])
	return nil
}

func printEpisode(res *racesim.EpisodeResult) {
	out := os.Stdout
	fmt.Fprintf(out, "Race over after %.2fs (%d laps)\n", res.TotalTime, res.TargetLaps)

	if len(res.FinishingPositions) > 0 {
		fmt.Fprintln(out, "\nFinishing order:")
		for _, fin := range res.FinishingPositions {
			fmt.Fprintf(out, "  %2d. %s (%s)  %.2fs  %d laps\n",
				fin.Position, fin.Name, fin.VehicleID, fin.FinishTime, fin.LapCount)
		}
	}
	if len(res.DNFVehicles) > 0 {
		fmt.Fprintln(out, "\nDid not finish:")
		for _, dnf := range res.DNFVehicles {
			fmt.Fprintf(out, "  %s (%s)  %s at %.2fs, lap %d\n",
				dnf.Name, dnf.VehicleID, dnf.Reason, dnf.DNFTime, dnf.LapCount)
		}
	}
	if len(res.Events) > 0 {
		fmt.Fprintf(out, "\nEvents (%d):\n", len(res.Events))
		for _, ev := range res.Events {
			if ev.VehicleID != "" {
				fmt.Fprintf(out, "  %8.2fs  %s  %s\n", ev.Time, ev.Kind, ev.VehicleID)
			} else {
				fmt.Fprintf(out, "  %8.2fs  %s\n", ev.Time, ev.Kind)
			}
		}
	}
}
