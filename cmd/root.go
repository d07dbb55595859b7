package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/2arnav4/RaceOracle/log"
	raceCmd "github.com/2arnav4/RaceOracle/pkg/cmd/race"
	studyCmd "github.com/2arnav4/RaceOracle/pkg/cmd/study"
	winprobCmd "github.com/2arnav4/RaceOracle/pkg/cmd/winprob"
	"github.com/2arnav4/RaceOracle/pkg/config"
	"github.com/2arnav4/RaceOracle/version"
)

const envPrefix = "RACEORACLE"

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "raceoracle",
	Short:   "Monte Carlo race simulation studies",
	Long: `raceoracle simulates multi-vehicle circular-track races under
stochastic failure and weather events and estimates race-outcome
statistics over many independent episodes.`,
	Version: version.FullVersion,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogger()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.raceoracle.yml)")

	rootCmd.PersistentFlags().StringVar(&config.Scenario, "scenario",
		"scenario.yml",
		"path to the scenario file")
	rootCmd.PersistentFlags().StringVar(&config.ProfilesFile, "profiles",
		"",
		"path to the driver profiles file (overrides the scenario entry)")
	rootCmd.PersistentFlags().StringVar(&config.LogLevel, "log-level",
		"info",
		"controls the log level (debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().StringVar(&config.LogFormat, "log-format",
		"text",
		"controls the log output format (text, json)")
	rootCmd.PersistentFlags().StringVar(&config.LogConfig, "log-config",
		"",
		"path to a log config file with filter rules")

	// add commands here
	rootCmd.AddCommand(raceCmd.NewRaceCmd())
	rootCmd.AddCommand(studyCmd.NewStudyCmd())
	rootCmd.AddCommand(winprobCmd.NewWinprobCmd())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".raceoracle" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".raceoracle")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	bindFlags(rootCmd, viper.GetViper())
	for _, cmd := range rootCmd.Commands() {
		bindFlags(cmd, viper.GetViper())
	}
}

// Bind each cobra flag to its associated viper configuration
// (config file and environment variable)
func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		// Environment variables can't have dashes in them, so bind them to their
		// equivalent keys with underscores, e.g. --log-level to RACEORACLE_LOG_LEVEL
		if strings.Contains(f.Name, "-") {
			envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			if err := v.BindEnv(f.Name,
				fmt.Sprintf("%s_%s", envPrefix, envVarSuffix)); err != nil {
				fmt.Fprintf(os.Stderr, "Could not bind env var %s: %v", f.Name, err)
			}
		}
		// Apply the viper config value to the flag when the flag is not set and viper
		// has a value
		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				fmt.Fprintf(os.Stderr, "Could set flag value for %s: %v", f.Name, err)
			}
		}
	})
}

// setupLogger builds the root logger from the log flags and installs
// it as the default.
func setupLogger() error {
	level, err := log.ParseLevel(config.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", config.LogLevel, err)
	}
	opts := []log.Option{log.WithCaller(false)}
	if config.LogConfig != "" {
		logCfg, err := log.LoadConfig(config.LogConfig)
		if err != nil {
			return err
		}
		filterOpt, err := log.WithFilterRules(logCfg.Rules())
		if err != nil {
			return err
		}
		opts = append(opts, filterOpt)
	}

	var logger *log.Logger
	switch config.LogFormat {
	case "json":
		logger = log.New(os.Stderr, level, opts...)
	default:
		logger = log.DevLogger(os.Stderr, level, opts...)
	}
	log.ResetDefault(logger)
	return nil
}
