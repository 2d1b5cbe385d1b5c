package cmd

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// CLI flags for the run command
	configPath string          // Optional YAML model file
	modelName  string          // Reference model to run
	horizon    time.Duration   // Simulated time ceiling (0 = until empty)
	hold       time.Duration   // Handshake hold duration
	jobs       []time.Duration // Fanout job durations
	deadline   time.Duration   // Fanout watchdog deadline
	traceLevel string          // Trace verbosity
	logLevel   string          // Log verbosity level
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "procsim",
	Short: "Process-interaction discrete-event simulation kernel",
}

// runCmd runs a reference model using the model file and CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a reference model",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg, err := resolveRunConfig(cmd)
		if err != nil {
			return err
		}

		report, err := runModel(cfg)
		if err != nil {
			return err
		}
		logrus.WithField("run_id", report.RunID).Info("Simulation complete.")
		return writeReport(cmd.OutOrStdout(), report)
	},
}

// resolveRunConfig layers explicitly set flags over the model file (or the
// defaults when no file is given). Flag defaults never overwrite file values.
func resolveRunConfig(cmd *cobra.Command) (RunConfig, error) {
	cfg := defaultRunConfig()
	if configPath != "" {
		var err error
		if cfg, err = loadRunConfig(configPath); err != nil {
			return cfg, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("model") {
		cfg.Model = modelName
	}
	if flags.Changed("horizon") {
		cfg.Horizon = horizon
	}
	if flags.Changed("hold") {
		cfg.Hold = hold
	}
	if flags.Changed("jobs") {
		cfg.Jobs = jobs
	}
	if flags.Changed("deadline") {
		cfg.Deadline = deadline
	}
	if flags.Changed("trace") {
		cfg.Trace = traceLevel
	}
	return cfg, nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	defaults := defaultRunConfig()

	runCmd.Flags().StringVar(&configPath, "config", "", "YAML model file (flags given explicitly override it)")
	runCmd.Flags().StringVar(&modelName, "model", defaults.Model, "Reference model: handshake or fanout")
	runCmd.Flags().DurationVar(&horizon, "horizon", defaults.Horizon, "Simulated time ceiling (0 = run until no events are left)")
	runCmd.Flags().DurationVar(&hold, "hold", defaults.Hold, "Handshake hold duration")
	runCmd.Flags().DurationSliceVar(&jobs, "jobs", defaults.Jobs, "Comma-separated fanout job durations")
	runCmd.Flags().DurationVar(&deadline, "deadline", 0, "Fanout watchdog deadline (0 = no watchdog)")
	runCmd.Flags().StringVar(&traceLevel, "trace", defaults.Trace, "Trace level (none, actions)")
	runCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
