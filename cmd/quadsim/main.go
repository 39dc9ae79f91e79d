package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/san-kum/quadsim/internal/config"
	"github.com/san-kum/quadsim/internal/input"
)

var (
	dataDir  string
	logLevel string

	configFile string
	preset     string
	dt         float64
	duration   float64
	integrator string
	source     string
	target     float64
	energyWh   float64
	database   string
	influxURL  string

	column    string
	themeName string
	top       int
	gains     []string
	metric    string
	steps     int
)

// main registers the quadsim commands and exits with status 1 when the
// command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:          "quadsim",
		Short:        "quadrotor flight controller with battery-aware safe landing",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".quadsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "fly a vehicle and store the run",
		RunE:  runFlight,
	}
	flightFlags(runCmd)
	runCmd.Flags().StringVar(&database, "db", "", "sqlite telemetry database")
	runCmd.Flags().StringVar(&influxURL, "influx-url", "", "influxdb url for telemetry")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "fly a vehicle live in the terminal",
		RunE:  runLive,
	}
	flightFlags(liveCmd)
	liveCmd.Flags().StringVar(&themeName, "theme", "night", "color theme")

	compareCmd := &cobra.Command{
		Use:   "compare [preset] [preset] ...",
		Short: "fly several presets side by side",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareFlights,
	}
	compareCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "control period in seconds")
	compareCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "flight duration in seconds")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot one column of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&column, "column", "remaining", "column to plot")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	deleteCmd := &cobra.Command{
		Use:   "delete [run_id]",
		Short: "delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  deleteRun,
	}

	recordsCmd := &cobra.Command{
		Use:   "records [run_id]",
		Short: "show telemetry records from the sqlite database",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showRecords,
	}
	recordsCmd.Flags().StringVar(&database, "db", "quadsim.db", "sqlite telemetry database")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [file]",
		Short: "write a config file for a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			return config.Save(args[0], cfg)
		},
	}
	initCmd.Flags().StringVar(&preset, "preset", "", "preset to write, defaults when empty")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&column, "column", "altitude", "column to analyze")
	analyzeCmd.Flags().IntVar(&top, "top", 5, "number of peaks to show")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search the stabilization gains",
		RunE:  tuneGains,
	}
	flightFlags(tuneCmd)
	tuneCmd.Flags().StringSliceVar(&gains, "gain", []string{"VerticalP=1:5", "RollP=30:70"}, "gain to search as name=lo:hi")
	tuneCmd.Flags().IntVar(&steps, "steps", 3, "values per gain")
	tuneCmd.Flags().StringVar(&metric, "metric", "altitude_rms", "metric to minimise")

	keysCmd := &cobra.Command{
		Use:   "keys",
		Short: "show the keyboard flight controls",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(strings.Join(input.Controls(), "\n"))
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, compareCmd, listCmd, plotCmd, exportCmd, deleteCmd, recordsCmd, presetsCmd, initCmd, analyzeCmd, tuneCmd, keysCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func flightFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "control period in seconds")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "flight duration in seconds")
	cmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator (euler, rk4)")
	cmd.Flags().StringVar(&source, "source", "hover", "input source (hover, keyboard, autopilot, plan)")
	cmd.Flags().Float64Var(&target, "target", config.DefaultTargetAltitude, "initial target altitude in metres")
	cmd.Flags().Float64Var(&energyWh, "energy-wh", 0, "battery energy in watt hours")
}

// resolveConfig starts from the preset, then the config file, then any
// flag set on the command line.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("source") {
		cfg.Source = source
	}
	if flags.Changed("target") {
		cfg.Vehicle.TargetAltitude = target
	}
	if flags.Changed("energy-wh") {
		cfg.Battery.EnergyWh = energyWh
	}
	if flags.Changed("db") {
		cfg.Telemetry.Database = database
	}
	if flags.Changed("influx-url") {
		cfg.Telemetry.Influx.URL = influxURL
	}
	return cfg, nil
}

func newLogger() (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log level: %w", err)
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}
