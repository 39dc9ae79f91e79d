package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/san-kum/quadsim/internal/config"
	"github.com/san-kum/quadsim/internal/host"
	"github.com/san-kum/quadsim/internal/metrics"
	"github.com/san-kum/quadsim/internal/storage"
	"github.com/san-kum/quadsim/internal/telemetry"
	"github.com/san-kum/quadsim/internal/viz"
)

func runFlight(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	runID := uuid.NewString()[:8]
	start := time.Now()
	log = log.With().Str("run", runID).Logger()

	sinks, err := openSinks(ctx, cfg.Telemetry, start, log)
	if err != nil {
		return err
	}
	defer closeSinks(sinks, log)

	f, err := cfg.Build(runID, log, sinks...)
	if err != nil {
		return err
	}
	k := cfg.Vehicle.Constants
	for _, m := range metrics.Default(k.VerticalThrust, k.VerticalOffset) {
		f.Host.AddMetric(m)
	}

	fmt.Printf("flying %s (%s input)...\n", nameOf(), cfg.Source)
	result, err := f.Host.Run(ctx, f.Vehicle, cfg.RunConfig(true))
	if result == nil {
		return err
	}
	if err != nil {
		log.Warn().Err(err).Msg("run interrupted")
	}
	elapsed := time.Since(start)

	meta := storage.RunMetadata{
		ID:               runID,
		Preset:           preset,
		Source:           cfg.Source,
		Timestamp:        start,
		Dt:               cfg.Dt,
		Duration:         cfg.Duration,
		Integrator:       cfg.Integrator,
		Steps:            result.StepsTaken,
		LandingTriggered: result.LandingTriggered,
		LandingTime:      result.LandingTime,
		Touchdown:        result.Touchdown,
		Remaining:        result.Remaining,
		Metrics:          result.Metrics,
	}
	if err := st.Save(meta, result.Frames); err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("battery: %.1f%%\n", 100*result.Remaining)
	if result.LandingTriggered {
		fmt.Printf("safe landing at %.2fs", result.LandingTime)
		if result.Touchdown {
			fmt.Print(", touched down")
		}
		fmt.Println()
	}
	for _, e := range result.Errors {
		fmt.Printf("error: %v\n", e)
	}
	printMetrics(result.Metrics)
	return nil
}

func openSinks(ctx context.Context, cfg config.TelemetryConfig, start time.Time, log zerolog.Logger) ([]telemetry.Sink, error) {
	var sinks []telemetry.Sink
	if cfg.Database != "" {
		db, err := telemetry.OpenSQL(cfg.Database, log)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, db)
	}
	if cfg.Influx.URL != "" {
		influx, err := telemetry.NewInfluxSink(ctx, cfg.Influx, start, log)
		if err != nil {
			closeSinks(sinks, log)
			return nil, err
		}
		sinks = append(sinks, influx)
	}
	return sinks, nil
}

func closeSinks(sinks []telemetry.Sink, log zerolog.Logger) {
	for _, s := range sinks {
		if err := s.Close(); err != nil {
			log.Error().Err(err).Msg("closing telemetry sink")
		}
	}
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func nameOf() string {
	if preset != "" {
		return preset
	}
	if configFile != "" {
		return configFile
	}
	return "default"
}

// runLive flies in the terminal. The log is silenced so it cannot tear the
// screen.
func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	f, err := cfg.Build(uuid.NewString()[:8], zerolog.Nop())
	if err != nil {
		return err
	}
	model := viz.NewModel(f, viz.Options{
		Title:    nameOf(),
		Dt:       cfg.Dt,
		WarmUp:   cfg.WarmUp,
		Duration: cfg.Duration,
		Theme:    themeName,
	})
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

func compareFlights(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	cfgs := make([]*config.Config, len(args))
	for i, name := range args {
		cfgs[i] = config.GetPreset(name)
		if cfgs[i] == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
		}
	}

	batch := host.NewBatch(len(cfgs), func(i int) (host.Flight, error) {
		f, err := cfgs[i].Build(args[i], log.With().Str("preset", args[i]).Logger())
		if err != nil {
			return f, err
		}
		k := cfgs[i].Vehicle.Constants
		for _, m := range metrics.Default(k.VerticalThrust, k.VerticalOffset) {
			f.Host.AddMetric(m)
		}
		return f, nil
	})

	run := host.DefaultRunConfig()
	run.Dt, run.Duration, run.KeepFrames = dt, duration, false
	results, err := batch.Run(cmd.Context(), run)
	if err != nil {
		log.Error().Err(err).Msg("some flights failed")
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tSTEPS\tBATTERY\tLANDED\tENERGY\tPOWER\tALT RMS")
	for i, res := range results {
		if res == nil {
			fmt.Fprintf(w, "%s\tfailed\t\t\t\t\t\n", args[i])
			continue
		}
		landed := "-"
		if res.LandingTriggered {
			landed = fmt.Sprintf("%.1fs", res.LandingTime)
		}
		fmt.Fprintf(w, "%s\t%d\t%.1f%%\t%s\t%.1f kJ\t%.1f W\t%.3f\n",
			args[i],
			res.StepsTaken,
			100*res.Remaining,
			landed,
			res.Metrics["energy_used"]/1000,
			res.Metrics["mean_power"],
			res.Metrics["altitude_rms"],
		)
	}
	return w.Flush()
}
