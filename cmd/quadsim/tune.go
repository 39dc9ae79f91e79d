package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/san-kum/quadsim/internal/analysis"
	"github.com/san-kum/quadsim/internal/host"
	"github.com/san-kum/quadsim/internal/metrics"
	"github.com/san-kum/quadsim/internal/optim"
	"github.com/san-kum/quadsim/internal/storage"
)

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	values, ok := series.Column(column)
	if !ok {
		return fmt.Errorf("unknown column %q (available: %v)", column, series.Columns)
	}

	bins, err := analysis.Spectrum(values, meta.Dt)
	if err != nil {
		return err
	}
	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("column: %s (%d samples at %.4fs)\n\n", column, len(values), meta.Dt)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FREQ (Hz)\tPERIOD (s)\tAMPLITUDE")
	for _, b := range analysis.Peaks(bins, top) {
		fmt.Fprintf(w, "%.3f\t%.2f\t%.4f\n", b.Frequency, 1/b.Frequency, b.Amplitude)
	}
	return w.Flush()
}

func tuneGains(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(gains))
	ranges := make([][]float64, 0, len(gains))
	for _, g := range gains {
		name, lo, hi, err := parseGain(g)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, optim.Linspace(lo, hi, steps))
	}
	search, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	build := func() (host.Flight, error) {
		f, err := cfg.Build("tune", log.Level(zerolog.WarnLevel))
		if err != nil {
			return f, err
		}
		k := cfg.Vehicle.Constants
		for _, m := range metrics.Default(k.VerticalThrust, k.VerticalOffset) {
			f.Host.AddMetric(m)
		}
		return f, nil
	}

	best, trials, err := search.Search(cmd.Context(), build, cfg.RunConfig(false), metric)
	if err != nil {
		return err
	}

	sort.Slice(trials, func(i, j int) bool {
		if (trials[i].Err == nil) != (trials[j].Err == nil) {
			return trials[i].Err == nil
		}
		return trials[i].Value < trials[j].Value
	})
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", strings.Join(names, "\t"), strings.ToUpper(metric))
	for _, t := range trials {
		cols := make([]string, len(names))
		for i, n := range names {
			cols[i] = strconv.FormatFloat(t.Params[n], 'f', 2, 64)
		}
		score := strconv.FormatFloat(t.Value, 'f', 4, 64)
		if t.Err != nil {
			score = t.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%s\n", strings.Join(cols, "\t"), score)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nbest %s: %.4f with %v\n", metric, best.Value, best.Params)
	return nil
}

// parseGain reads name=lo:hi.
func parseGain(s string) (string, float64, float64, error) {
	name, span, ok := strings.Cut(s, "=")
	if !ok {
		return "", 0, 0, fmt.Errorf("gain %q: want name=lo:hi", s)
	}
	loStr, hiStr, ok := strings.Cut(span, ":")
	if !ok {
		hiStr = loStr
	}
	lo, err := strconv.ParseFloat(loStr, 64)
	if err != nil {
		return "", 0, 0, fmt.Errorf("gain %q: %w", s, err)
	}
	hi, err := strconv.ParseFloat(hiStr, 64)
	if err != nil {
		return "", 0, 0, fmt.Errorf("gain %q: %w", s, err)
	}
	return name, lo, hi, nil
}
