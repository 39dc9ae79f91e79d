package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/san-kum/quadsim/internal/storage"
	"github.com/san-kum/quadsim/internal/telemetry"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tSOURCE\tTIME\tDURATION\tDT\tBATTERY\tLANDED")

	for _, run := range runs {
		landed := "-"
		if run.LandingTriggered {
			landed = fmt.Sprintf("%.1fs", run.LandingTime)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.0fs\t%.4fs\t%.1f%%\t%s\n",
			run.ID,
			run.Preset,
			run.Source,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			100*run.Remaining,
			landed,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	values, ok := series.Column(column)
	if !ok {
		return fmt.Errorf("unknown column %q (available: %v)", column, series.Columns)
	}
	if len(values) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("source: %s\n", meta.Source)
	fmt.Printf("steps: %d\n\n", series.Len())
	graph := asciigraph.Plot(values,
		asciigraph.Height(15),
		asciigraph.Width(70),
		asciigraph.Caption(column),
	)
	fmt.Println(graph)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
}

func deleteRun(cmd *cobra.Command, args []string) error {
	if err := storage.New(dataDir).Delete(args[0]); err != nil {
		return err
	}
	fmt.Printf("deleted %s\n", args[0])
	return nil
}

func showRecords(cmd *cobra.Command, args []string) error {
	db, err := telemetry.OpenSQL(database, zerolog.Nop())
	if err != nil {
		return err
	}
	defer db.Close()

	if len(args) == 0 {
		runs, err := db.Runs()
		if err != nil {
			return err
		}
		for _, id := range runs {
			fmt.Println(id)
		}
		return nil
	}

	records, err := db.Records(args[0])
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tSTATE\tALT\tTARGET\tPROC J\tCOMM J\tMOTOR J\tTOTAL J\tBATTERY")
	for _, r := range records {
		fmt.Fprintf(w, "%.1f\t%s\t%.2f\t%.2f\t%.0f\t%.0f\t%.0f\t%.0f\t%.1f%%\n",
			r.SimulationTime, r.State, r.Altitude, r.TargetAltitude,
			r.EProc, r.EComm, r.EMotor, r.TotalEnergy, r.RemainingBatteryPct)
	}
	return w.Flush()
}
