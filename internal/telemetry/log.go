package telemetry

import "github.com/rs/zerolog"

// LogSink writes each record as one structured log line.
type LogSink struct {
	log zerolog.Logger
}

func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Write(r Record) error {
	s.log.Info().
		Str("run", r.RunID).
		Float64("simulation_time", r.SimulationTime).
		Float64("e_proc", r.EProc).
		Float64("e_comm", r.EComm).
		Float64("e_motor", r.EMotor).
		Float64("total_energy", r.TotalEnergy).
		Float64("remaining_battery_pct", r.RemainingBatteryPct).
		Str("state", r.State).
		Float64("altitude", r.Altitude).
		Msg("energy")
	return nil
}

func (s *LogSink) Close() error { return nil }
