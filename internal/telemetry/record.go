// Package telemetry carries the periodic energy record a vehicle emits and
// the sinks that store it.
package telemetry

import (
	"time"
)

// Record is one energy log entry.
type Record struct {
	ID                  uint    `gorm:"primaryKey" json:"-"`
	RunID               string  `gorm:"index" json:"run_id"`
	SimulationTime      float64 `json:"simulation_time"`
	EProc               float64 `json:"e_proc"`
	EComm               float64 `json:"e_comm"`
	EMotor              float64 `json:"e_motor"`
	TotalEnergy         float64 `json:"total_energy"`
	RemainingBatteryPct float64 `json:"remaining_battery_pct"`
	State               string  `json:"state"`
	Altitude            float64 `json:"altitude"`
	TargetAltitude      float64 `json:"target_altitude"`

	CreatedAt time.Time `json:"-"`
}

// Fields returns the numeric part of the record keyed like the log line.
func (r Record) Fields() map[string]float64 {
	return map[string]float64{
		"e_proc":                r.EProc,
		"e_comm":                r.EComm,
		"e_motor":               r.EMotor,
		"total_energy":          r.TotalEnergy,
		"remaining_battery_pct": r.RemainingBatteryPct,
		"simulation_time":       r.SimulationTime,
		"altitude":              r.Altitude,
		"target_altitude":       r.TargetAltitude,
	}
}

// Sink receives records in emission order.
type Sink interface {
	Write(r Record) error
	Close() error
}
