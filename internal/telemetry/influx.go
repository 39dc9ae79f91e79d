package telemetry

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"
)

// Measurement is the InfluxDB measurement records are written to.
const Measurement = "energy"

// InfluxConfig locates an InfluxDB v2 bucket. When the server does not
// answer and BackupPath is set, points go to a gzipped line protocol file
// instead.
type InfluxConfig struct {
	URL        string `yaml:"url"`
	Token      string `yaml:"token"`
	Org        string `yaml:"org"`
	Bucket     string `yaml:"bucket"`
	BackupPath string `yaml:"backup_path"`
}

// InfluxSink writes records as points with a non-blocking write API. Point
// timestamps are the run start plus simulation time.
type InfluxSink struct {
	client influxdb2.Client
	writer influxdb2_api.WriteAPI

	backupFile io.Closer
	backup     *gzip.Writer

	start time.Time
	log   zerolog.Logger
}

func NewInfluxSink(ctx context.Context, cfg InfluxConfig, start time.Time, log zerolog.Logger) (*InfluxSink, error) {
	if cfg.URL == "" || cfg.Bucket == "" {
		return nil, errors.New("influx: url and bucket are required")
	}

	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(500).
			SetFlushInterval(1000),
	)

	running, err := client.Ping(ctx)
	if err != nil || !running {
		client.Close()
		if cfg.BackupPath == "" {
			return nil, fmt.Errorf("influx: %s not reachable: %v", cfg.URL, err)
		}
		log.Warn().Str("backupPath", cfg.BackupPath).Msg("InfluxDB not reachable, writing to backup file")
		return newBackupSink(cfg.BackupPath, start, log)
	}

	writer := client.WriteAPI(cfg.Org, cfg.Bucket)
	go func(errorsCh <-chan error) {
		for writeErr := range errorsCh {
			log.Error().Err(writeErr).Str("bucket", cfg.Bucket).Msg("Error sending data to InfluxDB")
		}
	}(writer.Errors())

	log.Debug().Str("bucket", cfg.Bucket).Msg("InfluxDB writer initialized")
	return &InfluxSink{client: client, writer: writer, start: start, log: log}, nil
}

func newBackupSink(path string, start time.Time, log zerolog.Logger) (*InfluxSink, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("error creating backup file: %w", err)
	}
	return &InfluxSink{backupFile: file, backup: gzip.NewWriter(file), start: start, log: log}, nil
}

// Point converts r into an InfluxDB point.
func Point(r Record, start time.Time) *influxdb2_write.Point {
	ts := start.Add(time.Duration(r.SimulationTime * float64(time.Second)))
	p := influxdb2_write.NewPointWithMeasurement(Measurement).
		AddTag("run", r.RunID).
		AddTag("state", r.State).
		SetTime(ts)
	fields := r.Fields()
	delete(fields, "simulation_time")
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p.AddField(name, fields[name])
	}
	return p
}

func (s *InfluxSink) Write(r Record) error {
	p := Point(r, s.start)
	if s.writer != nil {
		s.writer.WritePoint(p)
		return nil
	}
	line := strings.TrimRight(influxdb2_write.PointToLineProtocol(p, time.Nanosecond), "\n")
	if _, err := s.backup.Write([]byte(line + "\n")); err != nil {
		return fmt.Errorf("error writing to InfluxDB backup file: %w", err)
	}
	return nil
}

// Close flushes pending points.
func (s *InfluxSink) Close() error {
	if s.writer != nil {
		s.writer.Flush()
		s.client.Close()
		return nil
	}
	return errors.Join(s.backup.Close(), s.backupFile.Close())
}
