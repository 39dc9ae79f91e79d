package telemetry

import (
	"database/sql"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLStore keeps records in SQLite through gorm.
type SQLStore struct {
	DB    *gorm.DB
	sqlDB *sql.DB
	log   zerolog.Logger
}

// OpenSQL opens or creates the database at path. An empty path opens a
// private in-memory database.
func OpenSQL(path string, log zerolog.Logger) (*SQLStore, error) {
	dsn := path
	if dsn == "" {
		dsn = "file::memory:"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        500,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open telemetry db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("access sql interface: %w", err)
	}
	// one connection keeps an in-memory database alive and shared
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&Record{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate telemetry db: %w", err)
	}

	if path != "" {
		log.Debug().Str("path", path).Msg("telemetry db opened")
	}
	return &SQLStore{DB: db, sqlDB: sqlDB, log: log}, nil
}

func (s *SQLStore) Write(r Record) error {
	r.ID = 0
	return s.DB.Create(&r).Error
}

// Records returns a run's records in simulation time order.
func (s *SQLStore) Records(runID string) ([]Record, error) {
	var out []Record
	err := s.DB.Where("run_id = ?", runID).Order("simulation_time").Find(&out).Error
	return out, err
}

// Runs lists run ids with at least one record.
func (s *SQLStore) Runs() ([]string, error) {
	var ids []string
	err := s.DB.Model(&Record{}).Distinct("run_id").Order("run_id").Pluck("run_id", &ids).Error
	return ids, err
}

// Latest returns the last record of a run.
func (s *SQLStore) Latest(runID string) (Record, error) {
	var r Record
	err := s.DB.Where("run_id = ?", runID).Order("simulation_time desc").First(&r).Error
	return r, err
}

func (s *SQLStore) Close() error {
	return s.sqlDB.Close()
}
