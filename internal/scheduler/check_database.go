package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/trendly/internal/database"
	"github.com/rs/zerolog"
)

// CheckDatabaseJob verifies integrity of a SQLite database and logs its size
type CheckDatabaseJob struct {
	db  *database.DB
	log zerolog.Logger
}

// NewCheckDatabaseJob creates a new CheckDatabaseJob
func NewCheckDatabaseJob(db *database.DB, log zerolog.Logger) *CheckDatabaseJob {
	return &CheckDatabaseJob{
		db:  db,
		log: log.With().Str("job", "check_database").Logger(),
	}
}

// Name returns the job name
func (j *CheckDatabaseJob) Name() string {
	if j.db == nil {
		return "check_database"
	}
	return "check_" + j.db.Name() + "_database"
}

// Run executes the integrity check
func (j *CheckDatabaseJob) Run() error {
	if j.db == nil {
		j.log.Warn().Msg("Database not initialized, skipping")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := j.db.IntegrityCheck(ctx); err != nil {
		j.log.Error().
			Err(err).
			Str("database", j.db.Name()).
			Msg("Database integrity check failed")
		return fmt.Errorf("database %s is corrupted: %w", j.db.Name(), err)
	}

	stats, err := j.db.GetStats()
	if err != nil {
		j.log.Warn().Err(err).Str("database", j.db.Name()).Msg("Failed to read database stats")
		return nil
	}

	j.log.Debug().
		Str("database", j.db.Name()).
		Int64("size_bytes", stats.SizeBytes).
		Int64("wal_size_bytes", stats.WALSizeBytes).
		Msg("Database integrity OK")

	return nil
}
