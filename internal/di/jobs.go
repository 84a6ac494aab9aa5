package di

import (
	"fmt"

	"github.com/aristath/trendly/internal/clientdata"
	"github.com/aristath/trendly/internal/config"
	"github.com/aristath/trendly/internal/database"
	"github.com/aristath/trendly/internal/modules/quotes"
	"github.com/aristath/trendly/internal/scheduler"
	"github.com/rs/zerolog"
)

// Fixed maintenance schedules (seconds first)
const (
	quoteCachePurgeSchedule = "0 0 * * * *"
	walCheckpointSchedule   = "0 */30 * * * *"
	databaseCheckSchedule   = "0 30 4 * * *"
)

// RegisterJobs registers all background jobs with the scheduler
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	if container == nil || container.Scheduler == nil {
		return nil, fmt.Errorf("container cannot be nil")
	}

	instances := &JobInstances{
		ClientDataCleanup: clientdata.NewCleanupJob(container.ClientDataRepo, log),
		QuoteCachePurge:   quotes.NewCachePurgeJob(container.QuoteCache, log),
		WALCheckpoint:     database.NewMaintenanceJob(container.ClientDataDB),
		DatabaseCheck:     scheduler.NewCheckDatabaseJob(container.ClientDataDB, log),
	}

	schedules := []struct {
		schedule string
		job      scheduler.Job
	}{
		{cfg.CleanupSchedule, instances.ClientDataCleanup},
		{quoteCachePurgeSchedule, instances.QuoteCachePurge},
		{walCheckpointSchedule, instances.WALCheckpoint},
		{databaseCheckSchedule, instances.DatabaseCheck},
	}

	for _, s := range schedules {
		if err := container.Scheduler.AddJob(s.schedule, s.job); err != nil {
			return nil, fmt.Errorf("failed to register job %s: %w", s.job.Name(), err)
		}
	}

	return instances, nil
}
