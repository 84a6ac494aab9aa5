package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/aristath/trendly/internal/database"
	"github.com/aristath/trendly/internal/di"
	"github.com/aristath/trendly/internal/scheduler"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemStatsResponse is the payload of GET /api/system/stats
type SystemStatsResponse struct {
	CPUPercent    float64         `json:"cpu_percent"`
	MemoryPercent float64         `json:"memory_percent"`
	Goroutines    int             `json:"goroutines"`
	UptimeSeconds int64           `json:"uptime_seconds"`
	Database      *database.Stats `json:"database,omitempty"`
}

// SystemHandlers serves process and maintenance endpoints
type SystemHandlers struct {
	log       zerolog.Logger
	db        *database.DB
	scheduler *scheduler.Scheduler
	jobs      map[string]scheduler.Job
	startedAt time.Time
}

// NewSystemHandlers creates system handlers. jobs may be nil.
func NewSystemHandlers(
	log zerolog.Logger,
	db *database.DB,
	sched *scheduler.Scheduler,
	jobs *di.JobInstances,
) *SystemHandlers {
	h := &SystemHandlers{
		log:       log.With().Str("handler", "system").Logger(),
		db:        db,
		scheduler: sched,
		jobs:      make(map[string]scheduler.Job),
		startedAt: time.Now(),
	}

	if jobs != nil {
		for _, job := range []scheduler.Job{jobs.ClientDataCleanup, jobs.QuoteCachePurge, jobs.WALCheckpoint, jobs.DatabaseCheck} {
			if job != nil {
				h.jobs[job.Name()] = job
			}
		}
	}

	return h
}

// HandleSystemStats handles GET /api/system/stats
func (h *SystemHandlers) HandleSystemStats(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.getSystemStats()

	response := SystemStatsResponse{
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		Goroutines:    runtime.NumGoroutine(),
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
	}

	if h.db != nil {
		stats, err := h.db.GetStats()
		if err != nil {
			h.log.Warn().Err(err).Msg("Failed to get database stats")
		} else {
			response.Database = stats
		}
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleDatabaseStats handles GET /api/system/database
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "database not initialized"})
		return
	}

	stats, err := h.db.GetStats()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get database stats")
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to get database stats"})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":  h.db.Name(),
		"path":  h.db.Path(),
		"stats": stats,
	})
}

// HandleJobsStatus handles GET /api/system/jobs
func (h *SystemHandlers) HandleJobsStatus(w http.ResponseWriter, r *http.Request) {
	schedules := map[string]string{}
	if h.scheduler != nil {
		schedules = h.scheduler.Jobs()
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  schedules,
		"count": len(schedules),
	})
}

// HandleTriggerJob handles POST /api/system/jobs/{job}
func (h *SystemHandlers) HandleTriggerJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "job")

	job, ok := h.jobs[name]
	if !ok {
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "Unknown job '" + name + "'"})
		return
	}

	var err error
	if h.scheduler != nil {
		err = h.scheduler.RunNow(job)
	} else {
		err = job.Run()
	}
	if err != nil {
		h.log.Error().Err(err).Str("job", name).Msg("Manual job run failed")
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"status": "success",
		"job":    name,
	})
}

// getSystemStats returns CPU and RAM usage percentages.
// CPU is sampled over 100ms so the call stays fast.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
