package quotes

import (
	"github.com/rs/zerolog"
)

// CachePurgeJob drops expired quote cache entries so closed-market quotes
// for tickers nobody asks about again do not linger in memory.
type CachePurgeJob struct {
	cache *Cache
	log   zerolog.Logger
}

// NewCachePurgeJob creates a new quote cache purge job
func NewCachePurgeJob(cache *Cache, log zerolog.Logger) *CachePurgeJob {
	return &CachePurgeJob{
		cache: cache,
		log:   log.With().Str("job", "quote_cache_purge").Logger(),
	}
}

// Run purges expired entries
func (j *CachePurgeJob) Run() error {
	if purged := j.cache.PurgeExpired(); purged > 0 {
		j.log.Info().Int("purged", purged).Msg("Purged expired quotes")
	}
	return nil
}

// Name returns the job name for scheduling and logging.
func (j *CachePurgeJob) Name() string {
	return "quote_cache_purge"
}
