package job

import (
	"github.com/nbazone/nbazone/logger"
	"github.com/nbazone/nbazone/util/common"
	"github.com/nbazone/nbazone/util/metrics"
)

// StatsLogJob writes a one-line summary of the request counters and host memory.
type StatsLogJob struct {
	lastRequests int64
}

func NewStatsLogJob() *StatsLogJob {
	return new(StatsLogJob)
}

func (j *StatsLogJob) Run() {
	defer common.Recover("stats log job")

	s := metrics.Collect()
	delta := s.HTTPRequestsTotal - j.lastRequests
	j.lastRequests = s.HTTPRequestsTotal

	logger.Infof("stats: requests=%d (+%d) 5xx=%d failedSignIns=%d rateLimited=%d cacheHitRatio=%.2f mem=%s/%s",
		s.HTTPRequestsTotal, delta, s.HTTPServerErrors, s.FailedLoginAttempts, s.RateLimitHits,
		metrics.CacheHitRatio(), common.FormatBytes(s.Mem.Current), common.FormatBytes(s.Mem.Total))
}
