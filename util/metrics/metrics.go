// Package metrics keeps in-process counters and reports them together with
// host memory and load for the admin stats endpoint.
package metrics

import (
	"time"

	"github.com/nbazone/nbazone/logger"

	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	"go.uber.org/atomic"
)

var (
	HTTPRequestsTotal   = atomic.NewInt64(0)
	HTTPServerErrors    = atomic.NewInt64(0)
	FailedLoginAttempts = atomic.NewInt64(0)
	RateLimitHits       = atomic.NewInt64(0)
	CacheHits           = atomic.NewInt64(0)
	CacheMisses         = atomic.NewInt64(0)

	startTime = time.Now()
)

// Status is a point-in-time view of the counters and the host.
type Status struct {
	T                   time.Time `json:"time"`
	ProcessUptime       uint64    `json:"processUptime"`
	HostUptime          uint64    `json:"hostUptime"`
	HTTPRequestsTotal   int64     `json:"httpRequestsTotal"`
	HTTPServerErrors    int64     `json:"httpServerErrors"`
	FailedLoginAttempts int64     `json:"failedLoginAttempts"`
	RateLimitHits       int64     `json:"rateLimitHits"`
	CacheHits           int64     `json:"cacheHits"`
	CacheMisses         int64     `json:"cacheMisses"`
	Mem                 struct {
		Current uint64 `json:"current"`
		Total   uint64 `json:"total"`
	} `json:"mem"`
	Loads []float64 `json:"loads"`
}

// Collect reads the counters and the host figures. Host lookups that fail
// are logged and left at zero.
func Collect() *Status {
	now := time.Now()
	status := &Status{
		T:                   now,
		ProcessUptime:       uint64(now.Sub(startTime).Seconds()),
		HTTPRequestsTotal:   HTTPRequestsTotal.Load(),
		HTTPServerErrors:    HTTPServerErrors.Load(),
		FailedLoginAttempts: FailedLoginAttempts.Load(),
		RateLimitHits:       RateLimitHits.Load(),
		CacheHits:           CacheHits.Load(),
		CacheMisses:         CacheMisses.Load(),
	}

	upTime, err := host.Uptime()
	if err != nil {
		logger.Warning("get uptime failed:", err)
	} else {
		status.HostUptime = upTime
	}

	memInfo, err := mem.VirtualMemory()
	if err != nil {
		logger.Warning("get virtual memory failed:", err)
	} else {
		status.Mem.Current = memInfo.Used
		status.Mem.Total = memInfo.Total
	}

	avgState, err := load.Avg()
	if err != nil {
		logger.Warning("get load avg failed:", err)
	} else {
		status.Loads = []float64{avgState.Load1, avgState.Load5, avgState.Load15}
	}

	return status
}

// CacheHitRatio returns hits / (hits + misses), or 0 before any lookup.
func CacheHitRatio() float64 {
	hits := CacheHits.Load()
	total := hits + CacheMisses.Load()
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}
