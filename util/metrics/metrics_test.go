package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollectReportsCounters(t *testing.T) {
	before := Collect()
	HTTPRequestsTotal.Inc()
	FailedLoginAttempts.Add(2)

	after := Collect()
	assert.Equal(t, before.HTTPRequestsTotal+1, after.HTTPRequestsTotal)
	assert.Equal(t, before.FailedLoginAttempts+2, after.FailedLoginAttempts)
	assert.False(t, after.T.Before(before.T))
}

func TestCacheHitRatio(t *testing.T) {
	CacheHits.Store(0)
	CacheMisses.Store(0)
	assert.Zero(t, CacheHitRatio())

	CacheHits.Store(3)
	CacheMisses.Store(1)
	assert.InDelta(t, 0.75, CacheHitRatio(), 1e-9)
}
