package nvdb

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBasicMetricsCollector(t *testing.T) {
	mc := &BasicMetricsCollector{}
	assert.Equal(t, BasicMetricsStats{}, mc.GetStats())

	boom := errors.New("boom")
	mc.RecordInsert(10*time.Nanosecond, nil)
	mc.RecordInsert(30*time.Nanosecond, boom)
	mc.RecordSearch(5, 8*time.Nanosecond, nil)
	mc.RecordFlush(7, time.Millisecond, nil)
	mc.RecordFlush(3, time.Millisecond, boom)

	stats := mc.GetStats()
	assert.Equal(t, int64(2), stats.InsertCount)
	assert.Equal(t, int64(1), stats.InsertErrors)
	assert.Equal(t, int64(20), stats.InsertAvgNanos)
	assert.Equal(t, int64(1), stats.SearchCount)
	assert.Equal(t, int64(8), stats.SearchAvgNanos)
	assert.Equal(t, int64(2), stats.FlushCount)
	assert.Equal(t, int64(1), stats.FlushErrors)
	assert.Equal(t, int64(7), stats.FlushedRows)
}

func TestNoopMetricsCollector(t *testing.T) {
	var mc MetricsCollector = NoopMetricsCollector{}
	mc.RecordInsert(time.Second, nil)
	mc.RecordSearch(1, time.Second, nil)
	mc.RecordFlush(1, time.Second, nil)
}
