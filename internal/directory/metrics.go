package directory

import (
	"time"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var (
	MCacheHits          = stats.Int64("directory/cache_hits", "Directory requests served from the cache", stats.UnitDimensionless)
	MCacheMisses        = stats.Int64("directory/cache_misses", "Directory requests that fell through to the upstream API", stats.UnitDimensionless)
	MCacheWriteFailures = stats.Int64("directory/cache_write_failures", "Cache population writes that failed and were ignored", stats.UnitDimensionless)
	MUpstreamFetches    = stats.Int64("directory/upstream_fetches", "Upstream directory fetches", stats.UnitDimensionless)
	MUpstreamLatencyMs  = stats.Float64("directory/upstream_latency", "Upstream directory fetch latency", stats.UnitMilliseconds)
)

// KeyOutcome tags upstream fetches with "ok" or "error".
var KeyOutcome, _ = tag.NewKey("outcome")

var (
	CacheHitsView = &view.View{
		Name:        "directory/cache_hits",
		Measure:     MCacheHits,
		Description: "Number of directory cache hits",
		Aggregation: view.Count(),
	}

	CacheMissesView = &view.View{
		Name:        "directory/cache_misses",
		Measure:     MCacheMisses,
		Description: "Number of directory cache misses",
		Aggregation: view.Count(),
	}

	CacheWriteFailuresView = &view.View{
		Name:        "directory/cache_write_failures",
		Measure:     MCacheWriteFailures,
		Description: "Number of swallowed cache write failures",
		Aggregation: view.Count(),
	}

	UpstreamFetchesView = &view.View{
		Name:        "directory/upstream_fetches",
		Measure:     MUpstreamFetches,
		Description: "Number of upstream directory fetches by outcome",
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{KeyOutcome},
	}

	UpstreamLatencyView = &view.View{
		Name:        "directory/upstream_latency",
		Measure:     MUpstreamLatencyMs,
		Description: "The distribution of upstream fetch latencies",
		Aggregation: view.Distribution(0, 25, 50, 100, 200, 400, 800, 1600, 3200, 6400),
		TagKeys:     []tag.Key{KeyOutcome},
	}
)

// Views returns every view this package records into.
func Views() []*view.View {
	return []*view.View{
		CacheHitsView,
		CacheMissesView,
		CacheWriteFailuresView,
		UpstreamFetchesView,
		UpstreamLatencyView,
	}
}

func sinceInMilliseconds(start time.Time) float64 {
	return float64(time.Since(start).Nanoseconds()) / 1e6
}
