package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	KeywordRuns      atomic.Int64
	SimilarRuns      atomic.Int64
	APISearchCalls   atomic.Int64
	APIVideosCalls   atomic.Int64
	APIChannelsCalls atomic.Int64
	APIRetries       atomic.Int64
	QuotaExhaustions atomic.Int64
	CancelledRuns    atomic.Int64
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"keyword_runs":       metrics.KeywordRuns.Load(),
		"similar_runs":       metrics.SimilarRuns.Load(),
		"api_search_calls":   metrics.APISearchCalls.Load(),
		"api_videos_calls":   metrics.APIVideosCalls.Load(),
		"api_channels_calls": metrics.APIChannelsCalls.Load(),
		"api_retries":        metrics.APIRetries.Load(),
		"quota_exhaustions":  metrics.QuotaExhaustions.Load(),
		"cancelled_runs":     metrics.CancelledRuns.Load(),
		"cache_hits":         hits,
		"cache_misses":       misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"keyword_runs", "similar_runs",
		"api_search_calls", "api_videos_calls", "api_channels_calls",
		"api_retries", "quota_exhaustions", "cancelled_runs",
		"cache_hits", "cache_misses",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for the discover and youtube sub-packages.
func IncrKeywordRuns()      { metrics.KeywordRuns.Add(1) }
func IncrSimilarRuns()      { metrics.SimilarRuns.Add(1) }
func IncrAPISearchCalls()   { metrics.APISearchCalls.Add(1) }
func IncrAPIVideosCalls()   { metrics.APIVideosCalls.Add(1) }
func IncrAPIChannelsCalls() { metrics.APIChannelsCalls.Add(1) }
func IncrAPIRetries()       { metrics.APIRetries.Add(1) }
func IncrQuotaExhaustions() { metrics.QuotaExhaustions.Add(1) }
func IncrCancelledRuns()    { metrics.CancelledRuns.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
