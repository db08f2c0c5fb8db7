package discover

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/anatolykoptev/go_tube/internal/engine/youtube"
)

const detailBatchSize = 50

// enrichDetails resolves candidate IDs into full video details. IDs are
// chunked into videos.list batches and fetched by a bounded worker pool;
// each batch carries its own timeout so one stalled call cannot wedge the
// run. A failed batch only shrinks the pool, but if every batch fails
// without a quota signal the upstream is considered down and the run errors.
func (r *run) enrichDetails(ctx context.Context, ids []string) ([]youtube.Video, error) {
	batches := chunk(ids, detailBatchSize)

	var (
		mu        sync.Mutex
		out       []youtube.Video
		succeeded int
		done      int
	)
	sem := make(chan struct{}, engine.Cfg.DetailWorkers)
	var wg sync.WaitGroup

	for _, batch := range batches {
		if ctx.Err() != nil || r.quota.Load() {
			break
		}
		wg.Add(1)
		go func(batch []string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			bctx, cancel := context.WithTimeout(ctx, engine.Cfg.BatchTimeout)
			defer cancel()
			videos, err := engine.RetryAPI(bctx, engine.DefaultRetryConfig, r.client.Reconnect, r.markQuota, func() ([]youtube.Video, error) {
				return r.client.ListVideos(bctx, batch)
			})

			mu.Lock()
			done++
			n := done
			if err == nil {
				out = append(out, videos...)
				succeeded++
			}
			mu.Unlock()

			if err != nil {
				if ctx.Err() == nil {
					slog.Warn("detail batch failed", slog.String("run", r.id), slog.Any("error", err))
				}
				return
			}
			r.tracker.Step(n, len(batches), fmt.Sprintf("got details for %d videos", len(videos)))
		}(batch)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(batches) > 0 && succeeded == 0 && !r.quota.Load() {
		return nil, &engine.APIError{Kind: engine.KindTransient, Message: "all video detail batches failed"}
	}
	r.tracker.Done(fmt.Sprintf("details complete: %d videos", len(out)))
	return out, nil
}

// channelSubs resolves subscriber counts for the given channels, consulting
// the run-scoped map first, then the shared cache, then the API in batches.
// Lookup failures leave channels absent from the result, which downstream
// filtering treats as zero subscribers.
func (r *run) channelSubs(ctx context.Context, channelIDs []string) map[string]int64 {
	result := make(map[string]int64, len(channelIDs))
	var misses []string

	r.subsMu.Lock()
	for _, id := range channelIDs {
		if n, ok := r.subs[id]; ok {
			result[id] = n
			continue
		}
		misses = append(misses, id)
	}
	r.subsMu.Unlock()

	var fetch []string
	for _, id := range misses {
		if n, ok := engine.CacheGetSubscribers(ctx, id); ok {
			result[id] = n
			r.subsMu.Lock()
			r.subs[id] = n
			r.subsMu.Unlock()
			continue
		}
		fetch = append(fetch, id)
	}

	var (
		resultMu sync.Mutex
		wg       sync.WaitGroup
	)
	sem := make(chan struct{}, engine.Cfg.DetailWorkers)
	for _, batch := range chunk(fetch, detailBatchSize) {
		if ctx.Err() != nil || r.quota.Load() {
			break
		}
		wg.Add(1)
		go func(batch []string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			bctx, cancel := context.WithTimeout(ctx, engine.Cfg.BatchTimeout)
			defer cancel()
			counts, err := r.channels(bctx, batch)
			if err != nil {
				if ctx.Err() == nil {
					slog.Warn("channel stats batch failed", slog.String("run", r.id), slog.Any("error", err))
				}
				return
			}
			resultMu.Lock()
			for id, n := range counts {
				result[id] = n
			}
			resultMu.Unlock()
			r.subsMu.Lock()
			for id, n := range counts {
				r.subs[id] = n
			}
			r.subsMu.Unlock()
			for id, n := range counts {
				engine.CacheSetSubscribers(ctx, id, n)
			}
		}(batch)
	}
	wg.Wait()
	return result
}

func chunk(ids []string, size int) [][]string {
	var batches [][]string
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		batches = append(batches, ids[start:end])
	}
	return batches
}
