// Package discover implements the related-video discovery pipeline: seed
// resolution, cascaded candidate collection, batched enrichment, relevance
// scoring, and deterministic filtering/sorting. A run either finishes with a
// (possibly degraded) result set or a classified error; quota exhaustion
// mid-run shrinks the result instead of failing it.
package discover

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/anatolykoptev/go_tube/internal/engine/youtube"
	"github.com/google/uuid"
)

// SortKey selects the final ordering of the result set. The upstream API is
// always queried with order=relevance; the local sort is authoritative
// because per-page API ordering does not compose across merged pages.
type SortKey string

const (
	SortViewCount  SortKey = "viewCount"
	SortEngagement SortKey = "engagement_rate"
	SortReaction   SortKey = "reaction_rate"
	SortDateDesc   SortKey = "date_desc"
	SortDateAsc    SortKey = "date_asc"
)

// Request configures one discovery run.
type Request struct {
	Query    string // keyword mode
	VideoURL string // similar-video mode
	Period   string // day, week, month, month2, month3, month6, year, all
	MinViews int64
	MaxSubs  int64 // 0 = unlimited
	SortBy   SortKey
	Duration engine.Bucket
	APIKey   string        // override; empty uses the configured server key
	Policy   CollectPolicy // similar mode only
}

// run is the per-run context: identity, captured start time, the quota flag,
// and the only two pieces of mutable shared state (candidate set and
// channel-stats cache). Both are append-only for the run's lifetime.
type run struct {
	id      string
	started time.Time
	client  *youtube.Client
	tracker *engine.Tracker
	quota   atomic.Bool

	candidates candidateSet

	subsMu sync.Mutex
	subs   map[string]int64
}

func newRun(apiKey string, progress engine.ProgressFunc) *run {
	return &run{
		id:      uuid.NewString(),
		started: time.Now().UTC(),
		client:  youtube.New(apiKey),
		tracker: engine.NewTracker(progress),
		subs:    map[string]int64{},
	}
}

func (r *run) markQuota() {
	if !r.quota.Swap(true) {
		engine.IncrQuotaExhaustions()
		slog.Warn("quota exhausted, degrading run", slog.String("run", r.id))
	}
}

// searchPage runs one retried search call, degrading to an empty page on
// failure. Candidate collection never fails a run outright; an empty page
// just shrinks the pool.
func (r *run) searchPage(ctx context.Context, p youtube.SearchParams) (ids []string, next string) {
	type page struct {
		ids  []string
		next string
	}
	res, err := engine.RetryAPI(ctx, engine.DefaultRetryConfig, r.client.Reconnect, r.markQuota, func() (page, error) {
		ids, next, err := r.client.Search(ctx, p)
		return page{ids, next}, err
	})
	if err != nil {
		if ctx.Err() == nil {
			slog.Warn("search page failed", slog.String("run", r.id), slog.Any("error", err))
		}
		return nil, ""
	}
	return res.ids, res.next
}

// videos runs one retried videos().list call. Errors propagate so the call
// site can decide whether they are fatal (seed resolution) or merely shrink
// the pool (detail batches).
func (r *run) videos(ctx context.Context, ids []string) ([]youtube.Video, error) {
	return engine.RetryAPI(ctx, engine.DefaultRetryConfig, r.client.Reconnect, r.markQuota, func() ([]youtube.Video, error) {
		return r.client.ListVideos(ctx, ids)
	})
}

// channels runs one retried channels().list call.
func (r *run) channels(ctx context.Context, ids []string) (map[string]int64, error) {
	return engine.RetryAPI(ctx, engine.DefaultRetryConfig, r.client.Reconnect, r.markQuota, func() (map[string]int64, error) {
		return r.client.ListChannels(ctx, ids)
	})
}

func (r *run) finish(query string, items []engine.ResultItem) *engine.VideoSearchOutput {
	if items == nil {
		items = []engine.ResultItem{}
	}
	return &engine.VideoSearchOutput{
		Query:    query,
		Total:    len(items),
		Degraded: r.quota.Load(),
		Results:  items,
	}
}

func runErr(r *run, err error) error {
	if ctxErr := contextCause(err); ctxErr != nil {
		engine.IncrCancelledRuns()
		slog.Info("run cancelled", slog.String("run", r.id))
		return ctxErr
	}
	return err
}

func contextCause(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

// RunKeyword executes a flat keyword search: paged candidate collection,
// batched enrichment, strict-language filtering, and the local sort.
func RunKeyword(ctx context.Context, req Request, progress engine.ProgressFunc) (*engine.VideoSearchOutput, error) {
	if req.Query == "" {
		return nil, engine.InputError("search query is required")
	}
	if req.APIKey == "" && engine.Cfg.APIKey == "" {
		return nil, engine.InputError("api key is required")
	}
	if req.Duration == "" {
		req.Duration = engine.BucketAny
	}
	engine.IncrKeywordRuns()

	r := newRun(req.APIKey, progress)
	slog.Info("keyword run started", slog.String("run", r.id), slog.String("query", req.Query))

	after := publishedAfter(req.Period, r.started)
	base := youtube.SearchParams{
		Query:             req.Query,
		Duration:          req.Duration,
		PublishedAfter:    after,
		RelevanceLanguage: "ko",
		RegionCode:        "KR",
	}

	r.tracker.Phase("search", 40)
	r.tracker.Step(0, 1, "searching videos")
	if err := collectKeyword(ctx, r, base, engine.Cfg.MaxSearchPages); err != nil {
		return nil, runErr(r, err)
	}
	ids := r.candidates.list()
	r.tracker.Done("search complete")
	if len(ids) == 0 {
		return r.finish(req.Query, nil), nil
	}

	r.tracker.Phase("details", 40)
	details, err := r.enrichDetails(ctx, ids)
	if err != nil {
		return nil, runErr(r, err)
	}

	r.tracker.Phase("finalize", 20)
	subs := r.channelSubs(ctx, channelIDs(details))
	if err := ctx.Err(); err != nil {
		return nil, runErr(r, err)
	}

	opts := filterOpts{
		minViews:  req.MinViews,
		maxSubs:   req.MaxSubs,
		detector:  engine.KeywordDetector,
		refLang:   "ko",
		lenient:   false,
		requested: req.Duration,
		effective: req.Duration,
	}
	var items []engine.ResultItem
	for i := range details {
		v := &details[i]
		if !passFilter(v, subs[v.Snippet.ChannelID], opts) {
			continue
		}
		items = append(items, buildItem(v, subs[v.Snippet.ChannelID], 0))
	}
	sortItems(items, req.SortBy)
	r.tracker.Done("done")

	slog.Info("keyword run finished",
		slog.String("run", r.id),
		slog.Int("candidates", len(ids)),
		slog.Int("results", len(items)),
		slog.Bool("degraded", r.quota.Load()),
	)
	return r.finish(req.Query, items), nil
}

// RunSimilar executes the similar-video pipeline: seed resolution, the
// strategy cascade, batched enrichment, relevance scoring with top-50
// truncation, lenient-language filtering, and the local sort. Progress is
// weighted 10/30/40/20 across the four stages.
func RunSimilar(ctx context.Context, req Request, progress engine.ProgressFunc) (*engine.VideoSearchOutput, error) {
	if req.VideoURL == "" {
		return nil, engine.InputError("video url is required")
	}
	if req.APIKey == "" && engine.Cfg.APIKey == "" {
		return nil, engine.InputError("api key is required")
	}
	if req.Duration == "" {
		req.Duration = engine.BucketAny
	}
	engine.IncrSimilarRuns()

	r := newRun(req.APIKey, progress)
	slog.Info("similar run started", slog.String("run", r.id), slog.String("url", req.VideoURL))

	r.tracker.Phase("initial", 10)
	r.tracker.Step(0, 1, "analyzing seed video")
	seed, err := r.resolveSeed(ctx, req.VideoURL)
	if err != nil {
		return nil, runErr(r, err)
	}
	effective := adjustBucket(seed.Bucket, req.Duration)
	r.tracker.Done("seed resolved: " + engine.TruncateRunes(seed.Title, 60, "..."))

	r.tracker.Phase("collect", 30)
	common := youtube.SearchParams{
		Duration:          effective,
		PublishedAfter:    publishedAfter(req.Period, r.started),
		RelevanceLanguage: seed.LanguageCode,
		RegionCode:        seed.RegionCode,
	}
	if req.Policy == PolicyFirstSuccess {
		err = collectFirstSuccess(ctx, r, seed, common)
	} else {
		err = collectSimilar(ctx, r, seed, common)
	}
	if err != nil {
		return nil, runErr(r, err)
	}
	ids := r.candidates.list()
	r.tracker.Done("candidates collected")
	if len(ids) == 0 {
		return r.finish(req.VideoURL, nil), nil
	}

	r.tracker.Phase("details", 40)
	details, err := r.enrichDetails(ctx, ids)
	if err != nil {
		return nil, runErr(r, err)
	}

	r.tracker.Phase("finalize", 20)
	ranked := scoreCandidates(seed, details)
	if len(ranked) > maxScored {
		ranked = ranked[:maxScored]
	}

	top := make([]youtube.Video, len(ranked))
	for i, s := range ranked {
		top[i] = s.video
	}
	subs := r.channelSubs(ctx, channelIDs(top))

	opts := filterOpts{
		minViews:  req.MinViews,
		maxSubs:   req.MaxSubs,
		detector:  engine.SimilarDetector,
		refLang:   seed.Language,
		lenient:   true,
		requested: req.Duration,
		effective: effective,
	}
	var items []engine.ResultItem
	for i := range ranked {
		if err := ctx.Err(); err != nil {
			return nil, runErr(r, err)
		}
		r.tracker.Step(i+1, len(ranked), "applying final filters")
		v := &ranked[i].video
		if !passFilter(v, subs[v.Snippet.ChannelID], opts) {
			continue
		}
		items = append(items, buildItem(v, subs[v.Snippet.ChannelID], ranked[i].score))
	}
	sortItems(items, req.SortBy)
	r.tracker.Done("done")

	slog.Info("similar run finished",
		slog.String("run", r.id),
		slog.String("seed", seed.ID),
		slog.Int("candidates", len(ids)),
		slog.Int("results", len(items)),
		slog.Bool("degraded", r.quota.Load()),
	)
	return r.finish(req.VideoURL, items), nil
}

func channelIDs(videos []youtube.Video) []string {
	seen := make(map[string]bool, len(videos))
	var ids []string
	for i := range videos {
		id := videos[i].Snippet.ChannelID
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}
