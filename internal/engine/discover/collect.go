package discover

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/anatolykoptev/go_tube/internal/engine/youtube"
	"golang.org/x/sync/errgroup"
)

// CollectPolicy selects how similar-mode strategies combine.
type CollectPolicy int

const (
	// PolicyUnionAll runs every strategy and merges the deduplicated union.
	PolicyUnionAll CollectPolicy = iota
	// PolicyFirstSuccess runs strategies in precision order and paginates
	// the first one that yields anything. Cheaper on quota, narrower pool.
	PolicyFirstSuccess
)

var periodDays = map[string]int{
	"day":    1,
	"week":   7,
	"month":  30,
	"month2": 60,
	"month3": 90,
	"month6": 180,
	"year":   365,
}

// publishedAfter converts a period label into an absolute cutoff anchored to
// the run's start time. "all" means no cutoff; unknown labels fall back to
// 60 days.
func publishedAfter(period string, now time.Time) time.Time {
	if period == "all" {
		return time.Time{}
	}
	days, ok := periodDays[period]
	if !ok {
		days = 60
	}
	return now.AddDate(0, 0, -days)
}

// adjustBucket relaxes the requested duration filter when it contradicts the
// seed: searching for long videos similar to a short (or vice versa) would
// return nothing useful, so the search side opens up to any duration and the
// requested bucket is re-applied per candidate at finalize.
func adjustBucket(seed, requested engine.Bucket) engine.Bucket {
	if seed == engine.BucketShort && requested == engine.BucketLong {
		return engine.BucketAny
	}
	if seed == engine.BucketLong && requested == engine.BucketShort {
		return engine.BucketAny
	}
	return requested
}

// candidateSet is an order-preserving deduplicated ID collection, safe for
// concurrent adds.
type candidateSet struct {
	mu   sync.Mutex
	seen map[string]bool
	ids  []string
}

func (s *candidateSet) add(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen == nil {
		s.seen = map[string]bool{}
	}
	for _, id := range ids {
		if id != "" && !s.seen[id] {
			s.seen[id] = true
			s.ids = append(s.ids, id)
		}
	}
}

func (s *candidateSet) list() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

func (s *candidateSet) exclude(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen == nil {
		s.seen = map[string]bool{}
	}
	s.seen[id] = true
}

type strategy struct {
	name   string
	params youtube.SearchParams
}

// similarStrategies builds the five-angle cascade from precise to broad:
// same channel, full title, tags, hashtags, topic. Budgets shrink as
// precision drops so broad strategies cannot flood the pool.
func similarStrategies(seed *Seed, common youtube.SearchParams) []strategy {
	withQuery := func(q string, maxResults int) youtube.SearchParams {
		p := common
		p.Query = q
		p.MaxResults = maxResults
		return p
	}

	channel := common
	channel.ChannelID = seed.ChannelID
	channel.MaxResults = 40

	tagQuery := seed.ChannelTitle
	if len(seed.Tags) > 0 {
		tagQuery = strings.Join(headN(seed.Tags, 3), " ")
	}

	hashQuery := strings.Join(headN(engine.TitleKeywords(seed.Title), 3), " ")
	if len(seed.Hashtags) > 0 {
		var parts []string
		for _, h := range headN(seed.Hashtags, 3) {
			parts = append(parts, "#"+h)
		}
		hashQuery = strings.Join(parts, " ")
	}

	topic := common
	topic.MaxResults = 15
	if len(seed.TopicIDs) > 0 {
		topic.TopicID = seed.TopicIDs[0]
	} else {
		topic.CategoryID = seed.CategoryID
	}

	return []strategy{
		{"channel", channel},
		{"title", withQuery(seed.Title, 25)},
		{"tags", withQuery(tagQuery, 20)},
		{"hashtags", withQuery(hashQuery, 15)},
		{"topic", topic},
	}
}

// collectSimilar runs every strategy and unions the results, excluding the
// seed itself. Strategies after a quota exhaustion are skipped; whatever was
// collected before it still flows downstream.
func collectSimilar(ctx context.Context, r *run, seed *Seed, common youtube.SearchParams) error {
	r.candidates.exclude(seed.ID)
	strategies := similarStrategies(seed, common)
	for i, st := range strategies {
		if err := ctx.Err(); err != nil {
			return err
		}
		if r.quota.Load() {
			break
		}
		r.tracker.Step(i, len(strategies), "collecting candidates: "+st.name)
		ids, _ := r.searchPage(ctx, st.params)
		r.candidates.add(ids...)
	}
	return nil
}

const (
	firstSuccessMaxIDs   = 200
	firstSuccessMaxPages = 3
)

// collectFirstSuccess is the legacy single-winner cascade: try strategies in
// precision order, stop at the first that returns anything, then paginate
// that winner for depth.
func collectFirstSuccess(ctx context.Context, r *run, seed *Seed, common youtube.SearchParams) error {
	r.candidates.exclude(seed.ID)

	precise := common
	precise.Query = seed.Title
	precise.CategoryID = seed.CategoryID
	precise.MaxResults = 50

	topic := common
	topic.MaxResults = 50
	if len(seed.TopicIDs) > 0 {
		topic.TopicID = seed.TopicIDs[0]
	} else {
		topic.CategoryID = seed.CategoryID
	}

	channel := common
	channel.ChannelID = seed.ChannelID
	channel.MaxResults = 50

	title := common
	title.Query = seed.Title
	title.PublishedAfter = time.Time{}
	title.MaxResults = 50

	strategies := []strategy{
		{"title+category", precise},
		{"topic", topic},
		{"channel", channel},
		{"title", title},
	}

	for i, st := range strategies {
		if err := ctx.Err(); err != nil {
			return err
		}
		if r.quota.Load() {
			return nil
		}
		r.tracker.Step(i, len(strategies), "collecting candidates: "+st.name)
		ids, next := r.searchPage(ctx, st.params)
		if len(ids) == 0 {
			continue
		}
		r.candidates.add(ids...)
		for page := 0; page < firstSuccessMaxPages && next != "" && !r.quota.Load(); page++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if len(r.candidates.list()) >= firstSuccessMaxIDs {
				break
			}
			p := st.params
			p.PageToken = next
			ids, next = r.searchPage(ctx, p)
			r.candidates.add(ids...)
		}
		return nil
	}
	return nil
}

// collectKeyword walks the result pages of one query. Page one is fetched
// synchronously; the token chain is then walked sequentially up to maxPages
// (a page must be fetched to learn the next token), and the token pages are
// re-fetched concurrently to merge their contents.
func collectKeyword(ctx context.Context, r *run, base youtube.SearchParams, maxPages int) error {
	base.Order = "relevance"
	base.MaxResults = 50

	ids, next := r.searchPage(ctx, base)
	r.candidates.add(ids...)
	r.tracker.Step(1, maxPages, fmt.Sprintf("page 1: %d videos", len(ids)))

	var tokens []string
	for token := next; token != "" && len(tokens) < maxPages-1 && !r.quota.Load(); {
		if err := ctx.Err(); err != nil {
			return err
		}
		tokens = append(tokens, token)
		p := base
		p.PageToken = token
		_, token = r.searchPage(ctx, p)
	}
	if len(tokens) == 0 || r.quota.Load() {
		return ctx.Err()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(engine.Cfg.SearchWorkers)
	for i, token := range tokens {
		g.Go(func() error {
			if r.quota.Load() {
				return nil
			}
			p := base
			p.PageToken = token
			ids, _ := r.searchPage(gctx, p)
			r.candidates.add(ids...)
			r.tracker.Step(i+2, maxPages, fmt.Sprintf("page %d: %d videos", i+2, len(ids)))
			return gctx.Err()
		})
	}
	return g.Wait()
}

func headN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
