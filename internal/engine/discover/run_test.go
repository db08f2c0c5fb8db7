package discover

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/anatolykoptev/go_tube/internal/engine/youtube"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI is a stub of the three API endpoints the pipeline calls. The
// search handler decides per-request what ids and token to return; videos
// and channels serve from fixed maps.
type fakeAPI struct {
	videos map[string]youtube.Video
	subs   map[string]int64
	search func(q map[string]string, call int) (ids []string, next string, quotaOut bool)

	channelsQuota bool

	// videosStatus decides the HTTP status of the nth /videos call;
	// nil or a 0/200 return serves from the videos map.
	videosStatus func(call int) int

	mu          sync.Mutex
	searchCalls int
	videosCalls int
}

func (f *fakeAPI) start(t *testing.T, retry engine.RetryConfig) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(srv.Close)
	engine.Init(engine.Config{
		APIKey:  "test-key",
		APIBase: srv.URL,
	})
	old := engine.DefaultRetryConfig
	engine.DefaultRetryConfig = retry
	t.Cleanup(func() { engine.DefaultRetryConfig = old })
}

func fastRetry() engine.RetryConfig {
	return engine.RetryConfig{Attempts: 2, Delays: []time.Duration{time.Millisecond}}
}

func (f *fakeAPI) handle(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.HasSuffix(r.URL.Path, "/search"):
		f.mu.Lock()
		f.searchCalls++
		call := f.searchCalls
		f.mu.Unlock()

		q := map[string]string{}
		for k, vals := range r.URL.Query() {
			q[k] = vals[0]
		}
		ids, next, quotaOut := f.search(q, call)
		if quotaOut {
			writeQuotaError(w)
			return
		}
		items := make([]map[string]any, 0, len(ids))
		for _, id := range ids {
			items = append(items, map[string]any{"id": map[string]string{"videoId": id}})
		}
		writeJSON(w, map[string]any{"nextPageToken": next, "items": items})

	case strings.HasSuffix(r.URL.Path, "/videos"):
		f.mu.Lock()
		f.videosCalls++
		call := f.videosCalls
		f.mu.Unlock()
		if f.videosStatus != nil {
			switch f.videosStatus(call) {
			case http.StatusForbidden:
				writeQuotaError(w)
				return
			case http.StatusInternalServerError:
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprint(w, `{"error":{"code":500,"message":"backend error"}}`)
				return
			}
		}
		var items []youtube.Video
		for _, id := range strings.Split(r.URL.Query().Get("id"), ",") {
			if v, ok := f.videos[id]; ok {
				items = append(items, v)
			}
		}
		writeJSON(w, map[string]any{"items": items})

	case strings.HasSuffix(r.URL.Path, "/channels"):
		if f.channelsQuota {
			writeQuotaError(w)
			return
		}
		var items []map[string]any
		for _, id := range strings.Split(r.URL.Query().Get("id"), ",") {
			if n, ok := f.subs[id]; ok {
				items = append(items, map[string]any{
					"id":         id,
					"statistics": map[string]string{"subscriberCount": fmt.Sprintf("%d", n)},
				})
			}
		}
		writeJSON(w, map[string]any{"items": items})

	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeQuotaError(w http.ResponseWriter) {
	w.WriteHeader(http.StatusForbidden)
	fmt.Fprint(w, `{"error":{"code":403,"message":"quota exceeded","errors":[{"reason":"quotaExceeded"}]}}`)
}

func detailVideo(id, channelID, title string, views int64, duration string, tags ...string) youtube.Video {
	var v youtube.Video
	v.ID = id
	v.Snippet.ChannelID = channelID
	v.Snippet.ChannelTitle = title
	v.Snippet.Title = title
	v.Snippet.PublishedAt = "2024-03-01T00:00:00Z"
	v.Snippet.Tags = tags
	v.Statistics.ViewCount = fmt.Sprintf("%d", views)
	v.ContentDetails.Duration = duration
	return v
}

func seedFixture() youtube.Video {
	v := detailVideo("seedvideo01", "ch-seed", "홈카페 라떼 만들기", 50000, "PT5M", "latte", "coffee")
	v.Snippet.DefaultAudioLanguage = "ko"
	v.Snippet.CategoryID = "26"
	v.TopicDetails.RelevantTopicIDs = []string{"/m/02wbm"}
	return v
}

func TestRunSimilarHappyPath(t *testing.T) {
	api := &fakeAPI{
		videos: map[string]youtube.Video{
			"seedvideo01": seedFixture(),
			"cand0000001": detailVideo("cand0000001", "ch-seed", "홈카페 브이로그", 90000, "PT4M", "coffee"),
			"cand0000002": detailVideo("cand0000002", "ch-other", "카페 라떼아트 배우기", 150000, "PT8M", "latte"),
			// Japanese: lenient matching only bridges Korean and English.
			"cand0000003": detailVideo("cand0000003", "ch-noise", "ゲームじっきょう まとめ", 999999, "PT10M"),
		},
		subs: map[string]int64{"ch-seed": 4000, "ch-other": 80000, "ch-noise": 500},
		search: func(q map[string]string, call int) ([]string, string, bool) {
			if q["channelId"] == "ch-seed" {
				return []string{"cand0000001", "seedvideo01"}, "", false
			}
			if strings.HasPrefix(q["q"], "홈카페") {
				return []string{"cand0000002", "cand0000003"}, "", false
			}
			return nil, "", false
		},
	}
	api.start(t, fastRetry())

	var updates []engine.ProgressUpdate
	var pmu sync.Mutex
	out, err := RunSimilar(context.Background(), Request{
		VideoURL: "https://www.youtube.com/watch?v=seedvideo01",
		Period:   "all",
	}, func(u engine.ProgressUpdate) {
		pmu.Lock()
		updates = append(updates, u)
		pmu.Unlock()
	})
	require.NoError(t, err)
	require.NotNil(t, out)

	assert.False(t, out.Degraded)
	require.Len(t, out.Results, 2, "language-matched candidates only, seed excluded")
	assert.Equal(t, out.Total, len(out.Results))

	byID := map[string]engine.ResultItem{}
	for _, item := range out.Results {
		byID[item.VideoID] = item
	}
	require.NotContains(t, byID, "seedvideo01", "seed must not rank against itself")
	require.Contains(t, byID, "cand0000001")
	require.Contains(t, byID, "cand0000002")

	// Same channel and one shared tag beats one shared tag plus a title hit.
	assert.GreaterOrEqual(t, byID["cand0000001"].SimilarityScore, 45)
	assert.Equal(t, int64(4000), byID["cand0000001"].SubscriberCount)

	// Default sort is by view count.
	assert.Equal(t, "cand0000002", out.Results[0].VideoID)

	// Progress is monotonic and finishes at 100.
	pmu.Lock()
	defer pmu.Unlock()
	require.NotEmpty(t, updates)
	last := 0
	for _, u := range updates {
		assert.GreaterOrEqual(t, u.Percent, last)
		last = u.Percent
	}
	assert.Equal(t, 100, last)
}

func TestRunSimilarQuotaDegradesChannelStats(t *testing.T) {
	api := &fakeAPI{
		videos: map[string]youtube.Video{
			"seedvideo01": seedFixture(),
			"cand0000001": detailVideo("cand0000001", "ch-seed", "홈카페 브이로그", 90000, "PT4M", "coffee"),
		},
		subs:          map[string]int64{"ch-seed": 4000},
		channelsQuota: true,
		search: func(q map[string]string, call int) ([]string, string, bool) {
			if q["channelId"] == "ch-seed" {
				return []string{"cand0000001"}, "", false
			}
			return nil, "", false
		},
	}
	api.start(t, fastRetry())

	out, err := RunSimilar(context.Background(), Request{
		VideoURL: "https://youtu.be/seedvideo01",
		Period:   "all",
	}, nil)
	require.NoError(t, err, "quota exhaustion degrades, never fails")
	require.NotNil(t, out)

	assert.True(t, out.Degraded)
	require.Len(t, out.Results, 1)
	assert.Equal(t, int64(0), out.Results[0].SubscriberCount, "unknown subscriber counts report zero")
}

func TestRunSimilarQuotaDuringCollection(t *testing.T) {
	api := &fakeAPI{
		videos: map[string]youtube.Video{"seedvideo01": seedFixture()},
		subs:   map[string]int64{},
		search: func(q map[string]string, call int) ([]string, string, bool) {
			return nil, "", true // every search is out of quota
		},
	}
	api.start(t, fastRetry())

	out, err := RunSimilar(context.Background(), Request{
		VideoURL: "https://www.youtube.com/watch?v=seedvideo01",
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.True(t, out.Degraded)
	assert.Empty(t, out.Results)
}

func TestRunSimilarRejectsBadURL(t *testing.T) {
	api := &fakeAPI{
		videos: map[string]youtube.Video{},
		search: func(q map[string]string, call int) ([]string, string, bool) { return nil, "", false },
	}
	api.start(t, fastRetry())

	_, err := RunSimilar(context.Background(), Request{VideoURL: "https://vimeo.com/12345"}, nil)
	require.Error(t, err)
	assert.Equal(t, engine.KindInvalidInput, engine.Kind(err))
}

func TestRunSimilarSeedNotFound(t *testing.T) {
	api := &fakeAPI{
		videos: map[string]youtube.Video{},
		search: func(q map[string]string, call int) ([]string, string, bool) { return nil, "", false },
	}
	api.start(t, fastRetry())

	_, err := RunSimilar(context.Background(), Request{VideoURL: "https://youtu.be/nosuchvideo"}, nil)
	require.Error(t, err)
	assert.Equal(t, engine.KindNotFound, engine.Kind(err))
}

func TestRunSimilarFirstSuccessPolicy(t *testing.T) {
	api := &fakeAPI{
		videos: map[string]youtube.Video{
			"seedvideo01": seedFixture(),
			"cand0000001": detailVideo("cand0000001", "ch-a", "홈카페 영상 하나", 1000, "PT4M"),
			"cand0000002": detailVideo("cand0000002", "ch-a", "홈카페 영상 둘", 2000, "PT4M"),
		},
		subs: map[string]int64{"ch-a": 10},
		search: func(q map[string]string, call int) ([]string, string, bool) {
			// Only the precise title+category strategy yields anything.
			if q["videoCategoryId"] == "26" && q["q"] != "" {
				if q["pageToken"] == "N2" {
					return []string{"cand0000002"}, "", false
				}
				return []string{"cand0000001"}, "N2", false
			}
			return nil, "", false
		},
	}
	api.start(t, fastRetry())

	out, err := RunSimilar(context.Background(), Request{
		VideoURL: "https://www.youtube.com/watch?v=seedvideo01",
		Period:   "all",
		Policy:   PolicyFirstSuccess,
	}, nil)
	require.NoError(t, err)
	require.Len(t, out.Results, 2, "winner strategy paginated, no fallthrough")

	// One strategy call plus one pagination call; remaining strategies
	// never run once a winner is found.
	api.mu.Lock()
	assert.Equal(t, 2, api.searchCalls)
	api.mu.Unlock()
}

func TestRunKeywordPagination(t *testing.T) {
	videos := map[string]youtube.Video{}
	subs := map[string]int64{}
	page1 := make([]string, 3)
	page2 := make([]string, 3)
	for i := range page1 {
		id := fmt.Sprintf("page1vid%03d", i)
		page1[i] = id
		videos[id] = detailVideo(id, "ch-a", fmt.Sprintf("서울 맛집 %d", i), int64(1000*(i+1)), "PT3M")
	}
	for i := range page2 {
		id := fmt.Sprintf("page2vid%03d", i)
		page2[i] = id
		videos[id] = detailVideo(id, "ch-b", fmt.Sprintf("부산 맛집 %d", i), int64(5000*(i+1)), "PT3M")
	}
	subs["ch-a"] = 100
	subs["ch-b"] = 200

	api := &fakeAPI{
		videos: videos,
		subs:   subs,
		search: func(q map[string]string, call int) ([]string, string, bool) {
			switch q["pageToken"] {
			case "":
				return page1, "TOK2", false
			case "TOK2":
				return page2, "", false
			}
			return nil, "", false
		},
	}
	api.start(t, fastRetry())

	out, err := RunKeyword(context.Background(), Request{
		Query:  "맛집",
		Period: "all",
		SortBy: SortViewCount,
	}, nil)
	require.NoError(t, err)

	assert.False(t, out.Degraded)
	require.Len(t, out.Results, 6, "both pages merged and deduplicated")
	assert.Equal(t, "page2vid002", out.Results[0].VideoID, "local sort overrides page order")

	// Page two is fetched twice: once walking the token chain, once merging.
	api.mu.Lock()
	assert.Equal(t, 3, api.searchCalls)
	api.mu.Unlock()
}

func TestRunKeywordStrictLanguageFilter(t *testing.T) {
	api := &fakeAPI{
		videos: map[string]youtube.Video{
			"koreanvid01": detailVideo("koreanvid01", "ch-a", "서울 여행 브이로그", 1000, "PT3M"),
			"englishvid1": detailVideo("englishvid1", "ch-b", "Seoul Travel Vlog", 2000, "PT3M"),
		},
		subs: map[string]int64{"ch-a": 10, "ch-b": 10},
		search: func(q map[string]string, call int) ([]string, string, bool) {
			return []string{"koreanvid01", "englishvid1"}, "", false
		},
	}
	api.start(t, fastRetry())

	out, err := RunKeyword(context.Background(), Request{Query: "여행", Period: "all"}, nil)
	require.NoError(t, err)
	require.Len(t, out.Results, 1, "keyword mode filters language strictly")
	assert.Equal(t, "koreanvid01", out.Results[0].VideoID)
}

func TestRunKeywordFilters(t *testing.T) {
	api := &fakeAPI{
		videos: map[string]youtube.Video{
			"bigviewsvid": detailVideo("bigviewsvid", "ch-small", "맛집 투어 1", 120000, "PT3M"),
			"bigchannel1": detailVideo("bigchannel1", "ch-big", "맛집 투어 2", 80000, "PT3M"),
			"smallviews1": detailVideo("smallviews1", "ch-small", "맛집 투어 3", 49000, "PT3M"),
		},
		subs: map[string]int64{"ch-small": 5000, "ch-big": 2000000},
		search: func(q map[string]string, call int) ([]string, string, bool) {
			return []string{"bigviewsvid", "bigchannel1", "smallviews1"}, "", false
		},
	}
	api.start(t, fastRetry())

	out, err := RunKeyword(context.Background(), Request{
		Query:    "맛집",
		Period:   "all",
		MinViews: 50000,
		MaxSubs:  100000,
	}, nil)
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "bigviewsvid", out.Results[0].VideoID)
}

func TestRunKeywordQuotaMidEnrichment(t *testing.T) {
	// 100 candidates across two pages make two detail batches of 50; the
	// second /videos call runs out of quota. The run must complete degraded
	// with exactly the succeeded batch's videos.
	videos := map[string]youtube.Video{}
	pageA := make([]string, 50)
	pageB := make([]string, 50)
	for i := range pageA {
		id := fmt.Sprintf("pageAvid%03d", i)
		pageA[i] = id
		videos[id] = detailVideo(id, "ch-a", fmt.Sprintf("맛집 영상 %d", i), int64(100+i), "PT3M")
	}
	for i := range pageB {
		id := fmt.Sprintf("pageBvid%03d", i)
		pageB[i] = id
		videos[id] = detailVideo(id, "ch-b", fmt.Sprintf("카페 영상 %d", i), int64(500+i), "PT3M")
	}

	api := &fakeAPI{
		videos: videos,
		subs:   map[string]int64{"ch-a": 10, "ch-b": 10},
		search: func(q map[string]string, call int) ([]string, string, bool) {
			if q["pageToken"] == "TOK2" {
				return pageB, "", false
			}
			return pageA, "TOK2", false
		},
		videosStatus: func(call int) int {
			if call > 1 {
				return http.StatusForbidden
			}
			return http.StatusOK
		},
	}
	api.start(t, fastRetry())

	out, err := RunKeyword(context.Background(), Request{Query: "맛집", Period: "all"}, nil)
	require.NoError(t, err, "quota mid-enrichment degrades, never fails")
	require.NotNil(t, out)
	assert.True(t, out.Degraded)
	assert.Len(t, out.Results, 50, "only the succeeded batch's videos survive")
}

func TestRunKeywordAllDetailBatchesFail(t *testing.T) {
	api := &fakeAPI{
		videos: map[string]youtube.Video{},
		subs:   map[string]int64{},
		search: func(q map[string]string, call int) ([]string, string, bool) {
			return []string{"cand0000001", "cand0000002"}, "", false
		},
		videosStatus: func(call int) int { return http.StatusInternalServerError },
	}
	api.start(t, fastRetry())

	_, err := RunKeyword(context.Background(), Request{Query: "맛집", Period: "all"}, nil)
	require.Error(t, err, "no details and no quota signal means the upstream is down")
	assert.Equal(t, engine.KindTransient, engine.Kind(err))
}

func TestRunKeywordCancelled(t *testing.T) {
	api := &fakeAPI{
		videos: map[string]youtube.Video{},
		search: func(q map[string]string, call int) ([]string, string, bool) { return nil, "", false },
	}
	api.start(t, fastRetry())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RunKeyword(ctx, Request{Query: "x"}, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunKeywordRequiresQuery(t *testing.T) {
	_, err := RunKeyword(context.Background(), Request{}, nil)
	require.Error(t, err)
	assert.Equal(t, engine.KindInvalidInput, engine.Kind(err))
}
