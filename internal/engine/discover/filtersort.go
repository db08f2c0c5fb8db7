package discover

import (
	"sort"
	"strings"

	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/anatolykoptev/go_tube/internal/engine/youtube"
)

type filterOpts struct {
	minViews int64
	maxSubs  int64 // 0 = unlimited
	detector engine.Detector
	refLang  string
	lenient  bool

	// requested is the caller's duration bucket, effective the one actually
	// sent to search. They diverge only when the bucket was relaxed against
	// the seed; then the caller's bucket is re-applied here per candidate.
	requested engine.Bucket
	effective engine.Bucket
}

func passFilter(v *youtube.Video, subscribers int64, o filterOpts) bool {
	if v.ViewCount() < o.minViews {
		return false
	}
	if o.maxSubs > 0 && subscribers > o.maxSubs {
		return false
	}
	if !o.detector.IsSimilarLanguage(v.Snippet.Title, v.Snippet.ChannelTitle, o.refLang, o.lenient) {
		return false
	}
	if o.effective == engine.BucketAny && o.requested != engine.BucketAny {
		seconds := engine.ParseISODuration(v.ContentDetails.Duration)
		if engine.ClassifyBucket(seconds) != o.requested {
			return false
		}
	}
	return true
}

// buildItem flattens a video and its channel's subscriber count into the
// output shape. Rates divide by max(views, 1) so zero-view videos stay
// finite.
func buildItem(v *youtube.Video, subscribers int64, score int) engine.ResultItem {
	views := v.ViewCount()
	likes := v.LikeCount()
	comments := v.CommentCount()
	denom := views
	if denom < 1 {
		denom = 1
	}

	isoDuration := v.ContentDetails.Duration
	if isoDuration == "" {
		isoDuration = "PT0M0S"
	}
	seconds := engine.ParseISODuration(isoDuration)

	return engine.ResultItem{
		VideoID:           v.ID,
		PublishedAt:       strings.SplitN(v.Snippet.PublishedAt, "T", 2)[0],
		PublishedAtFull:   v.Snippet.PublishedAt,
		ViewCount:         views,
		LikeCount:         likes,
		CommentCount:      comments,
		Duration:          isoDuration,
		DurationFormatted: engine.FormatDuration(seconds),
		Title:             v.Snippet.Title,
		ChannelTitle:      v.Snippet.ChannelTitle,
		ChannelID:         v.Snippet.ChannelID,
		SubscriberCount:   subscribers,
		EngagementRate:    float64(likes) / float64(denom),
		ReactionRate:      float64(comments) / float64(denom),
		License:           v.License(),
		ThumbnailURL:      v.ThumbnailURL(),
		SimilarityScore:   score,
	}
}

// sortItems orders the final result set. All sorts are stable, so items tied
// on the key keep their pre-sort (relevance or score) order. Unknown keys
// fall back to view count.
func sortItems(items []engine.ResultItem, key SortKey) {
	switch key {
	case SortEngagement:
		sort.SliceStable(items, func(i, j int) bool { return items[i].EngagementRate > items[j].EngagementRate })
	case SortReaction:
		sort.SliceStable(items, func(i, j int) bool { return items[i].ReactionRate > items[j].ReactionRate })
	case SortDateDesc:
		sort.SliceStable(items, func(i, j int) bool { return items[i].PublishedAtFull > items[j].PublishedAtFull })
	case SortDateAsc:
		sort.SliceStable(items, func(i, j int) bool { return items[i].PublishedAtFull < items[j].PublishedAtFull })
	default:
		sort.SliceStable(items, func(i, j int) bool { return items[i].ViewCount > items[j].ViewCount })
	}
}
