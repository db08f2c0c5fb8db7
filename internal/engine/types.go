package engine

// --- Tool input types ---

type KeywordSearchInput struct {
	Query    string `json:"query" jsonschema:"Search keyword"`
	Period   string `json:"period,omitempty" jsonschema:"Upload period: day, week, month, month2, month3, month6, year, all (default: all)"`
	MinViews int64  `json:"min_views,omitempty" jsonschema:"Minimum view count (default: 0)"`
	MaxSubs  int64  `json:"max_subs,omitempty" jsonschema:"Maximum channel subscriber count, 0 = unlimited"`
	SortBy   string `json:"sort_by,omitempty" jsonschema:"Sort key: viewCount (default), engagement_rate, reaction_rate, date_desc, date_asc"`
	Duration string `json:"duration,omitempty" jsonschema:"Video length: any (default), short (<60s), long"`
	APIKey   string `json:"api_key,omitempty" jsonschema:"YouTube Data API key override (default: server key)"`
}

type SimilarVideoInput struct {
	VideoURL string `json:"video_url" jsonschema:"YouTube video URL to find similar videos for (watch, shorts, youtu.be, embed)"`
	Period   string `json:"period,omitempty" jsonschema:"Upload period: day, week, month, month2, month3, month6, year, all (default: all)"`
	MinViews int64  `json:"min_views,omitempty" jsonschema:"Minimum view count (default: 0)"`
	MaxSubs  int64  `json:"max_subs,omitempty" jsonschema:"Maximum channel subscriber count, 0 = unlimited"`
	SortBy   string `json:"sort_by,omitempty" jsonschema:"Sort key: viewCount (default), engagement_rate, reaction_rate, date_desc, date_asc"`
	Duration string `json:"duration,omitempty" jsonschema:"Video length: any (default), short (<60s), long"`
	APIKey   string `json:"api_key,omitempty" jsonschema:"YouTube Data API key override (default: server key)"`
}

// --- Output types (JSON responses) ---

// ResultItem is one externally visible result row. EngagementRate and
// ReactionRate are always defined: the view-count denominator is floored
// to 1 before dividing.
type ResultItem struct {
	VideoID           string  `json:"video_id"`
	PublishedAt       string  `json:"published_at"`      // date part only
	PublishedAtFull   string  `json:"published_at_full"` // RFC 3339
	ViewCount         int64   `json:"view_count"`
	LikeCount         int64   `json:"like_count"`
	CommentCount      int64   `json:"comment_count"`
	Duration          string  `json:"duration"` // raw PTxHxMxS form
	DurationFormatted string  `json:"duration_formatted"`
	Title             string  `json:"title"`
	ChannelTitle      string  `json:"channel_title"`
	ChannelID         string  `json:"channel_id"`
	SubscriberCount   int64   `json:"subscriber_count"`
	EngagementRate    float64 `json:"engagement_rate"` // likes/views
	ReactionRate      float64 `json:"reaction_rate"`   // comments/views
	License           string  `json:"license"`
	ThumbnailURL      string  `json:"thumbnail_url"`
	SimilarityScore   int     `json:"similarity_score,omitempty"`
}

type VideoSearchOutput struct {
	Query    string       `json:"query"`
	Total    int          `json:"total"`
	Degraded bool         `json:"degraded,omitempty"` // quota ran out mid-run; results are a valid partial set
	Results  []ResultItem `json:"results"`
}

// ProgressUpdate is one entry in the ordered progress stream a run emits.
// Percent is 0-100 and non-decreasing within a run.
type ProgressUpdate struct {
	Phase   string `json:"phase"`
	Message string `json:"message"`
	Percent int    `json:"percent"`
}

// ProgressFunc receives progress updates. May be nil (no reporting).
type ProgressFunc func(ProgressUpdate)
