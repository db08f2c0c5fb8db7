package youtube

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/anatolykoptev/go_tube/internal/engine"
)

// SearchParams describes one search().list call. Zero-valued optional fields
// are omitted from the outbound request, so the API sees only what the
// strategy set.
type SearchParams struct {
	Query             string
	ChannelID         string
	TopicID           string
	CategoryID        string
	Order             string // defaults to "relevance"
	MaxResults        int    // defaults to 50
	Duration          engine.Bucket
	PublishedAfter    time.Time
	RelevanceLanguage string
	RegionCode        string
	PageToken         string
}

func (p SearchParams) values() url.Values {
	v := url.Values{}
	v.Set("part", "snippet")
	v.Set("type", "video")

	order := p.Order
	if order == "" {
		order = "relevance"
	}
	v.Set("order", order)

	max := p.MaxResults
	if max <= 0 || max > 50 {
		max = 50
	}
	v.Set("maxResults", strconv.Itoa(max))

	if p.Query != "" {
		v.Set("q", p.Query)
	}
	if p.ChannelID != "" {
		v.Set("channelId", p.ChannelID)
	}
	if p.TopicID != "" {
		v.Set("topicId", p.TopicID)
	}
	if p.CategoryID != "" {
		v.Set("videoCategoryId", p.CategoryID)
	}
	if p.Duration == engine.BucketShort || p.Duration == engine.BucketLong {
		v.Set("videoDuration", string(p.Duration))
	}
	if !p.PublishedAfter.IsZero() {
		v.Set("publishedAfter", p.PublishedAfter.UTC().Format(time.RFC3339))
	}
	if p.RelevanceLanguage != "" {
		v.Set("relevanceLanguage", p.RelevanceLanguage)
	}
	if p.RegionCode != "" {
		v.Set("regionCode", p.RegionCode)
	}
	if p.PageToken != "" {
		v.Set("pageToken", p.PageToken)
	}
	return v
}

// Search runs one search page and returns the video ids it surfaced plus the
// next-page token ("" when the result set is exhausted).
func (c *Client) Search(ctx context.Context, p SearchParams) (ids []string, nextPage string, err error) {
	engine.IncrAPISearchCalls()

	var resp searchListResponse
	if err := c.call(ctx, "search", p.values(), &resp); err != nil {
		return nil, "", err
	}

	ids = make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.ID.VideoID != "" {
			ids = append(ids, item.ID.VideoID)
		}
	}
	return ids, resp.NextPageToken, nil
}
