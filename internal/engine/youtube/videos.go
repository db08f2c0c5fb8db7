package youtube

import (
	"context"
	"net/url"

	"github.com/anatolykoptev/go_tube/internal/engine"
)

// ListVideos fetches full detail records for up to 50 video ids:
// snippet, statistics, contentDetails, status, and topicDetails parts.
// Ids the API does not know are silently absent from the result.
func (c *Client) ListVideos(ctx context.Context, ids []string) ([]Video, error) {
	engine.IncrAPIVideosCalls()

	joined, err := joinIDs(ids)
	if err != nil {
		return nil, err
	}

	v := url.Values{}
	v.Set("part", "snippet,statistics,contentDetails,status,topicDetails")
	v.Set("id", joined)

	var resp videoListResponse
	if err := c.call(ctx, "videos", v, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}
