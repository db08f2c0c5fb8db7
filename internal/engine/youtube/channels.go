package youtube

import (
	"context"
	"net/url"

	"github.com/anatolykoptev/go_tube/internal/engine"
)

// ListChannels fetches subscriber counts for up to 50 channel ids.
// Channels with hidden counts report 0.
func (c *Client) ListChannels(ctx context.Context, ids []string) (map[string]int64, error) {
	engine.IncrAPIChannelsCalls()

	joined, err := joinIDs(ids)
	if err != nil {
		return nil, err
	}

	v := url.Values{}
	v.Set("part", "statistics")
	v.Set("id", joined)

	var resp channelListResponse
	if err := c.call(ctx, "channels", v, &resp); err != nil {
		return nil, err
	}

	subs := make(map[string]int64, len(resp.Items))
	for _, item := range resp.Items {
		subs[item.ID] = parseCount(item.Statistics.SubscriberCount)
	}
	return subs, nil
}
