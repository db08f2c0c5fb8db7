// Package tubeserver exposes the discovery engine as MCP tools:
// keyword_search and similar_video_search.
package tubeserver

import (
	"context"
	"log/slog"

	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/anatolykoptev/go_tube/internal/engine/discover"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterTools registers all video discovery tools on the given MCP server.
func RegisterTools(server *mcp.Server) {
	registerKeywordSearch(server)
	registerSimilarVideoSearch(server)
}

// logProgress bridges engine progress updates into the structured log so
// long runs stay observable from the server side.
func logProgress(tool string) engine.ProgressFunc {
	return func(u engine.ProgressUpdate) {
		slog.Debug("progress",
			slog.String("tool", tool),
			slog.String("phase", u.Phase),
			slog.Int("percent", u.Percent),
			slog.String("message", u.Message),
		)
	}
}

func registerKeywordSearch(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "keyword_search",
		Description: "Search YouTube videos by keyword with period, view-count, subscriber-count, and duration filters. Returns structured JSON per video (title, channel, views, likes, comments, engagement rate, duration, thumbnail). Results are merged across result pages and locally sorted.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.KeywordSearchInput) (*mcp.CallToolResult, engine.VideoSearchOutput, error) {
		if input.Query == "" {
			return nil, engine.VideoSearchOutput{}, engine.InputError("query is required")
		}

		cacheKey := engine.CacheKey("keyword_search", input.Query, input.Period, input.MinViews, input.MaxSubs, input.SortBy, input.Duration, input.APIKey)
		if out, ok := engine.CacheLoadJSON[engine.VideoSearchOutput](ctx, cacheKey); ok {
			return nil, out, nil
		}

		out, err := discover.RunKeyword(ctx, discover.Request{
			Query:    input.Query,
			Period:   input.Period,
			MinViews: input.MinViews,
			MaxSubs:  input.MaxSubs,
			SortBy:   discover.SortKey(input.SortBy),
			Duration: engine.Bucket(input.Duration),
			APIKey:   input.APIKey,
		}, logProgress("keyword_search"))
		if err != nil {
			return nil, engine.VideoSearchOutput{}, err
		}

		// Degraded runs are partial snapshots; caching them would pin the
		// gap until the entry expires.
		if !out.Degraded {
			engine.CacheStoreJSON(ctx, cacheKey, *out)
		}
		return nil, *out, nil
	})
}

func registerSimilarVideoSearch(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "similar_video_search",
		Description: "Find videos similar to a given YouTube video URL. Resolves the video, collects candidates via channel, title, tag, hashtag, and topic searches, scores them by similarity, and returns the ranked result set with per-video stats and a similarity score. Supports the same period/views/subscribers/duration filters as keyword_search.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.SimilarVideoInput) (*mcp.CallToolResult, engine.VideoSearchOutput, error) {
		if input.VideoURL == "" {
			return nil, engine.VideoSearchOutput{}, engine.InputError("video_url is required")
		}

		cacheKey := engine.CacheKey("similar_video_search", input.VideoURL, input.Period, input.MinViews, input.MaxSubs, input.SortBy, input.Duration, input.APIKey)
		if out, ok := engine.CacheLoadJSON[engine.VideoSearchOutput](ctx, cacheKey); ok {
			return nil, out, nil
		}

		out, err := discover.RunSimilar(ctx, discover.Request{
			VideoURL: input.VideoURL,
			Period:   input.Period,
			MinViews: input.MinViews,
			MaxSubs:  input.MaxSubs,
			SortBy:   discover.SortKey(input.SortBy),
			Duration: engine.Bucket(input.Duration),
			APIKey:   input.APIKey,
		}, logProgress("similar_video_search"))
		if err != nil {
			return nil, engine.VideoSearchOutput{}, err
		}

		if !out.Degraded {
			engine.CacheStoreJSON(ctx, cacheKey, *out)
		}
		return nil, *out, nil
	})
}
