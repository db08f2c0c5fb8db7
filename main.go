// go_tube — YouTube video discovery MCP server.
//
// Exposes two MCP tools: keyword_search and similar_video_search.
// Runs as HTTP MCP server or stdio transport.
package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/anatolykoptev/go_tube/internal/tubeserver"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8893")
)

func main() {
	_ = godotenv.Load()
	initEngine()

	slog.Info("starting go_tube",
		slog.String("port", mcpPort),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_tube",
		Version: version,
	}, nil)

	tubeserver.RegisterTools(server)
	slog.Info("tools registered", slog.Int("count", 2))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_tube",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initEngine() {
	c := engine.Config{
		APIKey:               env.Str("YOUTUBE_API_KEY", ""),
		APIBase:              env.Str("YOUTUBE_API_BASE", ""),
		MaxSearchPages:       env.Int("MAX_SEARCH_PAGES", 6),
		SearchWorkers:        env.Int("SEARCH_WORKERS", 5),
		DetailWorkers:        env.Int("DETAIL_WORKERS", 6),
		BatchTimeout:         env.Duration("BATCH_TIMEOUT", 30*time.Second),
		RequestsPerSecond:    env.Float("API_REQUESTS_PER_SECOND", 0),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}
	engine.Init(c)

	cacheTTL := env.Duration("CACHE_TTL", 15*time.Minute)
	engine.InitCache(env.Str("REDIS_URL", ""), cacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)
}
