package engine

import (
	"net/http"
	"time"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	APIKey               string        // YouTube Data API v3 key
	APIBase              string        // API base URL, overridable for tests
	MaxSearchPages       int           // keyword-mode page cap
	SearchWorkers        int           // concurrent search-page fetches
	DetailWorkers        int           // concurrent detail/channel batches
	BatchTimeout         time.Duration // per-batch call timeout
	RequestsPerSecond    float64       // API request pacing (0 = unpaced)
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration
	HTTPClient           *http.Client
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (youtube, discover).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
// Zero-valued tuning knobs get safe defaults.
func Init(c Config) {
	if c.APIBase == "" {
		c.APIBase = "https://www.googleapis.com/youtube/v3"
	}
	if c.MaxSearchPages <= 0 {
		c.MaxSearchPages = 6
	}
	if c.SearchWorkers <= 0 {
		c.SearchWorkers = 5
	}
	if c.DetailWorkers <= 0 {
		c.DetailWorkers = 6
	}
	if c.BatchTimeout <= 0 {
		c.BatchTimeout = 30 * time.Second
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		}
	}
	cfg = c
	Cfg = &cfg
}
