// Package youtube is a minimal YouTube Data API v3 client covering the three
// endpoints the discovery pipeline needs: search().list, videos().list, and
// channels().list. Every failure is classified into an engine.APIError kind
// at the point of decoding, so callers never inspect HTTP details.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/anatolykoptev/go_tube/internal/engine"
	"golang.org/x/time/rate"
)

// batchLimit is the hard API cap on ids per videos/channels call.
const batchLimit = 50

// Client calls the YouTube Data API v3 with one key.
// Safe for concurrent use; Reconnect swaps the underlying transport.
type Client struct {
	key     string
	base    string
	limiter *rate.Limiter

	mu sync.Mutex
	hc *http.Client
}

// New builds a client around the engine configuration. An empty key falls
// back to the configured server key.
func New(key string) *Client {
	if key == "" {
		key = engine.Cfg.APIKey
	}
	c := &Client{
		key:  key,
		base: engine.Cfg.APIBase,
		hc:   engine.Cfg.HTTPClient,
	}
	if rps := engine.Cfg.RequestsPerSecond; rps > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return c
}

// Reconnect replaces the HTTP client with one on a fresh transport.
// Called between retry attempts to shake off stuck connections.
func (c *Client) Reconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	timeout := engine.Cfg.HTTPClient.Timeout
	c.hc = &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 10,
		},
	}
}

func (c *Client) httpClient() *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hc
}

// call performs one GET against resource, decoding the response into out.
func (c *Client) call(ctx context.Context, resource string, params url.Values, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	params.Set("key", c.key)
	reqURL := c.base + "/" + resource + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", engine.UserAgentBot)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("youtube %s: %w", resource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeAPIError(resp.StatusCode, resp.Body)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode youtube %s: %w", resource, err)
	}
	return nil
}

// decodeAPIError maps a non-200 response to a classified engine.APIError.
func decodeAPIError(status int, body io.Reader) error {
	raw, _ := io.ReadAll(io.LimitReader(body, 4096))

	var payload apiErrorResponse
	reason := ""
	message := strings.TrimSpace(string(raw))
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error.Message != "" {
		message = payload.Error.Message
		if len(payload.Error.Errors) > 0 {
			reason = payload.Error.Errors[0].Reason
		}
	}

	return &engine.APIError{
		Kind:    classify(status, reason, message),
		Reason:  reason,
		Message: message,
	}
}

// classify implements the retry policy's error taxonomy: quotaExceeded,
// keyInvalid, badRequest, and "invalid argument" messages are never retried.
func classify(status int, reason, message string) engine.ErrorKind {
	switch reason {
	case "quotaExceeded", "dailyLimitExceeded":
		return engine.KindQuotaExceeded
	case "keyInvalid":
		return engine.KindInvalidCredential
	case "badRequest":
		return engine.KindBadRequest
	}
	if strings.Contains(message, "invalid argument") {
		return engine.KindBadRequest
	}
	switch status {
	case http.StatusUnauthorized:
		return engine.KindInvalidCredential
	case http.StatusBadRequest:
		return engine.KindBadRequest
	case http.StatusNotFound:
		return engine.KindNotFound
	}
	return engine.KindTransient
}

// joinIDs comma-joins ids, erroring past the API's 50-id batch cap.
func joinIDs(ids []string) (string, error) {
	if len(ids) == 0 {
		return "", engine.InputError("empty id batch")
	}
	if len(ids) > batchLimit {
		return "", engine.InputError("batch of %d exceeds API limit of %d", len(ids), batchLimit)
	}
	return strings.Join(ids, ","), nil
}

func parseCount(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}
