package discover

import (
	"context"
	"regexp"
	"strings"

	"github.com/anatolykoptev/go_tube/internal/engine"
)

// videoIDPatterns covers the URL shapes users actually paste: desktop and
// mobile watch pages, shorts, embeds, and youtu.be short links. A YouTube
// video ID is always exactly 11 characters of [a-zA-Z0-9_-].
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/shorts/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`(?:https?://)?m\.youtube\.com/shorts/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/watch\?[^#]*v=([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`(?:https?://)?youtu\.be/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/embed/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`(?:https?://)?m\.youtube\.com/watch\?[^#]*v=([a-zA-Z0-9_-]{11})`),
}

// ExtractVideoID pulls the 11-character video ID out of a YouTube URL.
// Returns "" when no pattern matches.
func ExtractVideoID(rawURL string) string {
	s := strings.TrimSpace(rawURL)
	for _, re := range videoIDPatterns {
		if m := re.FindStringSubmatch(s); m != nil {
			return m[1]
		}
	}
	return ""
}

// languageToRegion maps a two-letter audio language code to the region used
// for relevance biasing. Unknown codes fall back to Korean defaults.
var languageToRegion = map[string]string{
	"ko": "KR",
	"en": "US",
	"ja": "JP",
	"zh": "CN",
	"es": "ES",
	"fr": "FR",
	"de": "DE",
	"ru": "RU",
	"pt": "BR",
	"it": "IT",
}

// Seed is the resolved metadata of the video a similar-video run starts
// from. Immutable once built; every collection strategy and the scorer read
// from it.
type Seed struct {
	ID           string
	Title        string
	Description  string
	ChannelID    string
	ChannelTitle string
	Tags         []string
	Hashtags     []string
	CategoryID   string
	TopicIDs     []string
	Bucket       engine.Bucket
	LanguageCode string // two-letter code for relevanceLanguage
	RegionCode   string
	Language     string // detector label used for language filtering
}

// resolveSeed fetches the seed video and derives everything the cascade
// needs from it. Errors here are fatal for the run: without a seed there is
// nothing to be similar to.
func (r *run) resolveSeed(ctx context.Context, rawURL string) (*Seed, error) {
	id := ExtractVideoID(rawURL)
	if id == "" {
		return nil, engine.InputError("not a recognized YouTube video URL: %s", engine.Truncate(rawURL, 80))
	}
	videos, err := r.videos(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if len(videos) == 0 {
		return nil, engine.NotFoundError("video %s not found or not accessible", id)
	}
	v := videos[0]

	code := "ko"
	if lang := strings.ToLower(v.Snippet.DefaultAudioLanguage); len(lang) >= 2 {
		if _, ok := languageToRegion[lang[:2]]; ok {
			code = lang[:2]
		}
	}
	category := v.Snippet.CategoryID
	if category == "" {
		category = "22"
	}
	seconds := engine.ParseISODuration(v.ContentDetails.Duration)

	return &Seed{
		ID:           v.ID,
		Title:        v.Snippet.Title,
		Description:  v.Snippet.Description,
		ChannelID:    v.Snippet.ChannelID,
		ChannelTitle: v.Snippet.ChannelTitle,
		Tags:         v.Snippet.Tags,
		Hashtags:     engine.ExtractHashtags(v.Snippet.Title + " " + v.Snippet.Description),
		CategoryID:   category,
		TopicIDs:     v.TopicDetails.RelevantTopicIDs,
		Bucket:       engine.ClassifyBucket(seconds),
		LanguageCode: code,
		RegionCode:   languageToRegion[code],
		Language:     engine.SimilarDetector.Detect(v.Snippet.Title, v.Snippet.ChannelTitle),
	}, nil
}
