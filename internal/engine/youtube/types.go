package youtube

// Raw YouTube Data API v3 response shapes. Numeric statistics arrive as
// decimal strings on the wire and are converted at the accessor level.

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

type searchListResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
}

type videoListResponse struct {
	Items []Video `json:"items"`
}

type channelListResponse struct {
	Items []struct {
		ID         string `json:"id"`
		Statistics struct {
			SubscriberCount string `json:"subscriberCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// Thumbnail is a single thumbnail rendition.
type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Video is one videos().list item with the snippet, statistics,
// contentDetails, status, and topicDetails parts.
type Video struct {
	ID      string `json:"id"`
	Snippet struct {
		PublishedAt          string   `json:"publishedAt"`
		ChannelID            string   `json:"channelId"`
		Title                string   `json:"title"`
		Description          string   `json:"description"`
		ChannelTitle         string   `json:"channelTitle"`
		Tags                 []string `json:"tags"`
		CategoryID           string   `json:"categoryId"`
		DefaultAudioLanguage string   `json:"defaultAudioLanguage"`
		Thumbnails           struct {
			Default Thumbnail `json:"default"`
			Medium  Thumbnail `json:"medium"`
			High    Thumbnail `json:"high"`
		} `json:"thumbnails"`
	} `json:"snippet"`
	Statistics struct {
		ViewCount    string `json:"viewCount"`
		LikeCount    string `json:"likeCount"`
		CommentCount string `json:"commentCount"`
	} `json:"statistics"`
	ContentDetails struct {
		Duration string `json:"duration"`
	} `json:"contentDetails"`
	Status struct {
		License string `json:"license"`
	} `json:"status"`
	TopicDetails struct {
		TopicIDs         []string `json:"topicIds"`
		RelevantTopicIDs []string `json:"relevantTopicIds"`
	} `json:"topicDetails"`
}

// ViewCount returns the view count as an integer (0 when absent).
func (v *Video) ViewCount() int64 { return parseCount(v.Statistics.ViewCount) }

// LikeCount returns the like count as an integer (0 when absent or hidden).
func (v *Video) LikeCount() int64 { return parseCount(v.Statistics.LikeCount) }

// CommentCount returns the comment count as an integer (0 when absent).
func (v *Video) CommentCount() int64 { return parseCount(v.Statistics.CommentCount) }

// ThumbnailURL returns the medium thumbnail, falling back to default.
func (v *Video) ThumbnailURL() string {
	if v.Snippet.Thumbnails.Medium.URL != "" {
		return v.Snippet.Thumbnails.Medium.URL
	}
	return v.Snippet.Thumbnails.Default.URL
}

// License returns the video license, defaulting to "youtube".
func (v *Video) License() string {
	if v.Status.License == "" {
		return "youtube"
	}
	return v.Status.License
}
