package discover

import (
	"sort"
	"strings"

	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/anatolykoptev/go_tube/internal/engine/youtube"
)

// maxScored caps how many ranked candidates proceed to channel-stats lookup
// and final filtering. Truncation happens before the channel calls, so a big
// candidate pool does not multiply quota cost.
const maxScored = 50

// Scoring weights. Same-channel is the strongest signal; shared tags beat
// shared hashtags beat loose title-keyword overlap.
const (
	scoreChannel = 30
	scoreTag     = 15
	scoreHashtag = 8
	scoreKeyword = 5
)

type scored struct {
	video youtube.Video
	score int
}

// scoreCandidates ranks candidates by similarity to the seed. Tag, hashtag,
// and keyword overlaps count set intersections, so duplicate tags or
// repeated title words never score twice. The sort is stable and descending,
// so equal-score candidates keep their collection order, which favors the
// more precise strategies that ran first.
func scoreCandidates(seed *Seed, videos []youtube.Video) []scored {
	seedTags := lowerSet(seed.Tags)
	seedHashtags := lowerSet(seed.Hashtags)
	keywords := lowerSet(engine.TitleKeywords(seed.Title))

	ranked := make([]scored, 0, len(videos))
	for i := range videos {
		v := videos[i]
		score := 0
		if v.Snippet.ChannelID == seed.ChannelID {
			score += scoreChannel
		}
		for tag := range lowerSet(v.Snippet.Tags) {
			if seedTags[tag] {
				score += scoreTag
			}
		}
		for h := range lowerSet(engine.ExtractHashtags(v.Snippet.Description)) {
			if seedHashtags[h] {
				score += scoreHashtag
			}
		}
		title := strings.ToLower(v.Snippet.Title)
		for w := range keywords {
			if strings.Contains(title, w) {
				score += scoreKeyword
			}
		}
		ranked = append(ranked, scored{video: v, score: score})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	return ranked
}

func lowerSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, s := range items {
		set[strings.ToLower(s)] = true
	}
	return set
}
