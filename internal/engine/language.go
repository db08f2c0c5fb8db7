package engine

import (
	"regexp"
	"strings"
)

// Detector classifies text into a coarse language bucket by counting
// script-range characters. Two configurations exist on purpose: the keyword
// path and the similar-video path of the app this engine grew out of used
// slightly different code vocabularies, default languages, and tie-breaks,
// and unifying them would silently change filtering behavior.
type Detector struct {
	Korean   string
	English  string
	Japanese string
	Chinese  string

	CountLatin bool // count Latin words toward English (else English is only the no-Asian fallback)
	CountJamo  bool // include Hangul jamo in the Korean count
	WideCJK    bool // include CJK extension A in the Chinese count
	Lowercase  bool
}

// KeywordDetector is the configuration used by keyword-mode filtering.
// Returns two-letter codes; an all-zero count degenerates to "ko".
var KeywordDetector = Detector{
	Korean:     "ko",
	English:    "en",
	Japanese:   "ja",
	Chinese:    "zh",
	CountLatin: true,
	CountJamo:  true,
	Lowercase:  true,
}

// SimilarDetector is the configuration used by similar-video-mode filtering.
// Returns long-form names and classifies anything without Asian-script
// characters as English.
var SimilarDetector = Detector{
	Korean:   "korean",
	English:  "english",
	Japanese: "japanese",
	Chinese:  "chinese",
	WideCJK:  true,
}

var (
	hangulRe     = regexp.MustCompile(`[가-힣]`)
	hangulJamoRe = regexp.MustCompile(`[\x{3131}-\x{3163}]`)
	latinWordRe  = regexp.MustCompile(`\b[a-z]+\b`)
	kanaRe       = regexp.MustCompile(`[\x{3040}-\x{309F}\x{30A0}-\x{30FF}]`)
	cjkRe        = regexp.MustCompile(`[\x{4E00}-\x{9FFF}]`)
	cjkWideRe    = regexp.MustCompile(`[\x{4E00}-\x{9FFF}\x{3400}-\x{4DBF}]`)
)

// Detect classifies the concatenation of title and channel title.
// The language with the highest script-character count wins; ties keep the
// earlier language in the detector's precedence order.
func (d Detector) Detect(title, channelTitle string) string {
	text := title + " " + channelTitle
	if d.Lowercase {
		text = strings.ToLower(text)
	}

	korean := len(hangulRe.FindAllString(text, -1))
	if d.CountJamo {
		korean += len(hangulJamoRe.FindAllString(text, -1))
	}
	japanese := len(kanaRe.FindAllString(text, -1))
	chinese := len(cjkRe.FindAllString(text, -1))
	if d.WideCJK {
		chinese = len(cjkWideRe.FindAllString(text, -1))
	}

	if !d.CountLatin {
		if korean+japanese+chinese == 0 {
			return d.English
		}
		// korean > chinese > japanese precedence
		if korean >= chinese && korean >= japanese {
			return d.Korean
		}
		if chinese >= japanese {
			return d.Chinese
		}
		return d.Japanese
	}

	english := len(latinWordRe.FindAllString(text, -1))
	type cand struct {
		code string
		n    int
	}
	order := []cand{{d.Korean, korean}, {d.English, english}, {d.Japanese, japanese}, {d.Chinese, chinese}}
	best := order[0]
	for _, c := range order[1:] {
		if c.n > best.n {
			best = c
		}
	}
	return best.code
}

// IsSimilarLanguage reports whether the candidate's detected language matches
// the reference language. Exact match always passes. In lenient mode (used
// when the result pool is small, e.g. after quota exhaustion) Korean and
// English content are accepted in both directions.
func (d Detector) IsSimilarLanguage(title, channelTitle, reference string, lenient bool) bool {
	content := d.Detect(title, channelTitle)
	if content == reference {
		return true
	}
	if !lenient {
		return false
	}
	if reference == d.Korean && content == d.English {
		return true
	}
	if reference == d.English && content == d.Korean {
		return true
	}
	return false
}
