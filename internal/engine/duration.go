package engine

import (
	"fmt"
	"regexp"
	"strconv"
)

// Bucket is the coarse length classification used by search filters.
type Bucket string

const (
	BucketAny   Bucket = "any"
	BucketShort Bucket = "short" // under one minute
	BucketLong  Bucket = "long"
)

var isoDurationRe = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)

// ParseISODuration converts the API's PTxHxMxS notation to seconds.
// Absent components count as zero; malformed input yields 0, never an error.
func ParseISODuration(s string) int {
	m := isoDurationRe.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	h, _ := strconv.Atoi(zeroIfEmpty(m[1]))
	min, _ := strconv.Atoi(zeroIfEmpty(m[2]))
	sec, _ := strconv.Atoi(zeroIfEmpty(m[3]))
	return h*3600 + min*60 + sec
}

func zeroIfEmpty(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

// FormatDuration renders seconds as a minute:second display form.
// Hours fold into minutes so long videos keep a single m:ss shape:
// 3723s → "62:03", 45s → "0:45", 933s → "15:33".
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// ClassifyBucket returns BucketShort iff seconds < 60.
func ClassifyBucket(seconds int) Bucket {
	if seconds < 60 {
		return BucketShort
	}
	return BucketLong
}
