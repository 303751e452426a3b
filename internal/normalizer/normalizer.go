// Package normalizer maps loosely shaped upstream result objects onto
// models.CanonicalResult.
package normalizer

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/news-scan-ai/visual-search-gateway/internal/models"
	"github.com/news-scan-ai/visual-search-gateway/internal/timecode"
	"github.com/news-scan-ai/visual-search-gateway/internal/videoid"
)

// Accepted field names per canonical attribute, in priority order.
var (
	platformFields   = []string{"platform", "source", "site"}
	urlFields        = []string{"videoUrl", "video_url", "url", "link", "watchUrl", "watch_url"}
	idFields         = []string{"videoId", "video_id", "id"}
	youtubeIDFields  = []string{"youtubeId", "youtube_id", "ytId"}
	hmsFields        = []string{"matchedAtHMS", "matched_at_hms", "timecode", "timestamp", "hms", "time"}
	secondsFields    = []string{"matchedAtSeconds", "matched_at_seconds", "seconds", "offset", "t"}
	titleFields      = []string{"title", "videoTitle", "video_title", "name"}
	channelFields    = []string{"channel", "channelTitle", "channel_title", "author", "uploader"}
	confidenceFields = []string{"confidence", "score", "similarity"}
)

// Normalize builds a CanonicalResult from one raw upstream object.
// It never fails: anything that cannot be derived is left nil.
func Normalize(raw map[string]any) models.CanonicalResult {
	platform := videoid.PlatformYouTube
	if p, ok := lookupString(raw, platformFields); ok {
		platform = p
	}

	result := models.CanonicalResult{
		Platform: platform,
		Raw:      raw,
	}

	url, hasURL := lookupString(raw, urlFields)

	videoID, hasID := lookupIdentifier(raw, idFields)
	if !hasID && strings.EqualFold(platform, videoid.PlatformYouTube) {
		videoID, hasID = lookupIdentifier(raw, youtubeIDFields)
	}
	if !hasID && hasURL {
		videoID, hasID = videoid.Extract(url)
	}
	if hasID {
		result.VideoID = &videoID
	}

	switch {
	case hasURL:
		result.VideoURL = &url
	case hasID:
		if built, ok := videoid.BuildURL(platform, videoID); ok {
			result.VideoURL = &built
		}
	}

	if seconds, ok := lookupNumber(raw, secondsFields); ok {
		result.MatchedAtSeconds = &seconds
	} else if hms, ok := lookupString(raw, hmsFields); ok {
		result.MatchedAtSeconds = timecode.ParsePtr(&hms)
	}
	// Always re-rendered so the two timestamp fields cannot disagree.
	result.MatchedAtHMS = timecode.FormatPtr(result.MatchedAtSeconds)

	if title, ok := lookupString(raw, titleFields); ok {
		result.Title = &title
	}
	if channel, ok := lookupString(raw, channelFields); ok {
		result.Channel = &channel
	}
	if confidence, ok := lookupNumber(raw, confidenceFields); ok {
		result.Confidence = &confidence
	}

	return result
}

// NormalizeAll normalizes every raw object, preserving order.
func NormalizeAll(raws []map[string]any) []models.CanonicalResult {
	results := make([]models.CanonicalResult, 0, len(raws))
	for _, raw := range raws {
		results = append(results, Normalize(raw))
	}
	return results
}

func lookupString(raw map[string]any, fields []string) (string, bool) {
	for _, field := range fields {
		if s, ok := raw[field].(string); ok && strings.TrimSpace(s) != "" {
			return s, true
		}
	}
	return "", false
}

// lookupIdentifier accepts strings and integral numbers.
func lookupIdentifier(raw map[string]any, fields []string) (string, bool) {
	for _, field := range fields {
		switch v := raw[field].(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				return v, true
			}
		case json.Number:
			return v.String(), true
		case float64:
			if v == math.Trunc(v) && !math.IsInf(v, 0) {
				return strconv.FormatFloat(v, 'f', -1, 64), true
			}
		case int:
			return strconv.Itoa(v), true
		case int64:
			return strconv.FormatInt(v, 10), true
		}
	}
	return "", false
}

// lookupNumber only accepts values that are numbers already; numeric
// strings are not coerced.
func lookupNumber(raw map[string]any, fields []string) (float64, bool) {
	for _, field := range fields {
		var (
			n  float64
			ok bool
		)
		switch v := raw[field].(type) {
		case float64:
			n, ok = v, true
		case float32:
			n, ok = float64(v), true
		case int:
			n, ok = float64(v), true
		case int64:
			n, ok = float64(v), true
		case json.Number:
			f, err := v.Float64()
			n, ok = f, err == nil
		}
		if ok && !math.IsNaN(n) && !math.IsInf(n, 0) {
			return n, true
		}
	}
	return 0, false
}
