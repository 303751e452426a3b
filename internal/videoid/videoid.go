// Package videoid resolves platform video identifiers from URLs and builds
// canonical watch URLs from identifiers.
package videoid

import (
	"net/url"
	"strings"
)

// PlatformYouTube is the default platform tag for search results.
const PlatformYouTube = "youtube"

const youtubeWatchURL = "https://www.youtube.com/watch?v="

var (
	shortLinkHosts = map[string]bool{
		"youtu.be": true,
	}
	canonicalHosts = map[string]bool{
		"youtube.com":              true,
		"www.youtube.com":          true,
		"m.youtube.com":            true,
		"music.youtube.com":        true,
		"youtube-nocookie.com":     true,
		"www.youtube-nocookie.com": true,
	}
	// Path prefixes that carry the identifier as the next segment.
	embedPrefixes = []string{"/embed/", "/shorts/", "/live/", "/v/"}
)

// Extract returns the video identifier carried by rawURL.
// Malformed URLs and unknown hosts yield ok == false.
func Extract(rawURL string) (string, bool) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", false
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}

	host := strings.ToLower(u.Hostname())

	switch {
	case shortLinkHosts[host]:
		id := strings.TrimPrefix(u.Path, "/")
		if id == "" {
			return "", false
		}
		return id, true

	case canonicalHosts[host]:
		if id := u.Query().Get("v"); id != "" {
			return id, true
		}
		for _, prefix := range embedPrefixes {
			if !strings.HasPrefix(u.Path, prefix) {
				continue
			}
			id := strings.TrimPrefix(u.Path, prefix)
			if idx := strings.Index(id, "/"); idx != -1 {
				id = id[:idx]
			}
			if id != "" {
				return id, true
			}
		}
	}

	return "", false
}

// BuildURL returns the canonical watch URL for id on platform.
func BuildURL(platform, id string) (string, bool) {
	if id == "" {
		return "", false
	}

	switch strings.ToLower(platform) {
	case PlatformYouTube:
		return youtubeWatchURL + url.QueryEscape(id), true
	default:
		return "", false
	}
}
