package service

// MockResults returns the fixed demo payload served in mock mode. The entries
// use different upstream field spellings so the demo exercises
// the same normalization path as live traffic. A fresh copy is returned on
// every call.
func MockResults() []map[string]any {
	return []map[string]any{
		{
			"platform":   "youtube",
			"videoId":    "dQw4w9WgXcQ",
			"title":      "Election Commission Challenges Vote-Theft Allegations, Seeks Proof",
			"channel":    "India Today",
			"seconds":    125.0,
			"confidence": 0.94,
		},
		{
			"url":          "https://youtu.be/9bZkp7q5f0E",
			"video_title":  "Evening Bulletin: Top Headlines",
			"channelTitle": "News Scan Demo",
			"timecode":     "01:02:05",
			"score":        0.81,
		},
		{
			"video_url":  "https://www.youtube.com/watch?v=3JZ_D3ELwOQ",
			"name":       "Press Conference Highlights",
			"author":     "News Scan Demo",
			"offset":     42.5,
			"similarity": 0.67,
		},
	}
}
