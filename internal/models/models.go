// Package models contains the data models and DTOs for the visual search gateway.
package models

import (
	"time"

	"github.com/google/uuid"
)

// SearchMode identifies how a search request is served.
type SearchMode string

// SearchMode constants.
const (
	SearchModeMock SearchMode = "mock"
	SearchModeLive SearchMode = "live"
)

// SearchStatus is the terminal state of a search request.
type SearchStatus string

// SearchStatus constants map one to one onto the handler's terminal states.
const (
	SearchStatusResponded        SearchStatus = "RESPONDED"
	SearchStatusNoImage          SearchStatus = "NO_IMAGE"
	SearchStatusConfigError      SearchStatus = "CONFIG_ERROR"
	SearchStatusUpstreamFailure  SearchStatus = "UPSTREAM_FAILURE"
	SearchStatusTransportFailure SearchStatus = "TRANSPORT_FAILURE"
	SearchStatusInternalError    SearchStatus = "INTERNAL_ERROR"
)

// CanonicalResult describes one place an image was found.
// Nullable attributes are pointers so they encode as JSON null.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type CanonicalResult struct {
	Platform         string         `json:"platform"`
	VideoID          *string        `json:"videoId"`
	VideoURL         *string        `json:"videoUrl"`
	Title            *string        `json:"title"`
	Channel          *string        `json:"channel"`
	MatchedAtSeconds *float64       `json:"matchedAtSeconds"`
	MatchedAtHMS     *string        `json:"matchedAtHMS"`
	Confidence       *float64       `json:"confidence"`
	Raw              map[string]any `json:"raw"`
}

// ImageUpload is the image received on the search endpoint.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Size returns the payload length in bytes.
func (u *ImageUpload) Size() int64 {
	return int64(len(u.Data))
}

// SearchOutcome is what the dispatcher hands back to the handler.
type SearchOutcome struct {
	Mode    SearchMode
	Results []CanonicalResult
}

// SearchResponseDTO is the 200 response body.
type SearchResponseDTO struct {
	Results []CanonicalResult `json:"results"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// SearchRecord is one row of search history.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type SearchRecord struct {
	ID          uuid.UUID    `json:"id"`
	Filename    string       `json:"filename"`
	ContentType string       `json:"content_type"`
	ImageSize   int64        `json:"image_size"`
	ImageSHA256 string       `json:"image_sha256"`
	Mode        SearchMode   `json:"mode"`
	Status      SearchStatus `json:"status"`
	HTTPStatus  int          `json:"http_status"`
	ResultCount int          `json:"result_count"`
	Error       *string      `json:"error"`
	DurationMs  int64        `json:"duration_ms"`
	CreatedAt   time.Time    `json:"created_at"`
}

// SearchCompletedEvent is published once a search request has finished.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type SearchCompletedEvent struct {
	SearchID    uuid.UUID    `json:"searchId"`
	Mode        SearchMode   `json:"mode"`
	Status      SearchStatus `json:"status"`
	HTTPStatus  int          `json:"httpStatus"`
	ResultCount int          `json:"resultCount"`
	VideoIDs    []string     `json:"videoIds"`
	CompletedAt time.Time    `json:"completedAt"`
}
