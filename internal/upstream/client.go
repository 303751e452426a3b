// Package upstream calls the external visual matching service.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/news-scan-ai/visual-search-gateway/internal/models"
	"github.com/news-scan-ai/visual-search-gateway/pkg/logger"
	"go.uber.org/zap"
)

const imageField = "image"

// Keys checked, in order, for the array of raw results.
var resultListKeys = []string{"results", "matches", "data"}

// Client posts images to the upstream search API. It never retries.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient creates a Client. A zero timeout leaves the transport defaults in place.
func NewClient(endpoint, apiKey string, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: logger.Named("upstream"),
	}
}

// NewClientWithHTTP creates a Client using the supplied http.Client.
func NewClientWithHTTP(endpoint, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: httpClient,
		log:        logger.Named("upstream"),
	}
}

// Invoke uploads the image and returns the raw result objects from the
// upstream response. Failures are *StatusError or *TransportError.
func (c *Client) Invoke(ctx context.Context, image *models.ImageUpload) ([]map[string]any, error) {
	body, contentType, err := buildMultipart(image)
	if err != nil {
		return nil, &TransportError{Message: "failed to build upload", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, &TransportError{Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Message: "upstream request failed", Cause: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Message: "failed to read upstream response", Cause: err}
	}

	c.log.Debug("Upstream responded",
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(respBody)),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var payload any
	if err := json.Unmarshal(respBody, &payload); err != nil {
		return nil, &TransportError{Message: "upstream returned invalid JSON", Cause: err}
	}

	return ExtractResults(payload), nil
}

// ExtractResults pulls the raw result list out of a decoded upstream body,
// checking results, matches and data in that order. Array elements that are
// not JSON objects become nil entries so they still normalize to empty results.
func ExtractResults(payload any) []map[string]any {
	obj, ok := payload.(map[string]any)
	if !ok {
		return []map[string]any{}
	}

	for _, key := range resultListKeys {
		list, ok := obj[key].([]any)
		if !ok {
			continue
		}
		results := make([]map[string]any, 0, len(list))
		for _, item := range list {
			m, _ := item.(map[string]any)
			results = append(results, m)
		}
		return results
	}

	return []map[string]any{}
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// buildMultipart encodes the image as the single "image" file part, keeping
// the original filename and content type.
func buildMultipart(image *models.ImageUpload) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	contentType := image.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		imageField, quoteEscaper.Replace(image.Filename)))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("create image part: %w", err)
	}
	if _, err := part.Write(image.Data); err != nil {
		return nil, "", fmt.Errorf("write image part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}

	return body, writer.FormDataContentType(), nil
}
