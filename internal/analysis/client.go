// Package analysis talks to the external image-analysis backend that
// compares pre/post disaster imagery. The dashboard only displays
// whatever structured result the backend returns; nothing here
// validates the analysis itself.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// ErrAnalysisFailed is the single failure surfaced to callers when
// the backend responds with a non-success status. The backend's own
// error detail is intentionally not propagated to the UI.
var ErrAnalysisFailed = errors.New("analysis failed")

// Result is the backend's structured analysis response.
type Result struct {
	Success           bool              `json:"success"`
	AnalysisID        string            `json:"analysis_id,omitempty"`
	ChangePercentage  float64           `json:"change_percentage,omitempty"`
	ImpactLevel       string            `json:"impact_level,omitempty"`
	ImpactDescription string            `json:"impact_description,omitempty"`
	Images            map[string]string `json:"images,omitempty"`
	AnalysisDetails   map[string]any    `json:"analysis_details,omitempty"`
	Recommendations   []string          `json:"recommendations,omitempty"`
	DisasterType      string            `json:"disaster_type,omitempty"`
	Error             string            `json:"error,omitempty"`
}

// Client posts image pairs to the analysis backend.
type Client struct {
	baseURL string
	hc      *http.Client
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		hc:      &http.Client{Timeout: 120 * time.Second},
	}
}

// Analyze uploads the pre/post image pair and returns the backend's
// result. options, when non-nil, is passed through as a JSON form
// field; the backend interprets it.
func (c *Client) Analyze(ctx context.Context, pre io.Reader, preName string, post io.Reader, postName string, options map[string]any) (*Result, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := writeImageField(mw, "pre_image", preName, pre); err != nil {
		return nil, err
	}
	if err := writeImageField(mw, "post_image", postName, post); err != nil {
		return nil, err
	}
	if options != nil {
		opts, err := json.Marshal(options)
		if err != nil {
			return nil, fmt.Errorf("failed to encode options: %w", err)
		}
		if err := mw.WriteField("options", string(opts)); err != nil {
			return nil, fmt.Errorf("failed to write options field: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, ErrAnalysisFailed
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, ErrAnalysisFailed
	}
	return &result, nil
}

func writeImageField(mw *multipart.Writer, field, name string, r io.Reader) error {
	part, err := mw.CreateFormFile(field, name)
	if err != nil {
		return fmt.Errorf("failed to create %s field: %w", field, err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("failed to copy %s: %w", field, err)
	}
	return nil
}
