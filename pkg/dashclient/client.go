// Package dashclient is a small Go client for the assessdash REST API.
package dashclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client talks to an assessdash server.
type Client struct {
	baseURL string
	hc      *http.Client
}

// New creates a client for the server at baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		hc:      &http.Client{Timeout: 30 * time.Second},
	}
}

// Types mirror the server's response bodies.

type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type Info struct {
	Name     string   `json:"name"`
	Version  string   `json:"version"`
	DataDir  string   `json:"data_dir"`
	DB       bool     `json:"db"`
	Features []string `json:"features"`
}

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type MapSettings struct {
	Center         LatLng   `json:"center"`
	Zoom           int      `json:"zoom"`
	BaseStyle      string   `json:"baseStyle"`
	ShowLabels     bool     `json:"showLabels"`
	VisibleLayers  []string `json:"visibleLayers"`
	OverlayOpacity float64  `json:"overlayOpacity"`
}

type Assessment struct {
	ID           string      `json:"id,omitempty"`
	Name         string      `json:"name"`
	Description  string      `json:"description,omitempty"`
	DisasterType string      `json:"disasterType,omitempty"`
	Map          MapSettings `json:"map"`
}

type CreatedAssessment struct {
	ID         string     `json:"id"`
	Assessment Assessment `json:"assessment"`
	Message    string     `json:"message"`
}

type ImportSummary struct {
	Points  int `json:"points"`
	Zones   int `json:"zones"`
	Samples int `json:"samples"`
}

type MetricCard struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value int    `json:"value"`
	Tone  string `json:"tone"`
}

// Operations

func (c *Client) Health(ctx context.Context) (Health, error) {
	var out Health
	err := c.do(ctx, http.MethodGet, "/health", nil, &out)
	return out, err
}

func (c *Client) GetInfo(ctx context.Context) (Info, error) {
	var out Info
	err := c.do(ctx, http.MethodGet, "/api/v1/info", nil, &out)
	return out, err
}

func (c *Client) ListAssessments(ctx context.Context) (map[string]Assessment, error) {
	var out map[string]Assessment
	err := c.do(ctx, http.MethodGet, "/api/v1/assessments", nil, &out)
	return out, err
}

func (c *Client) CreateAssessment(ctx context.Context, a Assessment) (CreatedAssessment, error) {
	var out CreatedAssessment
	err := c.do(ctx, http.MethodPost, "/api/v1/assessments", a, &out)
	return out, err
}

func (c *Client) GetAssessment(ctx context.Context, id string) (Assessment, error) {
	var out Assessment
	err := c.do(ctx, http.MethodGet, "/api/v1/assessments/"+id, nil, &out)
	return out, err
}

func (c *Client) DeleteAssessment(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/assessments/"+id, nil, nil)
}

func (c *Client) ActivateAssessment(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/assessments/"+id+"/activate", nil, nil)
}

func (c *Client) ImportGeoJSON(ctx context.Context, id string, geojson []byte) (ImportSummary, error) {
	var out ImportSummary
	err := c.doRaw(ctx, http.MethodPost, "/api/v1/assessments/"+id+"/features/import", geojson, "application/geo+json", &out)
	return out, err
}

func (c *Client) GetMetrics(ctx context.Context, id string) ([]MetricCard, error) {
	var out []MetricCard
	err := c.do(ctx, http.MethodGet, "/api/v1/assessments/"+id+"/metrics", nil, &out)
	return out, err
}

func (c *Client) SetVisibleLayers(ctx context.Context, names []string) error {
	return c.do(ctx, http.MethodPut, "/api/v1/map/layers", map[string]any{"visible": names}, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return err
		}
	}
	return c.doRaw(ctx, method, path, payload, "application/json", out)
}

func (c *Client) doRaw(ctx context.Context, method, path string, payload []byte, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	if len(payload) > 0 {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
