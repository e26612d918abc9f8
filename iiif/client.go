package iiif

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single probe when no HTTP client is supplied.
const DefaultTimeout = 30 * time.Second

// maxInfoSize caps the info.json body read by a probe.
const maxInfoSize = 1 << 20

// ImageInfo is the subset of an image service's info.json used for canvases.
type ImageInfo struct {
	ID       string `json:"id"`
	LegacyID string `json:"@id"`
	Type     string `json:"type"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// Observer receives the outcome of each probe.
type Observer interface {
	ObserveProbe(exists bool, elapsed time.Duration)
}

// Prober checks whether an image service exists.
type Prober interface {
	Probe(ctx context.Context, serviceURL string) (*ImageInfo, bool)
}

// ClientConfig configures a Client.
type ClientConfig struct {
	// HTTPClient is used for requests (default: http.Client with Timeout).
	HTTPClient *http.Client

	// Timeout applies when HTTPClient is nil (default: DefaultTimeout).
	Timeout time.Duration

	// UserAgent is sent with every request when set.
	UserAgent string

	Observer Observer
	Logger   *slog.Logger
}

// Client probes IIIF image services.
type Client struct {
	http      *http.Client
	userAgent string
	observer  Observer
	logger    *slog.Logger
}

// NewClient creates a new image server client.
func NewClient(cfg ClientConfig) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		http:      hc,
		userAgent: cfg.UserAgent,
		observer:  cfg.Observer,
		logger:    logger,
	}
}

// Probe issues a GET for the service's info.json. The image is reported
// missing on HTTP 404 or 500 and on any transport error; every other
// response counts as present. When the body decodes as JSON the parsed
// info is returned as well. Results are never cached.
func (c *Client) Probe(ctx context.Context, serviceURL string) (*ImageInfo, bool) {
	start := time.Now()
	info, ok := c.probe(ctx, serviceURL)
	if c.observer != nil {
		c.observer.ObserveProbe(ok, time.Since(start))
	}
	return info, ok
}

func (c *Client) probe(ctx context.Context, serviceURL string) (*ImageInfo, bool) {
	url := InfoURL(serviceURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.logger.Debug("Image probe request invalid", "url", url, "error", err)
		return nil, false
	}
	req.Header.Set("Accept", "application/ld+json, application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("Image probe failed", "url", url, "error", err)
		return nil, false
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotFound, http.StatusInternalServerError:
		c.logger.Debug("Image not found", "url", url, "status", resp.StatusCode)
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxInfoSize))
		return nil, false
	}

	if resp.StatusCode != http.StatusOK {
		return nil, true
	}

	var info ImageInfo
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxInfoSize)).Decode(&info); err != nil {
		c.logger.Debug("Image info not decodable", "url", url, "error", err)
		return nil, true
	}
	if info.ID == "" {
		info.ID = info.LegacyID
	}
	return &info, true
}
