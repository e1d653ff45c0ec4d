// Package pdf converts rendered HTML artifacts to PDF through Gotenberg.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/budgetdesk/budgetdesk/internal/platform/httpx"
)

// PageOptions configures the Chromium print settings sent with each conversion.
type PageOptions struct {
	Landscape       bool
	PrintBackground bool
	MarginInches    float64
}

// DefaultPageOptions suits the project report layout.
var DefaultPageOptions = PageOptions{PrintBackground: true, MarginInches: 0.4}

// Client wraps interactions with the Gotenberg API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	page       PageOptions
}

// NewClient constructs a new client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		page: DefaultPageOptions,
	}
}

// WithHTTPClient swaps the transport, mainly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// Ping checks if the remote Gotenberg service is available.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("pdf: ping: %w: %v", httpx.ErrUpstream, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("pdf: gotenberg returned status %d: %w", resp.StatusCode, httpx.ErrUpstream)
	}
	return nil
}

// RenderHTML converts a self-contained HTML document into PDF bytes.
func (c *Client) RenderHTML(ctx context.Context, html []byte) ([]byte, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(html); err != nil {
		return nil, err
	}
	fields := map[string]string{
		"landscape":       fmt.Sprintf("%t", c.page.Landscape),
		"printBackground": fmt.Sprintf("%t", c.page.PrintBackground),
		"marginTop":       fmt.Sprintf("%g", c.page.MarginInches),
		"marginBottom":    fmt.Sprintf("%g", c.page.MarginInches),
		"marginLeft":      fmt.Sprintf("%g", c.page.MarginInches),
		"marginRight":     fmt.Sprintf("%g", c.page.MarginInches),
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/forms/chromium/convert/html", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pdf: convert: %w: %v", httpx.ErrUpstream, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("pdf: render failed with status %d: %w", resp.StatusCode, httpx.ErrUpstream)
	}
	return io.ReadAll(resp.Body)
}
