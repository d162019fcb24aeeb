// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the HTTP client used for listing and article
// page fetches. The client sends a fixed desktop-browser header profile
// and treats any status outside the 2xx range as an error. Failures are
// returned to the caller, never retried.
package httputil

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/pdiddy/paper-harvest/pkg/types"
)

// Fetch profile defaults, used when the corresponding config field is empty.
const (
	DefaultTimeout        = 30 * time.Second
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultAcceptLanguage = "en-US,en;q=0.9"
)

// Client fetches pages through a shared colly collector. Each request runs
// on a clone of the base collector, so a Client is safe for concurrent use.
type Client struct {
	base           *colly.Collector
	acceptLanguage string
}

// NewClient builds a client from cfg, filling empty fields with the package
// defaults.
func NewClient(cfg types.HTTPConfig) *Client {
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	acceptLanguage := cfg.AcceptLanguage
	if acceptLanguage == "" {
		acceptLanguage = DefaultAcceptLanguage
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	base := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
		colly.ParseHTTPErrorResponse(),
	)
	base.SetRequestTimeout(timeout)

	return &Client{base: base, acceptLanguage: acceptLanguage}
}

// Get fetches rawURL and returns the response body. Redirects are followed
// by the underlying transport; the status of the final response must be in
// the 2xx range.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	var (
		body     []byte
		status   int
		fetchErr error
	)

	collector := c.base.Clone()
	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept-Language", c.acceptLanguage)
	})
	collector.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(rawURL)
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("fetching %s: %w", rawURL, ctx.Err())
	case err := <-done:
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
		}
	}
	if fetchErr != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, fetchErr)
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("fetching %s: unexpected status %d", rawURL, status)
	}
	return body, nil
}

// GetDocument fetches rawURL and parses the body as HTML.
func (c *Client) GetDocument(ctx context.Context, rawURL string) (*goquery.Document, error) {
	body, err := c.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", rawURL, err)
	}
	return doc, nil
}
