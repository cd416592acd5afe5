package parser

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

const userAgent = "JudgmentScanner/1.0"

// Fetcher loads and parses HTML pages with a shared client and politeness limit.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewFetcher wires an HTTP client; requestsPerSecond <= 0 disables the limit.
func NewFetcher(client *http.Client, requestsPerSecond float64) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &Fetcher{client: client, limiter: rate.NewLimiter(limit, 1)}
}

// Client exposes the underlying HTTP client.
func (f *Fetcher) Client() *http.Client {
	return f.client
}

// Document fetches pageURL and parses the body.
func (f *Fetcher) Document(ctx context.Context, pageURL string) (*goquery.Document, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %s", pageURL, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}
