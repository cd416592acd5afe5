package parser

import (
	"context"
	"iter"
	"log/slog"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"JudgmentScanner/internal/ports"
)

const (
	resultsContainerSelector = "div.results__result-list-container"
	resultsListSelector      = "ul.judgment-listing__list"
)

// ListingScraper reads judgment search result pages.
type ListingScraper struct {
	fetcher        *Fetcher
	baseURL        string
	queryExtension string
	logger         *slog.Logger
}

var _ ports.ListingSource = (*ListingScraper)(nil)

// NewListingScraper builds a scraper for {baseURL}/{queryExtension}{page}.
func NewListingScraper(fetcher *Fetcher, baseURL, queryExtension string, log *slog.Logger) *ListingScraper {
	return &ListingScraper{
		fetcher:        fetcher,
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		queryExtension: strings.TrimPrefix(queryExtension, "/"),
		logger:         log,
	}
}

// PageIndexes yields 1, 2, 3, ... without end. Every range starts again at 1;
// the caller decides when to stop.
func PageIndexes() iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := 1; ; i++ {
			if !yield(i) {
				return
			}
		}
	}
}

// PageURL builds the listing URL for a 1-based page index.
func (l *ListingScraper) PageURL(page int) string {
	return l.baseURL + "/" + l.queryExtension + strconv.Itoa(page)
}

// Links returns the detail-page hrefs listed on one results page. Fetch errors
// are logged and produce an empty list.
func (l *ListingScraper) Links(ctx context.Context, page int) []string {
	pageURL := l.PageURL(page)

	doc, err := l.fetcher.Document(ctx, pageURL)
	if err != nil {
		l.warn("listing fetch failed", "page", page, "url", pageURL, "error", err)
		return []string{}
	}

	links := extractLinks(doc)
	l.debug("listing parsed", "page", page, "links", len(links))
	return links
}

// DetailURL joins a site-relative href onto the base URL.
func (l *ListingScraper) DetailURL(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return l.baseURL + "/" + strings.TrimPrefix(href, "/")
}

func extractLinks(doc *goquery.Document) []string {
	list := doc.Find(resultsContainerSelector).First().Find(resultsListSelector).First()
	if list.Length() == 0 {
		return []string{}
	}

	links := make([]string, 0)
	list.Find("a").Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok && strings.TrimSpace(href) != "" {
			links = append(links, strings.TrimSpace(href))
		}
	})
	return links
}

func (l *ListingScraper) debug(msg string, args ...interface{}) {
	if l.logger != nil {
		l.logger.Debug(msg, args...)
	}
}

func (l *ListingScraper) warn(msg string, args ...interface{}) {
	if l.logger != nil {
		l.logger.Warn(msg, args...)
	}
}
