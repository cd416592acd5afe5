package parser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"JudgmentScanner/internal/ports"
)

// ErrElementNotFound marks a detail page missing its title or PDF link.
var ErrElementNotFound = errors.New("element not found")

const (
	titleSelector     = "h1.judgment-toolbar__title"
	toolbarSelector   = "div.judgment-toolbar-buttons"
	pdfAnchorSelector = "a.judgment-toolbar-buttons__option--pdf"
)

// DetailFetcher loads case detail pages.
type DetailFetcher struct {
	fetcher *Fetcher
}

var _ ports.DetailSource = (*DetailFetcher)(nil)

// NewDetailFetcher shares the listing fetcher so both respect one rate limit.
func NewDetailFetcher(fetcher *Fetcher) *DetailFetcher {
	return &DetailFetcher{fetcher: fetcher}
}

// Fetch loads the page once; title and PDF link are both read from the result.
func (d *DetailFetcher) Fetch(ctx context.Context, detailURL string) (ports.DetailPage, error) {
	doc, err := d.fetcher.Document(ctx, detailURL)
	if err != nil {
		return nil, fmt.Errorf("detail %s: %w", detailURL, err)
	}
	return NewDetailPage(doc), nil
}

// DetailPage is a parsed case detail document.
type DetailPage struct {
	doc *goquery.Document
}

// NewDetailPage wraps an already parsed document.
func NewDetailPage(doc *goquery.Document) *DetailPage {
	return &DetailPage{doc: doc}
}

// Title returns the case title with every "/" replaced by "-" so it can name a file.
func (p *DetailPage) Title() (string, error) {
	heading := p.doc.Find(titleSelector).First()
	if heading.Length() == 0 {
		heading = p.doc.Find("h1").First()
	}
	if heading.Length() == 0 {
		return "", fmt.Errorf("case title heading: %w", ErrElementNotFound)
	}

	title := strings.TrimSpace(heading.Text())
	if title == "" {
		return "", fmt.Errorf("case title is empty: %w", ErrElementNotFound)
	}
	return strings.ReplaceAll(title, "/", "-"), nil
}

// PDFURL returns the href of the PDF anchor inside the judgment toolbar.
func (p *DetailPage) PDFURL() (string, error) {
	toolbar := p.doc.Find(toolbarSelector).First()
	if toolbar.Length() == 0 {
		return "", fmt.Errorf("judgment toolbar: %w", ErrElementNotFound)
	}

	anchor := toolbar.Find(pdfAnchorSelector).First()
	if anchor.Length() == 0 {
		anchor = toolbar.Find("a").FilterFunction(func(_ int, a *goquery.Selection) bool {
			href, _ := a.Attr("href")
			return strings.HasSuffix(strings.ToLower(href), ".pdf") ||
				strings.Contains(strings.ToUpper(a.Text()), "PDF")
		}).First()
	}

	href, ok := anchor.Attr("href")
	if !ok {
		return "", fmt.Errorf("pdf link: %w", ErrElementNotFound)
	}
	return href, nil
}
