package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"JudgmentScanner/internal/logging"
)

const listingPage = `
<html><body>
  <div class="results__result-list-container">
    <ul class="judgment-listing__list">
      <li><a href="/ewhc/comm/2024/101">Acme v Widget</a></li>
      <li><a href="/ewhc/comm/2024/102">Foo v Bar</a></li>
      <li><a href="">empty</a></li>
    </ul>
  </div>
  <ul class="judgment-listing__list"><li><a href="/outside">outside</a></li></ul>
</body></html>`

func TestPageIndexes(t *testing.T) {
	var got []int
	for page := range PageIndexes() {
		if page > 5 {
			break
		}
		got = append(got, page)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, got)

	for page := range PageIndexes() {
		assert.Equal(t, 1, page, "a fresh sequence starts at 1")
		break
	}
}

func TestExtractLinks(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(listingPage))
	require.NoError(t, err)

	assert.Equal(t, []string{"/ewhc/comm/2024/101", "/ewhc/comm/2024/102"}, extractLinks(doc))
}

func TestExtractLinks_NoContainer(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<div class="other"><ul><li><a href="/x">x</a></li></ul></div>`))
	require.NoError(t, err)

	links := extractLinks(doc)
	assert.NotNil(t, links)
	assert.Empty(t, links)
}

func TestListingScraper_PageURL(t *testing.T) {
	l := NewListingScraper(NewFetcher(nil, 0), "https://example.org/", "judgments/search?court=ewhc/comm&page=", nil)
	assert.Equal(t, "https://example.org/judgments/search?court=ewhc/comm&page=3", l.PageURL(3))
}

func TestListingScraper_DetailURL(t *testing.T) {
	l := NewListingScraper(NewFetcher(nil, 0), "https://example.org", "search?page=", nil)
	assert.Equal(t, "https://example.org/ewhc/comm/2024/101", l.DetailURL("/ewhc/comm/2024/101"))
	assert.Equal(t, "https://example.org/ewhc/comm/2024/101", l.DetailURL("ewhc/comm/2024/101"))
	assert.Equal(t, "https://other.org/x", l.DetailURL("https://other.org/x"))
}

func TestListingScraper_Links(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(listingPage))
	}))
	defer server.Close()

	l := NewListingScraper(NewFetcher(server.Client(), 0), server.URL, "search?page=", logging.Discard())
	links := l.Links(context.Background(), 2)

	assert.Equal(t, "page=2", gotQuery)
	assert.Equal(t, []string{"/ewhc/comm/2024/101", "/ewhc/comm/2024/102"}, links)
}

func TestListingScraper_LinksFailSoft(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	l := NewListingScraper(NewFetcher(server.Client(), 0), server.URL, "search?page=", logging.Discard())
	links := l.Links(context.Background(), 1)

	assert.NotNil(t, links)
	assert.Empty(t, links)
}

func TestListingScraper_LinksEmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>No results</p></body></html>`))
	}))
	defer server.Close()

	l := NewListingScraper(NewFetcher(server.Client(), 0), server.URL, "search?page=", nil)
	assert.Empty(t, l.Links(context.Background(), 9))
}
