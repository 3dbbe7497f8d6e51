package newsapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"CompanyTracker/internal/config"
)

type stubExtractor struct {
	text string
}

func (s *stubExtractor) Extract(_ context.Context, _ string) string {
	return s.text
}

func newTestClient(t *testing.T, baseURL string, extracted string) *Client {
	t.Helper()

	client, err := NewClient(config.NewsAPIConfig{
		APIKey:  "test-key",
		BaseURL: baseURL,
	}, &stubExtractor{text: extracted}, nil)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	client.now = func() time.Time {
		return time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	}
	return client
}

func TestNewClientMissingKey(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(config.NewsAPIConfig{}, nil, nil); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestFetchMentionsQuery(t *testing.T) {
	t.Parallel()

	var query url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		_, _ = w.Write([]byte(`{"status":"ok","articles":[]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, "")
	mentions, err := client.FetchMentions(context.Background(), "Acme", []string{" ACM ", ""}, 7, 15)
	if err != nil {
		t.Fatalf("FetchMentions error: %v", err)
	}
	if len(mentions) != 0 {
		t.Fatalf("expected no mentions, got %d", len(mentions))
	}

	if got := query.Get("q"); got != `"Acme" OR "ACM"` {
		t.Fatalf("unexpected query: %s", got)
	}
	if got := query.Get("from"); got != "2025-03-08" {
		t.Fatalf("expected from=2025-03-08, got %s", got)
	}
	if got := query.Get("to"); got != "2025-03-15" {
		t.Fatalf("expected to=2025-03-15, got %s", got)
	}
	if got := query.Get("language"); got != "en" {
		t.Fatalf("expected language=en, got %s", got)
	}
	if got := query.Get("sortBy"); got != "publishedAt" {
		t.Fatalf("expected sortBy=publishedAt, got %s", got)
	}
	if got := query.Get("pageSize"); got != "15" {
		t.Fatalf("expected pageSize=15, got %s", got)
	}
	if got := query.Get("apiKey"); got != "test-key" {
		t.Fatalf("expected apiKey passthrough, got %s", got)
	}
}

func TestFetchMentionsPageSizeCap(t *testing.T) {
	t.Parallel()

	var pageSize string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pageSize = r.URL.Query().Get("pageSize")
		_, _ = w.Write([]byte(`{"status":"ok","articles":[]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, "")
	if _, err := client.FetchMentions(context.Background(), "Acme", nil, 7, 500); err != nil {
		t.Fatalf("FetchMentions error: %v", err)
	}

	if pageSize != "100" {
		t.Fatalf("expected pageSize capped at 100, got %s", pageSize)
	}
}

func TestFetchMentionsNormalizes(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"status": "ok",
			"articles": [
				{
					"source": {"name": "Example News"},
					"title": "Acme posts record quarter",
					"url": "https://example.org/a",
					"publishedAt": "2025-03-14T08:30:00Z"
				},
				{
					"source": {"name": ""},
					"title": "",
					"url": "https://example.org/b",
					"publishedAt": "2025-03-14T08:30:00.123Z"
				},
				{
					"source": {"name": "Example News"},
					"title": "Third",
					"url": "https://example.org/c",
					"publishedAt": "not-a-date"
				}
			]
		}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, "scraped body text")
	mentions, err := client.FetchMentions(context.Background(), "Acme", nil, 7, 10)
	if err != nil {
		t.Fatalf("FetchMentions error: %v", err)
	}
	if len(mentions) != 3 {
		t.Fatalf("expected 3 mentions, got %d", len(mentions))
	}

	if mentions[0].Source != "Example News" {
		t.Fatalf("unexpected source: %s", mentions[0].Source)
	}
	if mentions[0].Content != "scraped body text" {
		t.Fatalf("expected scraped content, got %q", mentions[0].Content)
	}
	if mentions[0].PublishedAt == nil || !mentions[0].PublishedAt.Equal(time.Date(2025, 3, 14, 8, 30, 0, 0, time.UTC)) {
		t.Fatalf("unexpected published_at: %v", mentions[0].PublishedAt)
	}

	if mentions[1].Title != "No title" {
		t.Fatalf("expected default title, got %q", mentions[1].Title)
	}
	if mentions[1].Source != "Unknown" {
		t.Fatalf("expected default source, got %q", mentions[1].Source)
	}
	if mentions[1].PublishedAt == nil {
		t.Fatal("expected fractional-second timestamp to parse")
	}

	if mentions[2].PublishedAt != nil {
		t.Fatalf("expected nil published_at for garbage input, got %v", mentions[2].PublishedAt)
	}
}

func TestFetchMentionsLimitTruncation(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"status": "ok",
			"articles": [
				{"title": "a", "url": "https://example.org/1"},
				{"title": "b", "url": "https://example.org/2"},
				{"title": "c", "url": "https://example.org/3"}
			]
		}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, "x")
	mentions, err := client.FetchMentions(context.Background(), "Acme", nil, 7, 2)
	if err != nil {
		t.Fatalf("FetchMentions error: %v", err)
	}

	if len(mentions) != 2 {
		t.Fatalf("expected client-side truncation to 2, got %d", len(mentions))
	}
}

func TestFetchMentionsContentFallbackChain(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"status": "ok",
			"articles": [
				{
					"title": "a", "url": "https://example.org/1",
					"content": "Full content here describing the story",
					"description": "short"
				},
				{
					"title": "b", "url": "https://example.org/2",
					"content": "tiny",
					"description": "A somewhat longer description of the story"
				},
				{
					"title": "c", "url": "https://example.org/3",
					"content": "tiny",
					"description": "short"
				}
			]
		}`))
	}))
	defer server.Close()

	// extractor yields nothing, forcing the API-field fallbacks
	client := newTestClient(t, server.URL, "")
	mentions, err := client.FetchMentions(context.Background(), "Acme", nil, 7, 10)
	if err != nil {
		t.Fatalf("FetchMentions error: %v", err)
	}

	if mentions[0].Content != "Full content here describing the story" {
		t.Fatalf("expected api content fallback, got %q", mentions[0].Content)
	}
	if mentions[1].Content != "A somewhat longer description of the story" {
		t.Fatalf("expected description fallback, got %q", mentions[1].Content)
	}
	if mentions[2].Content != "" {
		t.Fatalf("expected empty content, got %q", mentions[2].Content)
	}
}

func TestFetchMentionsAPIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","message":"apiKeyInvalid"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, "")
	mentions, err := client.FetchMentions(context.Background(), "Acme", nil, 7, 10)
	if err != nil {
		t.Fatalf("expected api error to degrade, got: %v", err)
	}
	if len(mentions) != 0 {
		t.Fatalf("expected empty result, got %d", len(mentions))
	}
}

func TestFetchMentionsTransportError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := newTestClient(t, server.URL, "")
	mentions, err := client.FetchMentions(context.Background(), "Acme", nil, 7, 10)
	if err != nil {
		t.Fatalf("expected transport error to degrade, got: %v", err)
	}
	if len(mentions) != 0 {
		t.Fatalf("expected empty result, got %d", len(mentions))
	}
}
