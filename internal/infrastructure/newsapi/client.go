// Package newsapi implements the search-backed mention source on top of
// the NewsAPI "everything" endpoint.
package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"CompanyTracker/internal/config"
	"CompanyTracker/internal/domain"
	"CompanyTracker/internal/ports"
)

// NewsAPI caps page size at 100 per request.
const maxPageSize = 100

// minimum length for the API content/description fallbacks, filtering
// out useless short snippets
const minFallbackChars = 10

var publishedAtLayouts = []string{
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05.999999999Z",
}

// Client queries NewsAPI for articles mentioning a company and
// normalizes them into domain mentions, attaching extracted page
// content.
type Client struct {
	apiKey    string
	baseURL   string
	language  string
	client    *http.Client
	extractor ports.ContentExtractor
	logger    *slog.Logger
	now       func() time.Time
}

var _ ports.MentionSource = (*Client)(nil)

// NewClient builds a client, failing when the required API key is
// absent. A missing key is a caller mistake, not a transient fault.
func NewClient(cfg config.NewsAPIConfig, extractor ports.ContentExtractor, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("newsapi key is not set")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://newsapi.org/v2/everything"
	}
	language := cfg.Language
	if language == "" {
		language = "en"
	}

	return &Client{
		apiKey:    cfg.APIKey,
		baseURL:   baseURL,
		language:  language,
		client:    &http.Client{Timeout: 15 * time.Second},
		extractor: extractor,
		logger:    logger,
		now:       time.Now,
	}, nil
}

type searchResponse struct {
	Status   string          `json:"status"`
	Message  string          `json:"message"`
	Articles []searchArticle `json:"articles"`
}

type searchArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Content     string `json:"content"`
	Description string `json:"description"`
	PublishedAt string `json:"publishedAt"`
}

// FetchMentions queries the search API for articles matching the
// company name or any alias within the lookback window. Transport
// failures and non-ok API statuses degrade to an empty result.
func (c *Client) FetchMentions(ctx context.Context, company string, aliases []string, days, limit int) ([]domain.Mention, error) {
	query := buildQuery(company, aliases)

	now := c.now()
	params := url.Values{}
	params.Set("q", query)
	params.Set("from", now.AddDate(0, 0, -days).Format("2006-01-02"))
	params.Set("to", now.Format("2006-01-02"))
	params.Set("language", c.language)
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", strconv.Itoa(min(limit, maxPageSize)))
	params.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.warnf("search request failed", "company", company, "error", err)
		return []domain.Mention{}, nil
	}
	defer resp.Body.Close()

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		c.warnf("decode search response", "company", company, "error", err)
		return []domain.Mention{}, nil
	}

	if decoded.Status != "ok" {
		c.warnf("search api returned error", "company", company, "message", decoded.Message)
		return []domain.Mention{}, nil
	}

	articles := decoded.Articles
	if len(articles) > limit {
		articles = articles[:limit]
	}

	mentions := make([]domain.Mention, 0, len(articles))
	for _, article := range articles {
		mentions = append(mentions, c.normalize(ctx, article))
	}

	c.infof("fetched mentions", "company", company, "count", len(mentions), "limit", limit)
	return mentions, nil
}

func (c *Client) normalize(ctx context.Context, article searchArticle) domain.Mention {
	title := article.Title
	if title == "" {
		title = "No title"
	}

	source := article.Source.Name
	if source == "" {
		source = "Unknown"
	}

	content := ""
	if c.extractor != nil {
		content = c.extractor.Extract(ctx, article.URL)
	}
	if strings.TrimSpace(content) == "" {
		switch {
		case len(article.Content) > minFallbackChars:
			content = article.Content
			c.infof("using api content as fallback", "url", article.URL)
		case len(article.Description) > minFallbackChars:
			content = article.Description
			c.infof("using api description as fallback", "url", article.URL)
		default:
			content = ""
			c.warnf("no content available from any source", "url", article.URL)
		}
	}

	return domain.Mention{
		Title:       title,
		Content:     content,
		URL:         article.URL,
		Source:      source,
		PublishedAt: parsePublishedAt(article.PublishedAt),
	}
}

// buildQuery produces a phrase-quoted OR disjunction over the company
// name and all non-empty trimmed aliases.
func buildQuery(company string, aliases []string) string {
	terms := []string{company}
	for _, alias := range aliases {
		if trimmed := strings.TrimSpace(alias); trimmed != "" {
			terms = append(terms, trimmed)
		}
	}

	quoted := make([]string, len(terms))
	for i, term := range terms {
		quoted[i] = `"` + term + `"`
	}
	return strings.Join(quoted, " OR ")
}

// parsePublishedAt tries the known timestamp formats in order; anything
// unparseable becomes an unknown date.
func parsePublishedAt(value string) *time.Time {
	if value == "" {
		return nil
	}
	for _, layout := range publishedAtLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return &parsed
		}
	}
	return nil
}

func (c *Client) infof(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Info(msg, args...)
	}
}

func (c *Client) warnf(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
