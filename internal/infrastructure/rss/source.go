// Package rss scans optional config-listed feeds for company mentions.
package rss

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"CompanyTracker/internal/config"
	"CompanyTracker/internal/domain"
	"CompanyTracker/internal/ports"
)

const minFallbackChars = 10

// Source matches feed items against a company's name and aliases.
// A feed that cannot be fetched or parsed contributes nothing; errors
// never reach the orchestrator.
type Source struct {
	feeds     []config.FeedConfig
	parser    *gofeed.Parser
	extractor ports.ContentExtractor
	logger    *slog.Logger
	now       func() time.Time
}

var _ ports.MentionSource = (*Source)(nil)

// New builds a feed source; with no feeds configured it yields nothing.
func New(feeds []config.FeedConfig, extractor ports.ContentExtractor, logger *slog.Logger) *Source {
	return &Source{
		feeds:     feeds,
		parser:    gofeed.NewParser(),
		extractor: extractor,
		logger:    logger,
		now:       time.Now,
	}
}

// FetchMentions walks every configured feed and keeps items inside the
// lookback window whose title or description contains the company name
// or an alias.
func (s *Source) FetchMentions(ctx context.Context, company string, aliases []string, days, limit int) ([]domain.Mention, error) {
	if len(s.feeds) == 0 {
		return nil, nil
	}

	terms := matchTerms(company, aliases)
	cutoff := s.now().AddDate(0, 0, -days)

	var mentions []domain.Mention
	for _, feed := range s.feeds {
		if len(mentions) >= limit {
			break
		}

		parsed, err := s.parser.ParseURLWithContext(feed.URL, ctx)
		if err != nil {
			s.warn("parse feed", feed.URL, err)
			continue
		}

		for _, item := range parsed.Items {
			if len(mentions) >= limit {
				break
			}
			if item.PublishedParsed != nil && item.PublishedParsed.Before(cutoff) {
				continue
			}
			if !matchesAny(item.Title+" "+item.Description, terms) {
				continue
			}
			mentions = append(mentions, s.normalize(ctx, feed, item))
		}
	}

	return mentions, nil
}

func (s *Source) normalize(ctx context.Context, feed config.FeedConfig, item *gofeed.Item) domain.Mention {
	title := item.Title
	if title == "" {
		title = "No title"
	}

	source := feed.Name
	if source == "" {
		source = "Unknown"
	}

	content := ""
	if s.extractor != nil {
		content = s.extractor.Extract(ctx, item.Link)
	}
	if strings.TrimSpace(content) == "" {
		switch {
		case len(item.Content) > minFallbackChars:
			content = item.Content
		case len(item.Description) > minFallbackChars:
			content = item.Description
		default:
			content = ""
			s.warn("no content available for item", item.Link, nil)
		}
	}

	return domain.Mention{
		Title:       title,
		Content:     content,
		URL:         item.Link,
		Source:      source,
		PublishedAt: item.PublishedParsed,
	}
}

func matchTerms(company string, aliases []string) []string {
	terms := []string{strings.ToLower(company)}
	for _, alias := range aliases {
		if trimmed := strings.TrimSpace(alias); trimmed != "" {
			terms = append(terms, strings.ToLower(trimmed))
		}
	}
	return terms
}

func matchesAny(text string, terms []string) bool {
	lowered := strings.ToLower(text)
	for _, term := range terms {
		if term != "" && strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}

func (s *Source) warn(msg, url string, err error) {
	if s.logger != nil {
		s.logger.Warn(msg, "url", url, "error", err)
	}
}
