package extract

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"CompanyTracker/internal/config"
	"CompanyTracker/internal/ports"
)

// Extractor fetches article pages and reduces them to plain body text.
// Every failure degrades to an empty string; nothing propagates to the
// caller.
type Extractor struct {
	client    *http.Client
	userAgent string
	minDelay  time.Duration
	maxDelay  time.Duration
	logger    *slog.Logger
}

var _ ports.ContentExtractor = (*Extractor)(nil)

// New builds an extractor from configuration.
func New(cfg config.ExtractorConfig, logger *slog.Logger) *Extractor {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Extractor{
		client:    &http.Client{Timeout: timeout},
		userAgent: cfg.UserAgent,
		minDelay:  time.Duration(cfg.MinDelayMillis) * time.Millisecond,
		maxDelay:  time.Duration(cfg.MaxDelayMillis) * time.Millisecond,
		logger:    logger,
	}
}

// Extract returns the best-effort plain-text body of the page at rawURL.
// A small random delay precedes the fetch so that repeated calls do not
// hammer the target site.
func (e *Extractor) Extract(ctx context.Context, rawURL string) string {
	if rawURL == "" {
		return ""
	}

	if !e.pause(ctx) {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		e.warn("build request", rawURL, err)
		return ""
	}
	if e.userAgent != "" {
		req.Header.Set("User-Agent", e.userAgent)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		e.warn("fetch page", rawURL, err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		e.warn("fetch page", rawURL, errStatus(resp.Status))
		return ""
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		e.warn("read body", rawURL, err)
		return ""
	}

	text := readableText(body, rawURL)
	if text == "" {
		text = strippedText(body)
	}

	if text != "" {
		e.debug("extracted content", rawURL, len(text))
	}
	return text
}

// readableText runs the readability pass and normalizes whitespace.
func readableText(body []byte, rawURL string) string {
	pageURL, _ := url.Parse(rawURL)
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return ""
	}
	return collapseWhitespace(article.TextContent)
}

// strippedText is the fallback pass: drop non-content elements and take
// whatever text remains.
func strippedText(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	doc.Find("script, style, nav, footer, header").Remove()
	return collapseWhitespace(doc.Text())
}

func collapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// pause sleeps for a random duration between the configured bounds,
// returning false if the context expired first.
func (e *Extractor) pause(ctx context.Context) bool {
	delay := e.minDelay
	if spread := e.maxDelay - e.minDelay; spread > 0 {
		delay += time.Duration(rand.Int63n(int64(spread)))
	}
	if delay <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (e *Extractor) warn(msg, url string, err error) {
	if e.logger != nil {
		e.logger.Warn(msg, "url", url, "error", err)
	}
}

func (e *Extractor) debug(msg, url string, chars int) {
	if e.logger != nil {
		e.logger.Debug(msg, "url", url, "chars", chars)
	}
}

type errStatus string

func (e errStatus) Error() string { return "unexpected status " + string(e) }
