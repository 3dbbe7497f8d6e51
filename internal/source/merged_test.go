package source

import (
	"context"
	"fmt"
	"testing"

	"CompanyTracker/internal/domain"
)

type stubProvider struct {
	mentions []domain.Mention
	err      error
	calls    int
}

func (s *stubProvider) FetchMentions(_ context.Context, _ string, _ []string, _, _ int) ([]domain.Mention, error) {
	s.calls++
	return s.mentions, s.err
}

func TestFetchMentionsDeduplicatesByURL(t *testing.T) {
	t.Parallel()

	first := &stubProvider{mentions: []domain.Mention{
		{Title: "From news", URL: "https://example.org/a"},
		{Title: "Only news", URL: "https://example.org/b"},
	}}
	second := &stubProvider{mentions: []domain.Mention{
		{Title: "From feed", URL: "https://example.org/a"},
		{Title: "Only feed", URL: "https://example.org/c"},
	}}

	merged := NewMerged(nil, first, second)
	mentions, err := merged.FetchMentions(context.Background(), "Acme", nil, 7, 10)
	if err != nil {
		t.Fatalf("FetchMentions error: %v", err)
	}

	if len(mentions) != 3 {
		t.Fatalf("expected 3 unique mentions, got %d", len(mentions))
	}
	if mentions[0].Title != "From news" {
		t.Fatalf("first provider must win on collision, got %q", mentions[0].Title)
	}
}

func TestFetchMentionsHonorsLimit(t *testing.T) {
	t.Parallel()

	first := &stubProvider{mentions: []domain.Mention{
		{URL: "https://example.org/a"},
		{URL: "https://example.org/b"},
	}}
	second := &stubProvider{mentions: []domain.Mention{
		{URL: "https://example.org/c"},
	}}

	merged := NewMerged(nil, first, second)
	mentions, err := merged.FetchMentions(context.Background(), "Acme", nil, 7, 2)
	if err != nil {
		t.Fatalf("FetchMentions error: %v", err)
	}

	if len(mentions) != 2 {
		t.Fatalf("expected limit of 2, got %d", len(mentions))
	}
}

func TestFetchMentionsSkipsNilProviders(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{mentions: []domain.Mention{{URL: "https://example.org/a"}}}

	merged := NewMerged(nil, nil, provider)
	mentions, err := merged.FetchMentions(context.Background(), "Acme", nil, 7, 10)
	if err != nil {
		t.Fatalf("FetchMentions error: %v", err)
	}

	if len(mentions) != 1 || provider.calls != 1 {
		t.Fatalf("expected nil provider to be skipped, got %d mentions, %d calls", len(mentions), provider.calls)
	}
}

func TestFetchMentionsPropagatesProviderError(t *testing.T) {
	t.Parallel()

	failing := &stubProvider{err: fmt.Errorf("credentials rejected")}
	healthy := &stubProvider{mentions: []domain.Mention{{URL: "https://example.org/a"}}}

	merged := NewMerged(nil, failing, healthy)
	_, err := merged.FetchMentions(context.Background(), "Acme", nil, 7, 10)
	if err == nil {
		t.Fatal("expected provider error to propagate")
	}
	if healthy.calls != 0 {
		t.Fatalf("fetch must abort on first error, later provider called %d times", healthy.calls)
	}
}
