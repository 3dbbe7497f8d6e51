// Package source combines mention providers into the single source the
// pipeline consumes.
package source

import (
	"context"
	"log/slog"

	"CompanyTracker/internal/domain"
	"CompanyTracker/internal/ports"
)

// Merged queries providers in order and merges their results,
// deduplicating by URL. The first provider's records win on collision;
// the combined list is truncated to the requested limit.
type Merged struct {
	providers []ports.MentionSource
	logger    *slog.Logger
}

var _ ports.MentionSource = (*Merged)(nil)

// NewMerged wires an ordered provider chain.
func NewMerged(logger *slog.Logger, providers ...ports.MentionSource) *Merged {
	return &Merged{providers: providers, logger: logger}
}

// FetchMentions collects from every provider. A provider error aborts
// the fetch; providers are expected to absorb transient faults
// themselves, so an error here means the request was never viable.
func (m *Merged) FetchMentions(ctx context.Context, company string, aliases []string, days, limit int) ([]domain.Mention, error) {
	seen := map[string]struct{}{}
	merged := make([]domain.Mention, 0, limit)

	for _, provider := range m.providers {
		if provider == nil {
			continue
		}

		mentions, err := provider.FetchMentions(ctx, company, aliases, days, limit)
		if err != nil {
			return nil, err
		}

		for _, mention := range mentions {
			if _, ok := seen[mention.URL]; ok {
				continue
			}
			seen[mention.URL] = struct{}{}
			merged = append(merged, mention)
		}
	}

	if len(merged) > limit {
		merged = merged[:limit]
	}

	if m.logger != nil {
		m.logger.Debug("merged mentions", "company", company, "count", len(merged))
	}
	return merged, nil
}
