package ports

import (
	"context"

	"CompanyTracker/internal/domain"
	"CompanyTracker/internal/sentiment"
)

// MentionSource pulls candidate mentions for a company from upstream
// providers. Transport failures degrade to an empty slice inside the
// implementation; a returned error means the request could not even be
// attempted.
type MentionSource interface {
	FetchMentions(ctx context.Context, company string, aliases []string, days, limit int) ([]domain.Mention, error)
}

// ContentExtractor reduces a web page to plain body text. It never
// fails: any fetch or parse problem yields an empty string.
type ContentExtractor interface {
	Extract(ctx context.Context, url string) string
}

// SentimentAnalyzer classifies text. Implementations absorb their own
// failures and always produce a valid result.
type SentimentAnalyzer interface {
	Analyze(ctx context.Context, text string) sentiment.Result
}

// CompanyRepository persists companies and their mentions.
type CompanyRepository interface {
	UpsertCompany(ctx context.Context, name string, aliases []string) (domain.Company, error)
	Companies(ctx context.Context) ([]domain.Company, error)
	Company(ctx context.Context, id int64) (domain.Company, error)
	DeleteCompany(ctx context.Context, id int64) error

	UpsertMentions(ctx context.Context, companyID int64, mentions []domain.Mention) (int, error)
	Mentions(ctx context.Context, companyID int64, sentimentFilter string) ([]domain.Mention, error)
	Timeline(ctx context.Context, companyID int64, days int) ([]domain.Mention, error)
	SentimentStats(ctx context.Context, companyID int64) (domain.SentimentStats, error)
}

// ReportWriter persists the batch run summary, fully overwriting the
// previous report.
type ReportWriter interface {
	Write(ctx context.Context, summary domain.RunSummary) error
}
