package domain

import "time"

// Company is a tracked entity whose public mentions are collected.
type Company struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Aliases   []string  `json:"aliases"`
	CreatedAt time.Time `json:"created_at"`
}

// Mention is a single article or post referencing a company, enriched
// with sentiment by the ingestion pipeline. URL is the dedup key within
// a company.
type Mention struct {
	ID             int64      `json:"id"`
	CompanyID      int64      `json:"company_id"`
	Title          string     `json:"title"`
	Content        string     `json:"content"`
	URL            string     `json:"url"`
	Source         string     `json:"source"`
	Sentiment      string     `json:"sentiment"`
	SentimentScore float64    `json:"sentiment_score"`
	PublishedAt    *time.Time `json:"published_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

// SentimentStats aggregates mention sentiment for one company.
// Positive+Negative+Neutral always equals Total; unknown stored labels
// are counted as neutral.
type SentimentStats struct {
	Positive int     `json:"POSITIVE"`
	Negative int     `json:"NEGATIVE"`
	Neutral  int     `json:"NEUTRAL"`
	Total    int     `json:"TOTAL"`
	AvgScore float64 `json:"AVG_SCORE"`
}

// Pipeline terminal states per company.
const (
	StatusSuccess = "success"
	StatusSkipped = "skipped"
	StatusError   = "error"
)

// CompanyResult describes the outcome of processing one company.
type CompanyResult struct {
	CompanyID     int64           `json:"company_id"`
	CompanyName   string          `json:"company_name"`
	MentionsAdded int             `json:"mentions_added"`
	Status        string          `json:"status"`
	Message       string          `json:"message,omitempty"`
	Stats         *SentimentStats `json:"stats,omitempty"`
}

// RunSummary is the single artifact persisted after a batch run.
type RunSummary struct {
	Timestamp          time.Time       `json:"timestamp"`
	CompaniesProcessed int             `json:"companies_processed"`
	Successful         int             `json:"successful"`
	Skipped            int             `json:"skipped"`
	Failed             int             `json:"failed"`
	TotalNewMentions   int             `json:"total_new_mentions"`
	Details            []CompanyResult `json:"details"`
}
