package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"CompanyTracker/internal/domain"
	"CompanyTracker/internal/ports"
)

// PipelineDeps wires all driven adapters into the ingestion pipeline.
// A nil Source puts the pipeline into degraded mode: companies are
// skipped instead of fetched, so downstream consumers can still be
// regenerated from stored data.
type PipelineDeps struct {
	Repository    ports.CompanyRepository
	Source        ports.MentionSource
	Analyzer      ports.SentimentAnalyzer
	Report        ports.ReportWriter
	Logger        *slog.Logger
	LookbackDays  int
	ClassifyChars int
}

// Pipeline drives companies through fetch, classify, and persist.
type Pipeline struct {
	repository    ports.CompanyRepository
	source        ports.MentionSource
	analyzer      ports.SentimentAnalyzer
	report        ports.ReportWriter
	logger        *slog.Logger
	lookbackDays  int
	classifyChars int
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	lookback := deps.LookbackDays
	if lookback <= 0 {
		lookback = 7
	}
	classifyChars := deps.ClassifyChars
	if classifyChars <= 0 {
		classifyChars = 1000
	}

	return &Pipeline{
		repository:    deps.Repository,
		source:        deps.Source,
		analyzer:      deps.Analyzer,
		report:        deps.Report,
		logger:        deps.Logger,
		lookbackDays:  lookback,
		classifyChars: classifyChars,
	}
}

// ProcessCompany runs one company through the full pipeline and returns
// its terminal result. Failures are captured in the result, never
// raised past this boundary.
func (p *Pipeline) ProcessCompany(ctx context.Context, companyID int64, limit int) domain.CompanyResult {
	company, err := p.repository.Company(ctx, companyID)
	if err != nil {
		return domain.CompanyResult{
			CompanyID: companyID,
			Status:    domain.StatusError,
			Message:   fmt.Sprintf("Company with ID %d not found", companyID),
		}
	}

	p.info("processing company", "name", company.Name, "id", company.ID)

	if p.source == nil {
		return domain.CompanyResult{
			CompanyID:   company.ID,
			CompanyName: company.Name,
			Status:      domain.StatusSkipped,
			Message:     "Search credentials are not configured; fetch skipped",
		}
	}

	mentions, err := p.source.FetchMentions(ctx, company.Name, company.Aliases, p.lookbackDays, limit)
	if err != nil {
		return domain.CompanyResult{
			CompanyID:   company.ID,
			CompanyName: company.Name,
			Status:      domain.StatusError,
			Message:     fmt.Sprintf("Error fetching mentions: %v", err),
		}
	}

	if len(mentions) == 0 {
		return domain.CompanyResult{
			CompanyID:   company.ID,
			CompanyName: company.Name,
			Status:      domain.StatusSuccess,
			Message:     "No new mentions found",
		}
	}

	p.classify(ctx, mentions)

	added, err := p.repository.UpsertMentions(ctx, company.ID, mentions)
	if err != nil {
		return domain.CompanyResult{
			CompanyID:   company.ID,
			CompanyName: company.Name,
			Status:      domain.StatusError,
			Message:     fmt.Sprintf("Error saving mentions: %v", err),
		}
	}

	stats, err := p.repository.SentimentStats(ctx, company.ID)
	if err != nil {
		return domain.CompanyResult{
			CompanyID:   company.ID,
			CompanyName: company.Name,
			Status:      domain.StatusError,
			Message:     fmt.Sprintf("Error computing stats: %v", err),
		}
	}

	p.info("company processed", "name", company.Name, "new_mentions", added)
	return domain.CompanyResult{
		CompanyID:     company.ID,
		CompanyName:   company.Name,
		MentionsAdded: added,
		Status:        domain.StatusSuccess,
		Stats:         &stats,
	}
}

// classify runs title+content through the analyzer using a bounded
// prefix of the combined text. Analyzer failures are absorbed inside
// the backend and never abort this step.
func (p *Pipeline) classify(ctx context.Context, mentions []domain.Mention) {
	for i := range mentions {
		text := mentions[i].Title + " " + mentions[i].Content
		if len(text) > p.classifyChars {
			text = text[:p.classifyChars]
		}
		result := p.analyzer.Analyze(ctx, text)
		mentions[i].Sentiment = result.Label
		mentions[i].SentimentScore = result.Score
	}
}

// ProcessAll runs every company independently; one company's failure
// does not block the others. The resulting summary is written once via
// the report writer, fully overwriting the previous report.
func (p *Pipeline) ProcessAll(ctx context.Context, limit int) (domain.RunSummary, error) {
	companies, err := p.repository.Companies(ctx)
	if err != nil {
		return domain.RunSummary{}, fmt.Errorf("load companies: %w", err)
	}

	summary := domain.RunSummary{
		Timestamp: time.Now().UTC(),
		Details:   make([]domain.CompanyResult, 0, len(companies)),
	}

	for _, company := range companies {
		result := p.ProcessCompany(ctx, company.ID, limit)
		summary.Details = append(summary.Details, result)

		switch result.Status {
		case domain.StatusSuccess:
			summary.Successful++
			summary.TotalNewMentions += result.MentionsAdded
		case domain.StatusSkipped:
			summary.Skipped++
		default:
			summary.Failed++
		}
	}
	summary.CompaniesProcessed = len(summary.Details)

	if p.report != nil {
		if err := p.report.Write(ctx, summary); err != nil {
			p.warn("write run report", "error", err)
			return summary, fmt.Errorf("write report: %w", err)
		}
	}

	p.info("pipeline completed",
		"companies", summary.CompaniesProcessed,
		"successful", summary.Successful,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"new_mentions", summary.TotalNewMentions,
	)
	return summary, nil
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
