// Package export renders stored companies and mentions into the static
// JSON files consumed by the dashboard.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"CompanyTracker/internal/domain"
	"CompanyTracker/internal/ports"
)

// Exporter reads through the repository only; it never writes mentions.
type Exporter struct {
	repository ports.CompanyRepository
	dir        string
	logger     *slog.Logger
}

// New targets the given output directory.
func New(repository ports.CompanyRepository, dir string, logger *slog.Logger) *Exporter {
	return &Exporter{repository: repository, dir: dir, logger: logger}
}

type companyEntry struct {
	ID      int64    `json:"id"`
	Name    string   `json:"name"`
	Aliases []string `json:"aliases"`
}

type timelinePoint struct {
	Date      time.Time `json:"date"`
	Score     float64   `json:"score"`
	Sentiment string    `json:"sentiment"`
}

type companyData struct {
	Company  companyEntry          `json:"company"`
	Stats    domain.SentimentStats `json:"stats"`
	Mentions []domain.Mention      `json:"mentions"`
	Timeline []timelinePoint       `json:"timeline"`
}

// ExportAll regenerates every static file: the company list, one data
// file per company, and the default dashboard payload (first company).
func (e *Exporter) ExportAll(ctx context.Context) error {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	companies, err := e.repository.Companies(ctx)
	if err != nil {
		return fmt.Errorf("load companies: %w", err)
	}

	entries := make([]companyEntry, 0, len(companies))
	for _, company := range companies {
		entries = append(entries, companyEntry{ID: company.ID, Name: company.Name, Aliases: company.Aliases})
	}
	if err := e.writeJSON("companies.json", entries); err != nil {
		return err
	}
	e.info("generated company list", "count", len(entries))

	for i, company := range companies {
		data, err := e.companyData(ctx, company)
		if err != nil {
			return err
		}
		if err := e.writeJSON(fmt.Sprintf("company_%d.json", company.ID), data); err != nil {
			return err
		}
		if i == 0 {
			if err := e.writeJSON("dashboard_data.json", data); err != nil {
				return err
			}
		}
	}

	return nil
}

func (e *Exporter) companyData(ctx context.Context, company domain.Company) (companyData, error) {
	stats, err := e.repository.SentimentStats(ctx, company.ID)
	if err != nil {
		return companyData{}, fmt.Errorf("stats for company %d: %w", company.ID, err)
	}

	mentions, err := e.repository.Mentions(ctx, company.ID, "")
	if err != nil {
		return companyData{}, fmt.Errorf("mentions for company %d: %w", company.ID, err)
	}

	timelineMentions, err := e.repository.Timeline(ctx, company.ID, 0)
	if err != nil {
		return companyData{}, fmt.Errorf("timeline for company %d: %w", company.ID, err)
	}

	timeline := make([]timelinePoint, 0, len(timelineMentions))
	for _, mention := range timelineMentions {
		if mention.PublishedAt == nil || mention.SentimentScore == 0 {
			continue
		}
		timeline = append(timeline, timelinePoint{
			Date:      *mention.PublishedAt,
			Score:     mention.SentimentScore,
			Sentiment: mention.Sentiment,
		})
	}

	if mentions == nil {
		mentions = []domain.Mention{}
	}

	return companyData{
		Company:  companyEntry{ID: company.ID, Name: company.Name, Aliases: company.Aliases},
		Stats:    stats,
		Mentions: mentions,
		Timeline: timeline,
	}, nil
}

func (e *Exporter) writeJSON(name string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(e.dir, name), payload, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func (e *Exporter) info(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Info(msg, args...)
	}
}
