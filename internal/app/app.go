package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"CompanyTracker/internal/config"
	"CompanyTracker/internal/domain"
	"CompanyTracker/internal/export"
	"CompanyTracker/internal/infrastructure/api"
	"CompanyTracker/internal/infrastructure/extract"
	"CompanyTracker/internal/infrastructure/llm"
	"CompanyTracker/internal/infrastructure/newsapi"
	"CompanyTracker/internal/infrastructure/report"
	"CompanyTracker/internal/infrastructure/rss"
	"CompanyTracker/internal/infrastructure/storage"
	"CompanyTracker/internal/logging"
	"CompanyTracker/internal/ports"
	"CompanyTracker/internal/sentiment"
	"CompanyTracker/internal/source"
	"CompanyTracker/internal/usecase"
)

// Application wires configuration to the pipeline and its adapters.
// Backend selection (remote classifier vs keyword fallback, live source
// vs degraded mode) happens exactly once here, at construction.
type Application struct {
	cfg        config.Config
	db         *sql.DB
	repository ports.CompanyRepository
	pipeline   *usecase.Pipeline
	exporter   *export.Exporter
	server     *api.Server
	logger     *slog.Logger
}

// New builds a runnable application instance and initializes storage.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	db, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	repository := storage.NewSQLiteRepository(db, baseLogger.With("component", "storage"))
	if err := repository.Init(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}

	extractor := extract.New(cfg.Extractor, baseLogger.With("component", "extractor"))

	var mentionSource ports.MentionSource
	searchClient, err := newsapi.NewClient(cfg.NewsAPI, extractor, baseLogger.With("component", "newsapi"))
	if err != nil {
		baseLogger.Warn("search source unavailable, companies will be skipped", "error", err)
	} else {
		providers := []ports.MentionSource{searchClient}
		if len(cfg.Feeds) > 0 {
			providers = append(providers, rss.New(cfg.Feeds, extractor, baseLogger.With("component", "rss")))
		}
		mentionSource = source.NewMerged(baseLogger.With("component", "source"), providers...)
	}

	var analyzer ports.SentimentAnalyzer
	openAI, err := llm.NewOpenAIAnalyzer(cfg.OpenAI, baseLogger.With("component", "openai"))
	if err != nil {
		baseLogger.Warn("remote classifier unavailable, using keyword fallback", "error", err)
		analyzer = sentiment.NewKeywordAnalyzer()
	} else {
		analyzer = openAI
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Repository:    repository,
		Source:        mentionSource,
		Analyzer:      analyzer,
		Report:        report.NewFileWriter(cfg.Pipeline.ReportPath),
		Logger:        baseLogger.With("component", "pipeline"),
		LookbackDays:  cfg.Pipeline.LookbackDays,
		ClassifyChars: cfg.Pipeline.ClassifyChars,
	})

	return &Application{
		cfg:        cfg,
		db:         db,
		repository: repository,
		pipeline:   pipeline,
		exporter:   export.New(repository, cfg.Export.Dir, baseLogger.With("component", "export")),
		server:     api.NewServer(repository, baseLogger.With("component", "api")),
		logger:     baseLogger,
	}, nil
}

// Close releases the storage handle.
func (a *Application) Close() error {
	return a.db.Close()
}

// ProcessCompany runs the pipeline for one company.
func (a *Application) ProcessCompany(ctx context.Context, companyID int64, limit int) domain.CompanyResult {
	return a.pipeline.ProcessCompany(ctx, companyID, a.articleLimit(limit))
}

// ProcessAll runs the pipeline for every company and writes the run
// report.
func (a *Application) ProcessAll(ctx context.Context, limit int) (domain.RunSummary, error) {
	return a.pipeline.ProcessAll(ctx, a.articleLimit(limit))
}

// AddCompany registers a company to track.
func (a *Application) AddCompany(ctx context.Context, name string, aliases []string) (domain.Company, error) {
	return a.repository.UpsertCompany(ctx, name, aliases)
}

// Companies lists all tracked companies.
func (a *Application) Companies(ctx context.Context) ([]domain.Company, error) {
	return a.repository.Companies(ctx)
}

// Export regenerates the static dashboard data files.
func (a *Application) Export(ctx context.Context) error {
	return a.exporter.ExportAll(ctx)
}

// Serve runs the read-only dashboard API on addr (config default when
// empty).
func (a *Application) Serve(addr string) error {
	if addr == "" {
		addr = a.cfg.Server.Addr
	}
	a.logger.Info("serving dashboard api", "addr", addr)
	return a.server.Run(addr)
}

func (a *Application) articleLimit(limit int) int {
	if limit > 0 {
		return limit
	}
	if a.cfg.Pipeline.ArticleLimit > 0 {
		return a.cfg.Pipeline.ArticleLimit
	}
	return 10
}
