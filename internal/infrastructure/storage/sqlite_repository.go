package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"CompanyTracker/internal/domain"
	"CompanyTracker/internal/ports"
	"CompanyTracker/internal/sentiment"
)

// ErrNotFound marks lookups for rows that do not exist.
var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS companies (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    name       TEXT NOT NULL,
    aliases    TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS mentions (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    company_id      INTEGER NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
    title           TEXT NOT NULL,
    content         TEXT NOT NULL DEFAULT '',
    url             TEXT NOT NULL,
    source          TEXT NOT NULL DEFAULT 'Unknown',
    sentiment       TEXT NOT NULL DEFAULT 'NEUTRAL',
    sentiment_score REAL,
    published_at    TIMESTAMP,
    created_at      TIMESTAMP NOT NULL,
    UNIQUE (company_id, url)
);

CREATE INDEX IF NOT EXISTS idx_mentions_company ON mentions(company_id);
`

// Open prepares a SQLite handle with foreign keys enabled. The store is
// accessed sequentially, so a single connection is enough and keeps
// in-memory databases coherent.
func Open(path string) (*sql.DB, error) {
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_fk=1"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// SQLiteRepository persists companies and their mentions.
type SQLiteRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ ports.CompanyRepository = (*SQLiteRepository)(nil)

// NewSQLiteRepository wires a sql.DB implementation.
func NewSQLiteRepository(db *sql.DB, logger *slog.Logger) *SQLiteRepository {
	return &SQLiteRepository{db: db, logger: logger}
}

// Init creates the schema when it does not exist yet.
func (r *SQLiteRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// UpsertCompany returns the existing company with the given name
// unchanged, or creates a new one. Name is the application-level unique
// key.
func (r *SQLiteRepository) UpsertCompany(ctx context.Context, name string, aliases []string) (domain.Company, error) {
	query, args, err := sq.Select("id", "name", "aliases", "created_at").
		From("companies").
		Where(sq.Eq{"name": name}).
		ToSql()
	if err != nil {
		return domain.Company{}, fmt.Errorf("build select: %w", err)
	}

	existing, err := scanCompany(r.db.QueryRowContext(ctx, query, args...))
	if err == nil {
		r.debug("company already exists", "name", name, "id", existing.ID)
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domain.Company{}, fmt.Errorf("query company: %w", err)
	}

	now := time.Now().UTC()
	query, args, err = sq.Insert("companies").
		Columns("name", "aliases", "created_at").
		Values(name, joinAliases(aliases), now).
		ToSql()
	if err != nil {
		return domain.Company{}, fmt.Errorf("build insert: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return domain.Company{}, fmt.Errorf("insert company: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.Company{}, fmt.Errorf("company id: %w", err)
	}

	r.debug("added company", "name", name, "id", id)
	return domain.Company{ID: id, Name: name, Aliases: trimAliases(aliases), CreatedAt: now}, nil
}

// Companies lists every tracked company ordered by identity.
func (r *SQLiteRepository) Companies(ctx context.Context) ([]domain.Company, error) {
	query, args, err := sq.Select("id", "name", "aliases", "created_at").
		From("companies").
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query companies: %w", err)
	}
	defer rows.Close()

	var companies []domain.Company
	for rows.Next() {
		company, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		companies = append(companies, company)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return companies, nil
}

// Company loads one company by identity.
func (r *SQLiteRepository) Company(ctx context.Context, id int64) (domain.Company, error) {
	query, args, err := sq.Select("id", "name", "aliases", "created_at").
		From("companies").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return domain.Company{}, fmt.Errorf("build select: %w", err)
	}

	company, err := scanCompany(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Company{}, fmt.Errorf("company %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return domain.Company{}, fmt.Errorf("query company: %w", err)
	}
	return company, nil
}

// DeleteCompany removes a company; its mentions go with it via the
// cascade.
func (r *SQLiteRepository) DeleteCompany(ctx context.Context, id int64) error {
	query, args, err := sq.Delete("companies").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete company: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("company %d: %w", id, ErrNotFound)
	}
	return nil
}

// UpsertMentions writes one batch transactionally. Existing
// (company_id, url) rows are updated in place; published_at is
// overwritten only when the incoming value is known. The returned count
// covers new insertions only.
func (r *SQLiteRepository) UpsertMentions(ctx context.Context, companyID int64, mentions []domain.Mention) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query, args, err := sq.Select("id").From("companies").Where(sq.Eq{"id": companyID}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build select: %w", err)
	}

	var exists int64
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.warn("cannot add mentions: company not found", "company_id", companyID)
			return 0, nil
		}
		return 0, fmt.Errorf("query company: %w", err)
	}

	created := 0
	for _, mention := range mentions {
		inserted, err := upsertMention(ctx, tx, companyID, mention)
		if err != nil {
			return 0, err
		}
		if inserted {
			created++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}

	r.debug("added mentions", "company_id", companyID, "new", created, "batch", len(mentions))
	return created, nil
}

func upsertMention(ctx context.Context, tx *sql.Tx, companyID int64, mention domain.Mention) (bool, error) {
	title := mention.Title
	if title == "" {
		title = "No title"
	}
	source := mention.Source
	if source == "" {
		source = "Unknown"
	}
	label := sentiment.NormalizeLabel(mention.Sentiment)
	score := sentiment.ClampScore(mention.SentimentScore)

	query, args, err := sq.Select("id").
		From("mentions").
		Where(sq.Eq{"company_id": companyID, "url": mention.URL}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build select: %w", err)
	}

	var existingID int64
	err = tx.QueryRowContext(ctx, query, args...).Scan(&existingID)
	switch {
	case err == nil:
		update := sq.Update("mentions").
			Set("title", title).
			Set("content", mention.Content).
			Set("sentiment", label).
			Set("sentiment_score", score).
			Set("source", source).
			Where(sq.Eq{"id": existingID})
		if mention.PublishedAt != nil {
			update = update.Set("published_at", mention.PublishedAt.UTC())
		}

		query, args, err = update.ToSql()
		if err != nil {
			return false, fmt.Errorf("build update: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return false, fmt.Errorf("update mention: %w", err)
		}
		return false, nil

	case errors.Is(err, sql.ErrNoRows):
		var published any
		if mention.PublishedAt != nil {
			published = mention.PublishedAt.UTC()
		}
		query, args, err = sq.Insert("mentions").
			Columns("company_id", "title", "content", "url", "source", "sentiment", "sentiment_score", "published_at", "created_at").
			Values(companyID, title, mention.Content, mention.URL, source, label, score, published, time.Now().UTC()).
			ToSql()
		if err != nil {
			return false, fmt.Errorf("build insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return false, fmt.Errorf("insert mention: %w", err)
		}
		return true, nil

	default:
		return false, fmt.Errorf("query mention: %w", err)
	}
}

const mentionColumns = "id, company_id, title, content, url, source, sentiment, sentiment_score, published_at, created_at"

// Mentions returns a company's mentions newest first; mentions with an
// unknown publish date sort last. The optional filter matches the
// stored sentiment label exactly (case-insensitive input).
func (r *SQLiteRepository) Mentions(ctx context.Context, companyID int64, sentimentFilter string) ([]domain.Mention, error) {
	builder := sq.Select(strings.Split(mentionColumns, ", ")...).
		From("mentions").
		Where(sq.Eq{"company_id": companyID})
	if sentimentFilter != "" {
		builder = builder.Where(sq.Eq{"sentiment": strings.ToUpper(sentimentFilter)})
	}
	builder = builder.OrderBy("published_at IS NULL", "published_at DESC")

	return r.queryMentions(ctx, builder)
}

// Timeline returns a company's dated mentions oldest first, optionally
// restricted to the trailing window of days.
func (r *SQLiteRepository) Timeline(ctx context.Context, companyID int64, days int) ([]domain.Mention, error) {
	builder := sq.Select(strings.Split(mentionColumns, ", ")...).
		From("mentions").
		Where(sq.Eq{"company_id": companyID})
	if days > 0 {
		cutoff := time.Now().UTC().AddDate(0, 0, -days)
		builder = builder.Where(sq.GtOrEq{"published_at": cutoff})
	}
	builder = builder.OrderBy("published_at IS NULL", "published_at ASC")

	return r.queryMentions(ctx, builder)
}

func (r *SQLiteRepository) queryMentions(ctx context.Context, builder sq.SelectBuilder) ([]domain.Mention, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query mentions: %w", err)
	}
	defer rows.Close()

	var mentions []domain.Mention
	for rows.Next() {
		mention, err := scanMention(rows)
		if err != nil {
			return nil, fmt.Errorf("scan mention: %w", err)
		}
		mentions = append(mentions, mention)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return mentions, nil
}

// SentimentStats buckets a company's mentions by label. Labels outside
// the three known values count as neutral so that the bucket sum always
// equals the total.
func (r *SQLiteRepository) SentimentStats(ctx context.Context, companyID int64) (domain.SentimentStats, error) {
	query, args, err := sq.Select("sentiment", "sentiment_score").
		From("mentions").
		Where(sq.Eq{"company_id": companyID}).
		ToSql()
	if err != nil {
		return domain.SentimentStats{}, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return domain.SentimentStats{}, fmt.Errorf("query mentions: %w", err)
	}
	defer rows.Close()

	var stats domain.SentimentStats
	var scoreSum float64
	var scoreCount int

	for rows.Next() {
		var label string
		var score sql.NullFloat64
		if err := rows.Scan(&label, &score); err != nil {
			return domain.SentimentStats{}, fmt.Errorf("scan mention: %w", err)
		}

		switch label {
		case sentiment.LabelPositive:
			stats.Positive++
		case sentiment.LabelNegative:
			stats.Negative++
		default:
			stats.Neutral++
		}
		stats.Total++

		if score.Valid {
			scoreSum += score.Float64
			scoreCount++
		}
	}
	if err := rows.Err(); err != nil {
		return domain.SentimentStats{}, fmt.Errorf("rows iteration: %w", err)
	}

	if scoreCount > 0 {
		stats.AvgScore = scoreSum / float64(scoreCount)
	}

	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCompany(row rowScanner) (domain.Company, error) {
	var company domain.Company
	var aliases string
	if err := row.Scan(&company.ID, &company.Name, &aliases, &company.CreatedAt); err != nil {
		return domain.Company{}, err
	}
	company.Aliases = splitAliases(aliases)
	return company, nil
}

func scanMention(row rowScanner) (domain.Mention, error) {
	var mention domain.Mention
	var score sql.NullFloat64
	var published sql.NullTime
	err := row.Scan(
		&mention.ID,
		&mention.CompanyID,
		&mention.Title,
		&mention.Content,
		&mention.URL,
		&mention.Source,
		&mention.Sentiment,
		&score,
		&published,
		&mention.CreatedAt,
	)
	if err != nil {
		return domain.Mention{}, err
	}
	if score.Valid {
		mention.SentimentScore = score.Float64
	}
	if published.Valid {
		t := published.Time
		mention.PublishedAt = &t
	}
	return mention, nil
}

func joinAliases(aliases []string) string {
	return strings.Join(trimAliases(aliases), ",")
}

func trimAliases(aliases []string) []string {
	trimmed := make([]string, 0, len(aliases))
	for _, alias := range aliases {
		if clean := strings.TrimSpace(alias); clean != "" {
			trimmed = append(trimmed, clean)
		}
	}
	return trimmed
}

func splitAliases(stored string) []string {
	if stored == "" {
		return nil
	}
	return trimAliases(strings.Split(stored, ","))
}

func (r *SQLiteRepository) debug(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}

func (r *SQLiteRepository) warn(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Warn(msg, args...)
	}
}
