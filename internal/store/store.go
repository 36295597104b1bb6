// Package store persists canonical articles in Postgres. Articles are
// keyed by URL: ingestion upserts, match lists are replaced wholesale in
// the same transaction, and readers always see a committed snapshot.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"github.com/sims-analytics/simsmonitor/models"
)

type Store struct {
	DB *sql.DB
}

// Match list kinds persisted in article_matches.
const (
	MatchKindBangladeshi   = "bangladeshi"
	MatchKindInternational = "international"
)

// maxStoredMatches caps each partition per article.
const maxStoredMatches = 3

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const articleColumns = "id, url, title, published_at, author, source, sentiment, fact_check, bd_summary, intl_summary, image, favicon, score, extras, full_text, summary"

// NewWithDSN opens a Postgres connection and verifies it.
func NewWithDSN(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{DB: db}, nil
}

// Ping verifies the database connection, for health checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// UpsertArticle writes the article and replaces both match partitions in
// a single transaction, so a failure rolls back this article's writes
// only. The article's ID is populated on return.
func (s *Store) UpsertArticle(ctx context.Context, a *models.Article) error {
	extras, err := json.Marshal(map[string]any{"links": a.Links})
	if err != nil {
		return fmt.Errorf("marshal extras: %w", err)
	}
	var summary []byte
	if a.Summary != nil {
		if summary, err = json.Marshal(a.Summary); err != nil {
			return fmt.Errorf("marshal summary: %w", err)
		}
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO articles (url, title, published_at, author, source, sentiment, fact_check,
			bd_summary, intl_summary, image, favicon, score, extras, full_text, summary, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,NOW())
		ON CONFLICT (url) DO UPDATE SET
			title=EXCLUDED.title, published_at=EXCLUDED.published_at, author=EXCLUDED.author,
			source=EXCLUDED.source, sentiment=EXCLUDED.sentiment, fact_check=EXCLUDED.fact_check,
			bd_summary=EXCLUDED.bd_summary, intl_summary=EXCLUDED.intl_summary,
			image=EXCLUDED.image, favicon=EXCLUDED.favicon, score=EXCLUDED.score,
			extras=EXCLUDED.extras, full_text=EXCLUDED.full_text, summary=EXCLUDED.summary,
			updated_at=NOW()
		RETURNING id`,
		a.URL, a.Title, nullTime(a.PublishedAt), nullString(a.Author), a.Source,
		a.Sentiment, a.FactCheck, a.BDSummary, a.IntlSummary,
		nullString(a.Image), nullString(a.Favicon), nullFloat(a.Score),
		extras, nullString(a.FullText), nullBytes(summary),
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("upsert article: %w", err)
	}

	// Matches are recomputed per ingestion, never appended.
	if _, err := tx.ExecContext(ctx, `DELETE FROM article_matches WHERE article_id=$1`, a.ID); err != nil {
		return fmt.Errorf("clear matches: %w", err)
	}
	if a.Summary != nil {
		if err := insertMatches(ctx, tx, a.ID, MatchKindBangladeshi, a.Summary.BangladeshiMatches); err != nil {
			return err
		}
		if err := insertMatches(ctx, tx, a.ID, MatchKindInternational, a.Summary.InternationalMatches); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func insertMatches(ctx context.Context, tx *sql.Tx, articleID int64, kind string, refs []models.MatchRef) error {
	for i, ref := range refs {
		if i >= maxStoredMatches {
			break
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO article_matches (article_id, kind, position, title, source, url)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			articleID, kind, i, ref.Title, ref.Source, ref.URL)
		if err != nil {
			return fmt.Errorf("insert %s match: %w", kind, err)
		}
	}
	return nil
}

// GetArticle loads one article by ID.
func (s *Store) GetArticle(ctx context.Context, id int64) (models.Article, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE id=$1`, id)
	return scanArticle(row)
}

// Matches returns the stored match partitions for an article, in
// insertion order.
func (s *Store) Matches(ctx context.Context, articleID int64) (bd, intl []models.MatchRef, err error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT kind, title, source, COALESCE(url, '')
		FROM article_matches WHERE article_id=$1
		ORDER BY kind, position`, articleID)
	if err != nil {
		return nil, nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var kind string
		var ref models.MatchRef
		if err := rows.Scan(&kind, &ref.Title, &ref.Source, &ref.URL); err != nil {
			return nil, nil, fmt.Errorf("scan match: %w", err)
		}
		if kind == MatchKindBangladeshi {
			bd = append(bd, ref)
		} else {
			intl = append(intl, ref)
		}
	}
	return bd, intl, rows.Err()
}

// AllArticles returns every stored article in storage (insertion) order,
// which is also the tie-break order for capped fuzzy matches.
func (s *Store) AllArticles(ctx context.Context) ([]models.Article, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+articleColumns+` FROM articles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()
	return collectArticles(rows)
}

// ArticleFilter narrows listing queries. Start is inclusive; End is an
// exclusive upper bound (handlers push date-only ends forward a day so
// the whole end date is covered).
type ArticleFilter struct {
	Source    string
	Sentiment string
	Search    string
	Start     *time.Time
	End       *time.Time
	Limit     int
	Offset    int
}

func (f ArticleFilter) conditions() []sq.Sqlizer {
	var conds []sq.Sqlizer
	if f.Source != "" {
		conds = append(conds, sq.Eq{"source": f.Source})
	}
	if f.Sentiment != "" {
		conds = append(conds, sq.Eq{"sentiment": f.Sentiment})
	}
	if f.Start != nil {
		conds = append(conds, sq.GtOrEq{"published_at": *f.Start})
	}
	if f.End != nil {
		conds = append(conds, sq.Lt{"published_at": *f.End})
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		conds = append(conds, sq.Or{sq.ILike{"title": like}, sq.ILike{"full_text": like}})
	}
	return conds
}

// ListArticles returns one page of matching articles (publish date
// descending, undated last) plus the total match count.
func (s *Store) ListArticles(ctx context.Context, f ArticleFilter) ([]models.Article, int, error) {
	conds := f.conditions()

	countQB := psql.Select("COUNT(*)").From("articles")
	for _, c := range conds {
		countQB = countQB.Where(c)
	}
	query, args, err := countQB.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}
	var total int
	if err := s.DB.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count articles: %w", err)
	}

	if f.Limit <= 0 {
		f.Limit = 20
	}
	listQB := psql.Select(articleColumns).From("articles").
		OrderBy("published_at DESC NULLS LAST", "id DESC").
		Limit(uint64(f.Limit)).Offset(uint64(f.Offset))
	for _, c := range conds {
		listQB = listQB.Where(c)
	}
	query, args, err = listQB.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list query: %w", err)
	}
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()
	arts, err := collectArticles(rows)
	return arts, total, err
}

// CreateIngestionRun opens an audit row for an ingestion pass.
func (s *Store) CreateIngestionRun(ctx context.Context, id string) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO ingestion_runs (id, status) VALUES ($1, 'running')`, id)
	if err != nil {
		return fmt.Errorf("create ingestion run: %w", err)
	}
	return nil
}

// FinishIngestionRun closes an audit row with its final counts.
func (s *Store) FinishIngestionRun(ctx context.Context, id, status string, ingested, skipped int, errMsg *string) error {
	_, err := s.DB.ExecContext(ctx, `
		UPDATE ingestion_runs
		SET status=$2, ingested=$3, skipped=$4, error=$5, finished_at=NOW()
		WHERE id=$1`,
		id, status, ingested, skipped, errMsg)
	if err != nil {
		return fmt.Errorf("finish ingestion run: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (models.Article, error) {
	var (
		a           models.Article
		publishedAt sql.NullTime
		author      sql.NullString
		image       sql.NullString
		favicon     sql.NullString
		score       sql.NullFloat64
		fullText    sql.NullString
		extras      []byte
		summary     []byte
	)
	err := row.Scan(&a.ID, &a.URL, &a.Title, &publishedAt, &author, &a.Source,
		&a.Sentiment, &a.FactCheck, &a.BDSummary, &a.IntlSummary,
		&image, &favicon, &score, &extras, &fullText, &summary)
	if err != nil {
		return models.Article{}, fmt.Errorf("scan article: %w", err)
	}
	if publishedAt.Valid {
		t := publishedAt.Time
		a.PublishedAt = &t
	}
	a.Author = author.String
	a.Image = image.String
	a.Favicon = favicon.String
	a.FullText = fullText.String
	if score.Valid {
		v := score.Float64
		a.Score = &v
	}
	if len(extras) > 0 {
		var e struct {
			Links []string `json:"links"`
		}
		if err := json.Unmarshal(extras, &e); err == nil {
			a.Links = e.Links
		}
	}
	if len(summary) > 0 {
		var s models.ArticleSummary
		if err := json.Unmarshal(summary, &s); err == nil {
			a.Summary = &s
		}
	}
	return a, nil
}

func collectArticles(rows *sql.Rows) ([]models.Article, error) {
	var out []models.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
