package store

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/sims-analytics/simsmonitor/models"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	return &Store{DB: db}, mock, func() { db.Close() }
}

func TestUpsertArticleReplacesMatches(t *testing.T) {
	st, mock, closeDB := newMock(t)
	defer closeDB()

	published := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	a := models.Article{
		URL:         "https://ndtv.com/1",
		Title:       "Bangladesh trade talks conclude",
		PublishedAt: &published,
		Source:      "ndtv.com",
		Sentiment:   "Positive",
		FactCheck:   "Unverified",
		BDSummary:   "Covered",
		IntlSummary: "Not covered",
		Summary: &models.ArticleSummary{
			BangladeshiMatches: []models.MatchRef{
				{Title: "Same story", Source: "thedailystar.net", URL: "https://thedailystar.net/1"},
			},
			InternationalMatches: []models.MatchRef{
				{Title: "Same story abroad", Source: "bbc.com", URL: "https://bbc.com/1"},
			},
		},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO articles`).
		WithArgs(a.URL, a.Title, sqlmock.AnyArg(), sqlmock.AnyArg(), a.Source,
			a.Sentiment, a.FactCheck, a.BDSummary, a.IntlSummary,
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectExec(`DELETE FROM article_matches WHERE article_id=\$1`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO article_matches`).
		WithArgs(int64(7), MatchKindBangladeshi, 0, "Same story", "thedailystar.net", "https://thedailystar.net/1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO article_matches`).
		WithArgs(int64(7), MatchKindInternational, 0, "Same story abroad", "bbc.com", "https://bbc.com/1").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	if err := st.UpsertArticle(context.Background(), &a); err != nil {
		t.Fatalf("UpsertArticle: %v", err)
	}
	if a.ID != 7 {
		t.Fatalf("expected ID populated, got %d", a.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpsertArticleTwiceKeepsIdentity(t *testing.T) {
	st, mock, closeDB := newMock(t)
	defer closeDB()

	a := models.Article{
		URL:       "https://ndtv.com/1",
		Title:     "Bangladesh trade talks conclude",
		Source:    "ndtv.com",
		Sentiment: "Positive",
		Summary: &models.ArticleSummary{
			BangladeshiMatches: []models.MatchRef{
				{Title: "Same story", Source: "thedailystar.net", URL: "https://thedailystar.net/1"},
			},
		},
	}

	// Re-ingesting the same URL hits the conflict branch: same row id,
	// matches cleared and rewritten each time.
	for i := 0; i < 2; i++ {
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO articles`).
			WithArgs(a.URL, a.Title, sqlmock.AnyArg(), sqlmock.AnyArg(), a.Source,
				a.Sentiment, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
				sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
				sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
		mock.ExpectExec(`DELETE FROM article_matches WHERE article_id=\$1`).
			WithArgs(int64(7)).
			WillReturnResult(sqlmock.NewResult(0, int64(i)))
		mock.ExpectExec(`INSERT INTO article_matches`).
			WithArgs(int64(7), MatchKindBangladeshi, 0, "Same story", "thedailystar.net", "https://thedailystar.net/1").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()
	}

	if err := st.UpsertArticle(context.Background(), &a); err != nil {
		t.Fatalf("first UpsertArticle: %v", err)
	}
	first := a.ID
	if err := st.UpsertArticle(context.Background(), &a); err != nil {
		t.Fatalf("second UpsertArticle: %v", err)
	}
	if a.ID != first || a.ID != 7 {
		t.Fatalf("expected stable id 7 across re-ingest, got %d then %d", first, a.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpsertArticleCapsMatchesAtThree(t *testing.T) {
	st, mock, closeDB := newMock(t)
	defer closeDB()

	var refs []models.MatchRef
	for i := 0; i < 5; i++ {
		refs = append(refs, models.MatchRef{Title: "m", Source: "s", URL: "u"})
	}
	a := models.Article{
		URL:     "https://ndtv.com/1",
		Title:   "t",
		Summary: &models.ArticleSummary{BangladeshiMatches: refs},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO articles`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectExec(`DELETE FROM article_matches`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	for i := 0; i < 3; i++ {
		mock.ExpectExec(`INSERT INTO article_matches`).
			WillReturnResult(sqlmock.NewResult(int64(i+1), 1))
	}
	mock.ExpectCommit()

	if err := st.UpsertArticle(context.Background(), &a); err != nil {
		t.Fatalf("UpsertArticle: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestMatchesPartitionsByKind(t *testing.T) {
	st, mock, closeDB := newMock(t)
	defer closeDB()

	mock.ExpectQuery(`SELECT kind, title, source, COALESCE\(url, ''\)`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"kind", "title", "source", "url"}).
			AddRow("bangladeshi", "bd one", "thedailystar.net", "https://thedailystar.net/1").
			AddRow("bangladeshi", "bd two", "bdnews24.com", "https://bdnews24.com/1").
			AddRow("international", "intl one", "bbc.com", "https://bbc.com/1"))

	bd, intl, err := st.Matches(context.Background(), 7)
	if err != nil {
		t.Fatalf("Matches: %v", err)
	}
	if len(bd) != 2 || len(intl) != 1 {
		t.Fatalf("expected 2 bd and 1 intl, got %d / %d", len(bd), len(intl))
	}
	if bd[0].Title != "bd one" || intl[0].URL != "https://bbc.com/1" {
		t.Fatalf("unexpected partitions: %+v / %+v", bd, intl)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func articleRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "url", "title", "published_at", "author", "source", "sentiment",
		"fact_check", "bd_summary", "intl_summary", "image", "favicon", "score",
		"extras", "full_text", "summary",
	})
}

func TestGetArticleScansJSONColumns(t *testing.T) {
	st, mock, closeDB := newMock(t)
	defer closeDB()

	published := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT .+ FROM articles WHERE id=\$1`).
		WithArgs(int64(7)).
		WillReturnRows(articleRows().AddRow(
			int64(7), "https://ndtv.com/1", "Bangladesh trade talks conclude",
			published, "Anika Rahman", "ndtv.com", "Positive", "Unverified",
			"Covered", "Not covered", nil, nil, 0.87,
			[]byte(`{"links":["https://a.example"]}`), "full text",
			[]byte(`{"source":"ndtv.com","sentiment":"Positive","fact_check":"Unverified","category":"Economy","comparison":{"bangladeshi_media":"Covered","international_media":"Not covered"}}`),
		))

	a, err := st.GetArticle(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetArticle: %v", err)
	}
	if a.PublishedAt == nil || !a.PublishedAt.Equal(published) {
		t.Fatalf("unexpected published_at: %v", a.PublishedAt)
	}
	if len(a.Links) != 1 || a.Links[0] != "https://a.example" {
		t.Fatalf("unexpected links: %v", a.Links)
	}
	if a.Summary == nil || a.Summary.Category != "Economy" {
		t.Fatalf("unexpected summary: %+v", a.Summary)
	}
	if a.Score == nil || *a.Score != 0.87 {
		t.Fatalf("unexpected score: %v", a.Score)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListArticlesAppliesFilters(t *testing.T) {
	st, mock, closeDB := newMock(t)
	defer closeDB()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM articles WHERE source = \$1 AND sentiment = \$2`).
		WithArgs("ndtv.com", "Negative").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT .+ FROM articles WHERE source = \$1 AND sentiment = \$2 ORDER BY published_at DESC NULLS LAST, id DESC LIMIT 20 OFFSET 0`).
		WithArgs("ndtv.com", "Negative").
		WillReturnRows(articleRows().AddRow(
			int64(3), "https://ndtv.com/3", "Bangladesh floods worsen",
			nil, nil, "ndtv.com", "Negative", "Unverified",
			"Not covered", "Not covered", nil, nil, nil, nil, nil, nil,
		))

	arts, total, err := st.ListArticles(context.Background(), ArticleFilter{Source: "ndtv.com", Sentiment: "Negative"})
	if err != nil {
		t.Fatalf("ListArticles: %v", err)
	}
	if total != 1 || len(arts) != 1 {
		t.Fatalf("expected 1/1, got %d/%d", total, len(arts))
	}
	if arts[0].PublishedAt != nil {
		t.Fatalf("expected nil published_at, got %v", arts[0].PublishedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListArticlesSearchMatchesTitleOrText(t *testing.T) {
	st, mock, closeDB := newMock(t)
	defer closeDB()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM articles WHERE \(title ILIKE \$1 OR full_text ILIKE \$2\)`).
		WithArgs("%flood%", "%flood%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT .+ FROM articles WHERE \(title ILIKE \$1 OR full_text ILIKE \$2\)`).
		WithArgs("%flood%", "%flood%").
		WillReturnRows(articleRows())

	arts, total, err := st.ListArticles(context.Background(), ArticleFilter{Search: "flood"})
	if err != nil {
		t.Fatalf("ListArticles: %v", err)
	}
	if total != 0 || len(arts) != 0 {
		t.Fatalf("expected empty page, got %d/%d", total, len(arts))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestIngestionRunLifecycle(t *testing.T) {
	st, mock, closeDB := newMock(t)
	defer closeDB()

	mock.ExpectExec(`INSERT INTO ingestion_runs`).
		WithArgs("run-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE ingestion_runs`).
		WithArgs("run-1", "succeeded", 5, 2, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := st.CreateIngestionRun(context.Background(), "run-1"); err != nil {
		t.Fatalf("CreateIngestionRun: %v", err)
	}
	if err := st.FinishIngestionRun(context.Background(), "run-1", "succeeded", 5, 2, nil); err != nil {
		t.Fatalf("FinishIngestionRun: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
