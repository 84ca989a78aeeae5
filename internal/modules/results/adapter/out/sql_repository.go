package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"fitlab/internal/modules/results/domain"
	"fitlab/internal/platform/category"
	apperrors "fitlab/internal/platform/errors"
)

const (
	driverSQLite   = "sqlite"
	driverPostgres = "postgres"
)

const sqliteDDL = `
CREATE TABLE IF NOT EXISTS test_results (
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  id TEXT NOT NULL UNIQUE,
  athlete_id TEXT NOT NULL DEFAULT '',
  test_name TEXT NOT NULL,
  category TEXT NOT NULL,
  score REAL NOT NULL,
  unit TEXT NOT NULL,
  date TEXT NOT NULL,
  percentile INTEGER NOT NULL,
  notes TEXT NOT NULL DEFAULT '',
  video_url TEXT NOT NULL DEFAULT '',
  personal_best INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS test_results_recent ON test_results (date DESC, seq DESC);
`

const postgresDDL = `
CREATE TABLE IF NOT EXISTS test_results (
  seq BIGSERIAL PRIMARY KEY,
  id TEXT NOT NULL UNIQUE,
  athlete_id TEXT NOT NULL DEFAULT '',
  test_name TEXT NOT NULL,
  category TEXT NOT NULL,
  score DOUBLE PRECISION NOT NULL,
  unit TEXT NOT NULL,
  date TEXT NOT NULL,
  percentile INTEGER NOT NULL,
  notes TEXT NOT NULL DEFAULT '',
  video_url TEXT NOT NULL DEFAULT '',
  personal_best BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS test_results_recent ON test_results (date DESC, seq DESC);
`

const resultColumns = `id, athlete_id, test_name, category, score, unit, date, percentile, notes, video_url, personal_best`

type resultRow struct {
	ID           string  `db:"id"`
	AthleteID    string  `db:"athlete_id"`
	TestName     string  `db:"test_name"`
	Category     string  `db:"category"`
	Score        float64 `db:"score"`
	Unit         string  `db:"unit"`
	Date         string  `db:"date"`
	Percentile   int     `db:"percentile"`
	Notes        string  `db:"notes"`
	VideoURL     string  `db:"video_url"`
	PersonalBest bool    `db:"personal_best"`
}

func (row resultRow) toDomain() domain.TestResult {
	return domain.TestResult{
		ID:           row.ID,
		AthleteID:    row.AthleteID,
		TestName:     row.TestName,
		Category:     category.Parse(row.Category),
		Score:        row.Score,
		Unit:         row.Unit,
		Date:         row.Date,
		Percentile:   row.Percentile,
		Notes:        row.Notes,
		VideoURL:     row.VideoURL,
		PersonalBest: row.PersonalBest,
	}
}

func rowFromDomain(r domain.TestResult) resultRow {
	return resultRow{
		ID:           r.ID,
		AthleteID:    r.AthleteID,
		TestName:     r.TestName,
		Category:     r.Category.String(),
		Score:        r.Score,
		Unit:         r.Unit,
		Date:         r.Date,
		Percentile:   r.Percentile,
		Notes:        r.Notes,
		VideoURL:     r.VideoURL,
		PersonalBest: r.PersonalBest,
	}
}

// SQLRepository stores results in SQLite or PostgreSQL. Saving an
// existing id replaces the row and makes it the newest entry.
type SQLRepository struct {
	db   *sqlx.DB
	feed *feed
}

func OpenSQLite(dbPath string) (*SQLRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	sqlx.BindDriver(driverSQLite, sqlx.QUESTION)
	db, err := sqlx.Open(driverSQLite, dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	return newSQLRepository(db, sqliteDDL)
}

func OpenPostgres(dsn string) (*SQLRepository, error) {
	db, err := sqlx.Open(driverPostgres, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return newSQLRepository(db, postgresDDL)
}

func newSQLRepository(db *sqlx.DB, ddl string) (*SQLRepository, error) {
	repo := &SQLRepository{db: db, feed: newFeed()}
	if _, err := db.ExecContext(context.Background(), ddl); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create test_results table: %w", err)
	}
	return repo, nil
}

func (s *SQLRepository) ObserveAll(ctx context.Context) (<-chan []domain.TestResult, error) {
	return s.feed.observe(ctx, func(ctx context.Context) ([]domain.TestResult, error) {
		return s.Find(ctx, domain.Filter{Order: domain.OrderNewest})
	})
}

func (s *SQLRepository) Save(ctx context.Context, result domain.TestResult) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM test_results WHERE id = ?`), result.ID); err != nil {
		return fmt.Errorf("replace result %s: %w", result.ID, err)
	}
	insert := `INSERT INTO test_results (` + resultColumns + `)
VALUES (:id, :athlete_id, :test_name, :category, :score, :unit, :date, :percentile, :notes, :video_url, :personal_best)`
	if _, err := tx.NamedExecContext(ctx, insert, rowFromDomain(result)); err != nil {
		return fmt.Errorf("insert result %s: %w", result.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit result %s: %w", result.ID, err)
	}
	s.feed.notify()
	return nil
}

func (s *SQLRepository) FindByID(ctx context.Context, id string) (domain.TestResult, error) {
	var row resultRow
	query := s.db.Rebind(`SELECT ` + resultColumns + ` FROM test_results WHERE id = ?`)
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.TestResult{}, fmt.Errorf("result %s: %w", id, apperrors.ErrNotFound)
		}
		return domain.TestResult{}, fmt.Errorf("get result %s: %w", id, err)
	}
	return row.toDomain(), nil
}

func (s *SQLRepository) Find(ctx context.Context, filter domain.Filter) ([]domain.TestResult, error) {
	var (
		where []string
		args  []any
	)
	if filter.AthleteID != "" {
		where = append(where, "athlete_id = ?")
		args = append(args, filter.AthleteID)
	}
	if filter.TestName != "" {
		where = append(where, "test_name = ?")
		args = append(args, filter.TestName)
	}
	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, filter.Category.String())
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + resultColumns + ` FROM test_results`)
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	if filter.Order == domain.OrderBest {
		b.WriteString(" ORDER BY CASE WHEN category = ? THEN -score ELSE score END DESC, seq DESC")
		args = append(args, category.Speed.String())
	} else {
		b.WriteString(" ORDER BY date DESC, seq DESC")
	}
	if filter.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, filter.Limit)
	}

	var rows []resultRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(b.String()), args...); err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	out := make([]domain.TestResult, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (s *SQLRepository) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM test_results WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete result %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("result %s: %w", id, apperrors.ErrNotFound)
	}
	s.feed.notify()
	return nil
}

func (s *SQLRepository) Close() error {
	s.feed.close()
	return s.db.Close()
}
