package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "bop/internal/errors"
	"bop/internal/models"
)

// SQLiteStore implements Journal using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and creates if needed) the journal database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, apperrors.Wrapf(apperrors.ErrJournal, "creating %s: %v", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Batch runs save from several workers at once.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS quotes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at DATETIME NOT NULL,
		style TEXT NOT NULL,
		kind TEXT NOT NULL,
		steps INTEGER NOT NULL,
		spot REAL NOT NULL,
		up REAL NOT NULL,
		down REAL NOT NULL,
		strike REAL NOT NULL,
		rate REAL NOT NULL,
		engine TEXT,
		policy TEXT,
		price REAL,
		p_star REAL,
		nodes INTEGER,
		error TEXT,
		elapsed_ns INTEGER,
		run_id TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_quotes_created ON quotes(created_at);
	CREATE INDEX IF NOT EXISTS idx_quotes_contract ON quotes(style, kind);
	CREATE INDEX IF NOT EXISTS idx_quotes_run ON quotes(run_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveQuote inserts a quote and sets its ID. A zero CreatedAt is set to now.
func (s *SQLiteStore) SaveQuote(ctx context.Context, q *models.Quote) error {
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now()
	}
	q.CreatedAt = q.CreatedAt.UTC()

	var price sql.NullFloat64
	if q.Price != nil {
		price = sql.NullFloat64{Float64: *q.Price, Valid: true}
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO quotes (created_at, style, kind, steps, spot, up, down, strike, rate,
			engine, policy, price, p_star, nodes, error, elapsed_ns, run_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, q.CreatedAt, q.Style, q.Kind, q.Steps, q.Spot, q.Up, q.Down, q.Strike, q.Rate,
		q.Engine, q.Policy, price, q.RiskNeutral, q.Nodes, q.Error, int64(q.Elapsed), q.RunID)
	if err != nil {
		return apperrors.Wrapf(apperrors.ErrJournal, "failed to insert quote: %v", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return apperrors.Wrapf(apperrors.ErrJournal, "failed to read quote id: %v", err)
	}
	q.ID = id
	return nil
}

// GetQuotes retrieves quotes, newest first.
func (s *SQLiteStore) GetQuotes(ctx context.Context, filter QuoteFilter) ([]models.Quote, error) {
	query := `SELECT id, created_at, style, kind, steps, spot, up, down, strike, rate,
		engine, policy, price, p_star, nodes, error, elapsed_ns, run_id FROM quotes WHERE 1=1`
	args := []interface{}{}

	if filter.Style != "" {
		query += " AND style = ?"
		args = append(args, filter.Style)
	}
	if filter.Kind != "" {
		query += " AND kind = ?"
		args = append(args, filter.Kind)
	}
	if !filter.Since.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, filter.Since.UTC())
	}
	if filter.RunID != "" {
		query += " AND run_id = ?"
		args = append(args, filter.RunID)
	}
	if filter.FailedOnly {
		query += " AND price IS NULL"
	}

	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrJournal, "failed to query quotes: %v", err)
	}
	defer rows.Close()

	var quotes []models.Quote
	for rows.Next() {
		var q models.Quote
		var price sql.NullFloat64
		var engine, policy, errText, runID sql.NullString
		var pStar sql.NullFloat64
		var nodes, elapsed sql.NullInt64

		if err := rows.Scan(&q.ID, &q.CreatedAt, &q.Style, &q.Kind, &q.Steps, &q.Spot, &q.Up, &q.Down,
			&q.Strike, &q.Rate, &engine, &policy, &price, &pStar, &nodes, &errText, &elapsed, &runID); err != nil {
			return nil, apperrors.Wrapf(apperrors.ErrJournal, "failed to scan quote: %v", err)
		}

		q.Engine = engine.String
		q.Policy = policy.String
		q.RiskNeutral = pStar.Float64
		q.Nodes = int(nodes.Int64)
		q.Error = errText.String
		q.Elapsed = time.Duration(elapsed.Int64)
		q.RunID = runID.String
		if price.Valid {
			q.SetPrice(price.Float64)
		}
		quotes = append(quotes, q)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrJournal, "failed to read quotes: %v", err)
	}
	return quotes, nil
}
