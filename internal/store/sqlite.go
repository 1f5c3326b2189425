package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/kesiliance/screening-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. This is the
// default backend; the original deployment ran on a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	// One connection keeps :memory: databases coherent and sidesteps
	// SQLITE_BUSY on concurrent writes.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS entities (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL,
	country    TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS sanctions (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL,
	country    TEXT,
	source     TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_entities_name ON entities(name);
CREATE INDEX IF NOT EXISTS idx_sanctions_name ON sanctions(name);
CREATE INDEX IF NOT EXISTS idx_sanctions_source ON sanctions(source);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateEntity(ctx context.Context, e model.Entity) (*model.Entity, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO entities (name, country, created_at) VALUES (?, NULLIF(?, ''), ?)`,
		e.Name, e.Country, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert entity")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: entity id")
	}
	e.ID = id
	e.CreatedAt = now
	return &e, nil
}

func (s *SQLiteStore) GetEntity(ctx context.Context, id int64) (*model.Entity, error) {
	var e model.Entity
	var country sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, country, created_at FROM entities WHERE id = ?`, id,
	).Scan(&e.ID, &e.Name, &country, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get entity %d", id)
	}
	e.Country = country.String
	return &e, nil
}

func (s *SQLiteStore) ListEntities(ctx context.Context, f EntityFilter) ([]model.Entity, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, country, created_at FROM entities
		 WHERE (? = '' OR name LIKE '%' || ? || '%' COLLATE NOCASE)
		 ORDER BY id DESC LIMIT ? OFFSET ?`,
		f.Query, f.Query, limit, f.Offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list entities")
	}
	defer rows.Close()

	var out []model.Entity
	for rows.Next() {
		var e model.Entity
		var country sql.NullString
		if err := rows.Scan(&e.ID, &e.Name, &country, &e.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan entity")
		}
		e.Country = country.String
		out = append(out, e)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: entity rows")
}

func (s *SQLiteStore) ImportEntities(ctx context.Context, entities []model.Entity) (int64, error) {
	return s.bulkInsert(ctx,
		`INSERT INTO entities (name, country, created_at) VALUES (?, NULLIF(?, ''), ?)`,
		len(entities),
		func(i int) []any {
			return []any{entities[i].Name, entities[i].Country, time.Now().UTC()}
		})
}

func (s *SQLiteStore) ImportSanctions(ctx context.Context, sanctions []model.Sanction) (int64, error) {
	return s.bulkInsert(ctx,
		`INSERT INTO sanctions (name, country, source, created_at) VALUES (?, NULLIF(?, ''), NULLIF(?, ''), ?)`,
		len(sanctions),
		func(i int) []any {
			return []any{sanctions[i].Name, sanctions[i].Country, sanctions[i].Source, time.Now().UTC()}
		})
}

// bulkInsert runs the statement for each row inside one transaction.
func (s *SQLiteStore) bulkInsert(ctx context.Context, query string, n int, args func(i int) []any) (int64, error) {
	if n == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare bulk insert")
	}
	defer stmt.Close() //nolint:errcheck

	var inserted int64
	for i := range n {
		if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
			return 0, eris.Wrapf(err, "sqlite: bulk insert row %d", i)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit bulk insert")
	}
	return inserted, nil
}

func (s *SQLiteStore) ListSanctions(ctx context.Context, f SanctionFilter) ([]model.Sanction, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, country, source, created_at FROM sanctions
		 WHERE (? = '' OR name LIKE '%' || ? || '%' COLLATE NOCASE)
		   AND (? = '' OR source = ?)
		 ORDER BY id DESC LIMIT ? OFFSET ?`,
		f.Query, f.Query, f.Source, f.Source, limit, f.Offset)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list sanctions")
	}
	defer rows.Close()
	return scanSQLiteSanctions(rows)
}

func (s *SQLiteStore) AllSanctions(ctx context.Context) ([]model.Sanction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, country, source, created_at FROM sanctions ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: all sanctions")
	}
	defer rows.Close()
	return scanSQLiteSanctions(rows)
}

func scanSQLiteSanctions(rows *sql.Rows) ([]model.Sanction, error) {
	var out []model.Sanction
	for rows.Next() {
		var sa model.Sanction
		var country, source sql.NullString
		if err := rows.Scan(&sa.ID, &sa.Name, &country, &source, &sa.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan sanction")
		}
		sa.Country = country.String
		sa.Source = source.String
		out = append(out, sa)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: sanction rows")
}
