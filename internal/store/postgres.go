package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/kesiliance/screening-cli/internal/db"
	"github.com/kesiliance/screening-cli/internal/model"
)

// PostgresStore implements Store on a pgx pool.
type PostgresStore struct {
	pool db.Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool; tests pass a pgxmock pool.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS entities (
	id         BIGSERIAL PRIMARY KEY,
	name       TEXT NOT NULL,
	country    TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS sanctions (
	id         BIGSERIAL PRIMARY KEY,
	name       TEXT NOT NULL,
	country    TEXT,
	source     TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_entities_name ON entities(name);
CREATE INDEX IF NOT EXISTS idx_sanctions_name ON sanctions(name);
CREATE INDEX IF NOT EXISTS idx_sanctions_source ON sanctions(source);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateEntity(ctx context.Context, e model.Entity) (*model.Entity, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO entities (name, country) VALUES ($1, NULLIF($2, '')) RETURNING id, created_at`,
		e.Name, e.Country,
	)
	if err := row.Scan(&e.ID, &e.CreatedAt); err != nil {
		return nil, eris.Wrap(err, "postgres: insert entity")
	}
	return &e, nil
}

func (s *PostgresStore) GetEntity(ctx context.Context, id int64) (*model.Entity, error) {
	var e model.Entity
	var country *string
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, country, created_at FROM entities WHERE id = $1`, id)
	if err := row.Scan(&e.ID, &e.Name, &country, &e.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrapf(err, "postgres: get entity %d", id)
	}
	if country != nil {
		e.Country = *country
	}
	return &e, nil
}

func (s *PostgresStore) ListEntities(ctx context.Context, f EntityFilter) ([]model.Entity, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, name, country, created_at FROM entities
		 WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
		 ORDER BY id DESC LIMIT $2 OFFSET $3`,
		f.Query, limit, f.Offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list entities")
	}
	defer rows.Close()

	var out []model.Entity
	for rows.Next() {
		var e model.Entity
		var country *string
		if err := rows.Scan(&e.ID, &e.Name, &country, &e.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan entity")
		}
		if country != nil {
			e.Country = *country
		}
		out = append(out, e)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list entities rows")
}

func (s *PostgresStore) ImportEntities(ctx context.Context, entities []model.Entity) (int64, error) {
	rows := make([][]any, 0, len(entities))
	for _, e := range entities {
		rows = append(rows, []any{e.Name, nullIfEmpty(e.Country)})
	}
	return db.CopyFrom(ctx, s.pool, "entities", []string{"name", "country"}, rows)
}

func (s *PostgresStore) ImportSanctions(ctx context.Context, sanctions []model.Sanction) (int64, error) {
	rows := make([][]any, 0, len(sanctions))
	for _, sa := range sanctions {
		rows = append(rows, []any{sa.Name, nullIfEmpty(sa.Country), nullIfEmpty(sa.Source)})
	}
	return db.CopyFrom(ctx, s.pool, "sanctions", []string{"name", "country", "source"}, rows)
}

func (s *PostgresStore) ListSanctions(ctx context.Context, f SanctionFilter) ([]model.Sanction, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, name, country, source, created_at FROM sanctions
		 WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
		   AND ($2 = '' OR source = $2)
		 ORDER BY id DESC LIMIT $3 OFFSET $4`,
		f.Query, f.Source, limit, f.Offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list sanctions")
	}
	defer rows.Close()
	return scanSanctions(rows)
}

func (s *PostgresStore) AllSanctions(ctx context.Context) ([]model.Sanction, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, country, source, created_at FROM sanctions ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: all sanctions")
	}
	defer rows.Close()
	return scanSanctions(rows)
}

func scanSanctions(rows pgx.Rows) ([]model.Sanction, error) {
	var out []model.Sanction
	for rows.Next() {
		var sa model.Sanction
		var country, source *string
		if err := rows.Scan(&sa.ID, &sa.Name, &country, &source, &sa.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan sanction")
		}
		if country != nil {
			sa.Country = *country
		}
		if source != nil {
			sa.Source = *source
		}
		out = append(out, sa)
	}
	return out, eris.Wrap(rows.Err(), "postgres: sanction rows")
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
