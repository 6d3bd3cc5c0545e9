package db

import (
	"context"
	"database/sql"
	"fmt"
)

// specifications é JSONB: categorias e rótulos são chaves opacas, o banco
// nunca as trata como caminho.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS brands (
		id           TEXT PRIMARY KEY,
		clean_id     TEXT NOT NULL DEFAULT '',
		brand_code   TEXT NOT NULL DEFAULT '0',
		name         TEXT NOT NULL DEFAULT '',
		url          TEXT NOT NULL DEFAULT '',
		logo         TEXT,
		last_updated TIMESTAMPTZ NOT NULL DEFAULT now(),
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS brands_clean_id_idx ON brands (clean_id)`,
	`CREATE INDEX IF NOT EXISTS brands_name_idx ON brands (name)`,
	`CREATE TABLE IF NOT EXISTS products (
		id                 TEXT PRIMARY KEY,
		name               TEXT NOT NULL DEFAULT '',
		url                TEXT NOT NULL DEFAULT '',
		image              TEXT NOT NULL DEFAULT '',
		image_retina       TEXT,
		brand_id           TEXT NOT NULL DEFAULT '',
		specifications     JSONB NOT NULL DEFAULT '{}'::jsonb,
		specs_last_updated TIMESTAMPTZ,
		last_updated       TIMESTAMPTZ NOT NULL DEFAULT now(),
		created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS products_brand_id_idx ON products (brand_id)`,
	`CREATE TABLE IF NOT EXISTS sync_failures (
		id          UUID PRIMARY KEY,
		run_id      UUID NOT NULL,
		job         TEXT NOT NULL,
		target      TEXT NOT NULL,
		error       TEXT NOT NULL,
		occurred_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS sync_failures_job_idx ON sync_failures (job, occurred_at DESC)`,
}

// Migrate aplica o schema de forma idempotente.
func Migrate(ctx context.Context, conn *sql.DB) error {
	for i, stmt := range schema {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}
