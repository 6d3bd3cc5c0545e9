package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"catalogsync/internal/model"
)

// PostgresStore persiste marcas e produtos. O merge campo a campo é feito no
// próprio INSERT ... ON CONFLICT, então upserts concorrentes do mesmo id
// convergem sem read-modify-write.
type PostgresStore struct {
	DB *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{DB: pool}
}

const brandColumns = `id, clean_id, brand_code, name, url, COALESCE(logo, ''), last_updated`

const productColumns = `id, name, url, image, COALESCE(image_retina, ''), brand_id,
	specifications, specs_last_updated, last_updated`

type scanner interface {
	Scan(dest ...any) error
}

func scanBrand(row scanner) (model.Brand, error) {
	var b model.Brand
	err := row.Scan(&b.ID, &b.CleanID, &b.BrandCode, &b.Name, &b.URL, &b.Logo, &b.LastUpdated)
	return b, err
}

func scanProduct(row scanner) (model.Product, error) {
	var (
		p     model.Product
		specs []byte
	)
	if err := row.Scan(&p.ID, &p.Name, &p.URL, &p.Image, &p.ImageRetina, &p.BrandID,
		&specs, &p.SpecsLastUpdated, &p.LastUpdated); err != nil {
		return p, err
	}
	if len(specs) > 0 {
		if err := json.Unmarshal(specs, &p.Specifications); err != nil {
			return p, fmt.Errorf("decode specifications of %s: %w", p.ID, err)
		}
	}
	if len(p.Specifications) == 0 {
		p.Specifications = nil
	}
	return p, nil
}

func (r *PostgresStore) FindBrand(ctx context.Context, id string) (model.Brand, error) {
	b, err := scanBrand(r.DB.QueryRow(ctx, `SELECT `+brandColumns+` FROM brands WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return b, BrandNotFound(id)
	}
	return b, err
}

func (r *PostgresStore) FindBrandByCleanID(ctx context.Context, cleanID string) (model.Brand, error) {
	b, err := scanBrand(r.DB.QueryRow(ctx,
		`SELECT `+brandColumns+` FROM brands WHERE clean_id = $1 ORDER BY id LIMIT 1`, cleanID))
	if errors.Is(err, pgx.ErrNoRows) {
		return b, BrandNotFound(cleanID)
	}
	return b, err
}

func (r *PostgresStore) ListBrands(ctx context.Context) ([]model.Brand, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+brandColumns+` FROM brands ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.Brand
	for rows.Next() {
		b, err := scanBrand(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// UpsertBrand trata texto só com espaços como ausente, igual ao MemoryStore.
func (r *PostgresStore) UpsertBrand(ctx context.Context, b model.Brand) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO brands (id, clean_id, brand_code, name, url, logo, last_updated)
		VALUES ($1, btrim($2), COALESCE(NULLIF(btrim($3), ''), '0'), btrim($4), btrim($5), NULLIF(btrim($6), ''), COALESCE($7, now()))
		ON CONFLICT (id) DO UPDATE SET
			clean_id     = COALESCE(NULLIF(btrim($2), ''), brands.clean_id),
			brand_code   = COALESCE(NULLIF(btrim($3), ''), brands.brand_code),
			name         = COALESCE(NULLIF(btrim($4), ''), brands.name),
			url          = COALESCE(NULLIF(btrim($5), ''), brands.url),
			logo         = COALESCE(NULLIF(btrim($6), ''), brands.logo),
			last_updated = COALESCE($7, brands.last_updated)
	`, b.ID, b.CleanID, b.BrandCode, b.Name, b.URL, b.Logo, timeOrNil(b.LastUpdated))
	return err
}

func (r *PostgresStore) FindProduct(ctx context.Context, id string) (model.Product, error) {
	p, err := scanProduct(r.DB.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return p, ProductNotFound(id)
	}
	return p, err
}

func (r *PostgresStore) ListProductsByBrand(ctx context.Context, brandID string) ([]model.Product, error) {
	return r.queryProducts(ctx, `SELECT `+productColumns+` FROM products WHERE brand_id = $1 ORDER BY id`, brandID)
}

// SampleProducts devolve até n produtos aleatórios.
func (r *PostgresStore) SampleProducts(ctx context.Context, n int) ([]model.Product, error) {
	return r.queryProducts(ctx, `SELECT `+productColumns+` FROM products ORDER BY random() LIMIT $1`, n)
}

func (r *PostgresStore) queryProducts(ctx context.Context, query string, args ...any) ([]model.Product, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *PostgresStore) UpsertProduct(ctx context.Context, p model.Product) error {
	// nil = especificações ausentes no registro, preserva o valor gravado
	var specs any
	if p.Specifications != nil {
		b, err := json.Marshal(p.Specifications)
		if err != nil {
			return fmt.Errorf("encode specifications of %s: %w", p.ID, err)
		}
		specs = string(b)
	}

	_, err := r.DB.Exec(ctx, `
		INSERT INTO products (id, name, url, image, image_retina, brand_id, specifications, specs_last_updated, last_updated)
		VALUES ($1, btrim($2), btrim($3), btrim($4), NULLIF(btrim($5), ''), btrim($6), COALESCE($7::jsonb, '{}'::jsonb), $8, COALESCE($9, now()))
		ON CONFLICT (id) DO UPDATE SET
			name               = COALESCE(NULLIF(btrim($2), ''), products.name),
			url                = COALESCE(NULLIF(btrim($3), ''), products.url),
			image              = COALESCE(NULLIF(btrim($4), ''), products.image),
			image_retina       = COALESCE(NULLIF(btrim($5), ''), products.image_retina),
			brand_id           = COALESCE(NULLIF(btrim($6), ''), products.brand_id),
			specifications     = COALESCE($7::jsonb, products.specifications),
			specs_last_updated = COALESCE($8, products.specs_last_updated),
			last_updated       = COALESCE($9, products.last_updated)
	`, p.ID, p.Name, p.URL, p.Image, p.ImageRetina, p.BrandID, specs, p.SpecsLastUpdated, timeOrNil(p.LastUpdated))
	return err
}

func (r *PostgresStore) RecordFailure(ctx context.Context, f model.SyncFailure) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO sync_failures (id, run_id, job, target, error, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, f.ID, f.RunID, f.Job, f.Target, f.Error, f.OccurredAt)
	return err
}

func timeOrNil(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
