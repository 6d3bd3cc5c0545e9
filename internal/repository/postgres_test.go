package repository

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"catalogsync/internal/db"
	"catalogsync/internal/model"
)

// Roda só com DATABASE_URL apontando para um Postgres descartável.
func newTestPostgresStore(t *testing.T) *PostgresStore {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL não definido")
	}
	ctx := context.Background()

	conn, err := db.New(url)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	if err := db.Migrate(ctx, conn); err != nil {
		t.Fatal(err)
	}

	pool, err := db.NewPool(ctx, url, 2)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(pool.Close)
	return NewPostgresStore(pool)
}

func testPrefix() string {
	return "t" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func cleanupPrefix(t *testing.T, s *PostgresStore, prefix string) {
	t.Cleanup(func() {
		ctx := context.Background()
		_, _ = s.DB.Exec(ctx, `DELETE FROM products WHERE id LIKE $1`, prefix+"%")
		_, _ = s.DB.Exec(ctx, `DELETE FROM brands WHERE id LIKE $1`, prefix+"%")
	})
}

func TestPostgresStoreContract(t *testing.T) {
	s := newTestPostgresStore(t)
	prefix := testPrefix()
	cleanupPrefix(t, s, prefix)

	runStoreContract(t, s, prefix)
}

func TestPostgresStoreTrimsOnInsert(t *testing.T) {
	s := newTestPostgresStore(t)
	prefix := testPrefix()
	cleanupPrefix(t, s, prefix)
	ctx := context.Background()

	id := prefix + "-phones-1"
	if err := s.UpsertBrand(ctx, model.Brand{ID: id, CleanID: " " + prefix + " ", BrandCode: "  ", Name: " Acme ", Logo: "   "}); err != nil {
		t.Fatal(err)
	}
	got, err := s.FindBrand(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if got.CleanID != prefix || got.Name != "Acme" || got.BrandCode != model.DefaultBrandCode || got.Logo != "" {
		t.Errorf("brand = %+v", got)
	}
}

func TestPostgresStoreRecordFailure(t *testing.T) {
	s := newTestPostgresStore(t)
	ctx := context.Background()

	f := model.SyncFailure{
		ID:         uuid.New(),
		RunID:      uuid.New(),
		Job:        model.JobSpecs,
		Target:     "acme_x-1",
		Error:      "fetch http://site.test/acme_x-1.php: status 429",
		OccurredAt: time.Now().UTC(),
	}
	t.Cleanup(func() { _, _ = s.DB.Exec(context.Background(), `DELETE FROM sync_failures WHERE id = $1`, f.ID) })

	if err := s.RecordFailure(ctx, f); err != nil {
		t.Fatal(err)
	}
	var job, target string
	if err := s.DB.QueryRow(ctx, `SELECT job, target FROM sync_failures WHERE id = $1`, f.ID).Scan(&job, &target); err != nil {
		t.Fatal(err)
	}
	if job != model.JobSpecs || target != "acme_x-1" {
		t.Errorf("row = %s/%s", job, target)
	}
}
